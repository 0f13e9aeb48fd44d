package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeIngredient is a quantity of an ingredient, expressed in the
// ingredient's own unit.
type RecipeIngredient struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}

type Recipe struct {
	ID           uuid.UUID
	Name         string
	Instructions string
	Ingredients  []RecipeIngredient
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewRecipe(name, instructions string) (*Recipe, error) {
	r := &Recipe{ID: uuid.New()}
	if err := r.Update(name, instructions); err != nil {
		return nil, err
	}
	r.CreatedAt = r.UpdatedAt
	return r, nil
}

func (r *Recipe) Update(name, instructions string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "is required")
	}
	r.Name = name
	r.Instructions = strings.TrimSpace(instructions)
	r.UpdatedAt = Now()
	return nil
}

func (r *Recipe) indexOf(ingredientID uuid.UUID) int {
	for i, ri := range r.Ingredients {
		if ri.IngredientID == ingredientID {
			return i
		}
	}
	return -1
}

func (r *Recipe) AddIngredient(ingredientID uuid.UUID, qty decimal.Decimal) error {
	if ingredientID == uuid.Nil {
		return invalid("ingredient_id", "is required")
	}
	if !qty.IsPositive() {
		return invalid("quantity", "must be greater than 0")
	}
	if r.indexOf(ingredientID) >= 0 {
		return invalid("ingredient_id", "is already part of the recipe")
	}
	r.Ingredients = append(r.Ingredients, RecipeIngredient{IngredientID: ingredientID, Quantity: qty})
	r.UpdatedAt = Now()
	return nil
}

func (r *Recipe) UpdateIngredientQuantity(ingredientID uuid.UUID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return invalid("quantity", "must be greater than 0")
	}
	i := r.indexOf(ingredientID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrIngredientAbsent, ingredientID)
	}
	r.Ingredients[i].Quantity = qty
	r.UpdatedAt = Now()
	return nil
}

func (r *Recipe) RemoveIngredient(ingredientID uuid.UUID) error {
	i := r.indexOf(ingredientID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrIngredientAbsent, ingredientID)
	}
	r.Ingredients = append(r.Ingredients[:i], r.Ingredients[i+1:]...)
	r.UpdatedAt = Now()
	return nil
}

// SetIngredients replaces the ingredient list, validating every line.
func (r *Recipe) SetIngredients(lines []RecipeIngredient) error {
	prev := r.Ingredients
	r.Ingredients = nil
	for _, l := range lines {
		if err := r.AddIngredient(l.IngredientID, l.Quantity); err != nil {
			r.Ingredients = prev
			return err
		}
	}
	r.UpdatedAt = Now()
	return nil
}

// CalculateCost sums unit cost times quantity over the ingredients. Ingredients
// without a known cost contribute nothing, so an empty recipe costs zero.
func (r *Recipe) CalculateCost(unitCosts map[uuid.UUID]Money, currency string) (Money, error) {
	total, err := ZeroMoney(currency)
	if err != nil {
		return Money{}, err
	}
	for _, ri := range r.Ingredients {
		unit, ok := unitCosts[ri.IngredientID]
		if !ok {
			continue
		}
		line, err := unit.Mul(ri.Quantity)
		if err != nil {
			return Money{}, err
		}
		if total, err = total.Add(line); err != nil {
			return Money{}, err
		}
	}
	return total, nil
}
