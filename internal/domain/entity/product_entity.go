package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProductRecipe is a quantity of a recipe used to make one product unit.
type ProductRecipe struct {
	RecipeID uuid.UUID
	Quantity decimal.Decimal
}

type Product struct {
	ID                      uuid.UUID
	Name                    string
	ImageURL                string
	Recipes                 []ProductRecipe
	FixedCosts              Money
	VariableCostsPercentage decimal.Decimal
	ProfitMarginPercentage  decimal.Decimal
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// ProductCost is the breakdown behind a product's computed cost. VariableCosts
// and ProfitMargin hold the amounts added by each markup.
type ProductCost struct {
	RecipeCosts   Money
	FixedCosts    Money
	VariableCosts Money
	ProfitMargin  Money
	Total         Money
}

func NewProduct(name string, fixed Money, variablePct, profitPct decimal.Decimal) (*Product, error) {
	p := &Product{ID: uuid.New()}
	if err := p.Update(name, p.ImageURL, fixed, variablePct, profitPct); err != nil {
		return nil, err
	}
	p.CreatedAt = p.UpdatedAt
	return p, nil
}

func (p *Product) Update(name, imageURL string, fixed Money, variablePct, profitPct decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "is required")
	}
	if fixed.Currency() == "" {
		return invalid("fixed_costs", "is required")
	}
	if variablePct.IsNegative() || variablePct.GreaterThan(hundred) {
		return invalid("variable_costs_percentage", "must be between 0 and 100")
	}
	if profitPct.IsNegative() {
		return invalid("profit_margin_percentage", "must be greater than or equal to 0")
	}
	p.Name = name
	p.ImageURL = strings.TrimSpace(imageURL)
	p.FixedCosts = fixed
	p.VariableCostsPercentage = variablePct
	p.ProfitMarginPercentage = profitPct
	p.UpdatedAt = Now()
	return nil
}

func (p *Product) SetImageURL(url string) {
	p.ImageURL = url
	p.UpdatedAt = Now()
}

func (p *Product) indexOf(recipeID uuid.UUID) int {
	for i, pr := range p.Recipes {
		if pr.RecipeID == recipeID {
			return i
		}
	}
	return -1
}

func (p *Product) AddRecipe(recipeID uuid.UUID, qty decimal.Decimal) error {
	if recipeID == uuid.Nil {
		return invalid("recipe_id", "is required")
	}
	if !qty.IsPositive() {
		return invalid("quantity", "must be greater than 0")
	}
	if p.indexOf(recipeID) >= 0 {
		return invalid("recipe_id", "is already part of the product")
	}
	p.Recipes = append(p.Recipes, ProductRecipe{RecipeID: recipeID, Quantity: qty})
	p.UpdatedAt = Now()
	return nil
}

func (p *Product) RemoveRecipe(recipeID uuid.UUID) error {
	i := p.indexOf(recipeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRecipeAbsent, recipeID)
	}
	p.Recipes = append(p.Recipes[:i], p.Recipes[i+1:]...)
	p.UpdatedAt = Now()
	return nil
}

func (p *Product) SetRecipes(lines []ProductRecipe) error {
	prev := p.Recipes
	p.Recipes = nil
	for _, l := range lines {
		if err := p.AddRecipe(l.RecipeID, l.Quantity); err != nil {
			p.Recipes = prev
			return err
		}
	}
	return nil
}

// CalculateCost computes
//
//	(sum(recipe cost * quantity) + fixed) * (1 + variable/100) * (1 + profit/100)
//
// Recipes missing from recipeCosts contribute nothing.
func (p *Product) CalculateCost(recipeCosts map[uuid.UUID]Money) (ProductCost, error) {
	cur := p.FixedCosts.Currency()
	recipes, err := ZeroMoney(cur)
	if err != nil {
		return ProductCost{}, err
	}
	for _, pr := range p.Recipes {
		unit, ok := recipeCosts[pr.RecipeID]
		if !ok {
			continue
		}
		line, err := unit.Mul(pr.Quantity)
		if err != nil {
			return ProductCost{}, err
		}
		if recipes, err = recipes.Add(line); err != nil {
			return ProductCost{}, err
		}
	}
	subtotal, err := recipes.Add(p.FixedCosts)
	if err != nil {
		return ProductCost{}, err
	}
	variable, err := subtotal.Mul(p.VariableCostsPercentage.Div(hundred))
	if err != nil {
		return ProductCost{}, err
	}
	withVariable, err := subtotal.Add(variable)
	if err != nil {
		return ProductCost{}, err
	}
	profit, err := withVariable.Mul(p.ProfitMarginPercentage.Div(hundred))
	if err != nil {
		return ProductCost{}, err
	}
	total, err := withVariable.Add(profit)
	if err != nil {
		return ProductCost{}, err
	}
	return ProductCost{
		RecipeCosts:   recipes,
		FixedCosts:    p.FixedCosts,
		VariableCosts: variable,
		ProfitMargin:  profit,
		Total:         total,
	}, nil
}
