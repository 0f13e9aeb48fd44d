package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/internal/domain/service"
)

// Recipe, product and order quantities keep three decimal places.
const quantityPlaces = 3

type RecipeService struct {
	Repo        repo.RecipeRepository
	Ingredients repo.IngredientRepository
	Calc        *service.CostCalculator
	Tx          repo.Transactor
	Logger      *logrus.Logger
}

type RecipeLine struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}

type RecipeInput struct {
	Name         string
	Instructions string
	Ingredients  []RecipeLine
}

// RecipeCost is the roll-up of a recipe at current ingredient prices.
type RecipeCost struct {
	Recipe *entity.Recipe
	Total  entity.Money
}

func NewRecipeService(r repo.RecipeRepository, ingredients repo.IngredientRepository, calc *service.CostCalculator, tx repo.Transactor, logger *logrus.Logger) *RecipeService {
	return &RecipeService{Repo: r, Ingredients: ingredients, Calc: calc, Tx: tx, Logger: logger}
}

func (s *RecipeService) lines(ctx context.Context, in []RecipeLine) ([]entity.RecipeIngredient, error) {
	out := make([]entity.RecipeIngredient, 0, len(in))
	for i, l := range in {
		ok, err := s.Ingredients.Exists(ctx, l.IngredientID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalidInput(fmt.Sprintf("ingredients[%d].ingredient_id", i), "ingredient "+l.IngredientID.String()+" does not exist")
		}
		out = append(out, entity.RecipeIngredient{IngredientID: l.IngredientID, Quantity: l.Quantity.Round(quantityPlaces)})
	}
	return out, nil
}

func (s *RecipeService) Create(ctx context.Context, in RecipeInput) (*entity.Recipe, error) {
	r, err := entity.NewRecipe(in.Name, in.Instructions)
	if err != nil {
		return nil, err
	}
	err = s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		lines, err := s.lines(ctx, in.Ingredients)
		if err != nil {
			return err
		}
		if err := r.SetIngredients(lines); err != nil {
			return err
		}
		return s.Repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*entity.Recipe, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *RecipeService) List(ctx context.Context, q string, page repo.Page) ([]*entity.Recipe, int64, error) {
	if q = strings.TrimSpace(q); q != "" {
		items, err := s.Repo.SearchByName(ctx, q, page)
		return items, int64(len(items)), err
	}
	items, err := s.Repo.GetAll(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.Count(ctx)
	return items, total, err
}

// Update replaces the recipe's fields and ingredient lines.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, in RecipeInput) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.Repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Update(in.Name, in.Instructions); err != nil {
			return err
		}
		lines, err := s.lines(ctx, in.Ingredients)
		if err != nil {
			return err
		}
		if err := r.SetIngredients(lines); err != nil {
			return err
		}
		if err := s.Repo.Update(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	return out, err
}

// Delete removes the recipe; products drop it from their lines.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Repo.Delete(ctx, id)
}

func (s *RecipeService) Cost(ctx context.Context, id uuid.UUID) (RecipeCost, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return RecipeCost{}, err
	}
	total, err := s.Calc.RecipeCost(ctx, r)
	if err != nil {
		return RecipeCost{}, err
	}
	return RecipeCost{Recipe: r, Total: total}, nil
}
