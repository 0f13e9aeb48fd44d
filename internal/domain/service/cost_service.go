package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// CostCalculator rolls ingredient prices up into recipe and product costs.
// All prices must be in Currency.
type CostCalculator struct {
	Costs    repository.IngredientCostRepository
	Recipes  repository.RecipeRepository
	Currency string
}

func NewCostCalculator(costs repository.IngredientCostRepository, recipes repository.RecipeRepository, currency string) *CostCalculator {
	return &CostCalculator{Costs: costs, Recipes: recipes, Currency: currency}
}

// RecipeCost prices every ingredient at its current cost.
func (c *CostCalculator) RecipeCost(ctx context.Context, r *entity.Recipe) (entity.Money, error) {
	unitCosts := make(map[uuid.UUID]entity.Money, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		cost, err := c.Costs.GetCurrentCost(ctx, ri.IngredientID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return entity.Money{}, fmt.Errorf("current cost of ingredient %s: %w", ri.IngredientID, err)
		}
		unitCosts[ri.IngredientID] = cost.CostPerUnit
	}
	return r.CalculateCost(unitCosts, c.Currency)
}

// ProductCost loads the product's recipes and applies the product markups.
// Recipes that no longer exist contribute nothing.
func (c *CostCalculator) ProductCost(ctx context.Context, p *entity.Product) (entity.ProductCost, error) {
	if p.FixedCosts.Currency() != c.Currency {
		return entity.ProductCost{}, fmt.Errorf("%w: product fixed costs in %s, base currency %s",
			entity.ErrCurrencyMismatch, p.FixedCosts.Currency(), c.Currency)
	}
	recipeCosts := make(map[uuid.UUID]entity.Money, len(p.Recipes))
	for _, pr := range p.Recipes {
		r, err := c.Recipes.GetByID(ctx, pr.RecipeID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return entity.ProductCost{}, fmt.Errorf("load recipe %s: %w", pr.RecipeID, err)
		}
		cost, err := c.RecipeCost(ctx, r)
		if err != nil {
			return entity.ProductCost{}, err
		}
		recipeCosts[pr.RecipeID] = cost
	}
	return p.CalculateCost(recipeCosts)
}

// UnitPrice is the product cost rounded to cents, used to price order items.
func (c *CostCalculator) UnitPrice(ctx context.Context, p *entity.Product) (entity.Money, error) {
	pc, err := c.ProductCost(ctx, p)
	if err != nil {
		return entity.Money{}, err
	}
	return pc.Total.Round(2), nil
}
