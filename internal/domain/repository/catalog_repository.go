package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

type IngredientRepository interface {
	CRUD[entity.Ingredient]
	GetByName(ctx context.Context, name string) (*entity.Ingredient, error)
	SearchByName(ctx context.Context, q string, page Page) ([]*entity.Ingredient, error)
}

// IngredientCostRepository stores the price history of ingredients.
type IngredientCostRepository interface {
	CRUD[entity.IngredientCost]
	GetByIngredientID(ctx context.Context, ingredientID uuid.UUID) ([]*entity.IngredientCost, error)
	// GetCurrentCost returns the record with the latest effective date.
	GetCurrentCost(ctx context.Context, ingredientID uuid.UUID) (*entity.IngredientCost, error)
	// GetCostAtDate returns the latest record effective on or before at.
	GetCostAtDate(ctx context.Context, ingredientID uuid.UUID, at time.Time) (*entity.IngredientCost, error)
}

// RecipeRepository always loads and persists the ingredient lines with the recipe.
type RecipeRepository interface {
	CRUD[entity.Recipe]
	GetByName(ctx context.Context, name string) (*entity.Recipe, error)
	SearchByName(ctx context.Context, q string, page Page) ([]*entity.Recipe, error)
}

// ProductRepository always loads and persists the recipe lines with the product.
type ProductRepository interface {
	CRUD[entity.Product]
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	SearchByName(ctx context.Context, q string, page Page) ([]*entity.Product, error)
}
