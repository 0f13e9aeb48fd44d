// Package seed loads demo data into a fresh database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/oksasatya/pastryjoy-api/internal/application"
	repo "github.com/oksasatya/pastryjoy-api/internal/domain/repository"
)

// Catalog is the YAML layout of db/seed/catalog.yaml. Recipes and products
// reference their parts by name.
type Catalog struct {
	Ingredients []IngredientSeed `yaml:"ingredients"`
	Recipes     []RecipeSeed     `yaml:"recipes"`
	Products    []ProductSeed    `yaml:"products"`
}

type IngredientSeed struct {
	Name string          `yaml:"name"`
	Unit string          `yaml:"unit"`
	Cost decimal.Decimal `yaml:"cost"`
}

type PartSeed struct {
	Name     string          `yaml:"name"`
	Quantity decimal.Decimal `yaml:"quantity"`
}

type RecipeSeed struct {
	Name         string     `yaml:"name"`
	Instructions string     `yaml:"instructions"`
	Ingredients  []PartSeed `yaml:"ingredients"`
}

type ProductSeed struct {
	Name                    string          `yaml:"name"`
	ImageURL                string          `yaml:"image_url"`
	FixedCosts              decimal.Decimal `yaml:"fixed_costs"`
	VariableCostsPercentage decimal.Decimal `yaml:"variable_costs_percentage"`
	ProfitMarginPercentage  decimal.Decimal `yaml:"profit_margin_percentage"`
	Recipes                 []PartSeed      `yaml:"recipes"`
}

// Stats counts what a load created; existing records are skipped.
type Stats struct {
	Ingredients, Recipes, Products, Skipped int
}

func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// Loader writes a Catalog through the application services so every entity
// passes the same validation as an API request.
type Loader struct {
	Ingredients *application.IngredientService
	Recipes     *application.RecipeService
	Products    *application.ProductService
	Logger      *logrus.Logger
}

// Load is idempotent: entities whose name already exists are left alone.
func (l *Loader) Load(ctx context.Context, c *Catalog) (Stats, error) {
	var st Stats
	ingredientIDs := map[string]application.RecipeLine{}
	for _, s := range c.Ingredients {
		ing, err := l.Ingredients.Repo.GetByName(ctx, s.Name)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			if ing, err = l.Ingredients.Create(ctx, s.Name, s.Unit); err != nil {
				return st, fmt.Errorf("ingredient %q: %w", s.Name, err)
			}
			if _, err := l.Ingredients.AddCost(ctx, ing.ID, application.CostInput{CostPerUnit: s.Cost}); err != nil {
				return st, fmt.Errorf("ingredient %q cost: %w", s.Name, err)
			}
			st.Ingredients++
		case err != nil:
			return st, err
		default:
			st.Skipped++
		}
		ingredientIDs[s.Name] = application.RecipeLine{IngredientID: ing.ID}
	}

	recipeIDs := map[string]application.ProductRecipeLine{}
	for _, s := range c.Recipes {
		r, err := l.Recipes.Repo.GetByName(ctx, s.Name)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			in := application.RecipeInput{Name: s.Name, Instructions: s.Instructions}
			for _, p := range s.Ingredients {
				line, ok := ingredientIDs[p.Name]
				if !ok {
					return st, fmt.Errorf("recipe %q: unknown ingredient %q", s.Name, p.Name)
				}
				line.Quantity = p.Quantity
				in.Ingredients = append(in.Ingredients, line)
			}
			if r, err = l.Recipes.Create(ctx, in); err != nil {
				return st, fmt.Errorf("recipe %q: %w", s.Name, err)
			}
			st.Recipes++
		case err != nil:
			return st, err
		default:
			st.Skipped++
		}
		recipeIDs[s.Name] = application.ProductRecipeLine{RecipeID: r.ID}
	}

	for _, s := range c.Products {
		_, err := l.Products.Repo.GetByName(ctx, s.Name)
		if err == nil {
			st.Skipped++
			continue
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return st, err
		}
		in := application.ProductInput{
			Name:                    s.Name,
			ImageURL:                s.ImageURL,
			FixedCosts:              s.FixedCosts,
			VariableCostsPercentage: s.VariableCostsPercentage,
			ProfitMarginPercentage:  s.ProfitMarginPercentage,
		}
		for _, p := range s.Recipes {
			line, ok := recipeIDs[p.Name]
			if !ok {
				return st, fmt.Errorf("product %q: unknown recipe %q", s.Name, p.Name)
			}
			line.Quantity = p.Quantity
			in.Recipes = append(in.Recipes, line)
		}
		if _, err := l.Products.Create(ctx, in); err != nil {
			return st, fmt.Errorf("product %q: %w", s.Name, err)
		}
		st.Products++
	}

	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{
			"ingredients": st.Ingredients,
			"recipes":     st.Recipes,
			"products":    st.Products,
			"skipped":     st.Skipped,
		}).Info("catalog seeded")
	}
	return st, nil
}
