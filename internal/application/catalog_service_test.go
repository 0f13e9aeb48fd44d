package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/internal/mocks"
)

func TestIngredientLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ingredientSvc.Create(ctx, "Flour", "bucket")
	assert.ErrorIs(t, err, entity.ErrValidation)

	ing, err := f.ingredientSvc.Create(ctx, "Flour", "KG")
	require.NoError(t, err)
	assert.Equal(t, entity.UnitKilogram, ing.Unit)

	_, err = f.ingredientSvc.Create(ctx, "flour", "g")
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	updated, err := f.ingredientSvc.Update(ctx, ing.ID, "Bread flour", "g")
	require.NoError(t, err)
	assert.Equal(t, "Bread flour", updated.Name)

	items, total, err := f.ingredientSvc.List(ctx, "bread", repository.Page{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.EqualValues(t, 1, total)

	_, err = f.ingredientSvc.Update(ctx, uuid.New(), "x", "g")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, f.ingredientSvc.Delete(ctx, ing.ID))
	_, err = f.ingredientSvc.Get(ctx, ing.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIngredientDeleteInUse(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	ingredients := &mocks.MockIngredientRepository{}
	ingredients.On("Delete", mock.Anything, id).Return(repository.ErrInvalidReference).Once()
	f.ingredientSvc.Repo = ingredients

	err := f.ingredientSvc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, application.ErrInUse)
	ingredients.AssertExpectations(t)
}

func TestIngredientCosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ing := f.ingredient(t, "Sugar", "")

	_, err := f.ingredientSvc.CurrentCost(ctx, ing.ID, time.Time{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	_, err = f.ingredientSvc.AddCost(ctx, ing.ID, application.CostInput{CostPerUnit: dec("1.23456"), EffectiveDate: jan})
	require.NoError(t, err)
	second, err := f.ingredientSvc.AddCost(ctx, ing.ID, application.CostInput{CostPerUnit: dec("2"), Currency: "usd", EffectiveDate: feb})
	require.NoError(t, err)

	cur, err := f.ingredientSvc.CurrentCost(ctx, ing.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)

	old, err := f.ingredientSvc.CurrentCost(ctx, ing.ID, jan.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, "1.2346", old.CostPerUnit.Amount().String())

	history, err := f.ingredientSvc.CostHistory(ctx, ing.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = f.ingredientSvc.AddCost(ctx, ing.ID, application.CostInput{CostPerUnit: dec("1"), Currency: "EUR"})
	assert.ErrorIs(t, err, entity.ErrCurrencyMismatch)

	_, err = f.ingredientSvc.AddCost(ctx, ing.ID, application.CostInput{CostPerUnit: dec("-1")})
	assert.Error(t, err)

	_, err = f.ingredientSvc.AddCost(ctx, uuid.New(), application.CostInput{CostPerUnit: dec("1")})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecipeRejectsUnknownIngredient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	flour := f.ingredient(t, "Flour", "1")

	_, err := f.recipeSvc.Create(ctx, application.RecipeInput{
		Name: "Bread",
		Ingredients: []application.RecipeLine{
			{IngredientID: flour.ID, Quantity: dec("1")},
			{IngredientID: uuid.New(), Quantity: dec("1")},
		},
	})
	var ve *entity.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "ingredients[1].ingredient_id", ve.Field)

	_, err = f.recipeSvc.Create(ctx, application.RecipeInput{
		Name: "Bread",
		Ingredients: []application.RecipeLine{
			{IngredientID: flour.ID, Quantity: dec("1")},
			{IngredientID: flour.ID, Quantity: dec("2")},
		},
	})
	assert.ErrorIs(t, err, entity.ErrValidation)

	count, _ := f.recipes.Count(ctx)
	assert.Zero(t, count)
}

func TestRecipeUpdateAndCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	flour := f.ingredient(t, "Flour", "2.00")
	salt := f.ingredient(t, "Salt", "")

	r, err := f.recipeSvc.Create(ctx, application.RecipeInput{
		Name:        "Bread",
		Ingredients: []application.RecipeLine{{IngredientID: flour.ID, Quantity: dec("0.5")}},
	})
	require.NoError(t, err)

	rc, err := f.recipeSvc.Cost(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD 1.00", rc.Total.Round(2).String())

	r, err = f.recipeSvc.Update(ctx, r.ID, application.RecipeInput{
		Name:         "Salted bread",
		Instructions: "Knead.",
		Ingredients: []application.RecipeLine{
			{IngredientID: flour.ID, Quantity: dec("1.0004")},
			{IngredientID: salt.ID, Quantity: dec("0.01")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Salted bread", r.Name)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "1", r.Ingredients[0].Quantity.String())

	rc, err = f.recipeSvc.Cost(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD 2.00", rc.Total.Round(2).String(), "salt has no price and adds nothing")
}

func TestRecipeDeleteWhileReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.croissant(t)
	id := p.Recipes[0].RecipeID

	err := f.recipeSvc.Delete(ctx, id)
	require.NoError(t, err)
	assert.NotErrorIs(t, err, application.ErrInUse)

	_, err = f.recipeSvc.Cost(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, f.recipeSvc.Delete(ctx, id), repository.ErrNotFound)
}

func TestProductCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.croissant(t)

	got, pc, err := f.productSvc.Cost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "4", pc.RecipeCosts.Amount().String())
	assert.Equal(t, "1", pc.FixedCosts.Amount().String())
	assert.Equal(t, "0.5", pc.VariableCosts.Amount().String())
	assert.Equal(t, "2.75", pc.ProfitMargin.Amount().String())
	assert.Equal(t, "8.25", pc.Total.Amount().String())
}

func TestProductCostTracksCatalogChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.croissant(t)
	flour, err := f.ingredients.GetByName(ctx, "Flour")
	require.NoError(t, err)
	butter, err := f.ingredients.GetByName(ctx, "Butter")
	require.NoError(t, err)

	_, err = f.ingredientSvc.AddCost(ctx, butter.ID, application.CostInput{
		CostPerUnit:   dec("8"),
		EffectiveDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	_, pc, err := f.productSvc.Cost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.9", pc.Total.Amount().String())

	_, err = f.recipeSvc.Update(ctx, p.Recipes[0].RecipeID, application.RecipeInput{
		Name: "Croissant dough",
		Ingredients: []application.RecipeLine{
			{IngredientID: flour.ID, Quantity: dec("1.5")},
			{IngredientID: butter.ID, Quantity: dec("0.5")},
		},
	})
	require.NoError(t, err)
	_, pc, err = f.productSvc.Cost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "13.2", pc.Total.Amount().String())

	u := f.user(t, "baker", entity.RoleUser)
	o := f.order(t, u, p)
	assert.Equal(t, "USD 13.20", o.Items[0].UnitPrice.String(), "orders price at the same cost")
}

func TestProductRejectsUnknownRecipe(t *testing.T) {
	f := newFixture(t)
	_, err := f.productSvc.Create(context.Background(), application.ProductInput{
		Name:       "Ghost",
		FixedCosts: dec("1"),
		Recipes:    []application.ProductRecipeLine{{RecipeID: uuid.New(), Quantity: dec("1")}},
	})
	var ve *entity.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "recipes[0].recipe_id", ve.Field)
}

func TestProductUpdateKeepsImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.croissant(t)
	prefix := "products/" + p.ID.String() + "/"
	images := &mocks.MockImageStore{}
	images.On("Upload", mock.Anything, mock.MatchedBy(func(path string) bool {
		return strings.HasPrefix(path, prefix) && strings.HasSuffix(path, ".png")
	}), "image/png").Return("https://cdn.test/croissant.png", nil).Once()
	f.productSvc.Images = images

	p, err := f.productSvc.UploadImage(ctx, p.ID, "photo.PNG", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	images.AssertExpectations(t)
	assert.Equal(t, "https://cdn.test/croissant.png", p.ImageURL)

	updated, err := f.productSvc.Update(ctx, p.ID, application.ProductInput{
		Name:                    "Butter croissant",
		FixedCosts:              dec("1.005"),
		VariableCostsPercentage: dec("10"),
		ProfitMarginPercentage:  dec("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ImageURL, updated.ImageURL)
	assert.Empty(t, updated.Recipes)
	assert.Equal(t, "1.01", updated.FixedCosts.Amount().String())
}

func TestProductImageValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.croissant(t)

	_, err := f.productSvc.UploadImage(ctx, p.ID, "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, application.ErrNotConfigured)

	images := &mocks.MockImageStore{}
	f.productSvc.Images = images
	_, err = f.productSvc.UploadImage(ctx, p.ID, "a.pdf", "application/pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = f.productSvc.UploadImage(ctx, uuid.New(), "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductSearchFallsBackToSQL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.croissant(t)

	found, err := f.productSvc.Search(ctx, "croiss", repository.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Croissant", found[0].Name)

	none, err := f.productSvc.Search(ctx, "  ", repository.Page{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.productSvc.ReindexAll(ctx)
	assert.ErrorIs(t, err, application.ErrNotConfigured)
}

func TestProductDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.croissant(t)

	ordered := &mocks.MockProductRepository{}
	ordered.On("Delete", mock.Anything, p.ID).Return(repository.ErrInvalidReference).Once()
	f.productSvc.Repo = ordered
	assert.ErrorIs(t, f.productSvc.Delete(ctx, p.ID), application.ErrInUse)
	ordered.AssertExpectations(t)

	f.productSvc.Repo = f.products
	require.NoError(t, f.productSvc.Delete(ctx, p.ID))
	_, err := f.productSvc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
