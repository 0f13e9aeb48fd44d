package handlers_test

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/repository"
	"github.com/oksasatya/pastryjoy-api/internal/mocks"
)

func TestIngredientCRUD(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/ingredients", s.userToken, map[string]string{"name": "Flour", "unit": "kg"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/ingredients", s.adminToken, map[string]string{"name": "Flour", "unit": "bucket"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "unit")

	w, env = s.do(t, http.MethodPost, "/api/ingredients", s.adminToken, map[string]string{"name": "Flour", "unit": "kg"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]any](t, env)["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/ingredients", s.adminToken, map[string]string{"name": "Flour", "unit": "g"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/ingredients/"+id, s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kg", decode[map[string]any](t, env)["unit"])

	w, env = s.do(t, http.MethodPut, "/api/ingredients/"+id, s.adminToken, map[string]string{"name": "Bread flour", "unit": "g"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bread flour", decode[map[string]any](t, env)["name"])

	w, env = s.do(t, http.MethodGet, "/api/ingredients?q=bread", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env), 1)

	w, _ = s.do(t, http.MethodDelete, "/api/ingredients/"+id, s.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/ingredients/"+id, s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMalformedIDIsValidationError(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodGet, "/api/ingredients/not-a-uuid", s.userToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "must be a valid UUID", env.Error["id"])
}

func TestIngredientDeleteInUse(t *testing.T) {
	s := newServer(t)
	id := uuid.New()
	ingredients := &mocks.MockIngredientRepository{}
	ingredients.On("Delete", mock.Anything, id).Return(repository.ErrInvalidReference).Once()
	s.ingr.Repo = ingredients

	w, _ := s.do(t, http.MethodDelete, "/api/ingredients/"+id.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	ingredients.AssertExpectations(t)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	s := newServer(t)
	ingredients := &mocks.MockIngredientRepository{}
	ingredients.On("GetAll", mock.Anything, mock.AnythingOfType("repository.Page")).
		Return(nil, errors.New("connection reset by peer")).Once()
	s.ingr.Repo = ingredients

	w, env := s.do(t, http.MethodGet, "/api/ingredients", s.userToken, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "connection reset")
	ingredients.AssertExpectations(t)
	ingredients.AssertNotCalled(t, "Count", mock.Anything)
}

func TestStorageConstraintIsBadRequest(t *testing.T) {
	s := newServer(t)
	ingredients := &mocks.MockIngredientRepository{}
	ingredients.On("Create", mock.Anything, mock.MatchedBy(func(i *entity.Ingredient) bool { return i.Name == "Flour" })).
		Return(fmt.Errorf("%w: check ingredients_name_check", repository.ErrConstraint)).Once()
	s.ingr.Repo = ingredients

	w, env := s.do(t, http.MethodPost, "/api/ingredients", s.adminToken, map[string]string{"name": "Flour", "unit": "kg"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, env.Message, "ingredients_name_check")
	ingredients.AssertExpectations(t)
}

func TestIngredientCosts(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodPost, "/api/ingredients", s.adminToken, map[string]string{"name": "Sugar", "unit": "kg"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[map[string]any](t, env)["id"].(string)
	base := "/api/ingredients/" + id + "/costs"

	w, _ = s.do(t, http.MethodGet, base+"/current", s.userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodPost, base, s.adminToken, map[string]any{"cost_per_unit": "1.23456", "effective_date": "2024-01-01T00:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1.2346", decode[map[string]any](t, env)["cost_per_unit"])

	w, _ = s.do(t, http.MethodPost, base, s.adminToken, map[string]any{"cost_per_unit": 2.5, "effective_date": "2024-06-01T00:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPost, base, s.adminToken, map[string]any{"cost_per_unit": 1, "currency": "EUR"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, base, s.adminToken, map[string]any{"cost_per_unit": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "cost_per_unit")

	w, env = s.do(t, http.MethodPost, base, s.adminToken, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "cost_per_unit")

	w, env = s.do(t, http.MethodGet, base, s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	w, env = s.do(t, http.MethodGet, base+"/current", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2.5000", decode[map[string]any](t, env)["cost_per_unit"])

	w, env = s.do(t, http.MethodGet, base+"/current?at=2024-03-15", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1.2346", decode[map[string]any](t, env)["cost_per_unit"])

	w, env = s.do(t, http.MethodGet, base+"/current?at=yesterday", s.userToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "at")
}

func TestRecipeEndpoints(t *testing.T) {
	s := newServer(t)
	s.seedCroissant(t)

	w, env := s.do(t, http.MethodGet, "/api/recipes", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	recipes := decode[[]map[string]any](t, env)
	require.Len(t, recipes, 1)
	id := recipes[0]["id"].(string)

	w, env = s.do(t, http.MethodGet, "/api/recipes/"+id+"/cost", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cost := decode[map[string]any](t, env)
	assert.Equal(t, "4.00", cost["total_cost"])
	assert.Equal(t, "USD", cost["currency"])

	w, env = s.do(t, http.MethodPost, "/api/recipes", s.adminToken, map[string]any{
		"name":        "Ghost dough",
		"ingredients": []map[string]any{{"ingredient_id": uuid.NewString(), "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "ingredients[0].ingredient_id")

	w, env = s.do(t, http.MethodPost, "/api/recipes", s.adminToken, map[string]any{
		"name":        "Zero dough",
		"ingredients": []map[string]any{{"ingredient_id": uuid.NewString(), "quantity": 0}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "quantity")

	w, env = s.do(t, http.MethodPost, "/api/recipes", s.adminToken, map[string]any{"name": "Syrup", "instructions": "Boil."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, decode[map[string]any](t, env)["ingredients"])
}

func TestProductEndpoints(t *testing.T) {
	s := newServer(t)
	p := s.seedCroissant(t)

	w, env := s.do(t, http.MethodGet, "/api/products/"+p.ID.String()+"/cost", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cost := decode[map[string]any](t, env)
	assert.Equal(t, "4.00", cost["recipe_costs"])
	assert.Equal(t, "1.00", cost["fixed_costs"])
	assert.Equal(t, "0.50", cost["variable_costs"])
	assert.Equal(t, "2.75", cost["profit_margin"])
	assert.Equal(t, "8.25", cost["total_cost"])

	w, env = s.do(t, http.MethodPost, "/api/products", s.adminToken, map[string]any{"name": "Tart", "profit_margin_percentage": -5})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "profit_margin_percentage")

	w, env = s.do(t, http.MethodPost, "/api/products", s.adminToken, map[string]any{"name": "Tart", "variable_costs_percentage": 101})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "variable_costs_percentage")

	w, env = s.do(t, http.MethodPost, "/api/products", s.adminToken, map[string]any{"name": "Tart", "fixed_costs": "0.5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tart := decode[map[string]any](t, env)
	assert.Equal(t, "0.50", tart["fixed_costs"])
	assert.Equal(t, "0.00", tart["variable_costs_percentage"])

	w, env = s.do(t, http.MethodGet, "/api/products/search?q=crois", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, env), 1)
	assert.EqualValues(t, 1, env.Meta["total"])

	w, env = s.do(t, http.MethodGet, "/api/products/search", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, env))

	w, env = s.do(t, http.MethodGet, "/api/products", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, env.Meta["total"])
}

func TestProductImageWithoutStorage(t *testing.T) {
	s := newServer(t)
	p := s.seedCroissant(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "croissant.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+p.ID.String()+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())

	w, env := s.do(t, http.MethodPost, "/api/products/"+p.ID.String()+"/image", s.adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, "file")
}

func TestProductMarginAboveHundredPercent(t *testing.T) {
	s := newServer(t)
	s.seedCroissant(t)
	w, env := s.do(t, http.MethodGet, "/api/recipes", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	recipeID := decode[[]map[string]any](t, env)[0]["id"].(string)

	w, env = s.do(t, http.MethodPost, "/api/products", s.adminToken, map[string]any{
		"name":                      "Luxury croissant",
		"fixed_costs":               "1",
		"variable_costs_percentage": "10",
		"profit_margin_percentage":  "150",
		"recipes":                   []map[string]any{{"recipe_id": recipeID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]any](t, env)["id"].(string)

	w, env = s.do(t, http.MethodGet, "/api/products/"+id+"/cost", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cost := decode[map[string]any](t, env)
	assert.Equal(t, "8.25", cost["profit_margin"])
	assert.Equal(t, "13.75", cost["total_cost"])
}

func TestProductCostFollowsIngredientPrices(t *testing.T) {
	s := newServer(t)
	p := s.seedCroissant(t)
	path := "/api/products/" + p.ID.String() + "/cost"

	w, env := s.do(t, http.MethodGet, path, s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "8.25", decode[map[string]any](t, env)["total_cost"])

	w, env = s.do(t, http.MethodGet, "/api/ingredients?q=butter", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	butter := decode[[]map[string]any](t, env)[0]["id"].(string)
	w, _ = s.do(t, http.MethodPost, "/api/ingredients/"+butter+"/costs", s.adminToken, map[string]any{"cost_per_unit": "8", "effective_date": "2030-01-01T00:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// butter 0.25 kg at 8: recipes 5.00, fixed 1.00, variable 0.60, margin 3.30
	w, env = s.do(t, http.MethodGet, path, s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cost := decode[map[string]any](t, env)
	assert.Equal(t, "5.00", cost["recipe_costs"])
	assert.Equal(t, "9.90", cost["total_cost"])
}

func TestRouteGuards(t *testing.T) {
	s := newServer(t)
	id := uuid.NewString()

	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/users", nil},
		{http.MethodPost, "/api/ingredients", map[string]string{"name": "Salt", "unit": "g"}},
		{http.MethodPost, "/api/ingredients/" + id + "/costs", map[string]any{"cost_per_unit": 1}},
		{http.MethodDelete, "/api/recipes/" + id, nil},
		{http.MethodPut, "/api/products/" + id, map[string]any{"name": "Tart"}},
		{http.MethodPatch, "/api/orders/" + id + "/status", map[string]string{"status": "confirmed"}},
		{http.MethodDelete, "/api/orders/" + id, nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w, _ := s.do(t, tt.method, tt.path, "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			w, _ = s.do(t, tt.method, tt.path, s.userToken, tt.body)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}

	w, _ := s.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "customer", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestProductImageUpload(t *testing.T) {
	s := newServer(t)
	p := s.seedCroissant(t)
	images := &mocks.MockImageStore{}
	images.On("Upload", mock.Anything, mock.MatchedBy(func(path string) bool {
		return strings.HasPrefix(path, "products/"+p.ID.String()+"/") && strings.HasSuffix(path, ".png")
	}), "image/png").Return("https://cdn.test/croissant.png", nil).Once()
	s.products.Images = images

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "croissant.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+p.ID.String()+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "https://cdn.test/croissant.png")
	images.AssertExpectations(t)
}
