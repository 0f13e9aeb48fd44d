package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/service"
	handlers "github.com/oksasatya/pastryjoy-api/internal/interface/http"
	"github.com/oksasatya/pastryjoy-api/internal/interface/middleware"
	"github.com/oksasatya/pastryjoy-api/internal/mocks"
	"github.com/oksasatya/pastryjoy-api/internal/router"
	"github.com/oksasatya/pastryjoy-api/internal/router/modules"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
	"github.com/oksasatya/pastryjoy-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type server struct {
	engine *gin.Engine
	cfg    *config.Config

	users    *application.UserService
	ingr     *application.IngredientService
	recipes  *application.RecipeService
	products *application.ProductService
	orders   *application.OrderService

	adminToken string
	userToken  string
	admin      *entity.User
	user       *entity.User
}

// envelope mirrors response.APIResponse with a raw data field.
type envelope struct {
	Status    int               `json:"status"`
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id"`
	Data      json.RawMessage   `json:"data"`
	Meta      map[string]any    `json:"meta"`
	Error     map[string]string `json:"error"`
}

func newServer(t *testing.T) *server {
	t.Helper()
	cfg := &config.Config{
		AppName:          "pastryjoy-api",
		CompanyName:      "PastryJoy",
		DefaultCurrency:  "USD",
		MinUnitPrice:     decimal.Zero,
		DefaultPageLimit: 100,
		MaxPageLimit:     1000,
	}
	costs := mocks.NewIngredientCostRepository()
	recipes := mocks.NewRecipeRepository()
	ingredients := mocks.NewIngredientRepository()
	products := mocks.NewProductRepository()
	tx := &mocks.Tx{}
	calc := service.NewCostCalculator(costs, recipes, "USD")

	s := &server{cfg: cfg}
	s.users = application.NewUserService(mocks.NewUserRepository(), helpers.NewJWTManager("handler-secret", time.Hour), nil)
	s.ingr = application.NewIngredientService(ingredients, costs, "USD", nil)
	s.recipes = application.NewRecipeService(recipes, ingredients, calc, tx, nil)
	s.products = application.NewProductService(products, recipes, calc, tx, "USD", nil)
	s.orders = application.NewOrderService(mocks.NewOrderRepository(), products, calc, tx, cfg, nil)

	s.admin, s.adminToken = s.account(t, "baker", entity.RoleAdmin)
	s.user, s.userToken = s.account(t, "customer", entity.RoleUser)

	e := gin.New()
	e.Use(middleware.RequestIDMiddleware())
	e.GET("/health", handlers.Health("pastryjoy-api"))

	guard := modules.Guard{Auth: middleware.Auth(s.users), Admin: middleware.RequireAdmin()}
	reg := router.NewRegistry(e)
	reg.Add(modules.NewAuthModule(handlers.NewAuthHandler(s.users, nil), guard, nil))
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(s.users, cfg, nil), guard))
	reg.Add(modules.NewCatalogModule(
		handlers.NewIngredientHandler(s.ingr, cfg, nil),
		handlers.NewRecipeHandler(s.recipes, cfg, nil),
		handlers.NewProductHandler(s.products, cfg, nil),
		guard,
	))
	reg.Add(modules.NewOrderModule(handlers.NewOrderHandler(s.orders, cfg, nil), guard))
	reg.RegisterAll()

	s.engine = e
	return s
}

func (s *server) account(t *testing.T, username string, role entity.UserRole) (*entity.User, string) {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), application.RegisterInput{
		Email:    username + "@pastryjoy.test",
		Username: username,
		Password: "password123",
	}, role)
	require.NoError(t, err)
	tok, err := s.users.IssueToken(u)
	require.NoError(t, err)
	return u, tok.AccessToken
}

func (s *server) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

// seedCroissant creates a product costing 8.25:
// recipes 4.00 + fixed 1.00, +10% variable, +50% margin.
func (s *server) seedCroissant(t *testing.T) *entity.Product {
	t.Helper()
	ctx := context.Background()
	flour, err := s.ingr.Create(ctx, "Flour", "kg")
	require.NoError(t, err)
	_, err = s.ingr.AddCost(ctx, flour.ID, application.CostInput{CostPerUnit: decimal.RequireFromString("2")})
	require.NoError(t, err)
	butter, err := s.ingr.Create(ctx, "Butter", "kg")
	require.NoError(t, err)
	_, err = s.ingr.AddCost(ctx, butter.ID, application.CostInput{CostPerUnit: decimal.RequireFromString("4")})
	require.NoError(t, err)
	r, err := s.recipes.Create(ctx, application.RecipeInput{
		Name: "Croissant dough",
		Ingredients: []application.RecipeLine{
			{IngredientID: flour.ID, Quantity: decimal.RequireFromString("1.5")},
			{IngredientID: butter.ID, Quantity: decimal.RequireFromString("0.25")},
		},
	})
	require.NoError(t, err)
	p, err := s.products.Create(ctx, application.ProductInput{
		Name:                    "Croissant",
		FixedCosts:              decimal.NewFromInt(1),
		VariableCostsPercentage: decimal.NewFromInt(10),
		ProfitMarginPercentage:  decimal.NewFromInt(50),
		Recipes:                 []application.ProductRecipeLine{{RecipeID: r.ID, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	return p
}
