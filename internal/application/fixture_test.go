package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/internal/domain/service"
	"github.com/oksasatya/pastryjoy-api/internal/mocks"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
	"github.com/oksasatya/pastryjoy-api/pkg/mailer"
)

type fixture struct {
	users       *mocks.UserRepository
	ingredients *mocks.IngredientRepository
	costs       *mocks.IngredientCostRepository
	recipes     *mocks.RecipeRepository
	products    *mocks.ProductRepository
	orders      *mocks.OrderRepository
	tx          *mocks.Tx
	cfg         *config.Config
	pub         *mocks.MockPublisher

	userSvc       *application.UserService
	ingredientSvc *application.IngredientService
	recipeSvc     *application.RecipeService
	productSvc    *application.ProductService
	orderSvc      *application.OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       mocks.NewUserRepository(),
		ingredients: mocks.NewIngredientRepository(),
		costs:       mocks.NewIngredientCostRepository(),
		recipes:     mocks.NewRecipeRepository(),
		products:    mocks.NewProductRepository(),
		orders:      mocks.NewOrderRepository(),
		tx:          &mocks.Tx{},
		cfg:         &config.Config{AppName: "pastryjoy-api", CompanyName: "PastryJoy", DefaultCurrency: "USD", MinUnitPrice: decimal.Zero},
		pub:         &mocks.MockPublisher{},
	}
	f.pub.On("PublishJSON", mock.Anything, mock.AnythingOfType("mailer.EmailJob")).Return(nil).Maybe()
	calc := service.NewCostCalculator(f.costs, f.recipes, "USD")
	jwt := helpers.NewJWTManager("test-secret", 30*time.Minute)

	f.userSvc = application.NewUserService(f.users, jwt, nil)
	f.ingredientSvc = application.NewIngredientService(f.ingredients, f.costs, "USD", nil)
	f.recipeSvc = application.NewRecipeService(f.recipes, f.ingredients, calc, f.tx, nil)
	f.productSvc = application.NewProductService(f.products, f.recipes, calc, f.tx, "USD", nil)
	f.orderSvc = application.NewOrderService(f.orders, f.products, calc, f.tx, f.cfg, nil)
	f.orderSvc.Publisher = f.pub
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// jobs returns the e-mail jobs published so far, oldest first.
func (f *fixture) jobs() []mailer.EmailJob {
	out := make([]mailer.EmailJob, 0, len(f.pub.Calls))
	for _, c := range f.pub.Calls {
		out = append(out, c.Arguments.Get(1).(mailer.EmailJob))
	}
	return out
}

func (f *fixture) user(t *testing.T, username string, role entity.UserRole) *entity.User {
	t.Helper()
	u, err := f.userSvc.CreateUser(context.Background(), application.RegisterInput{
		Email:    username + "@pastryjoy.test",
		Username: username,
		Password: "password123",
	}, role)
	require.NoError(t, err)
	return u
}

func (f *fixture) ingredient(t *testing.T, name, price string) *entity.Ingredient {
	t.Helper()
	ctx := context.Background()
	ing, err := f.ingredientSvc.Create(ctx, name, "kg")
	require.NoError(t, err)
	if price != "" {
		_, err = f.ingredientSvc.AddCost(ctx, ing.ID, application.CostInput{CostPerUnit: dec(price)})
		require.NoError(t, err)
	}
	return ing
}

// croissant builds a product whose cost breaks down to
// recipes 4.00 + fixed 1.00, +10% variable, +50% margin = 8.25.
func (f *fixture) croissant(t *testing.T) *entity.Product {
	t.Helper()
	ctx := context.Background()
	flour := f.ingredient(t, "Flour", "2.00")
	butter := f.ingredient(t, "Butter", "4.00")
	r, err := f.recipeSvc.Create(ctx, application.RecipeInput{
		Name: "Croissant dough",
		Ingredients: []application.RecipeLine{
			{IngredientID: flour.ID, Quantity: dec("1.5")},
			{IngredientID: butter.ID, Quantity: dec("0.25")},
		},
	})
	require.NoError(t, err)
	p, err := f.productSvc.Create(ctx, application.ProductInput{
		Name:                    "Croissant",
		FixedCosts:              dec("1"),
		VariableCostsPercentage: dec("10"),
		ProfitMarginPercentage:  dec("50"),
		Recipes:                 []application.ProductRecipeLine{{RecipeID: r.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	return p
}
