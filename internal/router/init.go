package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pastryjoy-api/config"
	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/container"
	"github.com/oksasatya/pastryjoy-api/internal/domain/service"
	pginfra "github.com/oksasatya/pastryjoy-api/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/pastryjoy-api/internal/interface/http"
	"github.com/oksasatya/pastryjoy-api/internal/interface/middleware"
	"github.com/oksasatya/pastryjoy-api/internal/router/modules"
	"github.com/oksasatya/pastryjoy-api/pkg/helpers"
)

// Services groups the application services built from the container.
type Services struct {
	Users       *application.UserService
	Ingredients *application.IngredientService
	Recipes     *application.RecipeService
	Products    *application.ProductService
	Orders      *application.OrderService
}

// BuildServices wires repositories and optional infrastructure (GCS,
// Elasticsearch, RabbitMQ) into the services. Anything missing from the
// container simply switches its feature off.
func BuildServices() *Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	ingredients := pginfra.NewIngredientRepository(pool)
	costs := pginfra.NewIngredientCostRepository(pool)
	recipes := pginfra.NewRecipeRepository(pool, logger)
	products := pginfra.NewProductRepository(pool, logger)
	orders := pginfra.NewOrderRepository(pool, logger)
	tx := container.GetTx()
	if tx == nil {
		tx = pginfra.NewTxManager(pool, logger)
		container.SetTx(tx)
	}
	calc := service.NewCostCalculator(costs, recipes, cfg.DefaultCurrency)

	s := &Services{
		Users:       application.NewUserService(users, container.GetJWT(), logger),
		Ingredients: application.NewIngredientService(ingredients, costs, cfg.DefaultCurrency, logger),
		Recipes:     application.NewRecipeService(recipes, ingredients, calc, tx, logger),
		Products:    application.NewProductService(products, recipes, calc, tx, cfg.DefaultCurrency, logger),
		Orders:      application.NewOrderService(orders, products, calc, tx, cfg, logger),
	}

	if up := helpers.NewGCSUploader(container.GetGCS(), cfg.GCSBucket); up != nil {
		s.Products.Images = up
	}
	if es := container.GetES(); es != nil {
		s.Products.ES = es
		s.Products.ESIndex = cfg.ESProductsIndex
	}
	// a nil *RabbitPublisher must not end up in the interface
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		s.Orders.Publisher = pub
	}
	return s
}

// limiter returns a Redis-backed rate limiter, or nil when limiting is off.
func limiter(cfg *config.Config, max int, key middleware.KeyFunc, allow middleware.AllowFunc) gin.HandlerFunc {
	if !cfg.RateLimitEnabled || container.GetRedis() == nil {
		return nil
	}
	return middleware.RateLimit(container.GetRedis(), max, cfg.RateLimitWindow, key, allow)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildServices()

	guard := modules.Guard{
		Auth:  middleware.Auth(svc.Users),
		Admin: middleware.RequireAdmin(),
		Limit: limiter(cfg, cfg.APIRateLimit, middleware.KeyByUserID(), nil),
	}

	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(svc.Users, logger),
		guard,
		limiter(cfg, cfg.AuthRateLimit, middleware.KeyByIPAndPath(), nil),
	))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, cfg, logger), guard))
	r.Add(modules.NewCatalogModule(
		handlers.NewIngredientHandler(svc.Ingredients, cfg, logger),
		handlers.NewRecipeHandler(svc.Recipes, cfg, logger),
		handlers.NewProductHandler(svc.Products, cfg, logger),
		guard,
	))
	r.Add(modules.NewOrderModule(handlers.NewOrderHandler(svc.Orders, cfg, logger), guard))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limiter(cfg, 120, middleware.KeyByIP(), middleware.AllowPrivateIP())))
	}
}
