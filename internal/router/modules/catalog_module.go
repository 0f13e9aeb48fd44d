package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pastryjoy-api/internal/interface/http"
)

// CatalogModule serves ingredients, recipes and products. Any authenticated
// user may read; writes are admin only.
type CatalogModule struct {
	Ingredients *handlers.IngredientHandler
	Recipes     *handlers.RecipeHandler
	Products    *handlers.ProductHandler
	Guard       Guard
}

func NewCatalogModule(ih *handlers.IngredientHandler, rh *handlers.RecipeHandler, ph *handlers.ProductHandler, guard Guard) *CatalogModule {
	return &CatalogModule{Ingredients: ih, Recipes: rh, Products: ph, Guard: guard}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	read := m.Guard.Authenticated(rg)
	{
		read.GET("/ingredients", m.Ingredients.List)
		read.GET("/ingredients/:id", m.Ingredients.Get)
		read.GET("/ingredients/:id/costs", m.Ingredients.CostHistory)
		read.GET("/ingredients/:id/costs/current", m.Ingredients.CurrentCost)

		read.GET("/recipes", m.Recipes.List)
		read.GET("/recipes/:id", m.Recipes.Get)
		read.GET("/recipes/:id/cost", m.Recipes.Cost)

		read.GET("/products", m.Products.List)
		read.GET("/products/search", m.Products.Search)
		read.GET("/products/:id", m.Products.Get)
		read.GET("/products/:id/cost", m.Products.Cost)
	}

	write := m.Guard.AdminOnly(rg)
	{
		write.POST("/ingredients", m.Ingredients.Create)
		write.PUT("/ingredients/:id", m.Ingredients.Update)
		write.DELETE("/ingredients/:id", m.Ingredients.Delete)
		write.POST("/ingredients/:id/costs", m.Ingredients.AddCost)

		write.POST("/recipes", m.Recipes.Create)
		write.PUT("/recipes/:id", m.Recipes.Update)
		write.DELETE("/recipes/:id", m.Recipes.Delete)

		write.POST("/products", m.Products.Create)
		write.PUT("/products/:id", m.Products.Update)
		write.DELETE("/products/:id", m.Products.Delete)
		write.POST("/products/:id/image", m.Products.UploadImage)
	}
}
