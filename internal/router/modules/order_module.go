package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pastryjoy-api/internal/interface/http"
)

// OrderModule: users create and manage their own orders, admins drive the
// status lifecycle and may delete.
type OrderModule struct {
	Handler *handlers.OrderHandler
	Guard   Guard
}

func NewOrderModule(h *handlers.OrderHandler, guard Guard) *OrderModule {
	return &OrderModule{Handler: h, Guard: guard}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Authenticated(rg)
	{
		auth.GET("/orders", m.Handler.List)
		auth.POST("/orders", m.Handler.Create)
		auth.GET("/orders/:id", m.Handler.Get)
		auth.PUT("/orders/:id", m.Handler.Update)
	}

	admin := m.Guard.AdminOnly(rg)
	{
		admin.PATCH("/orders/:id/status", m.Handler.UpdateStatus)
		admin.DELETE("/orders/:id", m.Handler.Delete)
	}
}
