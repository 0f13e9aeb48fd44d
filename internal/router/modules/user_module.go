package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pastryjoy-api/internal/interface/http"
)

// UserModule wires the settings endpoints and the admin user listing.
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   Guard
}

func NewUserModule(h *handlers.UserHandler, guard Guard) *UserModule {
	return &UserModule{Handler: h, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Authenticated(rg)
	{
		auth.GET("/users/me/settings", m.Handler.GetSettings)
		auth.PATCH("/users/me/settings", m.Handler.UpdateSettings)
	}

	admin := m.Guard.AdminOnly(rg)
	admin.GET("/users", m.Handler.List)
}
