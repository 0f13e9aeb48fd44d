package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/pastryjoy-api/internal/interface/http"
)

// AuthModule serves registration, login and the current user.
// Public: POST /api/auth/register, POST /api/auth/login
// Protected: GET /api/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   Guard
	// Limit throttles the public endpoints per IP and path.
	Limit gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, guard Guard, limit gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard, Limit: limit}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	public := rg.Group("/auth")
	if m.Limit != nil {
		public.Use(m.Limit)
	}
	public.POST("/register", m.Handler.Register)
	public.POST("/login", m.Handler.Login)

	auth := m.Guard.Authenticated(rg)
	auth.GET("/auth/me", m.Handler.Me)
}
