package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
	"github.com/oksasatya/pastryjoy-api/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// TokenVerifier resolves a bearer token to an active user.
type TokenVerifier interface {
	UserFromToken(ctx context.Context, token string) (*entity.User, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error[any](c, http.StatusUnauthorized, msg, nil)
}

// Auth validates the bearer token and loads the user it names.
// It sets user and userID in the Gin context on success.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "not authenticated")
			return
		}
		u, err := verifier.UserFromToken(c.Request.Context(), token)
		switch {
		case errors.Is(err, application.ErrInactiveUser):
			unauthorized(c, "user account is inactive")
			return
		case errors.Is(err, application.ErrInvalidCredentials):
			unauthorized(c, "could not validate credentials")
			return
		case err != nil:
			_ = c.Error(err)
			response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID.String())
		c.Next()
	}
}

// RequireAdmin rejects authenticated non-admin users. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			unauthorized(c, "not authenticated")
			return
		}
		if !u.IsAdmin() {
			response.Error[any](c, http.StatusForbidden, "admin privileges required", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by Auth, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
