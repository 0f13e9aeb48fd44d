package modules

import "github.com/gin-gonic/gin"

// Guard is the middleware shared by modules with protected routes.
type Guard struct {
	Auth  gin.HandlerFunc // bearer token; required
	Admin gin.HandlerFunc // admin role; runs after Auth
	// Limit is the per-user limiter applied after Auth. Nil disables it.
	Limit gin.HandlerFunc
}

// Authenticated returns a group where every route requires a valid token.
func (g Guard) Authenticated(rg *gin.RouterGroup) *gin.RouterGroup {
	grp := rg.Group("/")
	grp.Use(g.Auth)
	if g.Limit != nil {
		grp.Use(g.Limit)
	}
	return grp
}

// AdminOnly returns a group restricted to admins.
func (g Guard) AdminOnly(rg *gin.RouterGroup) *gin.RouterGroup {
	grp := g.Authenticated(rg)
	grp.Use(g.Admin)
	return grp
}
