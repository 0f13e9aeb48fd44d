package router

import "github.com/gin-gonic/gin"

// Module is a feature slice of the API (auth, catalog, orders, ...) that
// mounts its routes on the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
