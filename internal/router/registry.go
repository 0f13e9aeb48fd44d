package router

import "github.com/gin-gonic/gin"

// Registry collects feature modules and mounts them under the API prefix.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

// Use adds middleware that runs for every /api route, ahead of the modules'
// own middleware. Nil handlers are skipped.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	for _, h := range mw {
		if h != nil {
			r.middlewares = append(r.middlewares, h)
		}
	}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// Modules reports how many modules are registered.
func (r *Registry) Modules() int { return len(r.modules) }

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
