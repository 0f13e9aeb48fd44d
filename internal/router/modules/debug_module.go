package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
)

type DebugModule struct {
	Limit gin.HandlerFunc
}

func NewDebugModule(limit gin.HandlerFunc) *DebugModule { return &DebugModule{Limit: limit} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint (expvar), rate-limited per IP
	handlers := []gin.HandlerFunc{gin.WrapH(expvar.Handler())}
	if m.Limit != nil {
		handlers = append([]gin.HandlerFunc{m.Limit}, handlers...)
	}
	rg.GET("/debug/vars", handlers...)
}
