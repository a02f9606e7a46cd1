package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar mounts a handler's routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// New builds the gin engine with the common middleware and all routes
// mounted under /api/v1. trace may be nil when request tracing is off.
func New(log *zap.Logger, production bool, trace gin.HandlerFunc, registrars ...RouteRegistrar) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.CORS(),
		logger.GinMiddleware(log),
		logger.GinRecovery(log),
	)
	if trace != nil {
		engine.Use(trace)
	}

	api := engine.Group("/api/v1")
	for _, registrar := range registrars {
		registrar.RegisterRoutes(api)
	}
	return engine
}
