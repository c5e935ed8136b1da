// Package router wires the HTTP routes of the application.
package router

import (
	"github.com/gin-gonic/gin"

	"expo_backend/internal/config"
	reghandler "expo_backend/internal/feature/registration/transport/handler"
	"expo_backend/internal/platform/http/handler"
	"expo_backend/internal/platform/http/middleware"
)

// maxRequestBody caps uploads well above the 2MB brochure limit so the
// size rule produces the field error instead of a connection reset.
const maxRequestBody = 4 << 20

// NewRouter builds the Gin engine with all middleware and routes.
func NewRouter(register *reghandler.RegisterHandler, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MaxBodyBytes(maxRequestBody))

	// Liveness probe
	r.GET("/healthz", handler.Health)

	// Stored brochures are publicly readable under /storage
	r.Static("/storage", cfg.StorageDir)

	api := r.Group("/api")
	api.POST("/register", register.Register)

	return r
}
