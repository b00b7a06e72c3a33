// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/plc-visualizer/plc2yaml/internal/convert"
	"github.com/plc-visualizer/plc2yaml/internal/export"
	"github.com/plc-visualizer/plc2yaml/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store       storage.Store
	Converter   *convert.Converter
	Encoders    *export.Registry
	RecentLimit int
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health      HealthHandler
	Convert     ConvertHandler
	Conversions ConversionHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	encoders := deps.Encoders
	if encoders == nil {
		encoders = export.GetGlobalRegistry()
	}
	conv := NewConvertHandler(deps.Store, deps.Converter, encoders, deps.RecentLimit)
	return &Handlers{
		Health:      NewHealthHandler(deps.Version),
		Convert:     conv,
		Conversions: conv,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Conversion
	apiGroup.POST("/convert", handlers.Convert.HandleConvert)
	apiGroup.POST("/inspect", handlers.Convert.HandleInspect)

	// Stored conversions
	convGroup := apiGroup.Group("/conversions")
	convGroup.GET("", handlers.Conversions.HandleListConversions)
	convGroup.GET("/:id", handlers.Conversions.HandleGetConversion)
	convGroup.GET("/:id/document", handlers.Conversions.HandleGetDocument)
	convGroup.DELETE("/:id", handlers.Conversions.HandleDeleteConversion)
}

// MiddlewareConfig selects the optional middleware
type MiddlewareConfig struct {
	BodyLimit      string
	RequestLogging bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg MiddlewareConfig) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.RequestLogging {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Request().URL.Path, "/health")
			},
		}))
	}

	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
}
