// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// ConvertHandler handles export conversions
type ConvertHandler interface {
	HandleConvert(c echo.Context) error
	HandleInspect(c echo.Context) error
}

// ConversionHandler handles stored conversion operations
type ConversionHandler interface {
	HandleListConversions(c echo.Context) error
	HandleGetConversion(c echo.Context) error
	HandleGetDocument(c echo.Context) error
	HandleDeleteConversion(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
