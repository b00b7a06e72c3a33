// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/plc-visualizer/plc2yaml/internal/parser"
	"github.com/plc-visualizer/plc2yaml/internal/storage"
	"k8s.io/klog/v2"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewFormatError creates a 422 error for uploads that are not element-doc exports
func NewFormatError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "FORMAT_ERROR",
		Message: "input is not an element documentation export",
		Details: cause.Error(),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// storeError maps storage errors to API errors
func storeError(err error, id string) *APIError {
	if errors.Is(err, storage.ErrNotFound) {
		return NewNotFoundError("conversion", id)
	}
	return NewInternalError("storage failure", err)
}

// convertError maps pipeline errors to API errors
func convertError(err error) *APIError {
	var fe *parser.FormatError
	if errors.As(err, &fe) {
		return NewFormatError(err)
	}
	return NewBadRequestError("failed to read export", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
			Details: err.Error(),
		}
	}

	if apiErr.Status >= http.StatusInternalServerError {
		klog.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		klog.Errorf("writing error response: %v", err)
	}
}
