// Package handlers provides the HTTP handler implementations for the public
// API.
//
// This file defines the response envelope used across all endpoints. Every
// success body is `{"success": true, "data": ...}` and every failure is
// `{"success": false, "message": ..., "code": ..., "errors": [...]}` so
// clients can branch on a single shape.
//
// Conventions:
//   - `fail()` centralizes error formatting; 5xx responses are logged with
//     request context through the request-scoped logger.
//   - `failFields()` carries per-field validation messages in `errors[]`.
//   - `ok()` wraps the payload in the success envelope.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/wellness-backend/internal/http/middleware"
)

// FieldError is one per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope returned by all endpoints.
type ErrorResponse struct {
	Success   bool         `json:"success"`
	RequestID string       `json:"request_id,omitempty"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// SuccessResponse is the success envelope returned by all endpoints.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// fail aborts the request with a structured error and logs server-side
// errors through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, code, msg, nil)
}

// failFields aborts with a validation failure carrying per-field messages.
func failFields(c *gin.Context, msg string, fields []FieldError) {
	failWith(c, http.StatusBadRequest, ErrCodeValidation, msg, fields)
}

func failWith(c *gin.Context, status int, code, msg string, fields []FieldError) {
	resp := ErrorResponse{
		Success:   false,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
		Errors:    fields,
	}
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(); router-level handlers (404, 405,
// recovery) use it to keep the envelope uniform.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success envelope with the given status.
func ok(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
