// Package handlers provides the HTTP handlers of the top-up portal API.
//
// This file defines the response helpers shared by every endpoint. Every
// failure is an ErrorResponse carrying exactly one human-readable message;
// a rejected form adds the per-field results and a declined purchase adds
// its ticket.
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "message": "Please fix the highlighted fields before submitting.",
//	  "fields": { "phone": { "valid": false, "code": "INVALID_FORMAT", "message": "..." } }
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/http/middleware"
	"github.com/tbourn/go-topup-portal/internal/validate"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"declined"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Insufficient balance"`
	// Per-field results of a rejected top-up form
	Fields validate.Errors `json:"fields,omitempty"`
	// Ticket of a declined purchase
	Ticket *domain.Ticket `json:"ticket,omitempty"`
}

// failWith aborts with resp after stamping the request id. 5xx responses are
// logged with the request-scoped logger.
func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = middleware.RequestIDFrom(c)

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// Fail is the exported variant of fail() for the router (NoRoute, NoMethod).
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
