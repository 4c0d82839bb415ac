// Package rest serves the resolver over HTTP with gin.
//
// Errors are returned as {"detail": "..."} with the status chosen by
// statusFor: not found 404, unsupported source and invalid input 400,
// upstream failures 502.
package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tingbok/tingbok/internal/core/domain"
)

// ErrMissingResolver is returned when the resolver service is not provided.
var ErrMissingResolver = errors.New("rest: resolver service is required")

type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedSource), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), errorResponse{
		Detail:    err.Error(),
		RequestID: c.GetString(requestIDKey),
	})
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Detail:    detail,
		RequestID: c.GetString(requestIDKey),
	})
}
