package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/smallbiznis/revlens/internal/snapshot/domain"
)

type errorPayload struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal           = errors.New("internal_error")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// ErrorHandlingMiddleware converts errors collected on the gin context into
// a single JSON error response. Handlers abort with AbortWithError and never
// write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, snapshotdomain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:      "provider_unavailable",
			Message:   "billing provider is unavailable, retry later",
			Retryable: true,
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:      "service_unavailable",
			Message:   "service unavailable",
			Retryable: true,
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog maps errors to stable (type, code) pairs for request
// logs without leaking details into the log stream.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, snapshotdomain.ErrProviderUnavailable):
		return "provider", "provider_unavailable"
	case errors.Is(err, ErrServiceUnavailable):
		return "availability", "service_unavailable"
	default:
		return "internal", "internal_error"
	}
}
