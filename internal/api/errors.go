package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/httputil"
	"github.com/data2rest/logscope/internal/metrics"
	"github.com/data2rest/logscope/internal/middleware"
	"github.com/data2rest/logscope/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeInvalidScope     = "invalid_scope"
	ErrCodeInternalError    = "internal_error"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeStoreUnavailable = "store_unavailable"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error onto its HTTP status. The message
// of internal failures never reaches the client.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, op string) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	case errors.Is(err, models.ErrInvalidScope):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidScope, err.Error())
	case errors.Is(err, models.ErrInvalidFilter):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, models.ErrStoreUnavailable):
		middleware.RequestLogger(c, log).WithError(err).Error(op + " failed: store unavailable")
		respondError(c, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "log store unavailable")
	default:
		middleware.RequestLogger(c, log).WithError(err).Error(op + " failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
