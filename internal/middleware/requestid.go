package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"

	loggerKey = "logger"
)

// RequestID always generates a fresh server-side UUID for the canonical
// request ID. A client-supplied X-Request-ID is kept as "client_request_id"
// for correlation only. It also stores a request-scoped log entry that
// RequestLogger returns.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		entry := log.WithField(RequestIDKey, id)

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			entry = entry.WithField("client_request_id", clientID)
			c.Set("client_request_id", clientID)
		}

		c.Set(RequestIDKey, id)
		c.Set(loggerKey, entry)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger returns the request-scoped log entry, falling back to
// fallback when RequestID did not run.
func RequestLogger(c *gin.Context, fallback *logrus.Logger) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			if uid := c.GetString("user_id"); uid != "" {
				return entry.WithField("user_id", uid)
			}
			return entry
		}
	}

	return logrus.NewEntry(fallback)
}
