package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders returns Gin middleware that sets common security response headers.
// Log responses carry actor identities, so nothing may be cached.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")

		c.Next()
	}
}

// ReadOnly rejects every method other than GET, HEAD and OPTIONS. The log
// API never writes.
func ReadOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			c.Header("Allow", "GET, HEAD, OPTIONS")
			respondError(c, http.StatusMethodNotAllowed, "method_not_allowed", "the log API is read-only")
		}
	}
}
