package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/domain"
	"github.com/data2rest/logscope/internal/models"
	"github.com/data2rest/logscope/internal/principal"
)

// authTimingFloor is the minimum response time for rejected requests so that
// valid and invalid tokens cannot be told apart by latency.
const authTimingFloor = 50 * time.Millisecond

// truncateToken returns at most the first 4 characters of token followed by "...".
func truncateToken(token string) string {
	if len(token) > 4 {
		return token[:4] + "..."
	}
	return token
}

// enforceTimingFloor sleeps if needed so the response takes at least authTimingFloor.
func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// SessionAuth returns Gin middleware that resolves the Bearer session token
// into a Principal. If a BruteForceGuard is provided, failed attempts are
// tracked per token hash. A directory outage fails closed with 503.
func SessionAuth(lookup domain.SessionLookup, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		token := ExtractBearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		sess, err := lookup.LookupSession(c.Request.Context(), token)
		switch {
		case errors.Is(err, models.ErrUnauthenticated):
			logAuthFailure(log, c, token)

			if guard != nil {
				guard.RecordFailure(token)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
			return
		case err != nil:
			log.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Error("session lookup failed")
			respondError(c, http.StatusServiceUnavailable, "store_unavailable", "session store unavailable")
			return
		}

		if guard != nil {
			guard.ResetKey(token)
		}

		principal.Set(c, sess.Principal())
		c.Set("user_id", sess.UserID)
		c.Next()
	}
}

// ExtractBearerToken extracts the session token from the Authorization header.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// logAuthFailure logs a failed authentication attempt.
func logAuthFailure(log *logrus.Logger, c *gin.Context, token string) {
	log.WithFields(logrus.Fields{
		"client_ip":    c.ClientIP(),
		"method":       c.Request.Method,
		"path":         c.Request.URL.Path,
		"user_agent":   c.Request.UserAgent(),
		"request_id":   c.GetString(RequestIDKey),
		"token_prefix": truncateToken(token),
	}).Warn("authentication failed: invalid session token")
}
