package middleware

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	bruteForceMaxAttempts = 5
	bruteForceWindow      = 15 * time.Minute
	bruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard tracks authentication failures per token hash and locks
// out tokens that exceed the threshold within the tracking window.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
}

// NewBruteForceGuard creates a guard and starts a background cleanup
// goroutine that stops when ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
	}
	go g.cleanupLoop(ctx)
	return g
}

// IsBlocked reports whether token is currently locked out.
func (g *BruteForceGuard) IsBlocked(token string) bool {
	th := hashToken(token)
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[th]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && time.Since(rec.lockedAt) < bruteForceLockout
}

// RecordFailure records a failed authentication attempt for token.
func (g *BruteForceGuard) RecordFailure(token string) {
	th := hashToken(token)
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[th]
	if !ok || now.Sub(rec.firstFail) > bruteForceWindow {
		g.records[th] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= bruteForceMaxAttempts {
		rec.lockedAt = now
		g.log.WithField("token_hash", th[:16]+"...").Warn("session token locked out after repeated auth failures")
	}
}

// ResetKey clears failure tracking for token (call on successful auth).
func (g *BruteForceGuard) ResetKey(token string) {
	th := hashToken(token)
	g.mu.Lock()
	delete(g.records, th)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.sweep(now)
		}
	}
}

// sweep drops expired lockouts and stale windows, then trims the table to
// bruteForceMaxRecords by evicting the oldest windows.
func (g *BruteForceGuard) sweep(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		if !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= bruteForceLockout {
			delete(g.records, k)
		} else if now.Sub(rec.firstFail) >= bruteForceWindow {
			delete(g.records, k)
		}
	}

	excess := len(g.records) - bruteForceMaxRecords
	if excess <= 0 {
		return
	}

	keys := make([]string, 0, len(g.records))
	for k := range g.records {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b string) int {
		return g.records[a].firstFail.Compare(g.records[b].firstFail)
	})

	for _, k := range keys[:excess] {
		delete(g.records, k)
	}
}

// BruteForceMiddleware returns middleware that rejects locked-out tokens
// before they reach the session store.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearerToken(c)
		if token != "" && guard.IsBlocked(token) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			return
		}

		c.Next()
	}
}
