package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/data2rest/logscope/internal/domain"
	"github.com/data2rest/logscope/internal/models"
)

const (
	negativeCacheTTL = 30 * time.Second
	maxCacheEntries  = 10000
)

// hashToken returns a hex-encoded SHA-256 of the token so raw tokens are
// never held in memory.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// CachedSessionLookup wraps a SessionLookup with a bounded negative cache.
// Only rejected tokens are cached. Successful lookups always reach the
// directory, since admin flag, group and active project may change between
// requests.
type CachedSessionLookup struct {
	inner    domain.SessionLookup
	rejected *expirable.LRU[string, struct{}]
}

// NewCachedSessionLookup creates a caching wrapper around inner.
func NewCachedSessionLookup(inner domain.SessionLookup) *CachedSessionLookup {
	return &CachedSessionLookup{
		inner:    inner,
		rejected: expirable.NewLRU[string, struct{}](maxCacheEntries, nil, negativeCacheTTL),
	}
}

// LookupSession returns models.ErrUnauthenticated for recently rejected tokens
// and otherwise delegates to the inner lookup.
func (c *CachedSessionLookup) LookupSession(ctx context.Context, token string) (models.Session, error) {
	hk := hashToken(token)

	if _, ok := c.rejected.Get(hk); ok {
		return models.Session{}, fmt.Errorf("%w (cached)", models.ErrUnauthenticated)
	}

	sess, err := c.inner.LookupSession(ctx, token)
	if errors.Is(err, models.ErrUnauthenticated) {
		c.rejected.Add(hk, struct{}{})
	}

	return sess, err
}
