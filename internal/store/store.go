// Package store provides focused, single-concern data access stores
// for logscope.
//
// Each store owns one domain (activity log, user directory) and embeds
// shared helpers (Pool, logger) via the Base struct. Stores never import
// each other. Shared logic lives in this file or in dedicated helper files
// (predicate.go, scan.go).
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/dbpool"
	"github.com/data2rest/logscope/internal/metrics"
	"github.com/data2rest/logscope/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool         *dbpool.Pool
	Log          *logrus.Logger
	QueryTimeout time.Duration
}

// withTimeout bounds ctx by the configured query timeout.
func (b *Base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// unavailable wraps a storage failure as models.ErrStoreUnavailable and
// counts it under op.
func (b *Base) unavailable(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	b.Log.WithError(err).WithField("op", op).Error("store query failed")

	return fmt.Errorf("%w: %s: %w", models.ErrStoreUnavailable, op, err)
}
