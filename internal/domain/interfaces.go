// Package domain defines the canonical service interfaces shared across
// layers (REST handlers, services, stores). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"
	"io"

	"github.com/data2rest/logscope/internal/models"
)

// LogService defines the scoped activity-log read operations.
// Every method resolves a fresh VisibilityScope from the principal.
type LogService interface {
	ListLogs(ctx context.Context, p models.Principal, filter models.LogFilter, page models.Page) (*models.LogPage, error)
	FilterOptions(ctx context.Context, p models.Principal) (*models.FilterOptions, error)
	Scope(ctx context.Context, p models.Principal) (models.ScopeSummary, error)
	ExportCSV(ctx context.Context, p models.Principal, filter models.LogFilter, w io.Writer) (int, error)
}

// ActivityStore defines scoped reads over the activity log.
type ActivityStore interface {
	ListVisible(ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, page models.Page) ([]models.LogEntry, bool, error)
	TopEndpoints(ctx context.Context, scope models.VisibilityScope, limit int) ([]models.EndpointCount, error)
	DistinctActions(ctx context.Context, scope models.VisibilityScope) ([]string, error)
	ActiveActors(ctx context.Context, scope models.VisibilityScope) ([]models.Actor, error)
	Export(ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, limit int, fn func(models.LogEntry) error) error
}

// ScopeResolver computes the VisibilityScope of a principal.
type ScopeResolver interface {
	ComputeScope(ctx context.Context, p models.Principal) (models.VisibilityScope, error)
}

// SessionLookup resolves a bearer token into its session.
type SessionLookup interface {
	LookupSession(ctx context.Context, token string) (models.Session, error)
}
