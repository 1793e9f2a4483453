package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/data2rest/logscope/internal/domain"
	"github.com/data2rest/logscope/internal/metrics"
	"github.com/data2rest/logscope/internal/models"
)

// Compile-time check: *LogService must satisfy domain.LogService.
var _ domain.LogService = (*LogService)(nil)

// exportHeader is the column row of CSV exports.
var exportHeader = []string{"id", "project_id", "user_id", "username", "action", "details", "ip_address", "created_at"}

// LogOptions tunes LogService.
type LogOptions struct {
	DefaultPageSize int
	TopLimit        int
	// TopTenantWide drops the actor filter from the top-endpoints aggregate,
	// keeping only the tenant filter.
	TopTenantWide bool
	ExportLimit   int
}

// LogService answers activity-log reads on behalf of a principal. Each call
// resolves one VisibilityScope and passes that same value to every query.
type LogService struct {
	store  domain.ActivityStore
	scopes domain.ScopeResolver
	opts   LogOptions
	log    *logrus.Logger
}

// NewLogService creates a LogService.
func NewLogService(store domain.ActivityStore, scopes domain.ScopeResolver, opts LogOptions, log *logrus.Logger) *LogService {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 100
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = 5
	}
	if opts.ExportLimit <= 0 {
		opts.ExportLimit = 1000
	}

	return &LogService{store: store, scopes: scopes, opts: opts, log: log}
}

// ListLogs returns the visible page with its stats. The page query and the
// top-endpoints aggregate run concurrently; the first failure cancels the
// other and no partial result is returned.
func (s *LogService) ListLogs(
	ctx context.Context, p models.Principal, filter models.LogFilter, page models.Page,
) (*models.LogPage, error) {
	scope, err := s.scopes.ComputeScope(ctx, p)
	if err != nil {
		return nil, err
	}

	if page.Limit <= 0 {
		page.Limit = s.opts.DefaultPageSize
	}

	var (
		entries []models.LogEntry
		hasMore bool
		top     []models.EndpointCount
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		entries, hasMore, err = s.store.ListVisible(gctx, scope, filter, page)
		return err
	})

	g.Go(func() error {
		var err error
		top, err = s.store.TopEndpoints(gctx, s.topScope(scope), s.opts.TopLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []models.LogEntry{}
	}

	metrics.VisibleRows.Observe(float64(len(entries)))

	s.log.WithFields(logrus.Fields{
		"user_id":    p.ID,
		"scope_kind": scope.Kind(),
		"rows":       len(entries),
		"offset":     page.Offset,
	}).Debug("logs.list")

	return &models.LogPage{
		Logs:     entries,
		Stats:    Summarize(entries, top),
		TenantID: scope.TenantID,
		HasMore:  hasMore,
	}, nil
}

// topScope returns the scope used for the top-endpoints aggregate. An empty
// scope stays empty in every mode.
func (s *LogService) topScope(scope models.VisibilityScope) models.VisibilityScope {
	if !s.opts.TopTenantWide || scope.IsEmpty() {
		return scope
	}

	return models.VisibilityScope{TenantID: scope.TenantID, Actors: models.AllowAllActors()}
}

// FilterOptions lists the actors and actions visible to p.
func (s *LogService) FilterOptions(ctx context.Context, p models.Principal) (*models.FilterOptions, error) {
	scope, err := s.scopes.ComputeScope(ctx, p)
	if err != nil {
		return nil, err
	}

	var opts models.FilterOptions

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		opts.Actors, err = s.store.ActiveActors(gctx, scope)
		return err
	})

	g.Go(func() error {
		var err error
		opts.Actions, err = s.store.DistinctActions(gctx, scope)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &opts, nil
}

// Scope describes the visibility boundary resolved for p.
func (s *LogService) Scope(ctx context.Context, p models.Principal) (models.ScopeSummary, error) {
	scope, err := s.scopes.ComputeScope(ctx, p)
	if err != nil {
		return models.ScopeSummary{}, err
	}

	return scope.Summary(), nil
}

// ExportCSV writes visible rows matching filter to w as CSV, capped at the
// export limit. Returns the number of data rows written.
func (s *LogService) ExportCSV(ctx context.Context, p models.Principal, filter models.LogFilter, w io.Writer) (int, error) {
	scope, err := s.scopes.ComputeScope(ctx, p)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("writing csv header: %w", err)
	}

	var n int

	err = s.store.Export(ctx, scope, filter, s.opts.ExportLimit, func(e models.LogEntry) error {
		n++
		return cw.Write(exportRecord(e))
	})
	if err != nil {
		return n, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("flushing csv: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    p.ID,
		"scope_kind": scope.Kind(),
		"rows":       n,
	}).Info("logs.export")

	return n, nil
}

func exportRecord(e models.LogEntry) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		deref(e.ProjectID),
		deref(e.UserID),
		deref(e.Username),
		e.Action,
		e.DetailsText(),
		e.IPAddress,
		e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
