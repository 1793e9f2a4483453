package store

import (
	"context"
	"fmt"

	"github.com/data2rest/logscope/internal/models"
)

const defaultPageSize = 100

// ActivityStore provides read-only access to the activity_logs table.
// Every query is bounded by a models.VisibilityScope; an empty scope
// returns no rows without touching the database.
type ActivityStore struct {
	Base
}

// NewActivityStore creates an ActivityStore.
func NewActivityStore(base Base) *ActivityStore {
	return &ActivityStore{Base: base}
}

// scopeClauses converts a scope into predicate clauses: tenant equality,
// then the actor filter. Allow-All adds no actor clause.
func scopeClauses(s models.VisibilityScope) []Clause {
	var cs []Clause

	if s.HasTenant() {
		cs = append(cs, Eq("l.project_id", *s.TenantID))
	}

	if !s.Actors.AllowsAll() {
		cs = append(cs, In("l.user_id", s.Actors.Actors()))
	}

	return cs
}

// filterClauses converts caller filters into clauses. They only narrow.
func filterClauses(f models.LogFilter) []Clause {
	var cs []Clause

	if f.UserID != "" {
		cs = append(cs, Eq("l.user_id", f.UserID))
	}
	if f.Action != "" {
		cs = append(cs, Eq("l.action", f.Action))
	}
	if f.StartDate != nil {
		cs = append(cs, Since("l.created_at", *f.StartDate))
	}
	if f.EndDate != nil {
		cs = append(cs, Before("l.created_at", f.EndDate.AddDate(0, 0, 1)))
	}
	if f.Search != "" {
		cs = append(cs, Contains("l.details", f.Search))
	}

	return cs
}

// visiblePredicate validates the scope and builds scope plus filter clauses.
func visiblePredicate(s models.VisibilityScope, f models.LogFilter) (*Predicate, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var p Predicate
	p.And(scopeClauses(s)...).And(filterClauses(f)...)

	return &p, nil
}

// ListVisible returns the page of log entries visible under scope, newest
// first with id as tie-breaker. Returns entries, hasMore flag, and any error.
func (s *ActivityStore) ListVisible(
	ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, page models.Page,
) ([]models.LogEntry, bool, error) {
	if scope.IsEmpty() {
		return []models.LogEntry{}, false, nil
	}

	p, err := visiblePredicate(scope, filter)
	if err != nil {
		return nil, false, err
	}

	limit := page.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, false, s.unavailable("list_logs", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only transaction.

	where, args, argIdx := p.Render()
	query := fmt.Sprintf(
		"SELECT %s FROM %s %s ORDER BY l.created_at DESC, l.id DESC LIMIT $%d OFFSET $%d",
		logColumns, logSource, where, argIdx, argIdx+1,
	)
	args = append(args, limit+1, page.Offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, s.unavailable("list_logs", err)
	}
	defer rows.Close()

	entries, err := collectLogEntries(rows)
	if err != nil {
		return nil, false, s.unavailable("list_logs", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	return entries, hasMore, nil
}

// TopEndpoints returns the most frequent API_ actions under scope, by
// count descending then action ascending.
func (s *ActivityStore) TopEndpoints(
	ctx context.Context, scope models.VisibilityScope, limit int,
) ([]models.EndpointCount, error) {
	if scope.IsEmpty() || limit <= 0 {
		return []models.EndpointCount{}, nil
	}

	p, err := visiblePredicate(scope, models.LogFilter{})
	if err != nil {
		return nil, err
	}
	p.And(Prefix("l.action", models.APIActionPrefix))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args, argIdx := p.Render()
	query := fmt.Sprintf(
		"SELECT l.action, COUNT(*) FROM activity_logs l %s GROUP BY l.action ORDER BY COUNT(*) DESC, l.action ASC LIMIT $%d",
		where, argIdx,
	)
	args = append(args, limit)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.unavailable("top_endpoints", err)
	}
	defer rows.Close()

	top := make([]models.EndpointCount, 0, limit)
	for rows.Next() {
		var ec models.EndpointCount
		if err := rows.Scan(&ec.Action, &ec.Count); err != nil {
			return nil, s.unavailable("top_endpoints", fmt.Errorf("scanning endpoint count: %w", err))
		}
		top = append(top, ec)
	}

	if err := rows.Err(); err != nil {
		return nil, s.unavailable("top_endpoints", err)
	}

	return top, nil
}

// DistinctActions lists the actions present among visible rows.
func (s *ActivityStore) DistinctActions(ctx context.Context, scope models.VisibilityScope) ([]string, error) {
	if scope.IsEmpty() {
		return []string{}, nil
	}

	p, err := visiblePredicate(scope, models.LogFilter{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args, _ := p.Render()
	rows, err := s.Pool.Query(ctx,
		"SELECT DISTINCT l.action FROM activity_logs l "+where+" ORDER BY l.action", args...)
	if err != nil {
		return nil, s.unavailable("distinct_actions", err)
	}
	defer rows.Close()

	actions := make([]string, 0, 16)
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, s.unavailable("distinct_actions", fmt.Errorf("scanning action: %w", err))
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, s.unavailable("distinct_actions", err)
	}

	return actions, nil
}

// ActiveActors lists the actors that wrote visible rows, with their
// current username when the actor still exists.
func (s *ActivityStore) ActiveActors(ctx context.Context, scope models.VisibilityScope) ([]models.Actor, error) {
	if scope.IsEmpty() {
		return []models.Actor{}, nil
	}

	p, err := visiblePredicate(scope, models.LogFilter{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args, _ := p.Render()
	query := fmt.Sprintf(`
		SELECT DISTINCT l.user_id::text, u.username
		FROM %s %s
		ORDER BY u.username NULLS LAST, l.user_id::text`, logSource, joinWhere(where, "l.user_id IS NOT NULL"))

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, s.unavailable("active_actors", err)
	}
	defer rows.Close()

	actors := make([]models.Actor, 0, 16)
	for rows.Next() {
		var a models.Actor
		if err := rows.Scan(&a.ID, &a.Username); err != nil {
			return nil, s.unavailable("active_actors", fmt.Errorf("scanning actor: %w", err))
		}
		actors = append(actors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, s.unavailable("active_actors", err)
	}

	return actors, nil
}

// Export streams up to limit visible rows, newest first, to fn. It stops at
// the first error fn returns.
func (s *ActivityStore) Export(
	ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, limit int,
	fn func(models.LogEntry) error,
) error {
	if scope.IsEmpty() || limit <= 0 {
		return nil
	}

	p, err := visiblePredicate(scope, filter)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return s.unavailable("export_logs", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only transaction.

	where, args, argIdx := p.Render()
	query := fmt.Sprintf(
		"SELECT %s FROM %s %s ORDER BY l.created_at DESC, l.id DESC LIMIT $%d",
		logColumns, logSource, where, argIdx,
	)
	args = append(args, limit)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return s.unavailable("export_logs", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanLogEntry(rows.Scan)
		if err != nil {
			return s.unavailable("export_logs", fmt.Errorf("scanning log row: %w", err))
		}

		if err := fn(*e); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return s.unavailable("export_logs", err)
	}

	return nil
}

// joinWhere appends an extra condition to a rendered WHERE clause.
func joinWhere(where, cond string) string {
	if where == "" {
		return "WHERE " + cond
	}

	return where + " AND " + cond
}
