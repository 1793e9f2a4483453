package service

import (
	"context"
	"sync"

	"github.com/data2rest/logscope/internal/models"
)

// mockActivityStore records calls and returns configured responses.
type mockActivityStore struct {
	mu     sync.Mutex
	calls  []string
	scopes map[string]models.VisibilityScope

	listVisible     func(ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, page models.Page) ([]models.LogEntry, bool, error)
	topEndpoints    func(ctx context.Context, scope models.VisibilityScope, limit int) ([]models.EndpointCount, error)
	distinctActions func(ctx context.Context, scope models.VisibilityScope) ([]string, error)
	activeActors    func(ctx context.Context, scope models.VisibilityScope) ([]models.Actor, error)
	export          func(ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, limit int, fn func(models.LogEntry) error) error
}

func (m *mockActivityStore) record(name string, scope models.VisibilityScope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)

	if m.scopes == nil {
		m.scopes = make(map[string]models.VisibilityScope)
	}
	m.scopes[name] = scope
}

func (m *mockActivityStore) scopeOf(name string) models.VisibilityScope {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.scopes[name]
}

func (m *mockActivityStore) ListVisible(ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, page models.Page) ([]models.LogEntry, bool, error) {
	m.record("ListVisible", scope)
	return m.listVisible(ctx, scope, filter, page)
}

func (m *mockActivityStore) TopEndpoints(ctx context.Context, scope models.VisibilityScope, limit int) ([]models.EndpointCount, error) {
	m.record("TopEndpoints", scope)
	return m.topEndpoints(ctx, scope, limit)
}

func (m *mockActivityStore) DistinctActions(ctx context.Context, scope models.VisibilityScope) ([]string, error) {
	m.record("DistinctActions", scope)
	return m.distinctActions(ctx, scope)
}

func (m *mockActivityStore) ActiveActors(ctx context.Context, scope models.VisibilityScope) ([]models.Actor, error) {
	m.record("ActiveActors", scope)
	return m.activeActors(ctx, scope)
}

func (m *mockActivityStore) Export(ctx context.Context, scope models.VisibilityScope, filter models.LogFilter, limit int, fn func(models.LogEntry) error) error {
	m.record("Export", scope)
	return m.export(ctx, scope, filter, limit, fn)
}

// mockResolver returns a fixed scope or error.
type mockResolver struct {
	scope models.VisibilityScope
	err   error
	calls int
}

func (m *mockResolver) ComputeScope(_ context.Context, _ models.Principal) (models.VisibilityScope, error) {
	m.calls++
	return m.scope, m.err
}
