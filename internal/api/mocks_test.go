package api_test

import (
	"context"
	"io"
	"sync"

	"github.com/data2rest/logscope/internal/models"
)

// mockLogService implements domain.LogService for testing.
type mockLogService struct {
	listFn    func(ctx context.Context, p models.Principal, filter models.LogFilter, page models.Page) (*models.LogPage, error)
	filtersFn func(ctx context.Context, p models.Principal) (*models.FilterOptions, error)
	scopeFn   func(ctx context.Context, p models.Principal) (models.ScopeSummary, error)
	exportFn  func(ctx context.Context, p models.Principal, filter models.LogFilter, w io.Writer) (int, error)

	mu    sync.Mutex
	calls int
}

func (m *mockLogService) record() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

func (m *mockLogService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

func (m *mockLogService) ListLogs(ctx context.Context, p models.Principal, filter models.LogFilter, page models.Page) (*models.LogPage, error) {
	m.record()
	return m.listFn(ctx, p, filter, page)
}

func (m *mockLogService) FilterOptions(ctx context.Context, p models.Principal) (*models.FilterOptions, error) {
	m.record()
	return m.filtersFn(ctx, p)
}

func (m *mockLogService) Scope(ctx context.Context, p models.Principal) (models.ScopeSummary, error) {
	m.record()
	return m.scopeFn(ctx, p)
}

func (m *mockLogService) ExportCSV(ctx context.Context, p models.Principal, filter models.LogFilter, w io.Writer) (int, error) {
	m.record()
	return m.exportFn(ctx, p, filter, w)
}

// mockSessionLookup implements domain.SessionLookup for testing.
type mockSessionLookup struct {
	sessions map[string]models.Session
}

func (m *mockSessionLookup) LookupSession(_ context.Context, token string) (models.Session, error) {
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}

	return models.Session{}, models.ErrUnauthenticated
}
