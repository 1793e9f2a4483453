package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
)

const dateLayout = "2006-01-02"

// LogService handles the scoped activity-log endpoints.
type LogService struct {
	c *Client
}

// List returns one page of the caller's visible log with stats.
func (s *LogService) List(ctx context.Context, opts *ListOptions) (*LogPage, error) {
	var resp LogPage
	if err := s.c.get(ctx, "/api/v1/logs", opts.values(true), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Filters returns the actors and actions visible to the caller.
func (s *LogService) Filters(ctx context.Context) (*FilterOptions, error) {
	var resp FilterOptions
	if err := s.c.get(ctx, "/api/v1/logs/filters", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scope returns the visibility boundary resolved for the caller.
func (s *LogService) Scope(ctx context.Context) (*Scope, error) {
	var resp Scope
	if err := s.c.get(ctx, "/api/v1/logs/scope", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export streams the CSV export into w. Limit and Offset are ignored; the
// server caps the row count. Returns the number of bytes written.
func (s *LogService) Export(ctx context.Context, opts *ListOptions, w io.Writer) (int64, error) {
	resp, err := s.c.send(ctx, "/api/v1/logs/export", opts.values(false))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("read export: %w", err)
	}
	return n, nil
}

func (o *ListOptions) values(paged bool) url.Values {
	params := url.Values{}
	if o == nil {
		return params
	}
	if o.UserID != "" {
		params.Set("user_id", o.UserID)
	}
	if o.Action != "" {
		params.Set("action", o.Action)
	}
	if o.Search != "" {
		params.Set("s", o.Search)
	}
	if o.StartDate != nil {
		params.Set("start_date", o.StartDate.Format(dateLayout))
	}
	if o.EndDate != nil {
		params.Set("end_date", o.EndDate.Format(dateLayout))
	}
	if paged && o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if paged && o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	return params
}
