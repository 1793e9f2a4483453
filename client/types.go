package client

import (
	"encoding/json"
	"time"
)

// LogEntry is one visible row of the activity log. Username and GroupID are
// nil when the actor no longer exists.
type LogEntry struct {
	ID        int64           `json:"id"`
	ProjectID *string         `json:"project_id"`
	UserID    *string         `json:"user_id"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Username  *string         `json:"username"`
	GroupID   *string         `json:"group_id"`
}

// EndpointCount is one row of the top-endpoints aggregate.
type EndpointCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// Stats summarises the returned page. APICalls and DataChanges count only
// the Window rows of the page.
type Stats struct {
	APICalls     int             `json:"api_calls"`
	DataChanges  int             `json:"data_changes"`
	Window       int             `json:"window"`
	TopEndpoints []EndpointCount `json:"top_endpoints"`
}

// LogPage is returned by the log listing endpoint.
type LogPage struct {
	Logs     []LogEntry `json:"logs"`
	Stats    Stats      `json:"stats"`
	TenantID *string    `json:"tenant_id"`
	HasMore  bool       `json:"has_more"`
}

// Actor is an entry of the actor filter.
type Actor struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
}

// FilterOptions lists the actors and actions the caller can filter by.
type FilterOptions struct {
	Actors  []Actor  `json:"actors"`
	Actions []string `json:"actions"`
}

// Scope describes the visibility boundary the server resolved for the caller.
type Scope struct {
	Kind     string   `json:"kind"`
	TenantID *string  `json:"tenant_id"`
	Actors   []string `json:"actors,omitempty"`
}

// ListOptions narrows a log listing or export. Dates are compared on the
// calendar day, both ends inclusive.
type ListOptions struct {
	UserID    string
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Limit     int
	Offset    int
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	SchemaVersion int     `json:"schema_version"`
	Database      string  `json:"database"`
	PoolTotal     int32   `json:"pool_total"`
	PoolIdle      int32   `json:"pool_idle"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is returned by the readiness endpoint.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
