package models

import (
	"encoding/json"
	"strings"
	"time"
)

// APIActionPrefix marks entries that record an external API invocation.
const APIActionPrefix = "API_"

// Data mutation actions.
const (
	ActionInsertRecord = "INSERT_RECORD"
	ActionUpdateRecord = "UPDATE_RECORD"
	ActionDeleteRecord = "DELETE_RECORD"
)

// LogEntry is a single immutable row of the activity log, joined with the
// display fields of the actor that wrote it. Actor fields are nil when the
// actor no longer exists.
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

// IsAPICall reports whether the entry records an external API invocation.
func (e LogEntry) IsAPICall() bool {
	return strings.HasPrefix(e.Action, APIActionPrefix)
}

// IsDataChange reports whether the entry records a data mutation.
func (e LogEntry) IsDataChange() bool {
	switch e.Action {
	case ActionInsertRecord, ActionUpdateRecord, ActionDeleteRecord:
		return true
	default:
		return false
	}
}

// PayloadFromDetails maps the stored details column onto an opaque JSON
// payload. Valid JSON passes through untouched, other text becomes a JSON
// string, NULL or blank becomes nil.
func PayloadFromDetails(details *string) json.RawMessage {
	if details == nil || strings.TrimSpace(*details) == "" {
		return nil
	}

	if json.Valid([]byte(*details)) {
		return json.RawMessage(*details)
	}

	encoded, err := json.Marshal(*details)
	if err != nil {
		return nil
	}

	return encoded
}

// DetailsText returns the payload as plain text: JSON strings are unquoted,
// any other JSON is returned verbatim.
func (e LogEntry) DetailsText() string {
	if len(e.Payload) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Payload, &s); err == nil {
		return s
	}

	return string(e.Payload)
}

// EndpointCount is one row of the top-endpoints aggregate.
type EndpointCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// Stats summarises recent activity. APICalls and DataChanges cover only the
// rows of the fetched page (Window of them), not all-time totals.
// TopEndpoints is a true aggregate over the scope.
type Stats struct {
	APICalls     int             `json:"api_calls"`
	DataChanges  int             `json:"data_changes"`
	Window       int             `json:"window"`
	TopEndpoints []EndpointCount `json:"top_endpoints"`
}

// LogFilter holds optional narrowing filters applied after the scope.
// They can only remove rows from the visible set.
type LogFilter struct {
	UserID    string
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// Page is a limit/offset window over the ordered log.
type Page struct {
	Limit  int
	Offset int
}

// LogPage is the response of the log listing: the visible page, stats over
// the same scope, and the tenant the scope was bound to.
type LogPage struct {
	Logs     []LogEntry `json:"logs"`
	Stats    Stats      `json:"stats"`
	TenantID *string    `json:"tenant_id"`
	HasMore  bool       `json:"has_more"`
}

// Actor is an entry of the actor filter dropdown.
type Actor struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
}

// FilterOptions lists the actors and actions visible under a scope.
type FilterOptions struct {
	Actors  []Actor  `json:"actors"`
	Actions []string `json:"actions"`
}
