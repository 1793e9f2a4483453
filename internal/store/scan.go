package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/data2rest/logscope/internal/models"
)

// logColumns lists the columns selected for log queries. Actor fields come
// from a left join and are NULL for removed actors.
const logColumns = `l.id, l.project_id::text, l.user_id::text, l.action,
	l.details, l.ip_address, l.created_at, u.username, u.group_id::text`

// logSource is the FROM clause shared by every log query.
const logSource = `activity_logs l LEFT JOIN users u ON u.id = l.user_id`

// scanLogEntry scans a single row into a models.LogEntry.
func scanLogEntry(scan func(dest ...any) error) (*models.LogEntry, error) {
	var e models.LogEntry
	var details, ip *string

	err := scan(
		&e.ID,
		&e.ProjectID,
		&e.UserID,
		&e.Action,
		&details,
		&ip,
		&e.CreatedAt,
		&e.Username,
		&e.GroupID,
	)
	if err != nil {
		return nil, err
	}

	e.Payload = models.PayloadFromDetails(details)
	if ip != nil {
		e.IPAddress = *ip
	}

	return &e, nil
}

// collectLogEntries scans all rows into a log entry slice.
func collectLogEntries(rows pgx.Rows) ([]models.LogEntry, error) {
	entries := make([]models.LogEntry, 0, 16)

	for rows.Next() {
		e, err := scanLogEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning log row: %w", err)
		}

		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating log rows: %w", err)
	}

	return entries, nil
}
