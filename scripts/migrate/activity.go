package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// activity is one legacy activity_logs row.
type activity struct {
	ID        int64
	UserID    sql.NullInt64
	ProjectID sql.NullInt64
	Action    sql.NullString
	Details   sql.NullString
	IPAddress sql.NullString
	Created   sql.NullString
}

// readActivity reads the whole activity log in id order.
func readActivity(ctx context.Context, db *sql.DB) ([]activity, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, project_id, action, details, ip_address, created_at
		 FROM activity_logs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []activity
	for rows.Next() {
		var a activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProjectID, &a.Action, &a.Details, &a.IPAddress, &a.Created); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// insertActivity batch-inserts the log, keeping legacy ids so a rerun is a
// no-op, then moves the id sequence past the highest imported id. Actor and
// project ids are mapped even when the row they point at is gone: log
// entries outlive their actors.
func insertActivity(ctx context.Context, tx pgx.Tx, logs []activity) (int, error) {
	const batchSize = 500
	inserted := 0

	for i := 0; i < len(logs); i += batchSize {
		end := min(i+batchSize, len(logs))

		batch := &pgx.Batch{}
		for _, a := range logs[i:end] {
			batch.Queue(
				`INSERT INTO activity_logs (id, project_id, user_id, action, details, ip_address, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (id) DO NOTHING`,
				a.ID, nullableUUID("project", a.ProjectID), nullableUUID("user", a.UserID),
				a.Action.String, nullStr(a.Details), a.IPAddress.String, parseTime(a.Created.String),
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range end - i {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return inserted, fmt.Errorf("batch %d-%d: %w", i, end, err)
			}
			inserted += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return inserted, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
	}

	_, err := tx.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('activity_logs', 'id'),
		               GREATEST((SELECT COALESCE(max(id), 0) FROM activity_logs), 1))`)
	if err != nil {
		return inserted, fmt.Errorf("advance id sequence: %w", err)
	}

	return inserted, nil
}
