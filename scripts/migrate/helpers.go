package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

// legacyUUID maps a legacy integer id of the given kind to a stable UUID, so
// reruns and references from other tables agree.
func legacyUUID(kind string, id int64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("logscope:%s:%d", kind, id)))
	// Set version 5 and variant bits.
	h[6] = (h[6] & 0x0f) | 0x50
	h[8] = (h[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		h[0:4], h[4:6], h[6:8], h[8:10], h[10:16])
}

// nullableUUID maps an optional legacy id.
func nullableUUID(kind string, id sql.NullInt64) *string {
	if !id.Valid {
		return nil
	}
	u := legacyUUID(kind, id.Int64)
	return &u
}

// grantsAll reports whether a legacy permissions document carries "all": true.
func grantsAll(perms sql.NullString) bool {
	if !perms.Valid || perms.String == "" {
		return false
	}
	var doc struct {
		All bool `json:"all"`
	}
	if err := json.Unmarshal([]byte(perms.String), &doc); err != nil {
		slog.Warn("invalid permissions JSON, treating as non-admin", "value", perms.String)
		return false
	}
	return doc.All
}

// parseTime parses a SQLite datetime string to time.Time.
func parseTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		slog.Warn("unparseable time, using now", "value", s)
		return time.Now().UTC()
	}
	return t.UTC()
}

// parseNullableTime parses an optional SQLite datetime string.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// nullStr converts sql.NullString to *string.
func nullStr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	return &s.String
}

// sanitizeURL removes credentials from a database URL for display.
func sanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable URL]"
	}
	u.User = nil
	return u.String()
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// allowedTables is the set of table names that countRows may query.
var allowedTables = map[string]bool{
	"groups":        true,
	"users":         true,
	"projects":      true,
	"project_users": true,
	"activity_logs": true,
}

// countRows counts the rows of a table.
func countRows(ctx context.Context, tx pgx.Tx, table string) (int, error) {
	if !allowedTables[table] {
		return 0, fmt.Errorf("disallowed table name: %s", table)
	}

	var count int
	sanitized := pgx.Identifier{table}.Sanitize()
	err := tx.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", sanitized)).Scan(&count)
	return count, err
}

// printReport outputs the final migration summary.
func printReport(r *report) {
	fmt.Println()
	fmt.Println("=== logscope Migration Report ===")
	if r.DryRun {
		fmt.Println("MODE: DRY RUN (no changes made)")
	}
	fmt.Printf("Source: %s\n", r.Source)
	fmt.Printf("Target: %s\n", r.Target)
	fmt.Printf("Admins: %d\n", r.Admins)
	fmt.Println()

	for _, t := range r.Tables {
		fmt.Printf("%-14s %d read → %d inserted → %d verified %s\n",
			t.Name+":", t.Read, t.Inserted, t.Verified, statusIcon(t, r.DryRun))
	}

	if len(r.Skipped) > 0 {
		fmt.Println("\nSkipped:")
		for _, s := range r.Skipped {
			fmt.Printf("  - %s %s (reason: %s)\n", s.Table, s.Key, s.Reason)
		}
	}

	fmt.Printf("\nDuration: %.1fs\n", r.Duration.Seconds())
	if r.Err != nil {
		fmt.Printf("Status: FAILED: %v\n", r.Err)
	} else {
		fmt.Println("Status: SUCCESS")
	}
}

// statusIcon compares the counts of one table. Verified counts cover the
// whole target table, so a rerun or pre-existing rows may exceed the read
// count without being an error.
func statusIcon(t tableCount, dryRun bool) string {
	if dryRun {
		return "⏳"
	}
	if t.Verified >= t.Inserted && t.Inserted <= t.Read {
		return "✅"
	}
	return "❌"
}
