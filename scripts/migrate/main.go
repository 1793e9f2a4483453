// Package main provides a standalone migration script that reads the legacy
// system database (users, groups, projects, memberships and the activity log)
// from SQLite and writes it to the logscope PostgreSQL schema.
//
// Usage:
//
//	SQLITE_PATH=/path/to/system.sqlite DATABASE_URL=postgres://... go run ./scripts/migrate
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	_ "modernc.org/sqlite"
)

// config holds environment-driven migration settings.
type config struct {
	SQLitePath  string
	DatabaseURL string
	DryRun      bool
}

// skipped records a legacy row that could not be carried over.
type skipped struct {
	Table  string
	Key    string
	Reason string
}

// tableCount tracks one table through read, insert and verify.
type tableCount struct {
	Name     string
	Read     int
	Inserted int
	Verified int
}

// report holds the final migration summary.
type report struct {
	Source   string
	Target   string
	Tables   []tableCount
	Skipped  []skipped
	Admins   int
	Duration time.Duration
	DryRun   bool
	Err      error
}

func (r *report) table(name string) *tableCount {
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			return &r.Tables[i]
		}
	}
	r.Tables = append(r.Tables, tableCount{Name: name})
	return &r.Tables[len(r.Tables)-1]
}

func main() {
	cfg := loadConfig()
	if cfg.DatabaseURL == "" && !cfg.DryRun {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	slog.Info("starting migration",
		"sqlite", cfg.SQLitePath,
		"dry_run", cfg.DryRun,
	)

	start := time.Now()
	r, err := runMigration(context.Background(), cfg)
	r.Duration = time.Since(start)
	if err != nil {
		r.Err = err
		slog.Error("migration failed", "error", err)
	}
	printReport(&r)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from environment variables.
func loadConfig() config {
	return config{
		SQLitePath:  envOr("SQLITE_PATH", "data/system.sqlite"),
		DatabaseURL: envOr("DATABASE_URL", ""),
		DryRun:      os.Getenv("DRY_RUN") == "true" || os.Getenv("DRY_RUN") == "1",
	}
}

// runMigration executes the full migration pipeline.
//
//nolint:funlen // Migration pipeline is sequential; splitting would hurt readability.
func runMigration(ctx context.Context, cfg config) (report, error) {
	r := report{
		Source: cfg.SQLitePath,
		Target: sanitizeURL(cfg.DatabaseURL),
		DryRun: cfg.DryRun,
	}

	// Open SQLite (read-only).
	lite, err := sql.Open("sqlite", cfg.SQLitePath+"?mode=ro")
	if err != nil {
		return r, fmt.Errorf("open sqlite: %w", err)
	}
	defer lite.Close()

	dir, err := readDirectory(ctx, lite)
	if err != nil {
		return r, fmt.Errorf("read directory: %w", err)
	}
	r.table("groups").Read = len(dir.Groups)
	r.table("users").Read = len(dir.Users)
	r.table("projects").Read = len(dir.Projects)
	r.table("project_users").Read = len(dir.Members)
	for _, u := range dir.Users {
		if u.IsAdmin {
			r.Admins++
		}
	}
	slog.Info("read directory from sqlite",
		"groups", len(dir.Groups), "users", len(dir.Users),
		"projects", len(dir.Projects), "memberships", len(dir.Members),
		"admins", r.Admins)

	logs, err := readActivity(ctx, lite)
	if err != nil {
		return r, fmt.Errorf("read activity_logs: %w", err)
	}
	r.table("activity_logs").Read = len(logs)
	slog.Info("read activity log from sqlite", "count", len(logs))

	if cfg.DryRun {
		slog.Info("dry run, skipping PostgreSQL writes")
		for i := range r.Tables {
			r.Tables[i].Inserted = r.Tables[i].Read
		}
		return r, nil
	}

	// Connect to PostgreSQL and run in a transaction.
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return r, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return r, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	inserted, skips, err := insertDirectory(ctx, tx, dir)
	if err != nil {
		return r, fmt.Errorf("insert directory: %w", err)
	}
	for name, n := range inserted {
		r.table(name).Inserted = n
	}
	r.Skipped = append(r.Skipped, skips...)
	slog.Info("inserted directory", "skipped", len(skips))

	n, err := insertActivity(ctx, tx, logs)
	if err != nil {
		return r, fmt.Errorf("insert activity_logs: %w", err)
	}
	r.table("activity_logs").Inserted = n
	slog.Info("inserted activity log", "count", n)

	for i := range r.Tables {
		t := &r.Tables[i]
		if t.Verified, err = countRows(ctx, tx, t.Name); err != nil {
			return r, fmt.Errorf("verify %s count: %w", t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return r, fmt.Errorf("commit: %w", err)
	}
	slog.Info("transaction committed")
	return r, nil
}
