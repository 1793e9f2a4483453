package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/db"
	"github.com/data2rest/logscope/internal/db/migrations"
	"github.com/data2rest/logscope/internal/dbpool"
	"github.com/data2rest/logscope/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 10*time.Second)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// fixture is an isolated directory: two projects, one group and three users.
type fixture struct {
	base   store.Base
	t1, t2 string
	g1     string
	u1, u2 string
	u3     string
}

// setupFixture seeds a fresh directory, cleaned up after the test.
func setupFixture(t *testing.T) *fixture {
	t.Helper()

	env := getTestEnv(t)
	ctx := context.Background()

	f := &fixture{
		base: store.Base{Pool: env.pool, Log: env.log, QueryTimeout: 5 * time.Second},
		t1:   uuid.NewString(),
		t2:   uuid.NewString(),
		g1:   uuid.NewString(),
		u1:   uuid.NewString(),
		u2:   uuid.NewString(),
		u3:   uuid.NewString(),
	}

	exec := func(sql string, args ...any) {
		t.Helper()

		if _, err := env.pool.Exec(ctx, sql, args...); err != nil {
			t.Fatalf("seeding fixture: %v", err)
		}
	}

	exec("INSERT INTO groups (id, name) VALUES ($1, $2)", f.g1, "g-"+f.g1[:8])
	exec("INSERT INTO projects (id, name) VALUES ($1, $2), ($3, $4)", f.t1, "p-"+f.t1[:8], f.t2, "p-"+f.t2[:8])
	exec(`INSERT INTO users (id, username, group_id) VALUES
		($1, $2, $3), ($4, $5, $3), ($6, $7, NULL)`,
		f.u1, "u1-"+f.u1[:8], f.g1, f.u2, "u2-"+f.u2[:8], f.u3, "u3-"+f.u3[:8])
	exec("INSERT INTO project_users (project_id, user_id) VALUES ($1, $2), ($1, $3)", f.t1, f.u1, f.u2)

	t.Cleanup(func() {
		cleanCtx := context.Background()
		env.pool.Exec(cleanCtx, "DELETE FROM activity_logs WHERE project_id IN ($1, $2)", f.t1, f.t2) //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM users WHERE id IN ($1, $2, $3)", f.u1, f.u2, f.u3)         //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM projects WHERE id IN ($1, $2)", f.t1, f.t2)               //nolint:errcheck // best-effort cleanup
		env.pool.Exec(cleanCtx, "DELETE FROM groups WHERE id = $1", f.g1)                              //nolint:errcheck // best-effort cleanup
	})

	return f
}

// insertLog writes one log row created at the given offset before now.
func (f *fixture) insertLog(t *testing.T, userID, projectID, action, details string, age time.Duration) {
	t.Helper()

	_, err := f.base.Pool.Exec(context.Background(),
		`INSERT INTO activity_logs (project_id, user_id, action, details, ip_address, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), '127.0.0.1', now() - make_interval(secs => $5))`,
		projectID, userID, action, details, age.Seconds(),
	)
	if err != nil {
		t.Fatalf("inserting log: %v", err)
	}
}
