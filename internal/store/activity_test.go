package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/data2rest/logscope/internal/models"
	"github.com/data2rest/logscope/internal/store"
)

func ids(entries []models.LogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.UserID+"/"+*e.ProjectID+"/"+e.Action)
	}

	return out
}

func TestListVisible_TeamScenario(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)
	ctx := context.Background()

	f.insertLog(t, f.u1, f.t1, "API_GET", "", 4*time.Second)
	f.insertLog(t, f.u2, f.t1, "INSERT_RECORD", `{"table":"orders"}`, 3*time.Second)
	f.insertLog(t, f.u3, f.t1, "API_GET", "", 2*time.Second)
	f.insertLog(t, f.u1, f.t2, "API_GET", "", time.Second)

	scope := models.VisibilityScope{TenantID: &f.t1, Actors: models.ActorSet(f.u1, f.u2)}

	got, hasMore, err := s.ListVisible(ctx, scope, models.LogFilter{}, models.Page{})
	require.NoError(t, err)

	assert.False(t, hasMore)
	assert.Equal(t, []string{
		f.u2 + "/" + f.t1 + "/INSERT_RECORD",
		f.u1 + "/" + f.t1 + "/API_GET",
	}, ids(got))
	assert.JSONEq(t, `{"table":"orders"}`, string(got[0].Payload))
	require.NotNil(t, got[0].GroupID)
	assert.Equal(t, f.g1, *got[0].GroupID)
}

func TestListVisible_AdminSeesAllActorsInTenant(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)

	f.insertLog(t, f.u1, f.t1, "API_GET", "", 3*time.Second)
	f.insertLog(t, f.u3, f.t1, "LOGIN", "", 2*time.Second)
	f.insertLog(t, f.u1, f.t2, "API_GET", "", time.Second)

	got, _, err := s.ListVisible(context.Background(),
		models.VisibilityScope{TenantID: &f.t1, Actors: models.AllowAllActors()},
		models.LogFilter{}, models.Page{})
	require.NoError(t, err)

	assert.Len(t, got, 2)
}

func TestListVisible_EmptyScopeReturnsNothing(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)

	f.insertLog(t, f.u1, f.t1, "API_GET", "", time.Second)

	got, hasMore, err := s.ListVisible(context.Background(), models.EmptyScope(&f.t1), models.LogFilter{}, models.Page{})
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.False(t, hasMore)
}

func TestListVisible_RemovedActorStillSurfaces(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)

	f.insertLog(t, f.u3, f.t1, "API_GET", "", time.Second)

	_, err := f.base.Pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", f.u3)
	require.NoError(t, err)

	got, _, err := s.ListVisible(context.Background(),
		models.VisibilityScope{TenantID: &f.t1, Actors: models.AllowAllActors()},
		models.LogFilter{}, models.Page{})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Username)
	assert.Equal(t, f.u3, *got[0].UserID)
}

func TestListVisible_PaginationAndTieBreak(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)
	scope := models.VisibilityScope{TenantID: &f.t1, Actors: models.ActorSet(f.u1)}

	for range 3 {
		f.insertLog(t, f.u1, f.t1, "API_GET", "", time.Second)
	}

	first, hasMore, err := s.ListVisible(context.Background(), scope, models.LogFilter{}, models.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, hasMore)
	assert.Greater(t, first[0].ID, first[1].ID, "equal timestamps order by id descending")

	rest, hasMore, err := s.ListVisible(context.Background(), scope, models.LogFilter{}, models.Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.False(t, hasMore)
	assert.Less(t, rest[0].ID, first[1].ID)
}

func TestListVisible_Filters(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)
	scope := models.VisibilityScope{TenantID: &f.t1, Actors: models.AllowAllActors()}

	f.insertLog(t, f.u1, f.t1, "API_GET", "orders 100%", 2*time.Second)
	f.insertLog(t, f.u2, f.t1, "DELETE_RECORD", "orders 1000", time.Second)

	got, _, err := s.ListVisible(context.Background(), scope, models.LogFilter{Search: "100%"}, models.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1, "percent sign is matched literally")
	assert.Equal(t, "API_GET", got[0].Action)

	got, _, err = s.ListVisible(context.Background(), scope, models.LogFilter{UserID: f.u2, Action: "DELETE_RECORD"}, models.Page{})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	got, _, err = s.ListVisible(context.Background(), scope, models.LogFilter{StartDate: &today, EndDate: &today}, models.Page{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListVisible_InvalidScope(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)
	bad := "not-a-uuid"

	_, _, err := s.ListVisible(context.Background(),
		models.VisibilityScope{TenantID: &bad, Actors: models.AllowAllActors()},
		models.LogFilter{}, models.Page{})

	assert.ErrorIs(t, err, models.ErrInvalidScope)
}

func TestTopEndpoints(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)

	f.insertLog(t, f.u1, f.t1, "API_GET", "", time.Second)
	f.insertLog(t, f.u1, f.t1, "API_GET", "", time.Second)
	f.insertLog(t, f.u2, f.t1, "API_POST", "", time.Second)
	f.insertLog(t, f.u1, f.t1, "API_DELETE", "", time.Second)
	f.insertLog(t, f.u3, f.t1, "API_PATCH", "", time.Second)
	f.insertLog(t, f.u1, f.t1, "APIXGET", "", time.Second)
	f.insertLog(t, f.u1, f.t2, "API_GET", "", time.Second)

	scope := models.VisibilityScope{TenantID: &f.t1, Actors: models.ActorSet(f.u1, f.u2)}

	top, err := s.TopEndpoints(context.Background(), scope, 5)
	require.NoError(t, err)

	assert.Equal(t, []models.EndpointCount{
		{Action: "API_GET", Count: 2},
		{Action: "API_DELETE", Count: 1},
		{Action: "API_POST", Count: 1},
	}, top)

	top, err = s.TopEndpoints(context.Background(), models.EmptyScope(&f.t1), 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestFilterOptionsQueries(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)

	f.insertLog(t, f.u1, f.t1, "LOGIN", "", time.Second)
	f.insertLog(t, f.u2, f.t1, "API_GET", "", time.Second)
	f.insertLog(t, f.u3, f.t1, "LOGOUT", "", time.Second)

	scope := models.VisibilityScope{TenantID: &f.t1, Actors: models.ActorSet(f.u1, f.u2)}

	actions, err := s.DistinctActions(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, []string{"API_GET", "LOGIN"}, actions)

	actors, err := s.ActiveActors(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, actors, 2)
	for _, a := range actors {
		assert.NotEqual(t, f.u3, a.ID)
	}
}

func TestExport(t *testing.T) {
	f := setupFixture(t)
	s := store.NewActivityStore(f.base)
	scope := models.VisibilityScope{TenantID: &f.t1, Actors: models.AllowAllActors()}

	for range 3 {
		f.insertLog(t, f.u1, f.t1, "API_GET", "", time.Second)
	}

	var n int
	err := s.Export(context.Background(), scope, models.LogFilter{}, 2, func(models.LogEntry) error {
		n++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDirectory_TeamMembers(t *testing.T) {
	f := setupFixture(t)
	d := store.NewDirectoryStore(f.base)

	members, err := d.TeamMembers(context.Background(), f.g1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{f.u1, f.u2}, members)
}

func TestDirectory_LookupSession(t *testing.T) {
	f := setupFixture(t)
	d := store.NewDirectoryStore(f.base)
	ctx := context.Background()

	insert := func(token, userID, projectID string, expires time.Time) {
		t.Helper()

		_, err := f.base.Pool.Exec(ctx,
			"INSERT INTO sessions (token_hash, user_id, active_project_id, expires_at) VALUES ($1, $2, $3, $4)",
			store.HashToken(token), userID, projectID, expires)
		require.NoError(t, err)
	}

	insert("member-"+f.u1, f.u1, f.t1, time.Now().Add(time.Hour))
	insert("outsider-"+f.u3, f.u3, f.t1, time.Now().Add(time.Hour))
	insert("expired-"+f.u2, f.u2, f.t1, time.Now().Add(-time.Hour))

	sess, err := d.LookupSession(ctx, "member-"+f.u1)
	require.NoError(t, err)
	assert.Equal(t, f.u1, sess.UserID)
	require.NotNil(t, sess.ActiveProjectID)
	assert.Equal(t, f.t1, *sess.ActiveProjectID)
	require.NotNil(t, sess.GroupID)
	assert.Equal(t, f.g1, *sess.GroupID)

	sess, err = d.LookupSession(ctx, "outsider-"+f.u3)
	require.NoError(t, err)
	assert.Nil(t, sess.ActiveProjectID, "project dropped for non-members")

	_, err = d.LookupSession(ctx, "expired-"+f.u2)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = d.LookupSession(ctx, "unknown")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
