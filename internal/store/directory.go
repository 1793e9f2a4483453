package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/data2rest/logscope/internal/models"
)

// userStatusActive is the users.status value of an enabled account.
const userStatusActive = 1

// DirectoryStore reads sessions, users and group membership.
type DirectoryStore struct {
	Base
}

// NewDirectoryStore creates a DirectoryStore.
func NewDirectoryStore(base Base) *DirectoryStore {
	return &DirectoryStore{Base: base}
}

// HashToken returns the hex SHA-256 of a session token as stored in
// sessions.token_hash.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LookupSession resolves a bearer token into its session. Expired sessions
// and disabled users yield models.ErrUnauthenticated. The active project is
// dropped for a non-admin who is no longer a member of it.
func (s *DirectoryStore) LookupSession(ctx context.Context, token string) (models.Session, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sess models.Session

	err := s.Pool.QueryRow(ctx, `
		SELECT u.id::text, u.username, u.is_admin, u.group_id::text,
			CASE WHEN u.is_admin OR EXISTS (
				SELECT 1 FROM project_users pu
				WHERE pu.project_id = s.active_project_id AND pu.user_id = u.id
			) THEN s.active_project_id::text END
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.expires_at > now() AND u.status = $2`,
		HashToken(token), userStatusActive,
	).Scan(&sess.UserID, &sess.Username, &sess.IsAdmin, &sess.GroupID, &sess.ActiveProjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, models.ErrUnauthenticated
	}
	if err != nil {
		return models.Session{}, s.unavailable("lookup_session", err)
	}

	return sess, nil
}

// TeamMembers returns the IDs of every user in groupID. It always queries
// the database.
func (s *DirectoryStore) TeamMembers(ctx context.Context, groupID string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, "SELECT id::text FROM users WHERE group_id = $1 ORDER BY id", groupID)
	if err != nil {
		return nil, s.unavailable("team_members", err)
	}
	defer rows.Close()

	members := make([]string, 0, 8)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, s.unavailable("team_members", fmt.Errorf("scanning member: %w", err))
		}
		members = append(members, id)
	}

	if err := rows.Err(); err != nil {
		return nil, s.unavailable("team_members", err)
	}

	return members, nil
}
