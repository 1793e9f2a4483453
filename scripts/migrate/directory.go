package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
)

type group struct {
	ID          int64
	Name        string
	Permissions sql.NullString
	Created     sql.NullString
}

type user struct {
	ID       int64
	Username string
	GroupID  sql.NullInt64
	Status   int
	Created  sql.NullString
	IsAdmin  bool
}

type project struct {
	ID      int64
	Name    string
	Status  sql.NullString
	Created sql.NullString
}

type membership struct {
	ProjectID int64
	UserID    int64
}

// directory is the legacy identity data.
type directory struct {
	Groups   []group
	Users    []user
	Projects []project
	Members  []membership
}

// readDirectory reads groups, users, projects and memberships. A user is an
// admin when either its role or its group grants "all".
func readDirectory(ctx context.Context, db *sql.DB) (*directory, error) {
	var d directory

	rows, err := db.QueryContext(ctx, `SELECT id, name, permissions, created_at FROM groups`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	for rows.Next() {
		var g group
		if err := rows.Scan(&g.ID, &g.Name, &g.Permissions, &g.Created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan group: %w", err)
		}
		d.Groups = append(d.Groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx,
		`SELECT u.id, COALESCE(u.username, ''), u.group_id, COALESCE(u.status, 1), u.created_at,
		        r.permissions, g.permissions
		 FROM users u
		 LEFT JOIN roles r ON r.id = u.role_id
		 LEFT JOIN groups g ON g.id = u.group_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	for rows.Next() {
		var (
			u                   user
			rolePerms, grpPerms sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.GroupID, &u.Status, &u.Created, &rolePerms, &grpPerms); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.IsAdmin = grantsAll(rolePerms) || grantsAll(grpPerms)
		d.Users = append(d.Users, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT id, name, status, created_at FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	for rows.Next() {
		var p project
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan project: %w", err)
		}
		d.Projects = append(d.Projects, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, `SELECT project_id, user_id FROM project_users`)
	if err != nil {
		return nil, fmt.Errorf("query project_users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m membership
		if err := rows.Scan(&m.ProjectID, &m.UserID); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		d.Members = append(d.Members, m)
	}
	return &d, rows.Err()
}

// insertDirectory writes the identity tables and returns per-table insert
// counts. Dangling references are dropped and reported, never guessed.
func insertDirectory(ctx context.Context, tx pgx.Tx, d *directory) (map[string]int, []skipped, error) {
	counts := make(map[string]int, 4)
	var skips []skipped

	groupIDs := make(map[int64]bool, len(d.Groups))
	for _, g := range d.Groups {
		_, err := tx.Exec(ctx,
			`INSERT INTO groups (id, name, created_at) VALUES ($1, $2, COALESCE($3, now()))
			 ON CONFLICT (id) DO NOTHING`,
			legacyUUID("group", g.ID), g.Name, parseNullableTime(g.Created))
		if err != nil {
			return nil, nil, fmt.Errorf("insert group %d: %w", g.ID, err)
		}
		groupIDs[g.ID] = true
		counts["groups"]++
	}

	userIDs := make(map[int64]bool, len(d.Users))
	for _, u := range d.Users {
		if u.Username == "" {
			skips = append(skips, skipped{Table: "users", Key: strconv.FormatInt(u.ID, 10), Reason: "empty username"})
			continue
		}
		var groupID *string
		if u.GroupID.Valid {
			if groupIDs[u.GroupID.Int64] {
				id := legacyUUID("group", u.GroupID.Int64)
				groupID = &id
			} else {
				skips = append(skips, skipped{
					Table: "users", Key: u.Username,
					Reason: fmt.Sprintf("group %d missing, imported without group", u.GroupID.Int64),
				})
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO users (id, username, group_id, is_admin, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
			 ON CONFLICT (id) DO NOTHING`,
			legacyUUID("user", u.ID), u.Username, groupID, u.IsAdmin, u.Status, parseNullableTime(u.Created))
		if err != nil {
			return nil, nil, fmt.Errorf("insert user %d: %w", u.ID, err)
		}
		userIDs[u.ID] = true
		counts["users"]++
	}

	projectIDs := make(map[int64]bool, len(d.Projects))
	for _, p := range d.Projects {
		status := "active"
		if p.Status.Valid && p.Status.String != "" {
			status = p.Status.String
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO projects (id, name, status, created_at) VALUES ($1, $2, $3, COALESCE($4, now()))
			 ON CONFLICT (id) DO NOTHING`,
			legacyUUID("project", p.ID), p.Name, status, parseNullableTime(p.Created))
		if err != nil {
			return nil, nil, fmt.Errorf("insert project %d: %w", p.ID, err)
		}
		projectIDs[p.ID] = true
		counts["projects"]++
	}

	for _, m := range d.Members {
		key := fmt.Sprintf("%d/%d", m.ProjectID, m.UserID)
		if !projectIDs[m.ProjectID] || !userIDs[m.UserID] {
			skips = append(skips, skipped{Table: "project_users", Key: key, Reason: "project or user missing"})
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO project_users (project_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			legacyUUID("project", m.ProjectID), legacyUUID("user", m.UserID))
		if err != nil {
			return nil, nil, fmt.Errorf("insert membership %s: %w", key, err)
		}
		counts["project_users"]++
	}

	return counts, skips, nil
}
