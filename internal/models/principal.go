package models

// Principal is the signed-in actor a request runs on behalf of.
// It is built once per request from the session and never mutated.
type Principal struct {
	ID              string  `json:"id"`
	Username        string  `json:"username,omitempty"`
	IsAdmin         bool    `json:"is_admin"`
	ActiveProjectID *string `json:"active_project_id,omitempty"`
	GroupID         *string `json:"group_id,omitempty"`
}

// Authenticated reports whether the principal carries an actor identity.
func (p Principal) Authenticated() bool {
	return p.ID != ""
}

// HasGroup reports whether the principal belongs to a team.
func (p Principal) HasGroup() bool {
	return p.GroupID != nil && *p.GroupID != ""
}

// HasActiveProject reports whether a tenant is selected for this request.
func (p Principal) HasActiveProject() bool {
	return p.ActiveProjectID != nil && *p.ActiveProjectID != ""
}

// Session is the stored state behind a bearer token.
type Session struct {
	UserID          string
	Username        string
	IsAdmin         bool
	GroupID         *string
	ActiveProjectID *string
}

// Principal converts a session row into a Principal value.
func (s Session) Principal() Principal {
	return Principal{
		ID:              s.UserID,
		Username:        s.Username,
		IsAdmin:         s.IsAdmin,
		ActiveProjectID: s.ActiveProjectID,
		GroupID:         s.GroupID,
	}
}
