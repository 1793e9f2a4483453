package models

import (
	"slices"

	"github.com/google/uuid"
)

// Scope kinds reported by VisibilityScope.Kind.
const (
	ScopeKindAll    = "all"
	ScopeKindActors = "actors"
	ScopeKindEmpty  = "empty"
)

// ActorFilter restricts log rows by the actor that wrote them.
// The zero value is an empty actor set and matches nothing.
type ActorFilter struct {
	allowAll bool
	actors   []string
}

// AllowAllActors returns a filter that places no restriction on the actor.
func AllowAllActors() ActorFilter {
	return ActorFilter{allowAll: true}
}

// ActorSet returns a filter matching exactly the given actors.
// Blank IDs are dropped; the result is de-duplicated and sorted.
func ActorSet(ids ...string) ActorFilter {
	actors := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			actors = append(actors, id)
		}
	}

	slices.Sort(actors)

	return ActorFilter{actors: slices.Compact(actors)}
}

// AllowsAll reports whether the filter is Allow-All.
func (f ActorFilter) AllowsAll() bool {
	return f.allowAll
}

// Actors returns a copy of the actor set. It is nil for Allow-All.
func (f ActorFilter) Actors() []string {
	if f.allowAll {
		return nil
	}

	return slices.Clone(f.actors)
}

// IsEmpty reports whether the filter matches no actor at all.
func (f ActorFilter) IsEmpty() bool {
	return !f.allowAll && len(f.actors) == 0
}

// Contains reports whether actorID passes the filter.
func (f ActorFilter) Contains(actorID string) bool {
	if f.allowAll {
		return true
	}

	_, found := slices.BinarySearch(f.actors, actorID)

	return found
}

// Equal reports whether two filters describe the same actor boundary.
func (f ActorFilter) Equal(other ActorFilter) bool {
	return f.allowAll == other.allowAll && slices.Equal(f.actors, other.actors)
}

// VisibilityScope is the request-scoped authorization boundary over the
// activity log. One value is shared by the page query and every aggregate.
type VisibilityScope struct {
	TenantID *string
	Actors   ActorFilter
}

// EmptyScope returns a scope that matches no rows.
func EmptyScope(tenantID *string) VisibilityScope {
	return VisibilityScope{TenantID: tenantID, Actors: ActorSet()}
}

// IsEmpty reports whether the scope can match no rows. Callers must check
// this before building a query.
func (s VisibilityScope) IsEmpty() bool {
	return s.Actors.IsEmpty()
}

// HasTenant reports whether the scope is bound to a single tenant.
func (s VisibilityScope) HasTenant() bool {
	return s.TenantID != nil && *s.TenantID != ""
}

// Kind classifies the scope for logging and metrics.
func (s VisibilityScope) Kind() string {
	switch {
	case s.IsEmpty():
		return ScopeKindEmpty
	case s.Actors.AllowsAll():
		return ScopeKindAll
	default:
		return ScopeKindActors
	}
}

// Equal reports whether two scopes describe the same boundary.
func (s VisibilityScope) Equal(other VisibilityScope) bool {
	if s.HasTenant() != other.HasTenant() {
		return false
	}

	if s.HasTenant() && *s.TenantID != *other.TenantID {
		return false
	}

	return s.Actors.Equal(other.Actors)
}

// Validate checks every identifier in the scope is a well-formed UUID.
func (s VisibilityScope) Validate() error {
	if s.TenantID != nil {
		if _, err := uuid.Parse(*s.TenantID); err != nil {
			return InvalidScopeError("tenant", *s.TenantID)
		}
	}

	for _, id := range s.Actors.actors {
		if _, err := uuid.Parse(id); err != nil {
			return InvalidScopeError("actor", id)
		}
	}

	return nil
}

// ScopeSummary is the JSON description of a resolved scope.
type ScopeSummary struct {
	Kind     string   `json:"kind"`
	TenantID *string  `json:"tenant_id"`
	Actors   []string `json:"actors,omitempty"`
}

// Summary describes the scope for the introspection endpoint.
func (s VisibilityScope) Summary() ScopeSummary {
	return ScopeSummary{
		Kind:     s.Kind(),
		TenantID: s.TenantID,
		Actors:   s.Actors.Actors(),
	}
}
