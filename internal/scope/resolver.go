// Package scope turns a Principal into the VisibilityScope that bounds every
// activity-log read made on its behalf.
package scope

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/data2rest/logscope/internal/metrics"
	"github.com/data2rest/logscope/internal/models"
)

// TeamDirectory lists the members of a group. It is queried on every
// resolution; implementations must not cache across requests.
type TeamDirectory interface {
	TeamMembers(ctx context.Context, groupID string) ([]string, error)
}

// Resolver computes visibility scopes.
type Resolver struct {
	dir TeamDirectory
	log *logrus.Logger
}

// NewResolver creates a Resolver backed by dir.
func NewResolver(dir TeamDirectory, log *logrus.Logger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// ComputeScope resolves the rows p may read.
//
//  1. The tenant filter is the active project.
//  2. No project and not admin: empty scope.
//  3. Admin: all actors.
//  4. Grouped user: team members plus self.
//  5. Otherwise: self only.
//
// An anonymous principal always gets the empty scope.
func (r *Resolver) ComputeScope(ctx context.Context, p models.Principal) (models.VisibilityScope, error) {
	if !p.Authenticated() {
		return r.done(models.EmptyScope(nil)), nil
	}

	if err := validatePrincipal(p); err != nil {
		return models.VisibilityScope{}, err
	}

	var tenantID *string
	if p.HasActiveProject() {
		tenantID = p.ActiveProjectID
	}

	if tenantID == nil && !p.IsAdmin {
		return r.done(models.EmptyScope(nil)), nil
	}

	if p.IsAdmin {
		return r.done(models.VisibilityScope{TenantID: tenantID, Actors: models.AllowAllActors()}), nil
	}

	if !p.HasGroup() {
		return r.done(models.VisibilityScope{TenantID: tenantID, Actors: models.ActorSet(p.ID)}), nil
	}

	members, err := r.dir.TeamMembers(ctx, *p.GroupID)
	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  p.ID,
			"group_id": *p.GroupID,
		}).Warn("team lookup failed")

		return models.VisibilityScope{}, fmt.Errorf("resolving team members: %w", err)
	}

	s := models.VisibilityScope{
		TenantID: tenantID,
		Actors:   models.ActorSet(append(members, p.ID)...),
	}
	if err := s.Validate(); err != nil {
		return models.VisibilityScope{}, err
	}

	return r.done(s), nil
}

func (r *Resolver) done(s models.VisibilityScope) models.VisibilityScope {
	metrics.ScopeResolutions.WithLabelValues(s.Kind()).Inc()

	return s
}

func validatePrincipal(p models.Principal) error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return models.InvalidScopeError("actor", p.ID)
	}

	if p.HasActiveProject() {
		if _, err := uuid.Parse(*p.ActiveProjectID); err != nil {
			return models.InvalidScopeError("tenant", *p.ActiveProjectID)
		}
	}

	if p.HasGroup() {
		if _, err := uuid.Parse(*p.GroupID); err != nil {
			return models.InvalidScopeError("group", *p.GroupID)
		}
	}

	return nil
}
