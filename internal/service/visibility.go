package service

import (
	"github.com/google/uuid"

	"github.com/saqrcrm/sales-api/internal/domain"
)

// ensureVisible maps a scope miss to ErrNotFound so cross-region records
// are indistinguishable from absent ones
func ensureVisible(actor domain.Actor, recordScope domain.Scope) error {
	if !domain.SeesScope(actor, recordScope) {
		return ErrNotFound
	}
	return nil
}

// ensureMutable checks the role's update grant and ownership rules on top
// of visibility
func ensureMutable(actor domain.Actor, res domain.Resource, recordScope domain.Scope, ownerID uuid.UUID, ownerGroupID *uuid.UUID) error {
	if err := ensureVisible(actor, recordScope); err != nil {
		return err
	}
	if !domain.CanMutateRecord(actor, res, ownerID, ownerGroupID) {
		return ErrPermissionDenied
	}
	return nil
}

// ensureDeletable is ensureMutable with the delete verb
func ensureDeletable(actor domain.Actor, res domain.Resource, recordScope domain.Scope, ownerID uuid.UUID, ownerGroupID *uuid.UUID) error {
	if err := ensureVisible(actor, recordScope); err != nil {
		return err
	}
	if !domain.CanDeleteRecord(actor, res, ownerID, ownerGroupID) {
		return ErrPermissionDenied
	}
	return nil
}

// scopeForCreate resolves the scope a new record is filed under: regional
// users always create into their own region, ALL-scope users may choose.
func scopeForCreate(actor domain.Actor, requested domain.Scope) (domain.Scope, error) {
	if actor.Scope != domain.ScopeAll {
		return actor.Scope, nil
	}
	if requested == "" {
		return domain.ScopeAll, nil
	}
	if !requested.IsValid() {
		return "", ErrInvalidInput
	}
	return requested, nil
}
