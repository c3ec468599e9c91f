package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID  uuid.UUID
	Name    string
	Email   string
	Role    domain.UserRole
	Scope   domain.Scope
	GroupID *uuid.UUID
	// SessionToken identifies the session the request arrived on; UI state
	// is keyed by it.
	SessionToken string
}

type contextKey string

const userContextKey contextKey = "userContext"
const scopeFilterKey contextKey = "scopeFilter"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRole) bool {
	return u.Role == role
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an administrator
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// Actor converts the user context into a domain actor for ownership checks
func (u *UserContext) Actor() domain.Actor {
	return domain.Actor{
		ID:      u.UserID,
		Role:    u.Role,
		Scope:   u.Scope,
		GroupID: u.GroupID,
	}
}

// ScopeFilter is the effective regional filter applied to repository queries
type ScopeFilter struct {
	// Scope is nil when the user sees every region
	Scope *domain.Scope
}

// GetScopeFilter returns the scope to filter queries by. Admins and users
// scoped to ALL see every region; everyone else only their own.
func (u *UserContext) GetScopeFilter() *domain.Scope {
	if u.Role == domain.RoleAdmin || u.Scope == domain.ScopeAll {
		return nil
	}
	scope := u.Scope
	return &scope
}

// WithScopeFilter adds the scope filter to the context
func WithScopeFilter(ctx context.Context, filter *ScopeFilter) context.Context {
	return context.WithValue(ctx, scopeFilterKey, filter)
}

// ScopeFilterFromContext extracts the scope filter from the context
func ScopeFilterFromContext(ctx context.Context) (*ScopeFilter, bool) {
	filter, ok := ctx.Value(scopeFilterKey).(*ScopeFilter)
	return filter, ok
}

// GetEffectiveScopeFilter returns the scope repository queries must filter
// by, or nil when the caller sees every region. Falls back to the user
// context when no explicit filter was set.
func GetEffectiveScopeFilter(ctx context.Context) *domain.Scope {
	if filter, ok := ScopeFilterFromContext(ctx); ok {
		return filter.Scope
	}
	if user, ok := FromContext(ctx); ok {
		return user.GetScopeFilter()
	}
	return nil
}
