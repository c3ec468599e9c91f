package repository

import (
	"context"
	"strings"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (updated_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "updatedAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names. Returns the default
// sort if field is not in the whitelist.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyScopeFilter applies the regional scope filter to a GORM query.
// Records scoped ALL are visible to every region, so the filter matches
// both the caller's scope and ALL. If no filter is set the query is
// returned unchanged.
func ApplyScopeFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	scope := auth.GetEffectiveScopeFilter(ctx)
	if scope != nil {
		return query.Where("scope IN ?", []domain.Scope{*scope, domain.ScopeAll})
	}
	return query
}

// ApplyScopeFilterWithAlias applies the scope filter using a table alias.
// Use this when joining multiple tables and the scope column needs
// qualification.
func ApplyScopeFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	scope := auth.GetEffectiveScopeFilter(ctx)
	if scope != nil {
		return query.Where(tableAlias+".scope IN ?", []domain.Scope{*scope, domain.ScopeAll})
	}
	return query
}

// HasScopeAccess checks whether the caller may touch a record in the given
// scope. Useful for single-record operations after a raw lookup.
func HasScopeAccess(ctx context.Context, recordScope domain.Scope) bool {
	scope := auth.GetEffectiveScopeFilter(ctx)
	if scope == nil {
		return true
	}
	return recordScope == *scope || recordScope == domain.ScopeAll
}

// OwnershipRestricted reports whether the caller's lists must be narrowed
// to records they own. Admins and system callers see everything within
// their scope.
func OwnershipRestricted(ctx context.Context) bool {
	user, ok := auth.FromContext(ctx)
	if !ok {
		return false
	}
	return user.Role != domain.RoleAdmin
}

// ApplyOwnershipFilter narrows a list query to the records the caller owns.
// Managers additionally see records owned by members of their group. The
// ownerColumn names the column holding the owning user's id.
func ApplyOwnershipFilter(ctx context.Context, query *gorm.DB, ownerColumn string) *gorm.DB {
	user, ok := auth.FromContext(ctx)
	if !ok || user.Role == domain.RoleAdmin {
		return query
	}
	if user.Role == domain.RoleManager && user.GroupID != nil {
		groupMembers := query.Session(&gorm.Session{NewDB: true}).
			Model(&domain.User{}).
			Select("id").
			Where("group_id = ?", *user.GroupID)
		return query.Where(ownerColumn+" = ? OR "+ownerColumn+" IN (?)", user.UserID, groupMembers)
	}
	return query.Where(ownerColumn+" = ?", user.UserID)
}

// ApplyProjectOwnershipFilter narrows a project query to the projects the
// caller runs. Unassigned projects stay visible to everyone so they can be
// picked up. Managers also see projects run by members of their group.
func ApplyProjectOwnershipFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	user, ok := auth.FromContext(ctx)
	if !ok || user.Role == domain.RoleAdmin {
		return query
	}
	if user.Role == domain.RoleManager && user.GroupID != nil {
		groupMembers := query.Session(&gorm.Session{NewDB: true}).
			Model(&domain.User{}).
			Select("id").
			Where("group_id = ?", *user.GroupID)
		return query.Where("project_manager_id IS NULL OR project_manager_id = ? OR project_manager_id IN (?)", user.UserID, groupMembers)
	}
	return query.Where("project_manager_id IS NULL OR project_manager_id = ?", user.UserID)
}
