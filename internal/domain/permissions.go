package domain

import "github.com/google/uuid"

// Resource identifies a permission-controlled area of the system
type Resource string

const (
	ResourceLeads       Resource = "leads"
	ResourceAccounts    Resource = "accounts"
	ResourceDeals       Resource = "deals"
	ResourceProjects    Resource = "projects"
	ResourceTasks       Resource = "tasks"
	ResourceInvoices    Resource = "invoices"
	ResourceQuotes      Resource = "quotes"
	ResourceUsers       Resource = "users"
	ResourceGroups      Resource = "groups"
	ResourceActivityLog Resource = "activity_log"
	ResourceDashboard   Resource = "dashboard"
)

// AllResources lists every permission-controlled resource
var AllResources = []Resource{
	ResourceLeads, ResourceAccounts, ResourceDeals, ResourceProjects,
	ResourceTasks, ResourceInvoices, ResourceQuotes, ResourceUsers,
	ResourceGroups, ResourceActivityLog, ResourceDashboard,
}

// VerbSet is the set of verbs a role holds on a resource
type VerbSet struct {
	Create bool
	Read   bool
	Update bool
	Delete bool
}

var (
	crud = VerbSet{Create: true, Read: true, Update: true, Delete: true}
	cru  = VerbSet{Create: true, Read: true, Update: true}
	cr   = VerbSet{Create: true, Read: true}
	ro   = VerbSet{Read: true}
)

// rolePermissions is the fixed access matrix. Roles are not stored with
// per-user grants; what a role can do is decided here and nowhere else.
var rolePermissions = map[UserRole]map[Resource]VerbSet{
	RoleAdmin: {
		ResourceLeads:       crud,
		ResourceAccounts:    crud,
		ResourceDeals:       crud,
		ResourceProjects:    crud,
		ResourceTasks:       crud,
		ResourceInvoices:    crud,
		ResourceQuotes:      crud,
		ResourceUsers:       crud,
		ResourceGroups:      crud,
		ResourceActivityLog: ro,
		ResourceDashboard:   ro,
	},
	RoleManager: {
		ResourceLeads:       crud,
		ResourceAccounts:    cru,
		ResourceDeals:       cru,
		ResourceProjects:    cru,
		ResourceTasks:       cru,
		ResourceInvoices:    ro,
		ResourceQuotes:      cru,
		ResourceUsers:       ro,
		ResourceGroups:      ro,
		ResourceActivityLog: ro,
		ResourceDashboard:   ro,
	},
	RoleSales: {
		ResourceLeads:       cru,
		ResourceAccounts:    cr,
		ResourceDeals:       cru,
		ResourceProjects:    ro,
		ResourceTasks:       ro,
		ResourceQuotes:      cru,
		ResourceActivityLog: ro,
		ResourceDashboard:   ro,
	},
	RoleTelesales: {
		ResourceLeads:       cru,
		ResourceAccounts:    ro,
		ResourceDeals:       ro,
		ResourceActivityLog: ro,
		ResourceDashboard:   ro,
	},
	RoleProjectManager: {
		ResourceProjects:    cru,
		ResourceTasks:       crud,
		ResourceDeals:       ro,
		ResourceAccounts:    ro,
		ResourceActivityLog: ro,
		ResourceDashboard:   ro,
	},
	RoleFinance: {
		ResourceInvoices:    crud,
		ResourceQuotes:      cru,
		ResourceDeals:       ro,
		ResourceProjects:    ro,
		ResourceAccounts:    ro,
		ResourceActivityLog: ro,
		ResourceDashboard:   ro,
	},
}

// ResolvePermissions returns the full verb matrix for a role. Unknown roles
// and resources missing from a role's row resolve to no access.
func ResolvePermissions(role UserRole) map[Resource]VerbSet {
	row, ok := rolePermissions[role]
	resolved := make(map[Resource]VerbSet, len(AllResources))
	for _, res := range AllResources {
		if !ok {
			resolved[res] = VerbSet{}
			continue
		}
		resolved[res] = row[res]
	}
	return resolved
}

// Can reports whether a role holds a single verb on a resource
func Can(role UserRole, res Resource, check func(VerbSet) bool) bool {
	row, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return check(row[res])
}

// CanCreate reports whether a role may create records of a resource
func CanCreate(role UserRole, res Resource) bool {
	return Can(role, res, func(v VerbSet) bool { return v.Create })
}

// CanRead reports whether a role may read records of a resource
func CanRead(role UserRole, res Resource) bool {
	return Can(role, res, func(v VerbSet) bool { return v.Read })
}

// CanUpdate reports whether a role may update records of a resource
func CanUpdate(role UserRole, res Resource) bool {
	return Can(role, res, func(v VerbSet) bool { return v.Update })
}

// CanDelete reports whether a role may delete records of a resource
func CanDelete(role UserRole, res Resource) bool {
	return Can(role, res, func(v VerbSet) bool { return v.Delete })
}

// Actor is the minimal identity needed for ownership checks
type Actor struct {
	ID      uuid.UUID
	Role    UserRole
	Scope   Scope
	GroupID *uuid.UUID
}

// CanMutateRecord reports whether the actor may modify a record of res
// owned by ownerID. The role matrix must grant update on the resource,
// and the actor must stand in the right relation to the record: admins
// touch anything, managers records owned by members of their group, and
// other roles only their own.
func CanMutateRecord(actor Actor, res Resource, ownerID uuid.UUID, ownerGroupID *uuid.UUID) bool {
	return CanUpdate(actor.Role, res) && ownsRecord(actor, ownerID, ownerGroupID)
}

// CanDeleteRecord is CanMutateRecord with the delete verb
func CanDeleteRecord(actor Actor, res Resource, ownerID uuid.UUID, ownerGroupID *uuid.UUID) bool {
	return CanDelete(actor.Role, res) && ownsRecord(actor, ownerID, ownerGroupID)
}

func ownsRecord(actor Actor, ownerID uuid.UUID, ownerGroupID *uuid.UUID) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		if actor.ID == ownerID {
			return true
		}
		return actor.GroupID != nil && ownerGroupID != nil && *actor.GroupID == *ownerGroupID
	default:
		return actor.ID == ownerID
	}
}

// SeesScope reports whether the actor's scope grants visibility into s
func SeesScope(actor Actor, s Scope) bool {
	if actor.Scope == ScopeAll || s == ScopeAll {
		return true
	}
	return actor.Scope == s
}
