package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/saqrcrm/sales-api/internal/domain"
)

func TestResolvePermissions_CoversAllResources(t *testing.T) {
	for _, role := range []domain.UserRole{
		domain.RoleAdmin, domain.RoleManager, domain.RoleSales,
		domain.RoleTelesales, domain.RoleProjectManager, domain.RoleFinance,
	} {
		resolved := domain.ResolvePermissions(role)
		assert.Len(t, resolved, len(domain.AllResources), "role %s", role)
		for _, res := range domain.AllResources {
			_, ok := resolved[res]
			assert.True(t, ok, "role %s missing resource %s", role, res)
		}
	}
}

func TestResolvePermissions_UnknownRoleHasNoAccess(t *testing.T) {
	resolved := domain.ResolvePermissions(domain.UserRole("intern"))
	for res, verbs := range resolved {
		assert.Equal(t, domain.VerbSet{}, verbs, "resource %s", res)
	}
}

func TestCan_FailsClosed(t *testing.T) {
	// A resource missing from a role's row means no access, not full access
	assert.False(t, domain.CanRead(domain.RoleTelesales, domain.ResourceInvoices))
	assert.False(t, domain.CanCreate(domain.RoleTelesales, domain.ResourceProjects))
	assert.False(t, domain.CanRead(domain.RoleSales, domain.ResourceUsers))
	assert.False(t, domain.CanCreate(domain.UserRole("intern"), domain.ResourceLeads))
}

func TestCan_GrantedVerbs(t *testing.T) {
	assert.True(t, domain.CanDelete(domain.RoleAdmin, domain.ResourceUsers))
	assert.True(t, domain.CanCreate(domain.RoleSales, domain.ResourceLeads))
	assert.False(t, domain.CanDelete(domain.RoleSales, domain.ResourceLeads))
	assert.True(t, domain.CanDelete(domain.RoleFinance, domain.ResourceInvoices))
	assert.False(t, domain.CanUpdate(domain.RoleManager, domain.ResourceInvoices))
	assert.True(t, domain.CanDelete(domain.RoleProjectManager, domain.ResourceTasks))
}

func TestCanMutateRecord(t *testing.T) {
	owner := uuid.New()
	group := uuid.New()
	otherGroup := uuid.New()

	t.Run("admin mutates anything", func(t *testing.T) {
		actor := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
		assert.True(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, nil))
	})

	t.Run("owner mutates own record", func(t *testing.T) {
		actor := domain.Actor{ID: owner, Role: domain.RoleSales}
		assert.True(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, nil))
	})

	t.Run("sales cannot mutate others", func(t *testing.T) {
		actor := domain.Actor{ID: uuid.New(), Role: domain.RoleSales, GroupID: &group}
		assert.False(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, &group))
	})

	t.Run("manager mutates within group", func(t *testing.T) {
		actor := domain.Actor{ID: uuid.New(), Role: domain.RoleManager, GroupID: &group}
		assert.True(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, &group))
		assert.False(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, &otherGroup))
		assert.False(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, nil))
	})

	t.Run("groupless manager mutates only own records", func(t *testing.T) {
		actor := domain.Actor{ID: uuid.New(), Role: domain.RoleManager}
		assert.False(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, &group))
		assert.True(t, domain.CanMutateRecord(domain.Actor{ID: owner, Role: domain.RoleManager}, domain.ResourceDeals, owner, nil))
	})

	t.Run("ownership alone is not enough", func(t *testing.T) {
		// Telesales reads deals but holds no update verb, even on their own
		actor := domain.Actor{ID: owner, Role: domain.RoleTelesales}
		assert.False(t, domain.CanMutateRecord(actor, domain.ResourceDeals, owner, nil))
		assert.True(t, domain.CanMutateRecord(actor, domain.ResourceLeads, owner, nil))
	})
}

func TestCanDeleteRecord(t *testing.T) {
	owner := uuid.New()

	// Sales may update their own leads but not delete them
	sales := domain.Actor{ID: owner, Role: domain.RoleSales}
	assert.True(t, domain.CanMutateRecord(sales, domain.ResourceLeads, owner, nil))
	assert.False(t, domain.CanDeleteRecord(sales, domain.ResourceLeads, owner, nil))

	manager := domain.Actor{ID: owner, Role: domain.RoleManager}
	assert.True(t, domain.CanDeleteRecord(manager, domain.ResourceLeads, owner, nil))
	assert.False(t, domain.CanDeleteRecord(manager, domain.ResourceDeals, owner, nil))
}

func TestSeesScope(t *testing.T) {
	assert.True(t, domain.SeesScope(domain.Actor{Scope: domain.ScopeAll}, domain.ScopeKSA))
	assert.True(t, domain.SeesScope(domain.Actor{Scope: domain.ScopeKSA}, domain.ScopeAll))
	assert.True(t, domain.SeesScope(domain.Actor{Scope: domain.ScopeKSA}, domain.ScopeKSA))
	assert.False(t, domain.SeesScope(domain.Actor{Scope: domain.ScopeKSA}, domain.ScopeEGY))
	assert.False(t, domain.SeesScope(domain.Actor{Scope: domain.ScopeUAE}, domain.ScopeEGY))
}
