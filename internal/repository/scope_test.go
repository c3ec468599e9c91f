package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func scopedCtx(scope domain.Scope) context.Context {
	s := scope
	return auth.WithScopeFilter(context.Background(), &auth.ScopeFilter{Scope: &s})
}

func TestApplyScopeFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)

	ksaOwner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	egyOwner := testutil.CreateTestUser(t, db, "Mona", domain.RoleSales, domain.ScopeEGY)
	globalOwner := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin, domain.ScopeAll)

	ksaDeal := testutil.CreateTestDeal(t, db, ksaOwner, domain.DealStatusNewOpportunity)
	egyDeal := testutil.CreateTestDeal(t, db, egyOwner, domain.DealStatusNewOpportunity)
	globalDeal := testutil.CreateTestDeal(t, db, globalOwner, domain.DealStatusNewOpportunity)

	t.Run("regional callers see their region plus ALL", func(t *testing.T) {
		deals, err := repo.ListAll(scopedCtx(domain.ScopeKSA))
		require.NoError(t, err)

		ids := make(map[string]bool, len(deals))
		for _, d := range deals {
			ids[d.ID.String()] = true
		}
		assert.True(t, ids[ksaDeal.ID.String()])
		assert.True(t, ids[globalDeal.ID.String()])
		assert.False(t, ids[egyDeal.ID.String()])
	})

	t.Run("no filter sees every region", func(t *testing.T) {
		deals, err := repo.ListAll(context.Background())
		require.NoError(t, err)
		assert.Len(t, deals, 3)
	})
}

func userCtx(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:  user.ID,
		Name:    user.Name,
		Role:    user.Role,
		Scope:   user.Scope,
		GroupID: user.GroupID,
	})
}

func dealIDs(deals []domain.Deal) map[string]bool {
	ids := make(map[string]bool, len(deals))
	for _, d := range deals {
		ids[d.ID.String()] = true
	}
	return ids
}

func TestApplyOwnershipFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewDealRepository(db)

	group := testutil.CreateTestGroup(t, db, "KSA Sales", domain.ScopeKSA)
	manager := testutil.CreateTestUser(t, db, "Laila", domain.RoleManager, domain.ScopeKSA)
	member := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	outsider := testutil.CreateTestUser(t, db, "Tarek", domain.RoleSales, domain.ScopeKSA)
	require.NoError(t, db.Model(manager).Update("group_id", group.ID).Error)
	require.NoError(t, db.Model(member).Update("group_id", group.ID).Error)
	manager.GroupID = &group.ID
	member.GroupID = &group.ID

	managerDeal := testutil.CreateTestDeal(t, db, manager, domain.DealStatusNewOpportunity)
	memberDeal := testutil.CreateTestDeal(t, db, member, domain.DealStatusNewOpportunity)
	outsiderDeal := testutil.CreateTestDeal(t, db, outsider, domain.DealStatusNewOpportunity)

	t.Run("sales sees only their own records", func(t *testing.T) {
		deals, err := repo.ListAll(userCtx(member))
		require.NoError(t, err)
		require.Len(t, deals, 1)
		assert.Equal(t, memberDeal.ID, deals[0].ID)
	})

	t.Run("managers see their group's records", func(t *testing.T) {
		deals, err := repo.ListAll(userCtx(manager))
		require.NoError(t, err)
		ids := dealIDs(deals)
		assert.True(t, ids[managerDeal.ID.String()])
		assert.True(t, ids[memberDeal.ID.String()])
		assert.False(t, ids[outsiderDeal.ID.String()])
	})

	t.Run("admins see everything", func(t *testing.T) {
		admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleAdmin, domain.ScopeAll)
		deals, err := repo.ListAll(userCtx(admin))
		require.NoError(t, err)
		assert.Len(t, deals, 3)
	})

	t.Run("aggregates are narrowed too", func(t *testing.T) {
		counts, err := repo.CountByStatus(userCtx(member))
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[domain.DealStatusNewOpportunity])
	})
}

func TestApplyProjectOwnershipFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProjectRepository(db)

	pm := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	otherPM := testutil.CreateTestUser(t, db, "Nour", domain.RoleProjectManager, domain.ScopeAll)

	mine := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
	require.NoError(t, db.Model(mine).Update("project_manager_id", pm.ID).Error)
	theirs := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
	require.NoError(t, db.Model(theirs).Update("project_manager_id", otherPM.ID).Error)
	unassigned := testutil.CreateTestProject(t, db, domain.ProjectStatusPlanning, nil)

	projects, err := repo.ListAll(userCtx(pm))
	require.NoError(t, err)

	ids := make(map[string]bool, len(projects))
	for _, p := range projects {
		ids[p.ID.String()] = true
	}
	assert.True(t, ids[mine.ID.String()])
	// Unassigned projects stay visible so they can be picked up
	assert.True(t, ids[unassigned.ID.String()])
	assert.False(t, ids[theirs.ID.String()])
}
