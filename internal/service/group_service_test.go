package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newGroupService(db *gorm.DB) *service.GroupService {
	logger := zap.NewNop()
	return service.NewGroupService(
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		db,
		logger,
	)
}

func TestGroupService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	manager := testutil.CreateTestUser(t, db, "Mona", domain.RoleManager, domain.ScopeKSA)
	group, err := svc.Create(ctx, &domain.CreateGroupRequest{
		Name:      "Riyadh Sales",
		ManagerID: &manager.ID,
		Scope:     domain.ScopeKSA,
	})
	require.NoError(t, err)
	assert.Equal(t, manager.Name, group.ManagerName)

	// The manager is pulled into the group they lead
	var stored domain.User
	require.NoError(t, db.First(&stored, "id = ?", manager.ID).Error)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, group.ID, *stored.GroupID)

	t.Run("only managers and admins can lead", func(t *testing.T) {
		sales := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
		_, err := svc.Create(ctx, &domain.CreateGroupRequest{
			Name:      "Jeddah Sales",
			ManagerID: &sales.ID,
			Scope:     domain.ScopeKSA,
		})
		assert.ErrorIs(t, err, service.ErrGroupManagerRole)
	})
}

func TestGroupService_Update_ManagerRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	group := testutil.CreateTestGroup(t, db, "Cairo Sales", domain.ScopeEGY)
	telesales := testutil.CreateTestUser(t, db, "Sara", domain.RoleTelesales, domain.ScopeEGY)

	_, err := svc.Update(ctx, group.ID, &domain.UpdateGroupRequest{
		ManagerID: &telesales.ID,
	})
	assert.ErrorIs(t, err, service.ErrGroupManagerRole)
}

func TestGroupService_Delete_DetachesMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newGroupService(db)
	ctx := context.Background()

	group := testutil.CreateTestGroup(t, db, "Cairo Sales", domain.ScopeEGY)
	member := testutil.CreateTestUser(t, db, "Sara", domain.RoleTelesales, domain.ScopeEGY)
	require.NoError(t, db.Model(member).Update("group_id", group.ID).Error)

	require.NoError(t, svc.Delete(ctx, group.ID))

	var groups int64
	require.NoError(t, db.Model(&domain.Group{}).Where("id = ?", group.ID).Count(&groups).Error)
	assert.Zero(t, groups)

	// Members stay but become groupless
	var stored domain.User
	require.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
	assert.Nil(t, stored.GroupID)
}
