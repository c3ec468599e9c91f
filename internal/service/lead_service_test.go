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

func newLeadService(db *gorm.DB) *service.LeadService {
	logger := zap.NewNop()
	return service.NewLeadService(
		repository.NewLeadRepository(db),
		repository.NewAccountRepository(db),
		repository.NewDealRepository(db),
		repository.NewUserRepository(db),
		repository.NewActivityRepository(db),
		repository.NewActivityLogRepository(db),
		repository.NewNotificationRepository(db),
		db,
		logger,
	)
}

func TestLeadService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	ctx := context.Background()

	lead, err := svc.Create(ctx, testutil.ActorFor(owner), owner.Name, &domain.CreateLeadRequest{
		CompanyName: "Noor Trading",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, lead.Status)
	assert.Equal(t, domain.LeadSourceOther, lead.Source)
	assert.Equal(t, owner.ID, lead.OwnerID)
	// Scoped creators cannot place records outside their own region
	assert.Equal(t, domain.ScopeKSA, lead.Scope)
}

func TestLeadService_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("forward move", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusNew)
		updated, err := svc.UpdateStatus(ctx, actor, owner.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusContacted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusContacted, updated.Status)
	})

	t.Run("dismissal needs a reason", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusContacted)
		_, err := svc.UpdateStatus(ctx, actor, owner.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusNotInterested,
		})
		assert.ErrorIs(t, err, service.ErrDismissReasonNeeded)

		updated, err := svc.UpdateStatus(ctx, actor, owner.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusNotInterested,
			Reason: "budget frozen",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusNotInterested, updated.Status)
		assert.Equal(t, "budget frozen", updated.NotInterestedReason)
	})

	t.Run("dismissed leads can be picked back up", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusNotInterested)
		require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", lead.ID).
			Update("not_interested_reason", "budget frozen").Error)

		updated, err := svc.UpdateStatus(ctx, actor, owner.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusContacted,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeadStatusContacted, updated.Status)
		// Reviving the lead drops the dismissal reason
		assert.Empty(t, updated.NotInterestedReason)
	})

	t.Run("converted leads stay closed", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusConverted)
		_, err := svc.UpdateStatus(ctx, actor, owner.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusNew,
		})
		assert.ErrorIs(t, err, service.ErrLeadAlreadyClosed)
	})

	t.Run("converted is not reachable by status change", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusQualified)
		_, err := svc.UpdateStatus(ctx, actor, owner.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusConverted,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("another sales user is rejected", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusNew)
		other := testutil.CreateTestUser(t, db, "Sara", domain.RoleSales, domain.ScopeKSA)
		_, err := svc.UpdateStatus(ctx, testutil.ActorFor(other), other.Name, lead.ID, &domain.UpdateLeadStatusRequest{
			Status: domain.LeadStatusContacted,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestLeadService_Convert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("requires a qualified lead", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusContacted)
		_, err := svc.Convert(ctx, actor, owner.Name, lead.ID, &domain.ConvertLeadRequest{})
		assert.ErrorIs(t, err, service.ErrLeadNotQualified)
	})

	t.Run("creates account and deal together", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusQualified)
		result, err := svc.Convert(ctx, actor, owner.Name, lead.ID, &domain.ConvertLeadRequest{
			DealValue: 48000,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.LeadStatusConverted, result.Lead.Status)
		assert.Equal(t, lead.CompanyName, result.Account.Name)
		assert.Equal(t, domain.DealStatusNewOpportunity, result.Deal.Status)
		assert.Equal(t, 48000.0, result.Deal.Value)
		assert.Equal(t, lead.Scope, result.Deal.Scope)

		// The deal links back to the account born from the same lead
		var deal domain.Deal
		require.NoError(t, db.First(&deal, "id = ?", result.Deal.ID).Error)
		require.NotNil(t, deal.AccountID)
		assert.Equal(t, result.Account.ID, *deal.AccountID)

		var stored domain.Lead
		require.NoError(t, db.First(&stored, "id = ?", lead.ID).Error)
		assert.Equal(t, domain.LeadStatusConverted, stored.Status)
		require.NotNil(t, stored.ConvertedDealID)
		assert.Equal(t, result.Deal.ID, *stored.ConvertedDealID)

		// The owner hears about it
		var notification domain.Notification
		require.NoError(t, db.Where("user_id = ? AND type = ?",
			owner.ID, domain.NotificationTypeLeadConverted).First(&notification).Error)
		require.NotNil(t, notification.EntityID)
		assert.Equal(t, result.Deal.ID, *notification.EntityID)
	})

	t.Run("repeat conversion is idempotent", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusQualified)
		first, err := svc.Convert(ctx, actor, owner.Name, lead.ID, &domain.ConvertLeadRequest{})
		require.NoError(t, err)

		second, err := svc.Convert(ctx, actor, owner.Name, lead.ID, &domain.ConvertLeadRequest{})
		require.NoError(t, err)
		assert.Equal(t, first.Deal.ID, second.Deal.ID)
		assert.Equal(t, first.Account.ID, second.Account.ID)

		var count int64
		require.NoError(t, db.Model(&domain.Deal{}).Where("source_lead_id = ?", lead.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("overrides name and title", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusQualified)
		result, err := svc.Convert(ctx, actor, owner.Name, lead.ID, &domain.ConvertLeadRequest{
			AccountName: "Almasa Holdings",
			DealTitle:   "Almasa rollout",
		})
		require.NoError(t, err)
		assert.Equal(t, "Almasa Holdings", result.Account.Name)
		assert.Equal(t, "Almasa rollout", result.Deal.Name)
	})
}

func TestLeadService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	owner := testutil.CreateTestUser(t, db, "Laila", domain.RoleManager, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, owner, domain.LeadStatusNew)
	_, err := svc.AddActivity(ctx, actor, owner.Name, lead.ID, &domain.CreateActivityRequest{
		Type:    domain.ActivityTypeCall,
		Content: "Intro call",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, actor, owner.Name, lead.ID))

	var leads, activities int64
	require.NoError(t, db.Model(&domain.Lead{}).Where("id = ?", lead.ID).Count(&leads).Error)
	require.NoError(t, db.Model(&domain.Activity{}).Where("target_id = ?", lead.ID).Count(&activities).Error)
	assert.Zero(t, leads)
	assert.Zero(t, activities)

	t.Run("sales hold no delete verb on leads", func(t *testing.T) {
		sales := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
		own := testutil.CreateTestLead(t, db, sales, domain.LeadStatusNew)
		err := svc.Delete(ctx, testutil.ActorFor(sales), sales.Name, own.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}
