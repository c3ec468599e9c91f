package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newDealService(db *gorm.DB) *service.DealService {
	logger := zap.NewNop()
	return service.NewDealService(
		repository.NewDealRepository(db),
		repository.NewAccountRepository(db),
		repository.NewProjectRepository(db),
		repository.NewUserRepository(db),
		repository.NewDealStageHistoryRepository(db),
		repository.NewActivityRepository(db),
		repository.NewActivityLogRepository(db),
		repository.NewNotificationRepository(db),
		db,
		logger,
	)
}

func TestDealService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDealService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	ctx := context.Background()

	deal, err := svc.Create(ctx, testutil.ActorFor(owner), owner.Name, &domain.CreateDealRequest{
		Name:  "Website revamp",
		Value: 25000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusNewOpportunity, deal.Status)
	assert.Equal(t, owner.ID, deal.OwnerID)
	assert.Equal(t, domain.ScopeKSA, deal.Scope)

	// The opening stage is recorded in the history
	var history []domain.DealStageHistory
	require.NoError(t, db.Where("deal_id = ?", deal.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, domain.DealStatusNewOpportunity, history[0].ToStatus)
}

func TestDealService_UpdateStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDealService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("open stages move freely", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNewOpportunity)
		updated, err := svc.UpdateStage(ctx, actor, owner.Name, deal.ID, domain.DealStatusProposalSent)
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusProposalSent, updated.Status)

		// Backwards moves are allowed too
		updated, err = svc.UpdateStage(ctx, actor, owner.Name, deal.ID, domain.DealStatusMeetingScheduled)
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusMeetingScheduled, updated.Status)
	})

	t.Run("won is not reachable by a stage move", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		_, err := svc.UpdateStage(ctx, actor, owner.Name, deal.ID, domain.DealStatusWon)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("closed deals are frozen", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusLost)
		_, err := svc.UpdateStage(ctx, actor, owner.Name, deal.ID, domain.DealStatusNegotiation)
		assert.ErrorIs(t, err, service.ErrDealNotOpen)
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		updated, err := svc.UpdateStage(ctx, actor, owner.Name, deal.ID, domain.DealStatusNegotiation)
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusNegotiation, updated.Status)

		var count int64
		require.NoError(t, db.Model(&domain.DealStageHistory{}).Where("deal_id = ?", deal.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("telesales cannot move even their own deals", func(t *testing.T) {
		tele := testutil.CreateTestUser(t, db, "Sara", domain.RoleTelesales, domain.ScopeKSA)
		deal := testutil.CreateTestDeal(t, db, tele, domain.DealStatusNewOpportunity)
		_, err := svc.UpdateStage(ctx, testutil.ActorFor(tele), tele.Name, deal.ID, domain.DealStatusProposalSent)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("transition is recorded", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusProposalSent)
		_, err := svc.UpdateStage(ctx, actor, owner.Name, deal.ID, domain.DealStatusNegotiation)
		require.NoError(t, err)

		var entry domain.DealStageHistory
		require.NoError(t, db.Where("deal_id = ?", deal.ID).First(&entry).Error)
		require.NotNil(t, entry.FromStatus)
		assert.Equal(t, domain.DealStatusProposalSent, *entry.FromStatus)
		assert.Equal(t, domain.DealStatusNegotiation, entry.ToStatus)
		assert.Equal(t, owner.ID, entry.ChangedByID)
	})
}

func TestDealService_Win(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDealService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("any open stage can be won", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNewOpportunity)
		pm := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)

		result, err := svc.Win(ctx, actor, owner.Name, deal.ID, &domain.WinDealRequest{
			ProjectManagerID: &pm.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusWon, result.Deal.Status)
	})

	t.Run("a project manager is required", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		_, err := svc.Win(ctx, actor, owner.Name, deal.ID, &domain.WinDealRequest{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)

		// Nothing was written
		var stored domain.Deal
		require.NoError(t, db.First(&stored, "id = ?", deal.ID).Error)
		assert.Equal(t, domain.DealStatusNegotiation, stored.Status)
		var count int64
		require.NoError(t, db.Model(&domain.Project{}).Where("deal_id = ?", deal.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("a deal without services cannot be won", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		require.NoError(t, db.Model(&domain.Deal{}).Where("id = ?", deal.ID).Update("services", pq.StringArray{}).Error)
		pm := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)

		_, err := svc.Win(ctx, actor, owner.Name, deal.ID, &domain.WinDealRequest{
			ProjectManagerID: &pm.ID,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("creates the delivery project", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		pm := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)

		result, err := svc.Win(ctx, actor, owner.Name, deal.ID, &domain.WinDealRequest{
			ProjectType:      domain.ProjectTypeWebDevelopment,
			ProjectManagerID: &pm.ID,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.DealStatusWon, result.Deal.Status)
		require.NotNil(t, result.Deal.PaymentStatus)
		assert.Equal(t, domain.PaymentStatusPending, *result.Deal.PaymentStatus)
		assert.NotNil(t, result.Deal.ActualCloseDate)

		assert.Equal(t, deal.Title, result.Project.Name)
		assert.Equal(t, domain.ProjectStatusPlanning, result.Project.Status)
		assert.Equal(t, domain.ProjectTypeWebDevelopment, result.Project.ProjectType)
		require.NotNil(t, result.Project.ProjectManagerID)
		assert.Equal(t, pm.ID, *result.Project.ProjectManagerID)
		assert.Equal(t, deal.Scope, result.Project.Scope)

		var project domain.Project
		require.NoError(t, db.Where("deal_id = ?", deal.ID).First(&project).Error)
		assert.Equal(t, pm.Name, project.ManagerName)
	})

	t.Run("winning twice fails", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		pm := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
		req := &domain.WinDealRequest{ProjectManagerID: &pm.ID}
		_, err := svc.Win(ctx, actor, owner.Name, deal.ID, req)
		require.NoError(t, err)

		_, err = svc.Win(ctx, actor, owner.Name, deal.ID, req)
		assert.ErrorIs(t, err, service.ErrDealNotOpen)
	})

	t.Run("existing project blocks the win", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		pm := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
		testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, &deal.ID)

		_, err := svc.Win(ctx, actor, owner.Name, deal.ID, &domain.WinDealRequest{
			ProjectManagerID: &pm.ID,
		})
		assert.ErrorIs(t, err, service.ErrDealHasProject)
	})
}

func TestDealService_Lose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDealService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("reason is mandatory", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		_, err := svc.Lose(ctx, actor, owner.Name, deal.ID, &domain.LoseDealRequest{})
		assert.ErrorIs(t, err, service.ErrLossReasonRequired)
	})

	t.Run("other requires details", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		_, err := svc.Lose(ctx, actor, owner.Name, deal.ID, &domain.LoseDealRequest{
			Reason: domain.LostReasonOther,
		})
		assert.ErrorIs(t, err, service.ErrLossDetailsRequired)
	})

	t.Run("loss is recorded with its reason", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusProposalSent)
		updated, err := svc.Lose(ctx, actor, owner.Name, deal.ID, &domain.LoseDealRequest{
			Reason: domain.LostReasonPrice,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusLost, updated.Status)
		require.NotNil(t, updated.LostReason)
		assert.Equal(t, domain.LostReasonPrice, *updated.LostReason)
		assert.NotNil(t, updated.ActualCloseDate)

		var stored domain.Deal
		require.NoError(t, db.First(&stored, "id = ?", deal.ID).Error)
		assert.Equal(t, domain.DealStatusLost, stored.Status)
	})

	t.Run("closed deals cannot be lost again", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusWon)
		_, err := svc.Lose(ctx, actor, owner.Name, deal.ID, &domain.LoseDealRequest{
			Reason: domain.LostReasonCompetitor,
		})
		assert.ErrorIs(t, err, service.ErrDealNotOpen)
	})
}

func TestDealService_ScheduleMeeting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDealService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("rejects past times", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNewOpportunity)
		_, err := svc.ScheduleMeeting(ctx, actor, owner.Name, deal.ID, &domain.ScheduleMeetingRequest{
			At: time.Now().Add(-time.Hour),
		})
		assert.ErrorIs(t, err, service.ErrMeetingInPast)
	})

	t.Run("advances a fresh deal to the meeting stage", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNewOpportunity)
		at := time.Now().Add(48 * time.Hour)
		updated, err := svc.ScheduleMeeting(ctx, actor, owner.Name, deal.ID, &domain.ScheduleMeetingRequest{At: at})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusMeetingScheduled, updated.Status)
		assert.NotNil(t, updated.MeetingAt)
	})

	t.Run("later stages keep their position", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		updated, err := svc.ScheduleMeeting(ctx, actor, owner.Name, deal.ID, &domain.ScheduleMeetingRequest{
			At: time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusNegotiation, updated.Status)
	})
}
