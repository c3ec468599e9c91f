package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/board"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newBoardService(db *gorm.DB) (*service.BoardService, *board.Board) {
	logger := zap.NewNop()
	b := board.New()
	svc := service.NewBoardService(
		b,
		repository.NewDealRepository(db),
		repository.NewUserRepository(db),
		repository.NewDealStageHistoryRepository(db),
		repository.NewActivityLogRepository(db),
		logger,
	)
	return svc, b
}

func TestBoardService_View(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := newBoardService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	ctx := context.Background()

	first := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
	second := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
	testutil.CreateTestDeal(t, db, owner, domain.DealStatusWon)
	require.NoError(t, svc.Refresh(ctx))

	view, err := svc.View(ctx)
	require.NoError(t, err)

	require.Len(t, view[domain.DealStatusNegotiation], 2)
	ids := []interface{}{view[domain.DealStatusNegotiation][0].ID, view[domain.DealStatusNegotiation][1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
	assert.Len(t, view[domain.DealStatusWon], 1)
	assert.Empty(t, view[domain.DealStatusProposalSent])
}

func TestBoardService_View_PicksUpNewDeals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := newBoardService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))

	// Created after the refresh, still shows up
	deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNewOpportunity)
	view, err := svc.View(ctx)
	require.NoError(t, err)
	require.Len(t, view[domain.DealStatusNewOpportunity], 1)
	assert.Equal(t, deal.ID, view[domain.DealStatusNewOpportunity][0].ID)
}

func TestBoardService_Move(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, b := newBoardService(db)
	owner := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("persists the stage change", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNewOpportunity)
		require.NoError(t, svc.Refresh(ctx))

		moved, err := svc.Move(ctx, actor, owner.Name, deal.ID, &domain.MoveDealRequest{
			ToStatus: domain.DealStatusNegotiation,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStatusNegotiation, moved.Status)

		var stored domain.Deal
		require.NoError(t, db.First(&stored, "id = ?", deal.ID).Error)
		assert.Equal(t, domain.DealStatusNegotiation, stored.Status)

		var history int64
		require.NoError(t, db.Model(&domain.DealStageHistory{}).Where("deal_id = ?", deal.ID).Count(&history).Error)
		assert.EqualValues(t, 1, history)

		// The move lands in the activity log with deal and destination
		var entry domain.ActivityLogEntry
		require.NoError(t, db.Where("entity_id = ?", deal.ID).First(&entry).Error)
		assert.Contains(t, entry.Action, stored.Title)
		assert.Contains(t, entry.Action, string(domain.DealStatusNegotiation))
	})

	t.Run("reorders within a column", func(t *testing.T) {
		require.NoError(t, svc.Refresh(ctx))
		first := testutil.CreateTestDeal(t, db, owner, domain.DealStatusProposalSent)
		second := testutil.CreateTestDeal(t, db, owner, domain.DealStatusProposalSent)
		_, err := svc.View(ctx)
		require.NoError(t, err)

		_, err = svc.Move(ctx, actor, owner.Name, second.ID, &domain.MoveDealRequest{
			ToStatus: domain.DealStatusProposalSent,
			BeforeID: &first.ID,
		})
		require.NoError(t, err)
		order := b.Column(domain.DealStatusProposalSent)
		require.Len(t, order, 2)
		assert.Equal(t, second.ID, order[0])
		assert.Equal(t, first.ID, order[1])

		// A pure reorder records no stage transition
		var history int64
		require.NoError(t, db.Model(&domain.DealStageHistory{}).Where("deal_id = ?", second.ID).Count(&history).Error)
		assert.Zero(t, history)
	})

	t.Run("closed columns are not reachable", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		require.NoError(t, svc.Refresh(ctx))

		_, err := svc.Move(ctx, actor, owner.Name, deal.ID, &domain.MoveDealRequest{
			ToStatus: domain.DealStatusWon,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("closed deals stay put", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusLost)
		require.NoError(t, svc.Refresh(ctx))

		_, err := svc.Move(ctx, actor, owner.Name, deal.ID, &domain.MoveDealRequest{
			ToStatus: domain.DealStatusNegotiation,
		})
		assert.ErrorIs(t, err, service.ErrDealNotOpen)
	})
}
