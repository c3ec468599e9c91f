package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
)

type DealStageHistoryRepository struct {
	db *gorm.DB
}

func NewDealStageHistoryRepository(db *gorm.DB) *DealStageHistoryRepository {
	return &DealStageHistoryRepository{db: db}
}

// Create records a new stage transition
func (r *DealStageHistoryRepository) Create(ctx context.Context, history *domain.DealStageHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// GetByDealID returns all stage history for a deal, ordered by change time
func (r *DealStageHistoryRepository) GetByDealID(ctx context.Context, dealID uuid.UUID) ([]domain.DealStageHistory, error) {
	var history []domain.DealStageHistory
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("changed_at DESC").
		Find(&history).Error
	return history, err
}

// GetLatestByDealID returns the most recent stage change for a deal
func (r *DealStageHistoryRepository) GetLatestByDealID(ctx context.Context, dealID uuid.UUID) (*domain.DealStageHistory, error) {
	var history domain.DealStageHistory
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("changed_at DESC").
		First(&history).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// RecordTransition is a convenience method to create a stage history record
func (r *DealStageHistoryRepository) RecordTransition(
	ctx context.Context,
	dealID uuid.UUID,
	fromStatus *domain.DealStatus,
	toStatus domain.DealStatus,
	changedByID uuid.UUID,
	changedByName string,
	notes string,
) error {
	history := &domain.DealStageHistory{
		DealID:        dealID,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		ChangedByID:   changedByID,
		ChangedByName: changedByName,
		Notes:         notes,
		ChangedAt:     time.Now(),
	}
	return r.Create(ctx, history)
}

// CountTransitionsToStatus returns how many deals entered a stage in a window
func (r *DealStageHistoryRepository) CountTransitionsToStatus(ctx context.Context, status domain.DealStatus, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.DealStageHistory{}).
		Where("to_status = ?", status).
		Where("changed_at >= ? AND changed_at <= ?", from, to).
		Count(&count).Error
	return count, err
}

// DeleteByDealID removes all history for a deal (used when deal is deleted)
func (r *DealStageHistoryRepository) DeleteByDealID(ctx context.Context, dealID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Delete(&domain.DealStageHistory{}).Error
}
