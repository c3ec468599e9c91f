package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListByTarget returns the activity timeline for a lead or deal,
// newest first
func (r *ActivityRepository) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&activities).Error
	return activities, err
}

// ListByTargets loads activities for many targets at once, keyed by target
// ID. Used when assembling list responses without N+1 queries.
func (r *ActivityRepository) ListByTargets(ctx context.Context, targetType domain.ActivityTargetType, targetIDs []uuid.UUID) (map[uuid.UUID][]domain.Activity, error) {
	byTarget := make(map[uuid.UUID][]domain.Activity)
	if len(targetIDs) == 0 {
		return byTarget, nil
	}
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", targetType, targetIDs).
		Order("created_at DESC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	for _, a := range activities {
		byTarget[a.TargetID] = append(byTarget[a.TargetID], a)
	}
	return byTarget, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Activity{}, "id = ?", id).Error
}

// DeleteByTarget removes all activities for an entity when it is deleted
func (r *ActivityRepository) DeleteByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Delete(&domain.Activity{}).Error
}
