package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityLogRepository persists the append-only action feed. Entries are
// only ever inserted and listed; there is no update or delete path.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries newest first
func (r *ActivityLogRepository) List(ctx context.Context, page, pageSize int) ([]domain.ActivityLogEntry, int64, error) {
	var entries []domain.ActivityLogEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ActivityLogEntry{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&entries).Error
	return entries, total, err
}

// ListByUser returns a single user's actions, newest first
func (r *ActivityLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ActivityLogEntry, error) {
	var entries []domain.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// ListSince returns entries created after a point in time, oldest first
func (r *ActivityLogRepository) ListSince(ctx context.Context, since time.Time) ([]domain.ActivityLogEntry, error) {
	var entries []domain.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
