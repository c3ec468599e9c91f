package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(group).Error
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).Preload("Members").Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) Update(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(group).Error
}

// Delete removes a group inside the given transaction. Members must be
// detached first so no user is left pointing at a dead group.
func (r *GroupRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Delete(&domain.Group{}, "id = ?", id).Error
}

func (r *GroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := r.db.WithContext(ctx).Preload("Members").Order("name ASC").Find(&groups).Error
	return groups, err
}
