package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilters contains all filter options for listing projects
type ProjectFilters struct {
	Status           *domain.ProjectStatus
	ProjectType      *domain.ProjectType
	ProjectManagerID *uuid.UUID
	DealID           *uuid.UUID
	StartedAfter     *time.Time
	StartedBefore    *time.Time
	SearchQuery      *string
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// CreateTx creates a project inside an existing transaction
func (r *ProjectRepository) CreateTx(ctx context.Context, tx *gorm.DB, project *domain.Project) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id)
	query = ApplyScopeFilter(ctx, query)
	if err := query.First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByDealID returns the project spawned from a deal, if any
func (r *ProjectRepository) GetByDealID(ctx context.Context, dealID uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Where("deal_id = ?", dealID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, "id = ?", id).Error
}

func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, filters *ProjectFilters) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Project{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyProjectOwnershipFilter(ctx, query)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("updated_at DESC").Offset(offset).Limit(pageSize).Find(&projects).Error
	return projects, total, err
}

// ListAll returns every visible project without paging, for bootstrap loads
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	query := r.db.WithContext(ctx).Model(&domain.Project{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyProjectOwnershipFilter(ctx, query)
	err := query.Order("updated_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) applyFilters(query *gorm.DB, filters *ProjectFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ProjectType != nil {
		query = query.Where("project_type = ?", *filters.ProjectType)
	}
	if filters.ProjectManagerID != nil {
		query = query.Where("project_manager_id = ?", *filters.ProjectManagerID)
	}
	if filters.DealID != nil {
		query = query.Where("deal_id = ?", *filters.DealID)
	}
	if filters.StartedAfter != nil {
		query = query.Where("start_date >= ?", *filters.StartedAfter)
	}
	if filters.StartedBefore != nil {
		query = query.Where("start_date <= ?", *filters.StartedBefore)
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + *filters.SearchQuery + "%"
		query = query.Where("name ILIKE ? OR client_name ILIKE ?", search, search)
	}
	return query
}

// UpdateStatus moves a project to a new delivery state
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountActive returns the number of projects currently in delivery
func (r *ProjectRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("status IN ?", []domain.ProjectStatus{
			domain.ProjectStatusPlanning, domain.ProjectStatusInProgress,
		})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyProjectOwnershipFilter(ctx, query)
	err := query.Count(&count).Error
	return count, err
}
