package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadFilters contains all filter options for listing leads
type LeadFilters struct {
	Status        *domain.LeadStatus
	Source        *domain.LeadSource
	OwnerID       *uuid.UUID
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Stale         *bool
	SearchQuery   *string
}

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyScopeFilter(ctx, query)
	if err := query.First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lead).Error
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Lead{}, "id = ?", id).Error
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int, filters *LeadFilters) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("last_activity_at DESC").Offset(offset).Limit(pageSize).Find(&leads).Error
	return leads, total, err
}

// ListAll returns every visible lead without paging, for bootstrap loads
func (r *LeadRepository) ListAll(ctx context.Context) ([]domain.Lead, error) {
	var leads []domain.Lead
	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	err := query.Order("last_activity_at DESC").Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) applyFilters(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.Stale != nil {
		cutoff := time.Now().Add(-domain.StaleLeadThreshold)
		nonTerminal := []domain.LeadStatus{
			domain.LeadStatusNew, domain.LeadStatusContacted, domain.LeadStatusQualified,
		}
		if *filters.Stale {
			query = query.Where("status IN ? AND last_activity_at < ?", nonTerminal, cutoff)
		} else {
			query = query.Where("status NOT IN ? OR last_activity_at >= ?", nonTerminal, cutoff)
		}
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + *filters.SearchQuery + "%"
		query = query.Where(
			"company_name ILIKE ? OR contact_person ILIKE ? OR email ILIKE ?",
			search, search, search,
		)
	}
	return query
}

// ListStale returns non-terminal leads idle since before the cutoff.
// No scope filter; the sweep job runs for all regions.
func (r *LeadRepository) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.db.WithContext(ctx).
		Where("status IN ? AND last_activity_at < ?", []domain.LeadStatus{
			domain.LeadStatusNew, domain.LeadStatusContacted, domain.LeadStatusQualified,
		}, cutoff).
		Order("last_activity_at ASC").
		Find(&leads).Error
	return leads, err
}

// TouchActivity bumps the idle clock after any interaction with the lead
func (r *LeadRepository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Lead{}).
		Where("id = ?", id).
		Update("last_activity_at", at).Error
}

// MarkConverted finalizes a lead inside the conversion transaction
func (r *LeadRepository) MarkConverted(ctx context.Context, tx *gorm.DB, id, dealID uuid.UUID) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Model(&domain.Lead{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            domain.LeadStatusConverted,
			"converted_deal_id": dealID,
			"last_activity_at":  time.Now(),
		}).Error
}

// CountByStatus returns lead counts keyed by status for the dashboard
func (r *LeadRepository) CountByStatus(ctx context.Context) (map[domain.LeadStatus]int64, error) {
	type row struct {
		Status domain.LeadStatus
		Count  int64
	}
	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select("status, COUNT(*) as count").
		Group("status")
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.LeadStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
