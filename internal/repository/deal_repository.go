package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealFilters contains all filter options for listing deals
type DealFilters struct {
	Status        *domain.DealStatus
	OwnerID       *uuid.UUID
	AccountID     *uuid.UUID
	Source        *domain.LeadSource
	MinValue      *float64
	MaxValue      *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	IsOpen        *bool
	SearchQuery   *string
}

// DealSortOption represents available sort options
type DealSortOption string

const (
	DealSortByCreatedDesc DealSortOption = "created_desc"
	DealSortByCreatedAsc  DealSortOption = "created_asc"
	DealSortByValueDesc   DealSortOption = "value_desc"
	DealSortByValueAsc    DealSortOption = "value_asc"
	DealSortByUpdatedDesc DealSortOption = "updated_desc"
	DealSortByUpdatedAsc  DealSortOption = "updated_asc"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

// CreateTx creates a deal inside an existing transaction
func (r *DealRepository) CreateTx(ctx context.Context, tx *gorm.DB, deal *domain.Deal) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	query := r.db.WithContext(ctx).Preload("Account").Where("id = ?", id)
	query = ApplyScopeFilter(ctx, query)
	if err := query.First(&deal).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// GetBySourceLead returns the deal created from a lead, if any.
// Used to keep lead conversion idempotent.
func (r *DealRepository) GetBySourceLead(ctx context.Context, leadID uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).Where("source_lead_id = ?", leadID).First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(deal).Error
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Deal{}, "id = ?", id).Error
}

func (r *DealRepository) List(ctx context.Context, page, pageSize int, filters *DealFilters, sortBy DealSortOption) ([]domain.Deal, int64, error) {
	var deals []domain.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Deal{}).Preload("Account")
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&deals).Error
	return deals, total, err
}

// ListAll returns every visible deal without paging, for bootstrap and
// board loads
func (r *DealRepository) ListAll(ctx context.Context) ([]domain.Deal, error) {
	var deals []domain.Deal
	query := r.db.WithContext(ctx).Model(&domain.Deal{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	err := query.Order("updated_at DESC").Find(&deals).Error
	return deals, err
}

// GetByStatus returns all deals in a pipeline stage
func (r *DealRepository) GetByStatus(ctx context.Context, status domain.DealStatus) ([]domain.Deal, error) {
	var deals []domain.Deal
	query := r.db.WithContext(ctx).Where("status = ?", status)
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	err := query.Order("value DESC").Find(&deals).Error
	return deals, err
}

func (r *DealRepository) applyFilters(query *gorm.DB, filters *DealFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.AccountID != nil {
		query = query.Where("account_id = ?", *filters.AccountID)
	}
	if filters.Source != nil {
		query = query.Where("source = ?", *filters.Source)
	}
	if filters.MinValue != nil {
		query = query.Where("value >= ?", *filters.MinValue)
	}
	if filters.MaxValue != nil {
		query = query.Where("value <= ?", *filters.MaxValue)
	}
	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}
	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}
	if filters.IsOpen != nil {
		closed := []domain.DealStatus{domain.DealStatusWon, domain.DealStatusLost}
		if *filters.IsOpen {
			query = query.Where("status NOT IN ?", closed)
		} else {
			query = query.Where("status IN ?", closed)
		}
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + *filters.SearchQuery + "%"
		query = query.Where("title ILIKE ? OR company_name ILIKE ?", search, search)
	}
	return query
}

func (r *DealRepository) applySorting(query *gorm.DB, sortBy DealSortOption) *gorm.DB {
	switch sortBy {
	case DealSortByCreatedAsc:
		return query.Order("created_at ASC")
	case DealSortByCreatedDesc:
		return query.Order("created_at DESC")
	case DealSortByValueAsc:
		return query.Order("value ASC")
	case DealSortByValueDesc:
		return query.Order("value DESC")
	case DealSortByUpdatedAsc:
		return query.Order("updated_at ASC")
	default:
		return query.Order("updated_at DESC")
	}
}

// UpdateStatus moves a deal to a new pipeline stage
func (r *DealRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DealStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkAsWon closes a deal as won inside the given transaction
func (r *DealRepository) MarkAsWon(ctx context.Context, tx *gorm.DB, id uuid.UUID, closeDate time.Time) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	pending := domain.PaymentStatusPending
	return db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            domain.DealStatusWon,
			"actual_close_date": closeDate,
			"payment_status":    pending,
		}).Error
}

// MarkAsLost closes a deal as lost with a categorized reason
func (r *DealRepository) MarkAsLost(ctx context.Context, id uuid.UUID, reason domain.LostReason, details string, closeDate time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              domain.DealStatusLost,
			"lost_reason":         reason,
			"lost_reason_details": details,
			"actual_close_date":   closeDate,
		}).Error
}

// SetMeeting books a meeting time on a deal
func (r *DealRepository) SetMeeting(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"meeting_at": at,
			"status":     domain.DealStatusMeetingScheduled,
		}).Error
}

// ListMeetingsBetween returns deals with meetings inside a window
func (r *DealRepository) ListMeetingsBetween(ctx context.Context, from, to time.Time) ([]domain.Deal, error) {
	var deals []domain.Deal
	query := r.db.WithContext(ctx).
		Where("meeting_at IS NOT NULL AND meeting_at >= ? AND meeting_at < ?", from, to)
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	err := query.Order("meeting_at ASC").Find(&deals).Error
	return deals, err
}

// CountByStatus returns deal counts keyed by pipeline stage
func (r *DealRepository) CountByStatus(ctx context.Context) (map[domain.DealStatus]int64, error) {
	type row struct {
		Status domain.DealStatus
		Count  int64
	}
	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("status, COUNT(*) as count").
		Group("status")
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.DealStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// SumValueByStatus returns the total deal value per pipeline stage
func (r *DealRepository) SumValueByStatus(ctx context.Context) (map[domain.DealStatus]float64, error) {
	type row struct {
		Status domain.DealStatus
		Sum    float64
	}
	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("status, COALESCE(SUM(value), 0) as sum").
		Group("status")
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	sums := make(map[domain.DealStatus]float64, len(rows))
	for _, r := range rows {
		sums[r.Status] = r.Sum
	}
	return sums, nil
}

// CountLossReasons returns how often each loss reason was recorded
func (r *DealRepository) CountLossReasons(ctx context.Context) (map[domain.LostReason]int64, error) {
	type row struct {
		LostReason domain.LostReason
		Count      int64
	}
	var rows []row
	query := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("lost_reason, COUNT(*) as count").
		Where("status = ? AND lost_reason IS NOT NULL", domain.DealStatusLost).
		Group("lost_reason")
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.LostReason]int64, len(rows))
	for _, r := range rows {
		counts[r.LostReason] = r.Count
	}
	return counts, nil
}
