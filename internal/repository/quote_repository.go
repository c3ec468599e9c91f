package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteFilters contains all filter options for listing quotes
type QuoteFilters struct {
	Status      *domain.QuoteStatus
	DealID      *uuid.UUID
	SearchQuery *string
}

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create stores a quote together with its line items
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id)
	query = ApplyScopeFilter(ctx, query)
	if err := query.First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// Update saves the quote header; line items are replaced separately
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(quote).Error
}

// ReplaceItems swaps a quote's line items for a new set atomically
func (r *QuoteRepository) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []domain.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.QuoteItem{}, "quote_id = ?", quoteID).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QuoteID = quoteID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(&domain.Quote{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, filters *QuoteFilters) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("issue_date DESC").Offset(offset).Limit(pageSize).Find(&quotes).Error
	return quotes, total, err
}

// ListAll returns every visible quote without paging, for bootstrap loads
func (r *QuoteRepository) ListAll(ctx context.Context) ([]domain.Quote, error) {
	var quotes []domain.Quote
	query := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	err := query.Order("issue_date DESC").Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepository) applyFilters(query *gorm.DB, filters *QuoteFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DealID != nil {
		query = query.Where("deal_id = ?", *filters.DealID)
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + *filters.SearchQuery + "%"
		query = query.Where("quote_number ILIKE ? OR client_name ILIKE ?", search, search)
	}
	return query
}

// UpdateStatus moves a quote to a new lifecycle state inside the given
// transaction
func (r *QuoteRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status domain.QuoteStatus) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ?", id).
		Update("status", status).Error
}
