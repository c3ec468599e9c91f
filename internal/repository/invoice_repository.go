package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceFilters contains all filter options for listing invoices
type InvoiceFilters struct {
	Status       *domain.InvoiceStatus
	DealID       *uuid.UUID
	ProjectID    *uuid.UUID
	IssuedAfter  *time.Time
	IssuedBefore *time.Time
	SearchQuery  *string
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error
}

// CreateTx creates an invoice inside an existing transaction
func (r *InvoiceRepository) CreateTx(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyScopeFilter(ctx, query)
	if err := query.First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByQuoteID returns the invoice drafted from a quote, if any.
// Used to keep quote acceptance idempotent.
func (r *InvoiceRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id).Error
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int, filters *InvoiceFilters) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("issue_date DESC").Offset(offset).Limit(pageSize).Find(&invoices).Error
	return invoices, total, err
}

// ListAll returns every visible invoice without paging, for bootstrap loads
func (r *InvoiceRepository) ListAll(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	err := query.Order("issue_date DESC").Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) applyFilters(query *gorm.DB, filters *InvoiceFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DealID != nil {
		query = query.Where("deal_id = ?", *filters.DealID)
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.IssuedAfter != nil {
		query = query.Where("issue_date >= ?", *filters.IssuedAfter)
	}
	if filters.IssuedBefore != nil {
		query = query.Where("issue_date <= ?", *filters.IssuedBefore)
	}
	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		search := "%" + *filters.SearchQuery + "%"
		query = query.Where("invoice_number ILIKE ? OR client_name ILIKE ?", search, search)
	}
	return query
}

// MarkOverdue flags sent invoices whose due date has passed
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", domain.InvoiceStatusSent, asOf).
		Update("status", domain.InvoiceStatusOverdue)
	return result.RowsAffected, result.Error
}

// UnpaidTotals returns the count and amount of invoices not yet paid
func (r *InvoiceRepository) UnpaidTotals(ctx context.Context) (int64, float64, error) {
	type row struct {
		Count int64
		Sum   float64
	}
	var res row
	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Select("COUNT(*) as count, COALESCE(SUM(amount), 0) as sum").
		Where("status IN ?", []domain.InvoiceStatus{domain.InvoiceStatusSent, domain.InvoiceStatusOverdue})
	query = ApplyScopeFilter(ctx, query)
	query = ApplyOwnershipFilter(ctx, query, "owner_id")
	if err := query.Scan(&res).Error; err != nil {
		return 0, 0, err
	}
	return res.Count, res.Sum, nil
}
