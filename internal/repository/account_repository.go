package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(account).Error
}

// CreateTx creates an account inside an existing transaction
func (r *AccountRepository) CreateTx(ctx context.Context, tx *gorm.DB, account *domain.Account) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(account).Error
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyScopeFilter(ctx, query)
	if err := query.First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetBySourceLead returns the account created from a lead, if any.
// Used to keep lead conversion idempotent.
func (r *AccountRepository) GetBySourceLead(ctx context.Context, leadID uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).Where("source_lead_id = ?", leadID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(account).Error
}

func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Account{}, "id = ?", id).Error
}

func (r *AccountRepository) List(ctx context.Context, page, pageSize int, search string) ([]domain.Account, int64, error) {
	var accounts []domain.Account
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Account{})
	query = ApplyScopeFilter(ctx, query)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR contact_person ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&accounts).Error
	return accounts, total, err
}

// ListAll returns every visible account without paging, for bootstrap loads
func (r *AccountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	query := r.db.WithContext(ctx).Model(&domain.Account{})
	query = ApplyScopeFilter(ctx, query)
	err := query.Order("name ASC").Find(&accounts).Error
	return accounts, err
}
