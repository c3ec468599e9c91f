package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// AccountService handles account business logic
type AccountService struct {
	accountRepo *repository.AccountRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo *repository.AccountRepository, userRepo *repository.UserRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Create creates an account directly, outside the lead conversion flow
func (s *AccountService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateAccountRequest) (*domain.AccountDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceAccounts) {
		return nil, ErrPermissionDenied
	}
	scope, err := scopeForCreate(actor, req.Scope)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Website:       req.Website,
		Industry:      req.Industry,
		Status:        domain.AccountStatusActive,
		OwnerID:       actor.ID,
		Scope:         scope,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

// GetByID returns a single account
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AccountDTO, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

// List returns a paginated page of accounts, optionally filtered by name
func (s *AccountService) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse[domain.AccountDTO], error) {
	accounts, total, err := s.accountRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToAccountDTOs(accounts), total, page, pageSize)
	return &resp, nil
}

// Update applies a partial update to an account
func (s *AccountService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *domain.UpdateAccountRequest) (*domain.AccountDTO, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceAccounts, account.OwnerID, s.ownerGroup(ctx, account.OwnerID)) {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.ContactPerson != nil {
		account.ContactPerson = *req.ContactPerson
	}
	if req.Email != nil {
		account.Email = *req.Email
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.Website != nil {
		account.Website = *req.Website
	}
	if req.Industry != nil {
		account.Industry = *req.Industry
	}
	if req.Status != nil {
		account.Status = *req.Status
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	dto := mapper.ToAccountDTO(account)
	return &dto, nil
}

// Delete removes an account
func (s *AccountService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceAccounts, account.OwnerID, s.ownerGroup(ctx, account.OwnerID)) {
		return ErrPermissionDenied
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *AccountService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}
