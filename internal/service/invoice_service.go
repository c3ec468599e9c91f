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

// validInvoiceTransitions defines the invoice lifecycle
var validInvoiceTransitions = map[domain.InvoiceStatus][]domain.InvoiceStatus{
	domain.InvoiceStatusDraft:   {domain.InvoiceStatusSent},
	domain.InvoiceStatusSent:    {domain.InvoiceStatusPaid, domain.InvoiceStatusOverdue},
	domain.InvoiceStatusOverdue: {domain.InvoiceStatusPaid},
	domain.InvoiceStatusPaid:    {},
}

func canInvoiceTransition(from, to domain.InvoiceStatus) bool {
	for _, allowed := range validInvoiceTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InvoiceService handles invoice business logic
type InvoiceService struct {
	invoiceRepo     *repository.InvoiceRepository
	dealRepo        *repository.DealRepository
	projectRepo     *repository.ProjectRepository
	userRepo        *repository.UserRepository
	sequenceRepo    *repository.NumberSequenceRepository
	activityLogRepo *repository.ActivityLogRepository
	logger          *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	dealRepo *repository.DealRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	activityLogRepo *repository.ActivityLogRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		dealRepo:        dealRepo,
		projectRepo:     projectRepo,
		userRepo:        userRepo,
		sequenceRepo:    sequenceRepo,
		activityLogRepo: activityLogRepo,
		logger:          logger,
	}
}

func (s *InvoiceService) logAction(ctx context.Context, actor domain.Actor, actorName, action string, entityID uuid.UUID) {
	entry := &domain.ActivityLogEntry{
		UserID:     actor.ID,
		UserName:   actorName,
		Action:     action,
		EntityType: "invoice",
		EntityID:   &entityID,
	}
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write activity log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// Create creates a draft invoice with a generated invoice number
func (s *InvoiceService) Create(ctx context.Context, actor domain.Actor, actorName string, req *domain.CreateInvoiceRequest) (*domain.InvoiceDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceInvoices) {
		return nil, ErrPermissionDenied
	}
	scope, err := scopeForCreate(actor, req.Scope)
	if err != nil {
		return nil, err
	}
	if req.DueDate != nil && req.DueDate.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: dueDate: cannot fall before the issue date", ErrInvalidInput)
	}

	if req.DealID != nil {
		if _, err := s.dealRepo.GetByID(ctx, *req.DealID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: deal not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve deal: %w", err)
		}
	}
	if req.ProjectID != nil {
		if _, err := s.projectRepo.GetByID(ctx, *req.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: project not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve project: %w", err)
		}
	}

	number, err := s.sequenceRepo.Next(ctx, "invoice", "INV")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	invoice := &domain.Invoice{
		InvoiceNumber: number,
		ClientName:    req.ClientName,
		Amount:        req.Amount,
		Status:        domain.InvoiceStatusDraft,
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Description:   req.Description,
		DealID:        req.DealID,
		ProjectID:     req.ProjectID,
		OwnerID:       actor.ID,
		Scope:         scope,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("created invoice %s", invoice.InvoiceNumber), invoice.ID)

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// GetByID returns a single invoice
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// List returns a paginated, filtered page of invoices
func (s *InvoiceService) List(ctx context.Context, page, pageSize int, filters *repository.InvoiceFilters) (*domain.PaginatedResponse[domain.InvoiceDTO], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToInvoiceDTOs(invoices), total, page, pageSize)
	return &resp, nil
}

// Update applies a partial update. Content fields are editable on drafts
// only; status moves follow the invoice lifecycle.
func (s *InvoiceService) Update(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.UpdateInvoiceRequest) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := ensureMutable(actor, domain.ResourceInvoices, invoice.Scope, invoice.OwnerID, s.ownerGroup(ctx, invoice.OwnerID)); err != nil {
		return nil, err
	}

	contentEdit := req.ClientName != nil || req.Amount != nil || req.IssueDate != nil ||
		req.DueDate != nil || req.Description != nil
	if contentEdit && invoice.Status != domain.InvoiceStatusDraft {
		return nil, ErrInvoiceNotDraft
	}

	if req.ClientName != nil {
		invoice.ClientName = *req.ClientName
	}
	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.IssueDate != nil {
		invoice.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}
	if req.Description != nil {
		invoice.Description = *req.Description
	}
	if invoice.DueDate != nil && invoice.DueDate.Before(invoice.IssueDate) {
		return nil, fmt.Errorf("%w: dueDate: cannot fall before the issue date", ErrInvalidInput)
	}
	if req.Status != nil && *req.Status != invoice.Status {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid invoice status %q", ErrInvalidInput, *req.Status)
		}
		if !canInvoiceTransition(invoice.Status, *req.Status) {
			return nil, fmt.Errorf("%w: cannot move invoice from %s to %s", ErrConflict, invoice.Status, *req.Status)
		}
		invoice.Status = *req.Status
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("updated invoice %s", invoice.InvoiceNumber), invoice.ID)

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// Delete removes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := ensureDeletable(actor, domain.ResourceInvoices, invoice.Scope, invoice.OwnerID, s.ownerGroup(ctx, invoice.OwnerID)); err != nil {
		return err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return ErrInvoiceNotDraft
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("deleted invoice %s", invoice.InvoiceNumber), invoice.ID)
	return nil
}

func (s *InvoiceService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}
