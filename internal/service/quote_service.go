package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/mapper"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// validQuoteTransitions defines the quote lifecycle. A client may accept
// on the spot, so drafts can be accepted without passing through sent.
// Accepted, rejected and expired are terminal.
var validQuoteTransitions = map[domain.QuoteStatus][]domain.QuoteStatus{
	domain.QuoteStatusDraft: {
		domain.QuoteStatusSent,
		domain.QuoteStatusAccepted,
	},
	domain.QuoteStatusSent: {
		domain.QuoteStatusAccepted,
		domain.QuoteStatusRejected,
		domain.QuoteStatusExpired,
	},
	domain.QuoteStatusAccepted: {},
	domain.QuoteStatusRejected: {},
	domain.QuoteStatusExpired:  {},
}

func canQuoteTransition(from, to domain.QuoteStatus) bool {
	for _, allowed := range validQuoteTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// QuoteService handles quote business logic
type QuoteService struct {
	quoteRepo       *repository.QuoteRepository
	invoiceRepo     *repository.InvoiceRepository
	dealRepo        *repository.DealRepository
	userRepo        *repository.UserRepository
	sequenceRepo    *repository.NumberSequenceRepository
	activityLogRepo *repository.ActivityLogRepository
	db              *gorm.DB
	logger          *zap.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	invoiceRepo *repository.InvoiceRepository,
	dealRepo *repository.DealRepository,
	userRepo *repository.UserRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	activityLogRepo *repository.ActivityLogRepository,
	db *gorm.DB,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:       quoteRepo,
		invoiceRepo:     invoiceRepo,
		dealRepo:        dealRepo,
		userRepo:        userRepo,
		sequenceRepo:    sequenceRepo,
		activityLogRepo: activityLogRepo,
		db:              db,
		logger:          logger,
	}
}

func (s *QuoteService) logAction(ctx context.Context, actor domain.Actor, actorName, action string, entityID uuid.UUID) {
	entry := &domain.ActivityLogEntry{
		UserID:     actor.ID,
		UserName:   actorName,
		Action:     action,
		EntityType: "quote",
		EntityID:   &entityID,
	}
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write activity log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// computeTotals derives subtotal and total from line items. The total is
// not clamped: a discount larger than the subtotal yields a negative
// total the client is expected to surface.
func computeTotals(items []domain.QuoteItem, discount, taxPercent float64) (subtotal, total float64) {
	for i := range items {
		subtotal += items[i].LineTotal()
	}
	discounted := subtotal - discount
	total = discounted + discounted*taxPercent/100
	return subtotal, total
}

func buildQuoteItems(reqs []domain.QuoteItemRequest) []domain.QuoteItem {
	items := make([]domain.QuoteItem, 0, len(reqs))
	for i, item := range reqs {
		items = append(items, domain.QuoteItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Position:    i,
		})
	}
	return items
}

// Create creates a draft quote with a generated quote number
func (s *QuoteService) Create(ctx context.Context, actor domain.Actor, actorName string, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceQuotes) {
		return nil, ErrPermissionDenied
	}
	scope, err := scopeForCreate(actor, req.Scope)
	if err != nil {
		return nil, err
	}

	if req.DealID != nil {
		if _, err := s.dealRepo.GetByID(ctx, *req.DealID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: deal not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve deal: %w", err)
		}
	}

	number, err := s.sequenceRepo.Next(ctx, "quote", "Q")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate quote number: %w", err)
	}

	items := buildQuoteItems(req.Items)
	subtotal, total := computeTotals(items, req.Discount, req.TaxPercent)

	quote := &domain.Quote{
		QuoteNumber: number,
		ClientName:  req.ClientName,
		DealID:      req.DealID,
		Status:      domain.QuoteStatusDraft,
		IssueDate:   req.IssueDate,
		ExpiryDate:  req.ExpiryDate,
		Items:       items,
		Terms:       req.Terms,
		Subtotal:    subtotal,
		Discount:    req.Discount,
		TaxPercent:  req.TaxPercent,
		Total:       total,
		OwnerID:     actor.ID,
		Scope:       scope,
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("created quote %s", quote.QuoteNumber), quote.ID)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetByID returns a quote with its line items
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns a paginated, filtered page of quotes
func (s *QuoteService) List(ctx context.Context, page, pageSize int, filters *repository.QuoteFilters) (*domain.PaginatedResponse[domain.QuoteDTO], error) {
	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToQuoteDTOs(quotes), total, page, pageSize)
	return &resp, nil
}

// Update edits a draft quote and recomputes its totals. Sent and terminal
// quotes are immutable.
func (s *QuoteService) Update(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := ensureMutable(actor, domain.ResourceQuotes, quote.Scope, quote.OwnerID, s.ownerGroup(ctx, quote.OwnerID)); err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, ErrQuoteNotEditable
	}

	if req.ClientName != nil {
		quote.ClientName = *req.ClientName
	}
	if req.IssueDate != nil {
		quote.IssueDate = *req.IssueDate
	}
	if req.ExpiryDate != nil {
		quote.ExpiryDate = req.ExpiryDate
	}
	if req.Terms != nil {
		quote.Terms = *req.Terms
	}
	if req.Discount != nil {
		quote.Discount = *req.Discount
	}
	if req.TaxPercent != nil {
		quote.TaxPercent = *req.TaxPercent
	}
	if req.Items != nil {
		items := buildQuoteItems(req.Items)
		if err := s.quoteRepo.ReplaceItems(ctx, quote.ID, items); err != nil {
			return nil, fmt.Errorf("failed to replace quote items: %w", err)
		}
		quote.Items = items
	}

	quote.Subtotal, quote.Total = computeTotals(quote.Items, quote.Discount, quote.TaxPercent)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("updated quote %s", quote.QuoteNumber), quote.ID)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// UpdateStatus moves a quote through its lifecycle. Accepting a quote
// creates exactly one draft invoice for it; re-accepting returns the
// quote unchanged rather than a second invoice.
func (s *QuoteService) UpdateStatus(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, status domain.QuoteStatus) (*domain.QuoteDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid quote status %q", ErrInvalidInput, status)
	}

	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := ensureMutable(actor, domain.ResourceQuotes, quote.Scope, quote.OwnerID, s.ownerGroup(ctx, quote.OwnerID)); err != nil {
		return nil, err
	}
	if quote.Status == status {
		dto := mapper.ToQuoteDTO(quote)
		return &dto, nil
	}
	if !canQuoteTransition(quote.Status, status) {
		return nil, fmt.Errorf("%w: cannot move quote from %s to %s", ErrConflict, quote.Status, status)
	}

	if status == domain.QuoteStatusAccepted {
		if err := s.acceptQuote(ctx, quote); err != nil {
			return nil, err
		}
	} else {
		if err := s.quoteRepo.UpdateStatus(ctx, nil, quote.ID, status); err != nil {
			return nil, fmt.Errorf("failed to update quote status: %w", err)
		}
	}
	quote.Status = status

	s.logAction(ctx, actor, actorName, fmt.Sprintf("marked quote %s %s", quote.QuoteNumber, status), quote.ID)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// acceptQuote flips the status and creates the draft invoice in one
// transaction
func (s *QuoteService) acceptQuote(ctx context.Context, quote *domain.Quote) error {
	// A prior accept may already have produced the invoice
	existing, err := s.invoiceRepo.GetByQuoteID(ctx, quote.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for existing invoice: %w", err)
	}
	if existing != nil {
		return s.quoteRepo.UpdateStatus(ctx, nil, quote.ID, domain.QuoteStatusAccepted)
	}

	number, err := s.sequenceRepo.Next(ctx, "invoice", "INV")
	if err != nil {
		return fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	// The draft is issued on acceptance, payable net 30
	issueDate := time.Now()
	dueDate := issueDate.AddDate(0, 0, 30)
	invoice := &domain.Invoice{
		InvoiceNumber: number,
		ClientName:    quote.ClientName,
		Amount:        quote.Total,
		Status:        domain.InvoiceStatusDraft,
		IssueDate:     issueDate,
		DueDate:       &dueDate,
		Description:   fmt.Sprintf("Invoice for quote %s", quote.QuoteNumber),
		DealID:        quote.DealID,
		QuoteID:       &quote.ID,
		OwnerID:       quote.OwnerID,
		Scope:         quote.Scope,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quoteRepo.UpdateStatus(ctx, tx, quote.ID, domain.QuoteStatusAccepted); err != nil {
			return fmt.Errorf("failed to update quote status: %w", err)
		}
		if err := s.invoiceRepo.CreateTx(ctx, tx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice draft: %w", err)
		}
		return nil
	})
}

// Delete removes a draft quote and its items
func (s *QuoteService) Delete(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID) error {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get quote: %w", err)
	}

	if err := ensureDeletable(actor, domain.ResourceQuotes, quote.Scope, quote.OwnerID, s.ownerGroup(ctx, quote.OwnerID)); err != nil {
		return err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return ErrQuoteNotEditable
	}

	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("deleted quote %s", quote.QuoteNumber), quote.ID)
	return nil
}

func (s *QuoteService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}
