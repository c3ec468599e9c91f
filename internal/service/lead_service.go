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
	"github.com/saqrcrm/sales-api/internal/metrics"
	"github.com/saqrcrm/sales-api/internal/repository"
)

// LeadService handles lead business logic
type LeadService struct {
	leadRepo         *repository.LeadRepository
	accountRepo      *repository.AccountRepository
	dealRepo         *repository.DealRepository
	userRepo         *repository.UserRepository
	activityRepo     *repository.ActivityRepository
	activityLogRepo  *repository.ActivityLogRepository
	notificationRepo *repository.NotificationRepository
	db               *gorm.DB
	logger           *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadRepo *repository.LeadRepository,
	accountRepo *repository.AccountRepository,
	dealRepo *repository.DealRepository,
	userRepo *repository.UserRepository,
	activityRepo *repository.ActivityRepository,
	activityLogRepo *repository.ActivityLogRepository,
	notificationRepo *repository.NotificationRepository,
	db *gorm.DB,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:         leadRepo,
		accountRepo:      accountRepo,
		dealRepo:         dealRepo,
		userRepo:         userRepo,
		activityRepo:     activityRepo,
		activityLogRepo:  activityLogRepo,
		notificationRepo: notificationRepo,
		db:               db,
		logger:           logger,
	}
}

// logAction writes an activity log entry best-effort. Failures are logged
// and never surfaced to the caller.
func (s *LeadService) logAction(ctx context.Context, actor domain.Actor, actorName, avatar, action string, entityID uuid.UUID) {
	entry := &domain.ActivityLogEntry{
		UserID:     actor.ID,
		UserName:   actorName,
		UserAvatar: avatar,
		Action:     action,
		EntityType: "lead",
		EntityID:   &entityID,
	}
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write activity log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// Create creates a new lead owned by the actor or an explicit owner
func (s *LeadService) Create(ctx context.Context, actor domain.Actor, actorName string, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceLeads) {
		return nil, ErrPermissionDenied
	}
	scope, err := scopeForCreate(actor, req.Scope)
	if err != nil {
		return nil, err
	}

	ownerID := actor.ID
	ownerName := actorName
	if req.OwnerID != nil && *req.OwnerID != actor.ID {
		owner, err := s.userRepo.GetByID(ctx, *req.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: owner not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve owner: %w", err)
		}
		ownerID = owner.ID
		ownerName = owner.Name
	}

	source := req.Source
	if source == "" {
		source = domain.LeadSourceOther
	}

	lead := &domain.Lead{
		CompanyName:    req.CompanyName,
		ContactPerson:  req.ContactPerson,
		Email:          req.Email,
		Phone:          req.Phone,
		Source:         source,
		Status:         domain.LeadStatusNew,
		Services:       req.Services,
		Notes:          req.Notes,
		OwnerID:        ownerID,
		OwnerName:      ownerName,
		Scope:          scope,
		LastActivityAt: time.Now(),
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	if ownerID != actor.ID {
		s.notifyAssignment(ctx, lead, ownerID)
	}
	s.logAction(ctx, actor, actorName, "", fmt.Sprintf("created lead %q", lead.CompanyName), lead.ID)

	dto := mapper.ToLeadDTO(lead, nil)
	return &dto, nil
}

// GetByID returns a single lead with its activity timeline
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	activities, err := s.activityRepo.ListByTarget(ctx, domain.ActivityTargetLead, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead activities: %w", err)
	}

	dto := mapper.ToLeadDTO(lead, activities)
	return &dto, nil
}

// List returns a paginated, filtered page of leads
func (s *LeadService) List(ctx context.Context, page, pageSize int, filters *repository.LeadFilters) (*domain.PaginatedResponse[domain.LeadDTO], error) {
	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToLeadDTOs(leads), total, page, pageSize)
	return &resp, nil
}

// Update applies a partial update to a lead and refreshes its activity clock
func (s *LeadService) Update(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceLeads, lead.OwnerID, s.ownerGroup(ctx, lead.OwnerID)) {
		return nil, ErrPermissionDenied
	}

	previousOwner := lead.OwnerID
	if req.CompanyName != nil {
		lead.CompanyName = *req.CompanyName
	}
	if req.ContactPerson != nil {
		lead.ContactPerson = *req.ContactPerson
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Services != nil {
		lead.Services = req.Services
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.OwnerID != nil && *req.OwnerID != lead.OwnerID {
		owner, err := s.userRepo.GetByID(ctx, *req.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: owner not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve owner: %w", err)
		}
		lead.OwnerID = owner.ID
		lead.OwnerName = owner.Name
	}
	lead.LastActivityAt = time.Now()

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	if lead.OwnerID != previousOwner {
		s.notifyAssignment(ctx, lead, lead.OwnerID)
	}
	s.logAction(ctx, actor, actorName, "", fmt.Sprintf("updated lead %q", lead.CompanyName), lead.ID)

	dto := mapper.ToLeadDTO(lead, nil)
	return &dto, nil
}

// UpdateStatus moves a lead along its lifecycle. Converted leads are
// frozen, dismissed ones may be picked back up, and dismissing a lead
// requires a reason. Conversion goes through Convert, never through a raw
// status change.
func (s *LeadService) UpdateStatus(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.UpdateLeadStatusRequest) (*domain.LeadDTO, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid lead status %q", ErrInvalidInput, req.Status)
	}
	if req.Status == domain.LeadStatusConverted {
		return nil, fmt.Errorf("%w: leads are converted through the convert operation", ErrInvalidInput)
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceLeads, lead.OwnerID, s.ownerGroup(ctx, lead.OwnerID)) {
		return nil, ErrPermissionDenied
	}
	if lead.Status == domain.LeadStatusConverted {
		return nil, ErrLeadAlreadyClosed
	}
	if req.Status == domain.LeadStatusNotInterested && req.Reason == "" {
		return nil, ErrDismissReasonNeeded
	}

	lead.Status = req.Status
	if req.Status == domain.LeadStatusNotInterested {
		lead.NotInterestedReason = req.Reason
	} else {
		lead.NotInterestedReason = ""
	}
	lead.LastActivityAt = time.Now()

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}

	s.logAction(ctx, actor, actorName, "", fmt.Sprintf("moved lead %q to %s", lead.CompanyName, lead.Status), lead.ID)

	dto := mapper.ToLeadDTO(lead, nil)
	return &dto, nil
}

// Convert turns a qualified lead into an account and a deal in one
// transaction. Converting an already converted lead returns the existing
// records rather than failing.
func (s *LeadService) Convert(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.ConvertLeadRequest) (*domain.ConvertLeadResultDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceLeads, lead.OwnerID, s.ownerGroup(ctx, lead.OwnerID)) {
		return nil, ErrPermissionDenied
	}

	// Repeated conversion is idempotent: return what the first one made
	if lead.Status == domain.LeadStatusConverted {
		return s.existingConversion(ctx, lead)
	}
	if lead.Status != domain.LeadStatusQualified {
		return nil, ErrLeadNotQualified
	}

	accountName := req.AccountName
	if accountName == "" {
		accountName = lead.CompanyName
	}
	dealTitle := req.DealTitle
	if dealTitle == "" {
		dealTitle = lead.CompanyName
	}

	account := &domain.Account{
		Name:          accountName,
		ContactPerson: lead.ContactPerson,
		Email:         lead.Email,
		Phone:         lead.Phone,
		Status:        domain.AccountStatusActive,
		OwnerID:       lead.OwnerID,
		Scope:         lead.Scope,
		SourceLeadID:  &lead.ID,
	}
	deal := &domain.Deal{
		Title:         dealTitle,
		CompanyName:   lead.CompanyName,
		ContactPerson: lead.ContactPerson,
		Email:         lead.Email,
		Phone:         lead.Phone,
		Value:         req.DealValue,
		Status:        domain.DealStatusNewOpportunity,
		Source:        lead.Source,
		Services:      lead.Services,
		Notes:         lead.Notes,
		OwnerID:       lead.OwnerID,
		OwnerName:     lead.OwnerName,
		Scope:         lead.Scope,
		SourceLeadID:  &lead.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.CreateTx(ctx, tx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		deal.AccountID = &account.ID
		if err := s.dealRepo.CreateTx(ctx, tx, deal); err != nil {
			return fmt.Errorf("failed to create deal: %w", err)
		}
		if err := s.leadRepo.MarkConverted(ctx, tx, lead.ID, deal.ID); err != nil {
			return fmt.Errorf("failed to mark lead converted: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lead.Status = domain.LeadStatusConverted
	lead.ConvertedDealID = &deal.ID
	lead.LastActivityAt = time.Now()

	metrics.LeadConversionCounter.Inc()
	s.notifyConversion(ctx, lead, deal)
	s.logAction(ctx, actor, actorName, "", fmt.Sprintf("converted lead %q", lead.CompanyName), lead.ID)

	leadDTO := mapper.ToLeadDTO(lead, nil)
	accountDTO := mapper.ToAccountDTO(account)
	dealDTO := mapper.ToDealDTO(deal, nil)
	return &domain.ConvertLeadResultDTO{
		Lead:    leadDTO,
		Account: accountDTO,
		Deal:    dealDTO,
	}, nil
}

// existingConversion reassembles the result of a prior conversion
func (s *LeadService) existingConversion(ctx context.Context, lead *domain.Lead) (*domain.ConvertLeadResultDTO, error) {
	result := &domain.ConvertLeadResultDTO{Lead: mapper.ToLeadDTO(lead, nil)}

	account, err := s.accountRepo.GetBySourceLead(ctx, lead.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load converted account: %w", err)
	}
	if account != nil {
		result.Account = mapper.ToAccountDTO(account)
	}

	deal, err := s.dealRepo.GetBySourceLead(ctx, lead.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load converted deal: %w", err)
	}
	if deal != nil {
		result.Deal = mapper.ToDealDTO(deal, nil)
	}
	return result, nil
}

// Delete removes a lead and its activities
func (s *LeadService) Delete(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID) error {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get lead: %w", err)
	}

	if !domain.CanDeleteRecord(actor, domain.ResourceLeads, lead.OwnerID, s.ownerGroup(ctx, lead.OwnerID)) {
		return ErrPermissionDenied
	}

	if err := s.activityRepo.DeleteByTarget(ctx, domain.ActivityTargetLead, id); err != nil {
		return fmt.Errorf("failed to delete lead activities: %w", err)
	}
	if err := s.leadRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	s.logAction(ctx, actor, actorName, "", fmt.Sprintf("deleted lead %q", lead.CompanyName), lead.ID)
	return nil
}

// AddActivity appends an interaction to a lead's timeline and refreshes
// its activity clock
func (s *LeadService) AddActivity(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	activity := &domain.Activity{
		TargetType: domain.ActivityTargetLead,
		TargetID:   lead.ID,
		Type:       req.Type,
		Content:    req.Content,
		UserID:     actor.ID,
		UserName:   actorName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	if err := s.leadRepo.TouchActivity(ctx, lead.ID, time.Now()); err != nil {
		s.logger.Warn("failed to touch lead activity clock",
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err))
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// ownerGroup resolves the group of a record owner for manager checks
func (s *LeadService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}

func (s *LeadService) notifyAssignment(ctx context.Context, lead *domain.Lead, ownerID uuid.UUID) {
	notification := &domain.Notification{
		UserID:     ownerID,
		Type:       domain.NotificationTypeLeadAssigned,
		Title:      "Lead assigned to you",
		Message:    fmt.Sprintf("You are now the owner of %q", lead.CompanyName),
		EntityType: "lead",
		EntityID:   &lead.ID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create assignment notification",
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err))
	}
}

func (s *LeadService) notifyConversion(ctx context.Context, lead *domain.Lead, deal *domain.Deal) {
	notification := &domain.Notification{
		UserID:     lead.OwnerID,
		Type:       domain.NotificationTypeLeadConverted,
		Title:      "Lead converted",
		Message:    fmt.Sprintf("%q became the deal %q", lead.CompanyName, deal.Title),
		EntityType: "deal",
		EntityID:   &deal.ID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create conversion notification",
			zap.String("lead_id", lead.ID.String()),
			zap.Error(err))
	}
}
