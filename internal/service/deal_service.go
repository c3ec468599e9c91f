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

// DealService handles deal pipeline business logic
type DealService struct {
	dealRepo         *repository.DealRepository
	accountRepo      *repository.AccountRepository
	projectRepo      *repository.ProjectRepository
	userRepo         *repository.UserRepository
	historyRepo      *repository.DealStageHistoryRepository
	activityRepo     *repository.ActivityRepository
	activityLogRepo  *repository.ActivityLogRepository
	notificationRepo *repository.NotificationRepository
	db               *gorm.DB
	logger           *zap.Logger
}

// NewDealService creates a new deal service
func NewDealService(
	dealRepo *repository.DealRepository,
	accountRepo *repository.AccountRepository,
	projectRepo *repository.ProjectRepository,
	userRepo *repository.UserRepository,
	historyRepo *repository.DealStageHistoryRepository,
	activityRepo *repository.ActivityRepository,
	activityLogRepo *repository.ActivityLogRepository,
	notificationRepo *repository.NotificationRepository,
	db *gorm.DB,
	logger *zap.Logger,
) *DealService {
	return &DealService{
		dealRepo:         dealRepo,
		accountRepo:      accountRepo,
		projectRepo:      projectRepo,
		userRepo:         userRepo,
		historyRepo:      historyRepo,
		activityRepo:     activityRepo,
		activityLogRepo:  activityLogRepo,
		notificationRepo: notificationRepo,
		db:               db,
		logger:           logger,
	}
}

func (s *DealService) logAction(ctx context.Context, actor domain.Actor, actorName, action string, entityID uuid.UUID) {
	entry := &domain.ActivityLogEntry{
		UserID:     actor.ID,
		UserName:   actorName,
		Action:     action,
		EntityType: "deal",
		EntityID:   &entityID,
	}
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write activity log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// Create creates a new deal at the start of the pipeline
func (s *DealService) Create(ctx context.Context, actor domain.Actor, actorName string, req *domain.CreateDealRequest) (*domain.DealDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceDeals) {
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

	if req.AccountID != nil {
		if _, err := s.accountRepo.GetByID(ctx, *req.AccountID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: account not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve account: %w", err)
		}
	}

	source := req.Source
	if source == "" {
		source = domain.LeadSourceOther
	}

	deal := &domain.Deal{
		Title:         req.Name,
		AccountID:     req.AccountID,
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Value:         req.Value,
		Status:        domain.DealStatusNewOpportunity,
		Source:        source,
		Services:      req.Services,
		Notes:         req.Notes,
		OwnerID:       ownerID,
		OwnerName:     ownerName,
		Scope:         scope,
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	if err := s.historyRepo.RecordTransition(ctx, deal.ID, nil, deal.Status, actor.ID, actorName, "deal created"); err != nil {
		s.logger.Warn("failed to record initial stage", zap.Error(err))
	}
	s.logAction(ctx, actor, actorName, fmt.Sprintf("created deal %q", deal.Title), deal.ID)

	dto := mapper.ToDealDTO(deal, nil)
	return &dto, nil
}

// GetByID returns a single deal with its activity timeline
func (s *DealService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	activities, err := s.activityRepo.ListByTarget(ctx, domain.ActivityTargetDeal, deal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deal activities: %w", err)
	}

	dto := mapper.ToDealDTO(deal, activities)
	return &dto, nil
}

// List returns a paginated, filtered page of deals
func (s *DealService) List(ctx context.Context, page, pageSize int, filters *repository.DealFilters, sortBy repository.DealSortOption) (*domain.PaginatedResponse[domain.DealDTO], error) {
	deals, total, err := s.dealRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToDealDTOs(deals), total, page, pageSize)
	return &resp, nil
}

// Update applies a partial update to a deal. Stage is never changed here.
func (s *DealService) Update(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.UpdateDealRequest) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		deal.Title = *req.Name
	}
	if req.AccountID != nil {
		if _, err := s.accountRepo.GetByID(ctx, *req.AccountID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: account not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve account: %w", err)
		}
		deal.AccountID = req.AccountID
	}
	if req.CompanyName != nil {
		deal.CompanyName = *req.CompanyName
	}
	if req.ContactPerson != nil {
		deal.ContactPerson = *req.ContactPerson
	}
	if req.Email != nil {
		deal.Email = *req.Email
	}
	if req.Phone != nil {
		deal.Phone = *req.Phone
	}
	if req.Value != nil {
		deal.Value = *req.Value
	}
	if req.Source != nil {
		deal.Source = *req.Source
	}
	if req.Services != nil {
		deal.Services = req.Services
	}
	if req.Notes != nil {
		deal.Notes = *req.Notes
	}
	if req.OwnerID != nil && *req.OwnerID != deal.OwnerID {
		owner, err := s.userRepo.GetByID(ctx, *req.OwnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: owner not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve owner: %w", err)
		}
		deal.OwnerID = owner.ID
		deal.OwnerName = owner.Name
	}
	if req.ProjectManagerID != nil {
		deal.ProjectManagerID = req.ProjectManagerID
	}
	if req.PaymentStatus != nil {
		if deal.Status != domain.DealStatusWon {
			return nil, fmt.Errorf("%w: payment status applies to won deals only", ErrInvalidInput)
		}
		deal.PaymentStatus = req.PaymentStatus
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("updated deal %q", deal.Title), deal.ID)

	dto := mapper.ToDealDTO(deal, nil)
	return &dto, nil
}

// UpdateStage moves a deal to another open pipeline stage and records the
// transition. Won and lost go through Win and Lose.
func (s *DealService) UpdateStage(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, toStatus domain.DealStatus) (*domain.DealDTO, error) {
	if !toStatus.IsValid() {
		return nil, fmt.Errorf("%w: invalid deal status %q", ErrInvalidInput, toStatus)
	}
	if toStatus.IsClosed() {
		return nil, fmt.Errorf("%w: closing a deal goes through win or lose", ErrInvalidInput)
	}

	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return nil, ErrPermissionDenied
	}
	if deal.Status.IsClosed() {
		return nil, ErrDealNotOpen
	}
	if deal.Status == toStatus {
		dto := mapper.ToDealDTO(deal, nil)
		return &dto, nil
	}

	fromStatus := deal.Status
	if err := s.dealRepo.UpdateStatus(ctx, deal.ID, toStatus); err != nil {
		return nil, fmt.Errorf("failed to update deal stage: %w", err)
	}
	deal.Status = toStatus

	if err := s.historyRepo.RecordTransition(ctx, deal.ID, &fromStatus, toStatus, actor.ID, actorName, ""); err != nil {
		s.logger.Warn("failed to record stage transition", zap.Error(err))
	}
	s.logAction(ctx, actor, actorName, fmt.Sprintf("moved deal %q to %s", deal.Title, toStatus), deal.ID)

	dto := mapper.ToDealDTO(deal, nil)
	return &dto, nil
}

// Win closes a deal as won and creates its delivery project in the same
// transaction. Any open deal can be won, but the project needs someone
// to run it and something to deliver: a project manager must be resolved
// and the deal must carry at least one service.
func (s *DealService) Win(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.WinDealRequest) (*domain.WinDealResultDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return nil, ErrPermissionDenied
	}
	if deal.Status.IsClosed() {
		return nil, ErrDealNotOpen
	}
	if existing, err := s.projectRepo.GetByDealID(ctx, deal.ID); err == nil && existing != nil {
		return nil, ErrDealHasProject
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing project: %w", err)
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = domain.ProjectTypeGeneral
	}
	if !projectType.IsValid() {
		return nil, fmt.Errorf("%w: invalid project type %q", ErrInvalidInput, projectType)
	}

	projectName := req.ProjectName
	if projectName == "" {
		projectName = deal.Title
	}
	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	managerID := req.ProjectManagerID
	if managerID == nil {
		managerID = deal.ProjectManagerID
	}
	if managerID == nil {
		return nil, fmt.Errorf("%w: projectManagerId: a project manager is required to win a deal", ErrInvalidInput)
	}
	if len(deal.Services) == 0 {
		return nil, fmt.Errorf("%w: services: the deal needs at least one service to deliver", ErrInvalidInput)
	}
	manager, err := s.userRepo.GetByID(ctx, *managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project manager not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to resolve project manager: %w", err)
	}
	managerName := manager.Name

	closeDate := time.Now()
	project := &domain.Project{
		Name:             projectName,
		ClientName:       deal.CompanyName,
		DealID:           &deal.ID,
		Status:           domain.ProjectStatusPlanning,
		ProjectType:      projectType,
		StartDate:        startDate,
		Services:         deal.Services,
		ProjectManagerID: managerID,
		ManagerName:      managerName,
		Scope:            deal.Scope,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.dealRepo.MarkAsWon(ctx, tx, deal.ID, closeDate); err != nil {
			return fmt.Errorf("failed to mark deal won: %w", err)
		}
		if err := s.projectRepo.CreateTx(ctx, tx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fromStatus := deal.Status
	deal.Status = domain.DealStatusWon
	deal.ActualCloseDate = &closeDate
	pending := domain.PaymentStatusPending
	deal.PaymentStatus = &pending

	if err := s.historyRepo.RecordTransition(ctx, deal.ID, &fromStatus, domain.DealStatusWon, actor.ID, actorName, ""); err != nil {
		s.logger.Warn("failed to record stage transition", zap.Error(err))
	}
	s.notify(ctx, deal.OwnerID, domain.NotificationTypeDealWon, "Deal won",
		fmt.Sprintf("%q was closed as won", deal.Title), "deal", deal.ID)
	s.notify(ctx, *managerID, domain.NotificationTypeProjectCreated, "Project created",
		fmt.Sprintf("You manage the new project %q", project.Name), "project", project.ID)
	metrics.DealClosedCounter.WithLabelValues("won").Inc()
	s.logAction(ctx, actor, actorName, fmt.Sprintf("won deal %q", deal.Title), deal.ID)

	dealDTO := mapper.ToDealDTO(deal, nil)
	projectDTO := mapper.ToProjectDTO(project)
	return &domain.WinDealResultDTO{Deal: dealDTO, Project: projectDTO}, nil
}

// Lose closes a deal as lost. A categorized reason is mandatory, and
// free-text details are required when the reason is other.
func (s *DealService) Lose(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.LoseDealRequest) (*domain.DealDTO, error) {
	if req.Reason == "" {
		return nil, ErrLossReasonRequired
	}
	if !req.Reason.IsValid() {
		return nil, fmt.Errorf("%w: invalid loss reason %q", ErrInvalidInput, req.Reason)
	}
	if req.Reason == domain.LostReasonOther && req.Details == "" {
		return nil, ErrLossDetailsRequired
	}

	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return nil, ErrPermissionDenied
	}
	if deal.Status.IsClosed() {
		return nil, ErrDealNotOpen
	}

	closeDate := time.Now()
	if err := s.dealRepo.MarkAsLost(ctx, deal.ID, req.Reason, req.Details, closeDate); err != nil {
		return nil, fmt.Errorf("failed to mark deal lost: %w", err)
	}

	fromStatus := deal.Status
	deal.Status = domain.DealStatusLost
	deal.LostReason = &req.Reason
	deal.LostReasonDetails = req.Details
	deal.ActualCloseDate = &closeDate

	if err := s.historyRepo.RecordTransition(ctx, deal.ID, &fromStatus, domain.DealStatusLost, actor.ID, actorName, string(req.Reason)); err != nil {
		s.logger.Warn("failed to record stage transition", zap.Error(err))
	}
	s.notify(ctx, deal.OwnerID, domain.NotificationTypeDealLost, "Deal lost",
		fmt.Sprintf("%q was closed as lost (%s)", deal.Title, req.Reason), "deal", deal.ID)
	metrics.DealClosedCounter.WithLabelValues("lost").Inc()
	s.logAction(ctx, actor, actorName, fmt.Sprintf("lost deal %q", deal.Title), deal.ID)

	dto := mapper.ToDealDTO(deal, nil)
	return &dto, nil
}

// ScheduleMeeting books a meeting on a deal and moves it to the meeting
// stage when it is still at the start of the pipeline
func (s *DealService) ScheduleMeeting(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.ScheduleMeetingRequest) (*domain.DealDTO, error) {
	if req.At.Before(time.Now()) {
		return nil, ErrMeetingInPast
	}

	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if !domain.CanMutateRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return nil, ErrPermissionDenied
	}
	if deal.Status.IsClosed() {
		return nil, ErrDealNotOpen
	}

	fromStatus := deal.Status
	if err := s.dealRepo.SetMeeting(ctx, deal.ID, req.At); err != nil {
		return nil, fmt.Errorf("failed to schedule meeting: %w", err)
	}
	at := req.At
	deal.MeetingAt = &at
	if fromStatus == domain.DealStatusNewOpportunity {
		deal.Status = domain.DealStatusMeetingScheduled
		if err := s.historyRepo.RecordTransition(ctx, deal.ID, &fromStatus, deal.Status, actor.ID, actorName, "meeting scheduled"); err != nil {
			s.logger.Warn("failed to record stage transition", zap.Error(err))
		}
	}

	s.notify(ctx, deal.OwnerID, domain.NotificationTypeMeetingBooked, "Meeting booked",
		fmt.Sprintf("Meeting on %q at %s", deal.Title, req.At.Format("2006-01-02 15:04")), "deal", deal.ID)
	s.logAction(ctx, actor, actorName, fmt.Sprintf("scheduled a meeting on deal %q", deal.Title), deal.ID)

	dto := mapper.ToDealDTO(deal, nil)
	return &dto, nil
}

// GetStageHistory returns the recorded pipeline transitions of a deal
func (s *DealService) GetStageHistory(ctx context.Context, id uuid.UUID) ([]domain.DealStageHistoryDTO, error) {
	if _, err := s.dealRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	history, err := s.historyRepo.GetByDealID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage history: %w", err)
	}
	return mapper.ToDealStageHistoryDTOs(history), nil
}

// AddActivity appends an interaction to a deal's timeline
func (s *DealService) AddActivity(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	activity := &domain.Activity{
		TargetType: domain.ActivityTargetDeal,
		TargetID:   deal.ID,
		Type:       req.Type,
		Content:    req.Content,
		UserID:     actor.ID,
		UserName:   actorName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// Delete removes a deal, its history and activities
func (s *DealService) Delete(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID) error {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get deal: %w", err)
	}

	if !domain.CanDeleteRecord(actor, domain.ResourceDeals, deal.OwnerID, s.ownerGroup(ctx, deal.OwnerID)) {
		return ErrPermissionDenied
	}

	if err := s.historyRepo.DeleteByDealID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete stage history: %w", err)
	}
	if err := s.activityRepo.DeleteByTarget(ctx, domain.ActivityTargetDeal, id); err != nil {
		return fmt.Errorf("failed to delete deal activities: %w", err)
	}
	if err := s.dealRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("deleted deal %q", deal.Title), deal.ID)
	return nil
}

func (s *DealService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}

func (s *DealService) notify(ctx context.Context, userID uuid.UUID, nType domain.NotificationType, title, message, entityType string, entityID uuid.UUID) {
	notification := &domain.Notification{
		UserID:     userID,
		Type:       nType,
		Title:      title,
		Message:    message,
		EntityType: entityType,
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification",
			zap.String("type", string(nType)),
			zap.Error(err))
	}
}
