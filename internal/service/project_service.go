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

// ProjectService handles project delivery business logic
type ProjectService struct {
	projectRepo      *repository.ProjectRepository
	dealRepo         *repository.DealRepository
	taskRepo         *repository.TaskRepository
	userRepo         *repository.UserRepository
	activityLogRepo  *repository.ActivityLogRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	dealRepo *repository.DealRepository,
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	activityLogRepo *repository.ActivityLogRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:      projectRepo,
		dealRepo:         dealRepo,
		taskRepo:         taskRepo,
		userRepo:         userRepo,
		activityLogRepo:  activityLogRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *ProjectService) logAction(ctx context.Context, actor domain.Actor, actorName, action string, entityID uuid.UUID) {
	entry := &domain.ActivityLogEntry{
		UserID:     actor.ID,
		UserName:   actorName,
		Action:     action,
		EntityType: "project",
		EntityID:   &entityID,
	}
	if err := s.activityLogRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write activity log entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// validateWebStages checks every stage name against the known checklist
func validateWebStages(stages []string) error {
	for _, stage := range stages {
		known := false
		for _, valid := range domain.WebStages {
			if stage == valid {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %q", ErrInvalidWebStage, stage)
		}
	}
	return nil
}

// Create creates a project, usually one not born from a won deal
func (s *ProjectService) Create(ctx context.Context, actor domain.Actor, actorName string, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceProjects) {
		return nil, ErrPermissionDenied
	}
	scope, err := scopeForCreate(actor, req.Scope)
	if err != nil {
		return nil, err
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = domain.ProjectTypeGeneral
	}
	if !projectType.IsValid() {
		return nil, fmt.Errorf("%w: invalid project type %q", ErrInvalidInput, projectType)
	}

	if req.DealID != nil {
		if existing, err := s.projectRepo.GetByDealID(ctx, *req.DealID); err == nil && existing != nil {
			return nil, ErrDealHasProject
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check deal project: %w", err)
		}
		if _, err := s.dealRepo.GetByID(ctx, *req.DealID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: deal not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve deal: %w", err)
		}
	}

	var managerName string
	if req.ProjectManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *req.ProjectManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: project manager not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve project manager: %w", err)
		}
		managerName = manager.Name
	}

	project := &domain.Project{
		Name:              req.Name,
		ClientName:        req.ClientName,
		DealID:            req.DealID,
		Status:            domain.ProjectStatusPlanning,
		ProjectType:       projectType,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Services:          req.Services,
		ProjectManagerID:  req.ProjectManagerID,
		ManagerName:       managerName,
		MarketingPlatform: req.MarketingPlatform,
		MarketingBudget:   req.MarketingBudget,
		MarketingDuration: req.MarketingDuration,
		Scope:             scope,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if req.ProjectManagerID != nil {
		s.notify(ctx, *req.ProjectManagerID, domain.NotificationTypeProjectCreated, "Project created",
			fmt.Sprintf("You manage the new project %q", project.Name), "project", project.ID)
	}
	s.logAction(ctx, actor, actorName, fmt.Sprintf("created project %q", project.Name), project.ID)

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// GetByID returns a project with its task tree
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// List returns a paginated, filtered page of projects
func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters *repository.ProjectFilters) (*domain.PaginatedResponse[domain.ProjectDTO], error) {
	projects, total, err := s.projectRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	resp := domain.NewPaginatedResponse(mapper.ToProjectDTOs(projects), total, page, pageSize)
	return &resp, nil
}

// Update applies a partial update to a project. Web stage updates are
// validated against the known checklist, marketing fields apply to any
// project type but only render for marketing projects.
func (s *ProjectService) Update(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.ensureProjectMutable(ctx, actor, project); err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.ClientName != nil {
		project.ClientName = *req.ClientName
	}
	if req.ProjectType != nil {
		if !req.ProjectType.IsValid() {
			return nil, fmt.Errorf("%w: invalid project type %q", ErrInvalidInput, *req.ProjectType)
		}
		project.ProjectType = *req.ProjectType
	}
	if req.StartDate != nil {
		project.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.Services != nil {
		project.Services = req.Services
	}
	if req.ProjectManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *req.ProjectManagerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: project manager not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve project manager: %w", err)
		}
		project.ProjectManagerID = &manager.ID
		project.ManagerName = manager.Name
	}
	if req.WebStagesDone != nil {
		if err := validateWebStages(req.WebStagesDone); err != nil {
			return nil, err
		}
		project.WebStagesDone = req.WebStagesDone
	}
	if req.MarketingPlatform != nil {
		project.MarketingPlatform = *req.MarketingPlatform
	}
	if req.MarketingBudget != nil {
		project.MarketingBudget = *req.MarketingBudget
	}
	if req.MarketingDuration != nil {
		project.MarketingDuration = *req.MarketingDuration
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("updated project %q", project.Name), project.ID)

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// UpdateStatus updates a project's delivery state. When a completed
// project is linked to a deal that is still open, the response carries an
// advisory sync prompt instead of mutating the deal.
func (s *ProjectService) UpdateStatus(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, status domain.ProjectStatus) (*domain.ProjectStatusResultDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid project status %q", ErrInvalidInput, status)
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.ensureProjectMutable(ctx, actor, project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateStatus(ctx, project.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	project.Status = status

	result := &domain.ProjectStatusResultDTO{Project: mapper.ToProjectDTO(project)}

	if status == domain.ProjectStatusCompleted && project.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *project.DealID)
		if err == nil && !deal.Status.IsClosed() {
			result.Sync = &domain.SyncPromptDTO{
				Prompt:     true,
				EntityType: "deal",
				EntityID:   &deal.ID,
				Message:    fmt.Sprintf("Deal %q is still %s, close it as won or lost", deal.Title, deal.Status),
			}
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to check linked deal status",
				zap.String("project_id", project.ID.String()),
				zap.Error(err))
		}
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("moved project %q to %s", project.Name, status), project.ID)
	return result, nil
}

// CreateFollowUpTask spawns a follow-up task on a completed project
func (s *ProjectService) CreateFollowUpTask(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID, req *domain.CreateFollowUpTaskRequest) (*domain.TaskDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.ensureProjectMutable(ctx, actor, project); err != nil {
		return nil, err
	}
	if project.Status != domain.ProjectStatusCompleted {
		return nil, ErrProjectNotCompleted
	}

	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Follow up with %s", project.ClientName)
	}
	dueDate := req.DueDate
	if dueDate == nil {
		d := time.Now().AddDate(0, 0, 14)
		dueDate = &d
	}
	assigneeID := req.AssigneeID
	if assigneeID == nil {
		assigneeID = project.ProjectManagerID
	}

	task := &domain.Task{
		ProjectID:  project.ID,
		Title:      title,
		Status:     domain.TaskStatusTodo,
		Priority:   domain.TaskPriorityMedium,
		AssigneeID: assigneeID,
		DueDate:    dueDate,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create follow-up task: %w", err)
	}

	if assigneeID != nil {
		s.notify(ctx, *assigneeID, domain.NotificationTypeTaskAssigned, "Task assigned",
			fmt.Sprintf("Follow-up task on project %q", project.Name), "task", task.ID)
	}
	s.logAction(ctx, actor, actorName, fmt.Sprintf("created a follow-up task on project %q", project.Name), project.ID)

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// Delete removes a project and, through the schema, its tasks
func (s *ProjectService) Delete(ctx context.Context, actor domain.Actor, actorName string, id uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.ensureProjectDeletable(ctx, actor, project); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logAction(ctx, actor, actorName, fmt.Sprintf("deleted project %q", project.Name), project.ID)
	return nil
}

// ensureProjectMutable treats the project manager as the record owner.
// Unassigned projects are open to any role the matrix lets update
// projects.
func (s *ProjectService) ensureProjectMutable(ctx context.Context, actor domain.Actor, project *domain.Project) error {
	if err := ensureVisible(actor, project.Scope); err != nil {
		return err
	}
	if project.ProjectManagerID == nil {
		if !domain.CanUpdate(actor.Role, domain.ResourceProjects) {
			return ErrPermissionDenied
		}
		return nil
	}
	if !domain.CanMutateRecord(actor, domain.ResourceProjects, *project.ProjectManagerID, s.ownerGroup(ctx, *project.ProjectManagerID)) {
		return ErrPermissionDenied
	}
	return nil
}

// ensureProjectDeletable is ensureProjectMutable with the delete verb
func (s *ProjectService) ensureProjectDeletable(ctx context.Context, actor domain.Actor, project *domain.Project) error {
	if err := ensureVisible(actor, project.Scope); err != nil {
		return err
	}
	if project.ProjectManagerID == nil {
		if !domain.CanDelete(actor.Role, domain.ResourceProjects) {
			return ErrPermissionDenied
		}
		return nil
	}
	if !domain.CanDeleteRecord(actor, domain.ResourceProjects, *project.ProjectManagerID, s.ownerGroup(ctx, *project.ProjectManagerID)) {
		return ErrPermissionDenied
	}
	return nil
}

func (s *ProjectService) ownerGroup(ctx context.Context, ownerID uuid.UUID) *uuid.UUID {
	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil
	}
	return owner.GroupID
}

func (s *ProjectService) notify(ctx context.Context, userID uuid.UUID, nType domain.NotificationType, title, message, entityType string, entityID uuid.UUID) {
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
