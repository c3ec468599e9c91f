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

// TaskService handles task business logic
type TaskService struct {
	taskRepo         *repository.TaskRepository
	projectRepo      *repository.ProjectRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:         taskRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create creates a task or a subtask. Subtasks nest exactly one level.
func (s *TaskService) Create(ctx context.Context, actor domain.Actor, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	if !domain.CanCreate(actor.Role, domain.ResourceTasks) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project not found", ErrInvalidInput)
		}
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}

	if req.ParentID != nil {
		parent, err := s.taskRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: parent task not found", ErrInvalidInput)
			}
			return nil, fmt.Errorf("failed to resolve parent task: %w", err)
		}
		if parent.ParentID != nil {
			return nil, ErrTaskNestingTooDeep
		}
		if parent.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: parent task belongs to another project", ErrInvalidInput)
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	task := &domain.Task{
		ProjectID:  req.ProjectID,
		ParentID:   req.ParentID,
		Title:      req.Title,
		Details:    req.Details,
		Status:     domain.TaskStatusTodo,
		Priority:   priority,
		AssigneeID: req.AssigneeID,
		StartDate:  req.StartDate,
		DueDate:    req.DueDate,
		Checklist:  req.Checklist,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssigneeID != nil && *task.AssigneeID != actor.ID {
		s.notifyAssignee(ctx, task)
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// GetByID returns a task with its subtasks
func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// ListByProject returns the top-level tasks of a project with subtasks
func (s *TaskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TaskDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return mapper.ToTaskDTOs(tasks), nil
}

// ListByAssignee returns the tasks assigned to a user, soonest due first
func (s *TaskService) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]domain.TaskDTO, error) {
	tasks, err := s.taskRepo.ListByAssignee(ctx, assigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return mapper.ToTaskDTOs(tasks), nil
}

// Update applies a partial update to a task
func (s *TaskService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	previousAssignee := task.AssigneeID
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Details != nil {
		task.Details = *req.Details
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid task status %q", ErrInvalidInput, *req.Status)
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		task.AssigneeID = req.AssigneeID
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Checklist != nil {
		task.Checklist = req.Checklist
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	reassigned := task.AssigneeID != nil && *task.AssigneeID != actor.ID &&
		(previousAssignee == nil || *previousAssignee != *task.AssigneeID)
	if reassigned {
		s.notifyAssignee(ctx, task)
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// Delete removes a task and its subtasks
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) notifyAssignee(ctx context.Context, task *domain.Task) {
	notification := &domain.Notification{
		UserID:     *task.AssigneeID,
		Type:       domain.NotificationTypeTaskAssigned,
		Title:      "Task assigned to you",
		Message:    fmt.Sprintf("You were assigned %q", task.Title),
		EntityType: "task",
		EntityID:   &task.ID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create task notification",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
	}
}
