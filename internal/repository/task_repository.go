package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/saqrcrm/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Subtasks").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete removes a task and its direct subtasks
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.Task{}, "parent_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Task{}, "id = ?", id).Error
	})
}

// ListByProject returns a project's top-level tasks with subtasks preloaded.
// Tasks carry no owner of their own, so visibility chains through the
// parent project.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	query := r.db.WithContext(ctx).
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("project_id = ? AND parent_id IS NULL", projectID)
	if OwnershipRestricted(ctx) {
		visible := r.db.WithContext(ctx).Session(&gorm.Session{NewDB: true}).
			Model(&domain.Project{}).
			Select("id")
		visible = ApplyProjectOwnershipFilter(ctx, visible)
		query = query.Where("project_id IN (?)", visible)
	}
	err := query.Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

// ListByAssignee returns tasks assigned to a user across projects
func (r *TaskRepository) ListByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("assignee_id = ?", assigneeID).
		Order("due_date ASC NULLS LAST, created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateStatus moves a task to a new completion state
func (r *TaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}
