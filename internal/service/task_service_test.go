package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newTaskService(db *gorm.DB) *service.TaskService {
	logger := zap.NewNop()
	return service.NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewProjectRepository(db),
		repository.NewNotificationRepository(db),
		logger,
	)
}

func TestTaskService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTaskService(db)
	owner := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		task, err := svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: project.ID,
			Title:     "Wireframes",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: uuid.New(),
			Title:     "Orphan",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("one level of subtasks", func(t *testing.T) {
		parent, err := svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: project.ID,
			Title:     "Build site",
		})
		require.NoError(t, err)

		child, err := svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: project.ID,
			ParentID:  &parent.ID,
			Title:     "Landing page",
		})
		require.NoError(t, err)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, parent.ID, *child.ParentID)

		_, err = svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: project.ID,
			ParentID:  &child.ID,
			Title:     "Hero section",
		})
		assert.ErrorIs(t, err, service.ErrTaskNestingTooDeep)
	})

	t.Run("parent must share the project", func(t *testing.T) {
		otherProject := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
		parent, err := svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: otherProject.ID,
			Title:     "Other work",
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, actor, &domain.CreateTaskRequest{
			ProjectID: project.ID,
			ParentID:  &parent.ID,
			Title:     "Misfiled subtask",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestTaskService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTaskService(db)
	owner := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
	ctx := context.Background()

	task, err := svc.Create(ctx, actor, &domain.CreateTaskRequest{
		ProjectID: project.ID,
		Title:     "Wireframes",
	})
	require.NoError(t, err)

	done := domain.TaskStatusDone
	high := domain.TaskPriorityHigh
	updated, err := svc.Update(ctx, actor, task.ID, &domain.UpdateTaskRequest{
		Status:    &done,
		Priority:  &high,
		Checklist: []string{"desktop", "mobile"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, updated.Status)
	assert.Equal(t, domain.TaskPriorityHigh, updated.Priority)
	assert.Equal(t, []string{"desktop", "mobile"}, updated.Checklist)
}
