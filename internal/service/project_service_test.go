package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newProjectService(db *gorm.DB) *service.ProjectService {
	logger := zap.NewNop()
	return service.NewProjectService(
		repository.NewProjectRepository(db),
		repository.NewDealRepository(db),
		repository.NewTaskRepository(db),
		repository.NewUserRepository(db),
		repository.NewActivityLogRepository(db),
		repository.NewNotificationRepository(db),
		logger,
	)
}

func TestProjectService_Update_WebStages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProjectService(db)
	owner := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)

	t.Run("known stages are accepted", func(t *testing.T) {
		updated, err := svc.Update(ctx, actor, owner.Name, project.ID, &domain.UpdateProjectRequest{
			WebStagesDone: []string{"requirements", "design"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"requirements", "design"}, updated.WebStagesDone)
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, actor, owner.Name, project.ID, &domain.UpdateProjectRequest{
			WebStagesDone: []string{"requirements", "deploy-to-mars"},
		})
		assert.ErrorIs(t, err, service.ErrInvalidWebStage)
	})
}

func TestProjectService_Update_Ownership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProjectService(db)
	owner := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	other := testutil.CreateTestUser(t, db, "Nour", domain.RoleProjectManager, domain.ScopeAll)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
	require.NoError(t, db.Model(project).Update("project_manager_id", owner.ID).Error)

	t.Run("someone else's project is off limits", func(t *testing.T) {
		name := "Renamed"
		_, err := svc.Update(ctx, testutil.ActorFor(other), other.Name, project.ID, &domain.UpdateProjectRequest{
			Name: &name,
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		_, err = svc.UpdateStatus(ctx, testutil.ActorFor(other), other.Name, project.ID, domain.ProjectStatusCompleted)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("project managers hold no delete verb", func(t *testing.T) {
		err := svc.Delete(ctx, testutil.ActorFor(owner), owner.Name, project.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestProjectService_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProjectService(db)
	owner := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("completion prompts when the deal is still open", func(t *testing.T) {
		deal := testutil.CreateTestDeal(t, db, owner, domain.DealStatusNegotiation)
		project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, &deal.ID)

		result, err := svc.UpdateStatus(ctx, actor, owner.Name, project.ID, domain.ProjectStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusCompleted, result.Project.Status)
		require.NotNil(t, result.Sync)
		assert.True(t, result.Sync.Prompt)
		assert.Equal(t, "deal", result.Sync.EntityType)
		require.NotNil(t, result.Sync.EntityID)
		assert.Equal(t, deal.ID, *result.Sync.EntityID)
	})

	t.Run("no prompt when the deal is already closed", func(t *testing.T) {
		for _, status := range []domain.DealStatus{domain.DealStatusWon, domain.DealStatusLost} {
			deal := testutil.CreateTestDeal(t, db, owner, status)
			project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, &deal.ID)

			result, err := svc.UpdateStatus(ctx, actor, owner.Name, project.ID, domain.ProjectStatusCompleted)
			require.NoError(t, err)
			assert.Nil(t, result.Sync, "status %s", status)
		}
	})

	t.Run("no prompt without a linked deal", func(t *testing.T) {
		project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
		result, err := svc.UpdateStatus(ctx, actor, owner.Name, project.ID, domain.ProjectStatusCompleted)
		require.NoError(t, err)
		assert.Nil(t, result.Sync)
	})

	t.Run("invalid status", func(t *testing.T) {
		project := testutil.CreateTestProject(t, db, domain.ProjectStatusPlanning, nil)
		_, err := svc.UpdateStatus(ctx, actor, owner.Name, project.ID, domain.ProjectStatus("cancelled"))
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestProjectService_CreateFollowUpTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newProjectService(db)
	owner := testutil.CreateTestUser(t, db, "Karim", domain.RoleProjectManager, domain.ScopeAll)
	actor := testutil.ActorFor(owner)
	ctx := context.Background()

	t.Run("requires a completed project", func(t *testing.T) {
		project := testutil.CreateTestProject(t, db, domain.ProjectStatusInProgress, nil)
		_, err := svc.CreateFollowUpTask(ctx, actor, owner.Name, project.ID, &domain.CreateFollowUpTaskRequest{})
		assert.ErrorIs(t, err, service.ErrProjectNotCompleted)
	})

	t.Run("defaults to the project manager", func(t *testing.T) {
		project := testutil.CreateTestProject(t, db, domain.ProjectStatusCompleted, nil)
		require.NoError(t, db.Model(project).Update("project_manager_id", owner.ID).Error)

		task, err := svc.CreateFollowUpTask(ctx, actor, owner.Name, project.ID, &domain.CreateFollowUpTaskRequest{})
		require.NoError(t, err)
		assert.Contains(t, task.Title, project.ClientName)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		require.NotNil(t, task.AssigneeID)
		assert.Equal(t, owner.ID, *task.AssigneeID)
		assert.NotNil(t, task.DueDate)
	})

	t.Run("explicit title and assignee win", func(t *testing.T) {
		project := testutil.CreateTestProject(t, db, domain.ProjectStatusCompleted, nil)
		assignee := testutil.CreateTestUser(t, db, "Sara", domain.RoleSales, domain.ScopeAll)

		task, err := svc.CreateFollowUpTask(ctx, actor, owner.Name, project.ID, &domain.CreateFollowUpTaskRequest{
			Title:      "Quarterly review call",
			AssigneeID: &assignee.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Quarterly review call", task.Title)
		assert.Equal(t, assignee.ID, *task.AssigneeID)
	})
}
