package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

// @Summary List tasks
// @Description List tasks for a project or an assignee
// @Tags Tasks
// @Produce json
// @Param projectId query string false "Project ID"
// @Param assigneeId query string false "Assignee ID"
// @Success 200 {array} domain.TaskDTO
// @Router /tasks [get]
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Query().Get("projectId"); p != "" {
		projectID, err := uuid.Parse(p)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
			return
		}
		tasks, err := h.taskService.ListByProject(r.Context(), projectID)
		if err != nil {
			respondServiceError(w, h.logger, err, "Failed to list tasks")
			return
		}
		respondJSON(w, http.StatusOK, tasks)
		return
	}

	if a := r.URL.Query().Get("assigneeId"); a != "" {
		assigneeID, err := uuid.Parse(a)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid assignee ID: must be a valid UUID")
			return
		}
		tasks, err := h.taskService.ListByAssignee(r.Context(), assigneeID)
		if err != nil {
			respondServiceError(w, h.logger, err, "Failed to list tasks")
			return
		}
		respondJSON(w, http.StatusOK, tasks)
		return
	}

	// Default to the caller's own tasks.
	user := auth.MustFromContext(r.Context())
	tasks, err := h.taskService.ListByAssignee(r.Context(), user.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list tasks")
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// @Summary Create task
// @Description Create a task within a project, optionally nested under a parent
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.CreateTaskRequest true "Task data"
// @Success 201 {object} domain.TaskDTO
// @Router /tasks [post]
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	task, err := h.taskService.Create(r.Context(), user.Actor(), &req)
	if err != nil {
		if errors.Is(err, service.ErrTaskNestingTooDeep) {
			respondWithError(w, http.StatusBadRequest, "Subtasks cannot have their own subtasks")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to create task")
		return
	}

	w.Header().Set("Location", "/api/v1/tasks/"+task.ID.String())
	respondJSON(w, http.StatusCreated, task)
}

// @Summary Get task
// @Description Get a task by ID with its subtasks
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// @Summary Update task
// @Description Update a task's details, status or assignee
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body domain.UpdateTaskRequest true "Task data"
// @Success 200 {object} domain.TaskDTO
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	task, err := h.taskService.Update(r.Context(), user.Actor(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// @Summary Delete task
// @Description Delete a task and its subtasks
// @Tags Tasks
// @Param id path string true "Task ID"
// @Success 204
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	if err := h.taskService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete task")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
