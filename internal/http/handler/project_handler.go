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
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, logger: logger}
}

// @Summary List projects
// @Description List projects with optional filters
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by project type"
// @Param managerId query string false "Filter by project manager ID"
// @Param q query string false "Search by name or client"
// @Success 200 {object} domain.PaginatedResponse[domain.ProjectDTO]
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.ProjectFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.ProjectStatus(s)
		filters.Status = &status
	}
	if t := r.URL.Query().Get("type"); t != "" {
		pt := domain.ProjectType(t)
		filters.ProjectType = &pt
	}
	if m := r.URL.Query().Get("managerId"); m != "" {
		if id, err := uuid.Parse(m); err == nil {
			filters.ProjectManagerID = &id
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	result, err := h.projectService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create project
// @Description Create a project, optionally linked to a won deal
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	project, err := h.projectService.Create(r.Context(), user.Actor(), user.Name, &req)
	if err != nil {
		if errors.Is(err, service.ErrDealHasProject) {
			respondWithError(w, http.StatusConflict, "Deal already has a project")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// @Summary Get project
// @Description Get a project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// @Summary Update project
// @Description Update a project's details and web stage checklist
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	project, err := h.projectService.Update(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWebStage) {
			respondWithError(w, http.StatusBadRequest, "Unknown web stage in checklist")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to update project")
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// @Summary Update project status
// @Description Change a project's status; completion may prompt a deal sync
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectStatusRequest true "New status"
// @Success 200 {object} domain.ProjectStatusResultDTO
// @Router /projects/{id}/status [put]
func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.UpdateProjectStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	result, err := h.projectService.UpdateStatus(r.Context(), user.Actor(), user.Name, id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update project status")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create follow-up task
// @Description Create a client follow-up task for a completed project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.CreateFollowUpTaskRequest false "Task overrides"
// @Success 201 {object} domain.TaskDTO
// @Router /projects/{id}/follow-up [post]
func (h *ProjectHandler) CreateFollowUpTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	var req domain.CreateFollowUpTaskRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	user := auth.MustFromContext(r.Context())
	task, err := h.projectService.CreateFollowUpTask(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotCompleted) {
			respondWithError(w, http.StatusConflict, "Project must be completed first")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to create follow-up task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// @Summary Delete project
// @Description Delete a project and its tasks
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.projectService.Delete(r.Context(), user.Actor(), user.Name, id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete project")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
