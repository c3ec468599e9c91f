package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/service"
)

type GroupHandler struct {
	groupService *service.GroupService
	logger       *zap.Logger
}

func NewGroupHandler(groupService *service.GroupService, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, logger: logger}
}

// @Summary List groups
// @Description List all sales groups
// @Tags Groups
// @Produce json
// @Success 200 {array} domain.GroupDTO
// @Router /groups [get]
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list groups", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list groups")
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// @Summary Create group
// @Description Create a new sales group
// @Tags Groups
// @Accept json
// @Produce json
// @Param request body domain.CreateGroupRequest true "Group data"
// @Success 201 {object} domain.GroupDTO
// @Router /groups [post]
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	group, err := h.groupService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupManagerRole):
			respondWithError(w, http.StatusUnprocessableEntity, "Group manager must hold the manager or admin role")
		default:
			respondServiceError(w, h.logger, err, "Failed to create group")
		}
		return
	}

	w.Header().Set("Location", "/api/v1/groups/"+group.ID.String())
	respondJSON(w, http.StatusCreated, group)
}

// @Summary Get group
// @Description Get a group by ID with its members
// @Tags Groups
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} domain.GroupDTO
// @Router /groups/{id} [get]
func (h *GroupHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid group ID: must be a valid UUID")
		return
	}

	group, err := h.groupService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get group")
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// @Summary Update group
// @Description Update a group's name, region or manager
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param request body domain.UpdateGroupRequest true "Group data"
// @Success 200 {object} domain.GroupDTO
// @Router /groups/{id} [put]
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid group ID: must be a valid UUID")
		return
	}

	var req domain.UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	group, err := h.groupService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupManagerRole):
			respondWithError(w, http.StatusUnprocessableEntity, "Group manager must hold the manager or admin role")
		default:
			respondServiceError(w, h.logger, err, "Failed to update group")
		}
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// @Summary Delete group
// @Description Delete a group; members become groupless
// @Tags Groups
// @Param id path string true "Group ID"
// @Success 204
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid group ID: must be a valid UUID")
		return
	}

	if err := h.groupService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete group")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
