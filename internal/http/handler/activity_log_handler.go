package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/service"
)

type ActivityLogHandler struct {
	activityLogService *service.ActivityLogService
	logger             *zap.Logger
}

func NewActivityLogHandler(activityLogService *service.ActivityLogService, logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{activityLogService: activityLogService, logger: logger}
}

// @Summary Activity log
// @Description List recorded user actions, newest first
// @Tags ActivityLog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse[domain.ActivityLogEntryDTO]
// @Router /activity-log [get]
func (h *ActivityLogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.activityLogService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list activity log", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activity log")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary User activity log
// @Description List one user's recent actions
// @Tags ActivityLog
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Max entries" default(20)
// @Success 200 {array} domain.ActivityLogEntryDTO
// @Router /activity-log/users/{id} [get]
func (h *ActivityLogHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	limit := queryInt(r, "limit", 20)
	entries, err := h.activityLogService.ListByUser(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("failed to list user activity", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list user activity")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
