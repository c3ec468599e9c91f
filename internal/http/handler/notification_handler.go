package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

// @Summary List notifications
// @Description List the caller's notifications, newest first
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param unread query bool false "Only unread notifications"
// @Param type query string false "Filter by notification type"
// @Success 200 {object} domain.PaginatedResponse[domain.NotificationDTO]
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	unreadOnly := false
	if u := r.URL.Query().Get("unread"); u != "" {
		if v, err := strconv.ParseBool(u); err == nil {
			unreadOnly = v
		}
	}

	user := auth.MustFromContext(r.Context())
	result, err := h.notificationService.List(r.Context(), user.UserID, page, pageSize, unreadOnly, r.URL.Query().Get("type"))
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Unread count
// @Description Get the caller's unread notification count
// @Tags Notifications
// @Produce json
// @Success 200 {object} domain.UnreadCountDTO
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	count, err := h.notificationService.UnreadCount(r.Context(), user.UserID)
	if err != nil {
		h.logger.Error("failed to count unread notifications", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to count notifications")
		return
	}
	respondJSON(w, http.StatusOK, count)
}

// @Summary Mark notification read
// @Description Mark one of the caller's notifications as read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.notificationService.MarkRead(r.Context(), user.UserID, id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to mark notification read")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Mark all read
// @Description Mark all of the caller's notifications as read
// @Tags Notifications
// @Success 204
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if err := h.notificationService.MarkAllRead(r.Context(), user.UserID); err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
