package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/service"
)

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	logger          *zap.Logger
}

func NewScheduleHandler(scheduleService *service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, logger: logger}
}

// @Summary Meeting slots
// @Description Hourly slots for a working day with booked ones marked
// @Tags Schedule
// @Produce json
// @Param day query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {array} domain.ScheduleSlotDTO
// @Router /schedule/slots [get]
func (h *ScheduleHandler) Slots(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if d := r.URL.Query().Get("day"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid day: expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	slots, err := h.scheduleService.Slots(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to build schedule slots", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load schedule")
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

// @Summary Scheduled meetings
// @Description Deals with meetings booked in a date range
// @Tags Schedule
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {array} domain.DealDTO
// @Router /schedule/meetings [get]
func (h *ScheduleHandler) Meetings(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid from date: expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid to date: expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		respondWithError(w, http.StatusBadRequest, "Range end must not precede range start")
		return
	}

	meetings, err := h.scheduleService.Meetings(r.Context(), from, to.AddDate(0, 0, 1))
	if err != nil {
		h.logger.Error("failed to list meetings", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list meetings")
		return
	}
	respondJSON(w, http.StatusOK, meetings)
}
