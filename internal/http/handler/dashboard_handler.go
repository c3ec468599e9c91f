package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

// @Summary Dashboard stats
// @Description Aggregated pipeline, project and invoice figures
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStatsDTO
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
