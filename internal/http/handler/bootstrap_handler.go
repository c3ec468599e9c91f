package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/service"
)

type BootstrapHandler struct {
	bootstrapService *service.BootstrapService
	logger           *zap.Logger
}

func NewBootstrapHandler(bootstrapService *service.BootstrapService, logger *zap.Logger) *BootstrapHandler {
	return &BootstrapHandler{bootstrapService: bootstrapService, logger: logger}
}

// @Summary Bootstrap
// @Description Load everything a client needs to render after login
// @Tags Bootstrap
// @Produce json
// @Success 200 {object} domain.BootstrapDTO
// @Router /bootstrap [get]
func (h *BootstrapHandler) Load(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	data, err := h.bootstrapService.Load(r.Context(), user.Actor())
	if err != nil {
		h.logger.Error("failed to load bootstrap payload", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load application data")
		return
	}
	respondJSON(w, http.StatusOK, data)
}
