package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/uistate"
)

type UIStateHandler struct {
	store  *uistate.Store
	logger *zap.Logger
}

func NewUIStateHandler(store *uistate.Store, logger *zap.Logger) *UIStateHandler {
	return &UIStateHandler{store: store, logger: logger}
}

// @Summary Get UI state
// @Description Load the session's saved UI state
// @Tags UIState
// @Produce json
// @Success 200 {object} uistate.State
// @Router /ui-state [get]
func (h *UIStateHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	state, err := h.store.Load(r.Context(), user.SessionToken)
	if err != nil {
		if errors.Is(err, uistate.ErrNotSet) {
			respondJSON(w, http.StatusOK, &uistate.State{})
			return
		}
		h.logger.Error("failed to load ui state", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load UI state")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// @Summary Save UI state
// @Description Save the session's UI state
// @Tags UIState
// @Accept json
// @Param request body uistate.State true "UI state"
// @Success 204
// @Router /ui-state [put]
func (h *UIStateHandler) Save(w http.ResponseWriter, r *http.Request) {
	var state uistate.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.store.Save(r.Context(), user.SessionToken, &state); err != nil {
		h.logger.Error("failed to save ui state", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to save UI state")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Clear UI state
// @Description Drop the session's saved UI state
// @Tags UIState
// @Success 204
// @Router /ui-state [delete]
func (h *UIStateHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if err := h.store.Clear(r.Context(), user.SessionToken); err != nil {
		h.logger.Error("failed to clear ui state", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to clear UI state")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Set navigation filter
// @Description Stash a one-shot navigation target for the next view load
// @Tags UIState
// @Accept json
// @Param request body uistate.NavigationFilter true "Navigation target"
// @Success 204
// @Router /ui-state/navigation [put]
func (h *UIStateHandler) SetNavigation(w http.ResponseWriter, r *http.Request) {
	var filter uistate.NavigationFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if filter.View == "" {
		respondWithError(w, http.StatusBadRequest, "View is required")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.store.SetNavigationFilter(r.Context(), user.SessionToken, &filter); err != nil {
		h.logger.Error("failed to set navigation filter", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to set navigation filter")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Consume navigation filter
// @Description Pop the pending navigation target; reading clears it
// @Tags UIState
// @Produce json
// @Success 200 {object} uistate.NavigationFilter
// @Success 204 "No pending navigation"
// @Router /ui-state/navigation [post]
func (h *UIStateHandler) ConsumeNavigation(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	filter, err := h.store.ConsumeNavigationFilter(r.Context(), user.SessionToken)
	if err != nil {
		if errors.Is(err, uistate.ErrNotSet) {
			respondJSON(w, http.StatusNoContent, nil)
			return
		}
		h.logger.Error("failed to consume navigation filter", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to consume navigation filter")
		return
	}
	respondJSON(w, http.StatusOK, filter)
}
