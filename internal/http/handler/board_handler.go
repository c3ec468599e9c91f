package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/board"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/service"
)

type BoardHandler struct {
	boardService *service.BoardService
	logger       *zap.Logger
}

func NewBoardHandler(boardService *service.BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{boardService: boardService, logger: logger}
}

// @Summary Kanban board
// @Description Get the deal pipeline grouped by stage, in board order
// @Tags Board
// @Produce json
// @Success 200 {object} map[string][]domain.DealDTO
// @Router /board [get]
func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	columns, err := h.boardService.View(r.Context())
	if err != nil {
		h.logger.Error("failed to build board view", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load board")
		return
	}
	respondJSON(w, http.StatusOK, columns)
}

// @Summary Move card
// @Description Move a deal card to another column and position on the board
// @Tags Board
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.MoveDealRequest true "Target column and position"
// @Success 200 {object} domain.DealDTO
// @Router /board/cards/{id}/move [post]
func (h *BoardHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.MoveDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	deal, err := h.boardService.Move(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, board.ErrCardNotFound):
			respondWithError(w, http.StatusNotFound, "Card is not on the board")
		case errors.Is(err, service.ErrDealNotOpen):
			respondWithError(w, http.StatusConflict, "Deal is already closed")
		default:
			respondServiceError(w, h.logger, err, "Failed to move card")
		}
		return
	}
	respondJSON(w, http.StatusOK, deal)
}
