package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/service"
)

type AssistantHandler struct {
	assistantService *service.AssistantService
	logger           *zap.Logger
}

func NewAssistantHandler(assistantService *service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService, logger: logger}
}

type assistantResponse struct {
	Text string `json:"text"`
}

// @Summary Summarize
// @Description Summarize a record's notes and activity into a short brief
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body domain.SummarizeRequest true "Content to summarize"
// @Success 200 {object} assistantResponse
// @Router /assistant/summarize [post]
func (h *AssistantHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req domain.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	text, err := h.assistantService.Summarize(r.Context(), &req)
	if err != nil {
		h.respondAssistantError(w, err, "Failed to summarize")
		return
	}
	respondJSON(w, http.StatusOK, assistantResponse{Text: text})
}

// @Summary Draft email
// @Description Draft a client email from instructions and optional context
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body domain.DraftEmailRequest true "Email instructions"
// @Success 200 {object} assistantResponse
// @Router /assistant/draft-email [post]
func (h *AssistantHandler) DraftEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.DraftEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	text, err := h.assistantService.DraftEmail(r.Context(), &req)
	if err != nil {
		h.respondAssistantError(w, err, "Failed to draft email")
		return
	}
	respondJSON(w, http.StatusOK, assistantResponse{Text: text})
}

// @Summary Chat
// @Description Converse with the sales assistant
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body domain.ChatRequest true "Conversation"
// @Success 200 {object} assistantResponse
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	text, err := h.assistantService.Chat(r.Context(), &req)
	if err != nil {
		h.respondAssistantError(w, err, "Failed to chat")
		return
	}
	respondJSON(w, http.StatusOK, assistantResponse{Text: text})
}

func (h *AssistantHandler) respondAssistantError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, service.ErrAssistantDisabled) {
		respondWithError(w, http.StatusServiceUnavailable, "Assistant is not configured")
		return
	}
	h.logger.Error("assistant request failed", zap.Error(err))
	respondWithError(w, http.StatusBadGateway, fallback)
}
