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

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, logger: logger}
}

// @Summary List quotes
// @Description List quotes with optional filters
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Param dealId query string false "Filter by deal ID"
// @Param q query string false "Search by number or client"
// @Success 200 {object} domain.PaginatedResponse[domain.QuoteDTO]
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.QuoteFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.QuoteStatus(s)
		filters.Status = &status
	}
	if d := r.URL.Query().Get("dealId"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			filters.DealID = &id
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	result, err := h.quoteService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create quote
// @Description Create a draft quote with line items
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	quote, err := h.quoteService.Create(r.Context(), user.Actor(), user.Name, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// @Summary Get quote
// @Description Get a quote by ID with its line items
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// @Summary Update quote
// @Description Replace a draft quote's details and line items
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.UpdateQuoteRequest true "Quote data"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	quote, err := h.quoteService.Update(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotEditable) {
			respondWithError(w, http.StatusConflict, "Only draft quotes can be edited")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to update quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// @Summary Update quote status
// @Description Move a quote along its lifecycle; acceptance drafts an invoice
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.UpdateQuoteStatusRequest true "New status"
// @Success 200 {object} domain.QuoteDTO
// @Router /quotes/{id}/status [put]
func (h *QuoteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	quote, err := h.quoteService.UpdateStatus(r.Context(), user.Actor(), user.Name, id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update quote status")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// @Summary Delete quote
// @Description Delete a draft quote
// @Tags Quotes
// @Param id path string true "Quote ID"
// @Success 204
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.quoteService.Delete(r.Context(), user.Actor(), user.Name, id); err != nil {
		if errors.Is(err, service.ErrQuoteNotEditable) {
			respondWithError(w, http.StatusConflict, "Only draft quotes can be deleted")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to delete quote")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
