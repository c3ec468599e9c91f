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

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, logger: logger}
}

// @Summary List invoices
// @Description List invoices with optional filters
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Param dealId query string false "Filter by deal ID"
// @Param projectId query string false "Filter by project ID"
// @Param q query string false "Search by number or description"
// @Success 200 {object} domain.PaginatedResponse[domain.InvoiceDTO]
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.InvoiceFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.InvoiceStatus(s)
		filters.Status = &status
	}
	if d := r.URL.Query().Get("dealId"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			filters.DealID = &id
		}
	}
	if p := r.URL.Query().Get("projectId"); p != "" {
		if id, err := uuid.Parse(p); err == nil {
			filters.ProjectID = &id
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	result, err := h.invoiceService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create invoice
// @Description Create a draft invoice, optionally linked to a deal or project
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} domain.InvoiceDTO
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	invoice, err := h.invoiceService.Create(r.Context(), user.Actor(), user.Name, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create invoice")
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// @Summary Get invoice
// @Description Get an invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.InvoiceDTO
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get invoice")
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// @Summary Update invoice
// @Description Update an invoice; content edits only while draft
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body domain.UpdateInvoiceRequest true "Invoice data"
// @Success 200 {object} domain.InvoiceDTO
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	var req domain.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	invoice, err := h.invoiceService.Update(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotDraft) {
			respondWithError(w, http.StatusConflict, "Only draft invoices can be edited")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to update invoice")
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// @Summary Delete invoice
// @Description Delete a draft invoice
// @Tags Invoices
// @Param id path string true "Invoice ID"
// @Success 204
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.invoiceService.Delete(r.Context(), user.Actor(), user.Name, id); err != nil {
		if errors.Is(err, service.ErrInvoiceNotDraft) {
			respondWithError(w, http.StatusConflict, "Only draft invoices can be deleted")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to delete invoice")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
