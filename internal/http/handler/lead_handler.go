package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
)

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{leadService: leadService, logger: logger}
}

// @Summary List leads
// @Description List leads with optional filters
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Param source query string false "Filter by source"
// @Param ownerId query string false "Filter by owner ID"
// @Param stale query bool false "Only stale (or only fresh) leads"
// @Param q query string false "Search by company or contact"
// @Success 200 {object} domain.PaginatedResponse[domain.LeadDTO]
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.LeadFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.LeadStatus(s)
		filters.Status = &status
	}
	if src := r.URL.Query().Get("source"); src != "" {
		source := domain.LeadSource(src)
		filters.Source = &source
	}
	if o := r.URL.Query().Get("ownerId"); o != "" {
		if id, err := uuid.Parse(o); err == nil {
			filters.OwnerID = &id
		}
	}
	if st := r.URL.Query().Get("stale"); st != "" {
		if v, err := strconv.ParseBool(st); err == nil {
			filters.Stale = &v
		}
	}
	if ca := r.URL.Query().Get("createdAfter"); ca != "" {
		if t, err := time.Parse("2006-01-02", ca); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if cb := r.URL.Query().Get("createdBefore"); cb != "" {
		if t, err := time.Parse("2006-01-02", cb); err == nil {
			filters.CreatedBefore = &t
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	result, err := h.leadService.List(r.Context(), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create lead
// @Description Create a new lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	lead, err := h.leadService.Create(r.Context(), user.Actor(), user.Name, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create lead")
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Description Get a lead by ID with its activity timeline
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead
// @Description Update an existing lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Lead data"
// @Success 200 {object} domain.LeadDTO
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	lead, err := h.leadService.Update(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update lead")
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// @Summary Update lead status
// @Description Move a lead along its lifecycle
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadStatusRequest true "New status"
// @Success 200 {object} domain.LeadDTO
// @Router /leads/{id}/status [put]
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	lead, err := h.leadService.UpdateStatus(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadAlreadyClosed):
			respondWithError(w, http.StatusConflict, "Lead is already closed")
		case errors.Is(err, service.ErrDismissReasonNeeded):
			respondWithError(w, http.StatusBadRequest, "A reason is required to mark a lead not interested")
		default:
			respondServiceError(w, h.logger, err, "Failed to update lead status")
		}
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

// @Summary Convert lead
// @Description Convert a qualified lead into an account and a deal
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.ConvertLeadRequest false "Conversion overrides"
// @Success 200 {object} domain.ConvertLeadResultDTO
// @Router /leads/{id}/convert [post]
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.ConvertLeadRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	user := auth.MustFromContext(r.Context())
	result, err := h.leadService.Convert(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		if errors.Is(err, service.ErrLeadNotQualified) {
			respondWithError(w, http.StatusConflict, "Lead must be qualified before conversion")
			return
		}
		respondServiceError(w, h.logger, err, "Failed to convert lead")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Add lead activity
// @Description Append an interaction to a lead's timeline
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.CreateActivityRequest true "Activity"
// @Success 201 {object} domain.ActivityDTO
// @Router /leads/{id}/activities [post]
func (h *LeadHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	activity, err := h.leadService.AddActivity(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add activity")
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}

// @Summary Delete lead
// @Description Delete a lead and its activities
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.leadService.Delete(r.Context(), user.Actor(), user.Name, id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete lead")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
