package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
)

type DealHandler struct {
	dealService *service.DealService
	logger      *zap.Logger
}

func NewDealHandler(dealService *service.DealService, logger *zap.Logger) *DealHandler {
	return &DealHandler{dealService: dealService, logger: logger}
}

// @Summary List deals
// @Description List deals with optional filters and sorting
// @Tags Deals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by pipeline stage"
// @Param ownerId query string false "Filter by owner ID"
// @Param accountId query string false "Filter by account ID"
// @Param source query string false "Filter by originating lead source"
// @Param open query bool false "Only open (or only closed) deals"
// @Param q query string false "Search by title or client"
// @Param sortBy query string false "Sort order" Enums(created_desc, created_asc, value_desc, value_asc, updated_desc, updated_asc)
// @Success 200 {object} domain.PaginatedResponse[domain.DealDTO]
// @Router /deals [get]
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	filters := &repository.DealFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.DealStatus(s)
		filters.Status = &status
	}
	if o := r.URL.Query().Get("ownerId"); o != "" {
		if id, err := uuid.Parse(o); err == nil {
			filters.OwnerID = &id
		}
	}
	if a := r.URL.Query().Get("accountId"); a != "" {
		if id, err := uuid.Parse(a); err == nil {
			filters.AccountID = &id
		}
	}
	if src := r.URL.Query().Get("source"); src != "" {
		source := domain.LeadSource(src)
		filters.Source = &source
	}
	if o := r.URL.Query().Get("open"); o != "" {
		if v, err := strconv.ParseBool(o); err == nil {
			filters.IsOpen = &v
		}
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}
	sortBy := repository.DealSortOption(r.URL.Query().Get("sortBy"))

	result, err := h.dealService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list deals", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list deals")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create deal
// @Description Create a new deal in the pipeline
// @Tags Deals
// @Accept json
// @Produce json
// @Param request body domain.CreateDealRequest true "Deal data"
// @Success 201 {object} domain.DealDTO
// @Router /deals [post]
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	deal, err := h.dealService.Create(r.Context(), user.Actor(), user.Name, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create deal")
		return
	}

	w.Header().Set("Location", "/api/v1/deals/"+deal.ID.String())
	respondJSON(w, http.StatusCreated, deal)
}

// @Summary Get deal
// @Description Get a deal by ID with its activity timeline
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id} [get]
func (h *DealHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

// @Summary Update deal
// @Description Update an existing deal's details
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.UpdateDealRequest true "Deal data"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id} [put]
func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	deal, err := h.dealService.Update(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update deal")
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

// @Summary Update deal stage
// @Description Move a deal to another open pipeline stage
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.MoveDealRequest true "Target stage"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id}/stage [put]
func (h *DealHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
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
	deal, err := h.dealService.UpdateStage(r.Context(), user.Actor(), user.Name, id, req.ToStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDealNotOpen):
			respondWithError(w, http.StatusConflict, "Deal is already closed")
		default:
			respondServiceError(w, h.logger, err, "Failed to update deal stage")
		}
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

// @Summary Win deal
// @Description Close a deal as won and create its delivery project
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.WinDealRequest false "Project overrides"
// @Success 200 {object} domain.WinDealResultDTO
// @Router /deals/{id}/win [post]
func (h *DealHandler) Win(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.WinDealRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	user := auth.MustFromContext(r.Context())
	result, err := h.dealService.Win(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDealNotOpen):
			respondWithError(w, http.StatusConflict, "Deal is already closed")
		case errors.Is(err, service.ErrDealHasProject):
			respondWithError(w, http.StatusConflict, "Deal already has a project")
		default:
			respondServiceError(w, h.logger, err, "Failed to win deal")
		}
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Lose deal
// @Description Close a deal as lost with a categorized reason
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.LoseDealRequest true "Loss reason"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id}/lose [post]
func (h *DealHandler) Lose(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.LoseDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	deal, err := h.dealService.Lose(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDealNotOpen):
			respondWithError(w, http.StatusConflict, "Deal is already closed")
		case errors.Is(err, service.ErrLossReasonRequired):
			respondWithError(w, http.StatusBadRequest, "A loss reason is required")
		case errors.Is(err, service.ErrLossDetailsRequired):
			respondWithError(w, http.StatusBadRequest, "Details are required when the loss reason is other")
		default:
			respondServiceError(w, h.logger, err, "Failed to lose deal")
		}
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

// @Summary Schedule meeting
// @Description Book a meeting for a deal
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.ScheduleMeetingRequest true "Meeting time"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id}/meeting [post]
func (h *DealHandler) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.ScheduleMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	deal, err := h.dealService.ScheduleMeeting(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMeetingInPast):
			respondWithError(w, http.StatusBadRequest, "Meeting time must be in the future")
		case errors.Is(err, service.ErrDealNotOpen):
			respondWithError(w, http.StatusConflict, "Deal is already closed")
		default:
			respondServiceError(w, h.logger, err, "Failed to schedule meeting")
		}
		return
	}
	respondJSON(w, http.StatusOK, deal)
}

// @Summary Deal stage history
// @Description List the recorded stage transitions of a deal
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {array} domain.DealStageHistoryDTO
// @Router /deals/{id}/history [get]
func (h *DealHandler) GetStageHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	history, err := h.dealService.GetStageHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get stage history")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// @Summary Add deal activity
// @Description Append an interaction to a deal's timeline
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.CreateActivityRequest true "Activity"
// @Success 201 {object} domain.ActivityDTO
// @Router /deals/{id}/activities [post]
func (h *DealHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
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
	activity, err := h.dealService.AddActivity(r.Context(), user.Actor(), user.Name, id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add activity")
		return
	}
	respondJSON(w, http.StatusCreated, activity)
}

// @Summary Delete deal
// @Description Delete a deal, its history and activities
// @Tags Deals
// @Param id path string true "Deal ID"
// @Success 204
// @Router /deals/{id} [delete]
func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.dealService.Delete(r.Context(), user.Actor(), user.Name, id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete deal")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
