package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
	logger         *zap.Logger
}

func NewAccountHandler(accountService *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accountService: accountService, logger: logger}
}

// @Summary List accounts
// @Description List client accounts
// @Tags Accounts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param q query string false "Search by name"
// @Success 200 {object} domain.PaginatedResponse[domain.AccountDTO]
// @Router /accounts [get]
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.accountService.List(r.Context(), page, pageSize, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Create account
// @Description Create a new client account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body domain.CreateAccountRequest true "Account data"
// @Success 201 {object} domain.AccountDTO
// @Router /accounts [post]
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	account, err := h.accountService.Create(r.Context(), user.Actor(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create account")
		return
	}

	w.Header().Set("Location", "/api/v1/accounts/"+account.ID.String())
	respondJSON(w, http.StatusCreated, account)
}

// @Summary Get account
// @Description Get an account by ID
// @Tags Accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} domain.AccountDTO
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID: must be a valid UUID")
		return
	}

	account, err := h.accountService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get account")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// @Summary Update account
// @Description Update an existing account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body domain.UpdateAccountRequest true "Account data"
// @Success 200 {object} domain.AccountDTO
// @Router /accounts/{id} [put]
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID: must be a valid UUID")
		return
	}

	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user := auth.MustFromContext(r.Context())
	account, err := h.accountService.Update(r.Context(), user.Actor(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update account")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// @Summary Delete account
// @Description Delete an account
// @Tags Accounts
// @Param id path string true "Account ID"
// @Success 204
// @Router /accounts/{id} [delete]
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid account ID: must be a valid UUID")
		return
	}

	user := auth.MustFromContext(r.Context())
	if err := h.accountService.Delete(r.Context(), user.Actor(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete account")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
