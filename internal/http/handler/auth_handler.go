package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/service"
)

// AuthHandler serves login, logout and password recovery
type AuthHandler struct {
	authService   *service.AuthService
	userService   *service.UserService
	sessionCookie string
	csrfCookie    string
	cookieSecure  bool
	sessionTTL    time.Duration
	logger        *zap.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	sessionCookie, csrfCookie string,
	cookieSecure bool,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		userService:   userService,
		sessionCookie: sessionCookie,
		csrfCookie:    csrfCookie,
		cookieSecure:  cookieSecure,
		sessionTTL:    sessionTTL,
		logger:        logger,
	}
}

type loginResponse struct {
	User      domain.UserDTO `json:"user"`
	CSRFToken string         `json:"csrfToken"`
}

// @Summary Login
// @Description Authenticate with email and password; opens a session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	token, user, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrUserInactive) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	csrfToken, err := auth.NewToken()
	if err != nil {
		h.logger.Error("failed to generate csrf token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	// The client echoes this back in X-CSRF-Token; readable by script on purpose
	http.SetCookie(w, &http.Cookie{
		Name:     h.csrfCookie,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, loginResponse{User: *user, CSRFToken: csrfToken})
}

// @Summary Logout
// @Description Tear down the current session
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), user.SessionToken); err != nil {
		h.logger.Warn("failed to delete session", zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     h.csrfCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Current user
// @Description Return the authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	dto, err := h.userService.GetByID(r.Context(), user.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load user")
		return
	}
	respondJSON(w, http.StatusOK, dto)
}

// @Summary Forgot password
// @Description Issue a password reset token for the given email
// @Tags Auth
// @Accept json
// @Success 202
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	token, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("forgot password failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	// Without an email channel the token is returned directly; the
	// response shape is the same whether or not the email exists
	respondJSON(w, http.StatusAccepted, map[string]string{"resetToken": token})
}

// @Summary Reset password
// @Description Set a new password using a reset token
// @Tags Auth
// @Accept json
// @Success 204
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired reset token")
			return
		}
		h.logger.Error("reset password failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
