package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saqrcrm/sales-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware authenticates requests against the session store
type Middleware struct {
	store             *SessionStore
	logger            *zap.Logger
	sessionCookieName string
	csrfCookieName    string
}

// NewMiddleware creates the auth middleware
func NewMiddleware(store *SessionStore, logger *zap.Logger, sessionCookie, csrfCookie string) *Middleware {
	return &Middleware{
		store:             store,
		logger:            logger,
		sessionCookieName: sessionCookie,
		csrfCookieName:    csrfCookie,
	}
}

func respondProblem(w http.ResponseWriter, apiErr *domain.APIError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(apiErr)
}

// RequireSession resolves the session cookie into a user context.
// Requests without a valid session are rejected with 401.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.sessionCookieName)
		if err != nil {
			respondProblem(w, &domain.APIError{
				Type:   domain.ErrorTypeUnauthorized,
				Title:  "Unauthorized",
				Status: http.StatusUnauthorized,
				Detail: "Missing session",
			})
			return
		}

		sess, err := m.store.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				m.logger.Error("failed to load session", zap.Error(err))
			}
			respondProblem(w, &domain.APIError{
				Type:   domain.ErrorTypeUnauthorized,
				Title:  "Unauthorized",
				Status: http.StatusUnauthorized,
				Detail: "Session expired or invalid",
			})
			return
		}

		userCtx := &UserContext{
			UserID:       sess.UserID,
			Name:         sess.Name,
			Email:        sess.Email,
			Role:         sess.Role,
			Scope:        sess.Scope,
			GroupID:      sess.GroupID,
			SessionToken: cookie.Value,
		}

		ctx := WithUserContext(r.Context(), userCtx)
		ctx = WithScopeFilter(ctx, &ScopeFilter{Scope: userCtx.GetScopeFilter()})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRF enforces the double-submit cookie pattern on state-changing methods.
// The token cookie is primed by GET /auth/csrf and must be echoed in the
// X-CSRF-Token header.
func (m *Middleware) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(m.csrfCookieName)
		header := r.Header.Get("X-CSRF-Token")
		if err != nil || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
			respondProblem(w, &domain.APIError{
				Type:   domain.ErrorTypeForbidden,
				Title:  "Forbidden",
				Status: http.StatusForbidden,
				Detail: "CSRF token missing or invalid",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests from users without one of the given roles
func (m *Middleware) RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok || !userCtx.HasAnyRole(roles...) {
				respondProblem(w, domain.NewForbiddenError("Insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRead rejects requests from roles without read access to a resource
func (m *Middleware) RequireRead(resource domain.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok || !domain.CanRead(userCtx.Role, resource) {
				respondProblem(w, domain.NewForbiddenError("Insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
