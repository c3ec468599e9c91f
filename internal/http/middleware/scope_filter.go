package middleware

import (
	"net/http"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"go.uber.org/zap"
)

// ScopeFilterMiddleware handles regional data isolation. It derives the
// effective scope filter from the authenticated user and optionally lets
// ALL-scope users narrow to a single region with ?scope=<region>.
type ScopeFilterMiddleware struct {
	logger *zap.Logger
}

// NewScopeFilterMiddleware creates a new scope filter middleware
func NewScopeFilterMiddleware(logger *zap.Logger) *ScopeFilterMiddleware {
	return &ScopeFilterMiddleware{logger: logger}
}

// Filter sets the effective scope filter in the request context.
// Regional users are always pinned to their own scope regardless of any
// query parameter.
func (m *ScopeFilterMiddleware) Filter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := auth.FromContext(r.Context())
		if !ok {
			// Authentication middleware rejects unauthenticated requests
			// before we get here
			next.ServeHTTP(w, r)
			return
		}

		filter := &auth.ScopeFilter{Scope: userCtx.GetScopeFilter()}

		if requested := r.URL.Query().Get("scope"); requested != "" {
			scope := domain.Scope(requested)
			if !scope.IsValid() {
				http.Error(w, "Invalid scope parameter", http.StatusBadRequest)
				return
			}
			if filter.Scope != nil && *filter.Scope != scope {
				m.logger.Warn("user attempted to access unauthorized scope",
					zap.String("user_id", userCtx.UserID.String()),
					zap.String("user_scope", string(userCtx.Scope)),
					zap.String("requested_scope", requested),
				)
				http.Error(w, "Access denied: you cannot access data for this region", http.StatusForbidden)
				return
			}
			if scope != domain.ScopeAll {
				filter = &auth.ScopeFilter{Scope: &scope}
			}
		}

		ctx := auth.WithScopeFilter(r.Context(), filter)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
