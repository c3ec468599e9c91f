package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
)

func requestAs(t *testing.T, handler http.Handler, role domain.UserRole) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID: uuid.New(),
		Role:   role,
		Scope:  domain.ScopeAll,
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireRead(t *testing.T) {
	m := auth.NewMiddleware(nil, zap.NewNop(), "session", "csrf")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("readable resource passes", func(t *testing.T) {
		handler := m.RequireRead(domain.ResourceDashboard)(ok)
		rec := requestAs(t, handler, domain.RoleTelesales)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unreadable resource is forbidden", func(t *testing.T) {
		handler := m.RequireRead(domain.ResourceInvoices)(ok)
		rec := requestAs(t, handler, domain.RoleTelesales)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous requests are forbidden", func(t *testing.T) {
		handler := m.RequireRead(domain.ResourceDashboard)(ok)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	m := auth.NewMiddleware(nil, zap.NewNop(), "session", "csrf")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := m.RequireRole(domain.RoleAdmin)(ok)

	assert.Equal(t, http.StatusOK, requestAs(t, handler, domain.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, requestAs(t, handler, domain.RoleSales).Code)
}
