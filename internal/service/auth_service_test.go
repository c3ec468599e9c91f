package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
	"github.com/saqrcrm/sales-api/internal/repository"
	"github.com/saqrcrm/sales-api/internal/service"
	"github.com/saqrcrm/sales-api/internal/testutil"
)

func newAuthService(t *testing.T, db *gorm.DB) (*service.AuthService, *auth.SessionStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := auth.NewSessionStore(client, time.Hour)
	resetTokens := auth.NewResetTokenIssuer("test-secret", 15*time.Minute)
	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		sessions,
		resetTokens,
		bcrypt.MinCost,
		zap.NewNop(),
	)
	return svc, sessions
}

func createLoginUser(t *testing.T, db *gorm.DB, password string, active bool) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{
		Name:         "Sara",
		Email:        testutil.UniqueEmail("login"),
		PasswordHash: hash,
		Role:         domain.RoleSales,
		Scope:        domain.ScopeKSA,
		IsActive:     active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, sessions := newAuthService(t, db)
	ctx := context.Background()

	t.Run("creates a session on success", func(t *testing.T) {
		user := createLoginUser(t, db, "hunter2hunter2", true)

		token, dto, err := svc.Login(ctx, &domain.LoginRequest{
			Email:    user.Email,
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		require.NotNil(t, dto)
		assert.Equal(t, user.ID, dto.ID)
		assert.Equal(t, user.Email, dto.Email)

		session, err := sessions.Get(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)
		assert.Equal(t, domain.RoleSales, session.Role)
		assert.Equal(t, domain.ScopeKSA, session.Scope)
	})

	t.Run("wrong password", func(t *testing.T) {
		user := createLoginUser(t, db, "hunter2hunter2", true)

		_, _, err := svc.Login(ctx, &domain.LoginRequest{
			Email:    user.Email,
			Password: "not-the-password",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, &domain.LoginRequest{
			Email:    "nobody@test.local",
			Password: "whatever123",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		user := createLoginUser(t, db, "hunter2hunter2", false)

		_, _, err := svc.Login(ctx, &domain.LoginRequest{
			Email:    user.Email,
			Password: "hunter2hunter2",
		})
		assert.ErrorIs(t, err, service.ErrUserInactive)
	})
}

func TestAuthService_Logout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, sessions := newAuthService(t, db)
	ctx := context.Background()
	user := createLoginUser(t, db, "hunter2hunter2", true)

	token, _, err := svc.Login(ctx, &domain.LoginRequest{
		Email:    user.Email,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = sessions.Get(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestAuthService_PasswordReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := newAuthService(t, db)
	ctx := context.Background()

	t.Run("full reset flow", func(t *testing.T) {
		user := createLoginUser(t, db, "old-password-1", true)

		token, err := svc.ForgotPassword(ctx, user.Email)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		err = svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
			Token:    token,
			Password: "new-password-1",
		})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, &domain.LoginRequest{
			Email:    user.Email,
			Password: "old-password-1",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, _, err = svc.Login(ctx, &domain.LoginRequest{
			Email:    user.Email,
			Password: "new-password-1",
		})
		assert.NoError(t, err)
	})

	t.Run("unknown email does not leak", func(t *testing.T) {
		token, err := svc.ForgotPassword(ctx, "nobody@test.local")
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("bad token", func(t *testing.T) {
		err := svc.ResetPassword(ctx, &domain.ResetPasswordRequest{
			Token:    "not-a-token",
			Password: "new-password-1",
		})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}
