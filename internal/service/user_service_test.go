package service_test

import (
	"context"
	"testing"

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

func newUserService(db *gorm.DB) *service.UserService {
	logger := zap.NewNop()
	return service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewGroupRepository(db),
		bcrypt.MinCost,
		logger,
	)
}

func TestUserService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	email := testutil.UniqueEmail("mona")
	user, err := svc.Create(ctx, &domain.CreateUserRequest{
		Name:     "Mona Khalil",
		Email:    email,
		Password: "s3cret-pass",
		Role:     domain.RoleManager,
		Scope:    domain.ScopeKSA,
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, domain.RoleManager, user.Role)

	// The stored hash verifies against the original password
	var stored domain.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "s3cret-pass"))

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateUserRequest{
			Name:     "Impostor",
			Email:    email,
			Password: "another-pass",
			Role:     domain.RoleSales,
		})
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})
}

func TestUserService_Delete_Deactivates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db, "Omar", domain.RoleSales, domain.ScopeKSA)
	require.NoError(t, svc.Delete(ctx, user.ID))

	// The record survives so owned records keep their attribution
	var stored domain.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.False(t, stored.IsActive)
}
