package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/saqrcrm/sales-api/internal/auth"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("demo1234", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "demo1234", hash)

	assert.NoError(t, auth.CheckPassword(hash, "demo1234"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), auth.ErrInvalidCredentials)
}

func TestHashPassword_ClampsCost(t *testing.T) {
	// An out-of-range cost falls back to the bcrypt default instead of failing
	hash, err := auth.HashPassword("demo1234", 99)
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(hash, "demo1234"))
}

func TestResetTokenIssuer(t *testing.T) {
	issuer := auth.NewResetTokenIssuer("test-secret", time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewResetTokenIssuer("other-secret", time.Hour)
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewResetTokenIssuer("test-secret", -time.Minute)
		token, err := expired.Issue(userID)
		require.NoError(t, err)
		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := issuer.Verify("not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	})
}
