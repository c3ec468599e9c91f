package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqrcrm/sales-api/internal/auth"
	"github.com/saqrcrm/sales-api/internal/domain"
)

func newSessionStore(t *testing.T, ttl time.Duration) (*auth.SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewSessionStore(client, ttl), mr
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store, _ := newSessionStore(t, time.Hour)
	ctx := context.Background()

	groupID := uuid.New()
	token, err := store.Create(ctx, &auth.Session{
		UserID:  uuid.New(),
		Name:    "Omar Haddad",
		Email:   "omar@example.com",
		Role:    domain.RoleSales,
		Scope:   domain.ScopeKSA,
		GroupID: &groupID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Omar Haddad", sess.Name)
	assert.Equal(t, domain.RoleSales, sess.Role)
	assert.Equal(t, domain.ScopeKSA, sess.Scope)
	require.NotNil(t, sess.GroupID)
	assert.Equal(t, groupID, *sess.GroupID)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestSessionStore_UnknownToken(t *testing.T) {
	store, _ := newSessionStore(t, time.Hour)
	_, err := store.Get(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := newSessionStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, &auth.Session{UserID: uuid.New(), Role: domain.RoleSales})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestSessionStore_SlidingExpiry(t *testing.T) {
	store, mr := newSessionStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, &auth.Session{UserID: uuid.New(), Role: domain.RoleSales})
	require.NoError(t, err)

	// Each read pushes the expiry out, so an active session outlives its TTL
	for i := 0; i < 3; i++ {
		mr.FastForward(45 * time.Second)
		_, err = store.Get(ctx, token)
		require.NoError(t, err)
	}
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := newSessionStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, &auth.Session{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestNewToken_Unique(t *testing.T) {
	a, err := auth.NewToken()
	require.NoError(t, err)
	b, err := auth.NewToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
