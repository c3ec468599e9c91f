package uistate_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqrcrm/sales-api/internal/uistate"
)

func newStore(t *testing.T) (*uistate.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return uistate.NewStore(client, time.Hour), mr
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "token-1", &uistate.State{
		ActiveView: "board",
		Modals: uistate.Modals{
			DealEditor: json.RawMessage(`{"dealId":"42"}`),
		},
		BoardFilters: map[string]string{"owner": "me"},
	})
	require.NoError(t, err)

	state, err := store.Load(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "board", state.ActiveView)
	assert.JSONEq(t, `{"dealId":"42"}`, string(state.Modals.DealEditor))
	assert.Equal(t, map[string]string{"owner": "me"}, state.BoardFilters)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestStore_ModalSlotsAreIndependent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	// Two open overlays, each carrying its own payload
	require.NoError(t, store.Save(ctx, "token-1", &uistate.State{
		Modals: uistate.Modals{
			DealEditor: json.RawMessage(`{"dealId":"42"}`),
			Confirm:    json.RawMessage(`{"action":"delete"}`),
		},
	}))

	// Closing the confirmation dialog leaves the editor untouched
	require.NoError(t, store.Save(ctx, "token-1", &uistate.State{
		Modals: uistate.Modals{
			DealEditor: json.RawMessage(`{"dealId":"42"}`),
		},
	}))

	state, err := store.Load(ctx, "token-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dealId":"42"}`, string(state.Modals.DealEditor))
	assert.Nil(t, state.Modals.Confirm)
	assert.Nil(t, state.Modals.QuoteEditor)
}

func TestStore_LoadUnset(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, uistate.ErrNotSet)
}

func TestStore_StateIsPerSession(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "token-a", &uistate.State{ActiveView: "leads"}))
	require.NoError(t, store.Save(ctx, "token-b", &uistate.State{ActiveView: "invoices"}))

	a, err := store.Load(ctx, "token-a")
	require.NoError(t, err)
	b, err := store.Load(ctx, "token-b")
	require.NoError(t, err)
	assert.Equal(t, "leads", a.ActiveView)
	assert.Equal(t, "invoices", b.ActiveView)
}

func TestStore_NavigationFilterIsConsumedOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	err := store.SetNavigationFilter(ctx, "token-1", &uistate.NavigationFilter{
		View:   "deals",
		Params: map[string]string{"status": "negotiation"},
	})
	require.NoError(t, err)

	filter, err := store.ConsumeNavigationFilter(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "deals", filter.View)
	assert.Equal(t, "negotiation", filter.Params["status"])

	// The second read starts clean
	_, err = store.ConsumeNavigationFilter(ctx, "token-1")
	assert.ErrorIs(t, err, uistate.ErrNotSet)
}

func TestStore_Clear(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "token-1", &uistate.State{ActiveView: "board"}))
	require.NoError(t, store.SetNavigationFilter(ctx, "token-1", &uistate.NavigationFilter{View: "deals"}))

	require.NoError(t, store.Clear(ctx, "token-1"))

	_, err := store.Load(ctx, "token-1")
	assert.ErrorIs(t, err, uistate.ErrNotSet)
	_, err = store.ConsumeNavigationFilter(ctx, "token-1")
	assert.ErrorIs(t, err, uistate.ErrNotSet)
}

func TestStore_Expiry(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "token-1", &uistate.State{ActiveView: "board"}))
	mr.FastForward(2 * time.Hour)

	_, err := store.Load(ctx, "token-1")
	assert.ErrorIs(t, err, uistate.ErrNotSet)
}
