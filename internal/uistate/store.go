// Package uistate persists per-session UI state in Redis so a reload or
// a second tab sees the same screen.
package uistate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotSet is returned when a session has no stored state for a key
var ErrNotSet = errors.New("ui state not set")

// Modals holds one optional payload per overlay slot. A non-nil payload
// means the modal is open with that payload; closing a modal clears its
// slot back to null. Slots are independent of each other, so closing the
// confirmation dialog never disturbs an open editor.
type Modals struct {
	DealEditor    json.RawMessage `json:"dealEditor,omitempty"`
	ProjectEditor json.RawMessage `json:"projectEditor,omitempty"`
	LeadEditor    json.RawMessage `json:"leadEditor,omitempty"`
	InvoiceEditor json.RawMessage `json:"invoiceEditor,omitempty"`
	QuoteEditor   json.RawMessage `json:"quoteEditor,omitempty"`
	Confirm       json.RawMessage `json:"confirm,omitempty"`
	AccountPanel  json.RawMessage `json:"accountPanel,omitempty"`
	Schedule      json.RawMessage `json:"schedule,omitempty"`
	EmailComposer json.RawMessage `json:"emailComposer,omitempty"`
}

// State is the client UI state mirrored server-side
type State struct {
	ActiveView   string            `json:"activeView,omitempty"`
	Modals       Modals            `json:"modals"`
	BoardFilters map[string]string `json:"boardFilters,omitempty"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// NavigationFilter is a one-shot filter passed between views. Reading it
// consumes it.
type NavigationFilter struct {
	View   string            `json:"view"`
	Params map[string]string `json:"params,omitempty"`
}

// Store keeps UI state keyed by session token
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a UI state store. State expires with the session TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func stateKey(token string) string {
	return "uistate:" + token
}

func navKey(token string) string {
	return "uistate:nav:" + token
}

// Save stores the session's UI state
func (s *Store) Save(ctx context.Context, token string, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal ui state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(token), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store ui state: %w", err)
	}
	return nil
}

// Load returns the session's UI state
func (s *Store) Load(ctx context.Context, token string) (*State, error) {
	payload, err := s.client.Get(ctx, stateKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotSet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ui state: %w", err)
	}
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ui state: %w", err)
	}
	return &state, nil
}

// Clear drops the session's UI state
func (s *Store) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, stateKey(token), navKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to clear ui state: %w", err)
	}
	return nil
}

// SetNavigationFilter stages a one-shot filter for the next view
func (s *Store) SetNavigationFilter(ctx context.Context, token string, filter *NavigationFilter) error {
	payload, err := json.Marshal(filter)
	if err != nil {
		return fmt.Errorf("failed to marshal navigation filter: %w", err)
	}
	if err := s.client.Set(ctx, navKey(token), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store navigation filter: %w", err)
	}
	return nil
}

// ConsumeNavigationFilter returns the staged filter and removes it so a
// second read starts clean
func (s *Store) ConsumeNavigationFilter(ctx context.Context, token string) (*NavigationFilter, error) {
	payload, err := s.client.GetDel(ctx, navKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotSet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume navigation filter: %w", err)
	}
	var filter NavigationFilter
	if err := json.Unmarshal(payload, &filter); err != nil {
		return nil, fmt.Errorf("failed to unmarshal navigation filter: %w", err)
	}
	return &filter, nil
}
