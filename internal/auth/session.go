package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saqrcrm/sales-api/internal/domain"
)

// ErrSessionNotFound is returned when a session token is unknown or expired
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side state behind a session cookie
type Session struct {
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Scope     domain.Scope    `json:"scope"`
	GroupID   *uuid.UUID      `json:"groupId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SessionStore persists sessions in Redis with a sliding TTL
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a session store
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// NewToken generates a cryptographically random session token
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create stores a new session and returns its token
func (s *SessionStore) Create(ctx context.Context, sess *Session) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	sess.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Get loads a session by token and refreshes its TTL
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	// Sliding expiry; an active user stays logged in
	_ = s.client.Expire(ctx, sessionKey(token), s.ttl).Err()
	return &sess, nil
}

// Delete removes a session, logging the user out
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
