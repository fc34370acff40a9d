package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the per-request ambient state set at login and cleared
// entirely at logout.
type Session struct {
	UserID   uuid.UUID
	UserName string
	IsAdmin  bool
}

// Store defines the session persistence boundary. The production
// implementation is redis-backed; tests swap in miniredis.
type Store interface {
	Create(ctx context.Context, sess Session) (string, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a session store backed by the given redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Create stores the session under a fresh opaque ID and returns the ID.
func (s *redisStore) Create(ctx context.Context, sess Session) (string, error) {
	sessionID := uuid.New().String()

	fields := map[string]interface{}{
		"user_id":   sess.UserID.String(),
		"user_name": sess.UserName,
		"is_admin":  sess.IsAdmin,
	}

	key := sessionKey(sessionID)
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to set session expiry: %w", err)
	}

	return sessionID, nil
}

// Get loads the session for sessionID, returning ErrSessionNotFound for
// unknown or expired IDs.
func (s *redisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return nil, fmt.Errorf("corrupt session user id: %w", err)
	}

	return &Session{
		UserID:   userID,
		UserName: fields["user_name"],
		IsAdmin:  fields["is_admin"] == "1" || fields["is_admin"] == "true",
	}, nil
}

// Delete removes the session entirely; logging out an unknown session
// is not an error.
func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
