package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bellybox/bellybox-api/internal/core/domain"
)

const sessionKeyPrefix = "session:"

type sessionCmdable interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionStore keeps one key per session: session:<id> -> user id, expiring
// with the session TTL.
type SessionStore struct {
	client sessionCmdable
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("save session: ttl must be positive")
	}
	if err := s.client.Set(ctx, s.key(sessionID), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (int64, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrSessionNotFound
		}
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lookup session: corrupt value: %w", err)
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
