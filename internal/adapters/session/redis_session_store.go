package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	redisclient "github.com/bookbridge/librental/internal/infrastructure/clients/redis"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

// RedisSessionStore implements the SessionStore interface using Redis. Each
// hydrated session is serialized under its token with a TTL, replacing the
// browser-local mirror the product previously relied on.
type RedisSessionStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a new Redis session store
func NewRedisSessionStore(client *redisclient.Client, ttlSeconds int) providers.SessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Save persists a session under its token
func (s *RedisSessionStore) Save(ctx context.Context, session *entities.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal session", err)
	}

	if err := s.client.Client().Set(ctx, sessionKey(session.Token), data, s.ttl).Err(); err != nil {
		return apperrors.NewInternalError("failed to save session", err)
	}
	return nil
}

// Get retrieves a session by token
func (s *RedisSessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	data, err := s.client.Client().Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NewUnauthorizedError("session not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load session", err)
	}

	session := &entities.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal session", err)
	}
	return session, nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Client().Del(ctx, sessionKey(token)).Err(); err != nil {
		return apperrors.NewInternalError("failed to delete session", err)
	}
	return nil
}
