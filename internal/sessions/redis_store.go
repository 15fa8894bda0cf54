package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "classgate:session:"

// redisStore keeps sessions in Redis so they survive gateway restarts and
// can be shared across replicas.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store with the given TTL
func NewRedisStore(client *redis.Client, ttl time.Duration) *redisStore {
	return &redisStore{
		client: client,
		ttl:    ttl,
	}
}

// Start binds the session ID to the given state
func (s *redisStore) Start(ctx context.Context, sessionID string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get reads the state for the session ID; TTL expiry is handled by Redis
func (s *redisStore) Get(ctx context.Context, sessionID string) (Session, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A corrupt blob reads as no session rather than poisoning the request.
		return Session{}, false, nil
	}

	return sess, true, nil
}

// End removes the binding; deleting a missing key is a no-op in Redis
func (s *redisStore) End(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
