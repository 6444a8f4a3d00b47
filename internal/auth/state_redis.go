package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "oauth:state:"

// RedisStateStore stores single-use OAuth state tokens in Redis. Expiry is
// delegated to the key TTL; consumption uses GETDEL so exactly one of any
// number of concurrent callbacks can claim a state.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a state store backed by the given Redis client.
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

// StoreState records the state token with the given TTL.
func (s *RedisStateStore) StoreState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// ConsumeState atomically claims and removes the state token.
func (s *RedisStateStore) ConsumeState(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nil
}

var _ StateStore = (*RedisStateStore)(nil)
