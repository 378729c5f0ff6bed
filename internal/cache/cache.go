// Package cache provides the Redis-backed idempotency store used to drop
// replayed webhook deliveries.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "crm:webhook:sid:"

// IdempotencyStore remembers keys in Redis for a bounded window.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration) (*IdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}, nil
}

// FirstSeen records the key and reports whether this call was the first to
// do so. SETNX makes the check-and-set atomic across processes.
func (s *IdempotencyStore) FirstSeen(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

// Close releases the underlying connection pool.
func (s *IdempotencyStore) Close() error {
	return s.client.Close()
}
