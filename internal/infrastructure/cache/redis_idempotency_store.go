package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portal:idempotency:"

// RedisIdempotencyStore keeps reservations in redis so they are shared
// across instances
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore creates the store
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// TryAcquire reserves the key for the TTL using SETNX
func (s *RedisIdempotencyStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+key, "1", ttl).Result()
}

// Release removes the reservation
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
