package shared

import (
	"context"
	"time"
)

// IdempotencyStore reserves request keys so that retried client requests
// do not produce duplicate side effects.
type IdempotencyStore interface {
	// TryAcquire reserves the key for the given TTL. Returns true if the key
	// was acquired, false if it is already held.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release removes the reservation, allowing the key to be reused.
	Release(ctx context.Context, key string) error
}
