package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/checkout"
)

func newTestExecutor(delays *[]time.Duration) *RetryExecutor {
	e := NewRetryExecutor(checkout.DefaultRetryPolicy(), zap.NewNop())
	e.sleep = func(d time.Duration) {
		if delays != nil {
			*delays = append(*delays, d)
		}
	}
	return e
}

func TestRetryExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("success on first attempt returns no failures", func(t *testing.T) {
		e := newTestExecutor(nil)
		failures, err := e.Execute(ctx, "op", func(context.Context) error { return nil })
		require.NoError(t, err)
		assert.Empty(t, failures)
	})

	t.Run("retries transient failures with exponential backoff", func(t *testing.T) {
		var delays []time.Duration
		e := newTestExecutor(&delays)

		calls := 0
		failures, err := e.Execute(ctx, "op", func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("network timeout")
			}
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, 3, calls)
		require.Len(t, failures, 2)
		assert.True(t, failures[0].Retryable)
		assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, delays)
	})

	t.Run("stops after the retry budget", func(t *testing.T) {
		e := newTestExecutor(nil)
		calls := 0
		boom := errors.New("503 service unavailable")

		failures, err := e.Execute(ctx, "op", func(context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 4, calls)
		assert.Len(t, failures, 4)
	})

	t.Run("permanent failure stops immediately", func(t *testing.T) {
		e := newTestExecutor(nil)
		calls := 0
		boom := errors.New("invalid address")

		failures, err := e.Execute(ctx, "op", func(context.Context) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
		require.Len(t, failures, 1)
		assert.False(t, failures[0].Retryable)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		e := newTestExecutor(nil)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := e.Execute(cancelled, "op", func(context.Context) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
