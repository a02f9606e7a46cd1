package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/checkout"
)

// AttemptResult records the outcome of one attempt against the platform
type AttemptResult struct {
	Attempt   int
	Err       error
	Retryable bool
}

// RetryExecutor runs platform calls under the checkout retry policy:
// transient failures are retried with exponential backoff, permanent
// failures stop the flow immediately. Every attempt outcome is returned
// so the caller can log it against the session.
type RetryExecutor struct {
	policy checkout.RetryPolicy
	sleep  func(time.Duration)
	logger *zap.Logger
}

// NewRetryExecutor creates an executor with the given policy
func NewRetryExecutor(policy checkout.RetryPolicy, logger *zap.Logger) *RetryExecutor {
	return &RetryExecutor{
		policy: policy,
		sleep:  time.Sleep,
		logger: logger,
	}
}

// Execute runs op until it succeeds, a permanent failure occurs, the retry
// budget is exhausted, or the context is cancelled. The returned slice holds
// one entry per failed attempt; err is nil iff op eventually succeeded.
func (e *RetryExecutor) Execute(ctx context.Context, operation string, op func(context.Context) error) ([]AttemptResult, error) {
	var failures []AttemptResult

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return failures, err
		}

		err := op(ctx)
		if err == nil {
			return failures, nil
		}

		retryable := checkout.IsRetryable(err)
		failures = append(failures, AttemptResult{Attempt: attempt, Err: err, Retryable: retryable})

		if !retryable {
			e.logger.Warn("platform call failed permanently",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return failures, err
		}
		if attempt > e.policy.MaxRetries {
			e.logger.Warn("platform call exhausted retries",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return failures, err
		}

		delay := e.policy.Delay(attempt)
		e.logger.Info("retrying platform call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		e.sleep(delay)
	}
}
