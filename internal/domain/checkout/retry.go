package checkout

import (
	"strings"
	"time"
)

// MaxRetries is the number of additional attempts after the first failure.
const MaxRetries = 3

// DefaultBaseDelay is the first backoff delay; each retry doubles it.
const DefaultBaseDelay = 500 * time.Millisecond

// RetryPolicy controls how failed platform calls are retried
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns the standard checkout retry policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: MaxRetries, BaseDelay: DefaultBaseDelay}
}

// Delay returns the backoff before retry attempt n (1-based), doubling each
// time: base, 2*base, 4*base, ...
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// retryableFragments are matched case-insensitively against error messages.
// Transient transport and throttling failures are worth retrying; everything
// else (validation, auth, business rejections) is not.
var retryableFragments = []string{
	"network",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"502",
	"503",
	"504",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"rate limit",
	"too many requests",
	"temporarily unavailable",
}

// IsRetryable classifies an error as transient or permanent
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
