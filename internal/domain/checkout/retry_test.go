package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"network timeout", errors.New("network timeout while calling platform"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"bad gateway", errors.New("unexpected status 502 Bad Gateway"), true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"gateway timeout", errors.New("504 gateway timeout"), true},
		{"rate limited", errors.New("rate limit exceeded, try again later"), true},
		{"too many requests", errors.New("429 Too Many Requests"), true},
		{"validation error", errors.New("invalid address: postal code required"), false},
		{"auth error", errors.New("401 unauthorized"), false},
		{"business rejection", errors.New("product 1001 is discontinued"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, BaseDelay: 500 * time.Millisecond}

	assert.Equal(t, 500*time.Millisecond, policy.Delay(1))
	assert.Equal(t, 1*time.Second, policy.Delay(2))
	assert.Equal(t, 2*time.Second, policy.Delay(3))
	assert.Equal(t, 500*time.Millisecond, policy.Delay(0))
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()
	assert.Equal(t, 3, policy.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, policy.BaseDelay)
}
