package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

func testLines() []CartLine {
	return []CartLine{
		{ProductID: 1001, Name: "Widget", UnitPrice: decimal.NewFromFloat(25.00), Quantity: 2},
		{ProductID: 1002, Name: "Gadget", UnitPrice: decimal.NewFromFloat(50.00), Quantity: 1},
	}
}

func testAddress() valueobject.Address {
	return valueobject.Address{
		Name:       "Jane Buyer",
		Street1:    "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func TestNewSession(t *testing.T) {
	t.Run("creates pending session at cart creation", func(t *testing.T) {
		userID := uuid.New()
		session, err := NewSession(userID, nil, nil, testLines(), "key-1")
		require.NoError(t, err)

		assert.Equal(t, SessionStatusPending, session.Status)
		assert.Equal(t, StepCartCreation, session.Step)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, 0, session.RetryCount)
		assert.Empty(t, session.ErrorLog)
		assert.WithinDuration(t, time.Now().Add(SessionTTL), session.ExpiresAt, time.Minute)
		assert.Len(t, session.GetDomainEvents(), 1)
	})

	t.Run("computes the subtotal from the lines", func(t *testing.T) {
		lines := []CartLine{{ProductID: 1, Name: "x", UnitPrice: decimal.NewFromInt(10), Quantity: 2}}
		session, err := NewSession(uuid.New(), nil, nil, lines, "key-1")
		require.NoError(t, err)

		assert.True(t, session.Subtotal.Amount.Equal(decimal.NewFromInt(20)), "subtotal was %s", session.Subtotal)
		assert.True(t, session.Total.Amount.Equal(decimal.NewFromInt(20)))
	})

	t.Run("estimate adds tax and shipping onto the subtotal", func(t *testing.T) {
		session, err := NewSession(uuid.New(), nil, nil, testLines(), "key-1")
		require.NoError(t, err)

		session.EstimateTotals(
			valueobject.NewMoneyFromFloat(8, "USD"),
			valueobject.NewMoneyFromFloat(10, "USD"))

		assert.True(t, session.Subtotal.Amount.Equal(decimal.NewFromInt(100)))
		assert.True(t, session.Total.Amount.Equal(decimal.NewFromInt(118)), "total was %s", session.Total)
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		_, err := NewSession(uuid.New(), nil, nil, nil, "key-1")
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		lines := []CartLine{{ProductID: 1, Name: "x", UnitPrice: decimal.NewFromInt(1), Quantity: 0}}
		_, err := NewSession(uuid.New(), nil, nil, lines, "key-1")
		assert.Error(t, err)
	})

	t.Run("rejects missing user", func(t *testing.T) {
		_, err := NewSession(uuid.Nil, nil, nil, testLines(), "key-1")
		assert.Error(t, err)
	})
}

func TestSessionAttachCart(t *testing.T) {
	t.Run("advances to address entry", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		err := session.AttachCart("cart-123")
		require.NoError(t, err)

		assert.Equal(t, "cart-123", session.RemoteCartID)
		assert.Equal(t, StepAddressEntry, session.Step)
		assert.Equal(t, SessionStatusProcessing, session.Status)
	})

	t.Run("rejects second attach", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		require.NoError(t, session.AttachCart("cart-123"))
		err := session.AttachCart("cart-456")
		assert.Error(t, err)
		assert.Equal(t, "cart-123", session.RemoteCartID)
	})

	t.Run("rejects empty cart id", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		assert.Error(t, session.AttachCart(""))
	})
}

func TestSessionAttachCheckout(t *testing.T) {
	money := func(f float64) valueobject.Money {
		return valueobject.NewMoneyFromFloat(f, "USD")
	}

	t.Run("advances to payment with totals", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		require.NoError(t, session.AttachCart("cart-123"))

		err := session.AttachCheckout("chk-1", testAddress(), testAddress(),
			money(100), money(8), money(10), money(118))
		require.NoError(t, err)

		assert.Equal(t, StepPayment, session.Step)
		assert.Equal(t, "chk-1", session.RemoteCheckoutID)
		assert.True(t, session.Total.Equals(money(118)))
		require.NotNil(t, session.ShippingAddress)
		assert.Equal(t, "Springfield", session.ShippingAddress.City)
	})

	t.Run("detects missing cart as inconsistent state", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		session.Step = StepAddressEntry

		err := session.AttachCheckout("chk-1", testAddress(), testAddress(),
			money(100), money(8), money(10), money(118))
		assert.ErrorIs(t, err, shared.ErrSessionInconsistent)
	})

	t.Run("rejects wrong step", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		err := session.AttachCheckout("chk-1", testAddress(), testAddress(),
			money(100), money(8), money(10), money(118))
		assert.Error(t, err)
	})
}

func TestSessionRecordAttempt(t *testing.T) {
	t.Run("appends failures and counts retries", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")

		session.RecordAttempt(StepCartCreation, "network timeout", true)
		session.RecordAttempt(StepCartCreation, "network timeout", true)

		assert.Len(t, session.ErrorLog, 2)
		assert.Equal(t, 2, session.RetryCount)
		assert.Equal(t, "network timeout", session.LastError)
		assert.True(t, session.ErrorLog[0].Retryable)
	})

	t.Run("caps retry count at the policy maximum", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		for i := 0; i < 6; i++ {
			session.RecordAttempt(StepCartCreation, "503 service unavailable", true)
		}
		assert.Equal(t, MaxRetries, session.RetryCount)
		assert.Len(t, session.ErrorLog, 6)
	})

	t.Run("non-retryable failures do not bump the counter", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		session.RecordAttempt(StepAddressEntry, "invalid postal code", false)
		assert.Equal(t, 0, session.RetryCount)
		assert.Len(t, session.ErrorLog, 1)
	})
}

func TestSessionCanRetry(t *testing.T) {
	t.Run("true for a failed session with budget left", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		session.RecordAttempt(StepCartCreation, "network timeout", true)
		require.NoError(t, session.Fail("network timeout"))

		assert.True(t, session.CanRetry())
	})

	t.Run("false when the budget is exhausted", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		for i := 0; i < MaxRetries+1; i++ {
			session.RecordAttempt(StepCartCreation, "503 service unavailable", true)
		}
		require.NoError(t, session.Fail("503 service unavailable"))

		assert.False(t, session.CanRetry())
	})

	t.Run("false for a permanent failure", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		session.RecordAttempt(StepCartCreation, "product discontinued", false)
		require.NoError(t, session.Fail("product discontinued"))

		assert.False(t, session.CanRetry())
	})

	t.Run("false while the session is not failed", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		session.RecordAttempt(StepCartCreation, "network timeout", true)

		assert.False(t, session.CanRetry())
	})
}

func TestSessionLifecycle(t *testing.T) {
	completeToPayment := func(t *testing.T) *Session {
		t.Helper()
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		require.NoError(t, session.AttachCart("cart-1"))
		m := valueobject.NewMoneyFromFloat
		require.NoError(t, session.AttachCheckout("chk-1", testAddress(), testAddress(),
			m(100, "USD"), m(8, "USD"), m(10, "USD"), m(118, "USD")))
		return session
	}

	t.Run("complete links order and sets confirmation", func(t *testing.T) {
		session := completeToPayment(t)
		orderID := uuid.New()

		require.NoError(t, session.Complete(orderID))

		assert.Equal(t, SessionStatusCompleted, session.Status)
		assert.Equal(t, StepConfirmation, session.Step)
		require.NotNil(t, session.OrderID)
		assert.Equal(t, orderID, *session.OrderID)
		assert.NotNil(t, session.CompletedAt)
	})

	t.Run("complete requires payment step", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		assert.Error(t, session.Complete(uuid.New()))
	})

	t.Run("fail then resume", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		require.NoError(t, session.Fail("network timeout"))
		assert.Equal(t, SessionStatusFailed, session.Status)

		require.NoError(t, session.ResumeProcessing())
		assert.Equal(t, SessionStatusProcessing, session.Status)
	})

	t.Run("abandon is idempotent", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		require.NoError(t, session.Abandon())
		require.NoError(t, session.Abandon())
		assert.Equal(t, SessionStatusAbandoned, session.Status)
		assert.NotNil(t, session.AbandonedAt)
	})

	t.Run("completed session cannot be abandoned", func(t *testing.T) {
		session := completeToPayment(t)
		require.NoError(t, session.Complete(uuid.New()))
		assert.Error(t, session.Abandon())
	})

	t.Run("expiry check", func(t *testing.T) {
		session, _ := NewSession(uuid.New(), nil, nil, testLines(), "k")
		assert.False(t, session.IsExpired(time.Now()))
		assert.True(t, session.IsExpired(time.Now().Add(SessionTTL+time.Minute)))
	})
}

func TestStepTransitions(t *testing.T) {
	tests := []struct {
		from    Step
		to      Step
		allowed bool
	}{
		{StepCartCreation, StepAddressEntry, true},
		{StepAddressEntry, StepPayment, true},
		{StepPayment, StepConfirmation, true},
		{StepCartCreation, StepPayment, false},
		{StepAddressEntry, StepCartCreation, false},
		{StepConfirmation, StepCartCreation, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
