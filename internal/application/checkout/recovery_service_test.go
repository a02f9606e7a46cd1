package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/commerce"
	"github.com/portal/backend/internal/domain/shared"
)

func TestRecover(t *testing.T) {
	ctx := context.Background()

	failedAtCartCreation := func(t *testing.T, env *testEnv) uuid.UUID {
		t.Helper()
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(nil, errors.New("503 service unavailable")).Times(4)
		result, err := env.service.CreateSession(ctx, sessionInput())
		require.NoError(t, err)
		require.Equal(t, checkout.SessionStatusFailed, result.Status)
		return result.SessionID
	}

	t.Run("retries cart creation for a session stuck there", func(t *testing.T) {
		env := newTestEnv(t)
		id := failedAtCartCreation(t, env)
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(&commerce.Cart{ID: "cart-2"}, nil).Once()

		result, err := env.recovery.Recover(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, ActionCartRetried, result.Action)
		assert.Equal(t, checkout.StepAddressEntry, result.Session.Step)
		assert.Equal(t, checkout.SessionStatusProcessing, result.Session.Status)
		// The old failures stay on the log for diagnosis.
		assert.Len(t, result.Session.ErrorLog, 4)
	})

	t.Run("failed address entry asks the buyer to resubmit", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(&commerce.Cart{ID: "cart-1"}, nil).Once()
		env.client.On("CreateCheckout", mock.Anything, mock.Anything).
			Return(nil, errors.New("invalid address: state required")).Once()

		created, err := env.service.CreateSession(ctx, sessionInput())
		require.NoError(t, err)
		failed, err := env.service.AddAddresses(ctx, created.SessionID, addressInput())
		require.NoError(t, err)
		require.Equal(t, checkout.SessionStatusFailed, failed.Status)

		result, err := env.recovery.Recover(ctx, created.SessionID)
		require.NoError(t, err)
		assert.Equal(t, ActionResubmitAddresses, result.Action)
		assert.Equal(t, checkout.SessionStatusProcessing, result.Session.Status)
	})

	t.Run("completed session reports its order", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(&commerce.Cart{ID: "cart-1"}, nil).Once()
		env.client.On("CreateCheckout", mock.Anything, mock.Anything).
			Return(&commerce.Checkout{
				ID:       "chk-1",
				Subtotal: decimal.NewFromInt(100),
				Tax:      decimal.NewFromInt(8),
				Shipping: decimal.NewFromInt(10),
				Total:    decimal.NewFromInt(118),
				Currency: "USD",
			}, nil).Once()
		env.client.On("CreateOrder", mock.Anything, mock.Anything).
			Return(&commerce.Order{ID: "remote-1"}, nil).Once()

		created, err := env.service.CreateSession(ctx, sessionInput())
		require.NoError(t, err)
		_, err = env.service.AddAddresses(ctx, created.SessionID, addressInput())
		require.NoError(t, err)
		_, err = env.service.ProcessPayment(ctx, created.SessionID, ProcessPaymentInput{AuthorizationID: "auth-1"})
		require.NoError(t, err)

		result, err := env.recovery.Recover(ctx, created.SessionID)
		require.NoError(t, err)
		assert.Equal(t, ActionAlreadyCompleted, result.Action)
		assert.NotNil(t, result.Session.OrderID)
	})

	t.Run("session observed at confirmation has nothing to resume", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(&commerce.Cart{ID: "cart-1"}, nil).Once()
		created, err := env.service.CreateSession(ctx, sessionInput())
		require.NoError(t, err)

		session, _ := env.repo.FindByID(ctx, created.SessionID)
		session.Step = checkout.StepConfirmation

		result, err := env.recovery.Recover(ctx, created.SessionID)
		require.NoError(t, err)
		assert.Equal(t, ActionAlreadyCompleted, result.Action)
	})

	t.Run("session missing its cart past cart creation is failed for good", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(&commerce.Cart{ID: "cart-1"}, nil).Once()
		created, err := env.service.CreateSession(ctx, sessionInput())
		require.NoError(t, err)

		session, _ := env.repo.FindByID(ctx, created.SessionID)
		session.RemoteCartID = ""

		_, err = env.recovery.Recover(ctx, created.SessionID)
		assert.ErrorIs(t, err, shared.ErrSessionInconsistent)

		session, _ = env.repo.FindByID(ctx, created.SessionID)
		assert.Equal(t, checkout.SessionStatusFailed, session.Status)
	})

	t.Run("expired session is abandoned", func(t *testing.T) {
		env := newTestEnv(t)
		id := failedAtCartCreation(t, env)

		session, _ := env.repo.FindByID(ctx, id)
		session.ExpiresAt = time.Now().Add(-time.Minute)

		_, err := env.recovery.Recover(ctx, id)
		assert.ErrorIs(t, err, shared.ErrSessionExpired)

		session, _ = env.repo.FindByID(ctx, id)
		assert.Equal(t, checkout.SessionStatusAbandoned, session.Status)
	})

	t.Run("abandoned session cannot be recovered", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.On("CreateCart", mock.Anything, mock.Anything).
			Return(&commerce.Cart{ID: "cart-1"}, nil).Once()
		created, err := env.service.CreateSession(ctx, sessionInput())
		require.NoError(t, err)
		_, err = env.service.AbandonSession(ctx, created.SessionID)
		require.NoError(t, err)

		_, err = env.recovery.Recover(ctx, created.SessionID)
		assert.True(t, shared.IsDomainError(err, "INVALID_STATE_TRANSITION"))
	})
}
