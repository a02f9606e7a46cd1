package checkout

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/commerce"
	"github.com/portal/backend/internal/domain/order"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// OrderCreator converts a completed checkout session into a local order
type OrderCreator interface {
	CreateFromSession(ctx context.Context, session *checkout.Session, remoteOrderID, authorizationID string) (*order.Order, error)
}

// PricingPolicy fills in tax and shipping when the platform does not
// price them itself.
type PricingPolicy struct {
	TaxRate      decimal.Decimal
	FlatShipping decimal.Decimal
}

// OrchestratorService drives a buyer through the checkout flow, calling the
// commerce platform at each step under the retry policy and recording every
// failed attempt on the session.
type OrchestratorService struct {
	sessions    checkout.SessionRepository
	platform    commerce.Client
	orders      OrderCreator
	executor    *RetryExecutor
	idempotency shared.IdempotencyStore
	pricing     PricingPolicy
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewOrchestratorService creates the checkout orchestrator
func NewOrchestratorService(
	sessions checkout.SessionRepository,
	platform commerce.Client,
	orders OrderCreator,
	executor *RetryExecutor,
	idempotency shared.IdempotencyStore,
	pricing PricingPolicy,
	logger *zap.Logger,
) *OrchestratorService {
	return &OrchestratorService{
		sessions:    sessions,
		platform:    platform,
		orders:      orders,
		executor:    executor,
		idempotency: idempotency,
		pricing:     pricing,
		validate:    validator.New(),
		logger:      logger,
	}
}

// CreateSession starts a checkout session and creates the remote cart.
// Platform failures do not produce an error return: they are recorded on the
// session, which is persisted and returned so the caller can inspect and
// later recover it.
func (s *OrchestratorService) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_INPUT", "invalid session input", err)
	}
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = uuid.NewString()
	}

	acquired, err := s.idempotency.TryAcquire(ctx, "checkout:session:"+input.IdempotencyKey, checkout.SessionTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.ErrDuplicateRequest
	}

	lines := make([]checkout.CartLine, len(input.Lines))
	for i, l := range input.Lines {
		lines[i] = checkout.CartLine{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			ImageURL:  l.ImageURL,
		}
	}

	session, err := checkout.NewSession(input.UserID, input.OrganizationID, input.LocationID, lines, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	currency := session.Subtotal.Currency
	session.EstimateTotals(
		valueobject.NewMoney(session.Subtotal.Amount.Mul(s.pricing.TaxRate).Round(2), currency),
		valueobject.NewMoney(s.pricing.FlatShipping, currency))

	s.createCart(ctx, session)

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("checkout session created",
		zap.String("session_id", session.ID.String()),
		zap.String("status", session.Status.String()),
		zap.String("step", session.Step.String()))
	return NewSessionResult(session), nil
}

// createCart runs the cart creation step under the retry policy, mutating
// the session with the outcome.
func (s *OrchestratorService) createCart(ctx context.Context, session *checkout.Session) {
	items := make([]commerce.CartItem, len(session.Lines))
	for i, l := range session.Lines {
		items[i] = commerce.CartItem{ProductID: l.ProductID, VariantID: l.VariantID, Quantity: l.Quantity}
	}

	var cart *commerce.Cart
	failures, err := s.executor.Execute(ctx, "create_cart", func(ctx context.Context) error {
		created, callErr := s.platform.CreateCart(ctx, commerce.CreateCartRequest{Items: items})
		if callErr != nil {
			return callErr
		}
		cart = created
		return nil
	})
	for _, f := range failures {
		session.RecordAttempt(checkout.StepCartCreation, f.Err.Error(), f.Retryable)
	}
	if err != nil {
		_ = session.Fail(err.Error())
		return
	}
	_ = session.AttachCart(cart.ID)
}

// RetryCart re-runs cart creation for a session stuck at the first step.
// The platform outcome lands on the session either way.
func (s *OrchestratorService) RetryCart(ctx context.Context, sessionID uuid.UUID) (*SessionResult, error) {
	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != checkout.StepCartCreation {
		return nil, shared.NewDomainError("INVALID_STATE_TRANSITION",
			"session is at step "+session.Step.String()+", expected "+checkout.StepCartCreation.String())
	}
	if session.Status == checkout.SessionStatusFailed {
		if err := session.ResumeProcessing(); err != nil {
			return nil, err
		}
	}

	s.createCart(ctx, session)

	if err := s.sessions.SaveWithLock(ctx, session); err != nil {
		return nil, err
	}
	return NewSessionResult(session), nil
}

// AddAddresses submits the buyer's addresses, prices the checkout on the
// platform and advances the session to the payment step.
func (s *OrchestratorService) AddAddresses(ctx context.Context, sessionID uuid.UUID, input AddAddressesInput) (*SessionResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_INPUT", "invalid address input", err)
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_INPUT", "invalid shipping address", err)
	}
	billing := input.BillingAddress
	if billing.IsEmpty() {
		billing = input.ShippingAddress
	}

	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != checkout.StepAddressEntry {
		return nil, shared.NewDomainError("INVALID_STATE_TRANSITION",
			"session is at step "+session.Step.String()+", expected "+checkout.StepAddressEntry.String())
	}
	if session.RemoteCartID == "" {
		// A session at address entry without a cart cannot make progress.
		return nil, shared.ErrSessionInconsistent
	}
	if session.Status == checkout.SessionStatusFailed {
		if err := session.ResumeProcessing(); err != nil {
			return nil, err
		}
	}

	var priced *commerce.Checkout
	failures, callErr := s.executor.Execute(ctx, "create_checkout", func(ctx context.Context) error {
		created, err := s.platform.CreateCheckout(ctx, commerce.CreateCheckoutRequest{
			CartID:          session.RemoteCartID,
			Email:           input.Email,
			ShippingAddress: input.ShippingAddress,
			BillingAddress:  billing,
		})
		if err != nil {
			return err
		}
		priced = created
		return nil
	})
	for _, f := range failures {
		session.RecordAttempt(checkout.StepAddressEntry, f.Err.Error(), f.Retryable)
	}
	if callErr != nil {
		_ = session.Fail(callErr.Error())
		if err := s.sessions.SaveWithLock(ctx, session); err != nil {
			return nil, err
		}
		return NewSessionResult(session), nil
	}

	currency := priced.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	subtotal := priced.Subtotal
	tax := priced.Tax
	shipping := priced.Shipping
	total := priced.Total
	if tax.IsZero() && shipping.IsZero() {
		tax = subtotal.Mul(s.pricing.TaxRate).Round(2)
		shipping = s.pricing.FlatShipping
		total = subtotal.Add(tax).Add(shipping)
	}

	if err := session.AttachCheckout(priced.ID, input.ShippingAddress, billing,
		valueobject.NewMoney(subtotal, currency),
		valueobject.NewMoney(tax, currency),
		valueobject.NewMoney(shipping, currency),
		valueobject.NewMoney(total, currency)); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveWithLock(ctx, session); err != nil {
		return nil, err
	}
	return NewSessionResult(session), nil
}

// ProcessPayment records the widget's authorization, places the platform
// order and completes the session. The order creation call is not retried:
// replaying it against the platform could double-charge the buyer.
func (s *OrchestratorService) ProcessPayment(ctx context.Context, sessionID uuid.UUID, input ProcessPaymentInput) (*SessionResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_INPUT", "invalid payment input", err)
	}

	session, err := s.loadActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != checkout.StepPayment {
		return nil, shared.NewDomainError("INVALID_STATE_TRANSITION",
			"session is at step "+session.Step.String()+", expected "+checkout.StepPayment.String())
	}
	if session.RemoteCheckoutID == "" {
		return nil, shared.ErrSessionInconsistent
	}
	if session.Status == checkout.SessionStatusFailed {
		if err := session.ResumeProcessing(); err != nil {
			return nil, err
		}
	}

	placed, callErr := s.platform.CreateOrder(ctx, commerce.CreateOrderRequest{
		CheckoutID:      session.RemoteCheckoutID,
		AuthorizationID: input.AuthorizationID,
	})
	if callErr != nil {
		session.RecordAttempt(checkout.StepPayment, callErr.Error(), checkout.IsRetryable(callErr))
		_ = session.Fail(callErr.Error())
		if err := s.sessions.SaveWithLock(ctx, session); err != nil {
			return nil, err
		}
		return NewSessionResult(session), nil
	}

	localOrder, err := s.orders.CreateFromSession(ctx, session, placed.ID, input.AuthorizationID)
	if err != nil {
		return nil, err
	}
	if err := session.Complete(localOrder.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveWithLock(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("checkout completed",
		zap.String("session_id", session.ID.String()),
		zap.String("order_id", localOrder.ID.String()))
	return NewSessionResult(session), nil
}

// GetSession returns the current state of a session
func (s *OrchestratorService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionResult, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewSessionResult(session), nil
}

// ListSessions returns the user's sessions, newest first
func (s *OrchestratorService) ListSessions(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*SessionResult, int64, error) {
	sessions, total, err := s.sessions.FindByUser(ctx, userID, page)
	if err != nil {
		return nil, 0, err
	}
	results := make([]*SessionResult, len(sessions))
	for i, session := range sessions {
		results[i] = NewSessionResult(session)
	}
	return results, total, nil
}

// AbandonSession closes a session without an order
func (s *OrchestratorService) AbandonSession(ctx context.Context, sessionID uuid.UUID) (*SessionResult, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Abandon(); err != nil {
		return nil, err
	}
	if err := s.sessions.SaveWithLock(ctx, session); err != nil {
		return nil, err
	}
	if session.IdempotencyKey != "" {
		_ = s.idempotency.Release(ctx, "checkout:session:"+session.IdempotencyKey)
	}
	return NewSessionResult(session), nil
}

// loadActive fetches a session and enforces the TTL: expired sessions are
// abandoned on access and reported as expired.
func (s *OrchestratorService) loadActive(ctx context.Context, sessionID uuid.UUID) (*checkout.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE_TRANSITION",
			"session is "+session.Status.String())
	}
	if session.IsExpired(time.Now()) {
		if abandonErr := session.Abandon(); abandonErr == nil {
			_ = s.sessions.SaveWithLock(ctx, session)
		}
		return nil, shared.ErrSessionExpired
	}
	return session, nil
}
