package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// SessionStatus represents the lifecycle state of a checkout session
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// IsValid checks if the session status is valid
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusPending, SessionStatusProcessing, SessionStatusCompleted,
		SessionStatusFailed, SessionStatusAbandoned:
		return true
	}
	return false
}

func (s SessionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further progress is possible
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}

// Step represents the checkout flow step the session has reached
type Step string

const (
	StepCartCreation Step = "cart_creation"
	StepAddressEntry Step = "address_entry"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// IsValid checks if the step is valid
func (s Step) IsValid() bool {
	switch s {
	case StepCartCreation, StepAddressEntry, StepPayment, StepConfirmation:
		return true
	}
	return false
}

func (s Step) String() string {
	return string(s)
}

// Next returns the step that follows s in the checkout flow
func (s Step) Next() (Step, bool) {
	switch s {
	case StepCartCreation:
		return StepAddressEntry, true
	case StepAddressEntry:
		return StepPayment, true
	case StepPayment:
		return StepConfirmation, true
	}
	return "", false
}

// CanTransitionTo checks whether advancing from s to target is allowed.
// Steps only move forward, one at a time.
func (s Step) CanTransitionTo(target Step) bool {
	next, ok := s.Next()
	return ok && next == target
}

// CartLine is a single product line captured in the session
type CartLine struct {
	ProductID int64            `json:"product_id"`
	VariantID *int64           `json:"variant_id,omitempty"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	ImageURL  string           `json:"image_url,omitempty"`
}

// LineTotal returns unit price times quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ErrorLogEntry records one failed attempt against the commerce platform
type ErrorLogEntry struct {
	At        time.Time `json:"at"`
	Step      Step      `json:"step"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

// SessionTTL is how long a session stays resumable after creation.
const SessionTTL = 24 * time.Hour

// Session is the checkout session aggregate. It tracks the buyer's progress
// through the checkout flow and every failed platform call along the way so
// an interrupted checkout can be diagnosed and resumed.
type Session struct {
	shared.BaseAggregateRoot

	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	LocationID     *uuid.UUID

	RemoteCartID     string
	RemoteCheckoutID string

	Status SessionStatus
	Step   Step

	Lines           []CartLine
	ShippingAddress *valueobject.Address
	BillingAddress  *valueobject.Address

	Subtotal valueobject.Money
	Tax      valueobject.Money
	Shipping valueobject.Money
	Total    valueobject.Money

	ErrorLog   []ErrorLogEntry
	RetryCount int
	LastError  string

	IdempotencyKey string

	ExpiresAt   time.Time
	CompletedAt *time.Time
	AbandonedAt *time.Time

	OrderID *uuid.UUID
}

// NewSession creates a pending session at the cart creation step
func NewSession(userID uuid.UUID, orgID, locationID *uuid.UUID, lines []CartLine, idempotencyKey string) (*Session, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "user id is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "cart must contain at least one line")
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "line quantity must be positive")
		}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	s := &Session{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		OrganizationID:    orgID,
		LocationID:        locationID,
		Status:            SessionStatusPending,
		Step:              StepCartCreation,
		Lines:             lines,
		IdempotencyKey:    idempotencyKey,
		Subtotal:          valueobject.NewMoney(subtotal, valueobject.DefaultCurrency),
		Tax:               valueobject.ZeroMoney(valueobject.DefaultCurrency),
		Shipping:          valueobject.ZeroMoney(valueobject.DefaultCurrency),
		Total:             valueobject.NewMoney(subtotal, valueobject.DefaultCurrency),
	}
	s.ExpiresAt = s.CreatedAt.Add(SessionTTL)
	s.AddDomainEvent(NewSessionStartedEvent(s.ID, userID))
	return s, nil
}

// EstimateTotals prices the session from its line subtotal. These figures
// stand until the platform prices the checkout in AttachCheckout.
func (s *Session) EstimateTotals(tax, shipping valueobject.Money) {
	s.Tax = tax
	s.Shipping = shipping
	s.Total = valueobject.NewMoney(
		s.Subtotal.Amount.Add(tax.Amount).Add(shipping.Amount), s.Subtotal.Currency)
	s.UpdatedAt = time.Now()
}

// CanRetry reports whether the failure the session is stuck on is worth
// re-dispatching.
func (s *Session) CanRetry() bool {
	if s.Status != SessionStatusFailed || len(s.ErrorLog) == 0 {
		return false
	}
	last := s.ErrorLog[len(s.ErrorLog)-1]
	return last.Retryable && s.RetryCount < MaxRetries
}

// IsExpired reports whether the session passed its TTL at the given time
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// AttachCart records the remote cart created on the commerce platform and
// advances the session to the address entry step.
func (s *Session) AttachCart(remoteCartID string) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cannot attach cart to a "+s.Status.String()+" session")
	}
	if remoteCartID == "" {
		return shared.NewDomainError("INVALID_INPUT", "remote cart id is required")
	}
	if s.Step != StepCartCreation {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cart already attached, session is at step "+s.Step.String())
	}
	s.RemoteCartID = remoteCartID
	s.Step = StepAddressEntry
	s.Status = SessionStatusProcessing
	s.LastError = ""
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewStepAdvancedEvent(s.ID, StepCartCreation, StepAddressEntry))
	return nil
}

// AttachCheckout records the remote checkout, the address snapshots and the
// computed totals, and advances the session to the payment step.
func (s *Session) AttachCheckout(remoteCheckoutID string, shipping, billing valueobject.Address, subtotal, tax, shippingCost, total valueobject.Money) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cannot attach checkout to a "+s.Status.String()+" session")
	}
	if remoteCheckoutID == "" {
		return shared.NewDomainError("INVALID_INPUT", "remote checkout id is required")
	}
	if s.RemoteCartID == "" {
		return shared.ErrSessionInconsistent
	}
	if s.Step != StepAddressEntry {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"session is at step "+s.Step.String()+", expected "+StepAddressEntry.String())
	}
	s.RemoteCheckoutID = remoteCheckoutID
	s.ShippingAddress = &shipping
	s.BillingAddress = &billing
	s.Subtotal = subtotal
	s.Tax = tax
	s.Shipping = shippingCost
	s.Total = total
	s.Step = StepPayment
	s.LastError = ""
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewStepAdvancedEvent(s.ID, StepAddressEntry, StepPayment))
	return nil
}

// RecordAttempt logs one failed platform call. Retryable failures also bump
// the retry counter up to the policy maximum; the caller checks CanRetry
// before re-dispatching.
func (s *Session) RecordAttempt(step Step, message string, retryable bool) {
	s.ErrorLog = append(s.ErrorLog, ErrorLogEntry{
		At:        time.Now(),
		Step:      step,
		Message:   message,
		Retryable: retryable,
	})
	s.LastError = message
	if retryable && s.RetryCount < MaxRetries {
		s.RetryCount++
	}
	s.UpdatedAt = time.Now()
}

// Fail marks the session failed. The session stays resumable until it expires.
func (s *Session) Fail(message string) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cannot fail a "+s.Status.String()+" session")
	}
	s.Status = SessionStatusFailed
	s.LastError = message
	s.UpdatedAt = time.Now()
	s.AddDomainEvent(NewSessionFailedEvent(s.ID, s.Step, message))
	return nil
}

// ResumeProcessing moves a failed session back to processing for a recovery
// attempt.
func (s *Session) ResumeProcessing() error {
	if s.Status != SessionStatusFailed && s.Status != SessionStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cannot resume a "+s.Status.String()+" session")
	}
	s.Status = SessionStatusProcessing
	s.UpdatedAt = time.Now()
	return nil
}

// Complete finishes the session at confirmation, linking the created order.
func (s *Session) Complete(orderID uuid.UUID) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cannot complete a "+s.Status.String()+" session")
	}
	if s.Step != StepPayment {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"session is at step "+s.Step.String()+", expected "+StepPayment.String())
	}
	now := time.Now()
	s.Step = StepConfirmation
	s.Status = SessionStatusCompleted
	s.OrderID = &orderID
	s.CompletedAt = &now
	s.LastError = ""
	s.UpdatedAt = now
	s.AddDomainEvent(NewSessionCompletedEvent(s.ID, orderID))
	return nil
}

// Abandon terminates the session without an order. Completed sessions cannot
// be abandoned.
func (s *Session) Abandon() error {
	if s.Status == SessionStatusCompleted {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			"cannot abandon a completed session")
	}
	if s.Status == SessionStatusAbandoned {
		return nil
	}
	now := time.Now()
	s.Status = SessionStatusAbandoned
	s.AbandonedAt = &now
	s.UpdatedAt = now
	s.AddDomainEvent(NewSessionAbandonedEvent(s.ID, s.Step))
	return nil
}
