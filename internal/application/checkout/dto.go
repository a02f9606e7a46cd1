package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// CartLineInput is one product line submitted at session creation
type CartLineInput struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	VariantID *int64           `json:"variant_id,omitempty"`
	Name      string           `json:"name" validate:"required"`
	UnitPrice decimal.Decimal  `json:"unit_price" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	ImageURL  string           `json:"image_url,omitempty"`
}

// CreateSessionInput starts a checkout session and creates a remote cart
type CreateSessionInput struct {
	UserID         uuid.UUID       `json:"user_id" validate:"required"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	LocationID     *uuid.UUID      `json:"location_id,omitempty"`
	Lines          []CartLineInput `json:"lines" validate:"required,min=1,dive"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// AddAddressesInput submits the buyer's addresses for checkout pricing
type AddAddressesInput struct {
	Email           string              `json:"email" validate:"required,email"`
	ShippingAddress valueobject.Address `json:"shipping_address" validate:"required"`
	BillingAddress  valueobject.Address `json:"billing_address"`
}

// ProcessPaymentInput carries the authorization returned by the hosted
// payment widget
type ProcessPaymentInput struct {
	AuthorizationID string `json:"authorization_id" validate:"required"`
}

// SessionResult is the session state returned to callers after each step
type SessionResult struct {
	SessionID  uuid.UUID                `json:"session_id"`
	Status     checkout.SessionStatus   `json:"status"`
	Step       checkout.Step            `json:"step"`
	CartID     string                   `json:"cart_id,omitempty"`
	CheckoutID string                   `json:"checkout_id,omitempty"`
	RetryCount int                      `json:"retry_count"`
	CanRetry   bool                     `json:"can_retry"`
	LastError  string                   `json:"last_error,omitempty"`
	ErrorLog   []checkout.ErrorLogEntry `json:"error_log,omitempty"`
	Subtotal   decimal.Decimal          `json:"subtotal"`
	Tax        decimal.Decimal          `json:"tax"`
	Shipping   decimal.Decimal          `json:"shipping"`
	Total      decimal.Decimal          `json:"total"`
	Currency   string                   `json:"currency"`
	OrderID    *uuid.UUID               `json:"order_id,omitempty"`
}

// NewSessionResult maps a session aggregate to its result view
func NewSessionResult(s *checkout.Session) *SessionResult {
	return &SessionResult{
		SessionID:  s.ID,
		Status:     s.Status,
		Step:       s.Step,
		CartID:     s.RemoteCartID,
		CheckoutID: s.RemoteCheckoutID,
		RetryCount: s.RetryCount,
		CanRetry:   s.CanRetry(),
		LastError:  s.LastError,
		ErrorLog:   s.ErrorLog,
		Subtotal:   s.Subtotal.Amount,
		Tax:        s.Tax.Amount,
		Shipping:   s.Shipping.Amount,
		Total:      s.Total.Amount,
		Currency:   s.Total.Currency,
		OrderID:    s.OrderID,
	}
}
