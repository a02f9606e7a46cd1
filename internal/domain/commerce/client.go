// Package commerce defines the outbound port to the external commerce
// platform. The checkout flow drives the platform through three calls:
// cart creation, checkout creation and order creation.
package commerce

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// CartItem is one line sent to the platform when creating a cart
type CartItem struct {
	ProductID int64
	VariantID *int64
	Quantity  int
}

// CreateCartRequest asks the platform to open a new cart
type CreateCartRequest struct {
	Items []CartItem
}

// Cart is the platform's view of a created cart
type Cart struct {
	ID       string
	Subtotal decimal.Decimal
	Currency string
}

// CreateCheckoutRequest attaches addresses to a cart and prices it
type CreateCheckoutRequest struct {
	CartID          string
	Email           string
	ShippingAddress valueobject.Address
	BillingAddress  valueobject.Address
}

// Checkout is the platform's priced checkout for a cart
type Checkout struct {
	ID       string
	CartID   string
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Currency string
}

// CreateOrderRequest converts an authorized checkout into a platform order
type CreateOrderRequest struct {
	CheckoutID      string
	AuthorizationID string
}

// Order is the platform's confirmation of a placed order
type Order struct {
	ID            string
	CheckoutID    string
	Number        string
	Total         decimal.Decimal
	Currency      string
	PaymentStatus string
}

// Client is the outbound interface to the commerce platform
type Client interface {
	CreateCart(ctx context.Context, req CreateCartRequest) (*Cart, error)
	CreateCheckout(ctx context.Context, req CreateCheckoutRequest) (*Checkout, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
}
