package commerce

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	errMissingBaseURL = errors.New("storefront base url is required")
	errMissingAPIKey  = errors.New("storefront api key is required")
)

// cartItemPayload is one line in a cart creation request
type cartItemPayload struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type createCartPayload struct {
	Items []cartItemPayload `json:"items"`
}

type cartResponse struct {
	ID       string          `json:"id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Currency string          `json:"currency"`
}

// addressPayload is the wire form of a postal address
type addressPayload struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type createCheckoutPayload struct {
	CartID          string         `json:"cart_id"`
	Email           string         `json:"email"`
	ShippingAddress addressPayload `json:"shipping_address"`
	BillingAddress  addressPayload `json:"billing_address"`
}

type checkoutResponse struct {
	ID       string          `json:"id"`
	CartID   string          `json:"cart_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

type createOrderPayload struct {
	CheckoutID      string `json:"checkout_id"`
	AuthorizationID string `json:"authorization_id"`
}

type orderResponse struct {
	ID            string          `json:"id"`
	CheckoutID    string          `json:"checkout_id"`
	Number        string          `json:"number"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentStatus string          `json:"payment_status"`
}

// apiError is the platform's error envelope
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
