package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	domain "github.com/portal/backend/internal/domain/commerce"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// StorefrontAdapter calls the platform's storefront REST API. It implements
// the domain commerce.Client interface. Transport failures and 5xx answers
// come back with their original wording so the retry classifier can see them.
type StorefrontAdapter struct {
	config     StorefrontConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewStorefrontAdapter creates the adapter
func NewStorefrontAdapter(config StorefrontConfig, logger *zap.Logger) (*StorefrontAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &StorefrontAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// CreateCart opens a cart on the platform
func (a *StorefrontAdapter) CreateCart(ctx context.Context, req domain.CreateCartRequest) (*domain.Cart, error) {
	payload := createCartPayload{Items: make([]cartItemPayload, len(req.Items))}
	for i, item := range req.Items {
		payload.Items[i] = cartItemPayload{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}

	var resp cartResponse
	if err := a.post(ctx, "/api/v1/carts", payload, &resp); err != nil {
		return nil, err
	}
	return &domain.Cart{ID: resp.ID, Subtotal: resp.Subtotal, Currency: resp.Currency}, nil
}

// CreateCheckout attaches addresses to a cart and prices it
func (a *StorefrontAdapter) CreateCheckout(ctx context.Context, req domain.CreateCheckoutRequest) (*domain.Checkout, error) {
	payload := createCheckoutPayload{
		CartID:          req.CartID,
		Email:           req.Email,
		ShippingAddress: toAddressPayload(req.ShippingAddress),
		BillingAddress:  toAddressPayload(req.BillingAddress),
	}

	var resp checkoutResponse
	if err := a.post(ctx, "/api/v1/checkouts", payload, &resp); err != nil {
		return nil, err
	}
	return &domain.Checkout{
		ID:       resp.ID,
		CartID:   resp.CartID,
		Subtotal: resp.Subtotal,
		Tax:      resp.Tax,
		Shipping: resp.Shipping,
		Total:    resp.Total,
		Currency: resp.Currency,
	}, nil
}

// CreateOrder converts an authorized checkout into a platform order
func (a *StorefrontAdapter) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	payload := createOrderPayload{
		CheckoutID:      req.CheckoutID,
		AuthorizationID: req.AuthorizationID,
	}

	var resp orderResponse
	if err := a.post(ctx, "/api/v1/orders", payload, &resp); err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:            resp.ID,
		CheckoutID:    resp.CheckoutID,
		Number:        resp.Number,
		Total:         resp.Total,
		Currency:      resp.Currency,
		PaymentStatus: resp.PaymentStatus,
	}, nil
}

func (a *StorefrontAdapter) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("storefront %s: %d %s: %s", path, resp.StatusCode, http.StatusText(resp.StatusCode), apiErr.Message)
		}
		return fmt.Errorf("storefront %s: %d %s", path, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toAddressPayload(a valueobject.Address) addressPayload {
	return addressPayload{
		Name:       a.Name,
		Phone:      a.Phone,
		Street1:    a.Street1,
		Street2:    a.Street2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
