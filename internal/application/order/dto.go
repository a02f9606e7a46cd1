package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/order"
)

// BackorderItemInput names a product and the backordered quantity
type BackorderItemInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// SplitOrderInput asks for a backorder split of an order
type SplitOrderInput struct {
	Items []BackorderItemInput `json:"items" validate:"dive"`
}

// OrderItemResult is one line in an order view
type OrderItemResult struct {
	ID        uuid.UUID       `json:"id"`
	ProductID int64           `json:"product_id"`
	VariantID *int64          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// OrderResult is the order view returned to callers
type OrderResult struct {
	OrderID          uuid.UUID           `json:"order_id"`
	Number           string              `json:"number"`
	UserID           uuid.UUID           `json:"user_id"`
	SalesRepID       *uuid.UUID          `json:"sales_rep_id,omitempty"`
	Status           order.OrderStatus   `json:"status"`
	PaymentStatus    order.PaymentStatus `json:"payment_status"`
	OrderType        order.OrderType     `json:"order_type"`
	Items            []OrderItemResult   `json:"items"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Tax              decimal.Decimal     `json:"tax"`
	Shipping         decimal.Decimal     `json:"shipping"`
	Total            decimal.Decimal     `json:"total"`
	Currency         string              `json:"currency"`
	ParentOrderID    *uuid.UUID          `json:"parent_order_id,omitempty"`
	SplitFromOrderID *uuid.UUID          `json:"split_from_order_id,omitempty"`
	CapturedAt       *time.Time          `json:"captured_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// NewOrderResult maps an order aggregate to its result view
func NewOrderResult(o *order.Order) *OrderResult {
	items := make([]OrderItemResult, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResult{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return &OrderResult{
		OrderID:          o.ID,
		Number:           o.Number,
		UserID:           o.UserID,
		SalesRepID:       o.SalesRepID,
		Status:           o.Status,
		PaymentStatus:    o.PaymentStatus,
		OrderType:        o.OrderType,
		Items:            items,
		Subtotal:         o.Subtotal.Amount,
		Tax:              o.Tax.Amount,
		Shipping:         o.Shipping.Amount,
		Total:            o.Total.Amount,
		Currency:         o.Total.Currency,
		ParentOrderID:    o.ParentOrderID,
		SplitFromOrderID: o.SplitFromOrderID,
		CapturedAt:       o.CapturedAt,
		CreatedAt:        o.CreatedAt,
	}
}

// SplitResult returns both halves of a completed split
type SplitResult struct {
	Original  *OrderResult `json:"original"`
	Backorder *OrderResult `json:"backorder"`
}
