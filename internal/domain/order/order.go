package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusBackorder  OrderStatus = "backorder"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusBackorder, OrderStatusRefunded:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus represents the payment state of an order. It only moves
// forward: none -> authorized -> captured.
type PaymentStatus string

const (
	PaymentStatusNone       PaymentStatus = "none"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusCaptured   PaymentStatus = "captured"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusNone, PaymentStatusAuthorized, PaymentStatusCaptured:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether moving from s to target is allowed
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusNone:
		return target == PaymentStatusAuthorized
	case PaymentStatusAuthorized:
		return target == PaymentStatusCaptured
	}
	return false
}

// OrderType distinguishes original orders from the halves of a split
type OrderType string

const (
	OrderTypeNormal    OrderType = "normal"
	OrderTypePartial   OrderType = "partial"
	OrderTypeBackorder OrderType = "backorder"
)

func (t OrderType) String() string {
	return string(t)
}

// OrderItem is one purchased line on an order
type OrderItem struct {
	ID        uuid.UUID        `json:"id"`
	ProductID int64            `json:"product_id"`
	VariantID *int64           `json:"variant_id,omitempty"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// LineTotal returns unit price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// BackorderSpec names a product and the quantity of it that is backordered.
// A spec without a variant matches every line of that product.
type BackorderSpec struct {
	ProductID int64
	VariantID *int64
	Quantity  int
}

// Order is the order aggregate created at the end of checkout. Orders form
// families: a split produces a backorder order that points back at its
// parent, and all members share the family root in ParentOrderID.
type Order struct {
	shared.BaseAggregateRoot

	Number         string
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	LocationID     *uuid.UUID
	SessionID      *uuid.UUID
	SalesRepID     *uuid.UUID

	RemoteOrderID string

	Status        OrderStatus
	PaymentStatus PaymentStatus
	OrderType     OrderType

	AuthorizationID string

	Items []OrderItem

	Subtotal valueobject.Money
	Tax      valueobject.Money
	Shipping valueobject.Money
	Total    valueobject.Money

	ShippingAddress *valueobject.Address
	BillingAddress  *valueobject.Address

	ParentOrderID    *uuid.UUID
	SplitFromOrderID *uuid.UUID

	CapturedAt *time.Time
}

// NewOrder creates a pending order with no payment recorded yet
func NewOrder(number string, userID uuid.UUID, items []OrderItem, subtotal, tax, shipping, total valueobject.Money) (*Order, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "order number is required")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "user id is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "order must contain at least one item")
	}
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", "item quantity must be positive")
		}
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		UserID:            userID,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusNone,
		OrderType:         OrderTypeNormal,
		Items:             items,
		Subtotal:          subtotal,
		Tax:               tax,
		Shipping:          shipping,
		Total:             total,
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o.ID, number, userID))
	return o, nil
}

// Authorize records a successful payment authorization
func (o *Order) Authorize(authorizationID string) error {
	if authorizationID == "" {
		return shared.NewDomainError("INVALID_INPUT", "authorization id is required")
	}
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusAuthorized) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("cannot authorize payment in status %s", o.PaymentStatus))
	}
	o.PaymentStatus = PaymentStatusAuthorized
	o.AuthorizationID = authorizationID
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPaymentAuthorizedEvent(o.ID, authorizationID))
	return nil
}

// Capture settles an authorized payment. Capturing an already captured
// order is a no-op so shipment-triggered captures can be replayed safely.
func (o *Order) Capture() error {
	if o.PaymentStatus == PaymentStatusCaptured {
		return nil
	}
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusCaptured) {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("cannot capture payment in status %s", o.PaymentStatus))
	}
	now := time.Now()
	o.PaymentStatus = PaymentStatusCaptured
	o.CapturedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewPaymentCapturedEvent(o.ID, o.Total))
	return nil
}

// MarkProcessing moves a pending order into fulfillment
func (o *Order) MarkProcessing() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("cannot start processing an order in status %s", o.Status))
	}
	o.Status = OrderStatusProcessing
	o.UpdatedAt = time.Now()
	return nil
}

// familyRoot returns the id that identifies this order's family
func (o *Order) familyRoot() uuid.UUID {
	if o.ParentOrderID != nil {
		return *o.ParentOrderID
	}
	return o.ID
}

// SplitByBackorder carves the backordered quantities out of this order into
// a new backorder order and reprices both halves. Money is conserved: the
// two halves always sum to the original subtotal, tax, shipping and total.
// The receiver keeps the available quantities and becomes a partial order.
func (o *Order) SplitByBackorder(specs []BackorderSpec, numberFn func() string) (*Order, error) {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusRefunded {
		return nil, shared.NewDomainError("INVALID_STATE_TRANSITION",
			fmt.Sprintf("cannot split an order in status %s", o.Status))
	}
	if len(specs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "no backordered items specified")
	}

	productQty := make(map[int64]int, len(specs))
	variantQty := make(map[[2]int64]int)
	for _, spec := range specs {
		if spec.Quantity <= 0 {
			continue
		}
		if spec.VariantID != nil {
			variantQty[[2]int64{spec.ProductID, *spec.VariantID}] += spec.Quantity
		} else {
			productQty[spec.ProductID] += spec.Quantity
		}
	}
	requested := func(item OrderItem) int {
		if item.VariantID != nil {
			if qty, ok := variantQty[[2]int64{item.ProductID, *item.VariantID}]; ok {
				return qty
			}
		}
		return productQty[item.ProductID]
	}

	var available, backordered []OrderItem
	anyMoved := false
	for _, item := range o.Items {
		qty := requested(item)
		if qty <= 0 {
			available = append(available, item)
			continue
		}
		if qty > item.Quantity {
			qty = item.Quantity
		}
		anyMoved = true
		moved := item
		moved.Quantity = qty
		backordered = append(backordered, moved)
		if remaining := item.Quantity - qty; remaining > 0 {
			kept := item
			kept.Quantity = remaining
			available = append(available, kept)
		}
	}
	if !anyMoved {
		return nil, shared.NewDomainError("INVALID_INPUT", "no valid backorder quantities specified")
	}
	if len(available) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "cannot backorder the entire order")
	}

	currency := o.Subtotal.Currency
	sumLines := func(items []OrderItem) decimal.Decimal {
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.LineTotal())
		}
		return total
	}

	availSubtotal := sumLines(available)
	backSubtotal := o.Subtotal.Amount.Sub(availSubtotal)

	// Tax and shipping are apportioned by subtotal share. The available half
	// takes the rounded share and the backorder half takes the remainder so
	// the two always add back up to the original amounts.
	ratio := decimal.Zero
	if !o.Subtotal.Amount.IsZero() {
		ratio = availSubtotal.Div(o.Subtotal.Amount)
	}
	availTax := o.Tax.Amount.Mul(ratio).Round(2)
	backTax := o.Tax.Amount.Sub(availTax)
	availShipping := o.Shipping.Amount.Mul(ratio).Round(2)
	backShipping := o.Shipping.Amount.Sub(availShipping)

	back := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            numberFn(),
		UserID:            o.UserID,
		OrganizationID:    o.OrganizationID,
		LocationID:        o.LocationID,
		SessionID:         o.SessionID,
		SalesRepID:        o.SalesRepID,
		Status:            OrderStatusBackorder,
		PaymentStatus:     o.PaymentStatus,
		OrderType:         OrderTypeBackorder,
		AuthorizationID:   o.AuthorizationID,
		Items:             backordered,
		Subtotal:          valueobject.NewMoney(backSubtotal, currency),
		Tax:               valueobject.NewMoney(backTax, currency),
		Shipping:          valueobject.NewMoney(backShipping, currency),
		Total:             valueobject.NewMoney(backSubtotal.Add(backTax).Add(backShipping), currency),
		ShippingAddress:   o.ShippingAddress,
		BillingAddress:    o.BillingAddress,
		CapturedAt:        o.CapturedAt,
	}
	root := o.familyRoot()
	splitFrom := o.ID
	back.ParentOrderID = &root
	back.SplitFromOrderID = &splitFrom

	o.Items = available
	o.OrderType = OrderTypePartial
	o.Subtotal = valueobject.NewMoney(availSubtotal, currency)
	o.Tax = valueobject.NewMoney(availTax, currency)
	o.Shipping = valueobject.NewMoney(availShipping, currency)
	o.Total = valueobject.NewMoney(availSubtotal.Add(availTax).Add(availShipping), currency)
	o.UpdatedAt = time.Now()

	o.AddDomainEvent(NewOrderSplitEvent(o.ID, back.ID))
	return back, nil
}
