package order

import (
	"github.com/google/uuid"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// Event types for the order aggregate
const (
	EventOrderCreated      = "order.created"
	EventPaymentAuthorized = "order.payment_authorized"
	EventPaymentCaptured   = "order.payment_captured"
	EventOrderSplit        = "order.split"
)

// OrderCreatedEvent fires when a new order is created
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	Number string
	UserID uuid.UUID
}

func NewOrderCreatedEvent(orderID uuid.UUID, number string, userID uuid.UUID) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCreated, orderID),
		Number:          number,
		UserID:          userID,
	}
}

// PaymentAuthorizedEvent fires when a payment authorization is recorded
type PaymentAuthorizedEvent struct {
	shared.BaseDomainEvent
	AuthorizationID string
}

func NewPaymentAuthorizedEvent(orderID uuid.UUID, authorizationID string) *PaymentAuthorizedEvent {
	return &PaymentAuthorizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentAuthorized, orderID),
		AuthorizationID: authorizationID,
	}
}

// PaymentCapturedEvent fires when an authorized payment is settled
type PaymentCapturedEvent struct {
	shared.BaseDomainEvent
	Amount valueobject.Money
}

func NewPaymentCapturedEvent(orderID uuid.UUID, amount valueobject.Money) *PaymentCapturedEvent {
	return &PaymentCapturedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentCaptured, orderID),
		Amount:          amount,
	}
}

// OrderSplitEvent fires on the original order when a backorder is carved out
type OrderSplitEvent struct {
	shared.BaseDomainEvent
	BackorderID uuid.UUID
}

func NewOrderSplitEvent(orderID, backorderID uuid.UUID) *OrderSplitEvent {
	return &OrderSplitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderSplit, orderID),
		BackorderID:     backorderID,
	}
}
