package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/order"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// OrderItemsJSON stores the order items as a json column
type OrderItemsJSON []order.OrderItem

func (l OrderItemsJSON) Value() (driver.Value, error) { return jsonValue([]order.OrderItem(l)) }
func (l *OrderItemsJSON) Scan(value interface{}) error {
	return jsonScan(value, (*[]order.OrderItem)(l))
}

// OrderModel is the orders row
type OrderModel struct {
	VersionedModel
	Number         string  `gorm:"size:64;not null;uniqueIndex"`
	UserID         string  `gorm:"type:uuid;not null;index"`
	OrganizationID *string `gorm:"type:uuid;index"`
	LocationID     *string `gorm:"type:uuid"`
	SessionID      *string `gorm:"type:uuid;index"`
	SalesRepID     *string `gorm:"type:uuid;index"`

	RemoteOrderID string `gorm:"size:128"`

	Status        string `gorm:"size:32;not null;index"`
	PaymentStatus string `gorm:"size:32;not null;index"`
	OrderType     string `gorm:"size:32;not null"`

	AuthorizationID string `gorm:"size:128"`

	Items OrderItemsJSON `gorm:"type:jsonb"`

	Subtotal decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Tax      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Shipping decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency string          `gorm:"size:8;not null;default:'USD'"`

	ShippingAddress *AddressJSON `gorm:"type:jsonb"`
	BillingAddress  *AddressJSON `gorm:"type:jsonb"`

	ParentOrderID    *string `gorm:"type:uuid;index"`
	SplitFromOrderID *string `gorm:"type:uuid"`

	CapturedAt *time.Time
}

// TableName sets the table name
func (OrderModel) TableName() string {
	return "orders"
}

// FromDomain fills the model from the aggregate
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID.String()
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Version = o.Version
	m.Number = o.Number
	m.UserID = o.UserID.String()
	m.OrganizationID = uuidToString(o.OrganizationID)
	m.LocationID = uuidToString(o.LocationID)
	m.SessionID = uuidToString(o.SessionID)
	m.SalesRepID = uuidToString(o.SalesRepID)
	m.RemoteOrderID = o.RemoteOrderID
	m.Status = o.Status.String()
	m.PaymentStatus = o.PaymentStatus.String()
	m.OrderType = o.OrderType.String()
	m.AuthorizationID = o.AuthorizationID
	m.Items = OrderItemsJSON(o.Items)
	m.Subtotal = o.Subtotal.Amount
	m.Tax = o.Tax.Amount
	m.Shipping = o.Shipping.Amount
	m.Total = o.Total.Amount
	m.Currency = o.Total.Currency
	if o.ShippingAddress != nil {
		addr := AddressJSON(*o.ShippingAddress)
		m.ShippingAddress = &addr
	}
	if o.BillingAddress != nil {
		addr := AddressJSON(*o.BillingAddress)
		m.BillingAddress = &addr
	}
	m.ParentOrderID = uuidToString(o.ParentOrderID)
	m.SplitFromOrderID = uuidToString(o.SplitFromOrderID)
	m.CapturedAt = o.CapturedAt
}

// ToDomain rebuilds the aggregate from the row
func (m *OrderModel) ToDomain() (*order.Order, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return nil, err
	}
	orgID, err := stringToUUID(m.OrganizationID)
	if err != nil {
		return nil, err
	}
	locationID, err := stringToUUID(m.LocationID)
	if err != nil {
		return nil, err
	}
	sessionID, err := stringToUUID(m.SessionID)
	if err != nil {
		return nil, err
	}
	salesRepID, err := stringToUUID(m.SalesRepID)
	if err != nil {
		return nil, err
	}
	parentID, err := stringToUUID(m.ParentOrderID)
	if err != nil {
		return nil, err
	}
	splitFromID, err := stringToUUID(m.SplitFromOrderID)
	if err != nil {
		return nil, err
	}

	o := &order.Order{
		Number:           m.Number,
		UserID:           userID,
		OrganizationID:   orgID,
		LocationID:       locationID,
		SessionID:        sessionID,
		SalesRepID:       salesRepID,
		RemoteOrderID:    m.RemoteOrderID,
		Status:           order.OrderStatus(m.Status),
		PaymentStatus:    order.PaymentStatus(m.PaymentStatus),
		OrderType:        order.OrderType(m.OrderType),
		AuthorizationID:  m.AuthorizationID,
		Items:            []order.OrderItem(m.Items),
		Subtotal:         valueobject.NewMoney(m.Subtotal, m.Currency),
		Tax:              valueobject.NewMoney(m.Tax, m.Currency),
		Shipping:         valueobject.NewMoney(m.Shipping, m.Currency),
		Total:            valueobject.NewMoney(m.Total, m.Currency),
		ParentOrderID:    parentID,
		SplitFromOrderID: splitFromID,
		CapturedAt:       m.CapturedAt,
	}
	o.BaseAggregateRoot = shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: id, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
	if m.ShippingAddress != nil {
		addr := valueobject.Address(*m.ShippingAddress)
		o.ShippingAddress = &addr
	}
	if m.BillingAddress != nil {
		addr := valueobject.Address(*m.BillingAddress)
		o.BillingAddress = &addr
	}
	return o, nil
}
