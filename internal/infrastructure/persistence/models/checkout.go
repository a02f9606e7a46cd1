package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

// CartLinesJSON stores the session's cart lines as a json column
type CartLinesJSON []checkout.CartLine

func (l CartLinesJSON) Value() (driver.Value, error) { return jsonValue([]checkout.CartLine(l)) }
func (l *CartLinesJSON) Scan(value interface{}) error {
	return jsonScan(value, (*[]checkout.CartLine)(l))
}

// ErrorLogJSON stores the session's error log as a json column
type ErrorLogJSON []checkout.ErrorLogEntry

func (l ErrorLogJSON) Value() (driver.Value, error) { return jsonValue([]checkout.ErrorLogEntry(l)) }
func (l *ErrorLogJSON) Scan(value interface{}) error {
	return jsonScan(value, (*[]checkout.ErrorLogEntry)(l))
}

// AddressJSON stores an address snapshot as a json column
type AddressJSON valueobject.Address

func (a AddressJSON) Value() (driver.Value, error) { return jsonValue(valueobject.Address(a)) }
func (a *AddressJSON) Scan(value interface{}) error {
	return jsonScan(value, (*valueobject.Address)(a))
}

// CheckoutSessionModel is the checkout_sessions row
type CheckoutSessionModel struct {
	VersionedModel
	UserID         string  `gorm:"type:uuid;not null;index"`
	OrganizationID *string `gorm:"type:uuid"`
	LocationID     *string `gorm:"type:uuid"`

	RemoteCartID     string `gorm:"size:128"`
	RemoteCheckoutID string `gorm:"size:128"`

	Status string `gorm:"size:32;not null;index"`
	Step   string `gorm:"size:32;not null"`

	Lines           CartLinesJSON `gorm:"type:jsonb"`
	ShippingAddress *AddressJSON  `gorm:"type:jsonb"`
	BillingAddress  *AddressJSON  `gorm:"type:jsonb"`

	Subtotal decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Tax      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Shipping decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency string          `gorm:"size:8;not null;default:'USD'"`

	ErrorLog   ErrorLogJSON `gorm:"type:jsonb"`
	RetryCount int          `gorm:"not null;default:0"`
	LastError  string       `gorm:"type:text"`

	IdempotencyKey string `gorm:"size:128;uniqueIndex"`

	ExpiresAt   time.Time `gorm:"not null;index"`
	CompletedAt *time.Time
	AbandonedAt *time.Time

	OrderID *string `gorm:"type:uuid"`
}

// TableName sets the table name
func (CheckoutSessionModel) TableName() string {
	return "checkout_sessions"
}

// FromDomain fills the model from the aggregate
func (m *CheckoutSessionModel) FromDomain(s *checkout.Session) {
	m.ID = s.ID.String()
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
	m.Version = s.Version
	m.UserID = s.UserID.String()
	m.OrganizationID = uuidToString(s.OrganizationID)
	m.LocationID = uuidToString(s.LocationID)
	m.RemoteCartID = s.RemoteCartID
	m.RemoteCheckoutID = s.RemoteCheckoutID
	m.Status = s.Status.String()
	m.Step = s.Step.String()
	m.Lines = CartLinesJSON(s.Lines)
	if s.ShippingAddress != nil {
		addr := AddressJSON(*s.ShippingAddress)
		m.ShippingAddress = &addr
	}
	if s.BillingAddress != nil {
		addr := AddressJSON(*s.BillingAddress)
		m.BillingAddress = &addr
	}
	m.Subtotal = s.Subtotal.Amount
	m.Tax = s.Tax.Amount
	m.Shipping = s.Shipping.Amount
	m.Total = s.Total.Amount
	m.Currency = s.Total.Currency
	m.ErrorLog = ErrorLogJSON(s.ErrorLog)
	m.RetryCount = s.RetryCount
	m.LastError = s.LastError
	m.IdempotencyKey = s.IdempotencyKey
	m.ExpiresAt = s.ExpiresAt
	m.CompletedAt = s.CompletedAt
	m.AbandonedAt = s.AbandonedAt
	m.OrderID = uuidToString(s.OrderID)
}

// ToDomain rebuilds the aggregate from the row
func (m *CheckoutSessionModel) ToDomain() (*checkout.Session, error) {
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
	orderID, err := stringToUUID(m.OrderID)
	if err != nil {
		return nil, err
	}

	s := &checkout.Session{
		UserID:           userID,
		OrganizationID:   orgID,
		LocationID:       locationID,
		RemoteCartID:     m.RemoteCartID,
		RemoteCheckoutID: m.RemoteCheckoutID,
		Status:           checkout.SessionStatus(m.Status),
		Step:             checkout.Step(m.Step),
		Lines:            []checkout.CartLine(m.Lines),
		Subtotal:         valueobject.NewMoney(m.Subtotal, m.Currency),
		Tax:              valueobject.NewMoney(m.Tax, m.Currency),
		Shipping:         valueobject.NewMoney(m.Shipping, m.Currency),
		Total:            valueobject.NewMoney(m.Total, m.Currency),
		ErrorLog:         []checkout.ErrorLogEntry(m.ErrorLog),
		RetryCount:       m.RetryCount,
		LastError:        m.LastError,
		IdempotencyKey:   m.IdempotencyKey,
		ExpiresAt:        m.ExpiresAt,
		CompletedAt:      m.CompletedAt,
		AbandonedAt:      m.AbandonedAt,
		OrderID:          orderID,
	}
	s.BaseAggregateRoot = shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: id, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
	if m.ShippingAddress != nil {
		addr := valueobject.Address(*m.ShippingAddress)
		s.ShippingAddress = &addr
	}
	if m.BillingAddress != nil {
		addr := valueobject.Address(*m.BillingAddress)
		s.BillingAddress = &addr
	}
	return s, nil
}

func uuidToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func stringToUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
