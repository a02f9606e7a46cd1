package models

import (
	"github.com/google/uuid"

	"github.com/portal/backend/internal/domain/partner"
	"github.com/portal/backend/internal/domain/shared"
)

// OrganizationModel is the organizations row
type OrganizationModel struct {
	BaseModel
	Name           string  `gorm:"size:255;not null"`
	IsHouseAccount bool    `gorm:"not null;default:false"`
	DefaultRepID   *string `gorm:"type:uuid"`
}

func (OrganizationModel) TableName() string {
	return "organizations"
}

func (m *OrganizationModel) FromDomain(o *partner.Organization) {
	m.ID = o.ID.String()
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Name = o.Name
	m.IsHouseAccount = o.IsHouseAccount
	m.DefaultRepID = uuidToString(o.DefaultRepID)
}

func (m *OrganizationModel) ToDomain() (*partner.Organization, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	defaultRep, err := stringToUUID(m.DefaultRepID)
	if err != nil {
		return nil, err
	}
	return &partner.Organization{
		BaseEntity:     shared.BaseEntity{ID: id, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Name:           m.Name,
		IsHouseAccount: m.IsHouseAccount,
		DefaultRepID:   defaultRep,
	}, nil
}

// SalesRepModel is the sales_reps row
type SalesRepModel struct {
	BaseModel
	Name           string `gorm:"size:255;not null"`
	Email          string `gorm:"size:255"`
	OrganizationID string `gorm:"type:uuid;not null;index"`
	Active         bool   `gorm:"not null;default:true"`
}

func (SalesRepModel) TableName() string {
	return "sales_reps"
}

func (m *SalesRepModel) FromDomain(r *partner.SalesRep) {
	m.ID = r.ID.String()
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
	m.Name = r.Name
	m.Email = r.Email
	m.OrganizationID = r.OrganizationID.String()
	m.Active = r.Active
}

func (m *SalesRepModel) ToDomain() (*partner.SalesRep, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	orgID, err := uuid.Parse(m.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &partner.SalesRep{
		BaseEntity:     shared.BaseEntity{ID: id, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Name:           m.Name,
		Email:          m.Email,
		OrganizationID: orgID,
		Active:         m.Active,
	}, nil
}
