package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/portal/backend/internal/domain/partner"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/persistence/models"
)

// SalesRepRepository reads the sales organization tables
type SalesRepRepository struct {
	db *gorm.DB
}

// NewSalesRepRepository creates the sales rep repository
func NewSalesRepRepository(db *gorm.DB) *SalesRepRepository {
	return &SalesRepRepository{db: db}
}

// FindOrganization loads one organization
func (r *SalesRepRepository) FindOrganization(ctx context.Context, id uuid.UUID) (*partner.Organization, error) {
	var m models.OrganizationModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}

// FindActiveReps lists the organization's active reps, oldest first so
// attribution fallback is stable
func (r *SalesRepRepository) FindActiveReps(ctx context.Context, organizationID uuid.UUID) ([]*partner.SalesRep, error) {
	var rows []models.SalesRepModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", organizationID.String(), true).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	reps := make([]*partner.SalesRep, 0, len(rows))
	for i := range rows {
		rep, convErr := rows[i].ToDomain()
		if convErr != nil {
			return nil, convErr
		}
		reps = append(reps, rep)
	}
	return reps, nil
}

// SaveOrganization inserts or updates an organization
func (r *SalesRepRepository) SaveOrganization(ctx context.Context, o *partner.Organization) error {
	var m models.OrganizationModel
	m.FromDomain(o)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SaveRep inserts or updates a sales rep
func (r *SalesRepRepository) SaveRep(ctx context.Context, rep *partner.SalesRep) error {
	var m models.SalesRepModel
	m.FromDomain(rep)
	return r.db.WithContext(ctx).Save(&m).Error
}
