// Package partner holds the sales organization model used to attribute
// orders to sales reps for commission purposes.
package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/portal/backend/internal/domain/shared"
)

// Organization is a buying organization. House accounts are owned directly
// and never earn a rep commission.
type Organization struct {
	shared.BaseEntity
	Name           string
	IsHouseAccount bool
	DefaultRepID   *uuid.UUID
}

// SalesRep is an individual rep who can be credited with orders
type SalesRep struct {
	shared.BaseEntity
	Name           string
	Email          string
	OrganizationID uuid.UUID
	Active         bool
}

// Repository reads the sales organization data
type Repository interface {
	FindOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindActiveReps(ctx context.Context, organizationID uuid.UUID) ([]*SalesRep, error)
}

// ResolveRep picks the rep to credit for an organization's order:
// the organization's default rep if set and active, otherwise the first
// active rep. House accounts and organizations with no active reps get
// no attribution.
func ResolveRep(ctx context.Context, repo Repository, organizationID uuid.UUID) (*uuid.UUID, error) {
	org, err := repo.FindOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if org.IsHouseAccount {
		return nil, nil
	}

	reps, err := repo.FindActiveReps(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if len(reps) == 0 {
		return nil, nil
	}

	if org.DefaultRepID != nil {
		for _, rep := range reps {
			if rep.ID == *org.DefaultRepID {
				id := rep.ID
				return &id, nil
			}
		}
	}
	id := reps[0].ID
	return &id, nil
}
