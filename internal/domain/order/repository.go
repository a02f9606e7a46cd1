package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/portal/backend/internal/domain/shared"
)

// Repository persists order aggregates
type Repository interface {
	Save(ctx context.Context, o *Order) error
	// SaveWithLock persists the order only if its version has not changed,
	// returning CONCURRENT_MODIFICATION otherwise.
	SaveWithLock(ctx context.Context, o *Order) error
	// SaveSplit persists the repriced original and the new backorder order
	// in a single transaction so a split is all or nothing.
	SaveSplit(ctx context.Context, original, backorder *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	// FindFamily returns the family root and every order split off it,
	// oldest first.
	FindFamily(ctx context.Context, rootID uuid.UUID) ([]*Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*Order, int64, error)
}
