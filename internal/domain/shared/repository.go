package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base interface for aggregate repositories
type Repository[T AggregateRoot] interface {
	Save(ctx context.Context, aggregate T) error
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Pagination holds paging parameters for list queries
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size, bounded to sane values
func (p Pagination) Limit() int {
	if p.PageSize < 1 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}
