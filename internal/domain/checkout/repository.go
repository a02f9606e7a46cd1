package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/portal/backend/internal/domain/shared"
)

// SessionRepository persists checkout sessions
type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	// SaveWithLock persists the session only if its version has not changed,
	// returning CONCURRENT_MODIFICATION otherwise.
	SaveWithLock(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	FindByUser(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*Session, int64, error)
	// FindResumable returns failed or pending sessions for the user that have
	// not yet expired, most recent first.
	FindResumable(ctx context.Context, userID uuid.UUID, now time.Time) ([]*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
