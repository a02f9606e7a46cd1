package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/persistence/models"
)

// SessionRepository is the gorm-backed checkout session store
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates the session repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save inserts or updates the session unconditionally
func (r *SessionRepository) Save(ctx context.Context, session *checkout.Session) error {
	var m models.CheckoutSessionModel
	m.FromDomain(session)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SaveWithLock updates the session only if the stored version still matches,
// then bumps the version. Lost races surface as CONCURRENT_MODIFICATION.
func (r *SessionRepository) SaveWithLock(ctx context.Context, session *checkout.Session) error {
	var m models.CheckoutSessionModel
	m.FromDomain(session)
	currentVersion := m.Version
	m.Version = currentVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.CheckoutSessionModel{}).
		Where("id = ? AND version = ?", m.ID, currentVersion).
		Select("*").
		Updates(&m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	session.IncrementVersion()
	return nil
}

// FindByID loads one session
func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	var m models.CheckoutSessionModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}

// FindByUser lists the user's sessions, newest first
func (r *SessionRepository) FindByUser(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*checkout.Session, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CheckoutSessionModel{}).
		Where("user_id = ?", userID.String())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CheckoutSessionModel
	err := query.Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	sessions := make([]*checkout.Session, 0, len(rows))
	for i := range rows {
		session, convErr := rows[i].ToDomain()
		if convErr != nil {
			return nil, 0, convErr
		}
		sessions = append(sessions, session)
	}
	return sessions, total, nil
}

// FindResumable lists non-terminal, unexpired sessions for the user
func (r *SessionRepository) FindResumable(ctx context.Context, userID uuid.UUID, now time.Time) ([]*checkout.Session, error) {
	var rows []models.CheckoutSessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ? AND expires_at > ?",
			userID.String(),
			[]string{
				checkout.SessionStatusPending.String(),
				checkout.SessionStatusProcessing.String(),
				checkout.SessionStatusFailed.String(),
			},
			now).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*checkout.Session, 0, len(rows))
	for i := range rows {
		session, convErr := rows[i].ToDomain()
		if convErr != nil {
			return nil, convErr
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CheckoutSessionModel{}, "id = ?", id.String()).Error
}
