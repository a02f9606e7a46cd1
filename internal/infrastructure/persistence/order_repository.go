package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/portal/backend/internal/domain/order"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/persistence/models"
)

// OrderRepository is the gorm-backed order store
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save inserts or updates the order unconditionally
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	var m models.OrderModel
	m.FromDomain(o)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SaveWithLock updates the order only if the stored version still matches
func (r *OrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return saveOrderWithLock(r.db.WithContext(ctx), o)
}

func saveOrderWithLock(tx *gorm.DB, o *order.Order) error {
	var m models.OrderModel
	m.FromDomain(o)
	currentVersion := m.Version
	m.Version = currentVersion + 1

	result := tx.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", m.ID, currentVersion).
		Select("*").
		Updates(&m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	o.IncrementVersion()
	return nil
}

// SaveSplit writes the repriced original and the new backorder in a single
// transaction. The original is guarded by its version so a concurrent edit
// aborts the whole split.
func (r *OrderRepository) SaveSplit(ctx context.Context, original, backorder *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveOrderWithLock(tx, original); err != nil {
			return err
		}
		var m models.OrderModel
		m.FromDomain(backorder)
		return tx.Create(&m).Error
	})
}

// FindByID loads one order
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}

// FindByNumber loads one order by its human readable number
func (r *OrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var m models.OrderModel
	err := r.db.WithContext(ctx).First(&m, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}

// FindFamily returns the family root and every order split off it,
// oldest first
func (r *OrderRepository) FindFamily(ctx context.Context, rootID uuid.UUID) ([]*order.Order, error) {
	var rows []models.OrderModel
	err := r.db.WithContext(ctx).
		Where("id = ? OR parent_order_id = ?", rootID.String(), rootID.String()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		o, convErr := rows[i].ToDomain()
		if convErr != nil {
			return nil, convErr
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// FindByUser lists the user's orders, newest first
func (r *OrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*order.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("user_id = ?", userID.String())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	err := query.Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*order.Order, 0, len(rows))
	for i := range rows {
		o, convErr := rows[i].ToDomain()
		if convErr != nil {
			return nil, 0, convErr
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}
