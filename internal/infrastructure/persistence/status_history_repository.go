package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/relove/backend/internal/domain/order"
)

// GormStatusHistoryRepository reads the item transition audit log
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// ListByItem returns the transition history of a single item, oldest first
func (r *GormStatusHistoryRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]order.StatusHistory, error) {
	var rows []order.StatusHistory
	if err := r.db.WithContext(ctx).
		Where("order_item_id = ?", itemID).
		Order("changed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByOrder returns the transition history of every item in an order
func (r *GormStatusHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]order.StatusHistory, error) {
	var rows []order.StatusHistory
	if err := r.db.WithContext(ctx).
		Joins("JOIN order_items ON order_items.id = status_histories.order_item_id").
		Where("order_items.order_id = ?", orderID).
		Order("status_histories.changed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormStatusHistoryRepository implements order.StatusHistoryRepository
var _ order.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)
