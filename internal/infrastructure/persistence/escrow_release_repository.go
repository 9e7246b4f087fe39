package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/relove/backend/internal/domain/escrow"
)

// GormEscrowReleaseRepository reads the escrow release audit log. Rows are
// inserted by the order repository in the same transaction as the aggregate
// save, so this repository only queries.
type GormEscrowReleaseRepository struct {
	db *gorm.DB
}

// NewGormEscrowReleaseRepository creates a new GormEscrowReleaseRepository
func NewGormEscrowReleaseRepository(db *gorm.DB) *GormEscrowReleaseRepository {
	return &GormEscrowReleaseRepository{db: db}
}

// ListByItem returns release rows for an order item, oldest first
func (r *GormEscrowReleaseRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]escrow.Release, error) {
	var rows []escrow.Release
	if err := r.db.WithContext(ctx).
		Where("order_item_id = ?", itemID).
		Order("released_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Ensure GormEscrowReleaseRepository implements escrow.ReleaseRepository
var _ escrow.ReleaseRepository = (*GormEscrowReleaseRepository)(nil)
