package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/relove/backend/internal/domain/escrow"
	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID, with items and transactions loaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "orders.id = ?", id)
}

// FindByCode finds an order by its order code
func (r *GormOrderRepository) FindByCode(ctx context.Context, orderCode string) (*order.Order, error) {
	return r.findOne(ctx, "orders.order_code = ?", orderCode)
}

// FindByTransactionID finds the order owning the given escrow transaction
func (r *GormOrderRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*order.Order, error) {
	var item order.OrderItem
	if err := r.db.WithContext(ctx).
		Joins("JOIN transactions ON transactions.order_item_id = order_items.id").
		Where("transactions.id = ?", transactionID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, item.OrderID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, cond string, arg interface{}) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Transaction").
		Where(cond, arg).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByBuyer finds orders placed by a buyer, newest first
func (r *GormOrderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	base := r.db.WithContext(ctx).Model(&order.Order{}).Where("buyer_id = ?", buyerID)
	return r.findPage(base, filter)
}

// FindBySeller finds orders containing at least one item sold by the seller
func (r *GormOrderRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	base := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("orders.id IN (?)", r.db.Model(&order.OrderItem{}).
			Select("order_id").
			Where("seller_id = ?", sellerID))
	return r.findPage(base, filter)
}

func (r *GormOrderRepository) findPage(base *gorm.DB, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	base = applyOrderFilters(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	query := base.Session(&gorm.Session{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("Items.Transaction")

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order("created_at DESC")
	}

	var orders []order.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

func applyOrderFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("orders.created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("orders.created_at <= ?", t)
			}
		}
	}
	return query
}

// Create persists a new order aggregate with its items and transactions
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(o).Error; err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].OrderID = o.ID
			if err := tx.Omit("Transaction").Create(&o.Items[i]).Error; err != nil {
				return err
			}
			if err := tx.Create(&o.Items[i].Transaction).Error; err != nil {
				return err
			}
		}
		return r.persistPending(tx, o)
	})
	if err != nil {
		return err
	}
	o.ClearPending()
	return nil
}

// SaveWithLock saves a mutated aggregate under optimistic locking. Buffered
// status history and escrow release rows are inserted in the same database
// transaction so an audit row can never exist without its state change.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	currentVersion := o.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&order.Order{}).
			Where("id = ? AND version = ?", o.ID, currentVersion).
			Updates(map[string]interface{}{
				"total_amount":       o.TotalAmount,
				"status":             o.Status,
				"status_forced":      o.StatusForced,
				"payment_intent_ref": o.PaymentIntentRef,
				"paid_at":            o.PaidAt,
				"shipped_at":         o.ShippedAt,
				"delivered_at":       o.DeliveredAt,
				"version":            currentVersion + 1,
				"updated_at":         now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&order.Order{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		for i := range o.Items {
			item := &o.Items[i]
			item.UpdatedAt = now
			if err := tx.Omit("Transaction").Save(item).Error; err != nil {
				return err
			}
			item.Transaction.UpdatedAt = now
			if err := tx.Save(&item.Transaction).Error; err != nil {
				return err
			}
		}

		return r.persistPending(tx, o)
	})
	if err != nil {
		return err
	}
	o.Version = currentVersion + 1
	o.ClearPending()
	return nil
}

func (r *GormOrderRepository) persistPending(tx *gorm.DB, o *order.Order) error {
	if history := o.PendingHistory(); len(history) > 0 {
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
	}
	if releases := o.PendingReleases(); len(releases) > 0 {
		if err := tx.Create(&releases).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindIDsPendingBefore returns IDs of unpaid pending orders created before the cutoff
func (r *GormOrderRepository) FindIDsPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("status = ? AND paid_at IS NULL AND created_at < ?", order.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindIDsWithEscrowDue returns IDs of orders holding at least one undisputed
// escrow transaction whose release window has elapsed
func (r *GormOrderRepository) FindIDsWithEscrowDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&order.OrderItem{}).
		Distinct("order_items.order_id").
		Joins("JOIN transactions ON transactions.order_item_id = order_items.id").
		Where("transactions.escrow_status = ? AND transactions.dispute_open = ? AND transactions.release_due_at <= ?",
			escrow.StatusAwaitingRelease, false, now).
		Limit(limit).
		Pluck("order_items.order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindIDsWithTransferFailed returns IDs of orders with a failed seller payout
func (r *GormOrderRepository) FindIDsWithTransferFailed(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&order.OrderItem{}).
		Distinct("order_items.order_id").
		Joins("JOIN transactions ON transactions.order_item_id = order_items.id").
		Where("transactions.escrow_status = ?", escrow.StatusTransferFailed).
		Limit(limit).
		Pluck("order_items.order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
