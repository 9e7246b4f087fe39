package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/relove/backend/internal/domain/shared"
)

// Repository provides access to order aggregates. Loads always include
// items and their transactions; SaveWithLock enforces optimistic locking on
// the aggregate version and persists buffered history and release rows in
// the same database transaction.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByCode(ctx context.Context, orderCode string) (*Order, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Order, error)
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	Create(ctx context.Context, o *Order) error
	SaveWithLock(ctx context.Context, o *Order) error

	// Scan queries used by the schedulers. They return IDs only so each
	// aggregate can be reloaded and saved under its own lock.
	FindIDsPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
	FindIDsWithEscrowDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	FindIDsWithTransferFailed(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// StatusHistoryRepository reads the append-only item transition audit log
type StatusHistoryRepository interface {
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]StatusHistory, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]StatusHistory, error)
}
