package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relove/backend/internal/domain/catalog"
	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
)

// sweepLockKey guards against overlapping sweeps across instances
const sweepLockKey = "reconciliation:sweep"

// SweepReport summarizes one sweeper run
type SweepReport struct {
	OrdersScanned int  `json:"orders_scanned"`
	Expired       int  `json:"expired"`
	Recovered     int  `json:"recovered"`
	Skipped       int  `json:"skipped"`
	LockHeld      bool `json:"lock_held"`
}

// SweeperService expires orders whose payment never arrived. Before voiding
// an order it asks the gateway whether the intent was actually captured, so
// a dropped webhook recovers the payment instead of expiring a paid order.
type SweeperService struct {
	orders        order.Repository
	products      catalog.ProductCatalog
	gateway       payment.Gateway
	locks         shared.IdempotencyStore
	pendingExpiry time.Duration
	batchSize     int
	logger        *zap.Logger
}

// NewSweeperService creates a SweeperService
func NewSweeperService(
	orders order.Repository,
	products catalog.ProductCatalog,
	gateway payment.Gateway,
	locks shared.IdempotencyStore,
	pendingExpiry time.Duration,
	batchSize int,
	logger *zap.Logger,
) *SweeperService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SweeperService{
		orders:        orders,
		products:      products,
		gateway:       gateway,
		locks:         locks,
		pendingExpiry: pendingExpiry,
		batchSize:     batchSize,
		logger:        logger,
	}
}

// Run executes one sweep. The scheduler and the admin's manual trigger both
// call this; a run already in progress elsewhere makes it a no-op.
func (s *SweeperService) Run(ctx context.Context) (SweepReport, error) {
	report := SweepReport{}

	acquired, err := s.locks.MarkProcessed(ctx, sweepLockKey, 5*time.Minute)
	if err != nil {
		return report, err
	}
	if !acquired {
		s.logger.Info("sweep already running elsewhere, skipping")
		report.LockHeld = true
		return report, nil
	}
	defer func() {
		if err := s.locks.Unmark(context.WithoutCancel(ctx), sweepLockKey); err != nil {
			s.logger.Warn("failed to release sweep lock", zap.Error(err))
		}
	}()

	cutoff := time.Now().Add(-s.pendingExpiry)
	ids, err := s.orders.FindIDsPendingBefore(ctx, cutoff, s.batchSize)
	if err != nil {
		return report, err
	}
	report.OrdersScanned = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.sweepOrder(ctx, id, &report); err != nil {
			s.logger.Error("sweep failed for order",
				zap.String("order_id", id.String()),
				zap.Error(err))
			report.Skipped++
		}
	}

	s.logger.Info("sweep completed",
		zap.Int("scanned", report.OrdersScanned),
		zap.Int("expired", report.Expired),
		zap.Int("recovered", report.Recovered),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

func (s *SweeperService) sweepOrder(ctx context.Context, orderID uuid.UUID, report *SweepReport) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	// stale scan guard: the order may have been paid or cancelled since
	if o.Status != order.OrderStatusPending || o.PaidAt != nil {
		return nil
	}

	if o.PaymentIntentRef != "" {
		captured, err := s.gateway.VerifyPayment(ctx, o.PaymentIntentRef)
		if err != nil {
			// never expire on gateway uncertainty; try again next sweep
			return err
		}
		if captured {
			if err := o.MarkPaid(o.PaymentIntentRef, time.Now()); err != nil {
				return err
			}
			if err := s.orders.SaveWithLock(ctx, o); err != nil {
				return err
			}
			s.logger.Warn("recovered paid order missed by webhook",
				zap.String("order_code", o.OrderCode))
			report.Recovered++
			return nil
		}
	}

	if err := o.MarkExpired(shared.SystemActor()); err != nil {
		return err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return err
	}
	report.Expired++

	for _, item := range o.Items {
		if err := s.products.MarkActive(ctx, item.ProductID); err != nil {
			s.logger.Warn("failed to relist expired product",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("expired unpaid order",
		zap.String("order_code", o.OrderCode),
		zap.Int("items", len(o.Items)))
	return nil
}
