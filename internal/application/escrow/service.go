package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relove/backend/internal/domain/catalog"
	"github.com/relove/backend/internal/domain/escrow"
	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
)

// ReleaseReport summarizes one scan of the release scheduler
type ReleaseReport struct {
	OrdersScanned int `json:"orders_scanned"`
	Released      int `json:"released"`
	Transferred   int `json:"transferred"`
	Failed        int `json:"failed"`
	Skipped       int `json:"skipped"`
}

// ReleaseService drives automatic escrow release and seller payouts.
// Each order is reloaded and saved under its own optimistic lock, so a
// conflicting user action simply defers that order to the next scan.
type ReleaseService struct {
	orders         order.Repository
	sellers        catalog.SellerDirectory
	gateway        payment.Gateway
	eventPublisher shared.EventPublisher
	batchSize      int
	logger         *zap.Logger
}

// NewReleaseService creates a ReleaseService
func NewReleaseService(
	orders order.Repository,
	sellers catalog.SellerDirectory,
	gateway payment.Gateway,
	batchSize int,
	logger *zap.Logger,
) *ReleaseService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReleaseService{
		orders:    orders,
		sellers:   sellers,
		gateway:   gateway,
		batchSize: batchSize,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReleaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ReleaseDue releases every escrow hold whose dispute window has elapsed and
// pays the seller share out. Disputed items are left frozen.
func (s *ReleaseService) ReleaseDue(ctx context.Context) (ReleaseReport, error) {
	report := ReleaseReport{}

	ids, err := s.orders.FindIDsWithEscrowDue(ctx, time.Now(), s.batchSize)
	if err != nil {
		return report, err
	}
	report.OrdersScanned = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.processOrder(ctx, id, &report); err != nil {
			// one stuck order must not stall the rest of the batch
			s.logger.Error("escrow release failed for order",
				zap.String("order_id", id.String()),
				zap.Error(err))
			report.Skipped++
		}
	}
	return report, nil
}

// RetryFailedTransfers reattempts payouts that previously failed at the
// gateway. The release itself is never repeated, only the transfer leg.
func (s *ReleaseService) RetryFailedTransfers(ctx context.Context) (ReleaseReport, error) {
	report := ReleaseReport{}

	ids, err := s.orders.FindIDsWithTransferFailed(ctx, s.batchSize)
	if err != nil {
		return report, err
	}
	report.OrdersScanned = len(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		o, err := s.orders.FindByID(ctx, id)
		if err != nil {
			report.Skipped++
			continue
		}
		changed := false
		for i := range o.Items {
			item := &o.Items[i]
			if item.Transaction.EscrowStatus != escrow.StatusTransferFailed {
				continue
			}
			if s.payout(ctx, o, item, &report) {
				changed = true
			}
		}
		if changed {
			if err := s.orders.SaveWithLock(ctx, o); err != nil {
				s.logger.Error("failed to save payout retry",
					zap.String("order_id", id.String()),
					zap.Error(err))
				report.Skipped++
				continue
			}
			s.publishEvents(ctx, o)
		}
	}
	return report, nil
}

// ForceRelease releases one item's escrow ahead of the dispute window on an
// operator's authority and pays the seller out immediately
func (s *ReleaseService) ForceRelease(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, notes string) error {
	if !actor.IsAdmin() {
		return shared.ErrUnauthorized
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := o.ReleaseEscrow(actor, itemID, escrow.ReleaseReasonAdminForced, notes); err != nil {
		return err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return err
	}
	s.publishEvents(ctx, o)

	item := findItem(o, itemID)
	if item == nil {
		return shared.ErrNotFound
	}
	report := ReleaseReport{}
	if !s.payout(ctx, o, item, &report) {
		if err := o.MarkTransferFailed(item.ID, "payout rejected by gateway"); err != nil {
			return err
		}
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return err
	}
	s.publishEvents(ctx, o)
	return nil
}

func (s *ReleaseService) processOrder(ctx context.Context, orderID uuid.UUID, report *ReleaseReport) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	system := shared.SystemActor()
	released := make([]*order.OrderItem, 0, len(o.Items))
	now := time.Now()

	for i := range o.Items {
		item := &o.Items[i]
		txn := item.Transaction
		// re-check state on the fresh load: a dispute or refund may have
		// landed between the scan query and this lock
		if txn.EscrowStatus != escrow.StatusAwaitingRelease || txn.DisputeOpen {
			continue
		}
		if txn.ReleaseDueAt == nil || now.Before(*txn.ReleaseDueAt) {
			continue
		}
		if err := o.ReleaseEscrow(system, item.ID, escrow.ReleaseReasonWindowExpired, ""); err != nil {
			s.logger.Warn("release rejected",
				zap.String("order_id", orderID.String()),
				zap.String("item_id", item.ID.String()),
				zap.Error(err))
			continue
		}
		released = append(released, item)
		report.Released++
	}

	if len(released) == 0 {
		return nil
	}

	// persist the release before moving money so a payout crash cannot
	// lose the audit trail. The save inserts the buffered release ledger
	// rows in the same transaction as the status change.
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return err
	}
	s.publishEvents(ctx, o)

	changed := false
	for _, item := range released {
		if s.payout(ctx, o, item, report) {
			changed = true
		} else {
			cause := "payout rejected by gateway"
			if err := o.MarkTransferFailed(item.ID, cause); err == nil {
				changed = true
			}
		}
	}
	if changed {
		if err := s.orders.SaveWithLock(ctx, o); err != nil {
			return err
		}
		s.publishEvents(ctx, o)
	}
	return nil
}

// payout executes the gateway transfer and marks the item transferred on
// success. Returns false when the transfer did not go through.
func (s *ReleaseService) payout(ctx context.Context, o *order.Order, item *order.OrderItem, report *ReleaseReport) bool {
	accountRef, err := s.sellers.PayoutAccount(ctx, item.SellerID)
	if err != nil {
		s.logger.Error("seller payout account unavailable",
			zap.String("seller_id", item.SellerID.String()),
			zap.Error(err))
		report.Failed++
		return false
	}

	payoutRef, err := s.gateway.PayoutToSeller(ctx, accountRef, item.Transaction.SellerAmount)
	if err != nil {
		s.logger.Error("seller payout failed",
			zap.String("order_code", o.OrderCode),
			zap.String("item_id", item.ID.String()),
			zap.Bool("retryable", payment.IsRetryable(err)),
			zap.Error(err))
		report.Failed++
		return false
	}

	if err := o.MarkTransferred(item.ID, payoutRef); err != nil {
		s.logger.Error("payout succeeded but could not be recorded",
			zap.String("order_code", o.OrderCode),
			zap.String("item_id", item.ID.String()),
			zap.String("payout_ref", payoutRef),
			zap.Error(err))
		report.Failed++
		return false
	}
	report.Transferred++
	return true
}

func findItem(o *order.Order, itemID uuid.UUID) *order.OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

func (s *ReleaseService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		o.ClearDomainEvents()
		return
	}
	for _, event := range o.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	o.ClearDomainEvents()
}
