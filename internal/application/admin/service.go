package admin

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	escrowapp "github.com/relove/backend/internal/application/escrow"
	orderapp "github.com/relove/backend/internal/application/order"
	"github.com/relove/backend/internal/application/reconciliation"
	"github.com/relove/backend/internal/domain/escrow"
	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
)

// ForceStatusRequest is an operator request to override an item status
type ForceStatusRequest struct {
	TargetStatus string `json:"target_status" binding:"required,itemstatus"`
	Notes        string `json:"notes" binding:"required,min=1,max=500"`
	Acknowledged bool   `json:"acknowledged"`
}

// RefundRequest is an operator request to refund a delivered item
type RefundRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReleaseRequest is an operator request to force an escrow release
type ReleaseRequest struct {
	Notes string `json:"notes" binding:"required,min=1,max=500"`
}

// Service bundles the operator-only interventions. Every method re-checks
// the admin role even though the router already gates on it.
type Service struct {
	orders         order.Repository
	history        order.StatusHistoryRepository
	releaseLog     escrow.ReleaseRepository
	gateway        payment.Gateway
	release        *escrowapp.ReleaseService
	sweeper        *reconciliation.SweeperService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates an admin Service
func NewService(
	orders order.Repository,
	history order.StatusHistoryRepository,
	releaseLog escrow.ReleaseRepository,
	gateway payment.Gateway,
	release *escrowapp.ReleaseService,
	sweeper *reconciliation.SweeperService,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:     orders,
		history:    history,
		releaseLog: releaseLog,
		gateway:    gateway,
		release:    release,
		sweeper:    sweeper,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ForceItemStatus overrides an item's status outside the transition table.
// The override is audited as forced and requires explicit acknowledgement.
func (s *Service) ForceItemStatus(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, req ForceStatusRequest) (*orderapp.OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.ForceItemStatus(actor, itemID, order.ItemStatus(req.TargetStatus), req.Notes, req.Acknowledged)
	})
}

// RefundDelivered reverses a delivered item after an upheld dispute. The
// gateway refund runs first; the domain records its reference.
func (s *Service) RefundDelivered(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, req RefundRequest) (*orderapp.OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := itemOf(o, itemID)
	if item == nil {
		return nil, shared.ErrNotFound
	}
	if err := o.CanRefundDelivered(actor, itemID); err != nil {
		return nil, err
	}

	refundRef, err := s.gateway.Refund(ctx, item.Transaction.ProviderTxnRef, item.Transaction.Amount, req.Reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info("refund issued for delivered item",
		zap.String("order_code", o.OrderCode),
		zap.String("item_id", itemID.String()),
		zap.String("refund_ref", refundRef))

	if err := o.RefundDelivered(actor, itemID, req.Reason, refundRef); err != nil {
		s.logger.Error("refund recording failed after gateway refund",
			zap.String("order_code", o.OrderCode),
			zap.String("refund_ref", refundRef),
			zap.Error(err))
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)
	resp := orderapp.ToOrderResponse(o)
	return &resp, nil
}

// ForceReleaseEscrow releases one item's escrow ahead of the dispute window
func (s *Service) ForceReleaseEscrow(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, req ReleaseRequest) error {
	return s.release.ForceRelease(ctx, actor, orderID, itemID, req.Notes)
}

// ResolveDispute lifts a dispute freeze without refunding
func (s *Service) ResolveDispute(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, notes string) (*orderapp.OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.ResolveDispute(actor, itemID, notes)
	})
}

// ItemHistory returns the full transition audit log of one item
func (s *Service) ItemHistory(ctx context.Context, actor shared.Actor, itemID uuid.UUID) ([]orderapp.StatusHistoryResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	rows, err := s.history.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return orderapp.ToStatusHistoryResponses(rows), nil
}

// EscrowReleaseLog returns the immutable escrow release rows of one item
func (s *Service) EscrowReleaseLog(ctx context.Context, actor shared.Actor, itemID uuid.UUID) ([]escrowapp.ReleaseRecord, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrUnauthorized
	}
	rows, err := s.releaseLog.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return escrowapp.ToReleaseRecords(rows), nil
}

// TriggerSweep runs the unpaid-order sweeper on demand. It is the same code
// path the scheduler runs on its interval.
func (s *Service) TriggerSweep(ctx context.Context, actor shared.Actor) (reconciliation.SweepReport, error) {
	if !actor.IsAdmin() {
		return reconciliation.SweepReport{}, shared.ErrUnauthorized
	}
	s.logger.Info("manual sweep triggered", zap.String("admin_id", actor.ID.String()))
	return s.sweeper.Run(ctx)
}

// TriggerReleaseScan runs the escrow release scan on demand
func (s *Service) TriggerReleaseScan(ctx context.Context, actor shared.Actor) (escrowapp.ReleaseReport, error) {
	if !actor.IsAdmin() {
		return escrowapp.ReleaseReport{}, shared.ErrUnauthorized
	}
	s.logger.Info("manual release scan triggered", zap.String("admin_id", actor.ID.String()))
	return s.release.ReleaseDue(ctx)
}

func (s *Service) mutate(ctx context.Context, orderID uuid.UUID, fn func(*order.Order) error) (*orderapp.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)
	resp := orderapp.ToOrderResponse(o)
	return &resp, nil
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
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

func itemOf(o *order.Order, itemID uuid.UUID) *order.OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
