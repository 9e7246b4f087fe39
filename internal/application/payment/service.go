package payment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
)

// ConfirmationResponse reports the payment state of an order after a
// confirmation attempt
type ConfirmationResponse struct {
	OrderCode string     `json:"order_code"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// ConfirmationService turns gateway payment outcomes into order transitions.
// Two paths converge on the same apply step: the client calling back after
// checkout, and the asynchronous gateway webhook. Both are safe under
// duplicate delivery.
type ConfirmationService struct {
	orders         order.Repository
	gateway        payment.Gateway
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewConfirmationService creates a ConfirmationService
func NewConfirmationService(
	orders order.Repository,
	gateway payment.Gateway,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		orders:      orders,
		gateway:     gateway,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ConfirmationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ConfirmPayment is the client-initiated confirmation path. The gateway is
// asked directly whether the intent was captured, so a lost webhook does not
// strand a paid order.
func (s *ConfirmationService) ConfirmPayment(ctx context.Context, actor shared.Actor, orderCode string) (*ConfirmationResponse, error) {
	o, err := s.orders.FindByCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.IsSystem() && !(actor.Role == shared.RoleBuyer && actor.ID == o.BuyerID) {
		return nil, shared.ErrUnauthorized
	}
	if o.PaidAt != nil {
		return toConfirmation(o), nil
	}

	captured, err := s.gateway.VerifyPayment(ctx, o.PaymentIntentRef)
	if err != nil {
		return nil, err
	}
	if !captured {
		return nil, shared.NewDomainError(shared.ErrCodePaymentGatewayFailure, "payment has not been captured by the gateway")
	}

	if err := s.applyPaid(ctx, o, o.PaymentIntentRef, time.Now()); err != nil {
		return nil, err
	}
	return toConfirmation(o), nil
}

// HandleWebhook processes a raw gateway notification. Signature failures are
// rejected; duplicate deliveries and events for unknown orders are
// acknowledged without effect so the gateway stops retrying them.
func (s *ConfirmationService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	if s.idemConfig.Enabled && event.ProviderTxnID != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.ProviderTxnID, s.idemConfig.TTL)
		if err != nil {
			// fail closed: without the marker a retry could double-process
			return err
		}
		if !fresh {
			s.logger.Debug("duplicate webhook delivery ignored",
				zap.String("provider_txn_id", event.ProviderTxnID),
				zap.String("order_code", event.OrderCode))
			return nil
		}
	}

	switch event.Status {
	case payment.EventStatusPaid:
		return s.handlePaid(ctx, event)
	case payment.EventStatusFailed, payment.EventStatusCancelled:
		// the order stays pending; the sweeper expires it if no retry succeeds
		s.logger.Info("payment did not complete",
			zap.String("order_code", event.OrderCode),
			zap.String("status", event.Status.String()))
		return nil
	default:
		s.logger.Warn("unhandled webhook status",
			zap.String("order_code", event.OrderCode),
			zap.String("status", event.Status.String()))
		return nil
	}
}

func (s *ConfirmationService) handlePaid(ctx context.Context, event *payment.WebhookEvent) error {
	o, err := s.orders.FindByCode(ctx, event.OrderCode)
	if err != nil {
		if isNotFound(err) {
			// acknowledged so the gateway stops retrying; the money trail
			// still exists on the gateway side for reconciliation
			s.logger.Error("webhook references unknown order",
				zap.String("order_code", event.OrderCode),
				zap.String("provider_txn_id", event.ProviderTxnID))
			return nil
		}
		s.unmark(ctx, event.ProviderTxnID)
		return err
	}

	if !event.Amount.IsZero() && !event.Amount.Equal(o.TotalAmount) {
		return shared.NewConsistencyError("captured-amount",
			"gateway reports "+event.Amount.String()+" captured for an order totalling "+o.TotalAmount.String())
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	if err := s.applyPaid(ctx, o, event.ProviderTxnID, occurredAt); err != nil {
		s.unmark(ctx, event.ProviderTxnID)
		return err
	}
	return nil
}

func (s *ConfirmationService) applyPaid(ctx context.Context, o *order.Order, providerTxnRef string, paidAt time.Time) error {
	if err := o.MarkPaid(providerTxnRef, paidAt); err != nil {
		return err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return err
	}

	s.logger.Info("order payment confirmed",
		zap.String("order_code", o.OrderCode),
		zap.String("provider_txn_ref", providerTxnRef))

	if s.eventPublisher != nil {
		for _, event := range o.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("failed to publish domain event",
					zap.String("event_type", event.EventType()),
					zap.Error(err))
			}
		}
	}
	o.ClearDomainEvents()
	return nil
}

// unmark releases the idempotency marker so the gateway's redelivery can
// retry a transient failure
func (s *ConfirmationService) unmark(ctx context.Context, providerTxnID string) {
	if !s.idemConfig.Enabled || providerTxnID == "" {
		return
	}
	if err := s.idempotency.Unmark(ctx, providerTxnID); err != nil {
		s.logger.Error("failed to release idempotency marker",
			zap.String("provider_txn_id", providerTxnID),
			zap.Error(err))
	}
}

func isNotFound(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == shared.ErrCodeNotFound
}

func toConfirmation(o *order.Order) *ConfirmationResponse {
	return &ConfirmationResponse{
		OrderCode: o.OrderCode,
		Status:    o.Status.String(),
		PaidAt:    o.PaidAt,
	}
}
