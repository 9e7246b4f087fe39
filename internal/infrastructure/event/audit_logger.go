package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/relove/backend/internal/domain/order"
	"github.com/relove/backend/internal/domain/shared"
)

// auditedEventTypes are the lifecycle events worth a structured audit line
var auditedEventTypes = []string{
	order.EventTypeOrderPlaced,
	order.EventTypeOrderPaid,
	order.EventTypeOrderExpired,
	order.EventTypeItemStatusChanged,
	order.EventTypeEscrowReleased,
	order.EventTypeEscrowRefunded,
	order.EventTypePayoutCompleted,
	order.EventTypePayoutFailed,
	order.EventTypeDisputeOpened,
}

// RegisterAuditLogger subscribes a handler that writes one structured log
// line per lifecycle event, giving operators a queryable event trail even
// without an external message broker.
func RegisterAuditLogger(bus *InMemoryEventBus, logger *zap.Logger) {
	handler := func(ctx context.Context, event shared.DomainEvent) error {
		logger.Info("lifecycle event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("aggregate_type", event.AggregateType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Time("occurred_at", event.OccurredAt()),
		)
		return nil
	}
	bus.Subscribe(handler, auditedEventTypes...)
}
