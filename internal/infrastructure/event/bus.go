package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/relove/backend/internal/domain/shared"
)

// Handler processes a single domain event
type Handler func(ctx context.Context, event shared.DomainEvent) error

// InMemoryEventBus implements shared.EventPublisher with in-process pub/sub.
// Dispatch is synchronous; a failing or panicking handler is logged and never
// fails the publishing operation.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event types
func (b *InMemoryEventBus) Subscribe(handler Handler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Publish dispatches the event to all handlers registered for its type
func (b *InMemoryEventBus) Publish(ctx context.Context, event shared.DomainEvent) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := b.dispatch(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler Handler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler(ctx, event)
}

// Ensure InMemoryEventBus implements EventPublisher
var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
