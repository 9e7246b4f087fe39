package order

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

// Service orchestrates the order lifecycle. Every mutation loads the
// aggregate, applies one domain transition and saves under the optimistic
// lock; gateway calls that move money happen before the domain commit so a
// failed save never leaves an unrecorded refund or payout.
type Service struct {
	orders         order.Repository
	products       catalog.ProductCatalog
	sellers        catalog.SellerDirectory
	gateway        payment.Gateway
	eventPublisher shared.EventPublisher
	disputeWindow  time.Duration
	logger         *zap.Logger
}

// NewService creates an order Service
func NewService(
	orders order.Repository,
	products catalog.ProductCatalog,
	sellers catalog.SellerDirectory,
	gateway payment.Gateway,
	disputeWindow time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:        orders,
		products:      products,
		sellers:       sellers,
		gateway:       gateway,
		disputeWindow: disputeWindow,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PlaceOrder creates an order with one item per listing, snapshots each
// seller's fee tier, registers a payment intent at the gateway and marks
// the listings sold.
func (s *Service) PlaceOrder(ctx context.Context, buyer shared.Actor, req PlaceOrderRequest) (*OrderResponse, error) {
	if buyer.Role != shared.RoleBuyer {
		return nil, shared.ErrUnauthorized
	}

	o, err := order.NewOrder(buyer.ID, req.ShippingAddressID, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	for _, in := range req.Items {
		tier, err := s.sellers.FeeTier(ctx, in.SellerID)
		if err != nil {
			return nil, err
		}
		if err := o.AddItem(in.ProductID, in.SellerID, in.Title, in.Price, tier.Percentage()); err != nil {
			return nil, err
		}
	}

	intentRef, err := s.gateway.CreatePaymentIntent(ctx, o.OrderCode, o.TotalAmount)
	if err != nil {
		return nil, err
	}
	o.PaymentIntentRef = intentRef
	o.AddDomainEvent(order.NewOrderPlacedEvent(o.ID, o.OrderCode, o.BuyerID, o.TotalAmount, len(o.Items)))

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if err := s.products.MarkSold(ctx, item.ProductID); err != nil {
			s.logger.Warn("failed to mark listing sold, sweeper will reconcile",
				zap.String("order_code", o.OrderCode),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, o)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByID returns an order visible to the requesting actor
func (s *Service) GetByID(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, o) {
		return nil, shared.ErrUnauthorized
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByCode returns an order by its public code
func (s *Service) GetByCode(ctx context.Context, actor shared.Actor, orderCode string) (*OrderResponse, error) {
	o, err := s.orders.FindByCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, o) {
		return nil, shared.ErrUnauthorized
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListByBuyer returns the actor's own orders, newest first
func (s *Service) ListByBuyer(ctx context.Context, actor shared.Actor, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	page, err := s.orders.FindByBuyer(ctx, actor.ID, filter)
	if err != nil {
		return nil, err
	}
	return mapPage(page, filter), nil
}

// ListBySeller returns orders containing at least one of the seller's items
func (s *Service) ListBySeller(ctx context.Context, actor shared.Actor, filter shared.Filter) (*shared.Paginated[OrderResponse], error) {
	page, err := s.orders.FindBySeller(ctx, actor.ID, filter)
	if err != nil {
		return nil, err
	}
	return mapPage(page, filter), nil
}

// RequestPickup marks a seller's item ready for courier pickup
func (s *Service) RequestPickup(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.RequestPickup(actor, itemID)
	})
}

// ConfirmPickup records warehouse intake with evidence photos
func (s *Service) ConfirmPickup(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, evidence []string) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.ConfirmPickup(actor, itemID, evidence)
	})
}

// Dispatch sends a warehoused item out for delivery
func (s *Service) Dispatch(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.Dispatch(actor, itemID)
	})
}

// ConfirmDelivery records handover and opens the dispute window
func (s *Service) ConfirmDelivery(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, evidence []string) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.ConfirmDelivery(actor, itemID, evidence, s.disputeWindow)
	})
}

// CancelItem cancels one item. If funds were captured the gateway refund is
// executed first and its reference recorded with the cancellation; the
// listing goes back on sale afterwards.
func (s *Service) CancelItem(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, reason string) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.CanCancelItem(actor, itemID); err != nil {
		return nil, err
	}

	item := findItem(o, itemID)
	if item == nil {
		return nil, shared.ErrNotFound
	}

	refundRef := ""
	if item.Transaction.Captured() {
		refundRef, err = s.gateway.Refund(ctx, item.Transaction.ProviderTxnRef, item.Transaction.Amount, reason)
		if err != nil {
			return nil, err
		}
		s.logger.Info("refund issued for cancelled item",
			zap.String("order_code", o.OrderCode),
			zap.String("item_id", itemID.String()),
			zap.String("refund_ref", refundRef))
	}

	if err := o.CancelItem(actor, itemID, reason, refundRef); err != nil {
		// the refund already happened at the gateway; this must be loud
		s.logger.Error("cancellation failed after gateway refund",
			zap.String("order_code", o.OrderCode),
			zap.String("item_id", itemID.String()),
			zap.String("refund_ref", refundRef),
			zap.Error(err))
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	if err := s.products.MarkActive(ctx, item.ProductID); err != nil {
		s.logger.Warn("failed to relist cancelled product",
			zap.String("product_id", item.ProductID.String()),
			zap.Error(err))
	}

	s.publishEvents(ctx, o)
	resp := ToOrderResponse(o)
	return &resp, nil
}

// OpenDispute freezes the escrow release of a delivered item
func (s *Service) OpenDispute(ctx context.Context, actor shared.Actor, orderID, itemID uuid.UUID, reason string) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(o *order.Order) error {
		return o.OpenDispute(actor, itemID, reason)
	})
}

func (s *Service) mutate(ctx context.Context, orderID uuid.UUID, fn func(*order.Order) error) (*OrderResponse, error) {
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
	resp := ToOrderResponse(o)
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

func (s *Service) canView(actor shared.Actor, o *order.Order) bool {
	if actor.IsAdmin() || actor.IsSystem() {
		return true
	}
	if actor.Role == shared.RoleBuyer {
		return actor.ID == o.BuyerID
	}
	if actor.Role == shared.RoleSeller {
		for _, item := range o.Items {
			if item.SellerID == actor.ID {
				return true
			}
		}
	}
	return false
}

func findItem(o *order.Order, itemID uuid.UUID) *order.OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

func mapPage(page *shared.Paginated[order.Order], filter shared.Filter) *shared.Paginated[OrderResponse] {
	items := make([]OrderResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToOrderResponse(&page.Items[i])
	}
	mapped := shared.NewPaginated(items, page.Total, filter.Page, filter.PageSize)
	return &mapped
}
