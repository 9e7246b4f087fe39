package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/shared"
)

const aggregateType = "Order"

// Event type constants
const (
	EventTypeOrderPlaced       = "order.placed"
	EventTypeOrderPaid         = "order.paid"
	EventTypeOrderExpired      = "order.expired"
	EventTypeItemStatusChanged = "order.item_status_changed"
	EventTypeEscrowReleased    = "order.escrow_released"
	EventTypeEscrowRefunded    = "order.escrow_refunded"
	EventTypePayoutCompleted   = "order.payout_completed"
	EventTypePayoutFailed      = "order.payout_failed"
	EventTypeDisputeOpened     = "order.dispute_opened"
)

// OrderPlacedEvent is emitted when a new order is created
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderCode   string          `json:"order_code"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent
func NewOrderPlacedEvent(orderID uuid.UUID, orderCode string, buyerID uuid.UUID, total decimal.Decimal, itemCount int) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, aggregateType, orderID),
		OrderCode:       orderCode,
		BuyerID:         buyerID,
		TotalAmount:     total,
		ItemCount:       itemCount,
	}
}

// OrderPaidEvent is emitted when payment capture is confirmed
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderCode      string          `json:"order_code"`
	ProviderTxnRef string          `json:"provider_txn_ref"`
	Amount         decimal.Decimal `json:"amount"`
}

// NewOrderPaidEvent creates an OrderPaidEvent
func NewOrderPaidEvent(orderID uuid.UUID, orderCode, providerTxnRef string, amount decimal.Decimal) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, aggregateType, orderID),
		OrderCode:       orderCode,
		ProviderTxnRef:  providerTxnRef,
		Amount:          amount,
	}
}

// OrderExpiredEvent is emitted when the sweeper voids an unpaid order
type OrderExpiredEvent struct {
	shared.BaseDomainEvent
	OrderCode string `json:"order_code"`
}

// NewOrderExpiredEvent creates an OrderExpiredEvent
func NewOrderExpiredEvent(orderID uuid.UUID, orderCode string) *OrderExpiredEvent {
	return &OrderExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderExpired, aggregateType, orderID),
		OrderCode:       orderCode,
	}
}

// ItemStatusChangedEvent is emitted on every item transition
type ItemStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderItemID uuid.UUID  `json:"order_item_id"`
	FromStatus  ItemStatus `json:"from_status"`
	ToStatus    ItemStatus `json:"to_status"`
	ActorID     uuid.UUID  `json:"actor_id"`
	ActorRole   string     `json:"actor_role"`
	Forced      bool       `json:"forced"`
}

// NewItemStatusChangedEvent creates an ItemStatusChangedEvent
func NewItemStatusChangedEvent(orderID, itemID uuid.UUID, from, to ItemStatus, actor shared.Actor, forced bool) *ItemStatusChangedEvent {
	return &ItemStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemStatusChanged, aggregateType, orderID),
		OrderItemID:     itemID,
		FromStatus:      from,
		ToStatus:        to,
		ActorID:         actor.ID,
		ActorRole:       actor.Role.String(),
		Forced:          forced,
	}
}

// EscrowReleasedEvent is emitted when an item's escrow hold is lifted
type EscrowReleasedEvent struct {
	shared.BaseDomainEvent
	OrderItemID  uuid.UUID       `json:"order_item_id"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	Reason       string          `json:"reason"`
}

// NewEscrowReleasedEvent creates an EscrowReleasedEvent
func NewEscrowReleasedEvent(orderID, itemID uuid.UUID, sellerAmount decimal.Decimal, reason string) *EscrowReleasedEvent {
	return &EscrowReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowReleased, aggregateType, orderID),
		OrderItemID:     itemID,
		SellerAmount:    sellerAmount,
		Reason:          reason,
	}
}

// EscrowRefundedEvent is emitted when captured funds are returned to the buyer
type EscrowRefundedEvent struct {
	shared.BaseDomainEvent
	OrderItemID uuid.UUID       `json:"order_item_id"`
	Amount      decimal.Decimal `json:"amount"`
	RefundRef   string          `json:"refund_ref"`
}

// NewEscrowRefundedEvent creates an EscrowRefundedEvent
func NewEscrowRefundedEvent(orderID, itemID uuid.UUID, amount decimal.Decimal, refundRef string) *EscrowRefundedEvent {
	return &EscrowRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEscrowRefunded, aggregateType, orderID),
		OrderItemID:     itemID,
		Amount:          amount,
		RefundRef:       refundRef,
	}
}

// PayoutCompletedEvent is emitted when the seller payout is confirmed
type PayoutCompletedEvent struct {
	shared.BaseDomainEvent
	OrderItemID  uuid.UUID       `json:"order_item_id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
	PayoutRef    string          `json:"payout_ref"`
}

// NewPayoutCompletedEvent creates a PayoutCompletedEvent
func NewPayoutCompletedEvent(orderID, itemID, sellerID uuid.UUID, sellerAmount decimal.Decimal, payoutRef string) *PayoutCompletedEvent {
	return &PayoutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutCompleted, aggregateType, orderID),
		OrderItemID:     itemID,
		SellerID:        sellerID,
		SellerAmount:    sellerAmount,
		PayoutRef:       payoutRef,
	}
}

// PayoutFailedEvent is emitted when the seller payout call errors
type PayoutFailedEvent struct {
	shared.BaseDomainEvent
	OrderItemID uuid.UUID `json:"order_item_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	Cause       string    `json:"cause"`
}

// NewPayoutFailedEvent creates a PayoutFailedEvent
func NewPayoutFailedEvent(orderID, itemID, sellerID uuid.UUID, cause string) *PayoutFailedEvent {
	return &PayoutFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutFailed, aggregateType, orderID),
		OrderItemID:     itemID,
		SellerID:        sellerID,
		Cause:           cause,
	}
}

// DisputeOpenedEvent is emitted when a buyer freezes escrow release
type DisputeOpenedEvent struct {
	shared.BaseDomainEvent
	OrderItemID uuid.UUID `json:"order_item_id"`
	OpenedBy    uuid.UUID `json:"opened_by"`
	Reason      string    `json:"reason"`
}

// NewDisputeOpenedEvent creates a DisputeOpenedEvent
func NewDisputeOpenedEvent(orderID, itemID, openedBy uuid.UUID, reason string) *DisputeOpenedEvent {
	return &DisputeOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDisputeOpened, aggregateType, orderID),
		OrderItemID:     itemID,
		OpenedBy:        openedBy,
		Reason:          reason,
	}
}
