package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/escrow"
	"github.com/relove/backend/internal/domain/shared"
)

// OrderItem is a single line of an order. Every item belongs to exactly one
// seller and carries its own fulfillment status and escrow transaction, so
// a multi-seller order can split, cancel and pay out per item.
type OrderItem struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID      `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID      `json:"product_id" gorm:"type:uuid;not null"`
	SellerID         uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title            string         `json:"title" gorm:"type:varchar(255);not null"`
	Price            decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Status           ItemStatus     `json:"status" gorm:"type:varchar(32);not null"`
	PickupEvidence   pq.StringArray `json:"pickup_evidence" gorm:"type:text[]"`
	DeliveryEvidence pq.StringArray `json:"delivery_evidence" gorm:"type:text[]"`
	CancelReason     string         `json:"cancel_reason" gorm:"type:text"`
	DeliveredAt      *time.Time     `json:"delivered_at"`
	Transaction      Transaction    `json:"transaction" gorm:"foreignKey:OrderItemID"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName overrides the gorm table name
func (OrderItem) TableName() string {
	return "order_items"
}

// Order is the purchase aggregate root. The order-level Status is derived
// from item statuses and never drives a transition itself; all state changes
// enter through item-level methods which recompute the aggregate view.
type Order struct {
	shared.BaseAggregateRoot
	OrderCode         string          `json:"order_code" gorm:"type:varchar(32);not null;uniqueIndex"`
	BuyerID           uuid.UUID       `json:"buyer_id" gorm:"type:uuid;not null;index"`
	ShippingAddressID uuid.UUID       `json:"shipping_address_id" gorm:"type:uuid;not null"`
	PaymentMethod     string          `json:"payment_method" gorm:"type:varchar(32);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(32);not null;index"`
	StatusForced      bool            `json:"status_forced" gorm:"not null;default:false"`
	PaymentIntentRef  string          `json:"payment_intent_ref" gorm:"type:varchar(255)"`
	PaidAt            *time.Time      `json:"paid_at"`
	ShippedAt         *time.Time      `json:"shipped_at"`
	DeliveredAt       *time.Time      `json:"delivered_at"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`

	pendingHistory  []StatusHistory  `gorm:"-"`
	pendingReleases []escrow.Release `gorm:"-"`
}

// TableName overrides the gorm table name
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an empty pending order for a buyer. Items are added with
// AddItem before the order is persisted for the first time.
func NewOrder(buyerID, shippingAddressID uuid.UUID, paymentMethod string) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "buyer id is required")
	}
	if shippingAddressID == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "shipping address id is required")
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError(shared.ErrCodeValidation, "payment method is required")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderCode:         generateOrderCode(),
		BuyerID:           buyerID,
		ShippingAddressID: shippingAddressID,
		PaymentMethod:     paymentMethod,
		TotalAmount:       decimal.Zero,
		Status:            OrderStatusPending,
		Items:             make([]OrderItem, 0),
	}
	return o, nil
}

func generateOrderCode() string {
	ts := time.Now().Format("20060102150405")
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("RLV-%s-%s", ts, suffix)
}

// AddItem appends a line to an unpaid order, snapshotting the seller's fee
// tier percentage into the item's transaction so a later tier change never
// alters an existing split.
func (o *Order) AddItem(productID, sellerID uuid.UUID, title string, price, feePercent decimal.Decimal) error {
	if o.PaidAt != nil {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "cannot add items to a paid order")
	}
	if productID == uuid.Nil || sellerID == uuid.Nil {
		return shared.NewDomainError(shared.ErrCodeValidation, "product id and seller id are required")
	}
	if title == "" {
		return shared.NewDomainError(shared.ErrCodeValidation, "item title is required")
	}

	fees, err := CalculateFees(price, feePercent)
	if err != nil {
		return err
	}

	itemID := uuid.New()
	now := time.Now()
	item := OrderItem{
		ID:        itemID,
		OrderID:   o.ID,
		ProductID: productID,
		SellerID:  sellerID,
		Title:     title,
		Price:     price,
		Status:    ItemStatusPending,
		Transaction: Transaction{
			ID:           uuid.New(),
			OrderItemID:  itemID,
			Amount:       fees.Gross,
			PlatformFee:  fees.PlatformFee,
			SellerAmount: fees.SellerAmount,
			FeePercent:   fees.FeePercent,
			EscrowStatus: escrow.StatusNone,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(price)
	return nil
}

// MarkPaid confirms payment capture for the whole order. Safe to call twice:
// a second confirmation for an already paid order is a no-op so duplicate
// webhook deliveries cannot double-advance items.
func (o *Order) MarkPaid(providerTxnRef string, paidAt time.Time) error {
	if o.PaidAt != nil {
		return nil
	}
	if o.Status == OrderStatusExpired {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "order has expired and can no longer be paid")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError(shared.ErrCodeValidation, "order has no items")
	}

	system := shared.SystemActor()
	for i := range o.Items {
		item := &o.Items[i]
		if item.Status != ItemStatusPending {
			continue
		}
		if !item.Transaction.EscrowStatus.CanTransitionTo(escrow.StatusHolding) {
			return shared.NewConsistencyError("escrow-capture",
				fmt.Sprintf("item %s escrow is %q, cannot hold captured funds", item.ID, item.Transaction.EscrowStatus))
		}
		o.setItemStatus(item, ItemStatusProcessing, system, "payment captured", false)
		item.Transaction.EscrowStatus = escrow.StatusHolding
		item.Transaction.ProviderTxnRef = providerTxnRef
		item.Transaction.UpdatedAt = time.Now()
	}

	o.PaidAt = &paidAt
	o.recomputeStatus()
	o.AddDomainEvent(NewOrderPaidEvent(o.ID, o.OrderCode, providerTxnRef, o.TotalAmount))
	return nil
}

// RequestPickup marks a seller's item as packed and ready for courier pickup
func (o *Order) RequestPickup(actor shared.Actor, itemID uuid.UUID) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !(actor.Role == shared.RoleSeller && actor.ID == item.SellerID) {
		return shared.ErrUnauthorized
	}
	return o.transitionItem(item, ItemStatusAwaitingPickup, actor, "pickup requested by seller")
}

// ConfirmPickup records courier receipt of the goods into the warehouse.
// Evidence photo URLs are mandatory.
func (o *Order) ConfirmPickup(actor shared.Actor, itemID uuid.UUID, evidence []string) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.Role != shared.RoleShipper {
		return shared.ErrUnauthorized
	}
	if len(evidence) == 0 {
		return shared.NewDomainError(shared.ErrCodeValidation, "pickup evidence is required")
	}
	if err := o.transitionItem(item, ItemStatusInWarehouse, actor, "picked up: "+strings.Join(evidence, ", ")); err != nil {
		return err
	}
	item.PickupEvidence = evidence
	return nil
}

// Dispatch sends a warehoused item out for last-mile delivery
func (o *Order) Dispatch(actor shared.Actor, itemID uuid.UUID) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.Role != shared.RoleShipper {
		return shared.ErrUnauthorized
	}
	if err := o.transitionItem(item, ItemStatusOutForDelivery, actor, "dispatched for delivery"); err != nil {
		return err
	}
	if o.ShippedAt == nil {
		now := time.Now()
		o.ShippedAt = &now
	}
	return nil
}

// ConfirmDelivery records handover to the buyer. The escrow hold moves to
// AWAITING_RELEASE and the dispute window opens; funds release automatically
// once it elapses unless a dispute is filed.
func (o *Order) ConfirmDelivery(actor shared.Actor, itemID uuid.UUID, evidence []string, disputeWindow time.Duration) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	isBuyer := actor.Role == shared.RoleBuyer && actor.ID == o.BuyerID
	if !actor.IsAdmin() && actor.Role != shared.RoleShipper && !isBuyer {
		return shared.ErrUnauthorized
	}
	if len(evidence) == 0 {
		return shared.NewDomainError(shared.ErrCodeValidation, "delivery evidence is required")
	}
	if !item.Transaction.EscrowStatus.CanTransitionTo(escrow.StatusAwaitingRelease) {
		return shared.NewConsistencyError("escrow-hold",
			fmt.Sprintf("item %s escrow is %q, expected %q before delivery", item.ID, item.Transaction.EscrowStatus, escrow.StatusHolding))
	}
	if err := o.transitionItem(item, ItemStatusDelivered, actor, "delivered: "+strings.Join(evidence, ", ")); err != nil {
		return err
	}

	now := time.Now()
	due := now.Add(disputeWindow)
	item.DeliveryEvidence = evidence
	item.DeliveredAt = &now
	item.Transaction.EscrowStatus = escrow.StatusAwaitingRelease
	item.Transaction.ReleaseDueAt = &due
	item.Transaction.UpdatedAt = now

	if o.allItemsDelivered() {
		o.DeliveredAt = &now
	}
	return nil
}

// CancelItem cancels a single item. Buyers may cancel their own items before
// pickup, sellers their own items before delivery, admins any live item.
// When funds were captured the caller must have already executed the gateway
// refund and pass its reference; for uncaptured items passing a refund
// reference is a money-invariant violation.
func (o *Order) CancelItem(actor shared.Actor, itemID uuid.UUID, reason, refundRef string) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if err := o.authorizeCancel(actor, item); err != nil {
		return err
	}

	captured := item.Transaction.Captured()
	if captured && refundRef == "" {
		return shared.NewConsistencyError("refund-before-cancel",
			fmt.Sprintf("item %s holds captured funds but no refund reference was provided", item.ID))
	}
	if !captured && refundRef != "" {
		return shared.NewConsistencyError("refund-without-capture",
			fmt.Sprintf("item %s never captured funds but a refund reference %q was provided", item.ID, refundRef))
	}

	if err := o.transitionItem(item, ItemStatusCancelled, actor, "cancelled: "+reason); err != nil {
		return err
	}

	item.CancelReason = reason
	if captured {
		item.Transaction.EscrowStatus = escrow.StatusRefunded
		item.Transaction.RefundRef = refundRef
		o.AddDomainEvent(NewEscrowRefundedEvent(o.ID, item.ID, item.Transaction.Amount, refundRef))
	} else {
		item.Transaction.EscrowStatus = escrow.StatusCancelled
	}
	item.Transaction.UpdatedAt = time.Now()
	return nil
}

// CanCancelItem checks authorization and transition legality without
// mutating, so the caller can execute the gateway refund before committing
// the cancellation.
func (o *Order) CanCancelItem(actor shared.Actor, itemID uuid.UUID) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if err := o.authorizeCancel(actor, item); err != nil {
		return err
	}
	if o.Status == OrderStatusExpired {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "order has expired")
	}
	if !item.Status.CanTransitionTo(ItemStatusCancelled) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("cannot transition item from %q to %q", item.Status, ItemStatusCancelled))
	}
	return nil
}

func (o *Order) authorizeCancel(actor shared.Actor, item *OrderItem) error {
	switch {
	case actor.IsAdmin() || actor.IsSystem():
	case actor.Role == shared.RoleBuyer && actor.ID == o.BuyerID:
		if !item.Status.PrePickup() {
			return shared.NewDomainError(shared.ErrCodeUnauthorized, "buyers can only cancel before pickup")
		}
	case actor.Role == shared.RoleSeller && actor.ID == item.SellerID:
	default:
		return shared.ErrUnauthorized
	}
	return nil
}

// RefundDelivered reverses a delivered item after a dispute is upheld.
// Admin only. Once the seller payout went through the money is gone from
// the platform account and the refund must be handled out of band.
func (o *Order) RefundDelivered(actor shared.Actor, itemID uuid.UUID, reason, refundRef string) error {
	if !actor.IsAdmin() {
		return shared.ErrUnauthorized
	}
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if item.Transaction.EscrowStatus == escrow.StatusTransferred {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "payout already transferred to seller, refund must be recovered manually")
	}
	if !item.Transaction.Captured() {
		return shared.NewConsistencyError("refund-without-capture",
			fmt.Sprintf("item %s never captured funds", item.ID))
	}
	if refundRef == "" {
		return shared.NewDomainError(shared.ErrCodeValidation, "refund reference is required")
	}
	if err := o.transitionItem(item, ItemStatusRefunded, actor, "refunded: "+reason); err != nil {
		return err
	}

	item.Transaction.EscrowStatus = escrow.StatusRefunded
	item.Transaction.RefundRef = refundRef
	item.Transaction.DisputeOpen = false
	item.Transaction.UpdatedAt = time.Now()
	o.AddDomainEvent(NewEscrowRefundedEvent(o.ID, item.ID, item.Transaction.Amount, refundRef))
	return nil
}

// CanRefundDelivered checks whether RefundDelivered would be accepted,
// without mutating, so the caller can refund at the gateway first
func (o *Order) CanRefundDelivered(actor shared.Actor, itemID uuid.UUID) error {
	if !actor.IsAdmin() {
		return shared.ErrUnauthorized
	}
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if item.Transaction.EscrowStatus == escrow.StatusTransferred {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "payout already transferred to seller, refund must be recovered manually")
	}
	if !item.Transaction.Captured() {
		return shared.NewConsistencyError("refund-without-capture",
			fmt.Sprintf("item %s never captured funds", item.ID))
	}
	if !item.Status.CanTransitionTo(ItemStatusRefunded) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("cannot transition item from %q to %q", item.Status, ItemStatusRefunded))
	}
	return nil
}

// OpenDispute freezes the automatic escrow release for a delivered item
// until an operator resolves it
func (o *Order) OpenDispute(actor shared.Actor, itemID uuid.UUID, reason string) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	isBuyer := actor.Role == shared.RoleBuyer && actor.ID == o.BuyerID
	if !actor.IsAdmin() && !isBuyer {
		return shared.ErrUnauthorized
	}
	if item.Transaction.EscrowStatus != escrow.StatusAwaitingRelease {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "disputes can only be opened while escrow awaits release")
	}
	if item.Transaction.DisputeOpen {
		return nil
	}
	item.Transaction.DisputeOpen = true
	item.Transaction.UpdatedAt = time.Now()
	o.AddDomainEvent(NewDisputeOpenedEvent(o.ID, item.ID, actor.ID, reason))
	return nil
}

// ResolveDispute lifts the dispute freeze without refunding, letting the
// normal release path resume. Admin only.
func (o *Order) ResolveDispute(actor shared.Actor, itemID uuid.UUID, notes string) error {
	if !actor.IsAdmin() {
		return shared.ErrUnauthorized
	}
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !item.Transaction.DisputeOpen {
		return nil
	}
	item.Transaction.DisputeOpen = false
	item.Transaction.UpdatedAt = time.Now()
	return nil
}

// ReleaseEscrow lifts the hold on a delivered item's funds. The scheduler
// calls this after the dispute window closes; admins may force it early.
// An open dispute blocks everyone except admins.
func (o *Order) ReleaseEscrow(actor shared.Actor, itemID uuid.UUID, reason escrow.ReleaseReason, notes string) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.IsSystem() {
		return shared.ErrUnauthorized
	}
	if item.Transaction.DisputeOpen && !actor.IsAdmin() {
		return shared.NewDomainError(shared.ErrCodeDisputeWindowBlocked, "escrow release is frozen by an open dispute")
	}
	if item.Transaction.ReleaseDueAt != nil && time.Now().Before(*item.Transaction.ReleaseDueAt) && !actor.IsAdmin() {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "dispute window has not elapsed yet")
	}
	if !item.Transaction.EscrowStatus.CanTransitionTo(escrow.StatusReleased) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("escrow cannot be released from %q", item.Transaction.EscrowStatus))
	}

	item.Transaction.EscrowStatus = escrow.StatusReleased
	if actor.IsAdmin() {
		item.Transaction.DisputeOpen = false
	}
	item.Transaction.UpdatedAt = time.Now()
	o.pendingReleases = append(o.pendingReleases,
		escrow.NewRelease(item.Transaction.ID, item.ID, item.Transaction.SellerAmount, reason, notes, actor))
	o.AddDomainEvent(NewEscrowReleasedEvent(o.ID, item.ID, item.Transaction.SellerAmount, string(reason)))
	return nil
}

// MarkTransferred confirms the seller payout succeeded at the gateway
func (o *Order) MarkTransferred(itemID uuid.UUID, payoutRef string) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !item.Transaction.EscrowStatus.CanTransitionTo(escrow.StatusTransferred) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("escrow cannot be transferred from %q", item.Transaction.EscrowStatus))
	}
	item.Transaction.EscrowStatus = escrow.StatusTransferred
	item.Transaction.PayoutRef = payoutRef
	item.Transaction.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPayoutCompletedEvent(o.ID, item.ID, item.SellerID, item.Transaction.SellerAmount, payoutRef))
	return nil
}

// MarkTransferFailed parks a failed payout for retry. The released state is
// not rolled back; only the transfer leg is retried.
func (o *Order) MarkTransferFailed(itemID uuid.UUID, cause string) error {
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if !item.Transaction.EscrowStatus.CanTransitionTo(escrow.StatusTransferFailed) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("escrow cannot fail transfer from %q", item.Transaction.EscrowStatus))
	}
	item.Transaction.EscrowStatus = escrow.StatusTransferFailed
	item.Transaction.UpdatedAt = time.Now()
	o.AddDomainEvent(NewPayoutFailedEvent(o.ID, item.ID, item.SellerID, cause))
	return nil
}

// MarkExpired voids an order whose payment never arrived. Only the unpaid
// order sweeper may call this; no item ever captured funds so every escrow
// closes as CANCELLED.
func (o *Order) MarkExpired(actor shared.Actor) error {
	if !actor.IsSystem() {
		return shared.ErrUnauthorized
	}
	if o.PaidAt != nil {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "paid orders cannot expire")
	}
	if o.Status != OrderStatusPending {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("only pending orders expire, order is %q", o.Status))
	}

	for i := range o.Items {
		item := &o.Items[i]
		if item.Status.IsTerminal() {
			continue
		}
		if item.Transaction.Captured() {
			return shared.NewConsistencyError("expire-with-capture",
				fmt.Sprintf("item %s captured funds on an order being expired", item.ID))
		}
		o.setItemStatus(item, ItemStatusCancelled, actor, "order expired unpaid", false)
		item.Transaction.EscrowStatus = escrow.StatusCancelled
		item.Transaction.UpdatedAt = time.Now()
	}

	o.Status = OrderStatusExpired
	o.StatusForced = false
	o.AddDomainEvent(NewOrderExpiredEvent(o.ID, o.OrderCode))
	return nil
}

// ForceItemStatus moves an item to an arbitrary status bypassing the
// transition table. Admin only and the acknowledge flag must be set
// explicitly; the history row is marked forced so audits can find it.
func (o *Order) ForceItemStatus(actor shared.Actor, itemID uuid.UUID, target ItemStatus, notes string, acknowledged bool) error {
	if !actor.IsAdmin() {
		return shared.ErrUnauthorized
	}
	if !acknowledged {
		return shared.NewDomainError(shared.ErrCodeValidation, "forced override requires explicit acknowledgement")
	}
	if !target.IsValid() {
		return shared.NewDomainError(shared.ErrCodeValidation, fmt.Sprintf("unknown status %q", target))
	}
	item, err := o.findItem(itemID)
	if err != nil {
		return err
	}
	if item.Status == target {
		return nil
	}

	o.setItemStatus(item, target, actor, notes, true)
	o.recomputeStatus()
	o.StatusForced = true
	return nil
}

// PendingHistory returns the history rows produced since the aggregate was
// loaded. The repository persists and clears them on save.
func (o *Order) PendingHistory() []StatusHistory {
	return o.pendingHistory
}

// PendingReleases returns escrow release audit rows produced since load
func (o *Order) PendingReleases() []escrow.Release {
	return o.pendingReleases
}

// ClearPending drops buffered history and release rows after a successful save
func (o *Order) ClearPending() {
	o.pendingHistory = nil
	o.pendingReleases = nil
}

func (o *Order) findItem(itemID uuid.UUID) (*OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], nil
		}
	}
	return nil, shared.NewDomainError(shared.ErrCodeNotFound, fmt.Sprintf("order item %s not found", itemID))
}

// transitionItem applies a guarded transition and recomputes the derived
// order status
func (o *Order) transitionItem(item *OrderItem, target ItemStatus, actor shared.Actor, notes string) error {
	if o.Status == OrderStatusExpired {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "order has expired")
	}
	if !item.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition,
			fmt.Sprintf("cannot transition item from %q to %q", item.Status, target))
	}
	o.setItemStatus(item, target, actor, notes, false)
	o.recomputeStatus()
	o.StatusForced = false
	return nil
}

func (o *Order) setItemStatus(item *OrderItem, target ItemStatus, actor shared.Actor, notes string, forced bool) {
	from := item.Status
	item.Status = target
	item.UpdatedAt = time.Now()
	o.pendingHistory = append(o.pendingHistory, newStatusHistory(item.ID, from, target, actor, notes, forced))
	o.AddDomainEvent(NewItemStatusChangedEvent(o.ID, item.ID, from, target, actor, forced))
}

func (o *Order) recomputeStatus() {
	if o.Status == OrderStatusExpired {
		return
	}
	statuses := make([]ItemStatus, len(o.Items))
	for i := range o.Items {
		statuses[i] = o.Items[i].Status
	}
	o.Status = DeriveOrderStatus(statuses)
}

func (o *Order) allItemsDelivered() bool {
	any := false
	for i := range o.Items {
		if o.Items[i].Status.IsTerminal() {
			continue
		}
		if o.Items[i].Status != ItemStatusDelivered {
			return false
		}
		any = true
	}
	return any
}
