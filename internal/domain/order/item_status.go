package order

// ItemStatus represents the fulfillment state of a single order item.
// Each item belongs to one seller and moves through the pipeline
// independently of its siblings.
type ItemStatus string

const (
	ItemStatusPending        ItemStatus = "PENDING"
	ItemStatusProcessing     ItemStatus = "PROCESSING"
	ItemStatusAwaitingPickup ItemStatus = "AWAITING_PICKUP"
	ItemStatusInWarehouse    ItemStatus = "IN_WAREHOUSE"
	ItemStatusOutForDelivery ItemStatus = "OUT_FOR_DELIVERY"
	ItemStatusDelivered      ItemStatus = "DELIVERED"
	ItemStatusCancelled      ItemStatus = "CANCELLED"
	ItemStatusRefunded       ItemStatus = "REFUNDED"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusProcessing, ItemStatusAwaitingPickup,
		ItemStatusInWarehouse, ItemStatusOutForDelivery, ItemStatusDelivered,
		ItemStatusCancelled, ItemStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Admin force paths bypass this check but are audited separately.
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	switch s {
	case ItemStatusPending:
		return target == ItemStatusProcessing || target == ItemStatusCancelled
	case ItemStatusProcessing:
		return target == ItemStatusAwaitingPickup || target == ItemStatusCancelled
	case ItemStatusAwaitingPickup:
		return target == ItemStatusInWarehouse || target == ItemStatusCancelled
	case ItemStatusInWarehouse:
		return target == ItemStatusOutForDelivery || target == ItemStatusCancelled
	case ItemStatusOutForDelivery:
		return target == ItemStatusDelivered || target == ItemStatusCancelled
	case ItemStatusDelivered:
		return target == ItemStatusRefunded
	case ItemStatusCancelled, ItemStatusRefunded:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for CANCELLED and REFUNDED
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusCancelled || s == ItemStatusRefunded
}

// PrePickup returns true while the goods are still with the seller.
// Buyers may only cancel in this phase.
func (s ItemStatus) PrePickup() bool {
	return s == ItemStatusPending || s == ItemStatusProcessing
}

// rank orders the success-path states for aggregate derivation
func (s ItemStatus) rank() int {
	switch s {
	case ItemStatusPending:
		return 0
	case ItemStatusProcessing:
		return 1
	case ItemStatusAwaitingPickup:
		return 2
	case ItemStatusInWarehouse:
		return 3
	case ItemStatusOutForDelivery:
		return 4
	case ItemStatusDelivered:
		return 5
	}
	return -1
}
