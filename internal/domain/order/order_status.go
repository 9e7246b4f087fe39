package order

// OrderStatus is the aggregate view of an order, derived from its items.
// It is never set directly, with two exceptions: EXPIRED is stamped by the
// unpaid-order sweeper, and an admin override pins the value until the next
// item transition recomputes it.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRefunded       OrderStatus = "REFUNDED"
	OrderStatusExpired        OrderStatus = "EXPIRED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusOutForDelivery,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded,
		OrderStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states no item transition can leave
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded || s == OrderStatusExpired
}

// DeriveOrderStatus computes the aggregate status from item statuses.
// Terminal items (cancelled, refunded) are excluded as long as at least one
// item is still live; a fully terminal order collapses to REFUNDED when any
// item was refunded, otherwise CANCELLED.
func DeriveOrderStatus(items []ItemStatus) OrderStatus {
	if len(items) == 0 {
		return OrderStatusPending
	}

	nonTerminal := make([]ItemStatus, 0, len(items))
	anyRefunded := false
	for _, s := range items {
		if s.IsTerminal() {
			if s == ItemStatusRefunded {
				anyRefunded = true
			}
			continue
		}
		nonTerminal = append(nonTerminal, s)
	}

	if len(nonTerminal) == 0 {
		if anyRefunded {
			return OrderStatusRefunded
		}
		return OrderStatusCancelled
	}

	allDelivered := true
	maxRank := -1
	for _, s := range nonTerminal {
		if s != ItemStatusDelivered {
			allDelivered = false
		}
		if r := s.rank(); r > maxRank {
			maxRank = r
		}
	}
	if allDelivered {
		return OrderStatusDelivered
	}
	if maxRank >= ItemStatusOutForDelivery.rank() {
		return OrderStatusOutForDelivery
	}
	if maxRank >= ItemStatusProcessing.rank() {
		return OrderStatusProcessing
	}
	return OrderStatusPending
}
