package escrow

// Status represents the money-holding state of a single order item.
// It is causally linked to, but distinct from, the fulfillment status:
// fulfillment tracks where the goods are, escrow tracks where the money is.
type Status string

const (
	// StatusNone means no funds have been captured for the item yet
	StatusNone Status = ""
	// StatusHolding means buyer funds are captured and held by the platform
	StatusHolding Status = "HOLDING"
	// StatusAwaitingRelease means delivery is confirmed and the dispute window is open
	StatusAwaitingRelease Status = "AWAITING_RELEASE"
	// StatusReleased means the hold is lifted and the payout may be executed
	StatusReleased Status = "RELEASED"
	// StatusTransferred means the payout to the seller is confirmed by the gateway
	StatusTransferred Status = "TRANSFERRED"
	// StatusTransferFailed means the payout call errored; the transfer stays retryable
	StatusTransferFailed Status = "TRANSFER_FAILED"
	// StatusRefunded means a captured payment was reversed at the gateway
	StatusRefunded Status = "REFUNDED"
	// StatusCancelled means the item was cancelled before any capture occurred,
	// so there is no external money movement to reconcile
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a known escrow Status
func (s Status) IsValid() bool {
	switch s {
	case StatusNone, StatusHolding, StatusAwaitingRelease, StatusReleased,
		StatusTransferred, StatusTransferFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusNone:
		return target == StatusHolding || target == StatusCancelled
	case StatusHolding:
		return target == StatusAwaitingRelease || target == StatusRefunded
	case StatusAwaitingRelease:
		return target == StatusReleased || target == StatusRefunded
	case StatusReleased:
		return target == StatusTransferred || target == StatusTransferFailed || target == StatusRefunded
	case StatusTransferFailed:
		return target == StatusTransferred
	case StatusTransferred, StatusRefunded, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states that end the escrow chain
func (s Status) IsTerminal() bool {
	switch s {
	case StatusTransferred, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// Captured returns true if buyer funds were ever captured for this escrow.
// A refund issued against an uncaptured escrow is a defect, not a state to remap.
func (s Status) Captured() bool {
	return s != StatusNone && s != StatusCancelled
}
