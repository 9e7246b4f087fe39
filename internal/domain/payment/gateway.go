package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrderCode = errors.New("payment: invalid order code")
	ErrInvalidAmount    = errors.New("payment: invalid payment amount")
	ErrInvalidIntentRef = errors.New("payment: invalid payment intent reference")
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	ErrInvalidPayload   = errors.New("payment: invalid webhook payload")
)

// GatewayError wraps a failure reported by the external payment gateway.
// Retryable failures (network, gateway unavailable) are absorbed by the
// reconciliation sweeper and retried; terminal failures (card declined)
// drive the order to a failed state and surface to the buyer.
type GatewayError struct {
	Op        string
	Retryable bool
	Err       error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	kind := "terminal"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("gateway %s failed (%s): %v", e.Op, kind, e.Err)
}

// Unwrap returns the underlying gateway error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewRetryableGatewayError wraps err as a transient gateway failure
func NewRetryableGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Retryable: true, Err: err}
}

// NewTerminalGatewayError wraps err as a permanent gateway failure
func NewTerminalGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Retryable: false, Err: err}
}

// IsRetryable reports whether err is a gateway failure worth retrying
func IsRetryable(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Retryable
}

// EventStatus is the normalized payment status carried by a webhook event
type EventStatus string

const (
	EventStatusPaid      EventStatus = "PAID"
	EventStatusFailed    EventStatus = "FAILED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// IsValid checks if the status is a known EventStatus
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusPaid, EventStatusFailed, EventStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of EventStatus
func (s EventStatus) String() string {
	return string(s)
}

// WebhookEvent is a gateway notification normalized to the fields the
// lifecycle engine acts on. Signature verification has already happened
// by the time one of these exists.
type WebhookEvent struct {
	// OrderCode is the platform order code the event refers to
	OrderCode string
	// Status is the normalized payment status
	Status EventStatus
	// ProviderTxnID is the gateway-side transaction ID, used as the
	// idempotency key under at-least-once delivery
	ProviderTxnID string
	// Amount is the gross amount the gateway reports, when present
	Amount decimal.Decimal
	// OccurredAt is the gateway-side event time, when present
	OccurredAt time.Time
}

// Gateway is the port to the external payment provider. Concrete adapters
// live in the infrastructure layer; the engine depends only on this contract.
type Gateway interface {
	// CreatePaymentIntent registers a pending payment for an order and
	// returns the gateway intent reference the client completes against.
	CreatePaymentIntent(ctx context.Context, orderCode string, amount decimal.Decimal) (string, error)

	// VerifyPayment reports whether the intent has been captured at the gateway
	VerifyPayment(ctx context.Context, intentRef string) (bool, error)

	// Refund reverses a captured payment and returns the gateway refund reference
	Refund(ctx context.Context, txnRef string, amount decimal.Decimal, reason string) (string, error)

	// PayoutToSeller transfers released escrow funds to the seller's
	// connected account and returns the gateway payout reference.
	PayoutToSeller(ctx context.Context, sellerAccountRef string, amount decimal.Decimal) (string, error)

	// ParseWebhook verifies the signature and normalizes the raw payload.
	// A signature failure returns ErrInvalidSignature without revealing
	// anything about the referenced order.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
