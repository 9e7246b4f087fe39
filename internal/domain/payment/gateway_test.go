package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayError_Retryable(t *testing.T) {
	base := errors.New("connection reset")

	retryable := NewRetryableGatewayError("verifyPayment", base)
	assert.True(t, IsRetryable(retryable))
	assert.ErrorIs(t, retryable, base)
	assert.Contains(t, retryable.Error(), "retryable")

	terminal := NewTerminalGatewayError("refund", errors.New("card declined"))
	assert.False(t, IsRetryable(terminal))
	assert.Contains(t, terminal.Error(), "terminal")
}

func TestIsRetryable_WrappedError(t *testing.T) {
	inner := NewRetryableGatewayError("payout", errors.New("timeout"))
	wrapped := fmt.Errorf("release escrow: %w", inner)
	assert.True(t, IsRetryable(wrapped))

	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestEventStatus_IsValid(t *testing.T) {
	assert.True(t, EventStatusPaid.IsValid())
	assert.True(t, EventStatusFailed.IsValid())
	assert.True(t, EventStatusCancelled.IsValid())
	assert.False(t, EventStatus("UNKNOWN").IsValid())
	assert.False(t, EventStatus("").IsValid())
}
