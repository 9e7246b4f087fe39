package escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  Status
		isValid bool
	}{
		{StatusNone, true},
		{StatusHolding, true},
		{StatusAwaitingRelease, true},
		{StatusReleased, true},
		{StatusTransferred, true},
		{StatusTransferFailed, true},
		{StatusRefunded, true},
		{StatusCancelled, true},
		{Status("INVALID"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		// Happy path
		{StatusNone, StatusHolding, true},
		{StatusHolding, StatusAwaitingRelease, true},
		{StatusAwaitingRelease, StatusReleased, true},
		{StatusReleased, StatusTransferred, true},
		// Off-ramps
		{StatusNone, StatusCancelled, true},
		{StatusHolding, StatusRefunded, true},
		{StatusAwaitingRelease, StatusRefunded, true},
		{StatusReleased, StatusRefunded, true},
		{StatusReleased, StatusTransferFailed, true},
		{StatusTransferFailed, StatusTransferred, true},
		// CANCELLED implies no capture, so a captured hold may never go there
		{StatusHolding, StatusCancelled, false},
		{StatusAwaitingRelease, StatusCancelled, false},
		// REFUNDED implies a reversal of a capture, so it is unreachable pre-capture
		{StatusNone, StatusRefunded, false},
		// No skipping
		{StatusNone, StatusAwaitingRelease, false},
		{StatusHolding, StatusReleased, false},
		{StatusHolding, StatusTransferred, false},
		{StatusAwaitingRelease, StatusTransferred, false},
		// Terminal states
		{StatusTransferred, StatusRefunded, false},
		{StatusRefunded, StatusHolding, false},
		{StatusCancelled, StatusHolding, false},
		// No going backwards
		{StatusAwaitingRelease, StatusHolding, false},
		{StatusReleased, StatusAwaitingRelease, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_Captured(t *testing.T) {
	assert.False(t, StatusNone.Captured())
	assert.False(t, StatusCancelled.Captured())
	assert.True(t, StatusHolding.Captured())
	assert.True(t, StatusAwaitingRelease.Captured())
	assert.True(t, StatusRefunded.Captured())
	assert.True(t, StatusTransferred.Captured())
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusTransferred.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusHolding.IsTerminal())
	assert.False(t, StatusTransferFailed.IsTerminal())
}
