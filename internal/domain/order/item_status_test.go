package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemStatus_CanTransitionTo(t *testing.T) {
	all := []ItemStatus{
		ItemStatusPending, ItemStatusProcessing, ItemStatusAwaitingPickup,
		ItemStatusInWarehouse, ItemStatusOutForDelivery, ItemStatusDelivered,
		ItemStatusCancelled, ItemStatusRefunded,
	}

	allowed := map[ItemStatus][]ItemStatus{
		ItemStatusPending:        {ItemStatusProcessing, ItemStatusCancelled},
		ItemStatusProcessing:     {ItemStatusAwaitingPickup, ItemStatusCancelled},
		ItemStatusAwaitingPickup: {ItemStatusInWarehouse, ItemStatusCancelled},
		ItemStatusInWarehouse:    {ItemStatusOutForDelivery, ItemStatusCancelled},
		ItemStatusOutForDelivery: {ItemStatusDelivered, ItemStatusCancelled},
		ItemStatusDelivered:      {ItemStatusRefunded},
		ItemStatusCancelled:      {},
		ItemStatusRefunded:       {},
	}

	for _, from := range all {
		permitted := make(map[ItemStatus]bool)
		for _, to := range allowed[from] {
			permitted[to] = true
		}
		for _, to := range all {
			got := from.CanTransitionTo(to)
			assert.Equal(t, permitted[to], got, "%s -> %s", from, to)
		}
	}
}

func TestItemStatus_IsTerminal(t *testing.T) {
	assert.True(t, ItemStatusCancelled.IsTerminal())
	assert.True(t, ItemStatusRefunded.IsTerminal())
	assert.False(t, ItemStatusDelivered.IsTerminal())
	assert.False(t, ItemStatusPending.IsTerminal())
}

func TestItemStatus_PrePickup(t *testing.T) {
	assert.True(t, ItemStatusPending.PrePickup())
	assert.True(t, ItemStatusProcessing.PrePickup())
	assert.False(t, ItemStatusAwaitingPickup.PrePickup())
	assert.False(t, ItemStatusDelivered.PrePickup())
}

func TestItemStatus_IsValid(t *testing.T) {
	assert.True(t, ItemStatusOutForDelivery.IsValid())
	assert.False(t, ItemStatus("SHIPPED").IsValid())
	assert.False(t, ItemStatus("").IsValid())
}
