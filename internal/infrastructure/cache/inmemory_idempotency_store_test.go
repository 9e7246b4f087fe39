package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	fresh, err := store.MarkProcessed(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.MarkProcessed(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh, "second mark of the same event reports duplicate")

	processed, err := store.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryStore_Unmark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Unmark(ctx, "evt_1"))

	fresh, err := store.MarkProcessed(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh, "unmarked event can be processed again")
}

func TestInMemoryStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "evt_short", 10*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	processed, err := store.IsProcessed(ctx, "evt_short")
	require.NoError(t, err)
	assert.False(t, processed, "expired marker reads as unprocessed")

	fresh, err := store.MarkProcessed(ctx, "evt_short", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestInMemoryStore_ConcurrentMark(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fresh, err := store.MarkProcessed(ctx, "evt_race", time.Minute)
			require.NoError(t, err)
			if fresh {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent marker wins")
}

func TestInMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
