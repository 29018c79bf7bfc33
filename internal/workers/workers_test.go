package workers

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchPreservesPerKeyOrder(t *testing.T) {
	wp := NewWorkerPool(4, 16)

	var mu sync.Mutex
	seen := map[string][]int{}
	for i := 0; i < 100; i++ {
		for _, key := range []string{"guest-a", "guest-b", "guest-c"} {
			i, key := i, key
			require.NoError(t, wp.Dispatch(key, func() {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
			}))
		}
	}
	wp.Stop()

	for key, order := range seen {
		require.Len(t, order, 100, key)
		for i, v := range order {
			assert.Equal(t, i, v, key)
		}
	}
}

func TestPanickingTaskDoesNotKillWorker(t *testing.T) {
	wp := NewWorkerPool(1, 4)

	var ran atomic.Bool
	require.NoError(t, wp.Dispatch("k", func() { panic("boom") }))
	require.NoError(t, wp.Dispatch("k", func() { ran.Store(true) }))
	wp.Stop()

	assert.True(t, ran.Load())
}

func TestStop(t *testing.T) {
	wp := NewWorkerPool(2, 2)
	wp.Stop()
	wp.Stop()

	assert.ErrorIs(t, wp.Dispatch("k", func() {}), ErrStopped)
	assert.False(t, wp.TryDispatch("k", func() {}))
}

func TestTryDispatchReportsFullQueue(t *testing.T) {
	wp := NewWorkerPool(1, 1)
	block := make(chan struct{})
	started := make(chan struct{})

	require.True(t, wp.TryDispatch("k", func() {
		close(started)
		<-block
	}))
	<-started
	require.True(t, wp.TryDispatch("k", func() {}))
	assert.False(t, wp.TryDispatch("k", func() {}))

	close(block)
	wp.Stop()
}

func TestHashStringIsStable(t *testing.T) {
	assert.Equal(t, HashString("guest-42"), HashString("guest-42"))
	assert.Equal(t, uint32(0x811c9dc5), HashString(""))
}
