package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

func TestPoolExecutesSubmittedTasks(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 4, QueueSize: 16}, logger.Nop())
	defer pool.Stop()

	var done int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := pool.TrySubmit(func(context.Context) {
			atomic.AddInt32(&done, 1)
			wg.Done()
		})
		require.True(t, ok)
	}

	wg.Wait()
	assert.EqualValues(t, 10, atomic.LoadInt32(&done))
}

func TestTrySubmitReturnsFalseWhenQueueFull(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, logger.Nop())
	defer pool.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.TrySubmit(func(context.Context) {
		close(started)
		<-block
	}))
	<-started

	// worker busy: the single queue slot fills, the next submit is refused
	require.True(t, pool.TrySubmit(func(context.Context) {}))
	assert.False(t, pool.TrySubmit(func(context.Context) {}))
	assert.Equal(t, 1, pool.Depth())

	close(block)
}

func TestStopDrainsQueuedTasks(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 1, QueueSize: 8}, logger.Nop())

	var done int32
	for i := 0; i < 5; i++ {
		require.True(t, pool.TrySubmit(func(context.Context) {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&done, 1)
		}))
	}

	pool.Stop()
	assert.EqualValues(t, 5, atomic.LoadInt32(&done))
}

func TestTrySubmitRefusedAfterStop(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 1, QueueSize: 1}, logger.Nop())
	pool.Stop()

	assert.False(t, pool.TrySubmit(func(context.Context) {}))
}

func TestStopIsIdempotent(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 2, QueueSize: 4}, logger.Nop())
	pool.Stop()
	pool.Stop()
}

func TestPoolRecoversFromPanickingTask(t *testing.T) {
	pool := NewPool(PoolConfig{Workers: 1, QueueSize: 4}, logger.Nop())
	defer pool.Stop()

	require.True(t, pool.TrySubmit(func(context.Context) {
		panic("boom")
	}))

	// the worker must survive the panic and keep serving tasks
	done := make(chan struct{})
	require.Eventually(t, func() bool {
		return pool.TrySubmit(func(context.Context) { close(done) })
	}, time.Second, 5*time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task after panic never ran")
	}
}

func TestNewPoolRejectsInvalidConfig(t *testing.T) {
	assert.Panics(t, func() { NewPool(PoolConfig{Workers: 0, QueueSize: 1}, logger.Nop()) })
	assert.Panics(t, func() { NewPool(PoolConfig{Workers: 1, QueueSize: 0}, logger.Nop()) })
}
