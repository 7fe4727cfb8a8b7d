package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsAllJobs(t *testing.T) {
	pool := New(4)

	var count atomic.Int64
	for i := 0; i < 100; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			count.Add(1)
		})
	}
	pool.Wait()

	assert.Equal(t, int64(100), count.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const maxWorkers = 3

	pool := New(maxWorkers)

	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	gate := make(chan struct{})

	for i := 0; i < 20; i++ {
		pool.Submit(context.Background(), func(context.Context) {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			<-gate

			mu.Lock()
			current--
			mu.Unlock()
		})
	}

	close(gate)
	pool.Wait()

	require.LessOrEqual(t, peak, maxWorkers)
	assert.Positive(t, peak)
}

func TestPool_CanceledContextSkipsJob(t *testing.T) {
	pool := New(1)

	block := make(chan struct{})
	pool.Submit(context.Background(), func(context.Context) {
		<-block
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	pool.Submit(ctx, func(context.Context) {
		ran = true
	})

	// Give the second job time to observe the canceled context while the
	// only worker slot is still held.
	time.Sleep(50 * time.Millisecond)
	close(block)
	pool.Wait()

	assert.False(t, ran)
}
