package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubmitReturnsJobResult(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Shutdown()

	want := errors.New("ffmpeg failed")
	err := pool.Submit(context.Background(), &Job{ID: "a", Type: JobTranscode, Run: func(context.Context) error { return want }})
	assert.ErrorIs(t, err, want)

	err = pool.Submit(context.Background(), &Job{ID: "b", Type: JobTranscode, Run: func(context.Context) error { return nil }})
	assert.NoError(t, err)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewWorkerPool(workers)
	defer pool.Shutdown()

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.Submit(context.Background(), &Job{Type: JobTranscode, Run: func(context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			}})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(workers))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(0))
}

func TestSubmitGivesUpWhenContextEndsWhileQueued(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = pool.Submit(context.Background(), &Job{Run: func(context.Context) error {
			close(started)
			<-release
			return nil
		}})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := pool.Submit(ctx, &Job{Run: func(context.Context) error { ran = true; return nil }})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
	close(release)
}

func TestRunReceivesSubmitterContext(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "merge-1")
	var got any
	require.NoError(t, pool.Submit(ctx, &Job{Run: func(c context.Context) error {
		got = c.Value(key{})
		return nil
	}}))
	assert.Equal(t, "merge-1", got)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Shutdown()
	pool.Shutdown()

	err := pool.Submit(context.Background(), &Job{Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestShutdownWaitsForRunningJob(t *testing.T) {
	pool := NewWorkerPool(1)

	started := make(chan struct{})
	var finished atomic.Bool
	result := make(chan error, 1)
	go func() {
		result <- pool.Submit(context.Background(), &Job{Run: func(context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return nil
		}})
	}()
	<-started

	pool.Shutdown()
	assert.True(t, finished.Load())
	assert.NoError(t, <-result)
}
