package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool bounds how many transcodes run at once. Submitters block until
// their job has finished, so the caller owns cleanup ordering.
type WorkerPool struct {
	JobChan  chan *Job
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stop     chan struct{}
	stopOnce sync.Once
	closing  atomic.Bool
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	pool := &WorkerPool{
		JobChan: make(chan *Job),
		stop:    make(chan struct{}),
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: pool.JobChan,
			Wg:      &pool.wg,
			closing: pool.closing.Load,
		}
		pool.wg.Add(1)
		worker.Start()
	}
	return pool
}

// Submit hands job to a free worker and waits for its result. It returns
// ctx.Err() if no worker frees up before ctx ends. Once a worker has the job
// Submit waits for it regardless of ctx; Run is expected to honor ctx.
func (p *WorkerPool) Submit(ctx context.Context, job *Job) error {
	job.ctx = ctx
	job.done = make(chan error, 1)

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	select {
	case p.JobChan <- job:
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	case <-p.stop:
		p.mu.RUnlock()
		return ErrPoolClosed
	}
	p.mu.RUnlock()

	return <-job.done
}

// Shutdown refuses new jobs, lets running jobs finish and stops the workers.
func (p *WorkerPool) Shutdown() {
	p.stopOnce.Do(func() {
		p.closing.Store(true)
		close(p.stop)

		p.mu.Lock()
		p.closed = true
		close(p.JobChan)
		p.mu.Unlock()

		p.wg.Wait()
	})
}
