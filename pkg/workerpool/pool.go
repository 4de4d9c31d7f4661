// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The reconcile pass uses it to fan account repairs out without opening an
// unbounded number of concurrent store calls:
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	for _, shop := range shops {
//	    shop := shop
//	    if err := pool.SubmitWait(ctx, func() { repair(ctx, shop) }); err != nil {
//	        break // ctx cancelled or pool closed
//	    }
//	}
//	pool.Wait()
package workerpool

import (
	"context"
	"errors"
	"sync"

	"github.com/vancyferns/near2door/pkg/logger"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks    chan func()
	workers  sync.WaitGroup
	inflight sync.WaitGroup
	once     sync.Once
	closeCh  chan struct{}
}

// New creates a Pool with size workers and a queue of 2×size.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.workers.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task without blocking.
//   - Returns ErrPoolFull if the task queue is at capacity.
//   - Returns ErrPoolClosed if Shutdown has been called.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	p.inflight.Add(1)
	select {
	case p.tasks <- task:
		return nil
	default:
		p.inflight.Done()
		return ErrPoolFull
	}
}

// SubmitWait blocks until a slot is free, ctx is done or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.inflight.Add(1)
	select {
	case <-ctx.Done():
		p.inflight.Done()
		return ctx.Err()
	case <-p.closeCh:
		p.inflight.Done()
		return ErrPoolClosed
	case p.tasks <- task:
		return nil
	}
}

// Wait blocks until every accepted task has finished. The pool stays usable.
func (p *Pool) Wait() {
	p.inflight.Wait()
}

// Shutdown stops accepting tasks, drains the queue and stops the workers.
// Safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		close(p.tasks)
		p.workers.Wait()
	})
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer p.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", r)
		}
	}()
	task()
}
