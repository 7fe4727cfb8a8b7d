// Package workerpool bounds the number of jobs processed concurrently.
package workerpool

import (
	"context"
	"sync"
)

// Pool runs submitted functions on at most maxWorkers goroutines at a time.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a pool allowing maxWorkers concurrent jobs.
func New(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &Pool{sem: make(chan struct{}, maxWorkers)}
}

// Submit schedules fn to run once a worker slot frees up. If the context is
// canceled before a slot opens, fn never runs.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
			fn(ctx)
		case <-ctx.Done():
		}
	}()
}

// Wait blocks until all submitted jobs have finished or been abandoned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
