package aio

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// A Pool offloads blocking calls to worker goroutines and delivers their
// results back onto the loop.
//
// Submit is the only part of the runtime that spawns goroutines; everything
// a worker produces re-enters the loop through [Loop.CallSoonThreadsafe], so
// loop code never observes concurrency.
type Pool struct {
	loop *Loop
	sem  *semaphore.Weighted

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a [Pool] running at most workers blocking calls at a time.
func NewPool(l *Loop, workers int) *Pool {
	if workers < 1 {
		panic("aio: NewPool with fewer than one worker")
	}
	return &Pool{loop: l, sem: semaphore.NewWeighted(int64(workers))}
}

// Submit schedules fn on a worker and returns a [Future] for its outcome.
//
// The future resolves on the loop goroutine: with fn's value, with its
// error, or with a [PanicError] if fn panicked. Cancelling the future only
// discards the result; a blocking call already running cannot be interrupted.
//
// Submit panics if the pool is closed.
func (p *Pool) Submit(fn func() (any, error)) *Future {
	if fn == nil {
		panic("aio: Submit with nil function")
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		panic("aio: Submit on closed Pool")
	}
	p.wg.Add(1)
	p.mu.Unlock()

	f := p.loop.NewFuture()
	p.loop.obs.BlockingSubmitted()
	go func() {
		defer p.wg.Done()
		// The weighted semaphore bounds running workers; queued submissions
		// park here, FIFO.
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			p.loop.CallSoonThreadsafe(func() {
				if !f.Done() {
					f.SetError(err)
				}
			})
			return
		}
		defer p.sem.Release(1)

		start := p.loop.clock.Now()
		var (
			v   any
			err error
		)
		if perr := try(func() { v, err = fn() }); perr != nil {
			err = perr
		}
		p.loop.obs.BlockingFinished(p.loop.clock.Now().Sub(start))

		p.loop.CallSoonThreadsafe(func() {
			if f.Done() {
				// Cancelled while the call was running.
				return
			}
			if err != nil {
				f.SetError(err)
				return
			}
			f.SetResult(v)
		})
	}()
	return f
}

// Close rejects further submissions and blocks until every worker has
// finished. It must not be called on the loop goroutine while submitted
// futures are still pending, as the workers need the loop to keep ticking.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
