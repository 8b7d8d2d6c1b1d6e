package aio

import "time"

// A Barrier releases a fixed number of parties together.
//
// Each party suspends on Wait; when the last of them arrives, the whole
// generation is released in the same tick, each waiter resolving with its
// arrival index. A broken barrier (deadline elapsed, a waiter cancelled, or
// an explicit [Barrier.Reset]) fails every current and subsequent Wait with
// [ErrBrokenBarrier] until it is reset.
//
// A Barrier must not be shared by more than one [Loop].
type Barrier struct {
	loop       *Loop
	parties    int
	breakAfter time.Duration

	waiters []*Future
	broken  bool
	timer   *TimerHandle
}

// A BarrierOption configures a [Barrier].
type BarrierOption func(*Barrier)

// WithBreakAfter breaks a generation that has not completed within d of its
// first arrival.
func WithBreakAfter(d time.Duration) BarrierOption {
	return func(b *Barrier) { b.breakAfter = d }
}

// NewBarrier creates a [Barrier] for the given number of parties.
func NewBarrier(l *Loop, parties int, opts ...BarrierOption) *Barrier {
	if parties < 1 {
		panic("aio: NewBarrier with fewer than one party")
	}
	b := &Barrier{loop: l, parties: parties}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Parties returns the number of parties required to release a generation.
func (b *Barrier) Parties() int { return b.parties }

// NWaiting returns the number of parties currently suspended on the barrier.
func (b *Barrier) NWaiting() int { return len(b.waiters) }

// Broken reports whether the barrier is in the broken state.
func (b *Barrier) Broken() bool { return b.broken }

// Wait returns a [Future] that resolves with the caller's arrival index
// once all parties have arrived. On a broken barrier it fails immediately
// with [ErrBrokenBarrier]. Cancelling a waiter breaks the generation.
//
// One should only call this method in a [Coroutine] function.
func (b *Barrier) Wait() *Future {
	f := b.loop.NewFuture()
	if b.broken {
		f.SetError(ErrBrokenBarrier)
		return f
	}
	b.waiters = append(b.waiters, f)
	f.onCancel = func() { b.breakGeneration() }

	if len(b.waiters) == 1 && b.breakAfter > 0 {
		b.timer = b.loop.CallLater(b.breakAfter, b.breakGeneration)
	}
	if len(b.waiters) == b.parties {
		b.release()
	}
	return f
}

func (b *Barrier) release() {
	b.stopTimer()
	waiters := b.waiters
	b.waiters = nil
	for i, f := range waiters {
		if !f.Done() {
			f.SetResult(i)
		}
	}
}

func (b *Barrier) breakGeneration() {
	if b.broken {
		return
	}
	b.broken = true
	b.failWaiters()
}

// Reset fails any current waiters with [ErrBrokenBarrier] and returns the
// barrier to the unbroken state, ready for a fresh generation.
func (b *Barrier) Reset() {
	b.failWaiters()
	b.broken = false
}

func (b *Barrier) failWaiters() {
	b.stopTimer()
	waiters := b.waiters
	b.waiters = nil
	for _, f := range waiters {
		if !f.Done() {
			f.SetError(ErrBrokenBarrier)
		}
	}
}

func (b *Barrier) stopTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
