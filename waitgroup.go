package aio

import "slices"

// A WaitGroup is a counter coroutines can wait on.
//
// Calling Add or Done updates the counter and, when it becomes zero, wakes
// every waiter in arrival order.
//
// A WaitGroup must not be shared by more than one [Loop].
type WaitGroup struct {
	loop    *Loop
	n       int
	waiters []*Future
}

// NewWaitGroup creates a [WaitGroup] attached to l, with a zero counter.
func NewWaitGroup(l *Loop) *WaitGroup {
	return &WaitGroup{loop: l}
}

// Add adds delta, which may be negative, to the counter.
// If the counter becomes zero, Add wakes every waiter.
// If the counter becomes negative, Add panics.
func (wg *WaitGroup) Add(delta int) {
	wg.n += delta
	if wg.n < 0 {
		panic("aio: negative WaitGroup counter")
	}
	if wg.n == 0 && delta != 0 {
		waiters := wg.waiters
		wg.waiters = nil
		for _, f := range waiters {
			if !f.Done() {
				f.SetResult(nil)
			}
		}
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait returns a [Future] that resolves once the counter is zero.
// If it is already zero, it resolves immediately (still through the ready
// queue). Cancelling it removes the waiter.
func (wg *WaitGroup) Wait() *Future {
	f := wg.loop.NewFuture()
	if wg.n == 0 {
		f.SetResult(nil)
		return f
	}
	wg.waiters = append(wg.waiters, f)
	f.onCancel = func() { wg.remove(f) }
	return f
}

func (wg *WaitGroup) remove(f *Future) {
	if i := slices.Index(wg.waiters, f); i != -1 {
		wg.waiters = slices.Delete(wg.waiters, i, i+1)
	}
}
