package aio

import "time"

// Sleep returns a [Future] that resolves with nil once d has elapsed.
// Cancelling it stops the underlying timer.
func (l *Loop) Sleep(d time.Duration) *Future {
	f := l.NewFuture()
	h := l.CallLater(d, func() {
		f.SetResult(nil)
	})
	f.onCancel = func() { h.Stop() }
	return f
}

// Timeout wraps aw with a deadline.
//
// If aw resolves first, its value or error passes through unchanged and the
// timer is stopped. If the deadline elapses first, aw is cancelled and the
// returned [Future] fails with [ErrTimeout]. Cancelling the returned
// [Future] cancels aw and stops the timer.
func (l *Loop) Timeout(d time.Duration, aw Awaitable) *Future {
	out := l.NewFuture()
	h := l.CallLater(d, func() {
		if out.Done() {
			return
		}
		aw.Cancel()
		out.SetError(ErrTimeout)
	})
	aw.future().AddDoneCallback(func(f *Future) {
		if out.Done() {
			// Lost to the deadline (or to an outside cancellation);
			// the result is discarded, and any granted resource is
			// handed back to its owner.
			f.markRetrieved()
			f.discard()
			return
		}
		h.Stop()
		v, err := f.Result()
		switch {
		case err == nil:
			// The mirror inherits the discard duty for v.
			out.onDiscard = f.discard
			out.SetResult(v)
		case f.Cancelled():
			out.forceCancel()
		default:
			out.SetError(err)
		}
	})
	out.onCancel = func() {
		h.Stop()
		aw.Cancel()
	}
	return out
}
