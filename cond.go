package aio

import "slices"

// A Cond is a condition variable paired with a [Lock].
//
// Wait releases the lock and suspends until notified, then re-acquires the
// lock through its FIFO queue before resuming the caller. Notify wakes
// waiters in arrival order; woken waiters compete for the lock behind any
// acquirers already queued on it.
//
// A Cond must not be shared by more than one [Loop].
type Cond struct {
	lock    *Lock
	waiters []*Future
}

// NewCond creates a [Cond] paired with lk.
func NewCond(lk *Lock) *Cond {
	if lk == nil {
		panic("aio: NewCond with nil Lock")
	}
	return &Cond{lock: lk}
}

// Lock returns the [Lock] c is paired with.
func (c *Cond) Lock() *Lock { return c.lock }

// Wait releases the lock, suspends until notified and re-acquires the lock.
// It panics if the lock is not held.
//
// Cancelling the returned [Future] abandons the wait; the lock is left
// released, since the caller never resumes to release it.
//
// One should only call this method in a [Coroutine] function.
func (c *Cond) Wait() *Future {
	if !c.lock.Locked() {
		panic("aio: Wait on Cond without holding its Lock")
	}
	loop := c.lock.loop
	out := loop.NewFuture()

	c.lock.Release()
	notified := loop.NewFuture()
	c.waiters = append(c.waiters, notified)
	notified.onCancel = func() { c.remove(notified) }

	notified.AddDoneCallback(func(f *Future) {
		if f.Cancelled() {
			return
		}
		if out.Done() {
			// Cancelled after being picked by Notify; the notification
			// passes on to the next waiter instead of being lost.
			f.discard()
			return
		}
		ac := c.lock.Acquire()
		out.onCancel = func() { ac.Cancel() }
		ac.AddDoneCallback(func(af *Future) {
			if af.Cancelled() {
				return
			}
			if out.Done() {
				// Cancelled during re-acquisition; the lock ownership
				// goes back to its queue.
				af.discard()
				return
			}
			out.SetResult(nil)
		})
	})
	out.onCancel = func() { notified.Cancel() }
	return out
}

// Notify wakes up to n waiters, in arrival order.
// It panics if the lock is not held.
//
// One should only call this method in a [Coroutine] function.
func (c *Cond) Notify(n int) {
	if !c.lock.Locked() {
		panic("aio: Notify on Cond without holding its Lock")
	}
	for n > 0 && len(c.waiters) > 0 {
		f := c.waiters[0]
		c.waiters = c.waiters[1:]
		if f.Done() {
			continue
		}
		c.grant(f)
		n--
	}
}

// grant delivers one notification to f. If the notified waiter turns out to
// be cancelled, the notification moves on to the next queued waiter.
func (c *Cond) grant(f *Future) {
	f.onDiscard = c.notifyNext
	f.SetResult(nil)
}

func (c *Cond) notifyNext() {
	for len(c.waiters) > 0 {
		f := c.waiters[0]
		c.waiters = c.waiters[1:]
		if f.Done() {
			continue
		}
		c.grant(f)
		return
	}
}

// NotifyAll wakes every current waiter.
// It panics if the lock is not held.
//
// One should only call this method in a [Coroutine] function.
func (c *Cond) NotifyAll() {
	c.Notify(len(c.waiters))
}

func (c *Cond) remove(f *Future) {
	if i := slices.Index(c.waiters, f); i != -1 {
		c.waiters = slices.Delete(c.waiters, i, i+1)
	}
}
