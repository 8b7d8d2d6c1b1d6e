package aio

import "slices"

// A Lock is a binary, non-reentrant mutex for coroutines.
//
// Acquire suspends while the lock is held, FIFO-fair: Release hands
// ownership directly to the head waiter, so a late Acquire can never barge
// in ahead of it. Re-acquiring a held lock on the same logical path is a
// caller error and deadlocks; the runtime performs no deadlock detection.
//
// A Lock must not be shared by more than one [Loop].
type Lock struct {
	loop    *Loop
	locked  bool
	waiters []*Future
}

// NewLock creates a [Lock] attached to l.
func NewLock(l *Loop) *Lock {
	return &Lock{loop: l}
}

// Locked reports whether the lock is currently held.
func (lk *Lock) Locked() bool { return lk.locked }

// Acquire returns a [Future] that resolves once the lock is held by the
// caller. Cancelling it removes the waiter from the queue.
func (lk *Lock) Acquire() *Future {
	f := lk.loop.NewFuture()
	if !lk.locked && len(lk.waiters) == 0 {
		lk.locked = true
		lk.grant(f)
		return f
	}
	lk.waiters = append(lk.waiters, f)
	f.onCancel = func() { lk.remove(f) }
	return f
}

// Release releases the lock, handing ownership to the head waiter if any.
// It panics if the lock is not held.
//
// One should only call this method in a [Coroutine] function.
func (lk *Lock) Release() {
	if !lk.locked {
		panic("aio: Release of unacquired Lock")
	}
	for len(lk.waiters) > 0 {
		f := lk.waiters[0]
		lk.waiters = lk.waiters[1:]
		if f.Done() {
			continue
		}
		// Ownership transfers without ever unlocking.
		lk.grant(f)
		return
	}
	lk.locked = false
}

// grant completes f with ownership of the lock. If the grantee is cancelled
// before it resumes, the unconsumed ownership is released again so it moves
// on to the next waiter instead of being lost.
func (lk *Lock) grant(f *Future) {
	f.onDiscard = lk.Release
	f.SetResult(nil)
}

func (lk *Lock) remove(f *Future) {
	if i := slices.Index(lk.waiters, f); i != -1 {
		lk.waiters = slices.Delete(lk.waiters, i, i+1)
	}
}
