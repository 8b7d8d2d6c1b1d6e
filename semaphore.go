package aio

import "slices"

// A Semaphore bounds concurrent access to a resource with a non-negative
// permit counter.
//
// Acquire suspends while no permits are available. Release hands a freed
// permit directly to the head waiter, FIFO-fair, so the counter never goes
// negative and waiters cannot be starved by late acquirers.
//
// A Semaphore must not be shared by more than one [Loop].
type Semaphore struct {
	loop    *Loop
	permits int
	waiters []*Future
}

// NewSemaphore creates a [Semaphore] with n initial permits.
func NewSemaphore(l *Loop, n int) *Semaphore {
	if n < 0 {
		panic("aio: NewSemaphore with negative permit count")
	}
	return &Semaphore{loop: l, permits: n}
}

// Acquire returns a [Future] that resolves once a permit is taken.
// Cancelling it removes the waiter from the queue.
func (s *Semaphore) Acquire() *Future {
	f := s.loop.NewFuture()
	if s.permits > 0 && len(s.waiters) == 0 {
		s.permits--
		s.grant(f)
		return f
	}
	s.waiters = append(s.waiters, f)
	f.onCancel = func() { s.remove(f) }
	return f
}

// TryAcquire takes a permit without suspending.
// It reports whether a permit was taken; it never succeeds while earlier
// waiters are queued.
func (s *Semaphore) TryAcquire() bool {
	if s.permits == 0 || len(s.waiters) != 0 {
		return false
	}
	s.permits--
	return true
}

// Release returns a permit, waking the head waiter if one is queued.
//
// One should only call this method in a [Coroutine] function.
func (s *Semaphore) Release() {
	for len(s.waiters) > 0 {
		f := s.waiters[0]
		s.waiters = s.waiters[1:]
		if f.Done() {
			continue
		}
		// The permit passes straight to the waiter.
		s.grant(f)
		return
	}
	s.permits++
}

// grant completes f with a permit. If the grantee is cancelled before it
// resumes, the unconsumed permit is released again rather than lost.
func (s *Semaphore) grant(f *Future) {
	f.onDiscard = s.Release
	f.SetResult(nil)
}

func (s *Semaphore) remove(f *Future) {
	if i := slices.Index(s.waiters, f); i != -1 {
		s.waiters = slices.Delete(s.waiters, i, i+1)
	}
}
