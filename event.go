package aio

import "slices"

// An Event is a boolean flag coroutines can wait on.
//
// Wait suspends until the flag is set. Set wakes every waiter present at
// that moment, in arrival order; the flag has no history, so waiters that
// arrive after a Clear block again.
//
// An Event must not be shared by more than one [Loop].
type Event struct {
	loop    *Loop
	set     bool
	waiters []*Future
}

// NewEvent creates an [Event] attached to l, initially unset.
func NewEvent(l *Loop) *Event {
	return &Event{loop: l}
}

// IsSet reports whether the flag is set.
func (e *Event) IsSet() bool { return e.set }

// Wait returns a [Future] that resolves once the flag is set.
// If the flag is already set, it resolves immediately (still through the
// ready queue). Cancelling it removes the waiter.
func (e *Event) Wait() *Future {
	f := e.loop.NewFuture()
	if e.set {
		f.SetResult(nil)
		return f
	}
	e.waiters = append(e.waiters, f)
	f.onCancel = func() { e.remove(f) }
	return f
}

// Set sets the flag and wakes all current waiters, in arrival order.
//
// One should only call this method in a [Coroutine] function.
func (e *Event) Set() {
	if e.set {
		return
	}
	e.set = true
	waiters := e.waiters
	e.waiters = nil
	for _, f := range waiters {
		if !f.Done() {
			f.SetResult(nil)
		}
	}
}

// Clear resets the flag; later waiters block until the next [Event.Set].
func (e *Event) Clear() {
	e.set = false
}

func (e *Event) remove(f *Future) {
	if i := slices.Index(e.waiters, f); i != -1 {
		e.waiters = slices.Delete(e.waiters, i, i+1)
	}
}
