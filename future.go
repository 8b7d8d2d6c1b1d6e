package aio

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// An Awaitable is anything a [Coroutine] can suspend on, expecting an
// eventual value or error: a [Future], a [Task], a sleep or timeout handle,
// or a primitive wait handle.
type Awaitable interface {
	// Cancel requests cancellation and reports whether the request took
	// effect. For a plain [Future] this is an immediate state transition;
	// for a [Task] it is a cooperative request.
	Cancel() bool

	future() *Future
}

type futureState uint8

const (
	statePending futureState = iota
	stateCompleted
	stateFailed
	stateCancelled
)

func (s futureState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	case stateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// A Future is a one-shot result container.
//
// A Future is created Pending and makes exactly one terminal transition:
// Completed via [Future.SetResult], Failed via [Future.SetError], or
// Cancelled via [Future.Cancel]. A second transition panics with
// an [InvalidStateError].
//
// Completion callbacks never run synchronously; they are always dispatched
// through the loop's ready queue, in registration order.
//
// A Future must not be shared by more than one [Loop].
type Future struct {
	loop      *Loop
	state     futureState
	value     any
	err       error
	callbacks []func(*Future)

	// onCancel lets the owning primitive undo bookkeeping (drop a queued
	// waiter, stop a timer) when the future is cancelled from outside.
	onCancel func()

	// onDiscard returns a granted resource (lock ownership, a permit, a
	// queue item) when a Completed future's value is thrown away because
	// the consumer was cancelled before it could resume.
	onDiscard func()

	failure *failure
}

type failure struct {
	err       error
	retrieved atomic.Bool
}

// NewFuture creates a Pending [Future] attached to l.
func (l *Loop) NewFuture() *Future {
	return &Future{loop: l}
}

// Done reports whether f has reached a terminal state.
func (f *Future) Done() bool { return f.state != statePending }

// Cancelled reports whether f ended up Cancelled.
func (f *Future) Cancelled() bool { return f.state == stateCancelled }

// SetResult completes f with v.
// It panics with an [InvalidStateError] if f is not Pending.
func (f *Future) SetResult(v any) {
	if f.state != statePending {
		panic(&InvalidStateError{Op: "SetResult", State: f.state.String()})
	}
	f.state = stateCompleted
	f.value = v
	f.onCancel = nil
	f.scheduleCallbacks()
}

// SetError fails f with err.
// It panics with an [InvalidStateError] if f is not Pending.
//
// A Failed future whose error is never retrieved — by [Future.Result],
// [Future.Err], or an awaiting coroutine — is reported through the loop's
// exception handler when it is garbage collected, so that failures cannot
// vanish silently.
func (f *Future) SetError(err error) {
	if err == nil {
		panic("aio: SetError with nil error")
	}
	if f.state != statePending {
		panic(&InvalidStateError{Op: "SetError", State: f.state.String()})
	}
	f.state = stateFailed
	f.err = err
	f.onCancel = nil
	f.failure = &failure{err: err}
	handler := f.loop.handler
	runtime.AddCleanup(f, func(fl *failure) {
		if !fl.retrieved.Load() {
			handler(fmt.Errorf("aio: failure was never retrieved: %w", fl.err))
		}
	}, f.failure)
	f.scheduleCallbacks()
}

// Cancel transitions f from Pending to Cancelled.
// It reports whether the transition happened; cancelling a terminal future
// has no effect.
func (f *Future) Cancel() bool {
	if f.state != statePending {
		return false
	}
	hook := f.onCancel
	f.onCancel = nil
	f.state = stateCancelled
	f.err = ErrCancelled
	if hook != nil {
		hook()
	}
	f.scheduleCallbacks()
	return true
}

// forceCancel is Cancel without the onCancel hook, for owners that already
// did their own bookkeeping (a Task raising ErrCancelled, a timeout mirror).
func (f *Future) forceCancel() {
	if f.state != statePending {
		return
	}
	f.onCancel = nil
	f.state = stateCancelled
	f.err = ErrCancelled
	f.scheduleCallbacks()
}

// Result returns the terminal value and error of f.
// A Cancelled future yields [ErrCancelled].
// It panics with an [InvalidStateError] if f is still Pending.
func (f *Future) Result() (any, error) {
	if f.state == statePending {
		panic(&InvalidStateError{Op: "Result", State: f.state.String()})
	}
	f.markRetrieved()
	return f.value, f.err
}

// Err returns the terminal error of f, nil if it Completed.
// It panics with an [InvalidStateError] if f is still Pending.
func (f *Future) Err() error {
	if f.state == statePending {
		panic(&InvalidStateError{Op: "Err", State: f.state.String()})
	}
	f.markRetrieved()
	return f.err
}

// AddDoneCallback registers cb to run once f is terminal.
// The callback is always dispatched through the ready queue, even when f is
// already terminal, so that completion order stays predictable.
func (f *Future) AddDoneCallback(cb func(*Future)) {
	if cb == nil {
		panic("aio: AddDoneCallback with nil callback")
	}
	if f.state != statePending {
		f.loop.CallSoon(func() { cb(f) })
		return
	}
	f.callbacks = append(f.callbacks, cb)
}

func (f *Future) scheduleCallbacks() {
	cbs := f.callbacks
	f.callbacks = nil
	for _, cb := range cbs {
		f.loop.CallSoon(func() { cb(f) })
	}
}

func (f *Future) markRetrieved() {
	if f.failure != nil {
		f.failure.retrieved.Store(true)
	}
}

// discard reports that a Completed future's value was thrown away without
// being consumed, handing the underlying resource back to its owner.
func (f *Future) discard() {
	hook := f.onDiscard
	f.onDiscard = nil
	if hook != nil && f.state == stateCompleted {
		hook()
	}
}

func (f *Future) future() *Future { return f }
