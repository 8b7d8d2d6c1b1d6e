package aio

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled signals a cancelled suspension point.
	// A [Coroutine] resumed with this error in its [Input] is being asked to
	// stop; raising it moves the task's [Future] to the Cancelled state.
	ErrCancelled = errors.New("aio: cancelled")

	// ErrTimeout reports that a deadline elapsed before the wrapped
	// [Awaitable] resolved. See [Loop.Timeout].
	ErrTimeout = errors.New("aio: timeout")

	// ErrBrokenBarrier reports that a [Barrier] was broken by a timeout or
	// by a party's cancellation while other parties were still waiting.
	ErrBrokenBarrier = errors.New("aio: broken barrier")

	// ErrStopped reports that the loop was stopped before a task driven by
	// [Loop.Run] reached a terminal state.
	ErrStopped = errors.New("aio: loop stopped")
)

// An InvalidStateError is the panic value for an operation that is invalid
// for a [Future]'s current state, like completing a future twice.
// It always indicates a programming error.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("aio: %s on %s future", e.Op, e.State)
}

// A PanicError wraps a value recovered from a panicking callback or
// coroutine step, along with the stack trace captured at recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func isCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
