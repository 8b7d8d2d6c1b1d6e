package aio

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// protect runs a top-level callback and routes any escaping panic to the
// loop-wide exception hook instead of dropping it or tearing down the loop.
func (l *Loop) protect(f func()) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		l.handler(&PanicError{Value: v, Stack: debug.Stack()})
	}()
	f()
}

// try runs a coroutine step, converting an escaping panic into an error so
// that it fails the task's future like any raised error would.
func try(f func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	f()
	return nil
}

func defaultExceptionHandler(err error) {
	var pe *PanicError
	if e, ok := err.(*PanicError); ok {
		pe = e
	}
	if pe != nil {
		slog.Error("aio: callback panicked", "value", fmt.Sprint(pe.Value), "stack", string(pe.Stack))
		return
	}
	slog.Error("aio: unhandled error", "err", err)
}
