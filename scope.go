package aio

import "errors"

// A Scope ties a group of tasks together so that none of them outlives it
// unobserved.
//
// The first child failure cancels every sibling, and the aggregate of all
// non-cancellation errors surfaces from [Scope.Wait]. Cancelling the Wait
// handle cancels every child.
//
// A Scope must not be shared by more than one [Loop].
type Scope struct {
	loop     *Loop
	children []*Task
	open     int
	errs     []error
	waiter   *Future
	sealed   bool
}

// NewScope creates an empty [Scope] attached to l.
func NewScope(l *Loop) *Scope {
	return &Scope{loop: l}
}

// Spawn creates a child task in the scope.
// It panics once the scope's [Scope.Wait] handle has resolved.
func (s *Scope) Spawn(name string, co Coroutine) *Task {
	if s.sealed {
		panic("aio: Spawn on a finished Scope")
	}
	t := s.loop.Spawn(name, co)
	s.children = append(s.children, t)
	s.open++
	t.fut.AddDoneCallback(func(f *Future) { s.childDone(f) })
	return t
}

// Cancel requests cancellation of every child that is still running.
func (s *Scope) Cancel() {
	for _, t := range s.children {
		t.Cancel()
	}
}

// Wait returns a [Future] that resolves once every child is terminal:
// with nil if all completed, or failing with the [errors.Join] of every
// child failure. Cancellations requested by the scope itself do not count
// as failures. Cancelling the returned [Future] cancels every child.
//
// One should only call this method in a [Coroutine] function.
func (s *Scope) Wait() *Future {
	if s.waiter == nil {
		s.waiter = s.loop.NewFuture()
		s.waiter.onCancel = s.Cancel
		if s.open == 0 {
			s.settle()
		}
	}
	return s.waiter
}

func (s *Scope) childDone(f *Future) {
	s.open--
	_, err := f.Result()
	if err != nil && !isCancelled(err) {
		first := len(s.errs) == 0
		s.errs = append(s.errs, err)
		if first {
			// One failure sinks the whole group.
			s.Cancel()
		}
	}
	if s.open == 0 && s.waiter != nil {
		s.settle()
	}
}

func (s *Scope) settle() {
	s.sealed = true
	if s.waiter.Done() {
		// The waiter was cancelled from outside; the children are already
		// terminal and their errors retrieved above.
		return
	}
	if len(s.errs) > 0 {
		s.waiter.SetError(errors.Join(s.errs...))
		return
	}
	s.waiter.SetResult(nil)
}
