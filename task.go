package aio

type action uint8

const (
	_ action = iota
	doSuspend
	doReturn
	doRaise
)

// A Coroutine is a resumable computation, driven step by step by the loop.
//
// The loop calls the function with an empty [Input] the first time and,
// after every suspension, with the resolved value or error of whatever the
// task last suspended on. Each call must return a [Result] built with one of
// [Task.Suspend], [Task.Return] or [Task.Raise]; local state lives in the
// closure (or in the next Coroutine passed to [PendingResult.Then]) between
// suspension points.
//
// A panic inside a step fails the task like a raised error.
type Coroutine func(t *Task, in Input) Result

// Input carries the outcome of the [Awaitable] a task last suspended on.
// After a cancellation request, Err returns [ErrCancelled] regardless of how
// the awaitable resolved; the coroutine may honor it by raising, or observe
// it and continue. Continuing is permitted but discouraged: it makes the
// task unresponsive to cancellation until its next suspension point.
type Input struct {
	value any
	err   error
}

// Value returns the resolved value of the awaited [Awaitable].
func (in Input) Value() any { return in.value }

// Err returns the error the awaited [Awaitable] resolved with, if any.
func (in Input) Err() error { return in.err }

// Result is the type of the return value of a [Coroutine] step.
// It determines whether the task suspends, completes, or fails.
type Result struct {
	action action
	aw     Awaitable
	next   Coroutine
	value  any
	err    error
}

// PendingResult is the return type of [Task.Suspend].
// It must be transformed into a [Result] with one of its methods before
// being returned from a [Coroutine].
type PendingResult struct {
	res Result
}

// Reiterate returns a [Result] that suspends the task and, once the
// awaitable resolves, re-enters the same [Coroutine].
func (pr PendingResult) Reiterate() Result {
	return pr.res
}

// Then returns a [Result] that suspends the task and, once the awaitable
// resolves, makes a transition to next.
func (pr PendingResult) Then(next Coroutine) Result {
	if next == nil {
		panic("aio: Then with nil Coroutine")
	}
	pr.res.next = next
	return pr.res
}

// A Task drives a [Coroutine] and exposes its eventual outcome as an
// [Awaitable].
//
// A Task is created Runnable by [Loop.Spawn] and is always in exactly one of
// three states: Runnable (a step is queued), Suspended (waiting on an
// Awaitable), or Done (its future is terminal).
type Task struct {
	loop *Loop
	fut  *Future
	co   Coroutine
	name string

	// awaited is the Awaitable the task is currently suspended on;
	// cancellation is forwarded through it exactly once.
	awaited         Awaitable
	started         bool
	cancelRequested bool
}

// Spawn creates a [Task] to drive co and enqueues its first step.
// The name is diagnostic only.
func (l *Loop) Spawn(name string, co Coroutine) *Task {
	if co == nil {
		panic("aio: Spawn with nil Coroutine")
	}
	t := &Task{loop: l, fut: l.NewFuture(), co: co, name: name}
	l.obs.TaskSpawned(name)
	l.CallSoon(func() { t.step(Input{}) })
	return t
}

// Name returns the diagnostic name of t.
func (t *Task) Name() string { return t.name }

// Loop returns the loop that spawned t.
func (t *Task) Loop() *Loop { return t.loop }

// Done reports whether t has reached a terminal state.
func (t *Task) Done() bool { return t.fut.Done() }

// Cancelled reports whether t ended up Cancelled.
func (t *Task) Cancelled() bool { return t.fut.Cancelled() }

// Result returns the terminal value and error of t.
// It panics with an [InvalidStateError] if t is not Done.
func (t *Task) Result() (any, error) { return t.fut.Result() }

// Cancel requests cooperative cancellation of t.
//
// The request is forwarded into the Awaitable t is currently suspended on,
// and t observes [ErrCancelled] in its [Input] on the next resumption.
// Requests made before the first resumption collapse into one; Cancel
// reports whether this call armed a new request. Cancelling a task that has
// not yet run its first step completes it Cancelled without running the
// coroutine at all.
func (t *Task) Cancel() bool {
	if t.fut.Done() || t.cancelRequested {
		return false
	}
	t.cancelRequested = true
	if t.awaited != nil {
		t.awaited.Cancel()
	}
	return true
}

func (t *Task) future() *Future { return t.fut }

func (t *Task) step(in Input) {
	if t.fut.Done() {
		return
	}
	if t.cancelRequested {
		if !t.started {
			t.finish(nil, ErrCancelled)
			return
		}
		in = Input{err: ErrCancelled}
		t.cancelRequested = false
	}
	t.started = true
	t.awaited = nil

	var res Result
	if err := try(func() { res = t.co(t, in) }); err != nil {
		res = Result{action: doRaise, err: err}
	}

	switch res.action {
	case doReturn:
		t.finish(res.value, nil)
	case doRaise:
		t.finish(nil, res.err)
	case doSuspend:
		if res.next != nil {
			t.co = res.next
		}
		t.awaited = res.aw
		if t.cancelRequested {
			// Cancel arrived while the step was running.
			res.aw.Cancel()
		}
		res.aw.future().AddDoneCallback(func(f *Future) {
			t.awaited = nil
			v, err := f.Result()
			if t.cancelRequested && err == nil {
				// The cancellation overrides a successful resolution;
				// hand any granted resource back before resuming.
				f.discard()
			}
			t.step(Input{value: v, err: err})
		})
	default:
		panic("aio: a Coroutine must return a Result built with Suspend, Return or Raise")
	}
}

func (t *Task) finish(v any, err error) {
	t.loop.obs.TaskFinished(t.name, err)
	switch {
	case err == nil:
		t.fut.SetResult(v)
	case isCancelled(err):
		t.fut.forceCancel()
	default:
		t.fut.SetError(err)
	}
}

// Suspend returns a [PendingResult] that will suspend t on aw.
func (t *Task) Suspend(aw Awaitable) PendingResult {
	if aw == nil {
		panic("aio: Suspend on nil Awaitable")
	}
	return PendingResult{res: Result{action: doSuspend, aw: aw}}
}

// Return returns a [Result] that completes t's future with v.
func (t *Task) Return(v any) Result {
	return Result{action: doReturn, value: v}
}

// Raise returns a [Result] that fails t's future with err.
// Raising [ErrCancelled] (or an error wrapping it) moves the future to
// Cancelled instead of Failed.
func (t *Task) Raise(err error) Result {
	if err == nil {
		panic("aio: Raise with nil error")
	}
	return Result{action: doRaise, err: err}
}

// Do returns a [Coroutine] that calls f, and then completes with nil.
func Do(f func()) Coroutine {
	return func(t *Task, _ Input) Result {
		f()
		return t.Return(nil)
	}
}
