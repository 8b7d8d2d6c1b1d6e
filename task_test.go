package aio_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tickloop/aio"
)

func TestTaskReturn(t *testing.T) {
	l := aio.New()
	v, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		return t.Return("done")
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "done" {
		t.Fatalf("got %v, want %q.", v, "done")
	}
}

func TestTaskRaise(t *testing.T) {
	l := aio.New()
	boom := errors.New("boom")
	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		return t.Raise(boom)
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom.", err)
	}
}

func TestTaskPanicBecomesError(t *testing.T) {
	l := aio.New()
	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		panic("boom")
	})
	var pe *aio.PanicError
	if !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("got %v, want a PanicError wrapping %q.", err, "boom")
	}
}

func TestTaskTransitions(t *testing.T) {
	clock := aio.NewVirtualClock(time.Unix(0, 0))
	l := aio.New(aio.WithClock(clock))

	var steps []string
	v, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		steps = append(steps, "first")
		return t.Suspend(l.Sleep(time.Millisecond)).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			steps = append(steps, "second")
			return t.Return(len(steps))
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 || steps[0] != "first" || steps[1] != "second" {
		t.Fatalf("transitions ran as %v with result %v.", steps, v)
	}
}

func TestTaskReiterate(t *testing.T) {
	l := aio.New()
	n := 0
	v, err := drive(t, l, func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		if n == 3 {
			return t.Return(n)
		}
		n++
		f := l.NewFuture()
		f.SetResult(nil)
		return t.Suspend(f).Reiterate()
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != 3 {
		t.Fatalf("got %v, want 3.", v)
	}
}

func TestTaskCancelBeforeFirstStep(t *testing.T) {
	l := aio.New()
	ran := false

	var child *aio.Task
	var first, second bool
	v, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		child = l.Spawn("child", func(t *aio.Task, _ aio.Input) aio.Result {
			ran = true
			return t.Return(nil)
		})
		first = child.Cancel()
		second = child.Cancel()
		return t.Suspend(child).Then(func(t *aio.Task, in aio.Input) aio.Result {
			return t.Return(in.Err())
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !first {
		t.Fatal("Cancel of a fresh task did not arm.")
	}
	if second {
		t.Fatal("a second Cancel armed again.")
	}
	if ran {
		t.Fatal("a task cancelled before its first step still ran.")
	}
	if !child.Cancelled() {
		t.Fatal("the child does not report Cancelled.")
	}
	if cerr, ok := v.(error); !ok || !errors.Is(cerr, aio.ErrCancelled) {
		t.Fatalf("the awaiting task observed %v, want ErrCancelled.", v)
	}
}

func TestTaskCancelWhileSuspended(t *testing.T) {
	clock := aio.NewVirtualClock(time.Unix(0, 0))
	l := aio.New(aio.WithClock(clock))

	var child *aio.Task
	v, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		child = l.Spawn("child", func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Suspend(l.Sleep(time.Hour)).Reiterate()
		})
		return t.Suspend(l.Sleep(10 * time.Millisecond)).Then(func(t *aio.Task, _ aio.Input) aio.Result {
			child.Cancel()
			return t.Suspend(child).Then(func(t *aio.Task, in aio.Input) aio.Result {
				return t.Return(in.Err())
			})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !child.Cancelled() {
		t.Fatal("the child does not report Cancelled.")
	}
	if cerr, ok := v.(error); !ok || !errors.Is(cerr, aio.ErrCancelled) {
		t.Fatalf("observed %v, want ErrCancelled.", v)
	}
	if clock.Now().Sub(time.Unix(0, 0)) >= time.Hour {
		t.Fatal("cancelling the sleeper did not stop its timer.")
	}
}

func TestTaskObserveCancellationAndContinue(t *testing.T) {
	clock := aio.NewVirtualClock(time.Unix(0, 0))
	l := aio.New(aio.WithClock(clock))

	var child *aio.Task
	v, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		child = l.Spawn("stubborn", func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				// Acknowledge the request but finish normally.
				return t.Return("ignored")
			}
			return t.Suspend(l.Sleep(time.Hour)).Reiterate()
		})
		return t.Suspend(l.Sleep(10 * time.Millisecond)).Then(func(t *aio.Task, _ aio.Input) aio.Result {
			child.Cancel()
			return t.Suspend(child).Then(func(t *aio.Task, in aio.Input) aio.Result {
				if in.Err() != nil {
					return t.Raise(in.Err())
				}
				return t.Return(in.Value())
			})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "ignored" {
		t.Fatalf("got %v, want %q.", v, "ignored")
	}
	if child.Cancelled() {
		t.Fatal("a task that ignored cancellation still reports Cancelled.")
	}
}

func TestTaskCancelPropagatesToChild(t *testing.T) {
	clock := aio.NewVirtualClock(time.Unix(0, 0))
	l := aio.New(aio.WithClock(clock))

	var parent, child *aio.Task
	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		parent = l.Spawn("parent", func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			child = l.Spawn("child", func(t *aio.Task, in aio.Input) aio.Result {
				if in.Err() != nil {
					return t.Raise(in.Err())
				}
				return t.Suspend(l.Sleep(time.Hour)).Reiterate()
			})
			return t.Suspend(child).Reiterate()
		})
		return t.Suspend(l.Sleep(10 * time.Millisecond)).Then(func(t *aio.Task, _ aio.Input) aio.Result {
			parent.Cancel()
			return t.Suspend(parent).Then(func(t *aio.Task, in aio.Input) aio.Result {
				return t.Return(in.Err())
			})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if !parent.Cancelled() {
		t.Fatal("the parent does not report Cancelled.")
	}
	if !child.Cancelled() {
		t.Fatal("cancelling the parent did not cancel the awaited child.")
	}
}

func TestDo(t *testing.T) {
	l := aio.New()
	called := false
	if _, err := drive(t, l, aio.Do(func() { called = true })); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Fatal("Do did not call its function.")
	}
}
