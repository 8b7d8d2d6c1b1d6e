package aio_test

import (
	"errors"
	"testing"
	"time"

	"github.com/tickloop/aio"
)

func TestScopeWaitAll(t *testing.T) {
	l := aio.New()
	done := 0

	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(l)
		for range 3 {
			s.Spawn("child", aio.Do(func() { done++ }))
		}
		return t.Suspend(s.Wait()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Return(nil)
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	if done != 3 {
		t.Fatalf("%d children ran, want 3.", done)
	}
}

func TestScopeFirstFailureCancelsSiblings(t *testing.T) {
	clock := aio.NewVirtualClock(time.Unix(0, 0))
	l := aio.New(aio.WithClock(clock))

	boom := errors.New("boom")
	var slow *aio.Task

	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(l)
		slow = s.Spawn("slow", func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Suspend(l.Sleep(time.Hour)).Reiterate()
		})
		s.Spawn("failing", func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Suspend(l.Sleep(10 * time.Millisecond)).Then(func(t *aio.Task, _ aio.Input) aio.Result {
				return t.Raise(boom)
			})
		})
		return t.Suspend(s.Wait()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Return(nil)
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want an aggregate containing boom.", err)
	}
	if errors.Is(err, aio.ErrCancelled) {
		t.Fatal("sibling cancellations leaked into the aggregate.")
	}
	if !slow.Cancelled() {
		t.Fatal("the failure did not cancel the slow sibling.")
	}
}

func TestScopeWaitCancelCancelsChildren(t *testing.T) {
	clock := aio.NewVirtualClock(time.Unix(0, 0))
	l := aio.New(aio.WithClock(clock))

	var children []*aio.Task
	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(l)
		for range 2 {
			children = append(children, s.Spawn("child", func(t *aio.Task, in aio.Input) aio.Result {
				if in.Err() != nil {
					return t.Raise(in.Err())
				}
				return t.Suspend(l.Sleep(time.Hour)).Reiterate()
			}))
		}
		w := s.Wait()
		l.CallLater(10*time.Millisecond, func() { w.Cancel() })
		return t.Suspend(w).Then(func(t *aio.Task, in aio.Input) aio.Result {
			return t.Return(in.Err())
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range children {
		if !c.Done() {
			// The wait handle resolves before the children finish winding
			// down; give the loop the extra ticks.
			drive(t, l, finishOn(c))
		}
		if !c.Cancelled() {
			t.Fatal("cancelling the wait handle did not cancel a child.")
		}
	}
}

func TestScopeEmptyWait(t *testing.T) {
	l := aio.New()
	s := aio.NewScope(l)
	if w := s.Wait(); !w.Done() {
		t.Fatal("waiting on an empty scope suspended.")
	}
}

func TestScopeSpawnAfterFinish(t *testing.T) {
	l := aio.New()
	s := aio.NewScope(l)
	s.Wait()

	defer func() {
		if recover() == nil {
			t.Fatal("Spawn on a finished scope did not panic.")
		}
	}()
	s.Spawn("late", aio.Do(func() {}))
}
