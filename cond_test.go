package aio_test

import (
	"testing"

	"github.com/tickloop/aio"
)

func TestCondNotify(t *testing.T) {
	l := aio.New()
	lock := aio.NewLock(l)
	cond := aio.NewCond(lock)

	items := 0
	var got []int

	waiter := func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		return t.Suspend(lock.Acquire()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			var step aio.Coroutine
			step = func(t *aio.Task, in aio.Input) aio.Result {
				if in.Err() != nil {
					return t.Raise(in.Err())
				}
				// Re-check the predicate after every wakeup.
				if items == 0 {
					return t.Suspend(cond.Wait()).Then(step)
				}
				items--
				got = append(got, items)
				lock.Release()
				return t.Return(nil)
			}
			return step(t, aio.Input{})
		})
	}

	notifier := func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		return t.Suspend(lock.Acquire()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			items = 2
			cond.NotifyAll()
			lock.Release()
			return t.Return(nil)
		})
	}

	_, err := drive(t, l, func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(l)
		s.Spawn("waiter-1", waiter)
		s.Spawn("waiter-2", waiter)
		s.Spawn("notifier", notifier)
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
	if len(got) != 2 || items != 0 {
		t.Fatalf("waiters consumed %v leaving %d items.", got, items)
	}
	if lock.Locked() {
		t.Fatal("the lock is still held.")
	}
}

func TestCondWaitRequiresLock(t *testing.T) {
	l := aio.New()
	cond := aio.NewCond(aio.NewLock(l))

	defer func() {
		if recover() == nil {
			t.Fatal("Wait without holding the lock did not panic.")
		}
	}()
	cond.Wait()
}

func TestCondNotifyRequiresLock(t *testing.T) {
	l := aio.New()
	cond := aio.NewCond(aio.NewLock(l))

	defer func() {
		if recover() == nil {
			t.Fatal("Notify without holding the lock did not panic.")
		}
	}()
	cond.Notify(1)
}

func TestCondNotifyOne(t *testing.T) {
	l := aio.New()
	lock := aio.NewLock(l)
	cond := aio.NewCond(lock)

	lock.Acquire()
	a := cond.Wait() // releases the lock
	lock.Acquire()
	b := cond.Wait()

	lock.Acquire()
	cond.Notify(1)
	lock.Release()

	if _, err := drive(t, l, aio.Do(func() {})); err != nil {
		t.Fatal(err)
	}
	if !a.Done() {
		t.Fatal("the first waiter was not notified.")
	}
	if b.Done() {
		t.Fatal("Notify(1) woke more than one waiter.")
	}
}

func TestCondNotificationPassedOnAfterCancel(t *testing.T) {
	l := aio.New()
	lock := aio.NewLock(l)
	cond := aio.NewCond(lock)

	lock.Acquire()
	a := cond.Wait() // releases the lock
	lock.Acquire()
	b := cond.Wait()

	lock.Acquire()
	cond.Notify(1)
	lock.Release()
	// The notified waiter backs out before it can resume.
	a.Cancel()

	if _, err := drive(t, l, finishOn(b)); err != nil {
		t.Fatal(err)
	}
	if !a.Cancelled() {
		t.Fatal("the cancelled waiter does not report Cancelled.")
	}
	if !b.Done() || b.Cancelled() {
		t.Fatal("the notification was not passed on to the next waiter.")
	}
	if !lock.Locked() {
		t.Fatal("the second waiter resumed without holding the lock.")
	}
}
