package aio_test

import (
	"errors"
	"fmt"
	"time"

	"github.com/tickloop/aio"
)

func Example() {
	// Create a loop.
	l := aio.New()

	// Run drives a coroutine to completion and returns its result.
	v, err := l.Run("greet", func(t *aio.Task, _ aio.Input) aio.Result {
		return t.Return("hello, aio")
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(v)
	// Output:
	// hello, aio
}

func ExampleLock() {
	l := aio.New()
	lock := aio.NewLock(l)

	use := func(name string) aio.Coroutine {
		return func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Suspend(lock.Acquire()).Then(func(t *aio.Task, in aio.Input) aio.Result {
				if in.Err() != nil {
					return t.Raise(in.Err())
				}
				fmt.Println(name, "holds the lock")
				lock.Release()
				return t.Return(nil)
			})
		}
	}

	// The lock is granted strictly in arrival order.
	l.Run("main", func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(l)
		s.Spawn("first", use("first"))
		s.Spawn("second", use("second"))
		s.Spawn("third", use("third"))
		return t.Suspend(s.Wait()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Return(nil)
		})
	})
	// Output:
	// first holds the lock
	// second holds the lock
	// third holds the lock
}

func ExampleQueue() {
	l := aio.New()
	q := aio.NewQueue(l, 2)

	// Put suspends once the queue is full, so the producer reiterates
	// through the same step for every item.
	next := 0
	produce := func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		if next == 3 {
			return t.Return(nil)
		}
		item := fmt.Sprintf("item-%d", next)
		next++
		return t.Suspend(q.Put(item)).Reiterate()
	}

	seen := 0
	var consume aio.Coroutine
	consume = func(t *aio.Task, in aio.Input) aio.Result {
		if in.Err() != nil {
			return t.Raise(in.Err())
		}
		if v := in.Value(); v != nil {
			fmt.Println(v)
			q.TaskDone()
			seen++
		}
		if seen == 3 {
			return t.Return(nil)
		}
		return t.Suspend(q.Get()).Reiterate()
	}

	l.Run("main", func(t *aio.Task, _ aio.Input) aio.Result {
		s := aio.NewScope(l)
		s.Spawn("producer", produce)
		s.Spawn("consumer", consume)
		return t.Suspend(s.Wait()).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Suspend(q.Join()).Then(func(t *aio.Task, in aio.Input) aio.Result {
				return t.Return(in.Err())
			})
		})
	})
	// Output:
	// item-0
	// item-1
	// item-2
}

func ExampleLoop_Timeout() {
	// A virtual clock advances instantly, so this example takes no real time.
	l := aio.New(aio.WithClock(aio.NewVirtualClock(time.Unix(0, 0))))

	_, err := l.Run("slow", func(t *aio.Task, _ aio.Input) aio.Result {
		slow := l.Sleep(200 * time.Millisecond)
		return t.Suspend(l.Timeout(50*time.Millisecond, slow)).Then(func(t *aio.Task, in aio.Input) aio.Result {
			if in.Err() != nil {
				return t.Raise(in.Err())
			}
			return t.Return(nil)
		})
	})
	if errors.Is(err, aio.ErrTimeout) {
		fmt.Println("timed out after 50ms")
	}
	// Output:
	// timed out after 50ms
}
