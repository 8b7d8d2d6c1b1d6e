package aio

import "slices"

// A Queue is a bounded FIFO channel between coroutines.
//
// Put suspends while the queue is full, Get while it is empty; items come
// out in the order they went in, and suspended putters and getters are
// served FIFO. A maxsize of zero makes the queue unbounded.
//
// Every item entering the queue increments an unfinished-work counter;
// consumers acknowledge items with [Queue.TaskDone], and [Queue.Join]
// resolves once the counter reaches zero.
//
// A Queue must not be shared by more than one [Loop].
type Queue struct {
	loop    *Loop
	maxsize int

	items   []any
	getters []*Future
	putters []putWaiter

	unfinished int
	joiners    []*Future
}

type putWaiter struct {
	f *Future
	v any
}

// NewQueue creates a [Queue] holding at most maxsize items.
// A maxsize of zero means no bound.
func NewQueue(l *Loop, maxsize int) *Queue {
	if maxsize < 0 {
		panic("aio: NewQueue with negative maxsize")
	}
	return &Queue{loop: l, maxsize: maxsize}
}

// Len returns the number of items currently buffered.
func (q *Queue) Len() int { return len(q.items) }

// Cap returns the maximum number of buffered items, zero for unbounded.
func (q *Queue) Cap() int { return q.maxsize }

// Empty reports whether no items are buffered.
func (q *Queue) Empty() bool { return len(q.items) == 0 }

// Full reports whether the queue is at capacity.
// An unbounded queue is never full.
func (q *Queue) Full() bool {
	return q.maxsize > 0 && len(q.items) >= q.maxsize
}

// Put returns a [Future] that resolves once v has entered the queue.
// It suspends the caller while the queue is full. Cancelling it withdraws
// the item.
func (q *Queue) Put(v any) *Future {
	f := q.loop.NewFuture()
	if g := q.popGetter(); g != nil {
		// The queue is empty and a getter is already waiting;
		// the item passes straight through.
		q.unfinished++
		q.grantItem(g, v)
		f.SetResult(nil)
		return f
	}
	if !q.Full() && len(q.putters) == 0 {
		q.items = append(q.items, v)
		q.unfinished++
		f.SetResult(nil)
		return f
	}
	q.putters = append(q.putters, putWaiter{f: f, v: v})
	f.onCancel = func() { q.removePutter(f) }
	return f
}

// TryPut puts v without suspending.
// It reports whether the item entered the queue.
func (q *Queue) TryPut(v any) bool {
	if g := q.popGetter(); g != nil {
		q.unfinished++
		q.grantItem(g, v)
		return true
	}
	if q.Full() || len(q.putters) != 0 {
		return false
	}
	q.items = append(q.items, v)
	q.unfinished++
	return true
}

// Get returns a [Future] that resolves with the next item.
// It suspends the caller while the queue is empty. Cancelling it removes
// the getter from the queue.
func (q *Queue) Get() *Future {
	f := q.loop.NewFuture()
	if len(q.items) > 0 {
		q.grantItem(f, q.popItem())
		return f
	}
	q.getters = append(q.getters, f)
	f.onCancel = func() { q.removeGetter(f) }
	return f
}

// TryGet takes the next item without suspending.
// It reports whether an item was available.
func (q *Queue) TryGet() (any, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.popItem(), true
}

// TaskDone acknowledges one previously gotten item.
// It panics when called more times than items have entered the queue.
//
// One should only call this method in a [Coroutine] function.
func (q *Queue) TaskDone() {
	if q.unfinished == 0 {
		panic("aio: TaskDone called more times than there were items")
	}
	q.unfinished--
	if q.unfinished > 0 {
		return
	}
	joiners := q.joiners
	q.joiners = nil
	for _, f := range joiners {
		if !f.Done() {
			f.SetResult(nil)
		}
	}
}

// Join returns a [Future] that resolves once every item that ever
// entered the queue has been acknowledged with [Queue.TaskDone].
func (q *Queue) Join() *Future {
	f := q.loop.NewFuture()
	if q.unfinished == 0 {
		f.SetResult(nil)
		return f
	}
	q.joiners = append(q.joiners, f)
	f.onCancel = func() { q.removeJoiner(f) }
	return f
}

// grantItem completes g with v. If the getter is cancelled before it
// resumes, the unconsumed item goes back to the front of the queue so it is
// not lost; its unfinished count stays as is, since the item still exists.
func (q *Queue) grantItem(g *Future, v any) {
	g.onDiscard = func() { q.returnItem(v) }
	g.SetResult(v)
}

func (q *Queue) returnItem(v any) {
	if g := q.popGetter(); g != nil {
		q.grantItem(g, v)
		return
	}
	// May transiently exceed maxsize; preserving the item takes priority.
	q.items = slices.Insert(q.items, 0, v)
}

func (q *Queue) popItem() any {
	v := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	// A freed slot admits the head putter.
	for len(q.putters) > 0 {
		p := q.putters[0]
		q.putters = q.putters[1:]
		if p.f.Done() {
			continue
		}
		q.items = append(q.items, p.v)
		q.unfinished++
		p.f.SetResult(nil)
		break
	}
	return v
}

func (q *Queue) popGetter() *Future {
	for len(q.getters) > 0 {
		g := q.getters[0]
		q.getters = q.getters[1:]
		if g.Done() {
			continue
		}
		return g
	}
	return nil
}

func (q *Queue) removePutter(f *Future) {
	if i := slices.IndexFunc(q.putters, func(p putWaiter) bool { return p.f == f }); i != -1 {
		q.putters = slices.Delete(q.putters, i, i+1)
	}
}

func (q *Queue) removeGetter(f *Future) {
	if i := slices.Index(q.getters, f); i != -1 {
		q.getters = slices.Delete(q.getters, i, i+1)
	}
}

func (q *Queue) removeJoiner(f *Future) {
	if i := slices.Index(q.joiners, f); i != -1 {
		q.joiners = slices.Delete(q.joiners, i, i+1)
	}
}
