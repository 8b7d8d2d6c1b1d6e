package aio

import (
	"container/heap"
	"time"
)

// A TimerHandle represents a callback scheduled with [Loop.CallLater].
type TimerHandle struct {
	e *timerEntry
}

// Stop cancels the scheduled callback.
// It reports whether it prevented the callback from running.
func (h *TimerHandle) Stop() bool {
	if h.e.stopped || h.e.ran {
		return false
	}
	h.e.stopped = true
	return true
}

// When returns the deadline the callback was scheduled for.
func (h *TimerHandle) When() time.Time {
	return h.e.when
}

type timerEntry struct {
	when    time.Time
	seq     uint64 // insertion order, breaks deadline ties
	fn      func()
	stopped bool
	ran     bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(*timerEntry))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// CallLater schedules f to run once d has elapsed.
// Callbacks with equal deadlines run in the order they were scheduled.
//
// One should only call this method on the loop goroutine.
func (l *Loop) CallLater(d time.Duration, f func()) *TimerHandle {
	if f == nil {
		panic("aio: CallLater with nil callback")
	}
	e := &timerEntry{when: l.clock.Now().Add(d), seq: l.timerSeq, fn: f}
	l.timerSeq++
	heap.Push(&l.timers, e)
	l.obs.TimerScheduled()
	return &TimerHandle{e: e}
}

// popDueTimers moves every due timer callback into the ready queue,
// in deadline order with ties broken by insertion order.
func (l *Loop) popDueTimers(now time.Time) {
	for l.timers.Len() > 0 {
		e := l.timers[0]
		if e.stopped {
			heap.Pop(&l.timers)
			continue
		}
		if e.when.After(now) {
			return
		}
		heap.Pop(&l.timers)
		l.ready = append(l.ready, func() {
			if e.stopped {
				return
			}
			e.ran = true
			e.fn()
		})
	}
}

// nextDeadline returns the earliest live timer deadline.
func (l *Loop) nextDeadline() (time.Time, bool) {
	for l.timers.Len() > 0 {
		if l.timers[0].stopped {
			heap.Pop(&l.timers)
			continue
		}
		return l.timers[0].when, true
	}
	return time.Time{}, false
}
