package aio

import "sync"

// A Loop is a single-threaded, cooperative scheduler.
//
// All callbacks, coroutine steps, and future completions run on the one
// goroutine that called [Loop.Run] or [Loop.RunForever]; they never execute
// concurrently with each other. A tick drains the thread-safe injection
// queue, moves due timer callbacks into the ready queue, and then runs the
// ready callbacks that were present when the tick began.
//
// Every method of a Loop, with the sole exception of
// [Loop.CallSoonThreadsafe], must be called on the loop goroutine (or before
// the loop starts running).
type Loop struct {
	clock   Clock
	obs     Observer
	handler func(error)

	ready    []func()
	timers   timerHeap
	timerSeq uint64

	mu       sync.Mutex // guards injected
	injected []func()
	wake     chan struct{}

	running bool
	stopped bool
}

// An Option configures a [Loop].
type Option func(*Loop)

// WithClock sets the clock the loop schedules timers against.
func WithClock(c Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithObserver attaches an [Observer] to the loop.
func WithObserver(o Observer) Option {
	return func(l *Loop) { l.obs = o }
}

// WithExceptionHandler sets the loop-wide exception hook.
// The hook receives every error that escapes a top-level callback and every
// never-retrieved task failure. The default hook logs with log/slog.
func WithExceptionHandler(h func(error)) Option {
	return func(l *Loop) { l.handler = h }
}

// New creates a [Loop].
func New(opts ...Option) *Loop {
	l := &Loop{
		clock:   realClock{},
		obs:     NopObserver{},
		handler: defaultExceptionHandler,
		wake:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CallSoon enqueues f to run on the next tick, FIFO relative to other
// CallSoon callbacks.
//
// One should only call this method on the loop goroutine; from other
// goroutines, use [Loop.CallSoonThreadsafe].
func (l *Loop) CallSoon(f func()) {
	if f == nil {
		panic("aio: CallSoon with nil callback")
	}
	l.ready = append(l.ready, f)
}

// CallSoonThreadsafe hands f to the loop from another goroutine.
// It is the single legitimate injection point for external work: the
// executor bridge and any other goroutine deliver results through it, and it
// wakes the loop if it is sleeping.
func (l *Loop) CallSoonThreadsafe(f func()) {
	if f == nil {
		panic("aio: CallSoonThreadsafe with nil callback")
	}
	l.mu.Lock()
	l.injected = append(l.injected, f)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Stop requests that the loop exit after the current tick.
// To stop a loop from another goroutine, inject it:
// l.CallSoonThreadsafe(l.Stop).
func (l *Loop) Stop() {
	l.stopped = true
}

// RunForever runs ticks until [Loop.Stop] is called.
// With nothing ready and no due timers, the loop sleeps on its clock until
// the next deadline or an external wake-up.
func (l *Loop) RunForever() {
	if l.running {
		panic("aio: loop is already running")
	}
	l.running = true
	defer func() {
		l.running = false
		l.stopped = false
	}()
	for {
		l.tick()
		if l.stopped {
			return
		}
		if l.idle() {
			l.sleep()
		}
	}
}

// Run spawns a task for co under the given diagnostic name and runs the loop
// until the task reaches a terminal state. It returns the task's value,
// its error, or [ErrCancelled] if the task was cancelled. If the loop is
// stopped before the task completes, Run returns [ErrStopped].
func (l *Loop) Run(name string, co Coroutine) (any, error) {
	t := l.Spawn(name, co)
	t.fut.AddDoneCallback(func(*Future) { l.Stop() })
	l.RunForever()
	if !t.fut.Done() {
		return nil, ErrStopped
	}
	return t.fut.Result()
}

func (l *Loop) tick() {
	start := l.clock.Now()

	l.mu.Lock()
	injected := l.injected
	l.injected = nil
	l.mu.Unlock()
	l.ready = append(l.ready, injected...)

	l.popDueTimers(l.clock.Now())

	// Bounded batch: only what is ready when the tick begins. Callbacks
	// scheduled while running land in the next tick, FIFO.
	n := len(l.ready)
	for i := 0; i < n; i++ {
		cb := l.ready[i]
		l.ready[i] = nil
		l.protect(cb)
	}
	rest := copy(l.ready, l.ready[n:])
	clear(l.ready[rest:])
	l.ready = l.ready[:rest]

	if n > 0 {
		l.obs.TickCompleted(n, l.clock.Now().Sub(start))
	}
}

func (l *Loop) idle() bool {
	if len(l.ready) > 0 {
		return false
	}
	l.mu.Lock()
	pending := len(l.injected)
	l.mu.Unlock()
	return pending == 0
}

func (l *Loop) sleep() {
	if deadline, ok := l.nextDeadline(); ok {
		l.clock.SleepUntil(deadline, l.wake)
		return
	}
	<-l.wake
}
