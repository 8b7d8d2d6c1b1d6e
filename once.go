package aio

// A Once computes a value at most once, on first demand.
//
// The first [Once.Get] spawns a task for the computation; later calls
// return the same task, so every awaiter shares one result and the
// computation is never repeated. Nothing runs until somebody asks.
//
// Since the task is shared, cancelling the shared [Task] cancels the
// computation for every awaiter. [Once.Reset] forgets a finished or
// cancelled computation so that the next Get starts a fresh one.
//
// A Once must not be shared by more than one [Loop].
type Once struct {
	loop *Loop
	name string
	co   Coroutine
	task *Task
}

// NewOnce creates a [Once] that will run co under the given diagnostic name.
func NewOnce(l *Loop, name string, co Coroutine) *Once {
	if co == nil {
		panic("aio: NewOnce with nil Coroutine")
	}
	return &Once{loop: l, name: name, co: co}
}

// Get returns the shared [Task] for the computation, spawning it on the
// first call.
func (o *Once) Get() *Task {
	if o.task == nil {
		o.task = o.loop.Spawn(o.name, o.co)
	}
	return o.task
}

// Started reports whether the computation has been spawned.
func (o *Once) Started() bool { return o.task != nil }

// Reset forgets the current computation so that the next [Once.Get] starts
// over. It panics if the computation is still running.
func (o *Once) Reset() {
	if o.task != nil && !o.task.Done() {
		panic("aio: Reset of a running Once")
	}
	o.task = nil
}
