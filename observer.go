package aio

import "time"

// An Observer receives lifecycle callbacks from a [Loop].
//
// Callbacks fire on the loop goroutine, except [Observer.BlockingFinished],
// which fires on a [Pool] worker; implementations must be safe for that.
// They must be cheap: the loop calls them inline.
type Observer interface {
	// TickCompleted reports a tick that ran callbacks: how many, and how
	// long the whole tick took.
	TickCompleted(callbacks int, dur time.Duration)

	// TimerScheduled reports a CallLater.
	TimerScheduled()

	// TaskSpawned and TaskFinished bracket a task's lifetime. The error is
	// nil for a completed task and ErrCancelled for a cancelled one.
	TaskSpawned(name string)
	TaskFinished(name string, err error)

	// BlockingSubmitted and BlockingFinished bracket a call offloaded to a
	// [Pool]; the duration covers only the blocking function itself.
	BlockingSubmitted()
	BlockingFinished(dur time.Duration)
}

// A NopObserver ignores every callback. It is the default.
type NopObserver struct{}

func (NopObserver) TickCompleted(int, time.Duration) {}
func (NopObserver) TimerScheduled()                  {}
func (NopObserver) TaskSpawned(string)               {}
func (NopObserver) TaskFinished(string, error)       {}
func (NopObserver) BlockingSubmitted()               {}
func (NopObserver) BlockingFinished(time.Duration)   {}
