package aio

import "time"

// Clock supplies time and idle-sleeping behavior for a [Loop].
//
// The default clock reads the wall clock and blocks the loop goroutine
// between ticks. A [VirtualClock] advances instantly instead, which makes
// timer-heavy tests deterministic and fast.
type Clock interface {
	Now() time.Time

	// SleepUntil blocks until deadline passes or wake receives,
	// whichever comes first.
	SleepUntil(deadline time.Time, wake <-chan struct{})
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) SleepUntil(deadline time.Time, wake <-chan struct{}) {
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-tm.C:
	case <-wake:
	}
}

// A VirtualClock advances to each requested deadline without blocking.
//
// A VirtualClock is intended for tests that run entirely on the loop
// goroutine. It must not be shared by more than one [Loop].
type VirtualClock struct {
	now time.Time
}

// NewVirtualClock creates a [VirtualClock] that starts at t.
func NewVirtualClock(t time.Time) *VirtualClock {
	return &VirtualClock{now: t}
}

func (c *VirtualClock) Now() time.Time { return c.now }

func (c *VirtualClock) SleepUntil(deadline time.Time, wake <-chan struct{}) {
	select {
	case <-wake:
		return
	default:
	}
	if deadline.After(c.now) {
		c.now = deadline
	}
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
