package otel

import "time"

// Nop is a no-op implementation of the aio.Observer interface.
// It serves as a placeholder for an OpenTelemetry-backed observer without
// adding dependencies.
type Nop struct{}

// NewNop returns a no-op observer.
func NewNop() *Nop { return &Nop{} }

func (*Nop) TickCompleted(int, time.Duration) {}
func (*Nop) TimerScheduled()                  {}
func (*Nop) TaskSpawned(string)               {}
func (*Nop) TaskFinished(string, error)       {}
func (*Nop) BlockingSubmitted()               {}
func (*Nop) BlockingFinished(time.Duration)   {}
