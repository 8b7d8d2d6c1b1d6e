// Package prom exports loop metrics to Prometheus.
package prom

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tickloop/aio"
)

// An Observer implements aio.Observer on top of a Prometheus registry.
//
// All loop-side callbacks run on the loop goroutine; BlockingFinished runs
// on a pool worker. Prometheus collectors are safe for both.
type Observer struct {
	ticks            prometheus.Counter
	tickCallbacks    prometheus.Counter
	tickDuration     prometheus.Histogram
	timersScheduled  prometheus.Counter
	tasksSpawned     prometheus.Counter
	tasksFinished    *prometheus.CounterVec
	blockingInFlight prometheus.Gauge
	blockingDuration prometheus.Histogram
}

// New creates an [Observer] whose collectors are registered with reg.
func New(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "aio_ticks_total",
			Help: "Ticks that ran at least one callback.",
		}),
		tickCallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "aio_tick_callbacks_total",
			Help: "Callbacks run across all ticks.",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aio_tick_duration_seconds",
			Help:    "Wall time per tick.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		timersScheduled: factory.NewCounter(prometheus.CounterOpts{
			Name: "aio_timers_scheduled_total",
			Help: "Timer callbacks scheduled with CallLater.",
		}),
		tasksSpawned: factory.NewCounter(prometheus.CounterOpts{
			Name: "aio_tasks_spawned_total",
			Help: "Tasks spawned.",
		}),
		tasksFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aio_tasks_finished_total",
			Help: "Tasks finished, by outcome.",
		}, []string{"outcome"}),
		blockingInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aio_blocking_in_flight",
			Help: "Blocking calls submitted to a pool and not yet finished.",
		}),
		blockingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aio_blocking_duration_seconds",
			Help:    "Duration of offloaded blocking calls.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
		}),
	}
}

func (o *Observer) TickCompleted(callbacks int, dur time.Duration) {
	o.ticks.Inc()
	o.tickCallbacks.Add(float64(callbacks))
	o.tickDuration.Observe(dur.Seconds())
}

func (o *Observer) TimerScheduled() {
	o.timersScheduled.Inc()
}

func (o *Observer) TaskSpawned(string) {
	o.tasksSpawned.Inc()
}

func (o *Observer) TaskFinished(_ string, err error) {
	o.tasksFinished.WithLabelValues(outcome(err)).Inc()
}

func (o *Observer) BlockingSubmitted() {
	o.blockingInFlight.Inc()
}

func (o *Observer) BlockingFinished(dur time.Duration) {
	o.blockingInFlight.Dec()
	o.blockingDuration.Observe(dur.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, aio.ErrCancelled):
		return "cancelled"
	default:
		return "failed"
	}
}
