// Package rxmetrics exposes Prometheus instrumentation for the scheduler and
// signal machinery, grounded on cuemby/warren/pkg/metrics's gauge/counter
// vocabulary and promhttp wiring. Unlike that package's global
// prometheus.MustRegister-on-package-vars style, a Recorder here owns its
// own prometheus.Registry: a library that may be embedded multiple times in
// the same process (e.g. once per test) can't rely on a package-level
// default registry without every test after the first panicking on a
// duplicate registration.
package rxmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects the metrics a running reactive program can expose: how
// many signals are currently live, how deep each scheduler's queue has
// gotten, and how many disposables have torn down.
type Recorder struct {
	registry *prometheus.Registry

	signalsLive      prometheus.Gauge
	disposalsTotal   prometheus.Counter
	schedulerQueued  *prometheus.GaugeVec
	schedulerRunTime prometheus.Histogram
}

// NewRecorder builds a Recorder with its own private registry and returns it
// already populated with the metric families it exposes.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		signalsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reactive_signals_live",
			Help: "Number of Signal instances that have not yet reached a terminal event.",
		}),
		disposalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reactive_disposals_total",
			Help: "Total number of Disposable.Dispose calls that performed teardown.",
		}),
		schedulerQueued: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reactive_scheduler_queue_depth",
			Help: "Number of work items currently enqueued on a scheduler, by label.",
		}, []string{"scheduler"}),
		schedulerRunTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reactive_scheduler_work_duration_seconds",
			Help:    "Duration of individual scheduled work items.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(
		r.signalsLive,
		r.disposalsTotal,
		r.schedulerQueued,
		r.schedulerRunTime,
	)

	return r
}

// Handler returns an http.Handler serving this recorder's metrics in the
// Prometheus exposition format, for mounting on a demo or debug server.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// SignalCreated increments the live-signal gauge. Call from NewSignal.
func (r *Recorder) SignalCreated() { r.signalsLive.Inc() }

// SignalTerminated decrements the live-signal gauge. Call once a signal
// reaches its terminal event.
func (r *Recorder) SignalTerminated() { r.signalsLive.Dec() }

// DisposalPerformed records that a Disposable actually ran its teardown
// action, as opposed to a no-op repeat call.
func (r *Recorder) DisposalPerformed() { r.disposalsTotal.Inc() }

// SchedulerEnqueued records one more item queued on the named scheduler.
func (r *Recorder) SchedulerEnqueued(label string) {
	r.schedulerQueued.WithLabelValues(label).Inc()
}

// SchedulerDequeued records one fewer item queued on the named scheduler,
// once it has run (or been skipped because it was cancelled).
func (r *Recorder) SchedulerDequeued(label string) {
	r.schedulerQueued.WithLabelValues(label).Dec()
}

// ObserveWorkDuration records how long a single scheduled work item took to
// run, in seconds.
func (r *Recorder) ObserveWorkDuration(seconds float64) {
	r.schedulerRunTime.Observe(seconds)
}
