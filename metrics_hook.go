package reactive

import "github.com/signalcore/reactive/rxmetrics"

// activeMetrics is the optional, process-wide metrics sink signals and
// disposables report to. Unlike Scheduler, which takes its *rxmetrics.
// Recorder per instance (each scheduler has its own queue-depth series), a
// Signal has no natural "instance label" worth the cardinality, so signal-
// level instrumentation is aggregate and opt-in via UseMetrics rather than
// threaded through every constructor.
var activeMetrics *rxmetrics.Recorder

// UseMetrics installs the recorder that NewSignal and disposal teardown
// report to. Passing nil disables instrumentation, the default.
func UseMetrics(r *rxmetrics.Recorder) { activeMetrics = r }
