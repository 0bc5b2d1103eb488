package reactive

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/signalcore/reactive/rxerr"
	"github.com/signalcore/reactive/rxmetrics"
)

// Scheduler is a serial execution surface: every variant dispatches the
// work handed to it one item at a time, in submission order, per spec.md
// §4.6.
type Scheduler interface {
	// Schedule runs work at the scheduler's earliest convenience and
	// returns a Disposable that cancels it if disposed before it starts.
	Schedule(work func()) Disposable
	// ScheduleAfter runs work no earlier than when.
	ScheduleAfter(when time.Time, work func()) Disposable
	// ScheduleRepeating runs work at first and then every interval
	// thereafter, compensating for drift but never overlapping ticks.
	// leeway bounds how far behind a missed tick may lag before it is
	// skipped rather than burst through.
	ScheduleRepeating(first time.Time, interval, leeway time.Duration, work func()) Disposable
}

// ImmediateScheduler runs work synchronously on the calling goroutine. Per
// spec.md §4.6, it never returns a cancellable handle: by the time Schedule
// returns, the work has already run.
type ImmediateScheduler struct{}

// Immediate is the shared ImmediateScheduler instance.
var Immediate Scheduler = ImmediateScheduler{}

func (ImmediateScheduler) Schedule(work func()) Disposable {
	if work != nil {
		work()
	}
	return nil
}

// ScheduleAfter on the immediate scheduler has no concept of delay — it
// collapses to an ordinary synchronous call, per spec.md §5's "no hidden
// timeout" rule: the immediate scheduler is for synchronous execution, not
// synchronous waiting.
func (ImmediateScheduler) ScheduleAfter(_ time.Time, work func()) Disposable {
	if work != nil {
		work()
	}
	return nil
}

// ScheduleRepeating is not meaningful on the immediate scheduler — repeating
// forever would block the calling goroutine forever — so it raises a usage
// fault instead of silently spinning.
func (ImmediateScheduler) ScheduleRepeating(time.Time, time.Duration, time.Duration, func()) Disposable {
	rxerr.Raise(rxerr.FaultInfiniteLoop, "ScheduleRepeating is not supported on the immediate scheduler")
	return nil
}

// QueueScheduler wraps a single goroutine draining a channel of thunks, the
// serial-FIFO executor spec.md §4.6.2 calls "queue-backed," grounded on
// cuemby/warren/pkg/scheduler's goroutine-loop shape.
type QueueScheduler struct {
	label   string
	queue   chan func()
	closed  atomic.Bool
	metrics *rxmetrics.Recorder
}

// NewQueueScheduler starts the worker goroutine and returns a ready
// scheduler. metrics may be nil to opt out of instrumentation.
func NewQueueScheduler(label string, metrics *rxmetrics.Recorder) *QueueScheduler {
	s := &QueueScheduler{
		label:   label,
		queue:   make(chan func(), 256),
		metrics: metrics,
	}
	go s.run()
	return s
}

func (s *QueueScheduler) run() {
	for fn := range s.queue {
		fn()
	}
}

// Close stops accepting new work immediately; work already queued still
// runs. Scheduling on a closed scheduler raises FaultSchedulerClosed.
func (s *QueueScheduler) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.queue)
	}
}

func (s *QueueScheduler) Schedule(work func()) Disposable {
	if work == nil {
		return nil
	}
	if s.closed.Load() {
		rxerr.Raise(rxerr.FaultSchedulerClosed, "schedule on closed queue scheduler %q", s.label)
	}

	var cancelled boolFlag
	if s.metrics != nil {
		s.metrics.SchedulerEnqueued(s.label)
	}
	s.queue <- func() {
		if !cancelled.get() {
			if s.metrics != nil {
				start := time.Now()
				work()
				s.metrics.ObserveWorkDuration(time.Since(start).Seconds())
			} else {
				work()
			}
		}
		if s.metrics != nil {
			s.metrics.SchedulerDequeued(s.label)
		}
	}
	return NewDisposable(func() { cancelled.set() })
}

func (s *QueueScheduler) ScheduleAfter(when time.Time, work func()) Disposable {
	return scheduleAfterViaTimer(s.Schedule, when, work)
}

func (s *QueueScheduler) ScheduleRepeating(first time.Time, interval, leeway time.Duration, work func()) Disposable {
	return scheduleRepeatingViaTimer(s.ScheduleAfter, first, interval, leeway, work)
}

// DelayScheduler is the "above, plus a monotonic-clock timer" variant from
// spec.md §4.6.3: a QueueScheduler that also counts the repeating ticks it
// has fired, the same clock-counter idea as the teacher's
// internal/scheduler.go Scheduler.clock, repurposed from "staleness version
// for recomputation" to "how many repeating ticks has this scheduler fired,"
// useful for metrics and tests alike.
type DelayScheduler struct {
	*QueueScheduler
	clock atomic.Int64
}

// NewDelayScheduler starts the worker goroutine and returns a ready
// scheduler.
func NewDelayScheduler(label string, metrics *rxmetrics.Recorder) *DelayScheduler {
	return &DelayScheduler{QueueScheduler: NewQueueScheduler(label, metrics)}
}

// Ticks reports how many repeating ticks this scheduler has dispatched.
func (s *DelayScheduler) Ticks() int64 { return s.clock.Load() }

func (s *DelayScheduler) ScheduleRepeating(first time.Time, interval, leeway time.Duration, work func()) Disposable {
	return scheduleRepeatingViaTimer(s.ScheduleAfter, first, interval, leeway, func() {
		s.clock.Add(1)
		work()
	})
}

// scheduleAfterViaTimer implements a generic ScheduleAfter in terms of any
// enqueue function (typically a Scheduler's own Schedule), so every
// scheduler capable of running work at all gets delayed scheduling for
// free. Disposing stops the timer, cancelled is checked when the timer
// fires, and once the enqueue's own Disposable has been stored, disposing
// also disposes it, so the body does not run when dequeued.
func scheduleAfterViaTimer(enqueue func(func()) Disposable, when time.Time, work func()) Disposable {
	if work == nil {
		return nil
	}

	var mu sync.Mutex
	var cancelled bool
	var inner Disposable

	delay := time.Until(when)
	if delay < 0 {
		delay = 0
	}

	timer := time.AfterFunc(delay, func() {
		mu.Lock()
		if cancelled {
			mu.Unlock()
			return
		}
		mu.Unlock()

		d := enqueue(work)

		mu.Lock()
		inner = d
		mu.Unlock()
	})

	return NewDisposable(func() {
		mu.Lock()
		cancelled = true
		in := inner
		mu.Unlock()

		timer.Stop()
		if in != nil {
			in.Dispose()
		}
	})
}

// scheduleRepeatingViaTimer implements drift-compensated repeating
// scheduling in terms of any ScheduleAfter function: each tick computes its
// successor from the missed target time rather than wall-clock "now," so a
// slow tick doesn't push every later tick back by the same amount, and any
// boundary missed by more than leeway is skipped rather than burst through
// — per spec.md §4.6.3.
func scheduleRepeatingViaTimer(scheduleAfter func(time.Time, func()) Disposable, first time.Time, interval, leeway time.Duration, work func()) Disposable {
	if interval <= 0 {
		rxerr.Raise(rxerr.FaultInfiniteLoop, "ScheduleRepeating requires a positive interval, got %s", interval)
	}

	var mu sync.Mutex
	var cancelled bool
	var current Disposable

	var arm func(target time.Time)
	arm = func(target time.Time) {
		mu.Lock()
		if cancelled {
			mu.Unlock()
			return
		}
		mu.Unlock()

		d := scheduleAfter(target, func() {
			work()

			next := target.Add(interval)
			now := time.Now()
			for next.Before(now.Add(-leeway)) {
				next = next.Add(interval)
			}
			arm(next)
		})

		mu.Lock()
		current = d
		mu.Unlock()
	}

	arm(first)

	return NewDisposable(func() {
		mu.Lock()
		cancelled = true
		d := current
		mu.Unlock()
		if d != nil {
			d.Dispose()
		}
	})
}
