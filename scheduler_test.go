package reactive

import (
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalcore/reactive/rxmetrics"
)

func TestImmediateScheduler(t *testing.T) {
	t.Run("Schedule runs synchronously and returns no handle", func(t *testing.T) {
		ran := false
		d := Immediate.Schedule(func() { ran = true })

		assert.True(t, ran)
		assert.Nil(t, d)
	})
}

func TestQueueScheduler(t *testing.T) {
	t.Run("work runs in submission order", func(t *testing.T) {
		sched := NewQueueScheduler("test", nil)
		defer sched.Close()

		var mu sync.Mutex
		var order []int
		done := make(chan struct{})

		for i := 0; i < 5; i++ {
			i := i
			sched.Schedule(func() {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				if i == 4 {
					close(done)
				}
			})
		}
		<-done

		assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	})

	t.Run("disposing before dispatch cancels the work", func(t *testing.T) {
		sched := NewQueueScheduler("test", nil)
		defer sched.Close()

		var ran atomic.Bool
		d := sched.Schedule(func() { ran.Store(true) })
		d.Dispose()

		// give the worker goroutine a chance to dequeue and skip the cancelled item
		flush := make(chan struct{})
		sched.Schedule(func() { close(flush) })
		<-flush

		assert.False(t, ran.Load())
	})

	t.Run("scheduling on a closed scheduler raises a usage fault", func(t *testing.T) {
		sched := NewQueueScheduler("test", nil)
		sched.Close()

		assert.Panics(t, func() { sched.Schedule(func() {}) })
	})

	t.Run("work duration is recorded on the metrics recorder when one is attached", func(t *testing.T) {
		metrics := rxmetrics.NewRecorder()
		sched := NewQueueScheduler("timed", metrics)
		defer sched.Close()

		done := make(chan struct{})
		sched.Schedule(func() { close(done) })
		<-done

		// read the metrics from inside a second work item: the first item's
		// sample is recorded before the worker dequeues the second, and the
		// second's own sample is only recorded after it returns.
		rec := httptest.NewRecorder()
		flush := make(chan struct{})
		sched.Schedule(func() {
			metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			close(flush)
		})
		<-flush

		assert.Contains(t, rec.Body.String(), "reactive_scheduler_work_duration_seconds_count 1")
	})
}

func TestDelayScheduler(t *testing.T) {
	t.Run("ScheduleAfter runs no earlier than the given time", func(t *testing.T) {
		sched := NewDelayScheduler("test", nil)
		defer sched.Close()

		start := time.Now()
		done := make(chan time.Time, 1)
		sched.ScheduleAfter(start.Add(30*time.Millisecond), func() {
			done <- time.Now()
		})

		fired := <-done
		assert.GreaterOrEqual(t, fired.Sub(start), 25*time.Millisecond)
	})

	t.Run("disposing a pending ScheduleAfter prevents it from running", func(t *testing.T) {
		sched := NewDelayScheduler("test", nil)
		defer sched.Close()

		var ran atomic.Bool
		d := sched.ScheduleAfter(time.Now().Add(50*time.Millisecond), func() { ran.Store(true) })
		d.Dispose()

		time.Sleep(80 * time.Millisecond)
		assert.False(t, ran.Load())
	})

	t.Run("ScheduleRepeating fires multiple times and counts ticks", func(t *testing.T) {
		sched := NewDelayScheduler("test", nil)
		defer sched.Close()

		var count atomic.Int32
		done := make(chan struct{})
		var repeating Disposable
		repeating = sched.ScheduleRepeating(time.Now().Add(10*time.Millisecond), 20*time.Millisecond, 5*time.Millisecond, func() {
			if count.Add(1) == 3 {
				repeating.Dispose()
				close(done)
			}
		})

		<-done
		assert.Equal(t, int32(3), count.Load())
		assert.Equal(t, int64(3), sched.Ticks())
	})
}
