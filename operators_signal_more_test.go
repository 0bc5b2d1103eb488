package reactive

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaterializeDematerialize(t *testing.T) {
	t.Run("materialize turns every event, including the terminal, into a value", func(t *testing.T) {
		sig, input, _ := Pipe[int, error]()
		materialized := Materialize(sig)

		var kinds []Kind
		materialized.ObserveValues(func(e Event[int, error]) { kinds = append(kinds, e.Kind()) })

		input.SendValue(1)
		input.SendCompleted()

		assert.Equal(t, []Kind{KindValue, KindCompleted}, kinds)
	})

	t.Run("dematerialize round-trips back to the original events", func(t *testing.T) {
		sig, input, _ := Pipe[int, error]()
		roundTripped := Dematerialize(Materialize(sig))

		var got []int
		completed := false
		roundTripped.Observe(NewObserverFuncs[int, error](
			func(v int) { got = append(got, v) }, nil, func() { completed = true }, nil,
		))

		input.SendValue(1)
		input.SendValue(2)
		input.SendCompleted()

		assert.Equal(t, []int{1, 2}, got)
		assert.True(t, completed)
	})
}

func TestTakeDuring(t *testing.T) {
	t.Run("forwards events until the lifetime ends, then completes regardless of the source", func(t *testing.T) {
		sig, input, _ := Pipe[int, error]()
		lt, tok := NewLifetime()
		limited := TakeDuring(sig, lt)

		var got []int
		completed := false
		limited.Observe(NewObserverFuncs[int, error](
			func(v int) { got = append(got, v) }, nil, func() { completed = true }, nil,
		))

		input.SendValue(1)
		tok.Dispose()
		input.SendValue(2)

		assert.Equal(t, []int{1}, got)
		assert.True(t, completed)
	})
}

func TestObserveOn(t *testing.T) {
	t.Run("redelivers events through the given scheduler, preserving order", func(t *testing.T) {
		sig, input, _ := Pipe[int, error]()
		sched := NewQueueScheduler("test-observe-on", nil)
		defer sched.Close()

		redelivered := ObserveOn(sig, sched)

		done := make(chan struct{})
		var got []int
		redelivered.Observe(NewObserverFuncs[int, error](
			func(v int) { got = append(got, v) }, nil, func() { close(done) }, nil,
		))

		input.SendValue(1)
		input.SendValue(2)
		input.SendCompleted()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for redelivery")
		}
		assert.Equal(t, []int{1, 2}, got)
	})
}

func TestSample(t *testing.T) {
	t.Run("re-emits the source's latest value on every trigger tick", func(t *testing.T) {
		source, sourceIn, _ := Pipe[int, error]()
		trigger, triggerIn, _ := Pipe[struct{}, error]()

		sampled := Sample[int, struct{}, error](source, trigger)
		var got []int
		sampled.ObserveValues(func(v int) { got = append(got, v) })

		triggerIn.SendValue(struct{}{})
		sourceIn.SendValue(1)
		triggerIn.SendValue(struct{}{})
		triggerIn.SendValue(struct{}{})
		sourceIn.SendValue(2)
		triggerIn.SendValue(struct{}{})

		assert.Equal(t, []int{1, 1, 2}, got)
	})
}

func TestWithLatestFrom(t *testing.T) {
	t.Run("pairs the source with the latest other value, dropping early ticks", func(t *testing.T) {
		source, sourceIn, _ := Pipe[int, error]()
		other, otherIn, _ := Pipe[string, error]()

		combined := WithLatestFrom[int, string, error](source, other)
		var got []Pair[int, string]
		combined.ObserveValues(func(p Pair[int, string]) { got = append(got, p) })

		sourceIn.SendValue(1)
		otherIn.SendValue("a")
		sourceIn.SendValue(2)
		otherIn.SendValue("b")
		sourceIn.SendValue(3)

		assert.Equal(t, []Pair[int, string]{
			{First: 2, Second: "a"},
			{First: 3, Second: "b"},
		}, got)
	})
}

func TestDebounce(t *testing.T) {
	t.Run("only forwards the last value once the interval has elapsed without another", func(t *testing.T) {
		sched := NewQueueScheduler("test-debounce", nil)
		defer sched.Close()

		sig, input, _ := Pipe[int, error]()
		debounced := Debounce(sig, 20*time.Millisecond, sched)

		var got []int
		debounced.ObserveValues(func(v int) { got = append(got, v) })

		input.SendValue(1)
		input.SendValue(2)
		input.SendValue(3)
		time.Sleep(60 * time.Millisecond)

		assert.Equal(t, []int{3}, got)
	})

	t.Run("flushes any pending value immediately on a terminal", func(t *testing.T) {
		sched := NewQueueScheduler("test-debounce-flush", nil)
		defer sched.Close()

		sig, input, _ := Pipe[int, error]()
		debounced := Debounce(sig, time.Hour, sched)

		var got []int
		completed := false
		debounced.Observe(NewObserverFuncs[int, error](
			func(v int) { got = append(got, v) }, nil, func() { completed = true }, nil,
		))

		input.SendValue(1)
		input.SendCompleted()

		assert.Equal(t, []int{1}, got)
		assert.True(t, completed)
	})
}

func TestThrottle(t *testing.T) {
	t.Run("forwards the first value immediately then trails the latest once the window closes", func(t *testing.T) {
		sched := NewQueueScheduler("test-throttle", nil)
		defer sched.Close()

		sig, input, _ := Pipe[int, error]()
		throttled := Throttle(sig, 20*time.Millisecond, sched)

		var got []int
		var mu sync.Mutex
		throttled.ObserveValues(func(v int) {
			mu.Lock()
			got = append(got, v)
			mu.Unlock()
		})

		input.SendValue(1)
		input.SendValue(2)
		input.SendValue(3)

		mu.Lock()
		assert.Equal(t, []int{1}, got)
		mu.Unlock()

		time.Sleep(60 * time.Millisecond)

		mu.Lock()
		assert.Equal(t, []int{1, 3}, got)
		mu.Unlock()
	})
}
