package reactive

import (
	"sync"
	"sync/atomic"
	"time"
)

// Pair is a two-element tuple, the Go-native stand-in for the original's
// anonymous (A, B) tuples in zip and combineLatest.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MapSignal transforms every value with f, leaving terminals untouched
// except for the type substitution Event.Map already performs.
func MapSignal[V, E, V2 any](s *Signal[V, E], f func(V) V2) *Signal[V2, E] {
	return NewSignal(func(o Observer[V2, E]) Disposable {
		return s.Observe(NewObserver(func(e Event[V, E]) {
			o.Send(Map(e, f))
		}))
	})
}

// MapErrorSignal transforms a failure's error value with f, leaving every
// other event untouched.
func MapErrorSignal[V, E, E2 any](s *Signal[V, E], f func(E) E2) *Signal[V, E2] {
	return NewSignal(func(o Observer[V, E2]) Disposable {
		return s.Observe(NewObserver(func(e Event[V, E]) {
			o.Send(MapError(e, f))
		}))
	})
}

// Filter drops values for which pred returns false; terminals always pass
// through.
func Filter[V, E any](s *Signal[V, E], pred func(V) bool) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		return s.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok && !pred(v) {
				return
			}
			o.Send(e)
		}))
	})
}

// Materialize turns every event of s, including its terminal, into a value
// on the returned signal, which then completes on its own. Useful for
// operators (like flatMap strategies) that need to observe a terminal
// without tearing down their own subscription.
func Materialize[V, E any](s *Signal[V, E]) *Signal[Event[V, E], NoError] {
	return NewSignal(func(o Observer[Event[V, E], NoError]) Disposable {
		return s.Observe(NewObserver(func(e Event[V, E]) {
			o.SendValue(e)
			if e.IsTerminal() {
				o.SendCompleted()
			}
		}))
	})
}

// Dematerialize reverses Materialize: every value, which is itself an Event,
// is unwrapped and resent as that event.
func Dematerialize[V, E any](s *Signal[Event[V, E], NoError]) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		return s.Observe(NewObserver(func(e Event[Event[V, E], NoError]) {
			if inner, ok := e.Val(); ok {
				o.Send(inner)
			}
		}))
	})
}

// Take forwards at most the first n values then completes, cancelling the
// source subscription once the count is reached. n <= 0 completes
// immediately without subscribing to s at all; an observer attached after
// that receives Interrupted, as on any terminated signal.
func Take[V, E any](s *Signal[V, E], n int) *Signal[V, E] {
	if n <= 0 {
		return NewSignal(func(o Observer[V, E]) Disposable {
			o.SendCompleted()
			return nil
		})
	}

	return NewSignal(func(o Observer[V, E]) Disposable {
		sub := NewSerialDisposable()
		var count atomic.Int64

		sub.SetInner(s.Observe(NewObserver(func(e Event[V, E]) {
			v, ok := e.Val()
			if !ok {
				o.Send(e)
				return
			}
			c := count.Add(1)
			if c > int64(n) {
				return
			}
			o.SendValue(v)
			if c == int64(n) {
				o.SendCompleted()
				sub.Dispose()
			}
		})))

		return sub
	})
}

// TakeDuring forwards every event from s until lt ends, at which point it
// completes and tears down its subscription to s — regardless of whether s
// itself ever terminates.
func TakeDuring[V, E any](s *Signal[V, E], lt *Lifetime) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		box := NewCompositeDisposable()
		box.Add(s.Observe(NewObserver(func(e Event[V, E]) {
			o.Send(e)
		})))

		finish := func() {
			o.SendCompleted()
			box.Dispose()
		}
		box.Add(lt.Ended.Observe(NewObserverFuncs[struct{}, NoError](nil, nil, finish, finish)))

		return box
	})
}

// Skip drops the first n values, forwarding everything after and every
// terminal.
func Skip[V, E any](s *Signal[V, E], n int) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		var count atomic.Int64
		return s.Observe(NewObserver(func(e Event[V, E]) {
			v, ok := e.Val()
			if !ok {
				o.Send(e)
				return
			}
			if count.Add(1) <= int64(n) {
				return
			}
			o.SendValue(v)
		}))
	})
}

// SkipRepeats drops a value equal to the immediately preceding one per eq,
// forwarding only the first of each run.
func SkipRepeats[V, E any](s *Signal[V, E], eq func(a, b V) bool) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		var mu sync.Mutex
		var last V
		hasLast := false

		return s.Observe(NewObserver(func(e Event[V, E]) {
			v, ok := e.Val()
			if !ok {
				o.Send(e)
				return
			}

			mu.Lock()
			skip := hasLast && eq(last, v)
			last = v
			hasLast = true
			mu.Unlock()

			if !skip {
				o.SendValue(v)
			}
		}))
	})
}

// ObserveOn redelivers every event of s through sched, preserving order
// because a Scheduler dispatches serially. Disposing the result cancels any
// redeliveries still sitting in sched's queue.
func ObserveOn[V, E any](s *Signal[V, E], sched Scheduler) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		box := NewCompositeDisposable()
		box.Add(s.Observe(NewObserver(func(e Event[V, E]) {
			var entry Disposable
			entry = sched.Schedule(func() {
				o.Send(e)
				box.Remove(entry)
			})
			box.Add(entry)
		})))
		return box
	})
}

// Zip pairs values from a and b in arrival order, buffering whichever side
// runs ahead. It fails or interrupts immediately if either side does, and
// completes as soon as either side completes with its own buffer drained —
// any values still buffered on the other side at that point are discarded.
func Zip[VA, VB, E any](a *Signal[VA, E], b *Signal[VB, E]) *Signal[Pair[VA, VB], E] {
	return NewSignal(func(o Observer[Pair[VA, VB], E]) Disposable {
		var mu sync.Mutex
		var bufA []VA
		var bufB []VB
		doneA, doneB := false, false
		box := NewCompositeDisposable()

		// drain must be called with mu held. It pairs off buffered values and
		// reports whether either side's "completed with an empty buffer"
		// condition is now satisfied, but never sends anything itself — every
		// caller unlocks first, since §5 forbids holding a lock across a user
		// callback.
		drain := func() ([]Pair[VA, VB], bool) {
			var pairs []Pair[VA, VB]
			for len(bufA) > 0 && len(bufB) > 0 {
				pairs = append(pairs, Pair[VA, VB]{First: bufA[0], Second: bufB[0]})
				bufA, bufB = bufA[1:], bufB[1:]
			}
			complete := (doneA && len(bufA) == 0) || (doneB && len(bufB) == 0)
			return pairs, complete
		}

		emit := func(pairs []Pair[VA, VB], complete bool) {
			for _, p := range pairs {
				o.SendValue(p)
			}
			if complete {
				o.SendCompleted()
				box.Dispose()
			}
		}

		box.Add(a.Observe(NewObserver(func(e Event[VA, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				bufA = append(bufA, v)
				pairs, complete := drain()
				mu.Unlock()
				emit(pairs, complete)
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
				box.Dispose()
			case KindInterrupted:
				o.SendInterrupted()
				box.Dispose()
			case KindCompleted:
				mu.Lock()
				doneA = true
				pairs, complete := drain()
				mu.Unlock()
				emit(pairs, complete)
			}
		})))

		box.Add(b.Observe(NewObserver(func(e Event[VB, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				bufB = append(bufB, v)
				pairs, complete := drain()
				mu.Unlock()
				emit(pairs, complete)
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
				box.Dispose()
			case KindInterrupted:
				o.SendInterrupted()
				box.Dispose()
			case KindCompleted:
				mu.Lock()
				doneB = true
				pairs, complete := drain()
				mu.Unlock()
				emit(pairs, complete)
			}
		})))

		return box
	})
}

// CombineLatest emits the latest (a, b) pair every time either side emits,
// once both sides have emitted at least once. It fails or interrupts
// immediately if either side does, and completes only once both sides have
// completed.
func CombineLatest[VA, VB, E any](a *Signal[VA, E], b *Signal[VB, E]) *Signal[Pair[VA, VB], E] {
	return NewSignal(func(o Observer[Pair[VA, VB], E]) Disposable {
		var mu sync.Mutex
		var latestA VA
		var latestB VB
		hasA, hasB := false, false
		doneA, doneB := false, false
		box := NewCompositeDisposable()

		// snapshot must be called with mu held. It reports the pair to emit
		// (and whether it's ready) and whether both sides have completed, but
		// never touches o itself — callers unlock before sending, since §5
		// forbids holding a lock across a user callback.
		snapshot := func() (Pair[VA, VB], bool, bool) {
			return Pair[VA, VB]{First: latestA, Second: latestB}, hasA && hasB, doneA && doneB
		}

		box.Add(a.Observe(NewObserver(func(e Event[VA, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				latestA, hasA = v, true
				pair, ready, _ := snapshot()
				mu.Unlock()
				if ready {
					o.SendValue(pair)
				}
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
				box.Dispose()
			case KindInterrupted:
				o.SendInterrupted()
				box.Dispose()
			case KindCompleted:
				mu.Lock()
				doneA = true
				_, _, done := snapshot()
				mu.Unlock()
				if done {
					o.SendCompleted()
					box.Dispose()
				}
			}
		})))

		box.Add(b.Observe(NewObserver(func(e Event[VB, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				latestB, hasB = v, true
				pair, ready, _ := snapshot()
				mu.Unlock()
				if ready {
					o.SendValue(pair)
				}
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
				box.Dispose()
			case KindInterrupted:
				o.SendInterrupted()
				box.Dispose()
			case KindCompleted:
				mu.Lock()
				doneB = true
				_, _, done := snapshot()
				mu.Unlock()
				if done {
					o.SendCompleted()
					box.Dispose()
				}
			}
		})))

		return box
	})
}

// Merge forwards every value from every source signal in arrival order. It
// fails or interrupts as soon as any source does, and completes only once
// every source has completed.
func Merge[V, E any](sources ...*Signal[V, E]) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		if len(sources) == 0 {
			o.SendCompleted()
			return nil
		}

		box := NewCompositeDisposable()
		var mu sync.Mutex
		remaining := len(sources)

		for _, src := range sources {
			box.Add(src.Observe(NewObserver(func(e Event[V, E]) {
				if v, ok := e.Val(); ok {
					o.SendValue(v)
					return
				}
				switch e.Kind() {
				case KindFailed:
					err, _ := e.Err()
					o.SendFailed(err)
					box.Dispose()
				case KindInterrupted:
					o.SendInterrupted()
					box.Dispose()
				case KindCompleted:
					mu.Lock()
					remaining--
					done := remaining == 0
					mu.Unlock()
					if done {
						o.SendCompleted()
						box.Dispose()
					}
				}
			})))
		}

		return box
	})
}

// Sample re-emits source's latest value every time trigger emits a value.
// Nothing is emitted for a trigger tick before source has produced its
// first value. The result completes when either source or trigger
// completes, and propagates a failure or interruption from either side
// immediately.
func Sample[V, T, E any](source *Signal[V, E], trigger *Signal[T, E]) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		var mu sync.Mutex
		var latest V
		has := false
		box := NewCompositeDisposable()

		box.Add(source.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				latest, has = v, true
				mu.Unlock()
				return
			}
			o.Send(e)
			box.Dispose()
		})))

		box.Add(trigger.Observe(NewObserver(func(e Event[T, E]) {
			if _, ok := e.Val(); ok {
				mu.Lock()
				v, ok := latest, has
				mu.Unlock()
				if ok {
					o.SendValue(v)
				}
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
			case KindInterrupted:
				o.SendInterrupted()
			case KindCompleted:
				o.SendCompleted()
			}
			box.Dispose()
		})))

		return box
	})
}

// WithLatestFrom emits a Pair of (sourceValue, latestOtherValue) every time
// source emits, once other has produced at least one value; ticks of
// source before that are dropped. The result's terminal tracks source's
// terminal only, except a failure or interruption from other still
// propagates immediately.
func WithLatestFrom[V, O, E any](source *Signal[V, E], other *Signal[O, E]) *Signal[Pair[V, O], E] {
	return NewSignal(func(o Observer[Pair[V, O], E]) Disposable {
		var mu sync.Mutex
		var latest O
		has := false
		box := NewCompositeDisposable()

		box.Add(other.Observe(NewObserver(func(e Event[O, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				latest, has = v, true
				mu.Unlock()
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
				box.Dispose()
			case KindInterrupted:
				o.SendInterrupted()
				box.Dispose()
			}
		})))

		box.Add(source.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				ov, ok := latest, has
				mu.Unlock()
				if ok {
					o.SendValue(Pair[V, O]{First: v, Second: ov})
				}
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				o.SendFailed(err)
			case KindInterrupted:
				o.SendInterrupted()
			case KindCompleted:
				o.SendCompleted()
			}
			box.Dispose()
		})))

		return box
	})
}

// Debounce re-arms a timer on sched on every value and only forwards the
// most recent one once interval has passed without another arriving. A
// terminal flushes any pending value immediately, then forwards itself.
func Debounce[V, E any](s *Signal[V, E], interval time.Duration, sched Scheduler) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		box := NewCompositeDisposable()
		pending := NewSerialDisposable()
		box.Add(pending)

		var mu sync.Mutex
		var latest V
		has := false

		flush := func() {
			mu.Lock()
			v, ok := latest, has
			has = false
			mu.Unlock()
			if ok {
				o.SendValue(v)
			}
		}

		box.Add(s.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				latest, has = v, true
				mu.Unlock()
				pending.SetInner(sched.ScheduleAfter(time.Now().Add(interval), flush))
				return
			}
			flush()
			o.Send(e)
			box.Dispose()
		})))

		return box
	})
}

// Throttle forwards a value immediately, then for the rest of interval
// drops further values while retaining the latest for a single trailing
// emission once the window closes.
func Throttle[V, E any](s *Signal[V, E], interval time.Duration, sched Scheduler) *Signal[V, E] {
	return NewSignal(func(o Observer[V, E]) Disposable {
		box := NewCompositeDisposable()
		trailing := NewSerialDisposable()
		box.Add(trailing)

		var mu sync.Mutex
		inWindow := false
		var pendingValue V
		hasPending := false

		var armWindow func()
		armWindow = func() {
			trailing.SetInner(sched.ScheduleAfter(time.Now().Add(interval), func() {
				mu.Lock()
				v, ok := pendingValue, hasPending
				hasPending = false
				if ok {
					armWindow()
				} else {
					inWindow = false
				}
				mu.Unlock()
				if ok {
					o.SendValue(v)
				}
			}))
		}

		box.Add(s.Observe(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				if inWindow {
					pendingValue, hasPending = v, true
					mu.Unlock()
					return
				}
				inWindow = true
				mu.Unlock()
				o.SendValue(v)
				armWindow()
				return
			}
			o.Send(e)
			box.Dispose()
		})))

		return box
	})
}
