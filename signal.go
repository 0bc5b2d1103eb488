package reactive

import (
	"sync"

	"github.com/signalcore/reactive/internal"
	"github.com/signalcore/reactive/rxlog"
)

// Signal is a hot, multicast, push-based event stream with a single-
// terminal lifecycle: value events flow to every currently attached
// observer in the order the signal's internal send slot serialized them,
// and after the first terminal event no further event is ever dispatched to
// any observer, past, present, or future.
//
// The observer registry is the teacher's internal/node.go dependency-link
// list repurposed from dependency tracking to subscriber bookkeeping (see
// internal/registry.go); the send slot is the teacher's
// internal/scheduler.go CAS-drain loop repurposed from draining scheduled
// recomputations to draining pending sends on this one signal (see
// internal/trampoline.go) — this is how a handler that sends back into its
// own signal is serialized after the enclosing send instead of recursing.
type Signal[V, E any] struct {
	mu               sync.Mutex
	terminated       bool
	registry         *internal.Registry
	generatorDispose *SerialDisposable
	trampoline       internal.Trampoline
}

// NewSignal constructs a Signal by synchronously invoking generator with an
// internal observer. The Disposable generator returns — the generator
// disposable — is triggered when the signal terminates, whichever event
// causes that, internal or external.
func NewSignal[V, E any](generator func(Observer[V, E]) Disposable) *Signal[V, E] {
	s := &Signal[V, E]{
		registry:         internal.NewRegistry(),
		generatorDispose: NewSerialDisposable(),
	}

	internalObserver := NewObserver(func(e Event[V, E]) {
		s.trampoline.Run(func() { s.dispatch(e) })
	})

	// generator may synchronously send a terminal event before returning its
	// own disposable; generatorDispose is a SerialDisposable precisely so
	// that race resolves correctly — if dispatch already disposed it, the
	// SetInner below disposes gd immediately instead of stashing it.
	gd := generator(internalObserver)
	s.generatorDispose.SetInner(gd)

	if activeMetrics != nil {
		activeMetrics.SignalCreated()
	}

	return s
}

// Pipe returns a signal driven entirely by external sends: the returned
// Observer feeds it, and disposing the returned Disposable sends
// Interrupted and tears the signal down. Per spec.md §4.4.
func Pipe[V, E any]() (*Signal[V, E], Observer[V, E], Disposable) {
	var input Observer[V, E]
	sig := NewSignal(func(o Observer[V, E]) Disposable {
		input = o
		return nil
	})

	interrupt := NewDisposable(func() {
		input.SendInterrupted()
	})

	return sig, input, interrupt
}

// dispatch runs inside the trampoline: exactly one dispatch is ever
// in-flight on a given signal, which is what gives observers a strict total
// order even when a handler re-enters via the same pipe.
func (s *Signal[V, E]) dispatch(e Event[V, E]) {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		return
	}

	if !e.IsTerminal() {
		observers := s.registry.Snapshot()
		s.mu.Unlock()

		for _, raw := range observers {
			raw.(Observer[V, E]).Send(e)
		}
		return
	}

	s.terminated = true
	observers := s.registry.Snapshot()
	s.registry.Clear()
	s.mu.Unlock()

	rxlog.WithComponent("signal").Debug().Str("kind", e.Kind().String()).Int("observers", len(observers)).Msg("terminating")

	if activeMetrics != nil {
		activeMetrics.SignalTerminated()
	}

	s.generatorDispose.Dispose()

	for _, raw := range observers {
		raw.(Observer[V, E]).Send(e)
	}
}

// Observe registers o to receive this signal's events. If the signal has
// already terminated, o synchronously receives exactly Interrupted and nil
// is returned — per spec.md §3's late-subscriber rule. Otherwise, the
// returned Disposable removes o (and only o) from the registry without
// affecting any other observer.
func (s *Signal[V, E]) Observe(o Observer[V, E]) Disposable {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		o.Send(Interrupted[V, E]())
		return nil
	}

	id := s.registry.Insert(o)
	s.mu.Unlock()

	return NewDisposable(func() {
		s.mu.Lock()
		s.registry.Remove(id)
		s.mu.Unlock()
	})
}

// ObserveValues registers a callback for value events only.
func (s *Signal[V, E]) ObserveValues(onValue func(V)) Disposable {
	return s.Observe(NewObserverFuncs[V, E](onValue, nil, nil, nil))
}

// ObserveFailed registers a callback for the failed terminal only.
func (s *Signal[V, E]) ObserveFailed(onFailed func(E)) Disposable {
	return s.Observe(NewObserverFuncs[V, E](nil, onFailed, nil, nil))
}

// ObserveCompleted registers a callback for the completed terminal only.
func (s *Signal[V, E]) ObserveCompleted(onCompleted func()) Disposable {
	return s.Observe(NewObserverFuncs[V, E](nil, nil, onCompleted, nil))
}

// ObserveInterrupted registers a callback for the interrupted terminal only.
func (s *Signal[V, E]) ObserveInterrupted(onInterrupted func()) Disposable {
	return s.Observe(NewObserverFuncs[V, E](nil, nil, nil, onInterrupted))
}

// ObserveResult registers onValue for each value and onResult once, for
// whichever terminal arrives first, with nil on completed/interrupted and
// the failure otherwise — a Go-native convenience for streams whose E is an
// error, not part of the Swift original's surface.
func ObserveResult[V any, E error](s *Signal[V, E], onValue func(V), onResult func(error)) Disposable {
	return s.Observe(NewObserver(func(e Event[V, E]) {
		switch e.Kind() {
		case KindValue:
			if onValue != nil {
				v, _ := e.Val()
				onValue(v)
			}
		case KindFailed:
			if onResult != nil {
				err, _ := e.Err()
				onResult(err)
			}
		case KindCompleted, KindInterrupted:
			if onResult != nil {
				onResult(nil)
			}
		}
	}))
}
