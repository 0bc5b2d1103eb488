package reactive

// SignalProducer is a cold, restartable recipe: a pure start-fn that
// materializes a fresh Signal on every Start call. Per spec.md §3/§4.8, a
// SignalProducer holds no subscriptions of its own — two Start calls run
// fully independent generators, and disposing one has no effect on the
// other (spec.md §8 property 5, cold-restart independence).
type SignalProducer[V, E any] struct {
	start func(Observer[V, E], *Lifetime)
}

// NewSignalProducer builds a producer from a start-fn that drives observer
// directly and may use lifetime to register cleanup for any background work
// it starts (lifetime.Add(d)); lifetime ends exactly when the Disposable
// returned by Start is disposed.
func NewSignalProducer[V, E any](start func(Observer[V, E], *Lifetime)) SignalProducer[V, E] {
	return SignalProducer[V, E]{start: start}
}

// Of returns a producer that sends a single value then completes.
func Of[V any, E any](v V) SignalProducer[V, E] {
	return NewSignalProducer(func(o Observer[V, E], _ *Lifetime) {
		o.SendValue(v)
		o.SendCompleted()
	})
}

// ErrorProducer returns a producer that immediately fails with err.
func ErrorProducer[V any, E any](err E) SignalProducer[V, E] {
	return NewSignalProducer(func(o Observer[V, E], _ *Lifetime) {
		o.SendFailed(err)
	})
}

// Empty returns a producer that completes immediately without any values.
func Empty[V any, E any]() SignalProducer[V, E] {
	return NewSignalProducer(func(o Observer[V, E], _ *Lifetime) {
		o.SendCompleted()
	})
}

// Never returns a producer that never sends anything and never terminates.
func Never[V any, E any]() SignalProducer[V, E] {
	return NewSignalProducer(func(o Observer[V, E], _ *Lifetime) {})
}

// FromSlice returns a producer that sends every element of values in order,
// then completes.
func FromSlice[V any, E any](values []V) SignalProducer[V, E] {
	return NewSignalProducer(func(o Observer[V, E], lt *Lifetime) {
		for _, v := range values {
			if lt.Ended.terminatedSnapshot() {
				return
			}
			o.SendValue(v)
		}
		o.SendCompleted()
	})
}

// terminatedSnapshot reports whether this signal has already reached a
// terminal — used by producers such as FromSlice to stop eagerly emitting
// into a start that has since been interrupted, rather than by Observe or
// dispatch, which never need to peek at this from outside their own flow.
func (s *Signal[V, E]) terminatedSnapshot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// Start performs the five-step sequence of spec.md §4.8: build an
// interrupting composite D, a Lifetime L ending when D is disposed, a
// signal S fed by the start-fn, observe S with observer, and return D.
// observer is attached to S before the start-fn runs, so events the
// start-fn sends synchronously reach it.
func (p SignalProducer[V, E]) Start(observer Observer[V, E]) Disposable {
	d := NewCompositeDisposable()
	lt, tok := NewLifetime()
	d.Add(NewDisposable(tok.Dispose))

	sig, input, _ := Pipe[V, E]()

	// An external interruption (disposing d, directly or via lt.Add chains)
	// must terminate the produced signal if the start-fn hasn't already;
	// SendInterrupted on an already-terminated signal is a no-op per
	// Signal's own terminal-state guard.
	whenEnded(lt, func() { input.SendInterrupted() })

	obsDispose := sig.Observe(observer)
	d.Add(obsDispose)

	p.start(input, lt)

	return d
}

// StartWithSignal invokes setup with the produced Signal and its
// interrupting Disposable before any observer is attached, enabling
// multicasting-in-place: setup can hand the signal to multiple observers
// itself.
func (p SignalProducer[V, E]) StartWithSignal(setup func(*Signal[V, E], Disposable)) {
	d := NewCompositeDisposable()
	lt, tok := NewLifetime()
	d.Add(NewDisposable(tok.Dispose))

	sig, input, _ := Pipe[V, E]()
	whenEnded(lt, func() { input.SendInterrupted() })

	setup(sig, d)

	p.start(input, lt)
}

// StartWithValues is a convenience over Start that only observes values.
func (p SignalProducer[V, E]) StartWithValues(onValue func(V)) Disposable {
	return p.Start(NewObserverFuncs[V, E](onValue, nil, nil, nil))
}

// Lift promotes a signal-level operator to the equivalent producer-level
// operator by threading it through Start — the single mechanism spec.md
// §4.8 specifies for defining lifted operators: the produced signal is the
// image of the internal signal under op.
func Lift[V, E, V2, E2 any](p SignalProducer[V, E], op func(*Signal[V, E]) *Signal[V2, E2]) SignalProducer[V2, E2] {
	return NewSignalProducer(func(observer Observer[V2, E2], lt *Lifetime) {
		d := NewCompositeDisposable()
		lt.Add(d)

		p.StartWithSignal(func(sig *Signal[V, E], producerDispose Disposable) {
			d.Add(producerDispose)
			lifted := op(sig)
			d.Add(lifted.Observe(observer))
		})
	})
}
