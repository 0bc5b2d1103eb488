package reactive

import (
	"sync"

	"github.com/signalcore/reactive/internal/rxsync"
	"github.com/signalcore/reactive/rxerr"
)

// Property is a read-only value cell plus its change stream. Value always
// returns the most recently produced value synchronously; Producer, when
// started, synchronously emits the current value followed by every future
// change.
type Property[V any] struct {
	value  func() V
	signal *Signal[V, NoError]
}

// NewProperty builds a read-only Property from its initial value and the
// signal of subsequent changes, per spec.md §4.10.
func NewProperty[V any](initial V, changes *Signal[V, NoError]) Property[V] {
	var mu sync.Mutex
	current := initial

	changes.ObserveValues(func(v V) {
		mu.Lock()
		current = v
		mu.Unlock()
	})

	return Property[V]{
		value: func() V {
			mu.Lock()
			defer mu.Unlock()
			return current
		},
		signal: changes,
	}
}

// Value returns the property's current value.
func (p Property[V]) Value() V { return p.value() }

// Signal returns the stream of future changes only — it never replays the
// current value.
func (p Property[V]) Signal() *Signal[V, NoError] { return p.signal }

// Producer returns a producer that, started, synchronously sends the
// current value followed by every future change.
func (p Property[V]) Producer() SignalProducer[V, NoError] {
	return NewSignalProducer(func(o Observer[V, NoError], lt *Lifetime) {
		o.SendValue(p.Value())
		lt.Add(p.signal.Observe(o))
	})
}

// MapProperty derives a read-only property whose value is f applied to the
// source's value, updated on every source change.
func MapProperty[V, V2 any](p Property[V], f func(V) V2) Property[V2] {
	derived := MapSignal[V, NoError](p.signal, f)
	return NewProperty(f(p.Value()), derived)
}

// CombineLatestProperty derives a property pairing the latest values of a
// and b, updated whenever either changes. Its initial value is the pair of
// both current values.
func CombineLatestProperty[VA, VB any](a Property[VA], b Property[VB]) Property[Pair[VA, VB]] {
	// Both sides are fed through their producers, which send the current
	// value first, so a change on one side pairs with the other side's
	// current value even before that side has changed.
	var derived *Signal[Pair[VA, VB], NoError]
	a.Producer().StartWithSignal(func(sa *Signal[VA, NoError], _ Disposable) {
		b.Producer().StartWithSignal(func(sb *Signal[VB, NoError], _ Disposable) {
			derived = CombineLatest[VA, VB, NoError](sa, sb)
		})
	})
	return NewProperty(Pair[VA, VB]{First: a.Value(), Second: b.Value()}, derived)
}

// ZipProperty derives a property pairing a's and b's change events in
// arrival order, buffering whichever side runs ahead — the Property-level
// counterpart to Zip. Its initial value is the pair of both current values,
// exactly as CombineLatestProperty's is.
func ZipProperty[VA, VB any](a Property[VA], b Property[VB]) Property[Pair[VA, VB]] {
	derived := Zip[VA, VB, NoError](a.signal, b.signal)
	return NewProperty(Pair[VA, VB]{First: a.Value(), Second: b.Value()}, derived)
}

// SkipRepeatsProperty derives a property that only emits a change when the
// new value differs from the last per eq.
func SkipRepeatsProperty[V any](p Property[V], eq func(a, b V) bool) Property[V] {
	// Fed through p's producer so the current value seeds the comparison.
	var derived *Signal[V, NoError]
	p.Producer().StartWithSignal(func(s *Signal[V, NoError], _ Disposable) {
		derived = SkipRepeats(s, eq)
	})
	return NewProperty(p.Value(), derived)
}

// MutableProperty is a Property whose value can be written directly or via
// Modify, and which can be the target of a binding. Per spec.md §4.10 it is
// backed by the same serial send-slot discipline as Signal, plus an atomic
// value cell and a reentrance guard on Modify.
type MutableProperty[V any] struct {
	mu     sync.Mutex
	value  V
	signal *Signal[V, NoError]
	input  Observer[V, NoError]
	guard  rxsync.ReentranceGuard
	bind   *SerialDisposable
}

// NewMutableProperty returns a MutableProperty seeded with initial.
func NewMutableProperty[V any](initial V) *MutableProperty[V] {
	sig, input, _ := Pipe[V, NoError]()
	p := &MutableProperty[V]{
		value:  initial,
		signal: sig,
		input:  input,
		bind:   NewSerialDisposable(),
	}
	return p
}

// Value returns the current value.
func (p *MutableProperty[V]) Value() V {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Signal returns the stream of future changes only.
func (p *MutableProperty[V]) Signal() *Signal[V, NoError] { return p.signal }

// Producer returns a producer that synchronously sends the current value
// followed by every future change.
func (p *MutableProperty[V]) Producer() SignalProducer[V, NoError] {
	return NewSignalProducer(func(o Observer[V, NoError], lt *Lifetime) {
		o.SendValue(p.Value())
		lt.Add(p.signal.Observe(o))
	})
}

// ReadOnly returns a Property view over this mutable property.
func (p *MutableProperty[V]) ReadOnly() Property[V] {
	return Property[V]{value: p.Value, signal: p.signal}
}

// Set replaces the value unconditionally and emits the change.
func (p *MutableProperty[V]) Set(v V) {
	p.Modify(func(V) V { return v })
}

// Modify takes the property's send slot, invokes f with the current value,
// stores and emits the result, and returns what f returned. Calling Modify
// reentrantly — from inside another Modify call on the same property, on
// the same goroutine — raises rxerr.FaultReentrantModify instead of
// deadlocking or corrupting state, the same cross-goroutine guard the
// teacher's internal/tracker.go Tracker.executingGID enforces for a
// different reentrancy hazard.
func (p *MutableProperty[V]) Modify(f func(V) V) V {
	if p.guard.Enter() {
		rxerr.Raise(rxerr.FaultReentrantModify, "Modify called reentrantly on the same MutableProperty")
	}
	defer p.guard.Exit()

	next := func() V {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.value = f(p.value)
		return p.value
	}()

	p.input.SendValue(next)
	return next
}

// Bind starts source and writes every value it produces into the property
// via Modify, replacing (and disposing) any previous binding. The returned
// disposable ends this binding without affecting source's other observers
// or any value already written. The property has no lifetime of its own:
// nothing ends a binding automatically, so it lasts until its disposable is
// disposed, a later Bind replaces it, or source terminates.
func (p *MutableProperty[V]) Bind(source SignalProducer[V, NoError]) Disposable {
	d := source.Start(NewObserverFuncs[V, NoError](func(v V) {
		p.Modify(func(V) V { return v })
	}, nil, nil, nil))
	p.bind.SetInner(d)
	return d
}
