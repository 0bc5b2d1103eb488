package reactive

import (
	"sync"
	"sync/atomic"
)

// Disposable is an idempotent cancellation/teardown token. Dispose may be
// called any number of times by any number of goroutines; only the first
// call has an effect.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

// actionDisposable runs an action exactly once, guarded by compare-and-swap
// the way the teacher's internal/scheduler.go Scheduler.Run transitions its
// running flag: a single atomic bool, no mutex needed because there is only
// one bit of state and one transition.
type actionDisposable struct {
	disposed boolFlag
	action   func()
}

// NewDisposable returns a Disposable that runs action the first time Dispose
// is called and is a no-op on every subsequent call. A nil action is legal
// and simply marks the token disposed.
func NewDisposable(action func()) Disposable {
	return &actionDisposable{action: action}
}

// NewScopedDisposable returns a Disposable meant to be paired with defer at
// the top of a scope — e.g. `defer reactive.NewScopedDisposable(cleanup).Dispose()`
// — to guarantee teardown on scope exit. Mechanically identical to
// NewDisposable; the distinct constructor exists because spec.md's external
// interface lists "scoped action" as its own disposable shape.
func NewScopedDisposable(action func()) Disposable {
	return NewDisposable(action)
}

func (d *actionDisposable) Dispose() {
	if d.disposed.set() {
		if d.action != nil {
			d.action()
		}
		if activeMetrics != nil {
			activeMetrics.DisposalPerformed()
		}
	}
}

func (d *actionDisposable) IsDisposed() bool {
	return d.disposed.get()
}

// CompositeDisposable owns a set of children; disposing it disposes every
// child exactly once and clears the set. Adding a child after the composite
// is already disposed tears that child down immediately instead of storing
// it — the same rule samber/ro's subscriptionImpl applies to a teardown
// added after Unsubscribe.
type CompositeDisposable struct {
	mu       sync.Mutex
	disposed bool
	children []Disposable
}

// NewCompositeDisposable returns an empty CompositeDisposable, optionally
// seeded with initial children.
func NewCompositeDisposable(children ...Disposable) *CompositeDisposable {
	c := &CompositeDisposable{}
	for _, child := range children {
		c.Add(child)
	}
	return c
}

// Add registers child to be disposed when the composite is. A nil child is
// ignored.
func (c *CompositeDisposable) Add(child Disposable) {
	if child == nil {
		return
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		child.Dispose()
		return
	}
	c.children = append(c.children, child)
	c.mu.Unlock()
}

// Remove drops child from the set without disposing it, e.g. because it
// already disposed itself and no longer needs tearing down from here.
func (c *CompositeDisposable) Remove(child Disposable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, d := range c.children {
		if d == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// Dispose tears down every currently registered child exactly once.
func (c *CompositeDisposable) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	children := c.children
	c.children = nil
	c.mu.Unlock()

	for _, child := range children {
		child.Dispose()
	}
}

// IsDisposed reports whether Dispose has run.
func (c *CompositeDisposable) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// SerialDisposable holds at most one inner Disposable. Assigning a new inner
// disposes the previous one; if the serial disposable is itself already
// disposed, assigning immediately disposes the new value instead of
// retaining it.
type SerialDisposable struct {
	mu       sync.Mutex
	disposed bool
	inner    Disposable
}

// NewSerialDisposable returns an empty SerialDisposable.
func NewSerialDisposable() *SerialDisposable {
	return &SerialDisposable{}
}

// SetInner replaces the held inner disposable, disposing whatever was held
// before.
func (s *SerialDisposable) SetInner(d Disposable) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return
	}
	prev := s.inner
	s.inner = d
	s.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// Inner returns the currently held disposable, or nil.
func (s *SerialDisposable) Inner() Disposable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner
}

// Dispose tears down the current inner disposable and marks the serial
// disposable itself as disposed, so any later SetInner disposes its
// argument immediately.
func (s *SerialDisposable) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	prev := s.inner
	s.inner = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Dispose()
	}
}

// IsDisposed reports whether Dispose has run.
func (s *SerialDisposable) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// boolFlag is a minimal one-shot compare-and-swap flag, factored out of
// actionDisposable so other single-transition state machines in this module
// share the same primitive the teacher's Scheduler.running/scheduled flags
// use.
type boolFlag struct {
	val atomic.Bool
}

// set flips the flag to true and reports whether this call was the one that
// did so.
func (f *boolFlag) set() bool {
	return f.val.CompareAndSwap(false, true)
}

func (f *boolFlag) get() bool {
	return f.val.Load()
}
