package reactive

import (
	"runtime"
	"sync"
)

// Lifetime is an observable scope: Ended completes exactly once, when the
// scope it represents is torn down. Per spec.md §4.7, grounded on the
// teacher's internal/owner.go ownership tree — that tree's cleanup-on-
// Dispose shape, flattened from a parent/child tree to a single
// (ended-signal, token) pair, since nothing in this spec nests lifetimes
// hierarchically the way the teacher nests owners.
type Lifetime struct {
	Ended       *Signal[struct{}, NoError]
	disposables *CompositeDisposable
}

// Add registers d to be disposed when the lifetime ends — the `+=
// disposable` capability from spec.md §6. If the lifetime has already
// ended, d is disposed immediately.
func (lt *Lifetime) Add(d Disposable) {
	lt.disposables.Add(d)
}

// Token is the capability that ends a Lifetime. Swift's original expresses
// "ends when dropped" via ARC deinit; Go has no deterministic destructor, so
// Dispose is the authoritative, explicit way to end a lifetime here. A
// runtime.AddCleanup hook is armed as a best-effort GC-time backstop for
// code that truly lets a token fall out of scope without disposing it — see
// DESIGN.md's Open Question resolution. Nothing in this module's own tests
// relies on the backstop firing.
type Token struct {
	complete Disposable
}

// NewLifetime returns a fresh Lifetime together with the Token that ends it.
func NewLifetime() (*Lifetime, *Token) {
	sig, input, _ := Pipe[struct{}, NoError]()
	disposables := NewCompositeDisposable()

	complete := NewDisposable(func() {
		disposables.Dispose()
		input.SendCompleted()
	})

	tok := &Token{complete: complete}
	runtime.AddCleanup(tok, func(d Disposable) { d.Dispose() }, complete)

	return &Lifetime{Ended: sig, disposables: disposables}, tok
}

// Dispose ends the lifetime. Idempotent.
func (t *Token) Dispose() { t.complete.Dispose() }

// IsDisposed reports whether the lifetime has already ended via this token.
func (t *Token) IsDisposed() bool { return t.complete.IsDisposed() }

// whenEnded invokes fn exactly once, the first time lt's Ended signal
// reaches either terminal — Completed if still live, or the synthetic
// Interrupted a late subscription receives if lt had already ended. Both
// mean the same thing to a composing Lifetime: this one is over.
func whenEnded(lt *Lifetime, fn func()) {
	var once sync.Once
	fire := func() { once.Do(fn) }
	lt.Ended.Observe(NewObserverFuncs[struct{}, NoError](nil, nil, fire, fire))
}

// FromDisposable returns a Lifetime that ends when d is disposed, together
// with the Disposable the caller must use in d's place. Because Disposable
// has no "notify me when you're torn down" hook, the returned Disposable
// wraps d together with the lifetime's own ending action — disposing it
// disposes d too, so callers should route all of d's former disposal sites
// through the returned value instead.
func FromDisposable(d Disposable) (*Lifetime, Disposable) {
	lt, tok := NewLifetime()
	if d != nil && d.IsDisposed() {
		tok.Dispose()
		return lt, d
	}
	wrapped := NewCompositeDisposable(d, NewDisposable(tok.Dispose))
	return lt, wrapped
}

// And returns a Lifetime that ends as soon as either a or b ends.
func And(a, b *Lifetime) *Lifetime {
	lt, tok := NewLifetime()
	whenEnded(a, tok.Dispose)
	whenEnded(b, tok.Dispose)
	return lt
}

// Or returns a Lifetime that ends only once both a and b have ended.
func Or(a, b *Lifetime) *Lifetime {
	lt, tok := NewLifetime()

	var mu sync.Mutex
	aEnded, bEnded := false, false
	check := func() {
		mu.Lock()
		done := aEnded && bEnded
		mu.Unlock()
		if done {
			tok.Dispose()
		}
	}

	whenEnded(a, func() {
		mu.Lock()
		aEnded = true
		mu.Unlock()
		check()
	})
	whenEnded(b, func() {
		mu.Lock()
		bEnded = true
		mu.Unlock()
		check()
	})

	return lt
}
