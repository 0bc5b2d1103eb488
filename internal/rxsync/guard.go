// Package rxsync provides the goroutine-affinity guard that detects
// reentrant calls into a mutable property's Modify from the same goroutine.
// It generalizes the teacher's internal/tracker.go Tracker, which refuses to
// link a dependency when the calling goroutine doesn't match the goroutine
// currently running the tracked computation (compared via goid.Get()). Here
// the same comparison detects a handler that calls Modify again while
// already inside Modify, which must fail fast rather than deadlock.
package rxsync

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// ReentranceGuard protects a single critical section (e.g. one property's
// Modify) against being re-entered by the goroutine currently inside it,
// while still serializing distinct goroutines against each other.
type ReentranceGuard struct {
	mu     sync.Mutex
	holder atomic.Int64 // 0 means unheld; goid.Get() never returns 0
}

// Enter blocks until the critical section is free, unless the calling
// goroutine already holds it, in which case it returns immediately with
// reentrant=true and does not acquire anything. The caller must treat a
// reentrant result as fatal (Modify must not re-enter itself) rather than
// proceeding.
func (g *ReentranceGuard) Enter() (reentrant bool) {
	gid := goid.Get()
	if g.holder.Load() == gid {
		return true
	}

	g.mu.Lock()
	g.holder.Store(gid)
	return false
}

// Exit releases the guard. Must be called exactly once per non-reentrant
// Enter, typically via defer.
func (g *ReentranceGuard) Exit() {
	g.holder.Store(0)
	g.mu.Unlock()
}
