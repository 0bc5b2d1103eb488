package internal

import "sync"

// Trampoline serializes a stream of send calls onto a single logical
// dispatch without ever recursing: a send that arrives while another send is
// already running is appended to a pending queue and drained by the
// in-progress call instead of being run inline. This is the teacher's
// Scheduler.Run drain loop (CAS a running flag, loop while work remains)
// repurposed from "drain scheduled recomputations" to "drain pending sends
// on one signal," which is how a Signal keeps strict total event order even
// when an observer's handler sends back into the same signal.
type Trampoline struct {
	mu      sync.Mutex
	running bool
	pending []func()
}

// Run executes fn now if no send is currently in flight on this trampoline,
// or enqueues it to run after the in-flight one finishes otherwise. Run
// never blocks waiting for another goroutine's dispatch to finish; the
// calling goroutine either runs the work itself (possibly draining work
// enqueued by nested calls) or hands it off and returns immediately.
func (t *Trampoline) Run(fn func()) {
	t.mu.Lock()
	if t.running {
		t.pending = append(t.pending, fn)
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.drain(fn)
}

func (t *Trampoline) drain(first func()) {
	next := first
	for {
		next()

		t.mu.Lock()
		if len(t.pending) == 0 {
			t.running = false
			t.mu.Unlock()
			return
		}
		next = t.pending[0]
		t.pending = t.pending[1:]
		t.mu.Unlock()
	}
}
