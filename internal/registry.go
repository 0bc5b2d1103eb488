// Package internal holds the untyped engine beneath the generic public API,
// the same split the teacher uses between its internal engine and the
// generic sig package that wraps it.
package internal

import "github.com/google/uuid"

// entry is one slot in the registry's doubly-linked list, adapted from the
// dependency-link list in node.go and the height-bucket list in heap.go:
// a self-looping prev pointer on the sole entry, O(1) append at the tail via
// that loop, and the same single-node/multi-node unlink cases.
type entry struct {
	id   uuid.UUID
	val  any
	prev *entry
	next *entry
}

// Registry is a set of values, each addressable by a stable ID handed out at
// insertion time, supporting O(1) removal by ID. A Signal uses one Registry
// per alive state to hold its attached observers; removing an entry never
// disturbs the iteration order of the remaining ones.
type Registry struct {
	head *entry
	byID map[uuid.UUID]*entry
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uuid.UUID]*entry)}
}

// Insert adds val under a freshly minted ID and returns that ID.
func (r *Registry) Insert(val any) uuid.UUID {
	id := uuid.New()
	e := &entry{id: id, val: val}
	r.byID[id] = e

	if r.head == nil {
		r.head = e
		e.prev = e // loop to self
		e.next = nil
	} else {
		tail := r.head.prev
		tail.next = e
		e.prev = tail
		e.next = nil
		r.head.prev = e
	}

	return id
}

// Remove deletes the entry with the given ID, if present. Safe to call more
// than once for the same ID.
func (r *Registry) Remove(id uuid.UUID) {
	e, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)

	// single node
	if e.prev == e {
		r.head = nil
		e.prev = nil
		e.next = nil
		return
	}

	if e == r.head {
		r.head = e.next
	} else {
		e.prev.next = e.next
	}

	next := e.next
	if next == nil {
		next = r.head
	}
	if next != nil {
		next.prev = e.prev
	}

	e.prev = nil
	e.next = nil
}

// Len reports the number of entries currently registered.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Snapshot returns every currently-registered value in insertion order. The
// caller is free to range over it after the registry itself has been
// cleared, which is exactly how Signal fans a terminal event out to
// observers without holding its mutex during dispatch.
func (r *Registry) Snapshot() []any {
	out := make([]any, 0, len(r.byID))
	for e := r.head; e != nil; e = e.next {
		out = append(out, e.val)
	}
	return out
}

// Clear empties the registry without visiting each entry's teardown; callers
// that need teardown semantics snapshot first.
func (r *Registry) Clear() {
	r.head = nil
	r.byID = make(map[uuid.UUID]*entry)
}
