// Package rxerr distinguishes usage faults — programming errors such as a
// reentrant Property.Modify call or scheduling on a torn-down executor —
// from ordinary typed stream failures. Faults are panicked, never returned
// as an E value, per spec.md §7's three-domain error model.
package rxerr

import "fmt"

// Kind identifies which usage fault occurred.
type Kind string

const (
	// FaultReentrantModify fires when a goroutine calls a MutableProperty's
	// Modify while already inside that same property's Modify.
	FaultReentrantModify Kind = "reentrant-modify"
	// FaultSchedulerClosed fires when work is scheduled on a scheduler
	// whose underlying executor has already been torn down.
	FaultSchedulerClosed Kind = "scheduler-closed"
	// FaultInfiniteLoop fires when a scheduler's repeating work starves
	// itself into what looks like a runaway loop.
	FaultInfiniteLoop Kind = "infinite-loop"
)

// Fault is the panic value for every usage fault in this module. Stream
// failures never use this type; they flow through Event's Failed variant
// instead.
type Fault struct {
	Kind    Kind
	Message string
}

func (f Fault) Error() string {
	return fmt.Sprintf("reactive: %s: %s", f.Kind, f.Message)
}

// Raise panics with a Fault of the given kind and message.
func Raise(kind Kind, format string, args ...any) {
	panic(Fault{Kind: kind, Message: fmt.Sprintf(format, args...)})
}
