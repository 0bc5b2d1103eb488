package reactive

// Observer is a sink that accepts Events. Its single dispatch point is
// Send; every other method is a convenience built on top of it, mirroring
// jiandongquan-RxGo's nextHandler/errHandler/doneHandler split,
// generalized to this module's four-variant Event algebra. An Observer does
// not track terminals itself: Send always calls its function. Sending after
// a terminal is never a fault; through a Signal's input observer (such as
// the one Pipe returns) it is a silent no-op, because the Signal's send
// slot drops every event after the first terminal.
type Observer[V, E any] struct {
	send func(Event[V, E])
}

// NewObserver builds an Observer whose Send calls send directly.
func NewObserver[V, E any](send func(Event[V, E])) Observer[V, E] {
	if send == nil {
		send = func(Event[V, E]) {}
	}
	return Observer[V, E]{send: send}
}

// NewObserverFuncs builds an Observer from one callback per variant. Any nil
// callback is treated as a no-op for that variant.
func NewObserverFuncs[V, E any](onValue func(V), onFailed func(E), onCompleted func(), onInterrupted func()) Observer[V, E] {
	return NewObserver(func(e Event[V, E]) {
		switch e.Kind() {
		case KindValue:
			if onValue != nil {
				v, _ := e.Val()
				onValue(v)
			}
		case KindFailed:
			if onFailed != nil {
				err, _ := e.Err()
				onFailed(err)
			}
		case KindCompleted:
			if onCompleted != nil {
				onCompleted()
			}
		case KindInterrupted:
			if onInterrupted != nil {
				onInterrupted()
			}
		}
	})
}

// Send dispatches an event to the observer. This is the single point every
// other method in this module funnels through, so an observer can be
// wrapped to filter, map, or gate calls without the consumer noticing, per
// spec.md §4.2.
func (o Observer[V, E]) Send(e Event[V, E]) {
	o.send(e)
}

// SendValue is shorthand for Send(Value(v)).
func (o Observer[V, E]) SendValue(v V) {
	o.Send(Value[V, E](v))
}

// SendFailed is shorthand for Send(Failed(err)).
func (o Observer[V, E]) SendFailed(err E) {
	o.Send(Failed[V, E](err))
}

// SendCompleted is shorthand for Send(Completed()).
func (o Observer[V, E]) SendCompleted() {
	o.Send(Completed[V, E]())
}

// SendInterrupted is shorthand for Send(Interrupted()).
func (o Observer[V, E]) SendInterrupted() {
	o.Send(Interrupted[V, E]())
}
