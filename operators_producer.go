package reactive

import "sync"

// Times returns a producer that runs p count times in sequence, each a
// fresh, independent Start, as if values from every run were concatenated.
// Completes after the count-th run completes; propagates a failure or
// interruption from any run immediately, without starting the next.
func Times[V, E any](p SignalProducer[V, E], count int) SignalProducer[V, E] {
	if count <= 0 {
		return Empty[V, E]()
	}

	return NewSignalProducer(func(observer Observer[V, E], lt *Lifetime) {
		var runNext func(remaining int)
		runNext = func(remaining int) {
			current := NewSerialDisposable()
			lt.Add(current)

			current.SetInner(p.Start(NewObserver(func(e Event[V, E]) {
				if v, ok := e.Val(); ok {
					observer.SendValue(v)
					return
				}
				switch e.Kind() {
				case KindFailed:
					err, _ := e.Err()
					observer.SendFailed(err)
				case KindInterrupted:
					observer.SendInterrupted()
				case KindCompleted:
					if remaining <= 1 {
						observer.SendCompleted()
						return
					}
					runNext(remaining - 1)
				}
			})))
		}
		runNext(count)
	})
}

// Retry returns a producer that restarts p up to count additional times
// after a failure, forwarding the final failure if every attempt fails.
// count <= 0 behaves like p itself, with no retry.
func Retry[V, E any](p SignalProducer[V, E], count int) SignalProducer[V, E] {
	return NewSignalProducer(func(observer Observer[V, E], lt *Lifetime) {
		var attempt func(remaining int)
		attempt = func(remaining int) {
			current := NewSerialDisposable()
			lt.Add(current)

			current.SetInner(p.Start(NewObserver(func(e Event[V, E]) {
				if v, ok := e.Val(); ok {
					observer.SendValue(v)
					return
				}
				switch e.Kind() {
				case KindFailed:
					if remaining > 0 {
						attempt(remaining - 1)
						return
					}
					err, _ := e.Err()
					observer.SendFailed(err)
				case KindInterrupted:
					observer.SendInterrupted()
				case KindCompleted:
					observer.SendCompleted()
				}
			})))
		}
		attempt(count)
	})
}

// Then runs p to completion, discarding its values, then starts next and
// forwards its events in full. A failure or interruption from p short-
// circuits without ever starting next.
func Then[V, E, V2 any](p SignalProducer[V, E], next SignalProducer[V2, E]) SignalProducer[V2, E] {
	return NewSignalProducer(func(observer Observer[V2, E], lt *Lifetime) {
		first := NewSerialDisposable()
		lt.Add(first)

		first.SetInner(p.Start(NewObserver(func(e Event[V, E]) {
			if _, ok := e.Val(); ok {
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				observer.SendFailed(err)
			case KindInterrupted:
				observer.SendInterrupted()
			case KindCompleted:
				second := NewSerialDisposable()
				lt.Add(second)
				second.SetInner(next.Start(observer))
			}
		})))
	})
}

// ReplayLazily returns a producer that starts the underlying producer p at
// most once, regardless of how many times the result is started, replaying
// up to the last capacity values (0 meaning unlimited) to every subsequent
// subscriber and forwarding the single run's terminal to all of them. The
// single underlying run is tied to whichever subscriber's Start happened to
// trigger it first; disposing that particular subscription tears the shared
// run down even if other subscribers are still attached. A reference-
// counted lifetime would avoid that, but nothing in this module needs it yet.
func ReplayLazily[V, E any](p SignalProducer[V, E], capacity int) SignalProducer[V, E] {
	type state struct {
		mu        sync.Mutex
		started   bool
		buffer    []V
		observers []Observer[V, E]
		terminal  *Event[V, E]
	}
	st := &state{}

	return NewSignalProducer(func(observer Observer[V, E], lt *Lifetime) {
		st.mu.Lock()
		if st.terminal != nil {
			term := *st.terminal
			buffered := append([]V(nil), st.buffer...)
			st.mu.Unlock()
			for _, v := range buffered {
				observer.SendValue(v)
			}
			observer.Send(term)
			return
		}

		buffered := append([]V(nil), st.buffer...)
		st.observers = append(st.observers, observer)
		alreadyStarted := st.started
		st.started = true
		st.mu.Unlock()

		for _, v := range buffered {
			observer.SendValue(v)
		}

		if alreadyStarted {
			return
		}

		lt.Add(p.Start(NewObserver(func(e Event[V, E]) {
			st.mu.Lock()
			observers := append([]Observer[V, E](nil), st.observers...)
			if v, ok := e.Val(); ok {
				st.buffer = append(st.buffer, v)
				if capacity > 0 && len(st.buffer) > capacity {
					st.buffer = st.buffer[len(st.buffer)-capacity:]
				}
			} else {
				term := e
				st.terminal = &term
			}
			st.mu.Unlock()

			for _, o := range observers {
				o.Send(e)
			}
		})))
	})
}

// FlatMapStrategy selects how FlatMap composes the inner producers that f
// returns for each outer value.
type FlatMapStrategy int

const (
	// FlatMapConcat runs inner producers one at a time, in the order their
	// outer values arrived, queueing any that arrive while one is in flight.
	FlatMapConcat FlatMapStrategy = iota
	// FlatMapMerge runs every inner producer concurrently, interleaving
	// their values as they arrive.
	FlatMapMerge
	// FlatMapLatest cancels whatever inner producer is in flight as soon as
	// a new outer value produces its replacement.
	FlatMapLatest
	// FlatMapRace runs every inner producer concurrently but keeps only the
	// first to emit, cancelling the rest.
	FlatMapRace
)

// FlatMap maps each value from p through f to an inner producer and
// composes the results per strategy. The outer completes only once p has
// completed and every inner producer the strategy keeps alive has also
// completed; a failure or interruption anywhere short-circuits the whole
// thing immediately.
func FlatMap[V, E, V2 any](p SignalProducer[V, E], strategy FlatMapStrategy, f func(V) SignalProducer[V2, E]) SignalProducer[V2, E] {
	switch strategy {
	case FlatMapConcat:
		return flatMapConcat(p, f)
	case FlatMapLatest:
		return flatMapLatest(p, f)
	case FlatMapRace:
		return flatMapRace(p, f)
	default:
		return flatMapMerge(p, f)
	}
}

func flatMapMerge[V, E, V2 any](p SignalProducer[V, E], f func(V) SignalProducer[V2, E]) SignalProducer[V2, E] {
	return NewSignalProducer(func(observer Observer[V2, E], lt *Lifetime) {
		var mu sync.Mutex
		outerDone := false
		active := 0

		lt.Add(p.Start(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				active++
				mu.Unlock()

				inner := NewSerialDisposable()
				lt.Add(inner)
				inner.SetInner(f(v).Start(NewObserver(func(ie Event[V2, E]) {
					if iv, ok := ie.Val(); ok {
						observer.SendValue(iv)
						return
					}
					switch ie.Kind() {
					case KindFailed:
						err, _ := ie.Err()
						observer.SendFailed(err)
					case KindInterrupted:
						observer.SendInterrupted()
					case KindCompleted:
						mu.Lock()
						active--
						finish := outerDone && active == 0
						mu.Unlock()
						if finish {
							observer.SendCompleted()
						}
					}
				})))
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				observer.SendFailed(err)
			case KindInterrupted:
				observer.SendInterrupted()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				finish := active == 0
				mu.Unlock()
				if finish {
					observer.SendCompleted()
				}
			}
		})))
	})
}

func flatMapConcat[V, E, V2 any](p SignalProducer[V, E], f func(V) SignalProducer[V2, E]) SignalProducer[V2, E] {
	return NewSignalProducer(func(observer Observer[V2, E], lt *Lifetime) {
		var mu sync.Mutex
		queue := []V{}
		running := false
		outerDone := false

		var runNext func()
		runNext = func() {
			mu.Lock()
			if running || len(queue) == 0 {
				mu.Unlock()
				return
			}
			v := queue[0]
			queue = queue[1:]
			running = true
			mu.Unlock()

			inner := NewSerialDisposable()
			lt.Add(inner)
			inner.SetInner(f(v).Start(NewObserver(func(ie Event[V2, E]) {
				if iv, ok := ie.Val(); ok {
					observer.SendValue(iv)
					return
				}
				switch ie.Kind() {
				case KindFailed:
					err, _ := ie.Err()
					observer.SendFailed(err)
				case KindInterrupted:
					observer.SendInterrupted()
				case KindCompleted:
					mu.Lock()
					running = false
					finish := outerDone && len(queue) == 0
					mu.Unlock()
					if finish {
						observer.SendCompleted()
						return
					}
					runNext()
				}
			})))
		}

		lt.Add(p.Start(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				queue = append(queue, v)
				mu.Unlock()
				runNext()
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				observer.SendFailed(err)
			case KindInterrupted:
				observer.SendInterrupted()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				finish := !running && len(queue) == 0
				mu.Unlock()
				if finish {
					observer.SendCompleted()
				}
			}
		})))
	})
}

func flatMapLatest[V, E, V2 any](p SignalProducer[V, E], f func(V) SignalProducer[V2, E]) SignalProducer[V2, E] {
	return NewSignalProducer(func(observer Observer[V2, E], lt *Lifetime) {
		inner := NewSerialDisposable()
		lt.Add(inner)

		var mu sync.Mutex
		outerDone := false
		innerActive := false
		currentGen := 0

		// checkDone must be called with mu held, matching flatMapRace's
		// checkDone below.
		checkDone := func() {
			if outerDone && !innerActive {
				observer.SendCompleted()
			}
		}

		lt.Add(p.Start(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				currentGen++
				gen := currentGen
				innerActive = true
				mu.Unlock()

				// inner.SetInner disposes the previous inner's Start disposable
				// inline, which raises an Interrupted on that prior inner's own
				// signal before its subscription is itself torn down (Start's
				// token child is disposed before its observer child). gen lets
				// this handler tell "my own teardown noise" apart from a live
				// event and tells the prior inner's events to stay silent — the
				// same supersession guard flatMapRace applies via winnerID.
				inner.SetInner(f(v).Start(NewObserver(func(ie Event[V2, E]) {
					mu.Lock()
					if gen != currentGen {
						mu.Unlock()
						return
					}
					mu.Unlock()

					if iv, ok := ie.Val(); ok {
						observer.SendValue(iv)
						return
					}
					switch ie.Kind() {
					case KindFailed:
						err, _ := ie.Err()
						observer.SendFailed(err)
					case KindInterrupted:
						observer.SendInterrupted()
					case KindCompleted:
						mu.Lock()
						innerActive = false
						checkDone()
						mu.Unlock()
					}
				})))
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				observer.SendFailed(err)
			case KindInterrupted:
				observer.SendInterrupted()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				checkDone()
				mu.Unlock()
			}
		})))
	})
}

// flatMapRace starts every inner producer as its outer value arrives and
// keeps only the first to produce any event (value or terminal), disposing
// every other inner the moment a winner is decided.
func flatMapRace[V, E, V2 any](p SignalProducer[V, E], f func(V) SignalProducer[V2, E]) SignalProducer[V2, E] {
	return NewSignalProducer(func(observer Observer[V2, E], lt *Lifetime) {
		var mu sync.Mutex
		winnerID := -1
		nextID := 0
		runners := map[int]*SerialDisposable{}
		outerDone := false

		// checkDone must be called with mu held. Once a winner is chosen,
		// every loser is removed from runners immediately, so the winner
		// completing is exactly "its own id is no longer in runners." Before
		// a winner is chosen, completion only makes sense if no inner is
		// left running at all (e.g. the outer produced no values).
		checkDone := func() {
			if !outerDone {
				return
			}
			if winnerID == -1 {
				if len(runners) == 0 {
					observer.SendCompleted()
				}
				return
			}
			if _, stillRunning := runners[winnerID]; !stillRunning {
				observer.SendCompleted()
			}
		}

		lt.Add(p.Start(NewObserver(func(e Event[V, E]) {
			if v, ok := e.Val(); ok {
				mu.Lock()
				if winnerID >= 0 {
					mu.Unlock()
					return
				}
				id := nextID
				nextID++
				inner := NewSerialDisposable()
				runners[id] = inner
				mu.Unlock()

				lt.Add(inner)
				inner.SetInner(f(v).Start(NewObserver(func(ie Event[V2, E]) {
					mu.Lock()
					if winnerID == -1 {
						winnerID = id
						losers := make([]*SerialDisposable, 0, len(runners))
						for rid, d := range runners {
							if rid != id {
								losers = append(losers, d)
								delete(runners, rid)
							}
						}
						mu.Unlock()
						for _, d := range losers {
							d.Dispose()
						}
					} else {
						isWinner := id == winnerID
						mu.Unlock()
						if !isWinner {
							return
						}
					}

					if iv, ok := ie.Val(); ok {
						observer.SendValue(iv)
						return
					}
					switch ie.Kind() {
					case KindFailed:
						err, _ := ie.Err()
						observer.SendFailed(err)
					case KindInterrupted:
						observer.SendInterrupted()
					case KindCompleted:
						mu.Lock()
						delete(runners, id)
						checkDone()
						mu.Unlock()
					}
				})))
				return
			}
			switch e.Kind() {
			case KindFailed:
				err, _ := e.Err()
				observer.SendFailed(err)
			case KindInterrupted:
				observer.SendInterrupted()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				checkDone()
				mu.Unlock()
			}
		})))
	})
}
