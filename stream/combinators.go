package stream

import "time"

// Zip pairs the k-th value of a with the k-th value of b using fn. Both
// upstreams are subscribed at once and buffered independently, so arrival
// skew does not affect pairing. The result completes once either side has
// completed and its buffer is empty; the first error from either side is
// forwarded and cancels the other.
func Zip[A, B, V any](a *Stream[A], b *Stream[B], fn func(A, B) (V, error)) *Stream[V] {
	return newStream(func(sc *scope, o Observer[V]) {
		k := newSink(sc, o)
		k.begin()

		var qa []A
		var qb []B
		doneA, doneB := false, false

		drain := func() {
			for len(qa) > 0 && len(qb) > 0 && k.active() {
				x, y := qa[0], qb[0]
				qa, qb = qa[1:], qb[1:]
				v, err := apply("zip", func() (V, error) { return fn(x, y) })
				if err != nil {
					k.OnError(err)
					return
				}
				k.OnNext(v)
			}
			if (doneA && len(qa) == 0) || (doneB && len(qb) == 0) {
				k.OnComplete()
			}
		}

		a.subscribe(sc.child(), Funcs[A]{
			Next:     func(v A) { qa = append(qa, v); drain() },
			Error:    k.OnError,
			Complete: func() { doneA = true; drain() },
		})
		if !k.active() {
			return
		}
		b.subscribe(sc.child(), Funcs[B]{
			Next:     func(v B) { qb = append(qb, v); drain() },
			Error:    k.OnError,
			Complete: func() { doneB = true; drain() },
		})
	})
}

// FirstEmitting subscribes to every source and mirrors the first one to
// deliver any signal. The others are cancelled once the winner is known.
// Sources signalling at the same scheduler instant are won by the earliest
// listed. With no sources the result completes immediately.
func FirstEmitting[T any](sources ...*Stream[T]) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		if len(sources) == 0 {
			k.OnComplete()
			return
		}
		k.begin()

		r := &race[T]{
			sc:     sc,
			k:      k,
			scopes: make([]*scope, len(sources)),
			winner: -1,
			first:  make(map[int]time.Time),
			held:   make(map[int][]func()),
		}
		for i := range sources {
			r.scopes[i] = sc.child()
		}

		r.subscribing = true
		for i, src := range sources {
			if r.winner >= 0 || !k.active() {
				break
			}
			src.subscribe(r.scopes[i], r.lane(i))
		}
		r.subscribing = false
	})
}

// race arbitrates between the sources of FirstEmitting. A signal delivered
// while the sources are being subscribed wins at once, since earlier sources
// have had their chance. Signals arriving later are held until a zero-delay
// callback at the end of that instant, which picks the earliest-listed
// source among those that signalled first.
type race[T any] struct {
	sc          *scope
	k           *sink[T]
	scopes      []*scope
	winner      int
	subscribing bool
	deciding    bool
	first       map[int]time.Time
	held        map[int][]func()
}

func (r *race[T]) lane(i int) Observer[T] {
	return Funcs[T]{
		Next:     func(v T) { r.deliver(i, func() { r.k.OnNext(v) }) },
		Error:    func(err error) { r.deliver(i, func() { r.k.OnError(err) }) },
		Complete: func() { r.deliver(i, r.k.OnComplete) },
	}
}

func (r *race[T]) deliver(i int, signal func()) {
	switch {
	case r.winner == i:
		signal()
	case r.winner >= 0:
		// lost
	case r.subscribing:
		r.claim(i)
		signal()
	default:
		r.hold(i, signal)
	}
}

func (r *race[T]) claim(i int) {
	r.winner = i
	r.first, r.held = nil, nil
	for j, c := range r.scopes {
		if j != i {
			c.cancel()
		}
	}
}

func (r *race[T]) hold(i int, signal func()) {
	if _, ok := r.first[i]; !ok {
		r.first[i] = r.sc.rt.sched.Now()
	}
	r.held[i] = append(r.held[i], signal)
	if r.deciding {
		return
	}
	r.deciding = true
	if err := r.sc.schedule(0, r.decide); err != nil {
		r.k.OnError(err)
	}
}

func (r *race[T]) decide() {
	winner := -1
	var at time.Time
	for i, t := range r.first {
		if winner < 0 || t.Before(at) || (t.Equal(at) && i < winner) {
			winner, at = i, t
		}
	}
	if winner < 0 {
		return
	}
	held := r.held[winner]
	r.claim(winner)
	for _, signal := range held {
		signal()
	}
}

// Concat emits every value of each source in turn, subscribing to the next
// source only after the previous one completes. An error stops the chain;
// later sources are never subscribed.
func Concat[T any](sources ...*Stream[T]) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()

		var next func(i int)
		next = func(i int) {
			if i == len(sources) {
				k.OnComplete()
				return
			}
			sources[i].subscribe(sc.child(), Funcs[T]{
				Next:     k.OnNext,
				Error:    k.OnError,
				Complete: func() { next(i + 1) },
			})
		}
		next(0)
	})
}

// OnErrorResume mirrors s until it fails, then discards the error and
// switches to fallback. If s completes, fallback is never subscribed.
func OnErrorResume[T any](s, fallback *Stream[T]) *Stream[T] {
	return OnErrorResumeWith(s, func(error) *Stream[T] { return fallback })
}

// OnErrorResumeWith is OnErrorResume with the fallback chosen from the
// error. A nil fallback forwards the original error.
func OnErrorResumeWith[T any](s *Stream[T], fn func(error) *Stream[T]) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()
		s.subscribe(sc.child(), Funcs[T]{
			Next:     k.OnNext,
			Complete: k.OnComplete,
			Error: func(err error) {
				fallback, ferr := apply("onErrorResume", func() (*Stream[T], error) { return fn(err), nil })
				if ferr != nil {
					k.OnError(ferr)
					return
				}
				if fallback == nil {
					k.OnError(err)
					return
				}
				fallback.subscribe(sc.child(), k)
			},
		})
	})
}

// Merge interleaves values from all sources as they arrive. It completes
// after every source completes; the first error cancels the rest.
func Merge[T any](sources ...*Stream[T]) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		if len(sources) == 0 {
			k.OnComplete()
			return
		}
		k.begin()

		remaining := len(sources)
		for _, src := range sources {
			if !k.active() {
				return
			}
			src.subscribe(sc.child(), Funcs[T]{
				Next:  k.OnNext,
				Error: k.OnError,
				Complete: func() {
					remaining--
					if remaining == 0 {
						k.OnComplete()
					}
				},
			})
		}
	})
}
