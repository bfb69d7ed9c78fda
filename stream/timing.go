package stream

import (
	"time"

	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/resilience"
)

// DelayElements shifts each value in time: a value is emitted d after it
// arrived or d after the previous emission, whichever is later. Completion
// waits for queued values; an upstream error is forwarded immediately and
// drops them.
func DelayElements[T any](s *Stream[T], d time.Duration) *Stream[T] {
	if d < 0 {
		d = 0
	}
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()

		var queue []T
		waiting := false
		upstreamDone := false

		var emit func()
		arm := func() {
			waiting = true
			if err := sc.schedule(d, emit); err != nil {
				k.OnError(err)
			}
		}
		emit = func() {
			waiting = false
			v := queue[0]
			var zero T
			queue[0] = zero
			queue = queue[1:]

			k.OnNext(v)
			if !k.active() {
				return
			}
			if len(queue) > 0 {
				arm()
				return
			}
			if upstreamDone {
				k.OnComplete()
			}
		}

		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				queue = append(queue, v)
				if !waiting {
					arm()
				}
			},
			Error: func(err error) {
				queue = nil
				k.OnError(err)
			},
			Complete: func() {
				upstreamDone = true
				if !waiting && len(queue) == 0 {
					k.OnComplete()
				}
			},
		})
	})
}

// DelaySubscription subscribes to s only after d has elapsed.
func DelaySubscription[T any](s *Stream[T], d time.Duration) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		err := sc.schedule(d, func() {
			k.begin()
			s.subscribe(sc.child(), k)
		})
		if err != nil {
			k.OnError(err)
		}
	})
}

// Retry resubscribes to s when it fails, waiting resilience.Backoff between
// attempts on the runtime's scheduler. Values from failed attempts are
// forwarded as they arrive. The last error is forwarded once cfg gives up.
func Retry[T any](s *Stream[T], cfg resilience.RetryConfig) *Stream[T] {
	cfg.ApplyDefaults()
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()

		attempt := 0
		var subscribe func()
		subscribe = func() {
			attempt++
			s.subscribe(sc.child(), Funcs[T]{
				Next:     k.OnNext,
				Complete: k.OnComplete,
				Error: func(err error) {
					if !cfg.ShouldRetry(attempt, err) {
						k.OnError(err)
						return
					}
					backoff := resilience.Backoff(attempt, cfg)
					if cfg.OnRetry != nil {
						cfg.OnRetry(attempt, err, backoff)
					}
					sc.rt.log.Debug("retrying stream", logger.Fields(
						"attempt", attempt,
						"backoff", backoff.String(),
						logger.FieldError, err.Error(),
					))
					if serr := sc.schedule(backoff, subscribe); serr != nil {
						k.OnError(serr)
					}
				},
			})
		}
		subscribe()
	})
}
