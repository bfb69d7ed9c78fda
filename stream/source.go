package stream

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/rxkit/errors"
)

// FromSlice emits every item in order, then completes. Emission is
// synchronous: it finishes before Subscribe returns. The slice is copied.
func FromSlice[T any](items []T) *Stream[T] {
	items = slices.Clone(items)
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()
		for _, v := range items {
			if !k.active() {
				return
			}
			k.OnNext(v)
		}
		k.OnComplete()
	})
}

// Just emits the given items in order, then completes.
func Just[T any](items ...T) *Stream[T] {
	return FromSlice(items)
}

// FromSliceWithDelay emits item i (counting from 1) at i*interval after
// subscription and completes right after the last item.
func FromSliceWithDelay[T any](items []T, interval time.Duration) *Stream[T] {
	return DelayElements(FromSlice(items), interval)
}

// Empty completes immediately.
func Empty[T any]() *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		newSink(sc, o).OnComplete()
	})
}

// Fail terminates immediately with err.
func Fail[T any](err error) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		newSink(sc, o).OnError(err)
	})
}

// Range emits count consecutive integers starting at start.
func Range(start, count int) *Stream[int] {
	if count < 0 {
		return Fail[int](errors.InvalidArgument("count", fmt.Sprintf("must be >= 0, got %d", count)))
	}
	return newStream(func(sc *scope, o Observer[int]) {
		k := newSink(sc, o)
		k.begin()
		for i := 0; i < count; i++ {
			if !k.active() {
				return
			}
			k.OnNext(start + i)
		}
		k.OnComplete()
	})
}

// Defer calls factory on every subscription and subscribes to the stream
// it returns.
func Defer[T any](factory func() *Stream[T]) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		s, err := apply("defer", func() (*Stream[T], error) {
			return factory(), nil
		})
		if err != nil {
			k.OnError(err)
			return
		}
		if s == nil {
			k.OnError(errors.InvalidArgument("factory", "returned a nil stream"))
			return
		}
		k.begin()
		s.subscribe(sc.child(), k)
	})
}
