package stream

import (
	"context"
	"reflect"
	"slices"

	"github.com/kbukum/rxkit/errors"
)

// Map transforms each value using fn. An error from fn terminates the
// stream and cancels the upstream.
func Map[I, O any](s *Stream[I], fn func(context.Context, I) (O, error)) *Stream[O] {
	return newStream(func(sc *scope, o Observer[O]) {
		k := newSink(sc, o)
		k.begin()
		s.subscribe(sc.child(), Funcs[I]{
			Next: func(v I) {
				out, err := apply("map", func() (O, error) { return fn(sc.ctx, v) })
				if err != nil {
					k.OnError(err)
					return
				}
				k.OnNext(out)
			},
			Error:    k.OnError,
			Complete: k.OnComplete,
		})
	})
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](s *Stream[T], fn func(T) bool) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()
		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				keep, err := apply("filter", func() (bool, error) { return fn(v), nil })
				if err != nil {
					k.OnError(err)
					return
				}
				if keep {
					k.OnNext(v)
				}
			},
			Error:    k.OnError,
			Complete: k.OnComplete,
		})
	})
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
// Use for logging, metrics, or mid-pipeline publishing.
func Tap[T any](s *Stream[T], fn func(context.Context, T) error) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()
		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				if _, err := apply("tap", func() (struct{}, error) { return struct{}{}, fn(sc.ctx, v) }); err != nil {
					k.OnError(err)
					return
				}
				k.OnNext(v)
			},
			Error:    k.OnError,
			Complete: k.OnComplete,
		})
	})
}

// Take forwards at most the first n values, then completes and cancels the
// upstream. A non-positive n completes without subscribing upstream.
func Take[T any](s *Stream[T], n int) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		if n <= 0 {
			k.OnComplete()
			return
		}
		k.begin()
		seen := 0
		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				seen++
				k.OnNext(v)
				if seen >= n {
					k.OnComplete()
				}
			},
			Error:    k.OnError,
			Complete: k.OnComplete,
		})
	})
}

// Sort buffers every value until the upstream completes, then emits them
// ordered by cmp followed by Complete. Equal values keep arrival order.
// An upstream error discards the buffer. The upstream must be finite.
func Sort[T any](s *Stream[T], cmp func(a, b T) int) *Stream[T] {
	return newStream(func(sc *scope, o Observer[T]) {
		k := newSink(sc, o)
		k.begin()
		var buf []T
		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				buf = append(buf, v)
			},
			Error: func(err error) {
				buf = nil
				k.OnError(err)
			},
			Complete: func() {
				sorted := buf
				buf = nil
				_, err := apply("sort", func() (struct{}, error) {
					slices.SortStableFunc(sorted, cmp)
					return struct{}{}, nil
				})
				if err != nil {
					k.OnError(err)
					return
				}
				for _, v := range sorted {
					if !k.active() {
						return
					}
					k.OnNext(v)
				}
				k.OnComplete()
			},
		})
	})
}

// Cast asserts each value to U. The first value of another type terminates
// the stream with a TYPE_MISMATCH error.
//
//	ints := stream.Cast[int](stream.Just[any](1, 2, 3))
func Cast[U, T any](s *Stream[T]) *Stream[U] {
	target := reflect.TypeFor[U]().String()
	return newStream(func(sc *scope, o Observer[U]) {
		k := newSink(sc, o)
		k.begin()
		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				u, ok := any(v).(U)
				if !ok {
					k.OnError(errors.TypeMismatch(target, v))
					return
				}
				k.OnNext(u)
			},
			Error:    k.OnError,
			Complete: k.OnComplete,
		})
	})
}

// Reduce folds all values into a single result emitted on completion.
func Reduce[T, R any](s *Stream[T], init R, fn func(R, T) R) *Stream[R] {
	return newStream(func(sc *scope, o Observer[R]) {
		k := newSink(sc, o)
		k.begin()
		acc := init
		s.subscribe(sc.child(), Funcs[T]{
			Next: func(v T) {
				next, err := apply("reduce", func() (R, error) { return fn(acc, v), nil })
				if err != nil {
					k.OnError(err)
					return
				}
				acc = next
			},
			Error: k.OnError,
			Complete: func() {
				k.OnNext(acc)
				k.OnComplete()
			},
		})
	})
}
