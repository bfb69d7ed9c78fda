package stream

import "context"

// Collect subscribes to s and blocks until it terminates, returning every
// value in order. If ctx is done first the subscription is cancelled and
// ctx.Err() is returned with the values received so far.
//
// Collect must not be called from inside a signal callback of the same
// runtime unless s completes synchronously.
func Collect[T any](ctx context.Context, s *Stream[T], opts ...SubscribeOption) ([]T, error) {
	var items []T
	sub := Observe(ctx, s, Funcs[T]{
		Next: func(v T) { items = append(items, v) },
	}, opts...)
	err := wait(ctx, sub)
	return items, err
}

// ForEach calls fn for every value of s and blocks until the stream
// terminates. An error from fn cancels the upstream and is returned.
func ForEach[T any](ctx context.Context, s *Stream[T], fn func(context.Context, T) error, opts ...SubscribeOption) error {
	sub := Observe(ctx, Tap(s, fn), Funcs[T]{}, opts...)
	return wait(ctx, sub)
}

func wait(ctx context.Context, sub *Subscription) error {
	<-sub.Done()
	if sub.Cancelled() {
		if err := ctx.Err(); err != nil {
			return err
		}
		return context.Canceled
	}
	return sub.Err()
}
