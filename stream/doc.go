// Package stream is a push-based reactive stream engine.
//
// A *Stream[T] is an immutable, reusable description of a pipeline. Nothing
// happens until a consumer subscribes; each subscription gets its own
// buffers, flags, and timers, so one Stream may be subscribed many times.
//
// Every subscription observes the same signal protocol: zero or more Next
// signals followed by exactly one Error or Complete. Cancelling a
// subscription is silent, immediate, and idempotent; it releases every
// upstream subscription and pending timer the pipeline created.
//
// # Building pipelines
//
//	names := stream.Sort(stream.Just("c", "a", "b"), cmp.Compare[string])
//	firsts := stream.Map(crew, func(_ context.Context, s string) (string, error) {
//		return strings.Fields(s)[0], nil
//	})
//	race := stream.FirstEmitting(slow, fast)
//
// # Subscribing
//
//	sub := names.Subscribe(ctx,
//		func(s string) { fmt.Println(s) },
//		func(err error) { log.Println(err) },
//		func() { fmt.Println("done") },
//	)
//	defer sub.Cancel()
//
// Signals of all subscriptions sharing a Runtime are delivered one at a
// time on the runtime's scheduler timeline. Synchronous sources emit
// before Subscribe returns. Callbacks must not block waiting for another
// signal from the same runtime; they may subscribe or cancel freely.
//
// User functions passed to operators (Map, Filter, Tap, Sort, Zip, ...) may
// return an error or panic; both become an Error signal at that operator
// and cancel its upstream.
package stream
