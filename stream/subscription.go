package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
)

// SubscribeOption configures one subscription.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	runtime *Runtime
	name    string
}

// WithRuntime subscribes on rt instead of the default runtime.
func WithRuntime(rt *Runtime) SubscribeOption {
	return func(o *subscribeOptions) { o.runtime = rt }
}

// WithName names the subscription in logs, metrics, and traces.
func WithName(name string) SubscribeOption {
	return func(o *subscribeOptions) { o.name = name }
}

// Subscription is one live consumption of a stream.
type Subscription struct {
	id    uuid.UUID
	name  string
	rt    *Runtime
	ctx   context.Context
	span  trace.Span
	root  *scope
	start time.Time
	log   *logger.Logger

	// timeline-only state
	stop    func() bool
	signals int
	ended   bool

	done      chan struct{}
	cancelled atomic.Bool
	mu        sync.Mutex
	err       error
}

// ID returns the unique subscription ID.
func (s *Subscription) ID() string { return s.id.String() }

// Name returns the subscription name.
func (s *Subscription) Name() string { return s.name }

// Cancel stops delivery immediately and releases every upstream
// subscription and timer. The consumer is not notified. Cancel is
// idempotent and has no effect after a terminal signal.
func (s *Subscription) Cancel() {
	s.rt.sched.Do(func() {
		s.end(observability.OutcomeCancelled, nil, nil)
	})
}

// Done is closed once the subscription has terminated or been cancelled.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err returns the error delivered to the consumer, if any. It is only
// meaningful after Done is closed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancelled reports whether the subscription ended by cancellation.
func (s *Subscription) Cancelled() bool { return s.cancelled.Load() }

// Subscribe attaches three callbacks to s. Nil callbacks are ignored.
// Cancelling ctx cancels the subscription.
func (s *Stream[T]) Subscribe(ctx context.Context, onNext func(T), onError func(error), onComplete func(), opts ...SubscribeOption) *Subscription {
	return Observe(ctx, s, Funcs[T]{Next: onNext, Error: onError, Complete: onComplete}, opts...)
}

// Observe attaches obs to s and starts emission. Synchronous sources have
// delivered every signal by the time Observe returns.
func Observe[T any](ctx context.Context, s *Stream[T], obs Observer[T], opts ...SubscribeOption) *Subscription {
	o := subscribeOptions{name: s.Name()}
	for _, opt := range opts {
		opt(&o)
	}
	rt := o.runtime
	if rt == nil {
		rt = Default()
	}

	sub := rt.newSubscription(ctx, o.name)
	rt.sched.Do(func() {
		if ctx.Err() != nil {
			sub.end(observability.OutcomeCancelled, nil, nil)
			return
		}
		sub.stop = context.AfterFunc(ctx, sub.Cancel)

		term := &terminal[T]{sub: sub, obs: obs}
		if r := recovered(func() { s.subscribe(sub.root, term) }); r != nil {
			term.OnError(errors.Panicked("subscribe", r))
		}
	})
	return sub
}

func (rt *Runtime) newSubscription(ctx context.Context, name string) *Subscription {
	id := uuid.New()
	spanCtx, span := rt.tracer.Start(ctx, observability.SpanSubscribe+" "+name,
		trace.WithAttributes(
			attribute.String(observability.AttrSubscriptionID, id.String()),
			attribute.String(observability.AttrStream, name),
		),
	)

	sub := &Subscription{
		id:    id,
		name:  name,
		rt:    rt,
		ctx:   spanCtx,
		span:  span,
		start: rt.sched.Now(),
		done:  make(chan struct{}),
		log: rt.log.WithFields(logger.Fields(
			logger.FieldSubscriptionID, id.String(),
			logger.FieldStream, name,
		)),
	}
	sub.root = newRootScope(spanCtx, rt)

	rt.metrics.SubscriptionStarted(spanCtx, name)
	sub.log.Debug("subscription started")
	return sub
}

func (s *Subscription) signal(kind string) {
	s.signals++
	s.rt.metrics.SignalDelivered(s.ctx, s.name, kind)
}

// end runs on the timeline. It releases the pipeline, calls deliver for the
// terminal callback, then publishes the outcome.
func (s *Subscription) end(outcome string, err error, deliver func()) {
	if s.ended {
		return
	}
	s.ended = true
	s.root.cancel()
	if s.stop != nil {
		s.stop()
	}
	if deliver != nil {
		deliver()
	}

	d := s.rt.sched.Now().Sub(s.start)
	s.rt.metrics.SubscriptionEnded(s.ctx, s.name, outcome, d)

	s.span.SetAttributes(
		attribute.String(observability.AttrOutcome, outcome),
		attribute.Int(observability.AttrSignals, s.signals),
		attribute.Bool(observability.AttrCancelled, outcome == observability.OutcomeCancelled),
	)
	if err != nil {
		observability.SetSpanError(s.ctx, err)
	}
	s.span.End()

	fields := logger.DurationFields("subscription", d)
	fields[logger.FieldOutcome] = outcome
	if err != nil {
		fields[logger.FieldError] = err.Error()
	}
	s.log.Debug("subscription ended", fields)

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	if outcome == observability.OutcomeCancelled {
		s.cancelled.Store(true)
	}
	close(s.done)
}

// terminal is the last observer of a pipeline. It shields the runtime from
// consumer panics and ends the subscription on the first terminal signal.
type terminal[T any] struct {
	sub *Subscription
	obs Observer[T]
}

func (t *terminal[T]) OnNext(v T) {
	if t.sub.ended {
		return
	}
	t.sub.signal(observability.SignalNext)
	if r := recovered(func() { t.obs.OnNext(v) }); r != nil {
		t.sub.log.Warn("subscriber panicked in OnNext", logger.Fields("panic", fmt.Sprint(r)))
		t.OnError(errors.Panicked("subscriber", r))
	}
}

func (t *terminal[T]) OnError(err error) {
	if t.sub.ended {
		return
	}
	t.sub.signal(observability.SignalError)
	t.sub.end(observability.OutcomeError, err, func() {
		if r := recovered(func() { t.obs.OnError(err) }); r != nil {
			t.sub.log.Warn("subscriber panicked in OnError", logger.Fields("panic", fmt.Sprint(r)))
		}
	})
}

func (t *terminal[T]) OnComplete() {
	if t.sub.ended {
		return
	}
	t.sub.signal(observability.SignalComplete)
	t.sub.end(observability.OutcomeComplete, nil, func() {
		if r := recovered(func() { t.obs.OnComplete() }); r != nil {
			t.sub.log.Warn("subscriber panicked in OnComplete", logger.Fields("panic", fmt.Sprint(r)))
		}
	})
}

func recovered(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}
