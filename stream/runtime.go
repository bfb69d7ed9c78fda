package stream

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/observability"
	"github.com/kbukum/rxkit/scheduler"
)

const tracerName = "github.com/kbukum/rxkit/stream"

// Runtime drives subscriptions: it owns the scheduler timeline that every
// signal is delivered on, plus the logger, metrics, and tracer used to
// report subscription lifecycles.
type Runtime struct {
	sched   scheduler.Scheduler
	log     *logger.Logger
	metrics *observability.StreamMetrics
	tracer  trace.Tracer
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithScheduler sets the scheduler. Defaults to the shared real-time loop.
func WithScheduler(s scheduler.Scheduler) RuntimeOption {
	return func(rt *Runtime) { rt.sched = s }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) RuntimeOption {
	return func(rt *Runtime) { rt.log = l }
}

// WithMetrics enables subscription metrics.
func WithMetrics(m *observability.StreamMetrics) RuntimeOption {
	return func(rt *Runtime) { rt.metrics = m }
}

// WithTracer sets the tracer. Defaults to the global provider's tracer.
func WithTracer(t trace.Tracer) RuntimeOption {
	return func(rt *Runtime) { rt.tracer = t }
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.sched == nil {
		rt.sched = defaultLoop()
	}
	if rt.log == nil {
		rt.log = logger.Get("stream")
	}
	if rt.tracer == nil {
		rt.tracer = otel.Tracer(tracerName)
	}
	return rt
}

// Scheduler returns the runtime's scheduler.
func (rt *Runtime) Scheduler() scheduler.Scheduler { return rt.sched }

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
	loopOnce       sync.Once
	sharedLoop     *scheduler.Loop
)

// defaultLoop returns the process-wide real-time loop, starting it on
// first use.
func defaultLoop() *scheduler.Loop {
	loopOnce.Do(func() {
		sharedLoop = scheduler.NewLoop(scheduler.LoopConfig{Name: "default"})
		if err := sharedLoop.Start(context.Background()); err != nil {
			logger.Get("stream").Error("failed to start default scheduler", logger.ErrorFields("start", err))
		}
	})
	return sharedLoop
}

// Default returns the runtime used when Subscribe is not given one.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = NewRuntime()
	})
	return defaultRuntime
}
