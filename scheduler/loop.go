package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/rxkit/component"
	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/validation"
)

// LoopConfig configures a real-time Loop.
type LoopConfig struct {
	// Name identifies the loop in logs and health reports.
	Name string `mapstructure:"name" validate:"required"`
	// MaxLateness is how far past its deadline a timer may fire before the
	// loop logs a warning. Zero disables the warning.
	MaxLateness time.Duration `mapstructure:"max_lateness" validate:"gte=0"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *LoopConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.MaxLateness == 0 {
		c.MaxLateness = 50 * time.Millisecond
	}
}

// Validate checks the configuration.
func (c *LoopConfig) Validate() error {
	return validation.Struct(c)
}

// Loop is a real-time scheduler driven by a single goroutine.
type Loop struct {
	cfg      LoopConfig
	log      *logger.Logger
	timeline Timeline
	queue    taskQueue

	mu      sync.Mutex
	running bool
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}

	fired atomic.Int64
	late  atomic.Int64
}

var _ Scheduler = (*Loop)(nil)
var _ component.Component = (*Loop)(nil)
var _ component.Describable = (*Loop)(nil)

// NewLoop creates a Loop. It must be started before timers fire.
func NewLoop(cfg LoopConfig) *Loop {
	cfg.ApplyDefaults()
	return &Loop{
		cfg:  cfg,
		log:  logger.Get("scheduler").WithFields(logger.Fields(logger.FieldScheduler, cfg.Name)),
		wake: make(chan struct{}, 1),
	}
}

// Name returns the loop name.
func (l *Loop) Name() string { return "scheduler:" + l.cfg.Name }

// Describe reports the loop configuration for startup logs.
func (l *Loop) Describe() component.Description {
	return component.Description{
		Name:    l.cfg.Name,
		Type:    "scheduler",
		Details: fmt.Sprintf("max_lateness=%s", l.cfg.MaxLateness),
	}
}

// Start launches the loop goroutine. Starting a running loop is a no-op.
func (l *Loop) Start(ctx context.Context) error {
	if err := l.cfg.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return nil
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.run(l.stop, l.done)

	l.log.Debug("scheduler started")
	return nil
}

// Stop halts the loop and discards pending timers.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false
	stop, done := l.stop, l.done
	l.mu.Unlock()

	close(stop)
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Timeout("scheduler stop").WithCause(ctx.Err())
	}

	if n := l.queue.clear(); n > 0 {
		l.log.Debug("discarded pending timers", logger.Fields("count", n))
	}
	l.log.Debug("scheduler stopped")
	return nil
}

// Health reports whether the loop is running.
func (l *Loop) Health(ctx context.Context) component.Health {
	h := component.Health{Name: l.Name(), Status: component.StatusHealthy}
	if !l.Running() {
		h.Status = component.StatusUnhealthy
		h.Message = "not running"
		return h
	}
	if late := l.late.Load(); late > 0 {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("%d of %d timers fired late", late, l.fired.Load())
	}
	return h
}

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time { return time.Now() }

// AfterFunc schedules fn on the loop. It fails if the loop is not running.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (Timer, error) {
	if !l.Running() {
		return nil, errors.SchedulerStopped(l.cfg.Name)
	}
	if d < 0 {
		d = 0
	}
	t := l.queue.push(time.Now().Add(d), fn)
	select {
	case l.wake <- struct{}{}:
	default:
	}
	return t, nil
}

// Do runs fn on the loop's timeline.
func (l *Loop) Do(fn func()) {
	l.timeline.Do(fn)
}

func (l *Loop) run(stop, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}

		now := time.Now()
		if t := l.queue.popDue(now); t != nil {
			l.fire(t, now)
			continue
		}

		var wait <-chan time.Time
		if next, ok := l.queue.next(); ok {
			timer.Reset(next.Sub(now))
			wait = timer.C
		}

		select {
		case <-stop:
			return
		case <-l.wake:
		case <-wait:
		}
		timer.Stop()
	}
}

func (l *Loop) fire(t *task, now time.Time) {
	l.fired.Add(1)
	if lateness := now.Sub(t.when); l.cfg.MaxLateness > 0 && lateness > l.cfg.MaxLateness {
		l.late.Add(1)
		l.log.Warn("timer fired late", logger.DurationFields("timer", lateness))
	}

	defer func() {
		if r := recover(); r != nil {
			l.log.Error("timer callback panicked", logger.Fields("panic", fmt.Sprint(r)))
		}
	}()
	l.timeline.Do(t.fn)
}
