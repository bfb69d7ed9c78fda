package stream

import (
	"context"
	"time"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/scheduler"
)

// scope owns the resources of one pipeline stage within one subscription:
// the upstream scopes it created and its pending timers. Cancelling a scope
// cancels its children and stops its timers.
//
// Scopes are only touched on the runtime's timeline, so they need no lock.
type scope struct {
	ctx       context.Context
	rt        *Runtime
	parent    *scope
	children  map[*scope]struct{}
	timers    map[uint64]scheduler.Timer
	seq       uint64
	cancelled bool
}

func newRootScope(ctx context.Context, rt *Runtime) *scope {
	return &scope{ctx: ctx, rt: rt}
}

// child creates a scope for an upstream subscription. A child of a
// cancelled scope starts cancelled.
func (s *scope) child() *scope {
	c := &scope{ctx: s.ctx, rt: s.rt}
	if s.cancelled {
		c.cancelled = true
		return c
	}
	if s.children == nil {
		s.children = make(map[*scope]struct{})
	}
	c.parent = s
	s.children[c] = struct{}{}
	return c
}

// cancel is idempotent.
func (s *scope) cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	if s.parent != nil {
		delete(s.parent.children, s)
		s.parent = nil
	}

	children := s.children
	s.children = nil
	for c := range children {
		c.parent = nil
		c.cancel()
	}

	timers := s.timers
	s.timers = nil
	for _, t := range timers {
		t.Stop()
	}
}

// schedule runs fn after d unless the scope is cancelled first.
func (s *scope) schedule(d time.Duration, fn func()) error {
	if s.cancelled {
		return nil
	}
	if s.timers == nil {
		s.timers = make(map[uint64]scheduler.Timer)
	}

	s.seq++
	id := s.seq
	t, err := s.rt.sched.AfterFunc(d, func() {
		delete(s.timers, id)
		if s.cancelled {
			return
		}
		fn()
	})
	if err != nil {
		return err
	}
	s.timers[id] = t
	return nil
}

// state is the lifecycle of one stage's downstream delivery.
type state uint8

const (
	stateIdle state = iota
	stateSubscribed
	stateTerminated
)

// sink guards delivery to a downstream observer. It enters stateTerminated
// exactly once, on the first terminal signal, and releases the stage's scope
// before forwarding that signal. Nothing is delivered once the scope is
// cancelled.
type sink[T any] struct {
	sc    *scope
	out   Observer[T]
	state state
}

func newSink[T any](sc *scope, out Observer[T]) *sink[T] {
	return &sink[T]{sc: sc, out: out}
}

// begin marks the stage as subscribed to its upstream.
func (k *sink[T]) begin() {
	if k.state == stateIdle {
		k.state = stateSubscribed
	}
}

func (k *sink[T]) active() bool {
	return k.state != stateTerminated && !k.sc.cancelled
}

func (k *sink[T]) OnNext(v T) {
	if k.active() {
		k.out.OnNext(v)
	}
}

func (k *sink[T]) OnError(err error) {
	if k.terminate() {
		k.out.OnError(err)
	}
}

func (k *sink[T]) OnComplete() {
	if k.terminate() {
		k.out.OnComplete()
	}
}

func (k *sink[T]) terminate() bool {
	if !k.active() {
		return false
	}
	k.state = stateTerminated
	k.sc.cancel()
	return true
}

// apply runs a user function for operator op. Returned errors that are not
// already AppErrors are wrapped as TRANSFORM_FAILED; panics are recovered.
func apply[O any](op string, fn func() (O, error)) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panicked(op, r)
		}
	}()

	out, err = fn()
	if err != nil && !errors.IsAppError(err) {
		err = errors.TransformFailed(op, err)
	}
	return out, err
}
