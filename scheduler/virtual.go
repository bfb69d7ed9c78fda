package scheduler

import (
	"sync"
	"time"
)

// Virtual is a scheduler whose clock only moves when advanced. Timers fire
// synchronously inside Advance, which makes timing behavior deterministic.
type Virtual struct {
	timeline Timeline
	queue    taskQueue

	mu  sync.Mutex
	now time.Time
}

var _ Scheduler = (*Virtual)(nil)

// NewVirtual creates a virtual scheduler starting at start. A zero start
// uses the Unix epoch.
func NewVirtual(start time.Time) *Virtual {
	if start.IsZero() {
		start = time.Unix(0, 0).UTC()
	}
	return &Virtual{now: start}
}

// Now returns the virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// Elapsed returns the virtual time since start.
func (v *Virtual) Elapsed(start time.Time) time.Duration {
	return v.Now().Sub(start)
}

// AfterFunc schedules fn at Now()+d. It never fails.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) (Timer, error) {
	if d < 0 {
		d = 0
	}
	return v.queue.push(v.Now().Add(d), fn), nil
}

// Do runs fn on the virtual timeline.
func (v *Virtual) Do(fn func()) {
	v.timeline.Do(fn)
}

// Advance moves the clock forward by d, firing every timer that comes due
// in deadline order. Timers scheduled by fired callbacks are honored if
// they fall inside the window. It returns the number of timers fired.
func (v *Virtual) Advance(d time.Duration) int {
	target := v.Now().Add(d)
	fired := 0
	for {
		t := v.queue.popDue(target)
		if t == nil {
			break
		}
		v.mu.Lock()
		if t.when.After(v.now) {
			v.now = t.when
		}
		v.mu.Unlock()

		v.timeline.Do(t.fn)
		fired++
	}

	v.mu.Lock()
	if target.After(v.now) {
		v.now = target
	}
	v.mu.Unlock()
	return fired
}

// Flush fires pending timers until none remain or limit timers have fired.
// It returns the number fired.
func (v *Virtual) Flush(limit int) int {
	fired := 0
	for fired < limit {
		next, ok := v.queue.next()
		if !ok {
			break
		}
		fired += v.Advance(next.Sub(v.Now()))
	}
	return fired
}

// Pending returns the number of scheduled timers.
func (v *Virtual) Pending() int {
	return v.queue.len()
}
