package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/petermattis/goid"
)

// Scheduler runs callbacks on a single logical timeline.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time
	// AfterFunc schedules fn to run through Do once d has elapsed.
	// A non-positive d schedules fn for the next turn of the timeline.
	AfterFunc(d time.Duration, fn func()) (Timer, error)
	// Do runs fn on the timeline, waiting for the current owner if needed.
	Do(fn func())
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Timeline is a mutex that the owning goroutine may re-acquire.
type Timeline struct {
	mu    sync.Mutex
	owner atomic.Int64
}

// Do runs fn while holding the timeline. Nested calls from the owning
// goroutine run inline.
func (t *Timeline) Do(fn func()) {
	gid := goid.Get()
	if t.owner.Load() == gid {
		fn()
		return
	}

	t.mu.Lock()
	t.owner.Store(gid)
	defer func() {
		t.owner.Store(0)
		t.mu.Unlock()
	}()
	fn()
}

// Held reports whether the calling goroutine currently owns the timeline.
func (t *Timeline) Held() bool {
	return t.owner.Load() == goid.Get()
}
