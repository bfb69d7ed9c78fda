// Package scheduler provides the timing substrate for rxkit streams.
//
// A Scheduler owns one logical timeline. Every timed callback runs through
// Do, which serializes callbacks across goroutines so that per-subscription
// state needs no locking. Do is re-entrant for the goroutine that currently
// owns the timeline, so a callback may subscribe, cancel, or schedule more
// work without deadlocking.
//
// Timers with equal deadlines fire in the order they were scheduled.
//
// Two implementations are provided:
//
//   - Loop: a real-time event loop driven by one goroutine. It is a
//     component.Component and must be started before timers fire.
//   - Virtual: a manually advanced clock for deterministic tests.
//
// # Usage
//
//	loop := scheduler.NewLoop(scheduler.LoopConfig{Name: "main"})
//	_ = loop.Start(ctx)
//	defer loop.Stop(ctx)
//	t, _ := loop.AfterFunc(300*time.Millisecond, func() { ... })
package scheduler
