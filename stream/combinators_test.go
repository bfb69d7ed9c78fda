package stream

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/resilience"
)

func concatPair(a, b string) (string, error) {
	return a + " " + b, nil
}

func TestZip_SortedNames(t *testing.T) {
	lastName := func(_ context.Context, s string) (string, error) { return strings.Fields(s)[1], nil }
	firsts := Sort(Map(FromSlice(crew), firstName), cmp.Compare[string])
	lasts := Sort(Map(FromSlice(crew), lastName), cmp.Compare[string])

	rec, _, _ := observe(t, Zip(lasts, firsts, concatPair))

	require.Len(t, rec.items, len(crew))
	assert.Equal(t, "Book Derrial", rec.items[0])
	assert.Equal(t, "Washburne Zoe", rec.items[len(crew)-1])
	assert.Equal(t, 1, rec.completed)
}

func TestZip_PairsByIndexDespiteSkew(t *testing.T) {
	a := FromSliceWithDelay([]string{"a1", "a2", "a3"}, 100*time.Millisecond)
	b := FromSliceWithDelay([]string{"b1", "b2", "b3", "b4"}, 250*time.Millisecond)

	rec, _, clock := observe(t, Zip(a, b, concatPair))
	clock.Advance(5 * time.Second)

	assert.Equal(t, []string{"a1 b1", "a2 b2", "a3 b3"}, rec.items)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, 750 * time.Millisecond}, rec.at)
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, 0, clock.Pending(), "the longer side must be cancelled")
}

func TestZip_SlowerFirstSide(t *testing.T) {
	a := FromSliceWithDelay([]int{1, 2}, 300*time.Millisecond)
	b := Just(10, 20, 30)

	rec, _, clock := observe(t, Zip(a, b, func(x, y int) (int, error) { return x + y, nil }))
	clock.Advance(time.Second)

	assert.Equal(t, []int{11, 22}, rec.items)
	assert.Equal(t, 1, rec.completed)
}

func TestZip_ErrorCancelsOtherSide(t *testing.T) {
	boom := stderrors.New("boom")
	a := Concat(FromSliceWithDelay([]int{1}, 100*time.Millisecond), Fail[int](boom))
	b := FromSliceWithDelay([]int{1, 2, 3}, 50*time.Millisecond)

	rec, _, clock := observe(t, Zip(a, b, func(x, y int) (int, error) { return x * y, nil }))
	clock.Advance(time.Second)

	assert.Equal(t, []string{"next:1", "error"}, rec.events)
	assert.ErrorIs(t, rec.err, boom)
	assert.Equal(t, 0, clock.Pending())
}

func TestZip_CombinerError(t *testing.T) {
	rec, _, _ := observe(t, Zip(Just(1, 2), Just(3, 4), func(x, y int) (int, error) {
		if x == 2 {
			return 0, stderrors.New("no")
		}
		return x + y, nil
	}))

	assert.Equal(t, []string{"next:4", "error"}, rec.events)
	assert.True(t, errors.HasCode(rec.err, errors.ErrCodeTransformFailed))
}

func TestZip_EmptySideCompletes(t *testing.T) {
	subscribed := 0
	rec, _, _ := observe(t, Zip(Empty[int](), counted(Just(1), &subscribed), func(x, y int) (int, error) { return x, nil }))

	assert.Equal(t, []string{"complete"}, rec.events)
	assert.Equal(t, 0, subscribed)
}

func TestFirstEmitting_FasterSourceWins(t *testing.T) {
	criminalsSubscribed := 0
	criminals := DelaySubscription(counted(Just("Badger", "Adelei Niska", "Saffron"), &criminalsSubscribed), 500*time.Millisecond)
	delayedCrew := Take(FromSliceWithDelay(crew, 300*time.Millisecond), 5)

	rec, _, clock := observe(t, FirstEmitting(criminals, delayedCrew))
	clock.Advance(5 * time.Second)

	assert.Equal(t, crew[:5], rec.items)
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, 0, criminalsSubscribed)
	assert.Equal(t, 0, clock.Pending())
}

func TestFirstEmitting_ImmediateSourceWins(t *testing.T) {
	a := FromSliceWithDelay([]string{"late"}, 500*time.Millisecond)
	b := Just("x", "y", "z")

	rec, _, clock := observe(t, FirstEmitting(a, b))

	assert.Equal(t, []string{"next:x", "next:y", "next:z", "complete"}, rec.events)
	assert.Equal(t, 0, clock.Pending(), "the losing source's timer must be released")
	clock.Advance(time.Second)
	assert.Len(t, rec.items, 3)
}

func TestFirstEmitting_SyncFirstSourceSkipsOthers(t *testing.T) {
	subscribed := 0
	rec, _, _ := observe(t, FirstEmitting(Just(1), counted(Just(2), &subscribed)))

	assert.Equal(t, []int{1}, rec.items)
	assert.Equal(t, 0, subscribed)
}

func TestFirstEmitting_TieGoesToEarliestListed(t *testing.T) {
	a := FromSliceWithDelay([]string{"a1", "a2"}, 100*time.Millisecond)
	b := FromSliceWithDelay([]string{"b1", "b2"}, 100*time.Millisecond)

	rec, _, clock := observe(t, FirstEmitting(a, b))
	clock.Advance(time.Second)
	assert.Equal(t, []string{"a1", "a2"}, rec.items)

	rec2, _, clock2 := observe(t, FirstEmitting(b, a))
	clock2.Advance(time.Second)
	assert.Equal(t, []string{"b1", "b2"}, rec2.items)
}

func TestFirstEmitting_TieIgnoresTimerCreationOrder(t *testing.T) {
	// a arms its final timer at 50ms, after b armed its own at subscription.
	a := DelayElements(DelaySubscription(Just("a"), 50*time.Millisecond), 50*time.Millisecond)
	b := FromSliceWithDelay([]string{"b"}, 100*time.Millisecond)

	rec, _, clock := observe(t, FirstEmitting(a, b))
	clock.Advance(time.Second)

	assert.Equal(t, []string{"next:a", "complete"}, rec.events)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, rec.at)
	assert.Equal(t, 0, clock.Pending())

	rec2, _, clock2 := observe(t, FirstEmitting(b, a))
	clock2.Advance(time.Second)

	assert.Equal(t, []string{"next:b", "complete"}, rec2.events)
	assert.Equal(t, 0, clock2.Pending())
}

func TestFirstEmitting_EarlierSignalBeatsListOrder(t *testing.T) {
	a := FromSliceWithDelay([]int{1, 2}, 200*time.Millisecond)
	b := FromSliceWithDelay([]int{10, 20}, 100*time.Millisecond)

	rec, _, clock := observe(t, FirstEmitting(a, b))
	clock.Advance(time.Second)

	assert.Equal(t, []int{10, 20}, rec.items)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, rec.at)
	assert.Equal(t, 1, rec.completed)
}

func TestFirstEmitting_ErrorCanWin(t *testing.T) {
	boom := stderrors.New("boom")
	rec, _, clock := observe(t, FirstEmitting(
		FromSliceWithDelay([]int{1}, 100*time.Millisecond),
		DelaySubscription(Fail[int](boom), 50*time.Millisecond),
	))
	clock.Advance(time.Second)

	assert.Equal(t, []string{"error"}, rec.events)
	assert.ErrorIs(t, rec.err, boom)
}

func TestFirstEmitting_CompleteCanWin(t *testing.T) {
	rec, _, clock := observe(t, FirstEmitting(FromSliceWithDelay([]int{1}, 100*time.Millisecond), Empty[int]()))
	clock.Advance(time.Second)
	assert.Equal(t, []string{"complete"}, rec.events)
}

func TestFirstEmitting_NoSources(t *testing.T) {
	rec, _, _ := observe(t, FirstEmitting[int]())
	assert.Equal(t, []string{"complete"}, rec.events)
}

func TestConcat_WithDelayedSecondSource(t *testing.T) {
	s := Concat(Just("Malcolm"), DelaySubscription(Just("Reynolds"), 500*time.Millisecond))

	rec, _, clock := observe(t, s)
	assert.Equal(t, []string{"Malcolm"}, rec.items)

	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, []string{"Malcolm", "Reynolds"}, rec.items)
	assert.Equal(t, []time.Duration{0, 500 * time.Millisecond}, rec.at)
	assert.Equal(t, 1, rec.completed)
}

func TestConcat_SubscribesNextOnlyAfterCompletion(t *testing.T) {
	subscribed := 0
	s := Concat(FromSliceWithDelay([]int{1, 2}, 100*time.Millisecond), counted(Just(3), &subscribed))

	rec, _, clock := observe(t, s)
	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, 0, subscribed)

	clock.Advance(time.Second)
	assert.Equal(t, 1, subscribed)
	assert.Equal(t, []int{1, 2, 3}, rec.items)
}

func TestConcat_ErrorNeverSubscribesNext(t *testing.T) {
	boom := stderrors.New("boom")
	subscribed := 0
	rec, _, _ := observe(t, Concat(Concat(Just(1), Fail[int](boom)), counted(Just(2), &subscribed)))

	assert.Equal(t, []string{"next:1", "error"}, rec.events)
	assert.Equal(t, 0, subscribed)
}

func TestConcat_NoSources(t *testing.T) {
	rec, _, _ := observe(t, Concat[int]())
	assert.Equal(t, []string{"complete"}, rec.events)
}

func TestOnErrorResume_SwitchesToFallback(t *testing.T) {
	boom := stderrors.New("boom")
	primary := Concat(Just(1, 2), Fail[int](boom))
	fallback := Just(7, 8, 9)

	rec, sub, _ := observe(t, OnErrorResume(primary, fallback))

	assert.Equal(t, []string{"next:1", "next:2", "next:7", "next:8", "next:9", "complete"}, rec.events)
	assert.NoError(t, sub.Err())
}

func TestOnErrorResume_CompletionSkipsFallback(t *testing.T) {
	subscribed := 0
	rec, _, _ := observe(t, OnErrorResume(Just(1), counted(Just(2), &subscribed)))

	assert.Equal(t, []int{1}, rec.items)
	assert.Equal(t, 0, subscribed)
}

func TestOnErrorResume_FallbackErrorIsForwarded(t *testing.T) {
	second := stderrors.New("second")
	rec, _, _ := observe(t, OnErrorResume(Fail[int](stderrors.New("first")), Fail[int](second)))

	assert.Equal(t, []string{"error"}, rec.events)
	assert.ErrorIs(t, rec.err, second)
}

func TestOnErrorResumeWith_CastFailure(t *testing.T) {
	criminals := Cast[int](Just[any]("Badger", "Adelei Niska", "Saffron"))
	var cause error

	rec, _, _ := observe(t, OnErrorResumeWith(criminals, func(err error) *Stream[int] {
		cause = err
		return Take(Range(1, 10), 5)
	}))

	assert.Equal(t, []int{1, 2, 3, 4, 5}, rec.items)
	assert.Equal(t, 1, rec.completed)
	assert.True(t, errors.HasCode(cause, errors.ErrCodeTypeMismatch))
}

func TestOnErrorResumeWith_NilFallbackKeepsError(t *testing.T) {
	boom := stderrors.New("boom")
	rec, _, _ := observe(t, OnErrorResumeWith(Fail[int](boom), func(error) *Stream[int] { return nil }))
	assert.ErrorIs(t, rec.err, boom)
}

func TestMerge_InterleavesByTime(t *testing.T) {
	a := FromSliceWithDelay([]string{"a1", "a2"}, 100*time.Millisecond)
	b := FromSliceWithDelay([]string{"b1", "b2"}, 150*time.Millisecond)

	rec, _, clock := observe(t, Merge(a, b))
	clock.Advance(time.Second)

	assert.Equal(t, []string{"a1", "b1", "a2", "b2"}, rec.items)
	assert.Equal(t, 1, rec.completed)
}

func TestMerge_ErrorCancelsRest(t *testing.T) {
	boom := stderrors.New("boom")
	rec, _, clock := observe(t, Merge(
		FromSliceWithDelay([]int{1, 2, 3}, 100*time.Millisecond),
		DelaySubscription(Fail[int](boom), 150*time.Millisecond),
	))
	clock.Advance(time.Second)

	assert.Equal(t, []string{"next:1", "error"}, rec.events)
	assert.Equal(t, 0, clock.Pending())
}

func TestRetry_ResubscribesUntilSuccess(t *testing.T) {
	attempts := 0
	flaky := Defer(func() *Stream[int] {
		attempts++
		if attempts < 3 {
			return Fail[int](fmt.Errorf("attempt %d failed", attempts))
		}
		return Just(42)
	})

	cfg := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: 100 * time.Millisecond, BackoffFactor: 2}
	var retried []time.Duration
	cfg.OnRetry = func(_ int, _ error, backoff time.Duration) { retried = append(retried, backoff) }

	rec, _, clock := observe(t, Retry(flaky, cfg))
	assert.Equal(t, 1, attempts)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 2, attempts)

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []string{"next:42", "complete"}, rec.events)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, retried)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	boom := stderrors.New("boom")
	failing := Defer(func() *Stream[int] {
		attempts++
		return Fail[int](boom)
	})

	rec, _, clock := observe(t, Retry(failing, resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: 10 * time.Millisecond}))
	clock.Advance(time.Second)

	assert.Equal(t, 2, attempts)
	assert.Equal(t, []string{"error"}, rec.events)
	assert.ErrorIs(t, rec.err, boom)
}

func TestRetry_DoesNotRetryTypeMismatch(t *testing.T) {
	attempts := 0
	s := Defer(func() *Stream[int] {
		attempts++
		return Cast[int](Just[any]("x"))
	})

	rec, _, clock := observe(t, Retry(s, resilience.DefaultRetryConfig()))
	clock.Advance(time.Minute)

	assert.Equal(t, 1, attempts)
	assert.True(t, errors.HasCode(rec.err, errors.ErrCodeTypeMismatch))
}

func TestRetry_CancelStopsBackoff(t *testing.T) {
	attempts := 0
	failing := Defer(func() *Stream[int] {
		attempts++
		return Fail[int](stderrors.New("boom"))
	})

	_, sub, clock := observe(t, Retry(failing, resilience.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Second}))
	require.Equal(t, 1, clock.Pending())

	sub.Cancel()
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(time.Minute)
	assert.Equal(t, 1, attempts)
}
