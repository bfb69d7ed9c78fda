package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// task is one scheduled callback. index is -1 once the task has left the heap.
type task struct {
	q     *taskQueue
	when  time.Time
	seq   uint64
	fn    func()
	index int
}

// Stop removes the task from its queue if it has not been popped yet.
func (t *task) Stop() bool {
	return t.q.remove(t)
}

// taskHeap orders tasks by deadline, then by scheduling order.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// taskQueue is a goroutine-safe timer heap shared by Loop and Virtual.
type taskQueue struct {
	mu    sync.Mutex
	tasks taskHeap
	seq   uint64
}

func (q *taskQueue) push(when time.Time, fn func()) *task {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	t := &task{q: q, when: when, seq: q.seq, fn: fn}
	heap.Push(&q.tasks, t)
	return t
}

// popDue removes and returns the earliest task due at or before now.
func (q *taskQueue) popDue(now time.Time) *task {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 || q.tasks[0].when.After(now) {
		return nil
	}
	return heap.Pop(&q.tasks).(*task)
}

// next returns the earliest pending deadline.
func (q *taskQueue) next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].when, true
}

func (q *taskQueue) remove(t *task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&q.tasks, t.index)
	return true
}

func (q *taskQueue) clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.tasks)
	for _, t := range q.tasks {
		t.index = -1
	}
	q.tasks = nil
	return n
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
