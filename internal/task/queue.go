package task

import "sync"

// Queue is a FIFO of records. The coordinator uses one for pending work and
// one for completed work. All methods are safe for concurrent use via an
// internal mutex, since the owning executor pushes and reads from its own
// goroutines while the dispatch loop pops.
type Queue[P, R any] struct {
	mu    sync.Mutex
	items []*Record[P, R]
}

// NewQueue creates an empty queue.
func NewQueue[P, R any]() *Queue[P, R] {
	return &Queue[P, R]{}
}

// Push appends r to the tail.
func (q *Queue[P, R]) Push(r *Record[P, R]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, r)
}

// PushFront puts r at the head, ahead of every queued record.
func (q *Queue[P, R]) PushFront(r *Record[P, R]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]*Record[P, R]{r}, q.items...)
}

// Pop removes and returns the head. It returns false when the queue is empty.
func (q *Queue[P, R]) Pop() (*Record[P, R], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	r := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return r, true
}

// Len returns the number of queued records.
func (q *Queue[P, R]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns copies of the queued records in order.
func (q *Queue[P, R]) Snapshot() []*Record[P, R] {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Record[P, R], len(q.items))
	for i, r := range q.items {
		out[i] = r.Clone()
	}
	return out
}

// Drain removes and returns every queued record in order.
func (q *Queue[P, R]) Drain() []*Record[P, R] {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	return out
}
