package task

import (
	"cmp"
	"slices"
	"sync"
)

// Index maps task ids to in-progress records. The dispatch step inserts
// and completion handling removes; both may race with readers taking
// snapshots, so all methods are safe for concurrent use.
type Index[P, R any] struct {
	mu      sync.RWMutex
	records map[int64]*Record[P, R]
}

// NewIndex creates an empty index.
func NewIndex[P, R any]() *Index[P, R] {
	return &Index[P, R]{records: make(map[int64]*Record[P, R])}
}

// Add records r under r.ID. It returns false, leaving the index unchanged,
// if the id is already present.
func (x *Index[P, R]) Add(r *Record[P, R]) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.records[r.ID]; exists {
		return false
	}
	x.records[r.ID] = r
	return true
}

// Remove deletes and returns the record for id. A miss returns false; a
// duplicate or late completion lands here and is not an error.
func (x *Index[P, R]) Remove(id int64) (*Record[P, R], bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	r, ok := x.records[id]
	if ok {
		delete(x.records, id)
	}
	return r, ok
}

// Contains reports whether id is in progress.
func (x *Index[P, R]) Contains(id int64) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.records[id]
	return ok
}

// Len returns the number of in-progress records.
func (x *Index[P, R]) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// IDs returns the in-progress ids in ascending order.
func (x *Index[P, R]) IDs() []int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ids := make([]int64, 0, len(x.records))
	for id := range x.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Snapshot returns copies of the in-progress records ordered by id.
func (x *Index[P, R]) Snapshot() []*Record[P, R] {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]*Record[P, R], 0, len(x.records))
	for _, r := range x.records {
		out = append(out, r.Clone())
	}
	slices.SortFunc(out, func(a, b *Record[P, R]) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
