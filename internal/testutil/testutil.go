// Package testutil provides helpers shared by the package tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/clusterexec/internal/task"
)

// DefaultTimeout bounds WaitFor calls in tests that drive goroutines.
const DefaultTimeout = 5 * time.Second

// WaitFor polls cond until it returns true or timeout elapses, then fails
// the test with msg.
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %v waiting for %s", timeout, msg)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// Recorder is an owning executor that keeps a copy of every record it is
// notified about. It is safe for concurrent use.
type Recorder[P, R any] struct {
	mu        sync.Mutex
	started   []*task.Record[P, R]
	completed []*task.Record[P, R]
}

// NewRecorder creates an empty Recorder.
func NewRecorder[P, R any]() *Recorder[P, R] {
	return &Recorder[P, R]{}
}

// OnTaskStarted records a clone of rec.
func (r *Recorder[P, R]) OnTaskStarted(rec *task.Record[P, R]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, rec.Clone())
}

// OnTaskCompleted records a clone of rec.
func (r *Recorder[P, R]) OnTaskCompleted(rec *task.Record[P, R]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, rec.Clone())
}

// Started returns the started records in notification order.
func (r *Recorder[P, R]) Started() []*task.Record[P, R] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*task.Record[P, R](nil), r.started...)
}

// Completed returns the completed records in notification order.
func (r *Recorder[P, R]) Completed() []*task.Record[P, R] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*task.Record[P, R](nil), r.completed...)
}

// CompletedCount returns the number of completion notifications.
func (r *Recorder[P, R]) CompletedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed)
}
