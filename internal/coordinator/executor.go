package coordinator

import "github.com/Iron-Ham/clusterexec/internal/task"

// Executor is the owning executor notified as tasks start and finish.
// Both callbacks run synchronously on the dispatch loop goroutine and must
// not block.
type Executor[P, R any] interface {
	// OnTaskStarted is called right after a task is handed to an overseer.
	OnTaskStarted(rec *task.Record[P, R])

	// OnTaskCompleted is called right after a task is moved to the
	// completed queue.
	OnTaskCompleted(rec *task.Record[P, R])
}

// ExecutorFuncs adapts plain functions to Executor. Nil fields are no-ops.
type ExecutorFuncs[P, R any] struct {
	Started   func(rec *task.Record[P, R])
	Completed func(rec *task.Record[P, R])
}

// OnTaskStarted calls f.Started if set.
func (f ExecutorFuncs[P, R]) OnTaskStarted(rec *task.Record[P, R]) {
	if f.Started != nil {
		f.Started(rec)
	}
}

// OnTaskCompleted calls f.Completed if set.
func (f ExecutorFuncs[P, R]) OnTaskCompleted(rec *task.Record[P, R]) {
	if f.Completed != nil {
		f.Completed(rec)
	}
}
