package task

import "time"

// Status represents the current state of a task record.
type Status string

const (
	// StatusPending indicates the record is waiting in the pending queue.
	StatusPending Status = "pending"

	// StatusCalculating indicates the record has been handed to an overseer.
	StatusCalculating Status = "calculating"

	// StatusDone indicates the computation finished successfully.
	StatusDone Status = "done"

	// StatusCalcError indicates the computation failed on the overseer.
	StatusCalcError Status = "calcError"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCalcError
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCalculating, StatusDone, StatusCalcError:
		return true
	}
	return false
}

// Record is one unit of work with input parameters P and result R.
type Record[P, R any] struct {
	// ID is assigned when the record leaves the pending queue. Zero means
	// unassigned.
	ID int64 `json:"id"`

	// Params is the input payload provided at enqueue time.
	Params P `json:"params"`

	// Result is nil until the record completes.
	Result *R `json:"result,omitempty"`

	// Status is the current execution state.
	Status Status `json:"status"`

	// Error carries the overseer's failure text for calcError records.
	Error string `json:"error,omitempty"`

	// StartExecuting is when the record was dispatched.
	StartExecuting *time.Time `json:"startExecuting,omitempty"`

	// StopExecuting is when the completion message was received.
	StopExecuting *time.Time `json:"stopExecuting,omitempty"`
}

// NewRecord returns a pending record for params.
func NewRecord[P, R any](params P) *Record[P, R] {
	return &Record[P, R]{
		Params: params,
		Status: StatusPending,
	}
}

// MarkCalculating assigns id and stamps the dispatch time.
func (r *Record[P, R]) MarkCalculating(id int64, at time.Time) {
	r.ID = id
	r.Status = StatusCalculating
	r.StartExecuting = &at
}

// Requeue puts a record whose hand-over failed back to pending. The id and
// dispatch time are cleared so the next dispatch assigns them afresh.
func (r *Record[P, R]) Requeue() {
	r.ID = 0
	r.Status = StatusPending
	r.StartExecuting = nil
}

// Complete stamps the stop time and copies the outcome from reported. The
// status becomes done, or calcError when failed is set, whatever status the
// reported copy carries.
func (r *Record[P, R]) Complete(reported *Record[P, R], failed bool, at time.Time) {
	r.StopExecuting = &at
	r.Result = reported.Result
	r.Error = reported.Error
	if failed {
		r.Status = StatusCalcError
		return
	}
	r.Status = StatusDone
}

// Duration returns the time between dispatch and completion, or zero when
// either timestamp is missing.
func (r *Record[P, R]) Duration() time.Duration {
	if r.StartExecuting == nil || r.StopExecuting == nil {
		return 0
	}
	return r.StopExecuting.Sub(*r.StartExecuting)
}

// Clone returns a shallow copy of the record. The timestamps are copied so
// the clone can be stamped independently.
func (r *Record[P, R]) Clone() *Record[P, R] {
	cp := *r
	if r.StartExecuting != nil {
		t := *r.StartExecuting
		cp.StartExecuting = &t
	}
	if r.StopExecuting != nil {
		t := *r.StopExecuting
		cp.StopExecuting = &t
	}
	return &cp
}
