// Package task defines the unit of work handled by the dispatcher and the
// containers that hold it.
//
// A [Record] carries its immutable input parameters, an id assigned at
// dispatch, a [Status], execution timestamps and eventually a result. A
// record moves through
//
//	pending -> calculating -> done | calcError
//
// and lives in exactly one container at a time:
//
//   - [Queue]: FIFO of pending records, or of completed records
//   - [Index]: concurrent map of in-progress records keyed by id
//
// Records cross process boundaries as JSON ([Encode], [Decode]). Field
// names are preserved so the payload is self-describing.
//
// Usage:
//
//	pending := task.NewQueue[Params, float64]()
//	pending.Push(task.NewRecord[Params, float64](p))
//
//	rec, ok := pending.Pop()
//	rec.MarkCalculating(nextID, time.Now())
//	payload, err := task.Encode(rec)
package task
