// Package event provides a pub-sub event bus for decoupled observation of
// the dispatcher.
//
// The coordinator publishes what it does (state changes, dispatches,
// completions, overseer readiness and failures) and observers such as the
// metrics collector or the CLI subscribe without the coordinator knowing
// about them. Events are notifications only: the coordinator's behavior
// never depends on who is listening.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - coordinator.state_changed
//   - capacity.planned
//   - task.enqueued, task.dispatched, task.completed
//   - queue.depth_changed
//   - overseer.spawned, overseer.ready, overseer.down
//   - mailbox.delivered
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously on the publishing goroutine, so a handler subscribed to
// coordinator events runs on the dispatch loop and must not block. A
// panicking handler is recovered and does not prevent other handlers from
// being called.
package event
