// Package lifecycle implements the coordinator's lifecycle state machine.
//
// States and triggers:
//
//	justCreated --initialized--> paused --run--> running
//	                               ^                |
//	                               +-----pause------+
//
// Firing a trigger that the current state does not permit returns a
// [errors.ProtocolError] and leaves the state unchanged. The coordinator
// treats that as fatal, since it means the coordinator and its controller
// disagree about where the coordinator is.
//
// There is no terminal state; shutdown is driven by a terminate message
// outside the machine.
//
// # Thread Safety
//
// A [Machine] is owned by one goroutine, which is the only one allowed to
// call Fire. State may be read from any goroutine.
package lifecycle
