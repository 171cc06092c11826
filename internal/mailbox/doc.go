// Package mailbox provides the message protocol and the per-actor inbox used
// by the dispatcher.
//
// Every actor (the coordinator, each overseer) owns one [Mailbox]. Senders
// deliver [Message] values into it; the owner blocks in [Mailbox.Receive]
// and processes one message at a time in arrival order. There is no
// priority and no reordering.
//
// A Mailbox is unbounded: Deliver never blocks. The coordinator sends
// messages to itself from inside its own receive loop, which would deadlock
// on a bounded channel.
//
// # Message Types
//
// Control (controller -> coordinator):
//   - [MessageInitialized], [MessageRun], [MessagePause], [MessageTerminate]
//
// Coordinator -> overseer:
//   - [MessageStart], [MessageReplyTask], [MessageTerminate]
//
// Overseer -> coordinator:
//   - [MessageReadyAgain], [MessageResult], [MessageResultError]
//
// Internal:
//   - [MessageStartNewTask]: coordinator self-trigger to attempt dispatch
//   - [MessageOverseerDown]: a monitored overseer exited abnormally
//
// # Basic Usage
//
//	mb := mailbox.New(self)
//	_ = mb.Deliver(mailbox.NewMessage(mailbox.MessageRun, controller, self, nil))
//
//	msg, err := mb.Receive(ctx)
//
// # Thread Safety
//
// Deliver may be called from any goroutine. Receive is intended for the
// single owning goroutine.
package mailbox
