package mailbox

import (
	"time"

	"github.com/Iron-Ham/clusterexec/internal/address"
)

// MessageType identifies the kind of message.
type MessageType string

const (
	// MessageInitialized moves the coordinator from justCreated to paused.
	MessageInitialized MessageType = "initialized"

	// MessageRun moves the coordinator from paused to running and starts dispatch.
	MessageRun MessageType = "run"

	// MessagePause moves the coordinator from running to paused.
	MessagePause MessageType = "pause"

	// MessageTerminate stops the receiving actor's loop.
	MessageTerminate MessageType = "terminate"

	// MessageStart tells an overseer to begin accepting work.
	MessageStart MessageType = "start"

	// MessageReplyTask assigns one serialized task to an overseer.
	MessageReplyTask MessageType = "reply_task"

	// MessageReadyAgain signals that an overseer is idle.
	MessageReadyAgain MessageType = "ready_again"

	// MessageResult reports a successfully computed task.
	MessageResult MessageType = "result"

	// MessageResultError reports a failed task.
	MessageResultError MessageType = "result_error"

	// MessageStartNewTask is the coordinator's self-trigger to attempt dispatch.
	MessageStartNewTask MessageType = "start_new_task"

	// MessageOverseerDown reports that a monitored overseer exited abnormally.
	// The payload is the failure reason as text.
	MessageOverseerDown MessageType = "overseer_down"
)

// String returns the string representation of the message type.
func (t MessageType) String() string {
	return string(t)
}

// IsControl reports whether t is a controller command that fires a
// lifecycle trigger.
func (t MessageType) IsControl() bool {
	switch t {
	case MessageInitialized, MessageRun, MessagePause:
		return true
	}
	return false
}

// Valid message types for validation.
var validMessageTypes = map[MessageType]bool{
	MessageInitialized:  true,
	MessageRun:          true,
	MessagePause:        true,
	MessageTerminate:    true,
	MessageStart:        true,
	MessageReplyTask:    true,
	MessageReadyAgain:   true,
	MessageResult:       true,
	MessageResultError:  true,
	MessageStartNewTask: true,
	MessageOverseerDown: true,
}

// ValidateMessageType returns true if the given type is a known message type.
func ValidateMessageType(t MessageType) bool {
	return validMessageTypes[t]
}

// Message is one unit of communication between actors.
type Message struct {
	Type      MessageType
	From      address.Address
	To        address.Address
	Payload   []byte
	Timestamp time.Time
}

// NewMessage builds a message stamped with the current time.
func NewMessage(t MessageType, from, to address.Address, payload []byte) Message {
	return Message{
		Type:      t,
		From:      from,
		To:        to,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
