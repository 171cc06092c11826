package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.dispatched").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Coordinator Events
// -----------------------------------------------------------------------------

// StateChangedEvent is emitted after the coordinator's lifecycle state changes.
type StateChangedEvent struct {
	baseEvent
	CoordinatorID string
	From          string
	To            string
	Trigger       string
}

// NewStateChangedEvent creates a StateChangedEvent.
func NewStateChangedEvent(coordinatorID, from, to, trigger string) StateChangedEvent {
	return StateChangedEvent{
		baseEvent:     newBaseEvent("coordinator.state_changed"),
		CoordinatorID: coordinatorID,
		From:          from,
		To:            to,
		Trigger:       trigger,
	}
}

// CapacityPlannedEvent is emitted once the capacity planner has decided
// where overseers go.
type CapacityPlannedEvent struct {
	baseEvent
	CoordinatorID string
	PerNode       map[string]int // node id -> overseer count
	Total         int
}

// NewCapacityPlannedEvent creates a CapacityPlannedEvent.
func NewCapacityPlannedEvent(coordinatorID string, perNode map[string]int) CapacityPlannedEvent {
	total := 0
	for _, n := range perNode {
		total += n
	}
	return CapacityPlannedEvent{
		baseEvent:     newBaseEvent("capacity.planned"),
		CoordinatorID: coordinatorID,
		PerNode:       perNode,
		Total:         total,
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskEnqueuedEvent is emitted when the owning executor adds a pending task.
type TaskEnqueuedEvent struct {
	baseEvent
	CoordinatorID string
	Pending       int
}

// NewTaskEnqueuedEvent creates a TaskEnqueuedEvent.
func NewTaskEnqueuedEvent(coordinatorID string, pending int) TaskEnqueuedEvent {
	return TaskEnqueuedEvent{
		baseEvent:     newBaseEvent("task.enqueued"),
		CoordinatorID: coordinatorID,
		Pending:       pending,
	}
}

// TaskDispatchedEvent is emitted after a task has been sent to an overseer.
type TaskDispatchedEvent struct {
	baseEvent
	CoordinatorID string
	TaskID        int64
	Overseer      string
}

// NewTaskDispatchedEvent creates a TaskDispatchedEvent.
func NewTaskDispatchedEvent(coordinatorID string, taskID int64, overseer string) TaskDispatchedEvent {
	return TaskDispatchedEvent{
		baseEvent:     newBaseEvent("task.dispatched"),
		CoordinatorID: coordinatorID,
		TaskID:        taskID,
		Overseer:      overseer,
	}
}

// TaskCompletedEvent is emitted after a task has moved to the completed queue.
type TaskCompletedEvent struct {
	baseEvent
	CoordinatorID string
	TaskID        int64
	Status        string        // "done" or "calcError"
	Duration      time.Duration // dispatch to completion, zero if unknown
	Late          bool          // no in-progress entry was found for the task
	Overseer      string
}

// NewTaskCompletedEvent creates a TaskCompletedEvent.
func NewTaskCompletedEvent(coordinatorID string, taskID int64, status string, duration time.Duration, late bool, overseer string) TaskCompletedEvent {
	return TaskCompletedEvent{
		baseEvent:     newBaseEvent("task.completed"),
		CoordinatorID: coordinatorID,
		TaskID:        taskID,
		Status:        status,
		Duration:      duration,
		Late:          late,
		Overseer:      overseer,
	}
}

// QueueDepthChangedEvent is emitted whenever the size of any of the
// coordinator's containers changes.
type QueueDepthChangedEvent struct {
	baseEvent
	CoordinatorID string
	Pending       int
	InProgress    int
	Completed     int
	Ready         int
	Overseers     int
}

// NewQueueDepthChangedEvent creates a QueueDepthChangedEvent.
func NewQueueDepthChangedEvent(coordinatorID string, pending, inProgress, completed, ready, overseers int) QueueDepthChangedEvent {
	return QueueDepthChangedEvent{
		baseEvent:     newBaseEvent("queue.depth_changed"),
		CoordinatorID: coordinatorID,
		Pending:       pending,
		InProgress:    inProgress,
		Completed:     completed,
		Ready:         ready,
		Overseers:     overseers,
	}
}

// -----------------------------------------------------------------------------
// Overseer Events
// -----------------------------------------------------------------------------

// OverseerSpawnedEvent is emitted after an overseer has been spawned and
// registered for monitoring.
type OverseerSpawnedEvent struct {
	baseEvent
	CoordinatorID string
	Overseer      string
	Node          string
}

// NewOverseerSpawnedEvent creates an OverseerSpawnedEvent.
func NewOverseerSpawnedEvent(coordinatorID, overseer, node string) OverseerSpawnedEvent {
	return OverseerSpawnedEvent{
		baseEvent:     newBaseEvent("overseer.spawned"),
		CoordinatorID: coordinatorID,
		Overseer:      overseer,
		Node:          node,
	}
}

// OverseerReadyEvent is emitted when an overseer reports it is idle.
type OverseerReadyEvent struct {
	baseEvent
	CoordinatorID string
	Overseer      string
	Ready         int // ready queue length after enqueueing
}

// NewOverseerReadyEvent creates an OverseerReadyEvent.
func NewOverseerReadyEvent(coordinatorID, overseer string, ready int) OverseerReadyEvent {
	return OverseerReadyEvent{
		baseEvent:     newBaseEvent("overseer.ready"),
		CoordinatorID: coordinatorID,
		Overseer:      overseer,
		Ready:         ready,
	}
}

// OverseerDownEvent is emitted when a monitored overseer exits abnormally.
type OverseerDownEvent struct {
	baseEvent
	CoordinatorID string
	Overseer      string
	Reason        string
}

// NewOverseerDownEvent creates an OverseerDownEvent.
func NewOverseerDownEvent(coordinatorID, overseer, reason string) OverseerDownEvent {
	return OverseerDownEvent{
		baseEvent:     newBaseEvent("overseer.down"),
		CoordinatorID: coordinatorID,
		Overseer:      overseer,
		Reason:        reason,
	}
}

// -----------------------------------------------------------------------------
// Mailbox Events
// -----------------------------------------------------------------------------

// MessageDeliveredEvent is emitted when a message lands in a mailbox.
type MessageDeliveredEvent struct {
	baseEvent
	From        string
	To          string
	MessageType string
}

// NewMessageDeliveredEvent creates a MessageDeliveredEvent.
func NewMessageDeliveredEvent(from, to, messageType string) MessageDeliveredEvent {
	return MessageDeliveredEvent{
		baseEvent:   newBaseEvent("mailbox.delivered"),
		From:        from,
		To:          to,
		MessageType: messageType,
	}
}
