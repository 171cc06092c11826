package coordinator

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/errors"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/lifecycle"
	"github.com/Iron-Ham/clusterexec/internal/mailbox"
	"github.com/Iron-Ham/clusterexec/internal/task"
)

// triggers maps control messages to the lifecycle trigger they fire.
var triggers = map[mailbox.MessageType]lifecycle.Trigger{
	mailbox.MessageInitialized: lifecycle.TriggerInitialized,
	mailbox.MessageRun:         lifecycle.TriggerRun,
	mailbox.MessagePause:       lifecycle.TriggerPause,
}

// loop receives and handles one message at a time until Terminate.
func (c *Coordinator[P, R]) loop(ctx context.Context) error {
	c.logger.Info("dispatch loop started", "overseers", c.pool.Len())

	for {
		msg, err := c.box.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		c.logger.Debug("message received",
			"type", msg.Type.String(),
			"from", msg.From.String(),
			"state", c.machine.State().String())

		if err := c.handle(msg); err != nil {
			return err
		}
		if msg.Type == mailbox.MessageTerminate {
			return nil
		}
	}
}

// handle runs the state-independent handler, then the handler for the
// current lifecycle state.
func (c *Coordinator[P, R]) handle(msg mailbox.Message) error {
	if err := c.handleAny(msg); err != nil {
		return err
	}

	switch c.machine.State() {
	case lifecycle.StateJustCreated:
		return c.onJustCreated(msg)
	case lifecycle.StatePaused:
		return c.onPaused(msg)
	case lifecycle.StateRunning:
		return c.onRunning(msg)
	}
	return nil
}

func (c *Coordinator[P, R]) handleAny(msg mailbox.Message) error {
	switch msg.Type {
	case mailbox.MessageReadyAgain:
		ready := c.pool.MarkReady(msg.From)
		c.bus.Publish(event.NewOverseerReadyEvent(c.id, msg.From.String(), ready))
		c.publishDepth()
	case mailbox.MessageResult:
		return c.complete(msg, false)
	case mailbox.MessageResultError:
		return c.complete(msg, true)
	case mailbox.MessageOverseerDown:
		c.overseerDown(msg)
	}
	return nil
}

func (c *Coordinator[P, R]) onJustCreated(msg mailbox.Message) error {
	if msg.Type == mailbox.MessageInitialized {
		return c.fire(msg)
	}
	return c.rejectControl(msg)
}

func (c *Coordinator[P, R]) onPaused(msg mailbox.Message) error {
	if msg.Type == mailbox.MessageRun {
		if err := c.fire(msg); err != nil {
			return err
		}
		return c.post(mailbox.MessageStartNewTask)
	}
	return c.rejectControl(msg)
}

func (c *Coordinator[P, R]) onRunning(msg mailbox.Message) error {
	switch msg.Type {
	case mailbox.MessagePause:
		return c.fire(msg)
	case mailbox.MessageStartNewTask:
		return c.dispatch()
	case mailbox.MessageReadyAgain:
		return c.post(mailbox.MessageStartNewTask)
	}
	return c.rejectControl(msg)
}

// rejectControl fails a control message the current state has no handler
// for. Other messages are ignored.
func (c *Coordinator[P, R]) rejectControl(msg mailbox.Message) error {
	if !msg.Type.IsControl() {
		return nil
	}
	return c.fire(msg)
}

// fire applies the trigger for a control message. An unpermitted trigger
// comes back as a *errors.ProtocolError and leaves the state unchanged.
func (c *Coordinator[P, R]) fire(msg mailbox.Message) error {
	trigger := triggers[msg.Type]
	if !c.machine.CanFire(trigger) {
		c.logger.Error("control message not permitted",
			"type", msg.Type.String(),
			"from", msg.From.String(),
			"state", c.machine.State().String(),
			"permitted", fmt.Sprint(c.machine.Permitted()))
	}
	err := c.machine.Fire(trigger)
	if err == nil {
		return nil
	}
	var pe *errors.ProtocolError
	if errors.As(err, &pe) {
		pe.WithMessageType(msg.Type.String()).WithSender(msg.From.String())
	}
	return err
}

// dispatch pairs ready overseers with pending tasks until one side runs out.
// An overseer that cannot be reached is dropped from the pool and its task
// goes back to the head of the pending queue.
func (c *Coordinator[P, R]) dispatch() error {
	for c.pool.ReadyLen() > 0 {
		rec, ok := c.pending.Pop()
		if !ok {
			return nil
		}

		rec.MarkCalculating(c.nextID+1, c.clock())
		payload, err := task.Encode(rec)
		if err != nil {
			rec.Requeue()
			c.pending.PushFront(rec)
			return fmt.Errorf("dispatch task %d: %w", c.nextID+1, err)
		}

		target, _ := c.pool.PopReady()
		if err := c.runtime.Send(mailbox.NewMessage(mailbox.MessageReplyTask, c.addr, target, payload)); err != nil {
			rec.Requeue()
			c.pending.PushFront(rec)
			c.dropOverseer(target, unreachable(err, target, "assign task").Error())
			continue
		}
		c.nextID = rec.ID
		c.inProgress.Add(rec)
		c.dispatched.Add(1)

		c.logger.Debug("task dispatched", "task_id", rec.ID, "overseer", target.String())
		c.executor.OnTaskStarted(rec)
		c.bus.Publish(event.NewTaskDispatchedEvent(c.id, rec.ID, target.String()))
		c.publishDepth()
	}
	return nil
}

// complete moves a reported task to the completed queue. A report with no
// in-progress entry is rebuilt from the payload. An undecodable payload is
// fatal and leaves the in-progress index untouched.
func (c *Coordinator[P, R]) complete(msg mailbox.Message, failed bool) error {
	reported, err := task.Decode[P, R](msg.Payload)
	if err != nil {
		return errors.NewProtocolError("cannot decode completion", err).
			WithState(c.machine.State().String()).
			WithMessageType(msg.Type.String()).
			WithSender(msg.From.String()).
			WithPayload(msg.Payload)
	}

	rec, found := c.inProgress.Remove(reported.ID)
	if !found {
		rec = reported
		c.late.Add(1)
		c.logger.Debug("completion without in-progress entry", "task_id", reported.ID, "overseer", msg.From.String())
	}
	rec.Complete(reported, failed, c.clock())
	c.completed.Push(rec)

	if failed {
		c.failed.Add(1)
		c.logger.Warn("task failed", "task_id", rec.ID, "overseer", msg.From.String(), "error", rec.Error)
	} else {
		c.succeeded.Add(1)
		c.logger.Debug("task completed", "task_id", rec.ID, "duration_ms", rec.Duration().Milliseconds())
	}

	c.executor.OnTaskCompleted(rec)
	c.bus.Publish(event.NewTaskCompletedEvent(c.id, rec.ID, rec.Status.String(), rec.Duration(), !found, msg.From.String()))
	c.publishDepth()
	return nil
}

// overseerDown forgets a failed overseer. Its in-flight task stays in the
// in-progress index.
func (c *Coordinator[P, R]) overseerDown(msg mailbox.Message) {
	c.dropOverseer(msg.From, string(msg.Payload))
}

// dropOverseer removes addr from the pool. Only the first report for a
// registered overseer is logged and published; later ones just clear any
// ready entries.
func (c *Coordinator[P, R]) dropOverseer(addr address.Address, reason string) {
	if !c.pool.Remove(addr) {
		c.logger.Debug("overseer already gone", "overseer", addr.String(), "reason", reason)
		c.publishDepth()
		return
	}
	c.logger.Warn("overseer down",
		"overseer", addr.String(),
		"reason", reason,
		"remaining", c.pool.Len())
	c.bus.Publish(event.NewOverseerDownEvent(c.id, addr.String(), reason))
	c.publishDepth()
}
