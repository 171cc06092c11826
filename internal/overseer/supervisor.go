package overseer

import (
	"context"
	"fmt"
	"time"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/cluster"
	"github.com/Iron-Ham/clusterexec/internal/errors"
	"github.com/Iron-Ham/clusterexec/internal/logging"
	"github.com/Iron-Ham/clusterexec/internal/mailbox"
	"github.com/Iron-Ham/clusterexec/internal/task"
)

// Role is the cluster role under which overseers are spawned.
const Role cluster.Role = "overseer"

// ComputeFunc performs one task's computation.
type ComputeFunc[P, R any] func(ctx context.Context, params P) (R, error)

// Supervisor is the reference overseer behavior. It runs one task at a time.
type Supervisor[P, R any] struct {
	compute ComputeFunc[P, R]
	logger  *logging.Logger
}

// NewSupervisor creates a Supervisor that runs compute for every task.
func NewSupervisor[P, R any](compute ComputeFunc[P, R], opts ...Option) *Supervisor[P, R] {
	s := settings{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(&s)
	}
	return &Supervisor[P, R]{
		compute: compute,
		logger:  s.logger.WithComponent("overseer"),
	}
}

// Behavior adapts the supervisor to a cluster.Behavior for registration
// with a runtime.
func (s *Supervisor[P, R]) Behavior() cluster.Behavior {
	return s.Run
}

// Run serves messages until Terminate arrives, the mailbox is closed, or
// ctx is cancelled; all three are normal exits. An undecodable task is an
// abnormal exit.
func (s *Supervisor[P, R]) Run(ctx context.Context, self cluster.Actor) error {
	log := s.logger.With("overseer", self.Addr().String())
	log.Debug("overseer started")

	for {
		msg, err := self.Mailbox().Receive(ctx)
		if err != nil {
			if errors.Is(err, errors.ErrMailboxClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch msg.Type {
		case mailbox.MessageStart:
			if err := s.send(self, msg.From, mailbox.MessageReadyAgain, nil); err != nil {
				return err
			}
		case mailbox.MessageReplyTask:
			if err := s.handleTask(ctx, self, msg, log); err != nil {
				return err
			}
		case mailbox.MessageTerminate:
			log.Debug("overseer terminating")
			return nil
		default:
			log.Debug("ignoring message", "type", msg.Type.String())
		}
	}
}

func (s *Supervisor[P, R]) handleTask(ctx context.Context, self cluster.Actor, msg mailbox.Message, log *logging.Logger) error {
	rec, err := task.Decode[P, R](msg.Payload)
	if err != nil {
		return errors.NewProtocolError("cannot decode assigned task", err).
			WithMessageType(msg.Type.String()).
			WithSender(msg.From.String()).
			WithPayload(msg.Payload)
	}

	started := time.Now()
	result, err := s.run(ctx, rec.Params)
	reply := mailbox.MessageResult
	if err != nil {
		reply = mailbox.MessageResultError
		rec.Status = task.StatusCalcError
		rec.Error = errors.NewTaskError(rec.ID, err).Error()
		log.Warn("task failed", "task_id", rec.ID, "error", err.Error())
	} else {
		rec.Result = &result
		rec.Status = task.StatusDone
		log.Debug("task computed", "task_id", rec.ID, "duration_ms", time.Since(started).Milliseconds())
	}

	payload, err := task.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode task %d: %w", rec.ID, err)
	}
	if err := s.send(self, msg.From, reply, payload); err != nil {
		return err
	}
	return s.send(self, msg.From, mailbox.MessageReadyAgain, nil)
}

// run calls compute, turning a panic into a task failure.
func (s *Supervisor[P, R]) run(ctx context.Context, params P) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("computation panicked: %v", r)
		}
	}()
	return s.compute(ctx, params)
}

func (s *Supervisor[P, R]) send(self cluster.Actor, to address.Address, t mailbox.MessageType, payload []byte) error {
	return self.Send(mailbox.NewMessage(t, self.Addr(), to, payload))
}
