package coordinator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/capacity"
	"github.com/Iron-Ham/clusterexec/internal/cluster"
	"github.com/Iron-Ham/clusterexec/internal/errors"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/lifecycle"
	"github.com/Iron-Ham/clusterexec/internal/logging"
	"github.com/Iron-Ham/clusterexec/internal/mailbox"
	"github.com/Iron-Ham/clusterexec/internal/overseer"
	"github.com/Iron-Ham/clusterexec/internal/task"
)

// Role is the cluster role a coordinator attaches under.
const Role cluster.Role = "coordinator"

// Stats is a point-in-time summary of a coordinator.
type Stats struct {
	State      lifecycle.State
	Pending    int
	InProgress int
	Completed  int
	Overseers  int
	Ready      int
	Dispatched int64
	Succeeded  int64
	Failed     int64
	Late       int64
}

// Coordinator distributes tasks with parameters P and results R over a pool
// of overseers.
type Coordinator[P, R any] struct {
	id       string
	runtime  cluster.Runtime
	executor Executor[P, R]
	addr     address.Address
	box      *mailbox.Mailbox

	logger             *logging.Logger
	bus                *event.Bus
	planner            *capacity.Planner
	clock              func() time.Time
	terminateOverseers bool

	machine    *lifecycle.Machine
	pending    *task.Queue[P, R]
	inProgress *task.Index[P, R]
	completed  *task.Queue[P, R]
	pool       *overseer.Pool

	// nextID is touched only by the loop goroutine.
	nextID int64

	dispatched atomic.Int64
	succeeded  atomic.Int64
	failed     atomic.Int64
	late       atomic.Int64

	started        atomic.Bool
	forwarders     conc.WaitGroup
	stopForwarders context.CancelFunc
	done           chan struct{}
	errMu          sync.Mutex
	err            error
}

// New attaches a coordinator to the local node of runtime. A nil executor
// is replaced by a no-op.
func New[P, R any](runtime cluster.Runtime, executor Executor[P, R], opts ...Option) (*Coordinator[P, R], error) {
	o := options{
		id:                 uuid.NewString(),
		logger:             logging.NopLogger(),
		bus:                event.NewBus(),
		planner:            capacity.NewPlanner(),
		clock:              time.Now,
		terminateOverseers: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if executor == nil {
		executor = ExecutorFuncs[P, R]{}
	}

	addr, box, err := runtime.Attach(Role)
	if err != nil {
		return nil, errors.Wrap(err, "attach coordinator")
	}

	c := &Coordinator[P, R]{
		id:                 o.id,
		runtime:            runtime,
		executor:           executor,
		addr:               addr,
		box:                box,
		logger:             o.logger.WithCoordinator(o.id).With("addr", addr.String()),
		bus:                o.bus,
		planner:            o.planner,
		clock:              o.clock,
		terminateOverseers: o.terminateOverseers,
		machine:            lifecycle.New(),
		pending:            task.NewQueue[P, R](),
		inProgress:         task.NewIndex[P, R](),
		completed:          task.NewQueue[P, R](),
		pool:               overseer.NewPool(),
		done:               make(chan struct{}),
	}
	c.machine.OnTransition(func(tr lifecycle.Transition) {
		c.logger.Info("state changed", "from", tr.From.String(), "to", tr.To.String(), "trigger", tr.Trigger.String())
		c.bus.Publish(event.NewStateChangedEvent(c.id, tr.From.String(), tr.To.String(), tr.Trigger.String()))
	})
	return c, nil
}

// ID returns the coordinator's instance id.
func (c *Coordinator[P, R]) ID() string { return c.id }

// Addr returns the coordinator's mailbox address.
func (c *Coordinator[P, R]) Addr() address.Address { return c.addr }

// Start plans capacity, spawns and monitors the overseers, sends each of
// them Start, and runs the dispatch loop in a new goroutine. The loop stops
// when Terminate is handled, ctx is cancelled, or a fatal error occurs;
// Wait returns the reason.
func (c *Coordinator[P, R]) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.ErrAlreadyStarted
	}

	fwdCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.stopForwarders = cancel

	if err := c.spawnOverseers(ctx, fwdCtx); err != nil {
		c.finish(err)
		return err
	}
	c.startOverseers()

	go func() {
		c.finish(c.loop(ctx))
	}()
	return nil
}

func (c *Coordinator[P, R]) spawnOverseers(ctx, fwdCtx context.Context) error {
	nodes := capacity.Survey(c.runtime)
	placement := c.planner.Plan(nodes)

	c.logger.Info("capacity planned", "nodes", len(nodes), "overseers", len(placement), "placement", placement.String())
	c.bus.Publish(event.NewCapacityPlannedEvent(c.id, placement.PerNode()))
	if len(placement) == 0 {
		c.logger.Warn("no spare capacity; dispatch will idle until an overseer reports ready")
	}

	for _, node := range placement {
		addr, err := c.runtime.Spawn(ctx, node, overseer.Role)
		if err != nil {
			return asClusterError(err, "spawn overseer").WithNode(node.String())
		}
		downs, err := c.runtime.Monitor(fwdCtx, addr)
		if err != nil {
			return asClusterError(err, "monitor overseer").WithAddress(addr.String())
		}
		c.pool.Add(addr)
		c.forward(downs)

		c.logger.Debug("overseer spawned", "overseer", addr.String(), "node", node.String())
		c.bus.Publish(event.NewOverseerSpawnedEvent(c.id, addr.String(), node.String()))
	}
	return nil
}

// forward turns a monitor's Down into an OverseerDown message so the loop
// handles it in order with everything else.
func (c *Coordinator[P, R]) forward(downs <-chan cluster.Down) {
	c.forwarders.Go(func() {
		for down := range downs {
			reason := "unknown"
			if down.Reason != nil {
				reason = down.Reason.Error()
			}
			msg := mailbox.NewMessage(mailbox.MessageOverseerDown, down.Addr, c.addr, []byte(reason))
			if err := c.box.Deliver(msg); err != nil {
				c.logger.Debug("dropped overseer down notice", "overseer", down.Addr.String(), "error", err.Error())
			}
		}
	})
}

// startOverseers sends Start to every overseer. One that cannot be reached
// is dropped from the pool; the rest still start.
func (c *Coordinator[P, R]) startOverseers() {
	for _, addr := range c.pool.All() {
		if err := c.runtime.Send(mailbox.NewMessage(mailbox.MessageStart, c.addr, addr, nil)); err != nil {
			c.dropOverseer(addr, unreachable(err, addr, "start overseer").Error())
		}
	}
}

// finish records the loop's exit reason and releases resources. It runs
// once, either from a failed Start or when the loop returns.
func (c *Coordinator[P, R]) finish(err error) {
	switch {
	case err == nil:
		c.logger.Info("coordinator stopped")
	case errors.IsFatal(err):
		c.logger.Error("coordinator halted", "error", err.Error(), "severity", errors.GetSeverity(err).String())
	default:
		c.logger.Warn("coordinator stopped", "error", err.Error())
	}

	if c.terminateOverseers {
		for _, addr := range c.pool.All() {
			if sendErr := c.runtime.Send(mailbox.NewMessage(mailbox.MessageTerminate, c.addr, addr, nil)); sendErr != nil {
				c.logger.Debug("terminate overseer failed", "overseer", addr.String(), "error", sendErr.Error())
			}
		}
	}
	c.box.Close()
	if c.stopForwarders != nil {
		c.stopForwarders()
	}
	c.forwarders.Wait()

	c.errMu.Lock()
	c.err = err
	c.errMu.Unlock()
	close(c.done)
}

// Wait blocks until the loop has stopped and returns its exit error: nil
// after Terminate, ctx.Err() after cancellation, or the fatal error that
// halted it.
func (c *Coordinator[P, R]) Wait() error {
	<-c.done
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Done is closed when the loop has stopped.
func (c *Coordinator[P, R]) Done() <-chan struct{} {
	return c.done
}

// Enqueue adds a pending task and nudges the loop to dispatch it. The
// returned record is a snapshot taken while the task is pending, so its ID
// is 0: ids are assigned at dispatch and first seen in OnTaskStarted.
func (c *Coordinator[P, R]) Enqueue(params P) *task.Record[P, R] {
	rec := task.NewRecord[P, R](params)
	c.pending.Push(rec)
	snapshot := rec.Clone()

	c.bus.Publish(event.NewTaskEnqueuedEvent(c.id, c.pending.Len()))
	if err := c.post(mailbox.MessageStartNewTask); err != nil {
		c.logger.Debug("enqueue after stop; task stays pending", "error", err.Error())
	}
	return snapshot
}

// Initialize asks the coordinator to leave justCreated.
func (c *Coordinator[P, R]) Initialize() error { return c.control(mailbox.MessageInitialized) }

// Resume asks the coordinator to start (or resume) dispatching.
func (c *Coordinator[P, R]) Resume() error { return c.control(mailbox.MessageRun) }

// Pause asks the coordinator to stop handing out new tasks.
func (c *Coordinator[P, R]) Pause() error { return c.control(mailbox.MessagePause) }

// Terminate asks the loop to exit.
func (c *Coordinator[P, R]) Terminate() error { return c.control(mailbox.MessageTerminate) }

// control sends a command through the runtime, the same path an external
// controller uses.
func (c *Coordinator[P, R]) control(t mailbox.MessageType) error {
	return c.runtime.Send(mailbox.NewMessage(t, c.addr, c.addr, nil))
}

// post delivers a message straight into the coordinator's own mailbox.
func (c *Coordinator[P, R]) post(t mailbox.MessageType) error {
	return c.box.Deliver(mailbox.NewMessage(t, c.addr, c.addr, nil))
}

// State returns the current lifecycle state.
func (c *Coordinator[P, R]) State() lifecycle.State {
	return c.machine.State()
}

// Pending returns snapshots of the pending tasks in queue order.
func (c *Coordinator[P, R]) Pending() []*task.Record[P, R] {
	return c.pending.Snapshot()
}

// InProgress returns snapshots of the in-flight tasks ordered by id.
func (c *Coordinator[P, R]) InProgress() []*task.Record[P, R] {
	return c.inProgress.Snapshot()
}

// Completed returns snapshots of the completed tasks in completion order.
func (c *Coordinator[P, R]) Completed() []*task.Record[P, R] {
	return c.completed.Snapshot()
}

// DrainCompleted removes and returns every completed task.
func (c *Coordinator[P, R]) DrainCompleted() []*task.Record[P, R] {
	recs := c.completed.Drain()
	c.publishDepth()
	return recs
}

// Overseers returns the registered overseers in spawn order.
func (c *Coordinator[P, R]) Overseers() []address.Address {
	return c.pool.All()
}

// Stats returns current counts.
func (c *Coordinator[P, R]) Stats() Stats {
	return Stats{
		State:      c.machine.State(),
		Pending:    c.pending.Len(),
		InProgress: c.inProgress.Len(),
		Completed:  c.completed.Len(),
		Overseers:  c.pool.Len(),
		Ready:      c.pool.ReadyLen(),
		Dispatched: c.dispatched.Load(),
		Succeeded:  c.succeeded.Load(),
		Failed:     c.failed.Load(),
		Late:       c.late.Load(),
	}
}

func (c *Coordinator[P, R]) publishDepth() {
	c.bus.Publish(event.NewQueueDepthChangedEvent(c.id,
		c.pending.Len(), c.inProgress.Len(), c.completed.Len(), c.pool.ReadyLen(), c.pool.Len()))
}

// unreachable describes a failed send to an overseer. The overseer is
// dropped but the operation can be retried on another one.
func unreachable(err error, addr address.Address, message string) *errors.ClusterError {
	return errors.NewClusterError(message, err).WithAddress(addr.String()).WithRetryable(true)
}

// asClusterError returns err as a fatal *errors.ClusterError, wrapping it
// when the runtime returned some other error type.
func asClusterError(err error, message string) *errors.ClusterError {
	var ce *errors.ClusterError
	if errors.As(err, &ce) {
		return ce.WithFatal(true)
	}
	return errors.NewClusterError(message, err).WithFatal(true)
}
