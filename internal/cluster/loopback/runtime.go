package loopback

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/cluster"
	"github.com/Iron-Ham/clusterexec/internal/errors"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/logging"
	"github.com/Iron-Ham/clusterexec/internal/mailbox"
)

// Node describes one simulated machine.
type Node struct {
	// Processors is the processor count reported for the node.
	Processors int
	// Workers is the number of unrelated workers already running there.
	// Live actors spawned by the runtime are added on top.
	Workers int
}

// Runtime simulates a cluster inside one process.
// It is safe for concurrent use.
type Runtime struct {
	nodes  []Node
	local  address.NodeID
	bus    *event.Bus
	logger *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu        sync.RWMutex
	behaviors map[cluster.Role]cluster.Behavior
	actors    map[address.Address]*actor
	nextLocal map[address.NodeID]uint32
	monitors  map[address.Address][]chan cluster.Down
	closed    bool
}

var _ cluster.Runtime = (*Runtime)(nil)

// New creates a runtime with one node per entry; node ids are the slice
// indices.
func New(nodes []Node, opts ...Option) (*Runtime, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("loopback: at least one node is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime{
		nodes:     slices.Clone(nodes),
		logger:    logging.NopLogger(),
		ctx:       ctx,
		cancel:    cancel,
		behaviors: make(map[cluster.Role]cluster.Behavior),
		actors:    make(map[address.Address]*actor),
		nextLocal: make(map[address.NodeID]uint32),
		monitors:  make(map[address.Address][]chan cluster.Down),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.hasNode(r.local) {
		cancel()
		return nil, errors.NewClusterError("invalid local node", errors.ErrNodeNotFound).
			WithNode(r.local.String())
	}
	r.logger = r.logger.WithComponent("loopback")
	return r, nil
}

func (r *Runtime) hasNode(id address.NodeID) bool {
	return int(id) < len(r.nodes)
}

// Handle registers the behavior run by actors spawned with role.
// Registering a role again replaces its behavior for future spawns.
func (r *Runtime) Handle(role cluster.Role, behavior cluster.Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviors[role] = behavior
}

// LocalNode returns the node the caller runs on.
func (r *Runtime) LocalNode() address.NodeID {
	return r.local
}

// RemoteNodes returns every node but the local one, in id order.
func (r *Runtime) RemoteNodes() []address.NodeID {
	out := make([]address.NodeID, 0, len(r.nodes)-1)
	for i := range r.nodes {
		if id := address.NodeID(i); id != r.local {
			out = append(out, id)
		}
	}
	return out
}

// ProcessorCount returns the processors configured for node.
func (r *Runtime) ProcessorCount(node address.NodeID) int {
	if !r.hasNode(node) {
		return 0
	}
	return r.nodes[node].Processors
}

// WorkerCount returns the configured workers on node plus its live actors.
func (r *Runtime) WorkerCount(node address.NodeID) int {
	if !r.hasNode(node) {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.nodes[node].Workers
	for addr := range r.actors {
		if addr.Node == node {
			n++
		}
	}
	return n
}

// Attach registers a caller-driven actor on the local node. No goroutine is
// started; the caller reads the returned mailbox and calls Detach when done.
func (r *Runtime) Attach(role cluster.Role) (address.Address, *mailbox.Mailbox, error) {
	a, err := r.register(r.local, role, false)
	if err != nil {
		return address.Address{}, nil, err
	}
	r.logger.Debug("actor attached", "addr", a.addr.String(), "role", role.String())
	return a.addr, a.box, nil
}

// Detach unregisters an attached actor and closes its mailbox. Monitors
// see a normal exit.
func (r *Runtime) Detach(addr address.Address) {
	r.exit(addr, nil)
}

// Spawn starts an actor running role's behavior on node.
func (r *Runtime) Spawn(ctx context.Context, node address.NodeID, role cluster.Role) (address.Address, error) {
	if err := ctx.Err(); err != nil {
		return address.Address{}, err
	}
	if !r.hasNode(node) {
		return address.Address{}, errors.NewClusterError("spawn failed", errors.ErrNodeNotFound).
			WithNode(node.String())
	}

	r.mu.RLock()
	behavior, ok := r.behaviors[role]
	r.mu.RUnlock()
	if !ok {
		return address.Address{}, errors.NewClusterError(fmt.Sprintf("spawn %s failed", role), errors.ErrRoleNotRegistered).
			WithNode(node.String())
	}

	a, err := r.register(node, role, true)
	if err != nil {
		return address.Address{}, err
	}
	r.wg.Go(func() { r.run(a, behavior) })

	r.logger.Debug("actor spawned", "addr", a.addr.String(), "role", role.String())
	return a.addr, nil
}

func (r *Runtime) register(node address.NodeID, role cluster.Role, spawned bool) (*actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.NewClusterError("runtime is shut down", errors.ErrMailboxClosed).
			WithNode(node.String())
	}
	r.nextLocal[node]++
	addr := address.New(node, r.nextLocal[node])

	var boxOpts []mailbox.Option
	if r.bus != nil {
		boxOpts = append(boxOpts, mailbox.WithBus(r.bus))
	}

	ctx, cancel := context.WithCancelCause(r.ctx)
	a := &actor{
		rt:      r,
		addr:    addr,
		role:    role,
		box:     mailbox.New(addr, boxOpts...),
		ctx:     ctx,
		cancel:  cancel,
		spawned: spawned,
	}
	r.actors[addr] = a
	return a, nil
}

// run executes a behavior and reports its exit. A panic becomes an
// abnormal exit rather than crashing the process.
func (r *Runtime) run(a *actor, behavior cluster.Behavior) {
	var err error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("actor panicked: %v", rec)
			}
		}()
		err = behavior(a.ctx, a)
	}()

	if cause := context.Cause(a.ctx); cause != nil && cause != context.Canceled && err == nil {
		err = cause
	}
	r.exit(a.addr, err)
}

// exit unregisters addr and notifies its monitors.
func (r *Runtime) exit(addr address.Address, reason error) {
	r.mu.Lock()
	a, ok := r.actors[addr]
	delete(r.actors, addr)
	watchers := r.monitors[addr]
	delete(r.monitors, addr)
	r.mu.Unlock()

	if !ok {
		return
	}
	a.box.Close()
	a.cancel(nil)

	if reason != nil {
		r.logger.Warn("actor exited abnormally", "addr", addr.String(), "role", a.role.String(), "error", reason.Error())
	} else {
		r.logger.Debug("actor exited", "addr", addr.String(), "role", a.role.String())
	}
	for _, ch := range watchers {
		if reason != nil {
			ch <- cluster.Down{Addr: addr, Reason: reason}
		}
		close(ch)
	}
}

// Kill stops the actor at addr as if it had failed with reason.
func (r *Runtime) Kill(addr address.Address, reason error) error {
	r.mu.RLock()
	a, ok := r.actors[addr]
	r.mu.RUnlock()
	if !ok {
		return errors.NewClusterError("kill failed", errors.ErrActorNotFound).WithAddress(addr.String())
	}
	if reason == nil {
		reason = fmt.Errorf("killed")
	}
	if !a.spawned {
		r.exit(addr, reason)
		return nil
	}
	a.cancel(reason)
	a.box.Close()
	return nil
}

// Monitor returns a channel that yields one Down if addr exits abnormally.
// The channel is closed when the actor exits or ctx is done.
func (r *Runtime) Monitor(ctx context.Context, addr address.Address) (<-chan cluster.Down, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[addr]; !ok {
		return nil, errors.NewClusterError("monitor failed", errors.ErrActorNotFound).WithAddress(addr.String())
	}
	ch := make(chan cluster.Down, 1)
	r.monitors[addr] = append(r.monitors[addr], ch)

	context.AfterFunc(ctx, func() { r.unmonitor(addr, ch) })
	return ch, nil
}

func (r *Runtime) unmonitor(addr address.Address, ch chan cluster.Down) {
	r.mu.Lock()
	defer r.mu.Unlock()

	watchers := r.monitors[addr]
	i := slices.Index(watchers, ch)
	if i < 0 {
		return
	}
	r.monitors[addr] = slices.Delete(watchers, i, i+1)
	close(ch)
}

// Send delivers msg to the actor at msg.To.
func (r *Runtime) Send(msg mailbox.Message) error {
	r.mu.RLock()
	a, ok := r.actors[msg.To]
	r.mu.RUnlock()
	if !ok {
		return errors.NewClusterError(fmt.Sprintf("send %s failed", msg.Type), errors.ErrActorNotFound).
			WithAddress(msg.To.String())
	}
	if err := a.box.Deliver(msg); err != nil {
		return errors.NewClusterError(fmt.Sprintf("send %s failed", msg.Type), err).
			WithAddress(msg.To.String())
	}
	return nil
}

// Actors returns the number of registered actors.
func (r *Runtime) Actors() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}

// Shutdown stops every actor and waits for spawned goroutines to return.
// Attached mailboxes are closed. Further spawns fail.
func (r *Runtime) Shutdown() {
	r.mu.Lock()
	r.closed = true
	addrs := make([]address.Address, 0, len(r.actors))
	for addr := range r.actors {
		addrs = append(addrs, addr)
	}
	r.mu.Unlock()

	r.cancel()
	for _, addr := range addrs {
		r.mu.RLock()
		a, ok := r.actors[addr]
		r.mu.RUnlock()
		if ok {
			a.box.Close()
		}
	}
	r.wg.Wait()

	// Attached actors have no goroutine to report their exit.
	for _, addr := range addrs {
		r.exit(addr, nil)
	}
}

// actor is the cluster.Actor handle handed to behaviors.
type actor struct {
	rt     *Runtime
	addr   address.Address
	role   cluster.Role
	box    *mailbox.Mailbox
	ctx    context.Context
	cancel context.CancelCauseFunc

	// spawned is false for attached actors, which have no goroutine.
	spawned bool
}

func (a *actor) Addr() address.Address     { return a.addr }
func (a *actor) Mailbox() *mailbox.Mailbox { return a.box }

func (a *actor) Send(msg mailbox.Message) error {
	if msg.From.IsZero() {
		msg.From = a.addr
	}
	return a.rt.Send(msg)
}
