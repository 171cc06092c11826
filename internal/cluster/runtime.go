package cluster

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/mailbox"
)

// Role names the behavior an actor runs. Spawn requests are made by role so
// the runtime decides what code backs an address.
type Role string

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Down reports that a monitored actor exited abnormally.
type Down struct {
	Addr   address.Address
	Reason error
}

// String returns a human-readable description of the failure.
func (d Down) String() string {
	if d.Reason == nil {
		return fmt.Sprintf("%s down", d.Addr)
	}
	return fmt.Sprintf("%s down: %v", d.Addr, d.Reason)
}

// Topology describes the nodes of a cluster and their load.
type Topology interface {
	// LocalNode returns the node the caller runs on.
	LocalNode() address.NodeID

	// RemoteNodes returns every other node, in a stable order.
	RemoteNodes() []address.NodeID

	// ProcessorCount returns the number of processors on node, or 0 for an
	// unknown node.
	ProcessorCount(node address.NodeID) int

	// WorkerCount returns the number of actors currently running on node,
	// or 0 for an unknown node.
	WorkerCount(node address.NodeID) int
}

// Runtime is the actor runtime capability consumed by the coordinator.
type Runtime interface {
	Topology

	// Attach registers a caller-driven actor on the local node and returns
	// its address and mailbox. The caller reads the mailbox itself.
	Attach(role Role) (address.Address, *mailbox.Mailbox, error)

	// Spawn starts a new actor running role's behavior on node.
	Spawn(ctx context.Context, node address.NodeID, role Role) (address.Address, error)

	// Monitor returns a channel that receives one Down if the actor at addr
	// exits abnormally. The channel is closed when the actor exits for any
	// reason or ctx is cancelled.
	Monitor(ctx context.Context, addr address.Address) (<-chan Down, error)

	// Send delivers msg to msg.To. Delivery between two addresses is
	// reliable and ordered.
	Send(msg mailbox.Message) error
}

// Actor is the handle a spawned behavior uses to reach the runtime.
type Actor interface {
	// Addr returns the actor's own address.
	Addr() address.Address

	// Mailbox returns the actor's inbox.
	Mailbox() *mailbox.Mailbox

	// Send delivers msg to msg.To. From is filled in with Addr when zero.
	Send(msg mailbox.Message) error
}

// Behavior is the code run by a spawned actor. Returning nil is a normal
// exit. Returning an error or panicking is an abnormal exit and is
// reported to monitors as a Down.
type Behavior func(ctx context.Context, self Actor) error
