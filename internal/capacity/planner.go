package capacity

import (
	"github.com/Iron-Ham/clusterexec/internal/cluster"
)

// Default planner values.
const (
	defaultLocalReserved  = 1
	defaultRemoteReserved = 0
	defaultMaxPerNode     = 0
)

// Option configures a Planner.
type Option func(*Planner)

// WithLocalReserved sets the processors kept free on the coordinator's own
// node.
func WithLocalReserved(n int) Option {
	return func(p *Planner) { p.localReserved = n }
}

// WithRemoteReserved sets the processors kept free on every other node.
func WithRemoteReserved(n int) Option {
	return func(p *Planner) { p.remoteReserved = n }
}

// WithMaxPerNode caps the overseers placed on a single node. Zero means
// no cap.
func WithMaxPerNode(n int) Option {
	return func(p *Planner) { p.maxPerNode = n }
}

// Planner computes overseer placements from node capacity.
// A Planner is immutable after construction and safe for concurrent use.
type Planner struct {
	localReserved  int
	remoteReserved int
	maxPerNode     int
}

// NewPlanner creates a Planner with the given options.
// Unset options use defaults.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		localReserved:  defaultLocalReserved,
		remoteReserved: defaultRemoteReserved,
		maxPerNode:     defaultMaxPerNode,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reserved returns the processors reserved on a node.
func (p *Planner) Reserved(local bool) int {
	if local {
		return p.localReserved
	}
	return p.remoteReserved
}

// Slots returns the number of overseers to place on one node.
func (p *Planner) Slots(n NodeCapacity) int {
	slots := max(0, n.Processors-p.Reserved(n.Local)-n.Workers/2)
	if p.maxPerNode > 0 {
		slots = min(slots, p.maxPerNode)
	}
	return slots
}

// Plan returns one placement entry per overseer to spawn, in node input
// order. Nodes with no spare capacity contribute nothing.
func (p *Planner) Plan(nodes []NodeCapacity) Placement {
	var placement Placement
	for _, n := range nodes {
		for range p.Slots(n) {
			placement = append(placement, n.Node)
		}
	}
	return placement
}

// Survey reads the current load of every node in topology: remote nodes
// first, then the local node.
func Survey(topology cluster.Topology) []NodeCapacity {
	remote := topology.RemoteNodes()
	nodes := make([]NodeCapacity, 0, len(remote)+1)
	for _, id := range remote {
		nodes = append(nodes, NodeCapacity{
			Node:       id,
			Processors: topology.ProcessorCount(id),
			Workers:    topology.WorkerCount(id),
		})
	}
	local := topology.LocalNode()
	nodes = append(nodes, NodeCapacity{
		Node:       local,
		Processors: topology.ProcessorCount(local),
		Workers:    topology.WorkerCount(local),
		Local:      true,
	})
	return nodes
}
