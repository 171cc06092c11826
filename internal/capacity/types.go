package capacity

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/clusterexec/internal/address"
)

// NodeCapacity is the load snapshot of one node used as planner input.
type NodeCapacity struct {
	Node       address.NodeID `yaml:"node"`
	Processors int            `yaml:"processors"`
	Workers    int            `yaml:"workers"`
	Local      bool           `yaml:"local"`
}

// Placement lists the node of every overseer to spawn, grouped by node in
// planner input order.
type Placement []address.NodeID

// Count returns how many overseers go on node.
func (p Placement) Count(node address.NodeID) int {
	n := 0
	for _, id := range p {
		if id == node {
			n++
		}
	}
	return n
}

// Nodes returns the distinct nodes in first-appearance order.
func (p Placement) Nodes() []address.NodeID {
	seen := make(map[address.NodeID]bool, len(p))
	var nodes []address.NodeID
	for _, id := range p {
		if !seen[id] {
			seen[id] = true
			nodes = append(nodes, id)
		}
	}
	return nodes
}

// PerNode returns the overseer count keyed by node id text.
func (p Placement) PerNode() map[string]int {
	out := make(map[string]int)
	for _, id := range p {
		out[id.String()]++
	}
	return out
}

// String renders the placement as "node0x3, node1x5".
func (p Placement) String() string {
	if len(p) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(p))
	for _, node := range p.Nodes() {
		parts = append(parts, fmt.Sprintf("node%sx%d", node, p.Count(node)))
	}
	return strings.Join(parts, ", ")
}
