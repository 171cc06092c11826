package address

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID identifies a cluster node.
type NodeID uint16

// String returns the decimal form of the node id.
func (n NodeID) String() string {
	return strconv.FormatUint(uint64(n), 10)
}

// Address identifies one actor: the node it lives on and its id local to
// that node.
type Address struct {
	Node  NodeID
	Local uint32
}

// New returns the address of actor local on node.
func New(node NodeID, local uint32) Address {
	return Address{Node: node, Local: local}
}

// IsZero reports whether a is the zero address.
// Local id 0 is never handed out by a runtime, so the zero address means
// "no actor".
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the "node:local" text form.
func (a Address) String() string {
	return fmt.Sprintf("%d:%d", a.Node, a.Local)
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Parse parses the "node:local" text form.
func Parse(s string) (Address, error) {
	nodePart, localPart, ok := strings.Cut(s, ":")
	if !ok {
		return Address{}, fmt.Errorf("address %q: missing ':' separator", s)
	}
	node, err := strconv.ParseUint(nodePart, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("address %q: invalid node id: %w", s, err)
	}
	local, err := strconv.ParseUint(localPart, 10, 32)
	if err != nil {
		return Address{}, fmt.Errorf("address %q: invalid local id: %w", s, err)
	}
	return Address{Node: NodeID(node), Local: uint32(local)}, nil
}
