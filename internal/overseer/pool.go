package overseer

import (
	"slices"
	"sync"

	"github.com/Iron-Ham/clusterexec/internal/address"
)

// Pool is the set of overseers known to a coordinator.
// It is safe for concurrent use; the coordinator mutates it from its loop
// and observers read counts from other goroutines.
type Pool struct {
	mu      sync.Mutex
	all     []address.Address
	members map[address.Address]bool
	ready   []address.Address
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		members: make(map[address.Address]bool),
	}
}

// Add registers a spawned overseer. Returns false if it was already known.
func (p *Pool) Add(addr address.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.members[addr] {
		return false
	}
	p.members[addr] = true
	p.all = append(p.all, addr)
	return true
}

// Contains reports whether addr is a registered overseer.
func (p *Pool) Contains(addr address.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.members[addr]
}

// Remove drops addr from the pool and from every ready entry.
// Returns false if addr was not registered.
func (p *Pool) Remove(addr address.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ready = slices.DeleteFunc(p.ready, func(a address.Address) bool { return a == addr })
	if !p.members[addr] {
		return false
	}
	delete(p.members, addr)
	p.all = slices.DeleteFunc(p.all, func(a address.Address) bool { return a == addr })
	return true
}

// MarkReady appends addr to the ready queue and returns the queue length.
// The queue is not deduplicated; an overseer that reports ready twice is
// offered two tasks.
func (p *Pool) MarkReady(addr address.Address) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ready = append(p.ready, addr)
	return len(p.ready)
}

// PopReady removes and returns the longest-idle overseer.
func (p *Pool) PopReady() (address.Address, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.ready) == 0 {
		return address.Address{}, false
	}
	addr := p.ready[0]
	p.ready = p.ready[1:]
	return addr, true
}

// ReadyLen returns the number of queued ready entries.
func (p *Pool) ReadyLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ready)
}

// Len returns the number of registered overseers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

// All returns the registered overseers in spawn order.
func (p *Pool) All() []address.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.all)
}

// Ready returns the ready queue, oldest first.
func (p *Pool) Ready() []address.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.ready)
}
