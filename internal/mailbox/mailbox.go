package mailbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/errors"
	"github.com/Iron-Ham/clusterexec/internal/event"
)

// Mailbox is an unbounded FIFO inbox owned by one actor.
type Mailbox struct {
	owner address.Address
	bus   *event.Bus

	mu     sync.Mutex
	queue  []Message
	closed bool

	// notify holds at most one pending wake-up for the receiver.
	notify chan struct{}
	done   chan struct{}
}

// New creates an open Mailbox owned by the actor at owner.
func New(owner address.Address, opts ...Option) *Mailbox {
	m := &Mailbox{
		owner:  owner,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Owner returns the address of the actor that reads this mailbox.
func (m *Mailbox) Owner() address.Address {
	return m.owner
}

// Deliver appends msg to the mailbox. It never blocks. Delivering to a
// closed mailbox returns errors.ErrMailboxClosed.
func (m *Mailbox) Deliver(msg Message) error {
	if !ValidateMessageType(msg.Type) {
		return fmt.Errorf("mailbox %s: unknown message type %q", m.owner, msg.Type)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("mailbox %s: %w", m.owner, errors.ErrMailboxClosed)
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}

	if m.bus != nil {
		m.bus.Publish(event.NewMessageDeliveredEvent(msg.From.String(), msg.To.String(), msg.Type.String()))
	}
	return nil
}

// Receive blocks until a message is available, the context is cancelled,
// or the mailbox is closed and drained. Messages still queued when Close is
// called are returned before errors.ErrMailboxClosed.
func (m *Mailbox) Receive(ctx context.Context) (Message, error) {
	for {
		if msg, ok := m.TryReceive(); ok {
			return msg, nil
		}

		m.mu.Lock()
		closed := m.closed
		m.mu.Unlock()
		if closed {
			return Message{}, fmt.Errorf("mailbox %s: %w", m.owner, errors.ErrMailboxClosed)
		}

		select {
		case <-m.notify:
		case <-m.done:
		case <-ctx.Done():
			return Message{}, ctx.Err()
		}
	}
}

// TryReceive returns the oldest message without blocking.
func (m *Mailbox) TryReceive() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Message{}, false
	}
	msg := m.queue[0]
	m.queue[0] = Message{}
	m.queue = m.queue[1:]
	return msg, true
}

// Len returns the number of undelivered messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close stops accepting new messages and wakes a blocked receiver. It is
// idempotent.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
}

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
