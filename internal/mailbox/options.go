package mailbox

import "github.com/Iron-Ham/clusterexec/internal/event"

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithBus attaches an event bus to the Mailbox. When set, a
// MessageDeliveredEvent is published after every successful Deliver.
func WithBus(bus *event.Bus) Option {
	return func(m *Mailbox) {
		m.bus = bus
	}
}
