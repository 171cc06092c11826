package loopback

import (
	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/logging"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithBus attaches an event bus to every mailbox the runtime creates.
func WithBus(bus *event.Bus) Option {
	return func(r *Runtime) {
		r.bus = bus
	}
}

// WithLogger sets the runtime logger. Defaults to logging.NopLogger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLocalNode selects which node the caller runs on. Defaults to node 0.
func WithLocalNode(id address.NodeID) Option {
	return func(r *Runtime) {
		r.local = id
	}
}
