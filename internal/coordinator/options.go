package coordinator

import (
	"time"

	"github.com/Iron-Ham/clusterexec/internal/capacity"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/logging"
)

type options struct {
	id                 string
	logger             *logging.Logger
	bus                *event.Bus
	planner            *capacity.Planner
	clock              func() time.Time
	terminateOverseers bool
}

// Option configures a Coordinator.
type Option func(*options)

// WithID overrides the generated coordinator id used in logs and events.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithLogger sets the logger. Defaults to logging.NopLogger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBus sets the event bus the coordinator publishes to. When unset the
// coordinator publishes to a private bus nobody listens on.
func WithBus(bus *event.Bus) Option {
	return func(o *options) {
		if bus != nil {
			o.bus = bus
		}
	}
}

// WithPlanner sets the capacity planner used at Start.
func WithPlanner(p *capacity.Planner) Option {
	return func(o *options) {
		if p != nil {
			o.planner = p
		}
	}
}

// WithClock replaces time.Now for dispatch and completion timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithTerminateOverseers controls whether the coordinator sends Terminate to
// every overseer when its loop exits. Enabled by default.
func WithTerminateOverseers(enabled bool) Option {
	return func(o *options) {
		o.terminateOverseers = enabled
	}
}
