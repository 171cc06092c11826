package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/lifecycle"
	"github.com/Iron-Ham/clusterexec/internal/logging"
)

// DefaultNamespace prefixes every metric unless the caller picks another.
const DefaultNamespace = "clusterexec"

// states lists the lifecycle states exported by coordinator_state.
var states = []lifecycle.State{
	lifecycle.StateJustCreated,
	lifecycle.StatePaused,
	lifecycle.StateRunning,
}

// Collector turns bus events into Prometheus metrics.
type Collector struct {
	// Task metrics
	tasksEnqueued   prometheus.Counter
	tasksDispatched prometheus.Counter
	tasksCompleted  *prometheus.CounterVec
	lateCompletions prometheus.Counter
	taskDuration    *prometheus.HistogramVec

	// Queue metrics
	queueDepth *prometheus.GaugeVec

	// Overseer metrics
	overseers        prometheus.Gauge
	overseersPlanned *prometheus.GaugeVec
	overseerFailures prometheus.Counter

	// Coordinator metrics
	stateTransitions *prometheus.CounterVec
	state            *prometheus.GaugeVec

	// Mailbox metrics
	messagesDelivered *prometheus.CounterVec

	logger *logging.Logger

	mu   sync.Mutex
	bus  *event.Bus
	subs []string
}

// NewCollector creates a collector whose metrics are registered on reg.
// An empty namespace selects DefaultNamespace. It panics if reg already
// holds metrics with the same names.
func NewCollector(namespace string, reg prometheus.Registerer, logger *logging.Logger) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.WithComponent("metrics"),
	}

	c.tasksEnqueued = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_enqueued_total",
		Help:      "Total number of tasks added to the pending queue",
	})

	c.tasksDispatched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_dispatched_total",
		Help:      "Total number of tasks handed to an overseer",
	})

	c.tasksCompleted = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks moved to the completed queue",
		},
		[]string{"status"}, // done, calcError
	)

	c.lateCompletions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_late_completions_total",
		Help:      "Completions that arrived with no in-progress entry",
	})

	c.taskDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Time from dispatch to completion",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	c.queueDepth = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current size of each coordinator container",
		},
		[]string{"queue"}, // pending, in_progress, completed, ready
	)

	c.overseers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overseers",
		Help:      "Overseers currently registered with the coordinator",
	})

	c.overseersPlanned = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overseers_planned",
			Help:      "Overseers placed on each node by the capacity planner",
		},
		[]string{"node"},
	)

	c.overseerFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "overseer_failures_total",
		Help:      "Overseers that exited abnormally",
	})

	c.stateTransitions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Coordinator lifecycle transitions",
		},
		[]string{"from", "to"},
	)

	c.state = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coordinator_state",
			Help:      "1 for the coordinator's current lifecycle state, 0 otherwise",
		},
		[]string{"state"},
	)

	c.messagesDelivered = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Messages delivered to actor mailboxes",
		},
		[]string{"type"},
	)

	c.setState(lifecycle.StateJustCreated.String())
	return c
}

// Attach subscribes the collector to bus. Attaching again moves the
// subscriptions to the new bus.
func (c *Collector) Attach(bus *event.Bus) {
	c.Detach()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bus = bus
	c.subs = []string{bus.SubscribeAll(c.handle)}
	c.logger.Debug("metrics collector attached")
}

// Detach removes the collector's subscriptions. Metric values are kept.
func (c *Collector) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bus == nil {
		return
	}
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
	c.bus = nil
	c.subs = nil
}

func (c *Collector) handle(e event.Event) {
	switch ev := e.(type) {
	case event.TaskEnqueuedEvent:
		c.tasksEnqueued.Inc()
		c.queueDepth.WithLabelValues("pending").Set(float64(ev.Pending))
	case event.TaskDispatchedEvent:
		c.tasksDispatched.Inc()
	case event.TaskCompletedEvent:
		c.tasksCompleted.WithLabelValues(ev.Status).Inc()
		if ev.Late {
			c.lateCompletions.Inc()
		}
		if ev.Duration > 0 {
			c.taskDuration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
		}
	case event.QueueDepthChangedEvent:
		c.queueDepth.WithLabelValues("pending").Set(float64(ev.Pending))
		c.queueDepth.WithLabelValues("in_progress").Set(float64(ev.InProgress))
		c.queueDepth.WithLabelValues("completed").Set(float64(ev.Completed))
		c.queueDepth.WithLabelValues("ready").Set(float64(ev.Ready))
		c.overseers.Set(float64(ev.Overseers))
	case event.CapacityPlannedEvent:
		c.overseersPlanned.Reset()
		for node, n := range ev.PerNode {
			c.overseersPlanned.WithLabelValues(node).Set(float64(n))
		}
	case event.OverseerSpawnedEvent:
		c.overseers.Inc()
	case event.OverseerDownEvent:
		c.overseerFailures.Inc()
	case event.StateChangedEvent:
		c.stateTransitions.WithLabelValues(ev.From, ev.To).Inc()
		c.setState(ev.To)
	case event.MessageDeliveredEvent:
		c.messagesDelivered.WithLabelValues(ev.MessageType).Inc()
	}
}

func (c *Collector) setState(current string) {
	for _, s := range states {
		v := 0.0
		if s.String() == current {
			v = 1
		}
		c.state.WithLabelValues(s.String()).Set(v)
	}
}
