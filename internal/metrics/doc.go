// Package metrics exports dispatcher activity as Prometheus metrics.
//
// A [Collector] subscribes to an [event.Bus] and turns the events the
// coordinator, the overseers and the loopback runtime publish into counters,
// gauges and histograms. The coordinator never calls the collector
// directly, so a coordinator built without a bus, or with a bus nobody
// collects from, behaves identically.
//
// Metrics are registered on the [prometheus.Registerer] passed to
// [NewCollector]. Tests pass a fresh [prometheus.Registry]; the CLI passes
// the registry it serves on /metrics.
//
// # Exported Metrics
//
// All names carry the configured namespace prefix.
//
//   - tasks_enqueued_total, tasks_dispatched_total
//   - tasks_completed_total{status}, task_late_completions_total
//   - task_duration_seconds{status}
//   - queue_depth{queue} for pending, in_progress, completed and ready
//   - overseers, overseers_planned{node}, overseer_failures_total
//   - state_transitions_total{from,to}, coordinator_state{state}
//   - messages_delivered_total{type}
package metrics
