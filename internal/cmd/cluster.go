package cmd

import (
	"github.com/Iron-Ham/clusterexec/internal/address"
	"github.com/Iron-Ham/clusterexec/internal/capacity"
	"github.com/Iron-Ham/clusterexec/internal/cluster/loopback"
	"github.com/Iron-Ham/clusterexec/internal/config"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/logging"
)

// newLogger builds the logger described by cfg.Logging.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}

// newPlanner builds the capacity planner described by cfg.Coordinator.
func newPlanner(cfg *config.Config) *capacity.Planner {
	return capacity.NewPlanner(
		capacity.WithLocalReserved(cfg.Coordinator.LocalReservedProcessors),
		capacity.WithRemoteReserved(cfg.Coordinator.RemoteReservedProcessors),
		capacity.WithMaxPerNode(cfg.Coordinator.MaxOverseersPerNode),
	)
}

// newRuntime builds the in-process cluster described by cfg.Cluster. A nil
// bus leaves mailbox deliveries unpublished.
func newRuntime(cfg *config.Config, bus *event.Bus, logger *logging.Logger) (*loopback.Runtime, error) {
	nodes := make([]loopback.Node, len(cfg.Cluster.Nodes))
	for i, n := range cfg.Cluster.Nodes {
		nodes[i] = loopback.Node{Processors: n.Processors, Workers: n.Workers}
	}

	opts := []loopback.Option{
		loopback.WithLocalNode(address.NodeID(cfg.Cluster.LocalNode)),
		loopback.WithLogger(logger),
	}
	if bus != nil {
		opts = append(opts, loopback.WithBus(bus))
	}
	return loopback.New(nodes, opts...)
}
