package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// CLUSTEREXEC_DEMO_TASKS=100.
const EnvPrefix = "CLUSTEREXEC"

// Config represents the complete clusterexec configuration
type Config struct {
	Coordinator CoordinatorConfig `mapstructure:"coordinator" yaml:"coordinator"`
	Cluster     ClusterConfig     `mapstructure:"cluster" yaml:"cluster"`
	Demo        DemoConfig        `mapstructure:"demo" yaml:"demo"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// CoordinatorConfig controls overseer placement and shutdown
type CoordinatorConfig struct {
	// LocalReservedProcessors are kept free on the coordinator's node (default: 1)
	LocalReservedProcessors int `mapstructure:"local_reserved_processors" yaml:"local_reserved_processors"`
	// RemoteReservedProcessors are kept free on every other node (default: 0)
	RemoteReservedProcessors int `mapstructure:"remote_reserved_processors" yaml:"remote_reserved_processors"`
	// MaxOverseersPerNode caps overseers placed on one node, 0 = no cap
	MaxOverseersPerNode int `mapstructure:"max_overseers_per_node" yaml:"max_overseers_per_node"`
	// TerminateOverseersOnExit sends Terminate to every overseer when the
	// dispatch loop stops (default: true)
	TerminateOverseersOnExit bool `mapstructure:"terminate_overseers_on_exit" yaml:"terminate_overseers_on_exit"`
}

// ClusterConfig describes the in-process cluster used by the CLI
type ClusterConfig struct {
	// LocalNode is the index in Nodes the coordinator runs on (default: 0)
	LocalNode int `mapstructure:"local_node" yaml:"local_node"`
	// Nodes lists the simulated machines; node ids are list indices
	Nodes []NodeConfig `mapstructure:"nodes" yaml:"nodes"`
}

// NodeConfig describes one simulated machine
type NodeConfig struct {
	// Processors is the processor count reported for the node
	Processors int `mapstructure:"processors" yaml:"processors"`
	// Workers is the number of unrelated workers already running there
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// DemoConfig controls the workload submitted by `clusterexec run`
type DemoConfig struct {
	// Tasks is the number of tasks to enqueue (default: 20)
	Tasks int `mapstructure:"tasks" yaml:"tasks"`
	// Dimensions is the length of each random parameter vector (default: 3)
	Dimensions int `mapstructure:"dimensions" yaml:"dimensions"`
	// FailEvery makes every n-th computation fail, 0 = never
	FailEvery int `mapstructure:"fail_every" yaml:"fail_every"`
	// TaskDelayMs is the simulated computation time per task (default: 10)
	TaskDelayMs int `mapstructure:"task_delay_ms" yaml:"task_delay_ms"`
	// Seed seeds the parameter generator, 0 = time based
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// LoggingConfig controls coordinator logging
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where coordinator.log is written; empty logs to stderr
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Enabled serves /metrics while the coordinator runs (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// ListenAddr is the host:port the endpoint listens on (default: "127.0.0.1:9464")
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// Namespace prefixes every metric name (default: "clusterexec")
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Coordinator: CoordinatorConfig{
			LocalReservedProcessors:  1,
			RemoteReservedProcessors: 0,
			MaxOverseersPerNode:      0, // No cap
			TerminateOverseersOnExit: true,
		},
		Cluster: ClusterConfig{
			LocalNode: 0,
			Nodes: []NodeConfig{
				{Processors: 4, Workers: 0},
				{Processors: 8, Workers: 4},
			},
		},
		Demo: DemoConfig{
			Tasks:       20,
			Dimensions:  3,
			FailEvery:   0,
			TaskDelayMs: 10,
			Seed:        0, // Time based
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "", // stderr
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9464",
			Namespace:  "clusterexec",
		},
	}
}

// TaskDelay returns the simulated computation time as a time.Duration
func (c *DemoConfig) TaskDelay() time.Duration {
	return time.Duration(c.TaskDelayMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Coordinator defaults
	viper.SetDefault("coordinator.local_reserved_processors", defaults.Coordinator.LocalReservedProcessors)
	viper.SetDefault("coordinator.remote_reserved_processors", defaults.Coordinator.RemoteReservedProcessors)
	viper.SetDefault("coordinator.max_overseers_per_node", defaults.Coordinator.MaxOverseersPerNode)
	viper.SetDefault("coordinator.terminate_overseers_on_exit", defaults.Coordinator.TerminateOverseersOnExit)

	// Cluster defaults
	nodes := make([]map[string]any, len(defaults.Cluster.Nodes))
	for i, n := range defaults.Cluster.Nodes {
		nodes[i] = map[string]any{"processors": n.Processors, "workers": n.Workers}
	}
	viper.SetDefault("cluster.local_node", defaults.Cluster.LocalNode)
	viper.SetDefault("cluster.nodes", nodes)

	// Demo defaults
	viper.SetDefault("demo.tasks", defaults.Demo.Tasks)
	viper.SetDefault("demo.dimensions", defaults.Demo.Dimensions)
	viper.SetDefault("demo.fail_every", defaults.Demo.FailEvery)
	viper.SetDefault("demo.task_delay_ms", defaults.Demo.TaskDelayMs)
	viper.SetDefault("demo.seed", defaults.Demo.Seed)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.listen_addr", defaults.Metrics.ListenAddr)
	viper.SetDefault("metrics.namespace", defaults.Metrics.Namespace)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	cfg, err := Decode()
	if err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return cfg, nil
}

// Decode reads the configuration from viper without validating it
func Decode() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clusterexec")
	}
	// Fall back to ~/.config/clusterexec
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clusterexec"
	}
	return filepath.Join(home, ".config", "clusterexec")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
