package config

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "demo.tasks")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// metricNamespaceRegex matches a valid Prometheus metric name prefix
var metricNamespaceRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateCoordinator()...)
	errors = append(errors, c.validateCluster()...)
	errors = append(errors, c.validateDemo()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateMetrics()...)

	return errors
}

// validateCoordinator validates the CoordinatorConfig
func (c *Config) validateCoordinator() []ValidationError {
	var errors []ValidationError

	nonNegative := []struct {
		field string
		value int
	}{
		{"coordinator.local_reserved_processors", c.Coordinator.LocalReservedProcessors},
		{"coordinator.remote_reserved_processors", c.Coordinator.RemoteReservedProcessors},
		{"coordinator.max_overseers_per_node", c.Coordinator.MaxOverseersPerNode},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "must be non-negative",
			})
		}
	}

	return errors
}

// validateCluster validates the ClusterConfig
func (c *Config) validateCluster() []ValidationError {
	var errors []ValidationError

	if len(c.Cluster.Nodes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "cluster.nodes",
			Value:   c.Cluster.Nodes,
			Message: "at least one node is required",
		})
		return errors
	}

	// Node ids are uint16
	const maxNodes = 1 << 16
	if len(c.Cluster.Nodes) > maxNodes {
		errors = append(errors, ValidationError{
			Field:   "cluster.nodes",
			Value:   len(c.Cluster.Nodes),
			Message: fmt.Sprintf("exceeds maximum of %d nodes", maxNodes),
		})
	}

	if c.Cluster.LocalNode < 0 || c.Cluster.LocalNode >= len(c.Cluster.Nodes) {
		errors = append(errors, ValidationError{
			Field:   "cluster.local_node",
			Value:   c.Cluster.LocalNode,
			Message: fmt.Sprintf("must be between 0 and %d", len(c.Cluster.Nodes)-1),
		})
	}

	for i, n := range c.Cluster.Nodes {
		prefix := "cluster.nodes[" + strconv.Itoa(i) + "]"
		if n.Processors < 1 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".processors",
				Value:   n.Processors,
				Message: "must be at least 1",
			})
		}
		if n.Workers < 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".workers",
				Value:   n.Workers,
				Message: "must be non-negative",
			})
		}
	}

	return errors
}

// validateDemo validates the DemoConfig
func (c *Config) validateDemo() []ValidationError {
	var errors []ValidationError

	if c.Demo.Tasks < 0 {
		errors = append(errors, ValidationError{
			Field:   "demo.tasks",
			Value:   c.Demo.Tasks,
			Message: "must be non-negative",
		})
	}

	if c.Demo.Dimensions < 1 {
		errors = append(errors, ValidationError{
			Field:   "demo.dimensions",
			Value:   c.Demo.Dimensions,
			Message: "must be at least 1",
		})
	}

	if c.Demo.FailEvery < 0 {
		errors = append(errors, ValidationError{
			Field:   "demo.fail_every",
			Value:   c.Demo.FailEvery,
			Message: "must be non-negative",
		})
	}

	// One minute per task is far beyond anything the demo needs
	const maxTaskDelayMs = 60000
	if c.Demo.TaskDelayMs < 0 || c.Demo.TaskDelayMs > maxTaskDelayMs {
		errors = append(errors, ValidationError{
			Field:   "demo.task_delay_ms",
			Value:   c.Demo.TaskDelayMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxTaskDelayMs),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	if strings.ContainsRune(c.Logging.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "logging.dir",
			Value:   c.Logging.Dir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateMetrics validates the MetricsConfig
func (c *Config) validateMetrics() []ValidationError {
	var errors []ValidationError

	if !metricNamespaceRegex.MatchString(c.Metrics.Namespace) {
		errors = append(errors, ValidationError{
			Field:   "metrics.namespace",
			Value:   c.Metrics.Namespace,
			Message: "must be a valid Prometheus metric name prefix",
		})
	}

	// The listen address only matters when the endpoint is served
	if !c.Metrics.Enabled {
		return errors
	}
	if _, port, err := net.SplitHostPort(c.Metrics.ListenAddr); err != nil {
		errors = append(errors, ValidationError{
			Field:   "metrics.listen_addr",
			Value:   c.Metrics.ListenAddr,
			Message: "must be in host:port form",
		})
	} else if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		errors = append(errors, ValidationError{
			Field:   "metrics.listen_addr",
			Value:   c.Metrics.ListenAddr,
			Message: "port must be between 0 and 65535",
		})
	}

	return errors
}
