package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default config should be valid, got errors: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{
			name:   "negative local reserve",
			modify: func(c *Config) { c.Coordinator.LocalReservedProcessors = -1 },
			field:  "coordinator.local_reserved_processors",
		},
		{
			name:   "negative remote reserve",
			modify: func(c *Config) { c.Coordinator.RemoteReservedProcessors = -2 },
			field:  "coordinator.remote_reserved_processors",
		},
		{
			name:   "negative per-node cap",
			modify: func(c *Config) { c.Coordinator.MaxOverseersPerNode = -1 },
			field:  "coordinator.max_overseers_per_node",
		},
		{
			name:   "no nodes",
			modify: func(c *Config) { c.Cluster.Nodes = nil },
			field:  "cluster.nodes",
		},
		{
			name:   "local node out of range",
			modify: func(c *Config) { c.Cluster.LocalNode = 2 },
			field:  "cluster.local_node",
		},
		{
			name:   "negative local node",
			modify: func(c *Config) { c.Cluster.LocalNode = -1 },
			field:  "cluster.local_node",
		},
		{
			name:   "node without processors",
			modify: func(c *Config) { c.Cluster.Nodes[1].Processors = 0 },
			field:  "cluster.nodes[1].processors",
		},
		{
			name:   "negative workers",
			modify: func(c *Config) { c.Cluster.Nodes[0].Workers = -1 },
			field:  "cluster.nodes[0].workers",
		},
		{
			name:   "negative tasks",
			modify: func(c *Config) { c.Demo.Tasks = -1 },
			field:  "demo.tasks",
		},
		{
			name:   "zero dimensions",
			modify: func(c *Config) { c.Demo.Dimensions = 0 },
			field:  "demo.dimensions",
		},
		{
			name:   "negative fail_every",
			modify: func(c *Config) { c.Demo.FailEvery = -3 },
			field:  "demo.fail_every",
		},
		{
			name:   "task delay too long",
			modify: func(c *Config) { c.Demo.TaskDelayMs = 60001 },
			field:  "demo.task_delay_ms",
		},
		{
			name:   "invalid log level",
			modify: func(c *Config) { c.Logging.Level = "verbose" },
			field:  "logging.level",
		},
		{
			name:   "zero log size",
			modify: func(c *Config) { c.Logging.MaxSizeMB = 0 },
			field:  "logging.max_size_mb",
		},
		{
			name:   "huge log size",
			modify: func(c *Config) { c.Logging.MaxSizeMB = 1001 },
			field:  "logging.max_size_mb",
		},
		{
			name:   "negative backups",
			modify: func(c *Config) { c.Logging.MaxBackups = -1 },
			field:  "logging.max_backups",
		},
		{
			name:   "null byte in log dir",
			modify: func(c *Config) { c.Logging.Dir = "logs\x00" },
			field:  "logging.dir",
		},
		{
			name:   "bad metric namespace",
			modify: func(c *Config) { c.Metrics.Namespace = "9lives" },
			field:  "metrics.namespace",
		},
		{
			name: "listen address without port",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.ListenAddr = "localhost"
			},
			field: "metrics.listen_addr",
		},
		{
			name: "listen port out of range",
			modify: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.ListenAddr = ":70000"
			},
			field: "metrics.listen_addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("Validate() = %v, want exactly one error", errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestConfig_Validate_ListenAddrIgnoredWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.Metrics.ListenAddr = "not an address"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors while metrics are disabled", errs)
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Demo.Tasks = -1
	cfg.Demo.Dimensions = 0
	cfg.Logging.Level = "loud"
	cfg.Cluster.Nodes[0].Processors = 0

	if errs := cfg.Validate(); len(errs) != 4 {
		t.Errorf("Validate() returned %d errors, want 4: %v", len(errs), errs)
	}
}

func TestValidLogLevels(t *testing.T) {
	levels := ValidLogLevels()
	for _, want := range []string{"debug", "info", "warn", "error"} {
		found := false
		for _, l := range levels {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Errorf("ValidLogLevels() missing %q", want)
		}
	}
}
