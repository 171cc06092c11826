// Package logging provides structured logging for the coordinator and the
// actors it drives.
//
// It wraps log/slog with a JSON handler and adds persistent context
// attributes so that every line written on behalf of a coordinator, a node
// or a component can be filtered after the fact.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/clusterexec", "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithCoordinator(id).WithComponent("dispatch")
//	log.Info("task dispatched", "task_id", 7, "overseer", "1:3")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"task dispatched","coordinator_id":"...","component":"dispatch","task_id":7,"overseer":"1:3"}
//
// An empty directory sends output to stderr. [NopLogger] discards
// everything and is what tests use.
//
// # Log Rotation
//
// File output goes through a [RotatingWriter]. When the file would exceed
// MaxSizeMB it is renamed to coordinator.log.1 (older backups shift up to
// MaxBackups) and a fresh file is opened. With Compress set, backups are
// gzipped in the background; Close waits for pending compressions.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package logging
