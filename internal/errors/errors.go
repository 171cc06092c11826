// Package errors provides centralized error definitions and error handling utilities
// for clusterexec. It defines the dispatcher's sentinel errors, typed domain errors
// with context builders, and classification helpers.
//
// # Error Types
//
//   - ProtocolError: the coordinator and one of its peers disagree about the
//     protocol (a trigger not permitted in the current lifecycle state, or a
//     completion payload that cannot be decoded). Always fatal.
//   - ClusterError: the cluster runtime failed to spawn, monitor, or deliver to
//     an actor.
//   - TaskError: a single task's computation failed on an overseer. Recoverable
//     at the task level; the task is reported as calcError.
//
// # Usage
//
//	err := errors.NewProtocolError("trigger not permitted", errors.ErrTriggerNotPermitted).
//	    WithState("justCreated").
//	    WithTrigger("run")
//
//	if errors.IsFatal(err) {
//	    return err // halt the dispatch loop
//	}
//
// # Error Classification
//
//   - Fatal: protocol violations that must halt the coordinator
//   - Retryable: transient cluster errors that may succeed on retry
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require the coordinator to halt.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Protocol sentinel errors
var (
	// ErrTriggerNotPermitted indicates a lifecycle trigger fired from a state
	// that does not permit it.
	ErrTriggerNotPermitted = New("trigger not permitted in current state")
	// ErrUndecodablePayload indicates a wire payload could not be decoded.
	ErrUndecodablePayload = New("undecodable payload")
)

// Lifecycle sentinel errors
var (
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = New("already started")
	// ErrNotStarted indicates an operation requires a started component.
	ErrNotStarted = New("not started")
	// ErrMailboxClosed indicates a send to or receive from a closed mailbox.
	ErrMailboxClosed = New("mailbox closed")
)

// Cluster sentinel errors
var (
	// ErrActorNotFound indicates a message was addressed to an unknown actor.
	ErrActorNotFound = New("actor not found")
	// ErrNodeNotFound indicates a node id is not part of the cluster.
	ErrNodeNotFound = New("node not found")
	// ErrRoleNotRegistered indicates a spawn request for a role with no behavior.
	ErrRoleNotRegistered = New("role not registered")
)

// Task sentinel errors
var (
	// ErrComputationFailed indicates a task's computation returned an error.
	ErrComputationFailed = New("computation failed")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// DispatchError is the base interface for all typed errors in this module.
type DispatchError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsFatal returns true if the error must halt the coordinator.
	IsFatal() bool

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message   string
	cause     error
	severity  Severity
	fatal     bool
	retryable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsFatal returns whether the error must halt the coordinator.
func (e *baseError) IsFatal() bool {
	return e.fatal
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// format renders "prefix [k=v, ...]: message: cause".
func (e *baseError) format(prefix string, parts []string) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ProtocolError represents a desynchronization between the coordinator and a
// controller or overseer. It is always fatal.
//
// Example:
//
//	err := errors.NewProtocolError("cannot decode result", errors.ErrUndecodablePayload).
//	    WithMessageType("result").
//	    WithSender("1:4")
type ProtocolError struct {
	baseError
	State       string
	Trigger     string
	MessageType string
	Sender      string
	Payload     []byte
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(message string, cause error) *ProtocolError {
	return &ProtocolError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityCritical,
			fatal:    true,
		},
	}
}

// WithState adds the lifecycle state to the error context.
func (e *ProtocolError) WithState(state string) *ProtocolError {
	e.State = state
	return e
}

// WithTrigger adds the offending trigger to the error context.
func (e *ProtocolError) WithTrigger(trigger string) *ProtocolError {
	e.Trigger = trigger
	return e
}

// WithMessageType adds the message type being handled.
func (e *ProtocolError) WithMessageType(t string) *ProtocolError {
	e.MessageType = t
	return e
}

// WithSender adds the sender's address.
func (e *ProtocolError) WithSender(sender string) *ProtocolError {
	e.Sender = sender
	return e
}

// WithPayload keeps the raw payload so it can be inspected after the fact.
func (e *ProtocolError) WithPayload(p []byte) *ProtocolError {
	e.Payload = append([]byte(nil), p...)
	return e
}

// Error returns the formatted error message.
func (e *ProtocolError) Error() string {
	var parts []string
	if e.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", e.State))
	}
	if e.Trigger != "" {
		parts = append(parts, fmt.Sprintf("trigger=%s", e.Trigger))
	}
	if e.MessageType != "" {
		parts = append(parts, fmt.Sprintf("message=%s", e.MessageType))
	}
	if e.Sender != "" {
		parts = append(parts, fmt.Sprintf("sender=%s", e.Sender))
	}
	return e.format("protocol error", parts)
}

// Is checks if this error matches the target.
func (e *ProtocolError) Is(target error) bool {
	if _, ok := target.(*ProtocolError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ClusterError represents a failure of the cluster runtime: spawning,
// monitoring, or delivering a message to an actor.
//
// Example:
//
//	err := errors.NewClusterError("spawn failed", errors.ErrNodeNotFound).WithNode("3")
type ClusterError struct {
	baseError
	Node    string
	Address string
}

// NewClusterError creates a new ClusterError.
func NewClusterError(message string, cause error) *ClusterError {
	return &ClusterError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithNode adds a node id to the error context.
func (e *ClusterError) WithNode(node string) *ClusterError {
	e.Node = node
	return e
}

// WithAddress adds an actor address to the error context.
func (e *ClusterError) WithAddress(addr string) *ClusterError {
	e.Address = addr
	return e
}

// WithFatal marks the error as fatal for the coordinator.
func (e *ClusterError) WithFatal(f bool) *ClusterError {
	e.fatal = f
	if f {
		e.severity = SeverityCritical
	}
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *ClusterError) WithRetryable(r bool) *ClusterError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *ClusterError) Error() string {
	var parts []string
	if e.Node != "" {
		parts = append(parts, fmt.Sprintf("node=%s", e.Node))
	}
	if e.Address != "" {
		parts = append(parts, fmt.Sprintf("addr=%s", e.Address))
	}
	return e.format("cluster error", parts)
}

// Is checks if this error matches the target.
func (e *ClusterError) Is(target error) bool {
	if _, ok := target.(*ClusterError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TaskError represents the failure of a single task's computation.
type TaskError struct {
	baseError
	TaskID int64
}

// NewTaskError creates a new TaskError for the given task id.
func NewTaskError(taskID int64, cause error) *TaskError {
	return &TaskError{
		baseError: baseError{
			message:  "task computation failed",
			cause:    cause,
			severity: SeverityWarning,
		},
		TaskID: taskID,
	}
}

// Error returns the formatted error message.
func (e *TaskError) Error() string {
	return e.format("task error", []string{fmt.Sprintf("task=%d", e.TaskID)})
}

// Is checks if this error matches the target.
func (e *TaskError) Is(target error) bool {
	if _, ok := target.(*TaskError); ok {
		return true
	}
	if target == ErrComputationFailed {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsFatal returns true if the error must halt the coordinator.
// Protocol violations are always fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var de DispatchError
	if As(err, &de) {
		return de.IsFatal()
	}

	return Is(err, ErrTriggerNotPermitted) || Is(err, ErrUndecodablePayload)
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var de DispatchError
	if As(err, &de) {
		return de.IsRetryable()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement DispatchError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var de DispatchError
	if As(err, &de) {
		return de.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to spawn overseer")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to send to %s", addr)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
