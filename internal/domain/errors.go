package domain

import "fmt"

// ConfigurationError reports an invalid engine configuration. It is raised
// at construction time, never silently corrected.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

// ValidationError reports an affect dimension outside [-1, 1]. Out-of-range
// values are rejected rather than clamped.
type ValidationError struct {
	Dimension string
	Value     float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("affect %s out of range [-1, 1]: %g", e.Dimension, e.Value)
}

// ExecutionError wraps a sink failure inside a Failed execution result.
type ExecutionError struct {
	Index int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("deliver action %d: %v", e.Index, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
