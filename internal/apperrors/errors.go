// Package apperrors defines the error kinds surfaced by generation, history
// and configuration operations.
package apperrors

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when a setting required by the requested
// operation is absent or unusable.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("configuration: %s: %s", e.Setting, e.Message)
	}
	return fmt.Sprintf("configuration: %s is required", e.Setting)
}

func Missing(setting string) error {
	return &ConfigurationError{Setting: setting}
}

func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// InferenceError is returned when the endpoint reports an error or the
// invocation itself fails.
type InferenceError struct {
	Endpoint string
	ID       string
	Name     string
	Message  string
	Err      error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference on %s failed: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("inference on %s failed: %s (%s): %s", e.Endpoint, e.Name, e.ID, e.Message)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

func IsInferenceError(err error) bool {
	var target *InferenceError
	return errors.As(err, &target)
}

// PersistenceError is returned when an object or index operation fails.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsPersistenceError(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

// ValidationError is returned for malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// PartialDeleteWarning reports a bulk object delete that confirmed fewer
// deletions than requested. The index record is left in place so the
// delete can be retried.
type PartialDeleteWarning struct {
	GenerationID string
	Requested    int
	Deleted      int
}

func (w *PartialDeleteWarning) Error() string {
	return fmt.Sprintf("generation %s: deleted %d of %d objects, index record kept", w.GenerationID, w.Deleted, w.Requested)
}

func IsPartialDeleteWarning(err error) bool {
	var target *PartialDeleteWarning
	return errors.As(err, &target)
}

// Kind names the error kind for API responses.
func Kind(err error) string {
	switch {
	case IsConfigurationError(err):
		return "configuration"
	case IsValidationError(err):
		return "validation"
	case IsInferenceError(err):
		return "inference"
	case IsPersistenceError(err):
		return "persistence"
	case IsPartialDeleteWarning(err):
		return "partial_delete"
	default:
		return "internal"
	}
}
