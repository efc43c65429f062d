package apperr

import (
	"errors"
	"fmt"
)

// Sentinels for the failure kinds the API distinguishes. Callers match with
// errors.Is and decide the HTTP status at the boundary.
var (
	// ErrNotFound marks a missing scenario, model, or link row.
	ErrNotFound = errors.New("not found")
	// ErrStorageUnavailable marks a blob upload/download transport failure.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrPersistence marks a failed write against the metadata store.
	ErrPersistence = errors.New("persistence failure")
	// ErrModelLoad marks artifact bytes that do not deserialize into a scorer.
	ErrModelLoad = errors.New("model artifact load failure")
	// ErrNoPreviousModel marks a rollback with no history to roll back to.
	ErrNoPreviousModel = errors.New("no previous model available")
	// ErrModelNotLoaded marks a prediction attempt against an empty cache.
	ErrModelNotLoaded = errors.New("no model loaded")
)

// ValidationError reports a malformed or incomplete request payload and
// names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing required field: %s", e.Field)
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// InferError wraps a failure raised by the scoring object during execution.
// The underlying failure never escapes with its original type.
type InferError struct {
	Err error
}

func (e *InferError) Error() string {
	return fmt.Sprintf("inference execution failed: %v", e.Err)
}

func (e *InferError) Unwrap() error { return e.Err }
