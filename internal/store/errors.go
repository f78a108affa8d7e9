package store

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when an operation is attempted on a store
// whose connection does not exist (never opened, or already closed).
var ErrNotInitialized = errors.New("store: not initialized")

// ValidationError reports a missing or malformed mandatory field. It is
// raised before any statement is issued, so no partial state is possible.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps an engine rejection (constraint, syntax, I/O). Op names
// the logical operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// SchemaError reports a failure in a destructive schema-fix path. Callers
// must treat the affected table as suspect.
type SchemaError struct {
	Op  string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("store: schema %s: %v", e.Op, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
