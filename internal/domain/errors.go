// Package domain defines core types, interfaces, and errors for the admin console.
package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrSessionUnavailable is returned when no warehouse session can be used.
var ErrSessionUnavailable = errors.New("warehouse session unavailable")

// AllocationError indicates a sequence could not produce a value.
type AllocationError struct {
	Sequence string
	Err      error
}

func (e *AllocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("allocate from sequence %s", e.Sequence)
	}
	return fmt.Sprintf("allocate from sequence %s: %v", e.Sequence, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// InsertError indicates an append to a log table failed. ID is the value
// that was allocated for the lost row.
type InsertError struct {
	Table string
	ID    int64
	Err   error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert id %d into %s: %v", e.ID, e.Table, e.Err)
}

func (e *InsertError) Unwrap() error { return e.Err }

// ActionError indicates the warehouse rejected an administrative statement.
type ActionError struct {
	Command string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Command, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
