package errors

import (
	stderrors "errors"
	"fmt"
)

// Error kinds. Every error produced by the core carries one of these so callers can
// branch with errors.Is regardless of the message.
var (
	// ErrStorage is a chunk, artifact or record write failure. Surfaced to the caller.
	ErrStorage = New("storage error")

	// ErrProvider is a transcription or scoring provider failure. Absorbed internally
	// and replaced with a documented default.
	ErrProvider = New("provider error")

	// ErrMerge is an encoder invocation failure. The artifact path stays unchanged.
	ErrMerge = New("merge error")

	// ErrNotEligible is returned when evaluate is called on a session that is not completed
	ErrNotEligible = New("session not eligible")

	// ErrConflict is returned when an evaluation already exists for a session
	ErrConflict = New("conflict")

	ErrNotFound     = New("not found")
	ErrInvalidInput = New("invalid input")
)

// Error represents a standardized error
type Error struct {
	message string
	kind    *Error
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Kinded creates an error of the given kind. cause may be nil.
func Kinded(kind *Error, cause error, format string, args ...interface{}) error {
	return &Error{
		message: fmt.Sprintf(format, args...),
		kind:    kind,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target, either by message or by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind != nil && e.kind == t {
		return true
	}
	return e.message == t.message
}

// Helper functions for common patterns

// Storage wraps a failed write or read of persisted state
func Storage(cause error, format string, args ...interface{}) error {
	return Kinded(ErrStorage, cause, format, args...)
}

// Provider wraps a failed external provider call
func Provider(cause error, format string, args ...interface{}) error {
	return Kinded(ErrProvider, cause, format, args...)
}

// Merge wraps a failed encoder invocation
func Merge(cause error, format string, args ...interface{}) error {
	return Kinded(ErrMerge, cause, format, args...)
}

// NotEligible reports an operation attempted in the wrong lifecycle state
func NotEligible(format string, args ...interface{}) error {
	return Kinded(ErrNotEligible, nil, format, args...)
}

// Conflict reports a uniqueness violation
func Conflict(format string, args ...interface{}) error {
	return Kinded(ErrConflict, nil, format, args...)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier interface{}) error {
	return Kinded(ErrNotFound, nil, "%s not found: %v", itemType, identifier)
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Kinded(ErrInvalidInput, nil, "%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Kinded(ErrInvalidInput, nil, "%s is invalid: %s", field, reason)
}

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(field string, min, max interface{}) error {
	return Kinded(ErrInvalidInput, nil, "%s out of range (must be between %v and %v)", field, min, max)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return stderrors.Is(err, ErrInvalidInput)
}

// Is is errors.Is, re-exported so callers need only this package
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
