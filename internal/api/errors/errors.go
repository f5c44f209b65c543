package errors

import (
	"fmt"
	"net/http"

	apperrors "interview-capture/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindBadRequest  ErrorKind = "bad_request"
	KindNotFound    ErrorKind = "not_found"
	KindNotEligible ErrorKind = "not_eligible"
	KindConflict    ErrorKind = "conflict"
	KindStorage     ErrorKind = "storage"
	KindMerge       ErrorKind = "merge"
	KindInternal    ErrorKind = "internal"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest, KindNotEligible:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// FromError maps a core error onto its API form. Messages of storage, merge and
// unclassified errors are replaced so internals do not leak to clients.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	switch {
	case apperrors.IsValidationError(err):
		return &APIError{Kind: KindValidation, Message: err.Error()}
	case apperrors.Is(err, apperrors.ErrNotFound):
		return &APIError{Kind: KindNotFound, Message: err.Error()}
	case apperrors.Is(err, apperrors.ErrNotEligible):
		return &APIError{Kind: KindNotEligible, Message: err.Error()}
	case apperrors.Is(err, apperrors.ErrConflict):
		return &APIError{Kind: KindConflict, Message: err.Error()}
	case apperrors.Is(err, apperrors.ErrMerge):
		return &APIError{Kind: KindMerge, Message: "media merge failed"}
	case apperrors.Is(err, apperrors.ErrStorage):
		return &APIError{Kind: KindStorage, Message: "storage failure"}
	default:
		return &APIError{Kind: KindInternal, Message: "Internal server error"}
	}
}
