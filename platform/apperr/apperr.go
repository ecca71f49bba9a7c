// Package apperr provides standardized domain error types for the application.
// Domain functions return these typed errors, and the HTTP layer maps them to
// appropriate status codes. A Reason tag lets the presentation layer offer
// guided recovery (e.g. "this lead is lost, open the recovery flow") instead
// of a dead-end error message.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates invalid input data.
	KindValidation
	// KindInvalidTransition indicates an operation that is not valid for the
	// record's current status (e.g. logging a call against a lost lead).
	KindInvalidTransition
	// KindPreconditionFailed indicates a missing prerequisite the caller can
	// satisfy through another operation first.
	KindPreconditionFailed
	// KindConflict indicates a conflict with existing state (e.g., duplicate).
	KindConflict
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed or invalid request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Reason tags carried by domain errors. The HTTP layer forwards them verbatim
// so clients can branch on them without parsing messages.
const (
	ReasonLeadLost       = "LEAD_LOST"
	ReasonLeadEnrolled   = "LEAD_ENROLLED"
	ReasonNoAttempt      = "NO_ATTEMPT"
	ReasonMaxAttempts    = "MAX_ATTEMPTS"
	ReasonNegativeAmount = "NEGATIVE_AMOUNT"
	ReasonUnknownAgent   = "UNKNOWN_AGENT"
	ReasonEmptyAgentSet  = "EMPTY_AGENT_SET"
	ReasonEmptyLeadSet   = "EMPTY_LEAD_SET"
	ReasonMissingContact = "MISSING_CONTACT"
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Reason  string      // Machine-readable reason tag (optional)
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithReason returns the error with the machine-readable reason tag set.
func (e *Error) WithReason(reason string) *Error {
	e.Reason = reason
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// Convenience constructors for common error types.

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// InvalidTransition creates an invalid status transition error.
func InvalidTransition(message string) *Error {
	return New(KindInvalidTransition, message)
}

// PreconditionFailed creates a precondition error with its reason tag.
func PreconditionFailed(message, reason string) *Error {
	return New(KindPreconditionFailed, message).WithReason(reason)
}

// Conflict creates a conflict error (e.g., duplicate resource).
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the error kind from an error.
// Returns KindUnknown if the error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}

// GetReason extracts the reason tag from an error, or "" when absent.
func GetReason(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Reason
	}
	return ""
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
