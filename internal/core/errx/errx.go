package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
)

// Kind classifies a failure into the categories the orchestration layer
// reacts to. Only KindFatalSetup aborts a request before any execution;
// everything else resolves to a best-effort user-facing message.
type Kind string

const (
	KindFatalSetup     Kind = "fatal_setup"
	KindDegradedSetup  Kind = "degraded_setup"
	KindExecTimeout    Kind = "execution_timeout"
	KindExecFailure    Kind = "execution_failure"
	KindToolFailure    Kind = "tool_failure"
	KindRecursionGuard Kind = "recursion_guard"
	KindCleanupTimeout Kind = "cleanup_timeout"
)

// AppError wraps an underlying error with a kind, an HTTP status and a safe message.
type AppError struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NewKind creates an AppError tagged with a failure kind.
func NewKind(kind Kind, err error, message string) *AppError {
	return &AppError{
		Err:     err,
		Kind:    kind,
		Status:  http.StatusInternalServerError,
		Message: message,
	}
}

// KindOf extracts the failure kind from an error chain, or "" when untagged.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
