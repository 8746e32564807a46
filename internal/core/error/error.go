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
	// DatabaseErrorMessage describes relational store failures.
	DatabaseErrorMessage = "database operation failed"
	// DatabaseNotFoundMessage describes a missing row.
	DatabaseNotFoundMessage = "record not found"
)

// Kind classifies an error for reply shaping at the dialogue boundary.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindInput       Kind = "input"
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindPersistence Kind = "persistence"
	KindCommit      Kind = "commit"
	KindSecurity    Kind = "security"
)

var (
	// ErrSessionNotFound is returned by session stores for missing or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrVersionConflict is returned when a session was modified by another writer.
	ErrVersionConflict = errors.New("session version conflict")
	// ErrDuplicateName is returned when an active club already uses the requested name.
	ErrDuplicateName = errors.New("club name already taken")
)

// AppError wraps an underlying error with an HTTP status, a kind and safe message.
type AppError struct {
	Err     error
	Status  int
	Kind    Kind
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
		Kind:    KindUnknown,
		Message: message,
	}
}

// WithKind returns a copy of e tagged with kind.
func (e *AppError) WithKind(kind Kind) *AppError {
	cp := *e
	cp.Kind = kind
	return &cp
}

// Input marks a request that was rejected before any dialogue logic ran.
func Input(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Kind: KindInput, Message: message}
}

// Persistence wraps a session store failure.
func Persistence(err error, message string) *AppError {
	return &AppError{Err: err, Status: http.StatusServiceUnavailable, Kind: KindPersistence, Message: message}
}

// Commit wraps an entity repository failure during final creation.
func Commit(err error, message string) *AppError {
	return &AppError{Err: err, Status: http.StatusInternalServerError, Kind: KindCommit, Message: message}
}

// Security wraps a sanitizer failure or disallowed content.
func Security(err error, message string) *AppError {
	return &AppError{Err: err, Status: http.StatusUnprocessableEntity, Kind: KindSecurity, Message: message}
}

// KindOf reports the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
