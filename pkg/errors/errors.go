package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures the crawl engine can surface
type ErrorType string

const (
	ErrorTypeResolutionTimeout ErrorType = "resolution_timeout"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeMalformedEntry    ErrorType = "malformed_entry"
	ErrorTypeTransport         ErrorType = "transport"
	ErrorTypeRemoteAction      ErrorType = "remote_action"
	ErrorTypeStorage           ErrorType = "storage"
	ErrorTypeStartup           ErrorType = "startup"
	ErrorTypeUnknown           ErrorType = "unknown"
)

// Error carries a failure classification alongside the message
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// TypeOf returns the classification of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given classification
func Is(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsFatal reports whether err must tear the process down.
// Only startup failures are fatal; everything else is absorbed at a boundary.
func IsFatal(err error) bool {
	return Is(err, ErrorTypeStartup)
}

// IsRetryable reports whether an operation of this classification is worth
// another attempt
func IsRetryable(t ErrorType) bool {
	switch t {
	case ErrorTypeTransport, ErrorTypeRemoteAction, ErrorTypeUnknown:
		return true
	case ErrorTypeNotFound, ErrorTypeMalformedEntry, ErrorTypeResolutionTimeout, ErrorTypeStorage, ErrorTypeStartup:
		return false
	default:
		return false
	}
}
