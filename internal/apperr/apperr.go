// Package apperr defines the client/server error taxonomy shared by the
// inference core. Client errors are caused by the caller and map to 4xx
// responses; server errors map to 500 with an opaque message and a kind tag.
package apperr

import (
	"errors"
	"fmt"
)

// Class separates caller-caused failures from internal ones.
type Class int

const (
	ClassClient Class = iota + 1
	ClassServer
)

// Kind tags the failure for diagnostics.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidInput        Kind = "INVALID_INPUT"
	KindInvalidAudio        Kind = "INVALID_AUDIO"
	KindInvalidPipeline     Kind = "INVALID_PIPELINE"
	KindTaskMismatch        Kind = "TASK_MISMATCH"
	KindRegistryUnavailable Kind = "REGISTRY_UNAVAILABLE"
	KindBackendUnavailable  Kind = "BACKEND_UNAVAILABLE"
	KindInternal            Kind = "INTERNAL"
)

// Error is a classified error. Err keeps the original cause for logs only.
type Error struct {
	Err     error
	Message string
	Kind    Kind
	Class   Class
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Summary is the short form recorded in usage events.
func (e *Error) Summary() string {
	return string(e.Kind) + "_" + e.Message
}

// Client builds a caller-caused error.
func Client(kind Kind, message string, cause error) *Error {
	return &Error{Class: ClassClient, Kind: kind, Message: message, Err: cause}
}

// Server builds an internal error.
func Server(kind Kind, message string, cause error) *Error {
	return &Error{Class: ClassServer, Kind: kind, Message: message, Err: cause}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsClient reports whether err is a client error.
func IsClient(err error) bool {
	e, ok := As(err)
	return ok && e.Class == ClassClient
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// Summarize returns the usage-event error summary for err.
func Summarize(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Summary()
	}
	return err.Error()
}
