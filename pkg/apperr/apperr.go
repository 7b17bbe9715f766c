// Package apperr defines the error taxonomy shared by stores, services and handlers.
//
// Stores return these (optionally wrapping the driver error) so handlers can map
// them to HTTP status codes without inspecting driver internals.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindRendering
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindRendering:
		return "rendering_failed"
	case KindStorage:
		return "storage_failed"
	default:
		return "internal"
	}
}

// Error is a classified error. Msg is safe to show to API callers for client-fault kinds.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a client-fault input error.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

// NotFound reports a missing entity.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// Conflict reports a uniqueness violation on explicit create.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }

// Unauthorized reports missing or invalid credentials.
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Rendering wraps a document rendering failure.
func Rendering(err error) *Error {
	return &Error{Kind: KindRendering, Msg: "rendering failed", Err: err}
}

// Storage wraps a datastore failure for the named operation.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf("storage: %s", op), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the caller-facing message of err, or fallback when err is not classified.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}
