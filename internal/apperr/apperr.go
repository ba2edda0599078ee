// Package apperr defines the closed set of failure kinds surfaced by the
// quiz, question and dashboard services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind enumerates caller-visible failure categories.
type Kind int

const (
	KindNotAuthenticated Kind = iota + 1
	KindValidation
	KindNotFound
	KindGeneration
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindGeneration:
		return "generation_failure"
	case KindStorage:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across service boundaries.
// Message is safe to show to end users; Err is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	// Reason narrows generation failures (empty_response, malformed_json, ...).
	Reason string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotAuthenticated reports a missing or invalid caller identity.
func NotAuthenticated() *Error {
	return &Error{Kind: KindNotAuthenticated, Message: "Unauthorized"}
}

// Validation reports malformed input.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound reports a missing or foreign resource. Both cases look the same.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Generation wraps an AI backend failure with its reason code.
func Generation(reason, message string, err error) *Error {
	return &Error{Kind: KindGeneration, Reason: reason, Message: message, Err: err}
}

// Storage wraps a persistence failure.
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
