// Package fault classifies caller-visible failures of the group engine.
//
// Every failure returned by an engine operation carries one of four kinds,
// checked with errors.Is:
//
//	if errors.Is(err, fault.ErrConflict) { ... }
//
// The Error message is meant for humans and is returned verbatim by the API.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the kind for entities that do not exist or do not belong to the stated parent.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is the kind for actions the authorization gate denied.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is the kind for uniqueness, ownership and class-consistency violations.
	ErrConflict = errors.New("conflict")

	// ErrValidationFailed is the kind for input or persistence constraints rejected at commit time.
	ErrValidationFailed = errors.New("validation failed")
)

// Error is a classified failure with a human-readable message.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound failure.
func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

// Forbidden returns an ErrForbidden failure.
func Forbidden(format string, args ...any) error {
	return newf(ErrForbidden, format, args...)
}

// Conflict returns an ErrConflict failure.
func Conflict(format string, args ...any) error {
	return newf(ErrConflict, format, args...)
}

// Invalid returns an ErrValidationFailed failure.
func Invalid(format string, args ...any) error {
	return newf(ErrValidationFailed, format, args...)
}

// Validation wraps a persistence error as ErrValidationFailed, surfacing its message.
// A nil cause returns nil.
func Validation(cause error) error {
	if cause == nil {
		return nil
	}

	return &Error{Kind: ErrValidationFailed, Message: cause.Error(), Cause: cause}
}

// KindOf returns the classification of err, or nil when err is not classified.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrConflict, ErrValidationFailed} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
