// Package apperr classifies the failures the wall pipeline can report.
//
// Only KindInput and KindConfig are fatal. KindCollaborator marks a failing
// optional helper (the OCR text masker) and is logged and recorded as a
// degraded condition, never returned from a pipeline run. KindRender covers
// debug artefacts, which callers may report without discarding the result.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the category of an Error.
type Kind string

const (
	KindInput        Kind = "input"
	KindConfig       Kind = "config"
	KindCollaborator Kind = "collaborator"
	KindRender       Kind = "render"
)

// Error is a categorized application error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind without a cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Input reports an unreadable or invalid input image or mask.
func Input(message string, cause error) *Error {
	return &Error{Kind: KindInput, Message: message, Cause: cause}
}

// Collaborator reports a failing optional collaborator.
func Collaborator(message string, cause error) *Error {
	return &Error{Kind: KindCollaborator, Message: message, Cause: cause}
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
