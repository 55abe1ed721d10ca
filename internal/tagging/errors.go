package tagging

import (
	"errors"
	"fmt"

	"github.com/roach88/docbridge/internal/value"
)

// ErrorKind categorizes conversion failures.
type ErrorKind string

const (
	// CyclicValue indicates a map or array that contains itself.
	CyclicValue ErrorKind = "CYCLIC_VALUE"

	// UnsupportedType indicates a value with no tagging rule, or a domain
	// value found where only tagged values are allowed.
	UnsupportedType ErrorKind = "UNSUPPORTED_TYPE"

	// UnknownTypeTag indicates a pair whose tag is not in the tag set.
	UnknownTypeTag ErrorKind = "UNKNOWN_TYPE_TAG"

	// InvalidReferencePath indicates the handle rejected a REFERENCE path.
	InvalidReferencePath ErrorKind = "INVALID_REFERENCE_PATH"

	// DepthExceeded indicates nesting deeper than the configured limit.
	DepthExceeded ErrorKind = "DEPTH_EXCEEDED"

	// MalformedPayload indicates a known tag whose payload has the wrong shape.
	MalformedPayload ErrorKind = "MALFORMED_PAYLOAD"
)

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrCyclicValue          = &Error{Kind: CyclicValue}
	ErrUnsupportedType      = &Error{Kind: UnsupportedType}
	ErrUnknownTypeTag       = &Error{Kind: UnknownTypeTag}
	ErrInvalidReferencePath = &Error{Kind: InvalidReferencePath}
	ErrDepthExceeded        = &Error{Kind: DepthExceeded}
	ErrMalformedPayload     = &Error{Kind: MalformedPayload}
)

// Error is a conversion failure.
type Error struct {
	// Kind identifies the failure category.
	Kind ErrorKind

	// Path locates the offending value inside the input, e.g. "profile.tags[2]".
	// Empty means the root value.
	Path string

	// Tag is set for failures tied to a tag pair.
	Tag value.Tag

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, e.g. the handle's path error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a conversion error.
// Uses errors.As to handle wrapped errors.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsCycleError returns true if the error is a cyclic value error.
func IsCycleError(err error) bool {
	return errors.Is(err, ErrCyclicValue)
}

func newError(kind ErrorKind, path string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}
