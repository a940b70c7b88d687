package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Decode errors. Every error returned from a decode call matches exactly one of
// these with errors.Is.
var (
	ErrMalformedVarint    = errors.New("malformed varint")
	ErrTruncatedMessage   = errors.New("truncated message")
	ErrUnexpectedEOF      = errors.New("unexpected end of input")
	ErrWireTypeMismatch   = errors.New("wire type mismatch")
	ErrInvalidWireType    = errors.New("invalid wire type")
	ErrInvalidUTF8        = errors.New("invalid UTF-8 in string field")
	ErrInvalidFieldNumber = errors.New("invalid field number")
	ErrRecursionLimit     = errors.New("exceeded maximum recursion depth")
)

// Errors returned by Instance mutators for values that do not fit the
// descriptor.
var (
	ErrUnknownField = errors.New("unknown field")
	ErrTypeMismatch = errors.New("value does not match field type")
)

// FieldError represents a decoding error with the path of the field it
// occurred in.
type FieldError struct {
	reversed []string // innermost field first
	Err      error    // underlying error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.reversed) == 0 {
		return e.Err.Error()
	}

	return fmt.Sprintf("error at field %s: %v", e.Path(), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldPath returns the field names from the outermost message inward, e.g.
// ["content", "init", "supported_version", "min"].
func (e *FieldError) FieldPath() []string {
	path := make([]string, len(e.reversed))
	for i, name := range e.reversed {
		path[len(path)-1-i] = name
	}
	return path
}

// Path returns the dotted field path.
func (e *FieldError) Path() string {
	return strings.Join(e.FieldPath(), ".")
}

// wrapWithField wraps an error with a field name. Errors already carrying a
// path get the name added as their new outermost element.
func wrapWithField(err error, fieldName string) error {
	if err == nil {
		return nil
	}

	if fe, ok := err.(*FieldError); ok {
		fe.reversed = append(fe.reversed, fieldName)
		return fe
	}

	return &FieldError{
		reversed: []string{fieldName},
		Err:      err,
	}
}
