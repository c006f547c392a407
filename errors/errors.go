package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Error is the structured error type returned by every fallible operation in
// this module. It carries a code for programmatic handling, a human-readable
// message, optional key/value context, and an optional wrapped cause.
type Error struct {
	// Code classifies the failure.
	Code ErrorCode

	// Message is the human-readable description. It names the violated
	// constraint and the concrete value or path involved.
	Message string

	// Context holds additional structured detail (offending key, path,
	// limit, etc.). May be nil.
	Context map[string]any

	// Cause is the wrapped underlying error. May be nil.
	Cause error
}

// Error implements the error interface. Context entries are rendered in
// sorted key order so messages are stable.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause, enabling errors.Is and errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code. This lets
// callers match on error kind without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message while preserving the
// cause for errors.Is / errors.As. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// WrapWithContext wraps an existing error with a code, message, and
// structured context. Returns nil if err is nil.
func WrapWithContext(err error, code ErrorCode, message string, context map[string]any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Context: context, Cause: err}
}

// NewWithContext creates an error with a code, message, and structured
// context but no cause.
func NewWithContext(code ErrorCode, message string, context map[string]any) *Error {
	return &Error{Code: code, Message: message, Context: context}
}

// GetCode extracts the error code from err. It returns CodeUnknown when err
// is not an *Error (or does not wrap one), and the empty code for nil.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// Standard library pass-throughs so callers need a single errors import.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
