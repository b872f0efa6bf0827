// Package domainerrors defines the error taxonomy surfaced by the case
// management core. Services attach a Code to every failure so transport
// layers can translate conditions uniformly without inspecting messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure condition. Codes are stable identifiers;
// messages are free to change.
type Code string

const (
	// CodeUnauthorized means no caller identity is present.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the caller lacks the role or ownership required.
	CodeForbidden Code = "forbidden"
	// CodeValidation means a business rule on the input failed
	// (missing required field, non-positive amount).
	CodeValidation Code = "validation"
	// CodeBadRequest means the request could not be understood at all
	// (malformed body, unparseable field).
	CodeBadRequest Code = "bad_request"
	// CodeInvalidInput means a value failed structural parsing
	// (empty or malformed identifier).
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound means a referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict means an exclusivity or uniqueness invariant would be
	// violated by the requested mutation.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation means a domain aggregate rejected a state
	// transition. Services usually translate this to CodeConflict before
	// it reaches a caller.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout means the operation was abandoned before completing.
	CodeTimeout Code = "timeout"
	// CodeInternal means an unexpected failure; details are logged, never
	// returned to the caller.
	CodeInternal Code = "internal"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while preserving the cause
// chain. Returns nil if err is nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is shorthand for HasCode, reading naturally at call sites:
// dErrors.Is(err, dErrors.CodeConflict).
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when err
// carries no domain code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost safe message, or a generic one for
// non-domain errors so internals never leak.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
