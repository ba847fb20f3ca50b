// Package srerror implements the structured error type used by the engine's
// service layers. Parse-level failures inside internal/lang carry their own
// positional error types; everything above wraps them into an *Error with a
// code, an operation, and free-form details.
package srerror

import (
	"fmt"
	"strings"
	"time"
)

// MaxChainDepth limits the depth of error wrapping to keep chains readable.
const MaxChainDepth = 15

// Error represents a structured error with code, severity, and metadata
type Error struct {
	message   string
	cause     error
	code      Code
	severity  Severity
	timestamp time.Time
	operation string
	details   map[string]interface{}
}

// New creates a new Error with the given message
func New(message string) *Error {
	return &Error{
		message:   message,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message
func Newf(format string, args ...interface{}) *Error {
	return New(fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with additional context. Wrapping nil
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if depth := chainDepth(err); depth >= MaxChainDepth {
		root := RootCause(err)
		return &Error{
			message:   fmt.Sprintf("%s (chain truncated at depth %d): %s", message, MaxChainDepth, root.Error()),
			code:      CodeUnknown,
			severity:  SeverityHigh,
			timestamp: time.Now(),
			details:   map[string]interface{}{"truncated": true, "original_depth": depth},
		}
	}

	// Preserve code and severity when wrapping one of our own.
	if srErr, ok := err.(*Error); ok {
		wrapped := &Error{
			message:   message,
			cause:     srErr,
			code:      srErr.code,
			severity:  srErr.severity,
			timestamp: time.Now(),
			details:   make(map[string]interface{}),
		}
		for k, v := range srErr.details {
			wrapped.details[k] = v
		}
		return wrapped
	}

	return &Error{
		message:   message,
		cause:     err,
		code:      CodeUnknown,
		severity:  SeverityMedium,
		timestamp: time.Now(),
		details:   make(map[string]interface{}),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Error implements the standard error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause.Error())
	}
	return e.message
}

// Unwrap returns the underlying cause for error unwrapping
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCode sets the error code
func (e *Error) WithCode(code Code) *Error {
	e.code = code
	if e.severity == SeverityMedium { // only auto-set if not explicitly set
		e.severity = GetSeverityFromCode(code)
	}
	return e
}

// WithSeverity sets the error severity
func (e *Error) WithSeverity(severity Severity) *Error {
	e.severity = severity
	return e
}

// WithOperation sets the operation that caused the error
func (e *Error) WithOperation(operation string) *Error {
	e.operation = operation
	return e
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.details[key] = value
	return e
}

// WithDetails adds multiple key-value details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// Code returns the error code
func (e *Error) Code() Code {
	return e.code
}

// Severity returns the error severity
func (e *Error) Severity() Severity {
	return e.severity
}

// Timestamp returns when the error occurred
func (e *Error) Timestamp() time.Time {
	return e.timestamp
}

// Operation returns the operation that caused the error
func (e *Error) Operation() string {
	return e.operation
}

// Details returns a copy of the error details
func (e *Error) Details() map[string]interface{} {
	result := make(map[string]interface{}, len(e.details))
	for k, v := range e.details {
		result[k] = v
	}
	return result
}

// String returns a detailed string representation of the error
func (e *Error) String() string {
	parts := []string{
		fmt.Sprintf("Error: %s", e.message),
		fmt.Sprintf("Code: %s", e.code),
		fmt.Sprintf("Severity: %s", e.severity),
	}
	if e.operation != "" {
		parts = append(parts, fmt.Sprintf("Operation: %s", e.operation))
	}
	if len(e.details) > 0 {
		detailStrs := make([]string, 0, len(e.details))
		for k, v := range e.details {
			detailStrs = append(detailStrs, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("Details: {%s}", strings.Join(detailStrs, ", ")))
	}
	if e.cause != nil {
		parts = append(parts, fmt.Sprintf("Cause: %s", e.cause.Error()))
	}
	return strings.Join(parts, " | ")
}

// RootCause returns the deepest error in a chain
func RootCause(err error) error {
	current := err
	last := err
	for current != nil {
		last = current
		if srErr, ok := current.(*Error); ok {
			current = srErr.cause
		} else {
			break
		}
	}
	return last
}

// GetCode returns the code of an error, or CodeUnknown for foreign errors
func GetCode(err error) Code {
	if srErr, ok := err.(*Error); ok {
		return srErr.code
	}
	return CodeUnknown
}

// GetSeverity returns the severity of an error, or SeverityMedium for
// foreign errors
func GetSeverity(err error) Severity {
	if srErr, ok := err.(*Error); ok {
		return srErr.severity
	}
	return SeverityMedium
}

// HasCode reports whether err (or any cause in its chain) carries code.
func HasCode(err error, code Code) bool {
	current := err
	for current != nil {
		srErr, ok := current.(*Error)
		if !ok {
			return false
		}
		if srErr.code == code {
			return true
		}
		current = srErr.cause
	}
	return false
}

func chainDepth(err error) int {
	depth := 0
	current := err
	for current != nil && depth < MaxChainDepth*2 {
		depth++
		if srErr, ok := current.(*Error); ok {
			current = srErr.cause
		} else {
			break
		}
	}
	return depth
}
