package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig     = "CONFIG"
	ErrFetch      = "FETCH"
	ErrParse      = "PARSE"
	ErrDuplicate  = "DUPLICATE"
	ErrNotFound   = "NOT_FOUND"
	ErrValidation = "VALIDATION"
	ErrRender     = "RENDER"
	ErrSSH        = "SSH"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrFetch code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrFetch,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewNotFound creates an error for a widget lookup that missed the registry.
func NewNotFound(name string) *Error {
	return &Error{
		Code:       ErrNotFound,
		Message:    fmt.Sprintf("No widget named '%s'", name),
		Suggestion: "Check the widget names in the 'widgets' section of your .pulse.yaml",
	}
}

// NewDuplicate creates an error for a second registration under the same name.
func NewDuplicate(name string) *Error {
	return &Error{
		Code:       ErrDuplicate,
		Message:    fmt.Sprintf("Widget '%s' is already registered", name),
		Suggestion: "Widget names must be unique - rename one of them in .pulse.yaml",
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost structured Error in the chain,
// or an empty string if there is none.
func CodeOf(err error) string {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return ""
}

// Summary returns the one-line message of a structured error, falling back to
// err.Error() for plain errors. Used where the multi-line format doesn't fit,
// like dashboard notifications.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Message
	}
	return strings.TrimSpace(err.Error())
}

// SuggestionOf returns the suggestion of the outermost structured Error in
// the chain, or an empty string.
func SuggestionOf(err error) string {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Suggestion
	}
	return ""
}
