// Package apperr defines the error taxonomy shared by the HTTP surface
// and the internal services: a stable code any caller can switch on,
// wrapping whatever underlying error caused it.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-matchable error identifier.
type Code string

const (
	CodeNotFound         Code = "not_found"
	CodeInvalidArgument  Code = "invalid_argument"
	CodeConflict         Code = "conflict"
	CodeLockHeld         Code = "lock_held"
	CodeUpstreamTimeout  Code = "upstream_timeout"
	CodeUpstreamFailure  Code = "upstream_failure"
	CodeInternal         Code = "internal"
	CodeUnavailable      Code = "unavailable"
)

var statusByCode = map[Code]int{
	CodeNotFound:        http.StatusNotFound,
	CodeInvalidArgument: http.StatusBadRequest,
	CodeConflict:        http.StatusConflict,
	CodeLockHeld:        http.StatusConflict,
	CodeUpstreamTimeout: http.StatusGatewayTimeout,
	CodeUpstreamFailure: http.StatusBadGateway,
	CodeInternal:        http.StatusInternalServerError,
	CodeUnavailable:     http.StatusServiceUnavailable,
}

// Error is a taxonomy-tagged error carrying an HTTP status a caller
// can use without re-inspecting the message string.
type Error struct {
	Code    Code
	Message string
	Err     error

	// PublicCode is the literal wire code spec §6.1/§7 names (e.g.
	// "AGENT_NOT_FOUND", "STOCK_DATA_ERROR"). Empty falls back to an
	// upper-snake rendering of Code.
	PublicCode string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status code this error should map to.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds a taxonomy error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a taxonomy code to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// NotFound is a convenience constructor for the most common case.
func NotFound(resource string, err error) *Error {
	return Wrap(CodeNotFound, resource+" not found", err)
}

// WithPublicCode annotates e with the literal wire code the HTTP
// surface should report, e.g. "AGENT_NOT_FOUND" rather than the
// generic "NOT_FOUND" taxonomy code.
func (e *Error) WithPublicCode(code string) *Error {
	e.PublicCode = code
	return e
}
