// Package apierr defines the closed taxonomy of failures the core can
// produce and how each maps onto the HTTP surface.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one row of the error taxonomy.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindInvalidColor Kind = "invalid_color"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindRenderFailed Kind = "render_failed"
	KindTimeout      Kind = "timeout"
	KindCancelled    Kind = "cancelled"
)

var statusByKind = map[Kind]int{
	KindInvalidInput: http.StatusBadRequest,
	KindInvalidColor: http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindRenderFailed: http.StatusInternalServerError,
	KindTimeout:      http.StatusGatewayTimeout,
	KindCancelled:    0, // client-closed; no response is written
}

// Error is a labeled failure. Diagnostic carries extra detail (e.g. the
// capped stderr tail of a failed encode) that must never be echoed
// verbatim to an untrusted client.
type Error struct {
	Kind       Kind
	Message    string
	Diagnostic string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// StatusCode returns the HTTP status this error should surface as.
func (e *Error) StatusCode() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithDiagnostic attaches a diagnostic blob (e.g. encoder stderr tail).
func (e *Error) WithDiagnostic(d string) *Error {
	e.Diagnostic = d
	return e
}

// Is lets errors.Is match on Kind via a sentinel constructed from New(kind, "").
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to "" if err isn't an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
