// Package apperr defines the error kinds surfaced to API callers.
//
// Every failure that crosses the service boundary is an *Error carrying a Kind.
// The Kind decides the HTTP status, so handlers translate errors in one place
// instead of setting a status before failing.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindProductNotFound
	KindInsufficientStock
	KindNotFound
	KindPersistence
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindProductNotFound:
		return "ProductNotFound"
	case KindInsufficientStock:
		return "InsufficientStock"
	case KindNotFound:
		return "NotFound"
	case KindPersistence:
		return "PersistenceError"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindConflict:
		return "Conflict"
	default:
		return "Internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindInvalidRequest, KindProductNotFound:
		return http.StatusBadRequest
	case KindInsufficientStock, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code the caller should see.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// ClientMessage is the message safe to show to the caller. Server-side faults
// never leak their cause.
func (e *Error) ClientMessage() string {
	if e.Status() >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return e.Message
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidRequest(format string, args ...any) *Error {
	return New(KindInvalidRequest, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// ProductNotFound names the product id that has no record.
func ProductNotFound(productID string) *Error {
	return New(KindProductNotFound, "Product not found: %s", productID)
}

// InsufficientStock names the product and how many units are left.
func InsufficientStock(name string, available int) *Error {
	return New(KindInsufficientStock, "Insufficient stock for %s. Available: %d", name, available)
}

// Persistence wraps a storage failure.
func Persistence(err error, message string) *Error {
	return Wrap(KindPersistence, err, message)
}

// KindOf reports the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
