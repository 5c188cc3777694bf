// Package apierror provides the error taxonomy shared by services and handlers,
// plus the response envelopes written to clients. All errors returned to
// clients go through this package so internal details (DB errors, stack traces)
// never leak.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Kind is the stable, machine-checkable error category.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindInvalidState    Kind = "INVALID_STATE"
	KindPaymentMismatch Kind = "PAYMENT_MISMATCH"
	KindInternal        Kind = "INTERNAL_ERROR"

	// Raised by middleware only.
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindRateLimited  Kind = "RATE_LIMITED"
)

const internalMessage = "Error interno del servidor"

// Error is the typed error returned by the service layer.
type Error struct {
	Kind    Kind
	Message string
	// Expected and Actual are only set for KindPaymentMismatch.
	Expected *decimal.Decimal
	Actual   *decimal.Decimal
	cause    error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }
func InvalidState(msg string) *Error { return &Error{Kind: KindInvalidState, Message: msg} }

// PaymentMismatch reports that the tendered sum differs from the amount due.
func PaymentMismatch(expected, actual decimal.Decimal) *Error {
	return &Error{
		Kind:     KindPaymentMismatch,
		Message:  fmt.Sprintf("Total venta (%s) diferente a total pagado (%s)", expected.StringFixed(2), actual.StringFixed(2)),
		Expected: &expected,
		Actual:   &actual,
	}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: internalMessage, cause: cause}
}

// From extracts an *Error from err. Anything that is not already typed is
// treated as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindPaymentMismatch, KindInvalidState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Error    Kind             `json:"error"`
	Detail   string           `json:"detail"`
	Expected *decimal.Decimal `json:"expected,omitempty"`
	Actual   *decimal.Decimal `json:"actual,omitempty"`
}

func New(kind Kind, msg string) *APIError {
	return &APIError{Error: kind, Detail: msg}
}

// Envelope renders a service error for the client.
func Envelope(e *Error) *APIError {
	return &APIError{Error: e.Kind, Detail: e.Message, Expected: e.Expected, Actual: e.Actual}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Error  Kind              `json:"error"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Error: KindValidation, Detail: "Error de validacion", Fields: fields}
}
