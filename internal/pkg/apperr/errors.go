// internal/pkg/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by every domain service. Services return them wrapped in
// an *Error carrying a message for the caller; match with errors.Is.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStockConflict     = errors.New("stock changed during checkout")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCannotCancel      = errors.New("order cannot be cancelled")
	ErrReasonRequired    = errors.New("cancellation reason required")
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyAvailable  = errors.New("already available")
	ErrConflict          = errors.New("conflict")
)

// Error is a domain error with a human readable message.
type Error struct {
	kind error
	msg  string
}

// New builds an error of the given kind.
func New(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Kind returns the sentinel this error belongs to.
func (e *Error) Kind() error {
	return e.kind
}

// Message returns the caller-facing message of err. Errors outside the
// taxonomy get a generic message so internals never leak.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.msg
	}
	for _, kind := range kinds {
		if err == kind {
			return kind.Error()
		}
	}
	return "internal server error"
}

var kinds = []error{
	ErrEmptyCart, ErrOutOfStock, ErrInsufficientStock, ErrStockConflict,
	ErrInvalidTransition, ErrCannotCancel, ErrReasonRequired, ErrNotFound,
	ErrUnauthorized, ErrInvalidInput, ErrAlreadyAvailable, ErrConflict,
}

// HTTPStatus maps an error to the status code returned by the API.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrStockConflict), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrCannotCancel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrOutOfStock),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAlreadyAvailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var codes = map[error]string{
	ErrEmptyCart:         "empty_cart",
	ErrOutOfStock:        "out_of_stock",
	ErrInsufficientStock: "insufficient_stock",
	ErrStockConflict:     "stock_conflict",
	ErrInvalidTransition: "invalid_transition",
	ErrCannotCancel:      "cannot_cancel",
	ErrReasonRequired:    "reason_required",
	ErrNotFound:          "not_found",
	ErrUnauthorized:      "unauthorized",
	ErrInvalidInput:      "invalid_input",
	ErrAlreadyAvailable:  "already_available",
	ErrConflict:          "conflict",
}

// Code returns a stable machine readable code for err
func Code(err error) string {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return codes[kind]
		}
	}
	return "internal"
}
