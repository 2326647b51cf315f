// internal/pkg/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure returned by the domain services
type Kind string

const (
	KindInvalidQuantity   Kind = "INVALID_QUANTITY"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindEmptyCart         Kind = "EMPTY_CART"
	KindNotFound          Kind = "NOT_FOUND"
	KindStorageFailure    Kind = "STORAGE_FAILURE"
	KindInvalidCustomer   Kind = "INVALID_CUSTOMER"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindInvalidState      Kind = "INVALID_STATE"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// AppError is a typed domain failure
type AppError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind, so sentinel values work with errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an AppError with the status code registered for its kind
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:       kind,
		Message:    message,
		HTTPStatus: statusFor(kind),
	}
}

// Newf creates an AppError with a formatted message
func Newf(kind Kind, format string, args ...any) *AppError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches a cause to a new AppError
func Wrap(kind Kind, message string, err error) *AppError {
	appErr := New(kind, message)
	appErr.Err = err
	return appErr
}

// Storage wraps a persistence-layer error
func Storage(op string, err error) *AppError {
	return Wrap(KindStorageFailure, fmt.Sprintf("storage failure during %s", op), err)
}

// KindOf returns the kind of the first AppError in the chain
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func statusFor(kind Kind) int {
	switch kind {
	case KindInvalidQuantity, KindInvalidCustomer, KindInvalidInput, KindEmptyCart:
		return http.StatusBadRequest
	case KindInsufficientStock, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindStorageFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
