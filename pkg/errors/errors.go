package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies the category of an application error
type ErrorCode string

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Error codes
const (
	ErrValidation          ErrorCode = "VALIDATION_ERROR"
	ErrNotFound            ErrorCode = "NOT_FOUND"
	ErrUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrAuthorizationDenied ErrorCode = "AUTHORIZATION_DENIED"
	ErrInPast              ErrorCode = "IN_PAST"
	ErrOutsideAvailability ErrorCode = "OUTSIDE_AVAILABILITY"
	ErrSlotTaken           ErrorCode = "SLOT_TAKEN"
	ErrIllegalTransition   ErrorCode = "ILLEGAL_TRANSITION"
	ErrRateLimited         ErrorCode = "RATE_LIMITED"
	ErrTimeout             ErrorCode = "TIMEOUT"
	ErrInternal            ErrorCode = "INTERNAL"
)

var statusByCode = map[ErrorCode]int{
	ErrValidation:          http.StatusBadRequest,
	ErrNotFound:            http.StatusNotFound,
	ErrUnauthorized:        http.StatusUnauthorized,
	ErrAuthorizationDenied: http.StatusForbidden,
	ErrInPast:              http.StatusBadRequest,
	ErrOutsideAvailability: http.StatusBadRequest,
	ErrSlotTaken:           http.StatusConflict,
	ErrIllegalTransition:   http.StatusConflict,
	ErrRateLimited:         http.StatusTooManyRequests,
	ErrTimeout:             http.StatusGatewayTimeout,
	ErrInternal:            http.StatusInternalServerError,
}

// HTTPStatus returns the response status for an error code
func (c ErrorCode) HTTPStatus() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Validation(message string, err error) *AppError {
	return New(ErrValidation, message, err)
}

func NotFound(resource string, err error) *AppError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource), err)
}

func Unauthorized(err error) *AppError {
	return New(ErrUnauthorized, "unauthorized", err)
}

func Forbidden(message string) *AppError {
	return New(ErrAuthorizationDenied, message, nil)
}

func InPast() *AppError {
	return New(ErrInPast, "cannot book appointments in the past", nil)
}

func OutsideAvailability() *AppError {
	return New(ErrOutsideAvailability, "doctor is not available at the requested time", nil)
}

func SlotTaken(err error) *AppError {
	return New(ErrSlotTaken, "this time slot is already booked", err)
}

func IllegalTransition(from, to string) *AppError {
	return New(ErrIllegalTransition, fmt.Sprintf("cannot change appointment status from %s to %s", from, to), nil)
}

func RateLimited() *AppError {
	return New(ErrRateLimited, "rate limit exceeded", nil)
}

func Timeout(err error) *AppError {
	return New(ErrTimeout, "request timed out", err)
}

func Internal(err error) *AppError {
	return New(ErrInternal, "internal server error", err)
}

// CodeOf extracts the code of the first AppError in err's chain.
// Errors that carry no AppError are reported as internal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries an AppError with the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// As is re-exported so callers importing this package under the name
// errors keep access to the standard helper.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
