package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"status"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so clones and wraps compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors, grouped by the kind of failure they report.
var (
	// validation
	ErrValidation      = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrMissingField    = New("MISSING_FIELD", http.StatusBadRequest, "please provide all required fields")
	ErrInvalidFormat   = New("INVALID_FORMAT", http.StatusBadRequest, "invalid field format")
	ErrInvalidDate     = New("INVALID_DATE", http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
	ErrInvalidSettings = New("INVALID_SETTINGS", http.StatusBadRequest, "invalid settings")

	// conflict
	ErrSlotTaken     = New("SLOT_TAKEN", http.StatusConflict, "this time slot is already booked")
	ErrAlreadyBooked = New("ALREADY_BOOKED", http.StatusConflict, "this time slot is already booked by a customer")
	ErrNotBlocked    = New("NOT_BLOCKED", http.StatusConflict, "this is a customer booking and cannot be unblocked")

	// booking policy
	ErrTooSoon      = New("TOO_SOON", http.StatusUnprocessableEntity, "booking is too soon")
	ErrTooFarAhead  = New("TOO_FAR_AHEAD", http.StatusUnprocessableEntity, "booking is too far ahead")
	ErrDayOff       = New("DAY_OFF", http.StatusUnprocessableEntity, "this day is not available for bookings")
	ErrOutsideHours = New("OUTSIDE_HOURS", http.StatusUnprocessableEntity, "this time is outside of working hours")

	// auth
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "not authorized to access this route")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials")

	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrRateLimited      = New("RATE_LIMITED", http.StatusTooManyRequests, "rate limit exceeded, try again later")
	ErrStoreUnavailable = New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "storage temporarily unavailable")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails returns a copy of err carrying field-level messages.
func WithDetails(err *Error, message string, details []string) *Error {
	clone := Clone(err, message)
	if clone == nil {
		return nil
	}
	clone.Details = append([]string(nil), details...)
	return clone
}

// Unavailable wraps a storage failure as a retryable STORE_UNAVAILABLE error.
func Unavailable(err error, message string) *Error {
	if message == "" {
		message = ErrStoreUnavailable.Message
	}
	return Wrap(err, ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, message)
}
