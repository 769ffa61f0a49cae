package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidPhaseTransition   = "INVALID_PHASE_TRANSITION"
	CodeCapacityExceeded         = "CAPACITY_EXCEEDED"
	CodeDuplicateRegistration    = "DUPLICATE_REGISTRATION"
	CodeAgeRangeViolation        = "AGE_RANGE_VIOLATION"
	CodeCancellationWindowClosed = "CANCELLATION_WINDOW_CLOSED"
	CodeInvariantViolation       = "INVARIANT_VIOLATION"

	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the typed error surfaced by services. Soft failures
// (capacity, duplicates, age, deadlines) are values of this type rather
// than exceptions; only InvariantViolation marks a genuine bug.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// CodeOf extracts the application error code, or CodeInternal for
// untyped errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given application error code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatusOf returns the HTTP status mapped to the error, defaulting
// to 500 for untyped errors.
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func InvalidPhaseTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidPhaseTransition,
		Message:    fmt.Sprintf("cannot move period from %s to %s", from, to),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"from": from, "to": to},
	}
}

func CapacityExceeded(occasionID string) *AppError {
	return &AppError{
		Code:       CodeCapacityExceeded,
		Message:    "no spots left on this occasion",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"occasion_id": occasionID},
	}
}

func DuplicateRegistration(attendeeID, occasionID string) *AppError {
	return &AppError{
		Code:       CodeDuplicateRegistration,
		Message:    "attendee is already registered for this occasion",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"attendee_id": attendeeID,
			"occasion_id": occasionID,
		},
	}
}

func AgeRangeViolation(age, minAge, maxAge int) *AppError {
	return &AppError{
		Code:       CodeAgeRangeViolation,
		Message:    fmt.Sprintf("attendee age %d is outside the eligible range %d-%d", age, minAge, maxAge),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"age": age, "min_age": minAge, "max_age": maxAge},
	}
}

func CancellationWindowClosed() *AppError {
	return &AppError{
		Code:       CodeCancellationWindowClosed,
		Message:    "the cancellation deadline for this period has passed",
		HTTPStatus: http.StatusConflict,
	}
}

// InvariantViolation is always a bug, never user-triggered. Callers
// should abort the surrounding transaction when they see one.
func InvariantViolation(message string) *AppError {
	return &AppError{
		Code:       CodeInvariantViolation,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"resource": resource, "id": id},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
