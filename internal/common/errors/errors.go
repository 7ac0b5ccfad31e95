package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is the machine-readable kind of an application error.
type ErrorCode string

const (
	// Generic
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// Raffle
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeWindowClosed   ErrorCode = "WINDOW_CLOSED"
	ErrCodeNoPrizes       ErrorCode = "NO_PRIZES_CONFIGURED"
	ErrCodeInvalidDoor    ErrorCode = "INVALID_DOOR"
	ErrCodeDoorNotYetOpen ErrorCode = "DOOR_NOT_YET_OPEN"
	ErrCodeDoorClosed     ErrorCode = "DOOR_CLOSED"
	ErrCodeConflict       ErrorCode = "PERSISTENCE_CONFLICT"
	ErrCodeCatalogLocked  ErrorCode = "CATALOG_LOCKED"

	// Participants
	ErrCodeNotRegistered     ErrorCode = "NOT_REGISTERED"
	ErrCodeNotWhitelisted    ErrorCode = "NOT_WHITELISTED"
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	ErrCodeInvalidTicket     ErrorCode = "INVALID_TICKET"

	// Infrastructure
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeMintFailed       ErrorCode = "MINT_FAILED"
)

// AppError is a typed application error carrying its kind.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same code, so callers can write
// errors.Is(err, errors.New(errors.ErrCodeUnauthorized, "")).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetail attaches a key/value to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// Retryable reports whether repeating the call may succeed without operator action.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case ErrCodeConflict, ErrCodeStoreUnavailable, ErrCodeDoorNotYetOpen, ErrCodeMintFailed:
		return true
	}
	return false
}

// IsInternal reports whether the error is the server's fault.
func (e *AppError) IsInternal() bool {
	switch e.Code {
	case ErrCodeInternal, ErrCodeStoreUnavailable, ErrCodeMintFailed, ErrCodeNoPrizes:
		return true
	}
	return false
}

// HTTPStatus maps the error kind to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation, ErrCodeInvalidDoor:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeInvalidTicket:
		return http.StatusUnauthorized
	case ErrCodeNotRegistered, ErrCodeNotWhitelisted:
		return http.StatusForbidden
	case ErrCodeWindowClosed, ErrCodeDoorClosed, ErrCodeConflict, ErrCodeAlreadyRegistered, ErrCodeCatalogLocked:
		return http.StatusConflict
	case ErrCodeDoorNotYetOpen:
		return http.StatusTooEarly
	case ErrCodeNoPrizes:
		return http.StatusUnprocessableEntity
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeMintFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates an application error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a kind and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps err with a kind and a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError reports an invalid input field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewStoreError wraps a data-store failure as a transient error.
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreUnavailable, fmt.Sprintf("data store operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError finds an AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns err's kind, ErrCodeInternal for foreign errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
