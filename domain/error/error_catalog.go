package error

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fleetlog/fleetlog/domain/entity"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Authentication Errors (1xxx)
	ErrCodeInvalidCredentials ErrorCode = "AUTH_1001"
	ErrCodeInvalidToken       ErrorCode = "AUTH_1003"
	ErrCodeTokenExpired       ErrorCode = "AUTH_1004"

	// Validation Errors (2xxx)
	ErrCodeInvalidRequest ErrorCode = "VALID_2005"

	// Rate Limiting Errors (3xxx)
	ErrCodeRateLimitExceeded ErrorCode = "RATE_3001"

	// Change request workflow errors (4xxx)
	ErrCodeRequestNotFound     ErrorCode = "REQ_4041"
	ErrCodeRequestProcessed    ErrorCode = "REQ_4091"
	ErrCodeRequestInvalid      ErrorCode = "REQ_4001"
	ErrCodeMutationFailed      ErrorCode = "REQ_2071"
	ErrCodeEntityNotFound      ErrorCode = "REQ_4042"
	ErrCodeEntityAlreadyExists ErrorCode = "REQ_4092"

	// Database Errors (5xxx)
	ErrCodeDatabaseError ErrorCode = "DB_5001"

	// Server Errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"

	// Security Errors (7xxx)
	ErrCodeUnauthorizedAccess ErrorCode = "SEC_7003"
)

var statusByCode = map[ErrorCode]int{
	ErrCodeInvalidCredentials:  http.StatusUnauthorized,
	ErrCodeInvalidToken:        http.StatusUnauthorized,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeInvalidRequest:      http.StatusBadRequest,
	ErrCodeRateLimitExceeded:   http.StatusTooManyRequests,
	ErrCodeRequestNotFound:     http.StatusNotFound,
	ErrCodeRequestProcessed:    http.StatusConflict,
	ErrCodeRequestInvalid:      http.StatusUnprocessableEntity,
	ErrCodeMutationFailed:      http.StatusMultiStatus,
	ErrCodeEntityNotFound:      http.StatusNotFound,
	ErrCodeEntityAlreadyExists: http.StatusConflict,
	ErrCodeDatabaseError:       http.StatusServiceUnavailable,
	ErrCodeInternalServerError: http.StatusInternalServerError,
	ErrCodeUnauthorizedAccess:  http.StatusForbidden,
}

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

func ErrInvalidCredentials(details string) *AppError {
	return NewAppError(ErrCodeInvalidCredentials, "Invalid email or password", details, nil)
}

func ErrInvalidToken(details string) *AppError {
	return NewAppError(ErrCodeInvalidToken, "Invalid token", details, nil)
}

func ErrTokenExpired() *AppError {
	return NewAppError(ErrCodeTokenExpired, "Token has expired", "", nil)
}

func ErrInvalidRequest(details string) *AppError {
	return NewAppError(ErrCodeInvalidRequest, "Invalid request", details, nil)
}

func ErrRateLimitExceeded(details string) *AppError {
	return NewAppError(ErrCodeRateLimitExceeded, "Too many requests. Please try again later.", details, nil)
}

func ErrDatabaseUnavailable(cause error) *AppError {
	return NewAppError(ErrCodeDatabaseError, "Storage unavailable", "", cause)
}

func ErrUnauthorizedAccess(details string) *AppError {
	return NewAppError(ErrCodeUnauthorizedAccess, "Access denied", details, nil)
}

func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, "Internal server error", details, cause)
}

// FromError classifies any error returned by the use cases into the catalog.
// Errors already carrying an AppError are returned as is.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, entity.ErrMutationFailed):
		return NewAppError(ErrCodeMutationFailed, "Request approved, but the change could not be applied", err.Error(), err)
	case errors.Is(err, entity.ErrRequestNotFound):
		return NewAppError(ErrCodeRequestNotFound, "Change request not found", "", err)
	case errors.Is(err, entity.ErrRequestAlreadyProcessed):
		return NewAppError(ErrCodeRequestProcessed, "Change request already processed", "", err)
	case errors.Is(err, entity.ErrInvalidRequestType),
		errors.Is(err, entity.ErrInvalidPayload),
		errors.Is(err, entity.ErrTargetRequired):
		return NewAppError(ErrCodeRequestInvalid, "Invalid change request", err.Error(), err)
	case errors.Is(err, entity.ErrTargetNotFound):
		return NewAppError(ErrCodeEntityNotFound, "Entity not found", "", err)
	case errors.Is(err, entity.ErrActorNotFound):
		return NewAppError(ErrCodeEntityNotFound, "Requester not found", "", err)
	case errors.Is(err, entity.ErrUserNotFound):
		return NewAppError(ErrCodeEntityNotFound, "User not found", "", err)
	case errors.Is(err, entity.ErrUserAlreadyExists):
		return NewAppError(ErrCodeEntityAlreadyExists, "User already exists", "", err)
	}

	return ErrInternalServerError("", err)
}

// GetHTTPStatusCode maps an error to the HTTP status it should be served with
func GetHTTPStatusCode(err error) int {
	appErr := FromError(err)
	if appErr == nil {
		return http.StatusOK
	}
	if status, ok := statusByCode[appErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
