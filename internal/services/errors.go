// file: internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"recyclehub/internal/database"
	"recyclehub/internal/validation"

	"go.uber.org/zap"
)

// ===============================
// ERROR TYPES
// ===============================

// Error types carried in ServiceError.Type
const (
	ErrorTypeValidation   = "VALIDATION_ERROR"
	ErrorTypeUnauthorized = "UNAUTHORIZED"
	ErrorTypeForbidden    = "FORBIDDEN"
	ErrorTypeInvalidState = "INVALID_STATE"
	ErrorTypeNotFound     = "NOT_FOUND"
	ErrorTypeBusiness     = "BUSINESS_ERROR"
	ErrorTypeConflict     = "CONFLICT"
	ErrorTypeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorTypeInternal     = "INTERNAL_ERROR"
)

// Business rule codes
const (
	CodeInsufficientPoints  = "INSUFFICIENT_POINTS"
	CodeOutOfStock          = "OUT_OF_STOCK"
	CodeTransactionConflict = "TRANSACTION_CONFLICT"
)

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// WithDetail attaches one detail value
func (e *ServiceError) WithDetail(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error. Field failures reported by
// the validation package are copied into Details.
func NewValidationError(message string, cause error) *ServiceError {
	err := &ServiceError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}

	var fields validation.Errors
	if errors.As(cause, &fields) {
		err.Details = map[string]interface{}{"fields": fields.Fields()}
	}
	return err
}

// NewBusinessError creates a business logic error
func NewBusinessError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeBusiness,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewInvalidStateError reports an operation on a record that is not in the
// state it requires.
func NewInvalidStateError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeInvalidState,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrorTypeUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

var errAuthRequired = NewUnauthorizedError("authentication required")

// requireUser fails with an auth error when no caller identity is present
func requireUser(userID string) error {
	if userID == "" {
		return errAuthRequired
	}
	return nil
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error chain, or creates a
// generic one
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return NewInternalError(err.Error())
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr) && serviceErr.Type == errorType
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

// IsInvalidStateError checks if an error is an invalid state error
func IsInvalidStateError(err error) bool {
	return IsErrorType(err, ErrorTypeInvalidState)
}

// IsBusinessError checks if an error is a business logic error
func IsBusinessError(err error) bool {
	return IsErrorType(err, ErrorTypeBusiness)
}

// isRuleFailure reports the errors that structured results carry as
// {success: false} instead of returning them.
func isRuleFailure(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		return nil, false
	}
	switch serviceErr.Type {
	case ErrorTypeInvalidState, ErrorTypeNotFound, ErrorTypeBusiness:
		return serviceErr, true
	}
	return nil, false
}

// storeError converts an error coming out of the store into a ServiceError.
// Service errors raised inside a transaction body pass through untouched.
func storeError(logger *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	err = database.Classify(err)
	switch {
	case errors.Is(err, database.ErrTransactionConflict):
		logger.Warn("Ledger transaction gave up after conflicts", zap.String("operation", op), zap.Error(err))
		conflict := NewConflictError("the ledger is busy, please try again", CodeTransactionConflict)
		conflict.Cause = err
		return conflict

	case errors.Is(err, database.ErrStoreUnavailable):
		logger.Error("Ledger store unavailable", zap.String("operation", op), zap.Error(err))
		unavailable := NewServiceUnavailableError("the ledger store is unavailable, please retry")
		unavailable.Cause = err
		return unavailable

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err

	default:
		logger.Error("Ledger operation failed", zap.String("operation", op), zap.Error(err))
		internal := NewInternalError(fmt.Sprintf("failed to %s", op))
		internal.Cause = err
		return internal
	}
}
