// File: internal/response/status.go
package response

import (
	"context"
	"errors"
	"net/http"

	"recyclehub/internal/database"
	"recyclehub/internal/services"
)

// ===============================
// STATUS CODE MAPPING
// ===============================

// StatusCodeMap maps error types to HTTP status codes
var StatusCodeMap = map[string]int{
	services.ErrorTypeValidation:   http.StatusBadRequest,
	services.ErrorTypeUnauthorized: http.StatusUnauthorized,
	services.ErrorTypeForbidden:    http.StatusForbidden,
	services.ErrorTypeNotFound:     http.StatusNotFound,
	services.ErrorTypeInvalidState: http.StatusConflict,
	services.ErrorTypeConflict:     http.StatusConflict,
	services.ErrorTypeBusiness:     http.StatusUnprocessableEntity,
	services.ErrorTypeUnavailable:  http.StatusServiceUnavailable,
	services.ErrorTypeInternal:     http.StatusInternalServerError,
}

// GetStatusCodeFromErrorType returns appropriate HTTP status code for error type
func GetStatusCodeFromErrorType(errorType string) int {
	if code, exists := StatusCodeMap[errorType]; exists {
		return code
	}
	return http.StatusInternalServerError
}

// StatusFromError picks the status for any error a service returned
func StatusFromError(err error) int {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.GetStatusCode()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this
		return 499
	}
	return http.StatusInternalServerError
}

// TypeForResultCode maps an OperationResult code back to its error type
func TypeForResultCode(code string) string {
	switch code {
	case services.CodeInsufficientPoints, services.CodeOutOfStock:
		return services.ErrorTypeBusiness
	case "":
		return services.ErrorTypeBusiness
	}
	return code
}

// StatusFromResultCode returns the status of a refused operation
func StatusFromResultCode(code string) int {
	return GetStatusCodeFromErrorType(TypeForResultCode(code))
}

// ===============================
// STATUS WRITERS
// ===============================

// WriteBadRequest writes a 400 response
func (b *Builder) WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewValidationError(message, nil))
}

// WriteUnauthorized writes a 401 response
func (b *Builder) WriteUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="recyclehub"`)
	b.WriteError(w, r, services.NewUnauthorizedError(message))
}

// WriteForbidden writes a 403 response
func (b *Builder) WriteForbidden(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewForbiddenError(message))
}

// WriteNotFound writes a 404 response
func (b *Builder) WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewNotFoundError(message))
}

// WriteHealthCheck writes the health report; 503 only when the store is down
func (b *Builder) WriteHealthCheck(w http.ResponseWriter, r *http.Request, health *services.ServiceHealth) {
	status := http.StatusOK
	if health.Status == database.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	resp := b.Success(r.Context(), health)
	resp.Success = status == http.StatusOK
	b.WriteJSON(w, r, resp, status)
}
