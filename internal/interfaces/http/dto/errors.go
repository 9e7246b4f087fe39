package dto

import (
	"net/http"

	"github.com/relove/backend/internal/domain/shared"
)

// Handler-layer error codes. Domain errors carry their own codes from the
// shared package; these cover failures that never reach the domain.
const (
	// ErrCodeBadRequest is used for malformed or unparseable requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthenticated is used when no valid credentials are presented
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	// ErrCodeForbidden is used when the caller lacks the required role
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Domain UNAUTHORIZED means an authenticated actor attempted a transition
// outside its role, so it maps to 403 rather than 401. Gateway failures map
// to 502 because the marketplace itself is healthy; consistency violations
// are always a server-side defect and map to 500.
var ErrorCodeHTTPStatus = map[string]int{
	shared.ErrCodeNotFound:              http.StatusNotFound,
	shared.ErrCodeValidation:            http.StatusBadRequest,
	shared.ErrCodeInvalidAmount:         http.StatusBadRequest,
	shared.ErrCodeInvalidTransition:     http.StatusConflict,
	shared.ErrCodeUnauthorized:          http.StatusForbidden,
	shared.ErrCodeConcurrencyConflict:   http.StatusConflict,
	shared.ErrCodeDisputeWindowBlocked:  http.StatusConflict,
	shared.ErrCodePaymentGatewayFailure: http.StatusBadGateway,
	shared.ErrCodeConsistencyViolation:  http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
