package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared between the domain layer and the HTTP error mapper
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeConcurrencyConflict   = "CONCURRENT_MODIFICATION"
	ErrCodeInvalidAmount         = "INVALID_AMOUNT"
	ErrCodeConsistencyViolation  = "CONSISTENCY_VIOLATION"
	ErrCodeDisputeWindowBlocked  = "DISPUTE_OPEN"
	ErrCodePaymentGatewayFailure = "PAYMENT_GATEWAY_FAILURE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrValidation          = NewDomainError(ErrCodeValidation, "Invalid input provided")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Transition not allowed from current state")
	ErrUnauthorized        = NewDomainError(ErrCodeUnauthorized, "Actor is not allowed to perform this transition")
	ErrConcurrencyConflict = NewDomainError(ErrCodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidAmount       = NewDomainError(ErrCodeInvalidAmount, "Amount must be positive")
)

// ConsistencyError signals a broken money or state invariant. It is always
// fatal for the operation that detected it and is never coerced into a
// softer error class.
type ConsistencyError struct {
	Invariant string
	Detail    string
}

// Error implements the error interface
func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Invariant + ": " + e.Detail
}

// NewConsistencyError creates a ConsistencyError for a named invariant
func NewConsistencyError(invariant, detail string) *ConsistencyError {
	return &ConsistencyError{Invariant: invariant, Detail: detail}
}
