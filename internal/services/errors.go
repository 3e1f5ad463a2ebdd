// Package services provides the business logic layer between handlers and
// the store. Services encapsulate validation, analysis orchestration, and
// data transformation.
package services

// Error codes carried by ServiceError. The HTTP layer keys its status
// mapping off these, so they are part of the caller-facing contract.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidSample    = "INVALID_SAMPLE"
	CodeMissingType      = "MISSING_TYPE"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeWriteFailed      = "WRITE_FAILED"
	CodeAnalysisCanceled = "ANALYSIS_CANCELED"
)

// ServiceError is the error type every service method returns on
// failure. Code identifies the failure class, Message is safe to show
// to callers, Details carries structured context for logs and clients.
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}
