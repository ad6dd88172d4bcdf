package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/captcha-dashboard/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryValidation represents malformed request input (400)
	CategoryValidation ErrorCategory = "validation"
	// CategoryUserInput represents well-formed input the ledger rejects (400)
	CategoryUserInput ErrorCategory = "user_input"
	// CategoryNotFound represents a missing resource (404)
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryConflict represents a state conflict (409)
	CategoryConflict ErrorCategory = "conflict"
	// CategoryProcessing represents a failed external solve persisted on the job (500)
	CategoryProcessing ErrorCategory = "processing"
	// CategoryUnavailable represents an optional dependency that is not configured (503)
	CategoryUnavailable ErrorCategory = "unavailable"
	// CategoryRateLimit represents rate limit errors (429)
	CategoryRateLimit ErrorCategory = "rate_limit"
	// CategorySystem represents unexpected errors (500)
	CategorySystem ErrorCategory = "system"
)

// Error codes returned in API error bodies
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidJobData      = "INVALID_JOB_DATA"
	CodeProcessingFailure   = "PROCESSING_FAILURE"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	CodeInternal            = "INTERNAL_ERROR"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// FieldError is one entry of a validation error list
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

// User Input Errors (4xx)

// NewValidationError creates a validation error carrying a field-level error list
func NewValidationError(message string, fields []FieldError) *CategorizedError {
	details := map[string]interface{}{}
	if len(fields) > 0 {
		details["fields"] = fields
	}
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
		Details:    details,
	}
}

// NewInvalidParameterError creates an invalid parameter error
func NewInvalidParameterError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidParameter,
		Message:    fmt.Sprintf("invalid parameter '%s': %s", param, reason),
		Details: map[string]interface{}{
			"fields": []FieldError{{Field: param, Message: reason}},
		},
	}
}

// NewInsufficientBalanceError creates an error for a withdrawal above the balance
func NewInsufficientBalanceError(requested, balance string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInsufficientBalance,
		Message:    "insufficient balance",
		Details: map[string]interface{}{
			"requested": requested,
			"balance":   balance,
		},
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       CodeConflict,
		Message:    message,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(limit float64) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimit,
		Message:    "rate limit exceeded, please try again later",
		Details: map[string]interface{}{
			"limit": limit,
		},
	}
}

// Processing Errors

// NewInvalidJobDataError creates an error for a job payload no solver can route
func NewInvalidJobDataError(jobType types.JobType, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProcessing,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInvalidJobData,
		Message:    reason,
		Details: map[string]interface{}{
			"type": jobType,
		},
	}
}

// NewProcessingFailureError creates an error for a failed external solve
func NewProcessingFailureError(jobID string, cause error) *CategorizedError {
	message := "processing failed"
	if cause != nil {
		message = cause.Error()
	}
	return &CategorizedError{
		Category:   CategoryProcessing,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeProcessingFailure,
		Message:    message,
		Cause:      cause,
		Details: map[string]interface{}{
			"jobId": jobID,
		},
	}
}

// System Errors (5xx)

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    message,
		Cause:      cause,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(service string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUnavailable,
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeServiceUnavailable,
		Message:    fmt.Sprintf("service unavailable: %s", service),
		Details: map[string]interface{}{
			"service": service,
		},
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	var svcErr *types.ServiceError
	if stderrors.As(err, &svcErr) {
		return categorizeServiceError(svcErr)
	}

	return NewInternalError("an internal error occurred", err)
}

// categorizeServiceError categorizes a ServiceError
func categorizeServiceError(err *types.ServiceError) *CategorizedError {
	status := http.StatusInternalServerError
	category := CategorySystem

	switch err.Code {
	case CodeValidation, CodeInvalidParameter:
		status, category = http.StatusBadRequest, CategoryValidation
	case CodeInsufficientBalance:
		status, category = http.StatusBadRequest, CategoryUserInput
	case CodeNotFound:
		status, category = http.StatusNotFound, CategoryNotFound
	case CodeConflict:
		status, category = http.StatusConflict, CategoryConflict
	case CodeServiceUnavailable:
		status, category = http.StatusServiceUnavailable, CategoryUnavailable
	case CodeInvalidJobData, CodeProcessingFailure:
		category = CategoryProcessing
	}

	return &CategorizedError{
		Category:   category,
		StatusCode: status,
		Code:       err.Code,
		Message:    err.Message,
		Details:    err.Details,
	}
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	catErr := Categorize(err)
	return catErr != nil && catErr.Category == CategoryNotFound
}

// IsUserError determines if an error is a user error (4xx)
func IsUserError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.StatusCode >= 400 && catErr.StatusCode < 500
}

// IsSystemError determines if an error is a system error (5xx)
func IsSystemError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.StatusCode >= 500
}
