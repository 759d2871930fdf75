package errors

import (
	"fmt"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryValidation is a malformed user-supplied identifier or value
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
	// ErrorCategoryConfiguration is a missing or unconfigured tool or environment
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
	// ErrorCategoryParameter is an option that references a nonexistent resource
	ErrorCategoryParameter ErrorCategory = "PARAMETER"
	// ErrorCategoryProvider is a failure reported by a provider call
	ErrorCategoryProvider ErrorCategory = "PROVIDER"
	// ErrorCategoryTask is an uncaught failure while resolving or processing a task
	ErrorCategoryTask ErrorCategory = "TASK"
	// ErrorCategoryRuntime covers everything else
	ErrorCategoryRuntime ErrorCategory = "RUNTIME"
)

// GardenError is a structured error with context and troubleshooting information
type GardenError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *GardenError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))
	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.OriginalError))
	}
	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *GardenError) Unwrap() error {
	return e.OriginalError
}

// Is matches another GardenError with the same category and code, so sentinel
// values can be compared with errors.Is.
func (e *GardenError) Is(target error) bool {
	t, ok := target.(*GardenError)
	if !ok {
		return false
	}
	return e.Category == t.Category && (t.Code == "" || e.Code == t.Code)
}

// NewGardenError creates a new error with the specified parameters
func NewGardenError(category ErrorCategory, code, message, operation string) *GardenError {
	return &GardenError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *GardenError) WithContext(key string, value interface{}) *GardenError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *GardenError) WithTroubleshooting(steps ...string) *GardenError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error
func (e *GardenError) WithOriginalError(err error) *GardenError {
	e.OriginalError = err
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(code, message, operation string) *GardenError {
	return NewGardenError(ErrorCategoryValidation, code, message, operation)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(code, message, operation string) *GardenError {
	return NewGardenError(ErrorCategoryConfiguration, code, message, operation)
}

// NewParameterError creates a new parameter error
func NewParameterError(code, message, operation string) *GardenError {
	return NewGardenError(ErrorCategoryParameter, code, message, operation)
}

// NewProviderError creates a new provider error
func NewProviderError(code, message, operation string) *GardenError {
	return NewGardenError(ErrorCategoryProvider, code, message, operation)
}
