package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound            = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists       = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation          = new(ErrCodeValidation, "validation error")
	ErrSignatureInvalid    = new(ErrCodeSignatureInvalid, "signature verification failed")
	ErrIntegrationNotFound = new(ErrCodeIntegrationNotFound, "integration not found")
	ErrDatabase            = new(ErrCodeDatabase, "database error")
	ErrSystem              = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:            http.StatusNotFound,
		ErrAlreadyExists:       http.StatusConflict,
		ErrValidation:          http.StatusBadRequest,
		ErrSignatureInvalid:    http.StatusUnauthorized,
		ErrIntegrationNotFound: http.StatusNotFound,
		ErrDatabase:            http.StatusInternalServerError,
		ErrSystem:              http.StatusInternalServerError,
	}
)

const (
	ErrCodeSystemError         = "system_error"
	ErrCodeNotFound            = "not_found"
	ErrCodeAlreadyExists       = "already_exists"
	ErrCodeValidation          = "validation_error"
	ErrCodeSignatureInvalid    = "signature_invalid"
	ErrCodeIntegrationNotFound = "integration_not_found"
	ErrCodeDatabase            = "database_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsSignatureInvalid checks if an error is a signature verification error
func IsSignatureInvalid(err error) bool {
	return errors.Is(err, ErrSignatureInvalid)
}

// IsIntegrationNotFound checks if an error is an integration lookup miss
func IsIntegrationNotFound(err error) bool {
	return errors.Is(err, ErrIntegrationNotFound)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
