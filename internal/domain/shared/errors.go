package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new domain error wrapping a cause
func NewDomainErrorWithCause(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a domain error with the given code
func IsDomainError(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "invalid input")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "resource was modified concurrently")
	ErrInvalidStateTransition = NewDomainError("INVALID_STATE_TRANSITION", "invalid state transition")
	ErrSessionExpired         = NewDomainError("SESSION_EXPIRED", "checkout session has expired")
	ErrSessionInconsistent    = NewDomainError("SESSION_INCONSISTENT", "checkout session state is inconsistent")
	ErrDuplicateRequest       = NewDomainError("DUPLICATE_REQUEST", "duplicate request")
	ErrCommerceUnavailable    = NewDomainError("COMMERCE_UNAVAILABLE", "commerce platform is unavailable")
)
