package shared

import (
	"fmt"
	"time"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden         = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrConcurrentUpdate  = NewDomainError("CONCURRENT_UPDATE", "The resource was changed by another request, reload and try again")
	ErrRateLimited       = NewDomainError("RATE_LIMITED", "Too many requests, please try again later")
	ErrUnavailable       = NewDomainError("SERVICE_UNAVAILABLE", "Upstream service is unavailable")
	ErrUpstream          = NewDomainError("UPSTREAM_ERROR", "Upstream service request failed")
)

// RetryAfterError annotates an error with how long the caller should wait
// before trying again
type RetryAfterError struct {
	Err        error
	RetryAfter time.Duration
}

// NewRateLimitError returns ErrRateLimited carrying a retry hint
func NewRateLimitError(retryAfter time.Duration) *RetryAfterError {
	return &RetryAfterError{Err: ErrRateLimited, RetryAfter: retryAfter}
}

// Error implements the error interface
func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s (retry in %s)", e.Err.Error(), e.RetryAfter.Round(time.Second))
}

// Unwrap returns the annotated error
func (e *RetryAfterError) Unwrap() error {
	return e.Err
}
