package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown            = "ERR_UNKNOWN"
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeUpstream           = "ERR_UPSTREAM"
)

// Validation error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeInvalidOTP         = "ERR_INVALID_OTP"
	ErrCodeOTPExpired         = "ERR_OTP_EXPIRED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeAccountLocked      = "ERR_ACCOUNT_LOCKED"
	ErrCodeAccountDisabled    = "ERR_ACCOUNT_DISABLED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeBusinessRule       = "ERR_BUSINESS_RULE"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeProductUnavailable = "ERR_PRODUCT_UNAVAILABLE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
	ErrCodeOTPAttemptsExceeded = "ERR_OTP_ATTEMPTS_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstream:           http.StatusServiceUnavailable,

	ErrCodeValidation:  http.StatusUnprocessableEntity,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeSessionExpired:     http.StatusUnauthorized,
	ErrCodeInvalidOTP:         http.StatusUnauthorized,
	ErrCodeOTPExpired:         http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountLocked:      http.StatusForbidden,
	ErrCodeAccountDisabled:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:       http.StatusUnprocessableEntity,
	ErrCodeProductUnavailable: http.StatusUnprocessableEntity,

	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeOTPAttemptsExceeded: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the ERR_* codes above
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeValidation,
	"INVALID_STATE":         ErrCodeInvalidState,
	"INVALID_STATUS":        ErrCodeInvalidState,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"INSUFFICIENT_STOCK":    ErrCodeInsufficientStock,
	"CONCURRENT_UPDATE":     ErrCodeConcurrencyConflict,
	"PRODUCT_UNAVAILABLE":   ErrCodeProductUnavailable,
	"RATE_LIMITED":          ErrCodeRateLimited,
	"SERVICE_UNAVAILABLE":   ErrCodeServiceUnavailable,
	"UPSTREAM_ERROR":        ErrCodeUpstream,
	"INVALID_CREDENTIALS":   ErrCodeInvalidCredentials,
	"TOKEN_EXPIRED":         ErrCodeTokenExpired,
	"TOKEN_INVALID":         ErrCodeTokenInvalid,
	"SESSION_EXPIRED":       ErrCodeSessionExpired,
	"INVALID_OTP":           ErrCodeInvalidOTP,
	"OTP_EXPIRED":           ErrCodeOTPExpired,
	"OTP_ATTEMPTS_EXCEEDED": ErrCodeOTPAttemptsExceeded,
	"ACCOUNT_LOCKED":        ErrCodeAccountLocked,
	"ACCOUNT_DISABLED":      ErrCodeAccountDisabled,
	"ADMIN_DEACTIVATED":     ErrCodeAccountDisabled,
	"CURRENCY_MISMATCH":     ErrCodeBusinessRule,
	"EMPTY_ORDER":           ErrCodeValidation,
	"EMPTY_BODY":            ErrCodeBusinessRule,
	"EMAIL_REQUIRED":        ErrCodeBusinessRule,
	"NOT_PUBLISHED":         ErrCodeInvalidState,
	"NOT_LOCKED":            ErrCodeInvalidState,
	"PASSWORD_HASH_ERROR":   ErrCodeInternal,
	"INTERNAL_ERROR":        ErrCodeInternal,
	"BAD_REQUEST":           ErrCodeBadRequest,
	"UNSUPPORTED_URL":       ErrCodeBadRequest,
	"VIDEO_NOT_FOUND":       ErrCodeNotFound,
	"VALIDATION_ERROR":      ErrCodeValidation,
}

// NormalizeErrorCode converts a domain error code to its ERR_* form.
// INVALID_<FIELD> codes are validation errors and ALREADY_<STATE> codes are conflicts.
// Codes already in ERR_* form or otherwise unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	switch {
	case strings.HasPrefix(code, "ERR_"):
		return code
	case strings.HasPrefix(code, "INVALID_"):
		return ErrCodeValidation
	case strings.HasPrefix(code, "ALREADY_"):
		return ErrCodeConflict
	}
	return code
}

// codeFields names the request field for codes whose suffix is not the field
var codeFields = map[string]string{
	"INVALID_VIDEO_ID": "id",
}

// FieldFromCode derives a field name from an INVALID_<FIELD> domain code,
// e.g. INVALID_EMAIL -> "email". It returns "" for other codes.
func FieldFromCode(code string) string {
	if field, ok := codeFields[code]; ok {
		return field
	}
	field, ok := strings.CutPrefix(code, "INVALID_")
	if !ok || field == "INPUT" {
		return ""
	}
	return strings.ToLower(field)
}
