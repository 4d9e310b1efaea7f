package dto

import "net/http"

// Status names used across the API
const (
	StatusOK                  = "OK"
	StatusCreated             = "CREATED"
	StatusNoContent           = "NO_CONTENT"
	StatusBadRequest          = "BAD_REQUEST"
	StatusUnauthorized        = "UNAUTHORIZED"
	StatusForbidden           = "FORBIDDEN"
	StatusNotFound            = "NOT_FOUND"
	StatusConflict            = "CONFLICT"
	StatusUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	StatusTooManyRequests     = "TOO_MANY_REQUESTS"
	StatusInternalServerError = "INTERNAL_SERVER_ERROR"
	StatusServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

var statusCodes = map[string]int{
	StatusOK:                  http.StatusOK,
	StatusCreated:             http.StatusCreated,
	StatusNoContent:           http.StatusNoContent,
	StatusBadRequest:          http.StatusBadRequest,
	StatusUnauthorized:        http.StatusUnauthorized,
	StatusForbidden:           http.StatusForbidden,
	StatusNotFound:            http.StatusNotFound,
	StatusConflict:            http.StatusConflict,
	StatusUnprocessableEntity: http.StatusUnprocessableEntity,
	StatusTooManyRequests:     http.StatusTooManyRequests,
	StatusInternalServerError: http.StatusInternalServerError,
	StatusServiceUnavailable:  http.StatusServiceUnavailable,
}

var statusNames = func() map[int]string {
	m := make(map[int]string, len(statusCodes))
	for name, code := range statusCodes {
		m[code] = name
	}
	return m
}()

// StatusFor returns the HTTP code for a status name
func StatusFor(name string) (int, bool) {
	code, ok := statusCodes[name]
	return code, ok
}

// StatusName returns the status name for an HTTP code, or "" if the code is not in the table
func StatusName(code int) string {
	return statusNames[code]
}

// StatusNames lists every name in the table
func StatusNames() []string {
	return []string{
		StatusOK, StatusCreated, StatusNoContent,
		StatusBadRequest, StatusUnauthorized, StatusForbidden, StatusNotFound,
		StatusConflict, StatusUnprocessableEntity, StatusTooManyRequests,
		StatusInternalServerError, StatusServiceUnavailable,
	}
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Bad request",
	http.StatusUnauthorized:        "Unauthorized",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Resource not found",
	http.StatusConflict:            "Conflict",
	http.StatusUnprocessableEntity: "Validation failed",
	http.StatusTooManyRequests:     "Too many requests",
	http.StatusInternalServerError: DefaultInternalErrorMessage,
	http.StatusServiceUnavailable:  "Service unavailable",
}

// DefaultMessage returns the fallback message for an error status
func DefaultMessage(code int) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}
