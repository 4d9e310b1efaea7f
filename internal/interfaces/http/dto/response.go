package dto

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the envelope timestamp format: ISO-8601 UTC, millisecond precision
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	// DefaultSuccessMessage is used when a success helper gets an empty message
	DefaultSuccessMessage = "Success"
	// DefaultInternalErrorMessage is the only message a 500 ever carries
	DefaultInternalErrorMessage = "Internal server error"
)

// now is replaced in tests
var now = time.Now

// Response is the envelope every API endpoint answers with.
// A success envelope always carries "data", an error envelope always carries "errors".
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
	Meta      *Meta  `json:"meta,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// FieldError is a single field-level validation message
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorInfo is the "errors" payload for non-validation failures
type ErrorInfo struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

type successEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Meta      *Meta  `json:"meta,omitempty"`
	Timestamp string `json:"timestamp"`
}

type errorEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Errors    any    `json:"errors"`
	Timestamp string `json:"timestamp"`
}

// MarshalJSON emits the success or error shape depending on Success.
func (r Response) MarshalJSON() ([]byte, error) {
	ts := r.Timestamp
	if ts == "" {
		ts = Timestamp()
	}
	if r.Success {
		return json.Marshal(successEnvelope{
			Success:   true,
			Message:   r.Message,
			Data:      r.Data,
			Meta:      r.Meta,
			Timestamp: ts,
		})
	}
	return json.Marshal(errorEnvelope{
		Success:   false,
		Message:   r.Message,
		Errors:    r.Errors,
		Timestamp: ts,
	})
}

// Timestamp returns the current time in envelope format
func Timestamp() string {
	return now().UTC().Format(TimestampLayout)
}

// NewSuccessResponse creates a success envelope
func NewSuccessResponse(data any, message string) Response {
	if message == "" {
		message = DefaultSuccessMessage
	}
	return Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: Timestamp(),
	}
}

// NewPaginatedResponse creates a success envelope with pagination meta
func NewPaginatedResponse(data any, total int64, page, pageSize int) Response {
	resp := NewSuccessResponse(data, "")
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	resp.Meta = &Meta{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
	return resp
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(message string, errs any) Response {
	if message == "" {
		message = DefaultInternalErrorMessage
	}
	return Response{
		Success:   false,
		Message:   message,
		Errors:    errs,
		Timestamp: Timestamp(),
	}
}

// ListRequest represents common list/pagination query parameters
type ListRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
