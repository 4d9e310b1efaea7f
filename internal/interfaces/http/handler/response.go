package handler

import "github.com/portfolio/backend/internal/interfaces/http/dto"

// APIResponse is the success envelope as clients decode it.
// dto.Response carries Data as any; this is its typed mirror for the API docs.
type APIResponse[T any] struct {
	Success   bool      `json:"success" example:"true"`
	Message   string    `json:"message" example:"Success"`
	Data      T         `json:"data"`
	Meta      *dto.Meta `json:"meta,omitempty"`
	Timestamp string    `json:"timestamp" example:"2026-01-01T09:30:00.000Z"`
}

// ErrorResponse is the envelope of every non-validation failure
// @Description Standard error response
type ErrorResponse struct {
	Success   bool          `json:"success" example:"false"`
	Message   string        `json:"message" example:"Resource not found"`
	Errors    dto.ErrorInfo `json:"errors"`
	Timestamp string        `json:"timestamp" example:"2026-01-01T09:30:00.000Z"`
}

// ValidationErrorResponse is the 422 envelope, one entry per rejected field
// @Description Request validation failure
type ValidationErrorResponse struct {
	Success   bool             `json:"success" example:"false"`
	Message   string           `json:"message" example:"Request validation failed"`
	Errors    []dto.FieldError `json:"errors"`
	Timestamp string           `json:"timestamp" example:"2026-01-01T09:30:00.000Z"`
}
