package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success writes a 200 envelope
func Success(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, NewSuccessResponse(data, message))
}

// Paginated writes a 200 envelope with pagination meta
func Paginated(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, NewPaginatedResponse(data, total, page, pageSize))
}

// Created writes a 201 envelope
func Created(c *gin.Context, data any, message string) {
	if message == "" {
		message = "Created"
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(data, message))
}

// NoContent writes a bare 204 with no body
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error aborts the request with an error envelope. An empty message uses the
// status default. A 500 always carries the generic message and no error details.
func Error(c *gin.Context, status int, message string, errs any) {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		message = DefaultInternalErrorMessage
		errs = nil
	}
	if message == "" {
		message = DefaultMessage(status)
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(message, errs))
}

// BadRequest writes a 400 envelope
func BadRequest(c *gin.Context, message string, errs any) {
	Error(c, http.StatusBadRequest, message, errs)
}

// Unauthorized writes a 401 envelope
func Unauthorized(c *gin.Context, message string, errs any) {
	Error(c, http.StatusUnauthorized, message, errs)
}

// Forbidden writes a 403 envelope
func Forbidden(c *gin.Context, message string, errs any) {
	Error(c, http.StatusForbidden, message, errs)
}

// NotFound writes a 404 envelope
func NotFound(c *gin.Context, message string, errs any) {
	Error(c, http.StatusNotFound, message, errs)
}

// Conflict writes a 409 envelope
func Conflict(c *gin.Context, message string, errs any) {
	Error(c, http.StatusConflict, message, errs)
}

// UnprocessableEntity writes a 422 envelope, typically with []FieldError
func UnprocessableEntity(c *gin.Context, message string, errs any) {
	Error(c, http.StatusUnprocessableEntity, message, errs)
}

// TooManyRequests writes a 429 envelope
func TooManyRequests(c *gin.Context, message string, errs any) {
	Error(c, http.StatusTooManyRequests, message, errs)
}

// InternalServerError writes the generic 500 envelope
func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "", nil)
}

// ServiceUnavailable writes a 503 envelope
func ServiceUnavailable(c *gin.Context, message string, errs any) {
	Error(c, http.StatusServiceUnavailable, message, errs)
}
