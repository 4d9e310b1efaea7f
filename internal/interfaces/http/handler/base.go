// Package handler contains the gin handlers of the portfolio API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"github.com/portfolio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides request binding and error mapping shared by all handlers
type BaseHandler struct{}

func (h *BaseHandler) errorInfo(c *gin.Context, code string) dto.ErrorInfo {
	return dto.ErrorInfo{Code: code, RequestID: middleware.GetRequestID(c)}
}

// BadRequest sends a 400 envelope
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	dto.BadRequest(c, message, h.errorInfo(c, dto.ErrCodeBadRequest))
}

// NotFound sends a 404 envelope
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	dto.NotFound(c, message, h.errorInfo(c, dto.ErrCodeNotFound))
}

// ValidationError sends a 422 envelope with field-level messages
func (h *BaseHandler) ValidationError(c *gin.Context, fields []dto.FieldError) {
	dto.UnprocessableEntity(c, "Request validation failed", fields)
}

// BindJSON decodes and validates the JSON body into obj. On failure it writes
// the response and returns false: malformed JSON is a 400, failed validation
// a 422 with field errors and an oversized body a 413.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.bindError(c, err, "Invalid request body")
		return false
	}
	return true
}

// BindQuery binds and validates query parameters into obj
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.bindError(c, err, "Invalid query parameters")
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error, fallback string) {
	if fields := middleware.FieldErrors(err); fields != nil {
		h.ValidationError(c, fields)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		h.ValidationError(c, []dto.FieldError{{Field: typeErr.Field, Message: "Must be a " + typeErr.Type.String()}})
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		dto.Error(c, http.StatusRequestEntityTooLarge, "Request body exceeds maximum allowed size",
			h.errorInfo(c, middleware.ErrCodeRequestTooLarge))
		return
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		dto.BadRequest(c, "Malformed JSON", h.errorInfo(c, dto.ErrCodeInvalidJSON))
		return
	}
	h.BadRequest(c, fallback)
}

// ParseID reads a UUID path parameter, answering 400 when it is not one
func (h *BaseHandler) ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// HandleError maps an application error to a response.
// Domain errors use the error-code table; INVALID_<FIELD> codes become a 422
// with that field. Rate-limit errors add Retry-After. Anything else is logged
// and answered with the generic 500, so internal details never leak.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var retry *shared.RetryAfterError
	if errors.As(err, &retry) {
		middleware.SetRetryAfter(c, retry.RetryAfter)
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)

		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			h.logUnexpected(c, err)
		}
		if code == dto.ErrCodeValidation {
			if field := dto.FieldFromCode(domainErr.Code); field != "" {
				h.ValidationError(c, []dto.FieldError{{Field: field, Message: domainErr.Message}})
				return
			}
		}
		dto.Error(c, status, domainErr.Message, h.errorInfo(c, code))
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.GetGinLogger(c).Warn("Request timed out", zap.Error(err))
		dto.ServiceUnavailable(c, "The request timed out, please try again", h.errorInfo(c, dto.ErrCodeServiceUnavailable))
		return
	}

	h.logUnexpected(c, err)
	dto.InternalServerError(c)
}

func (h *BaseHandler) logUnexpected(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
}
