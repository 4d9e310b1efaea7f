package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/application/contact"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
)

// ContactHandler accepts contact-form messages and lists them for the admin
type ContactHandler struct {
	BaseHandler
	service *contact.Service
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service *contact.Service) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit handles POST /contact. Each client IP may send a limited number of
// messages per hour; the rest get 429 with Retry-After.
//
// @ID          submitContactMessage
// @Summary     Send a contact-form message
// @Tags        contact
// @Accept      json
// @Produce     json
// @Param       request body contact.SubmitRequest true "Request body"
// @Success     201 {object} APIResponse[contact.SubmitResponse]
// @Failure     422 {object} ValidationErrorResponse
// @Failure     429 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contact.SubmitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	resp, err := h.service.Submit(c.Request.Context(), req, contact.ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Created(c, resp, "Message received")
}

// List handles GET /admin/contact-messages?unread=true
//
// @ID          listContactMessages
// @Summary     List contact messages
// @Tags        admin-contact
// @Produce     json
// @Param       page query int false "Page number, from 1"
// @Param       page_size query int false "Items per page"
// @Param       unread query bool false "Only unread messages"
// @Success     200 {object} APIResponse[[]contact.MessageResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/contact-messages [get]
func (h *ContactHandler) List(c *gin.Context) {
	var q contact.MessageListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, total, filter, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Paginated(c, items, total, filter.Page, filter.PageSize)
}

// MarkRead handles PATCH /admin/contact-messages/:id/read
//
// @ID          markContactMessageRead
// @Summary     Mark a message as read
// @Tags        admin-contact
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     200 {object} APIResponse[contact.MessageResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/contact-messages/{id}/read [patch]
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	msg, err := h.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, msg, "")
}
