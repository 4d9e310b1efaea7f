package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/application/media"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
)

// MediaHandler serves video metadata, link previews and upload URLs
type MediaHandler struct {
	BaseHandler
	service *media.Service
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service *media.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// UploadURLRequest asks for a presigned image upload
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// GetVideo handles GET /media/videos/:id
//
// @ID          getVideo
// @Summary     Get video metadata
// @Tags        media
// @Produce     json
// @Param       id path string true "Video ID"
// @Success     200 {object} APIResponse[media.Video]
// @Failure     404 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Failure     503 {object} ErrorResponse
// @Router      /media/videos/{id} [get]
func (h *MediaHandler) GetVideo(c *gin.Context) {
	video, err := h.service.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, video, "")
}

// Preview handles GET /media/preview?url=
//
// @ID          getLinkPreview
// @Summary     Get the Open Graph preview of a page
// @Tags        media
// @Produce     json
// @Param       url query string true "Absolute http(s) URL"
// @Success     200 {object} APIResponse[media.Preview]
// @Failure     400 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /media/preview [get]
func (h *MediaHandler) Preview(c *gin.Context) {
	var q struct {
		URL string `form:"url" binding:"required"`
	}
	if !h.BindQuery(c, &q) {
		return
	}
	preview, err := h.service.Preview(c.Request.Context(), q.URL)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, preview, "")
}

// RequestUpload handles POST /admin/media/upload-url
//
// @ID          requestUploadURL
// @Summary     Get a presigned image upload URL
// @Tags        admin-media
// @Accept      json
// @Produce     json
// @Param       request body UploadURLRequest true "Request body"
// @Success     201 {object} APIResponse[media.Upload]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Failure     503 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/media/upload-url [post]
func (h *MediaHandler) RequestUpload(c *gin.Context) {
	var req UploadURLRequest
	if !h.BindJSON(c, &req) {
		return
	}
	upload, err := h.service.RequestUpload(c.Request.Context(), media.UploadInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Created(c, upload, "")
}
