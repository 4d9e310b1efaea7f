package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FeedBuilder renders the cached XML documents
type FeedBuilder interface {
	Sitemap(ctx context.Context) ([]byte, error)
	RSS(ctx context.Context) ([]byte, error)
}

// FeedHandler serves /sitemap.xml and /rss.xml
type FeedHandler struct {
	BaseHandler
	feeds FeedBuilder
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feeds FeedBuilder) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// Sitemap handles GET /sitemap.xml
func (h *FeedHandler) Sitemap(c *gin.Context) {
	h.serve(c, h.feeds.Sitemap, "application/xml; charset=utf-8")
}

// RSS handles GET /rss.xml
func (h *FeedHandler) RSS(c *gin.Context) {
	h.serve(c, h.feeds.RSS, "application/rss+xml; charset=utf-8")
}

func (h *FeedHandler) serve(c *gin.Context, build func(context.Context) ([]byte, error), contentType string) {
	body, err := build(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, contentType, body)
}
