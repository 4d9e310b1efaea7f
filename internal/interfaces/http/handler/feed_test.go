package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubFeeds struct {
	sitemap []byte
	err     error
}

func (s stubFeeds) Sitemap(context.Context) ([]byte, error) { return s.sitemap, s.err }

func (s stubFeeds) RSS(context.Context) ([]byte, error) {
	return []byte(`<rss version="2.0"></rss>`), s.err
}

func TestFeedHandler(t *testing.T) {
	h := NewFeedHandler(stubFeeds{sitemap: []byte(`<urlset></urlset>`)})
	r := newTestEngine()
	r.GET("/sitemap.xml", h.Sitemap)
	r.GET("/rss.xml", h.RSS)

	w := perform(r, http.MethodGet, "/sitemap.xml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `<urlset></urlset>`, w.Body.String())

	w = perform(r, http.MethodGet, "/rss.xml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Cache-Control"))
}

func TestFeedHandler_BuildFailure(t *testing.T) {
	h := NewFeedHandler(stubFeeds{err: errors.New("database is gone")})
	r := newTestEngine()
	r.GET("/sitemap.xml", h.Sitemap)

	w := perform(r, http.MethodGet, "/sitemap.xml", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database is gone")
}
