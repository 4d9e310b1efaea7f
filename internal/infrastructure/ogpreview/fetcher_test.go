package ogpreview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/application/media"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ogPage = `<!doctype html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="  Building a   blog in Go ">
<meta property="og:description" content="Notes from the rewrite">
<meta property="og:image" content="/img/card.png">
<meta property="og:site_name" content="Gopher Notes">
<meta name="description" content="ignored when og:description exists">
</head><body><meta property="og:title" content="in body"></body></html>`

func TestParse_OpenGraph(t *testing.T) {
	p, err := Parse(strings.NewReader(ogPage), "https://blog.example.com/posts/go")
	require.NoError(t, err)

	assert.Equal(t, media.Preview{
		URL:         "https://blog.example.com/posts/go",
		Title:       "Building a blog in Go",
		Description: "Notes from the rewrite",
		Image:       "https://blog.example.com/img/card.png",
		SiteName:    "Gopher Notes",
	}, *p)
}

func TestParse_Fallbacks(t *testing.T) {
	page := `<html><head><title>Plain page</title><meta name="Description" content="About me"></head></html>`
	p, err := Parse(strings.NewReader(page), "https://example.com/about")
	require.NoError(t, err)

	assert.Equal(t, "Plain page", p.Title)
	assert.Equal(t, "About me", p.Description)
	assert.Empty(t, p.Image)

	p, err = Parse(strings.NewReader("<html></html>"), "https://example.com/empty")
	require.NoError(t, err)
	assert.Equal(t, "example.com", p.Title)
}

func TestParse_DropsNonHTTPImage(t *testing.T) {
	page := `<head><meta property="og:image" content="javascript:alert(1)"></head>`
	p, err := Parse(strings.NewReader(page), "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, p.Image)
}

func TestFetcher_ProxyURL(t *testing.T) {
	f := NewFetcher(config.PreviewConfig{ProxyTemplate: "https://corsproxy.io/?{url}"}, zap.NewNop())
	assert.Equal(t, "https://corsproxy.io/?https%3A%2F%2Fexample.com%2Fa%3Fb%3D1", f.ProxyURL("https://example.com/a?b=1"))

	direct := NewFetcher(config.PreviewConfig{}, zap.NewNop())
	assert.Equal(t, "https://example.com", direct.ProxyURL("https://example.com"))
}

func TestFetcher_FetchThroughProxy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://blog.example.com/posts/go", r.URL.Query().Get("url"))
		assert.Equal(t, "PreviewBot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ogPage))
	}))
	defer srv.Close()

	f := NewFetcher(config.PreviewConfig{
		ProxyTemplate: srv.URL + "/?url={url}",
		UserAgent:         "PreviewBot/1.0",
		Timeout:           time.Second,
		AllowPrivateHosts: true,
	}, zap.NewNop())

	p, err := f.Fetch(context.Background(), "https://blog.example.com/posts/go")
	require.NoError(t, err)
	assert.Equal(t, "Building a blog in Go", p.Title)
}

func TestFetcher_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Head</title></head><body>` + strings.Repeat("a", 10000) +
			`<meta property="og:title" content="too late"></body></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(config.PreviewConfig{MaxBytes: 64, AllowPrivateHosts: true}, zap.NewNop())
	p, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Head", p.Title)
}

func TestFetcher_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(config.PreviewConfig{AllowPrivateHosts: true}, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, shared.ErrUpstream)
}

func TestFetcher_RefusesInternalHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<html><head><title>INTERNAL-ADMIN-SECRET</title></head></html>`))
	}))
	defer srv.Close()

	f := NewFetcher(config.PreviewConfig{}, zap.NewNop())
	for _, target := range []string{srv.URL, strings.Replace(srv.URL, "127.0.0.1", "localhost", 1)} {
		p, err := f.Fetch(context.Background(), target)
		assert.Nil(t, p, target)
		assert.ErrorIs(t, err, ErrPrivateTarget, target)
	}
	assert.Zero(t, hits.Load(), "the internal server is never contacted")
}

func TestFetcher_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/again", http.StatusFound)
	}))
	defer srv.Close()

	f := NewFetcher(config.PreviewConfig{AllowPrivateHosts: true}, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, shared.ErrUpstream)
	assert.Contains(t, err.Error(), "redirects")
}

func TestIsPublicAddr(t *testing.T) {
	for addr, public := range map[string]bool{
		"93.184.216.34":    true,
		"2606:4700::1111":  true,
		"127.0.0.1":        false,
		"10.1.2.3":         false,
		"172.16.0.1":       false,
		"192.168.1.10":     false,
		"169.254.169.254":  false,
		"100.64.0.1":       false,
		"0.0.0.0":          false,
		"::1":              false,
		"fd00:ec2::254":    false,
		"fe80::1":          false,
		"::ffff:127.0.0.1": false,
		"::ffff:8.8.8.8":   true,
		"224.0.0.1":        false,
	} {
		assert.Equal(t, public, IsPublicAddr(netip.MustParseAddr(addr)), addr)
	}
}
