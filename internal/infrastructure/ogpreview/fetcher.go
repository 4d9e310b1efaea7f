// Package ogpreview fetches a page, optionally through a CORS proxy, and
// extracts its Open Graph summary.
package ogpreview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/portfolio/backend/internal/application/media"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var _ media.PreviewFetcher = (*Fetcher)(nil)

// Placeholder is replaced by the URL-escaped target in the proxy template
const Placeholder = "{url}"

// maxRedirects bounds how many hops a preview may follow
const maxRedirects = 5

// ErrPrivateTarget rejects previews of hosts that resolve to non-public addresses
var ErrPrivateTarget = shared.NewDomainError("UNSUPPORTED_URL", "Only public hosts can be previewed")

var errBlockedAddress = errors.New("destination address is not public")

// cgnat is the carrier-grade NAT range, which netip does not class as private
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// IsPublicAddr reports whether addr is routable on the public internet.
// Loopback, private, link-local (cloud metadata included), CGNAT, multicast
// and unspecified addresses are not.
func IsPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified() &&
		!cgnat.Contains(addr)
}

// guardDial runs after DNS resolution for every connection, redirects
// included, so a name that resolves to an internal address is refused.
func guardDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !IsPublicAddr(addr) {
		return errBlockedAddress
	}
	return nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
	}
	return nil
}

// Fetcher downloads pages and parses their meta tags
type Fetcher struct {
	proxyTemplate string
	userAgent     string
	maxBytes      int64
	client        *http.Client
	logger        *zap.Logger
}

// NewFetcher creates a Fetcher from configuration
func NewFetcher(cfg config.PreviewConfig, logger *zap.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := &net.Dialer{Timeout: timeout}
	if !cfg.AllowPrivateHosts {
		dialer.Control = guardDial
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &Fetcher{
		proxyTemplate: cfg.ProxyTemplate,
		userAgent:     cfg.UserAgent,
		maxBytes:      maxBytes,
		client:        &http.Client{Timeout: timeout, Transport: transport, CheckRedirect: checkRedirect},
		logger:        logger,
	}
}

// ProxyURL returns the URL actually requested for target
func (f *Fetcher) ProxyURL(target string) string {
	if f.proxyTemplate == "" {
		return target
	}
	return strings.ReplaceAll(f.proxyTemplate, Placeholder, url.QueryEscape(target))
}

// Fetch downloads target, reading at most maxBytes, and parses the preview
func (f *Fetcher) Fetch(ctx context.Context, target string) (*media.Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ProxyURL(target), nil)
	if err != nil {
		return nil, fmt.Errorf("build preview request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if errors.Is(err, errBlockedAddress) {
		f.logger.Warn("Preview target refused", zap.String("url", target))
		return nil, ErrPrivateTarget
	}
	if err != nil {
		return nil, fmt.Errorf("%w: preview fetch: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: preview fetch returned status %d", shared.ErrUpstream, resp.StatusCode)
	}

	p, err := Parse(io.LimitReader(resp.Body, f.maxBytes), target)
	if err != nil {
		return nil, fmt.Errorf("%w: parse preview: %v", shared.ErrUpstream, err)
	}
	return p, nil
}

// Parse extracts og:* tags from an HTML document, falling back to <title> and
// <meta name="description">. Relative og:image and og:url values resolve against pageURL.
func Parse(r io.Reader, pageURL string) (*media.Preview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var (
		og        = make(map[string]string)
		title     string
		metaDesc  string
		visitNode func(n *html.Node)
	)
	visitNode = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = n.FirstChild.Data
				}
			case "meta":
				content := strings.TrimSpace(getAttr(n, "content"))
				if prop := strings.ToLower(getAttr(n, "property")); strings.HasPrefix(prop, "og:") {
					if _, seen := og[prop]; !seen && content != "" {
						og[prop] = content
					}
				}
				if strings.EqualFold(getAttr(n, "name"), "description") && metaDesc == "" {
					metaDesc = content
				}
			case "body":
				// meta tags belong in head; skip page content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visitNode(c)
		}
	}
	visitNode(doc)

	p := &media.Preview{
		URL:         firstNonEmpty(resolve(pageURL, og["og:url"]), pageURL),
		Title:       collapse(firstNonEmpty(og["og:title"], title)),
		Description: collapse(firstNonEmpty(og["og:description"], metaDesc)),
		Image:       resolve(pageURL, og["og:image"]),
		SiteName:    collapse(og["og:site_name"]),
	}
	if p.Title == "" {
		if u, err := url.Parse(pageURL); err == nil {
			p.Title = u.Host
		}
	}
	return p, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// resolve makes ref absolute against base. Non-http(s) results are dropped.
func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	abs := b.ResolveReference(r)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
