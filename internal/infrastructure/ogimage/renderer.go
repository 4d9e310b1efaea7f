package ogimage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
	// DefaultWidth and DefaultHeight are the Open Graph recommended image size
	DefaultWidth  = 1200
	DefaultHeight = 630
)

// Config contains configuration for the card renderer
type Config struct {
	// Timeout for a single render
	Timeout time.Duration
	// RemoteURL is the DevTools websocket of a running Chrome (optional).
	// If empty, a headless browser is launched.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Width     int
	Height    int
	Logger    *zap.Logger
}

// Renderer turns cards into PNG images using Chrome DevTools Protocol
type Renderer struct {
	config      Config
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewRenderer creates a renderer. The browser starts lazily on the first Render.
func NewRenderer(config Config) *Renderer {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Renderer{config: config, logger: logger}
	r.allocCtx, r.allocCancel = r.newAllocator()
	return r
}

func (r *Renderer) newAllocator() (context.Context, context.CancelFunc) {
	if r.config.RemoteURL != "" {
		return chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.WindowSize(r.config.Width, r.config.Height),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	return chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render draws the card and returns the PNG bytes
func (r *Renderer) Render(ctx context.Context, card Card) ([]byte, error) {
	html, err := card.HTML(r.config.Width, r.config.Height)
	if err != nil {
		return nil, err
	}
	return r.RenderHTML(ctx, html)
}

// RenderHTML screenshots arbitrary markup at the configured viewport size
func (r *Renderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	runCtx, cancel := context.WithTimeout(browserCtx, r.config.Timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var png []byte
	err := chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(r.config.Width), int64(r.config.Height), 1, false),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{
					Width:  float64(r.config.Width),
					Height: float64(r.config.Height),
					Scale:  1,
				}).
				Do(ctx)
			if err != nil {
				return err
			}
			png = data
			return nil
		}),
	)
	if err != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("card rendering timed out after %v", r.config.Timeout), err)
		case ctx.Err() != nil:
			return nil, NewRenderError(ErrCodeRenderTimeout, "card rendering was cancelled", ctx.Err())
		}
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to capture card", err)
	}

	r.logger.Debug("Card rendered",
		zap.Int("bytes", len(png)),
		zap.Duration("duration", time.Since(start)))
	return png, nil
}

// Close shuts the browser down
func (r *Renderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
