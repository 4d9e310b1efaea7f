// Package notify posts short notifications to a chat webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// maxTextLength keeps payloads under the Discord content limit
const maxTextLength = 2000

// payload is accepted by both Slack ("text") and Discord ("content") incoming webhooks
type payload struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// Webhook sends notifications to a Slack- or Discord-compatible webhook
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhook creates a Webhook. An empty URL makes Notify a no-op.
func NewWebhook(cfg config.WebhookConfig, logger *zap.Logger) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		url:    cfg.ContactURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Enabled reports whether a webhook URL is configured
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// Notify posts text to the webhook. Failures wrap shared.ErrUpstream.
func (w *Webhook) Notify(ctx context.Context, text string) error {
	if !w.Enabled() {
		w.logger.Debug("webhook disabled, dropping notification")
		return nil
	}
	if len(text) > maxTextLength {
		text = text[:maxTextLength-3] + "..."
	}

	body, err := json.Marshal(payload{Text: text, Content: text})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: webhook: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: webhook returned status %d", shared.ErrUpstream, resp.StatusCode)
	}
	return nil
}
