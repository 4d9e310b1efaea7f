package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhook_Notify(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(config.WebhookConfig{ContactURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	require.NoError(t, w.Notify(context.Background(), "New message from Ann"))

	assert.Equal(t, "New message from Ann", got.Text)
	assert.Equal(t, got.Text, got.Content)
}

func TestWebhook_TruncatesLongText(t *testing.T) {
	var got payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	w := NewWebhook(config.WebhookConfig{ContactURL: srv.URL}, zap.NewNop())
	require.NoError(t, w.Notify(context.Background(), strings.Repeat("x", 5000)))
	assert.Len(t, got.Content, maxTextLength)
	assert.True(t, strings.HasSuffix(got.Content, "..."))
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook(config.WebhookConfig{ContactURL: srv.URL}, zap.NewNop())
	err := w.Notify(context.Background(), "hi")
	assert.ErrorIs(t, err, shared.ErrUpstream)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhook_Disabled(t *testing.T) {
	w := NewWebhook(config.WebhookConfig{}, zap.NewNop())
	assert.False(t, w.Enabled())
	assert.NoError(t, w.Notify(context.Background(), "dropped"))
}

func TestWebhook_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	w := NewWebhook(config.WebhookConfig{ContactURL: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())
	assert.ErrorIs(t, w.Notify(context.Background(), "slow"), shared.ErrUpstream)
}
