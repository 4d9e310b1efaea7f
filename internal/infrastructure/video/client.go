// Package video reads video metadata from the YouTube Data API v3.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/application/media"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ media.VideoClient = (*Client)(nil)

var isoDurationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = shared.NewDomainError("SERVICE_UNAVAILABLE", "Video metadata is not configured")

// Client calls the videos endpoint
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Client from configuration
func NewClient(cfg config.VideoConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			PublishedAt  time.Time            `json:"publishedAt"`
			ChannelID    string               `json:"channelId"`
			Title        string               `json:"title"`
			Description  string               `json:"description"`
			ChannelTitle string               `json:"channelTitle"`
			Thumbnails   map[string]thumbnail `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetVideo fetches snippet, content details and statistics for one video
func (c *Client) GetVideo(ctx context.Context, id string) (*media.Video, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("id", id)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build video request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: video api: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var body videosResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode video response: %v", shared.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if body.Error != nil {
			msg = body.Error.Message
		}
		c.logger.Warn("video api error", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return nil, fmt.Errorf("%w: video api status %d", shared.ErrUpstream, resp.StatusCode)
	}
	if len(body.Items) == 0 {
		return nil, media.ErrVideoNotFound
	}

	item := body.Items[0]
	views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	return &media.Video{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		ChannelID:       item.Snippet.ChannelID,
		ChannelTitle:    item.Snippet.ChannelTitle,
		PublishedAt:     item.Snippet.PublishedAt,
		ThumbnailURL:    bestThumbnail(item.Snippet.Thumbnails),
		Duration:        item.ContentDetails.Duration,
		DurationSeconds: ParseDuration(item.ContentDetails.Duration),
		ViewCount:       views,
	}, nil
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// bestThumbnail picks the largest available thumbnail
func bestThumbnail(thumbs map[string]thumbnail) string {
	for _, size := range []string{"maxres", "standard", "high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// ParseDuration converts an ISO-8601 duration such as PT1H2M3S to seconds.
// Unparsable input yields 0.
func ParseDuration(iso string) int {
	m := isoDurationRegex.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}
	total := 0
	for i, unit := range []int{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		total += n * unit
	}
	return total
}
