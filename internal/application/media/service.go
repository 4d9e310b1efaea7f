package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// MaxUploadSize bounds a single image upload
const MaxUploadSize = 10 << 20

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// imageExtensions lists the accepted upload content types and their file extension
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// Errors returned by the media service
var (
	ErrInvalidVideoID     = shared.NewDomainError("INVALID_VIDEO_ID", "Video id must be 11 characters of letters, digits, '-' or '_'")
	ErrVideoNotFound      = shared.NewDomainError("VIDEO_NOT_FOUND", "Video not found")
	ErrUnsupportedURL     = shared.NewDomainError("UNSUPPORTED_URL", "Only absolute http(s) URLs can be previewed")
	ErrInvalidContentType = shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG, GIF, WebP and AVIF images can be uploaded")
	ErrInvalidSize        = shared.NewDomainError("INVALID_SIZE", "Upload size must be between 1 byte and 10 MB")
	ErrStorageDisabled    = shared.NewDomainError("SERVICE_UNAVAILABLE", "Media storage is not configured")
)

// Video is the metadata shown for an embedded video
type Video struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ChannelID       string    `json:"channel_id"`
	ChannelTitle    string    `json:"channel_title"`
	PublishedAt     time.Time `json:"published_at"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	Duration        string    `json:"duration"` // ISO-8601, e.g. PT4M13S
	DurationSeconds int       `json:"duration_seconds"`
	ViewCount       int64     `json:"view_count"`
}

// Preview is the Open Graph summary of a web page
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// Upload is a presigned direct-to-storage upload
type Upload struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	PublicURL string            `json:"public_url"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// VideoClient fetches video metadata from the video platform
type VideoClient interface {
	GetVideo(ctx context.Context, id string) (*Video, error)
}

// PreviewFetcher loads and parses a page's Open Graph tags
type PreviewFetcher interface {
	Fetch(ctx context.Context, target string) (*Preview, error)
}

// ObjectStorage issues presigned upload URLs
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (string, time.Time, error)
	PublicURL(key string) string
}

// Config holds media cache settings
type Config struct {
	VideoCacheTTL   time.Duration
	PreviewCacheTTL time.Duration
}

// Service serves video metadata, link previews and upload URLs
type Service struct {
	videos   VideoClient
	previews PreviewFetcher
	storage  ObjectStorage
	cache    cache.Store
	cfg      Config
	now      func() time.Time
}

// NewService creates a media service. storage may be nil when uploads are disabled.
func NewService(videos VideoClient, previews PreviewFetcher, storage ObjectStorage, store cache.Store, cfg Config) *Service {
	return &Service{
		videos:   videos,
		previews: previews,
		storage:  storage,
		cache:    store,
		cfg:      cfg,
		now:      time.Now,
	}
}

// GetVideo returns metadata for a video id, cached for the configured TTL
func (s *Service) GetVideo(ctx context.Context, id string) (*Video, error) {
	id = strings.TrimSpace(id)
	if !videoIDRegex.MatchString(id) {
		return nil, ErrInvalidVideoID
	}
	return cache.GetOrLoad(ctx, s.cache, "video:"+id, s.cfg.VideoCacheTTL, func(ctx context.Context) (*Video, error) {
		return s.videos.GetVideo(ctx, id)
	})
}

// Preview returns the Open Graph preview of target, cached for the configured TTL
func (s *Service) Preview(ctx context.Context, target string) (*Preview, error) {
	normalized, err := ValidatePreviewURL(target)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(normalized))
	key := "preview:" + hex.EncodeToString(sum[:])
	return cache.GetOrLoad(ctx, s.cache, key, s.cfg.PreviewCacheTTL, func(ctx context.Context) (*Preview, error) {
		p, err := s.previews.Fetch(ctx, normalized)
		if err != nil {
			logger.L(ctx).Warn("link preview failed", zap.String("url", normalized), zap.Error(err))
			return nil, err
		}
		return p, nil
	})
}

// ValidatePreviewURL accepts absolute http(s) URLs only and returns them without fragment
func ValidatePreviewURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", ErrUnsupportedURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrUnsupportedURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	return u.String(), nil
}

// UploadInput describes the image an admin wants to upload
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
}

// RequestUpload validates the image and returns a presigned PUT URL under
// uploads/<yyyy>/<mm>/<uuid><ext>
func (s *Service) RequestUpload(ctx context.Context, in UploadInput) (*Upload, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}
	if in.Size <= 0 || in.Size > MaxUploadSize {
		return nil, ErrInvalidSize
	}

	now := s.now().UTC()
	key := path.Join("uploads", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)

	uploadURL, expiresAt, err := s.storage.PresignUpload(ctx, key, contentType, in.Size)
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("presigned image upload",
		zap.String("key", key),
		zap.String("filename", in.Filename),
		zap.Int64("size", in.Size),
	)
	return &Upload{
		Key:       key,
		UploadURL: uploadURL,
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		PublicURL: s.storage.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}
