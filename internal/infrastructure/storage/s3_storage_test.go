package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minioConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "portfolio-media",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
		PresignExpiry:   10 * time.Minute,
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3Storage(ctx, nil)
		assert.ErrorContains(t, err, "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := minioConfig()
		cfg.Bucket = ""
		_, err := NewS3Storage(ctx, cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("half a key pair", func(t *testing.T) {
		cfg := minioConfig()
		cfg.SecretAccessKey = ""
		_, err := NewS3Storage(ctx, cfg)
		assert.ErrorContains(t, err, "must be set together")
	})

	t.Run("endpoint without scheme", func(t *testing.T) {
		cfg := minioConfig()
		cfg.Endpoint = "localhost:9000"
		_, err := NewS3Storage(ctx, cfg)
		assert.ErrorContains(t, err, "invalid storage endpoint")
	})

	t.Run("default expiry", func(t *testing.T) {
		cfg := minioConfig()
		cfg.PresignExpiry = 0
		s, err := NewS3Storage(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, s.presignExpiry)
		assert.Equal(t, "portfolio-media", s.Bucket())
	})
}

func TestS3Storage_PresignUpload(t *testing.T) {
	s, err := NewS3Storage(context.Background(), minioConfig())
	require.NoError(t, err)

	before := time.Now()
	raw, expiresAt, err := s.PresignUpload(context.Background(), "uploads/2026/03/a.png", "image/png", 2048)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/portfolio-media/uploads/2026/03/a.png", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
	assert.WithinDuration(t, before.Add(10*time.Minute), expiresAt, 5*time.Second)

	_, _, err = s.PresignUpload(context.Background(), "", "image/png", 1)
	assert.ErrorContains(t, err, "storage key is required")
}

func TestS3Storage_PublicURL(t *testing.T) {
	ctx := context.Background()

	pathStyle, err := NewS3Storage(ctx, minioConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/portfolio-media/uploads/my%20file.png",
		pathStyle.PublicURL("uploads/my file.png"))

	cfg := minioConfig()
	cfg.PublicBaseURL = "https://cdn.example.com/"
	cdn, err := NewS3Storage(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/a.png", cdn.PublicURL("uploads/a.png"))

	cfg = minioConfig()
	cfg.Endpoint = ""
	cfg.UsePathStyle = false
	cfg.Region = "eu-west-1"
	aws, err := NewS3Storage(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(aws.PublicURL("a.png"), "https://portfolio-media.s3.eu-west-1.amazonaws.com/"))
}

func TestS3Storage_Upload_Validation(t *testing.T) {
	s, err := NewS3Storage(context.Background(), minioConfig())
	require.NoError(t, err)
	assert.ErrorContains(t, s.Upload(context.Background(), "", []byte("x"), "image/png"), "storage key is required")
}
