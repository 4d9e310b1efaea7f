package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockVideoClient struct {
	mock.Mock
}

func (m *MockVideoClient) GetVideo(ctx context.Context, id string) (*Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Video), args.Error(1)
}

type MockPreviewFetcher struct {
	mock.Mock
}

func (m *MockPreviewFetcher) Fetch(ctx context.Context, target string) (*Preview, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Preview), args.Error(1)
}

type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PresignUpload(ctx context.Context, key, contentType string, size int64) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, size)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func newTestService(t *testing.T, storage ObjectStorage) (*Service, *MockVideoClient, *MockPreviewFetcher) {
	t.Helper()
	store := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	videos := new(MockVideoClient)
	previews := new(MockPreviewFetcher)
	svc := NewService(videos, previews, storage, store, Config{
		VideoCacheTTL:   time.Hour,
		PreviewCacheTTL: time.Hour,
	})
	return svc, videos, previews
}

func TestService_GetVideo_CachesResult(t *testing.T) {
	svc, videos, _ := newTestService(t, nil)
	ctx := context.Background()

	video := &Video{ID: "dQw4w9WgXcQ", Title: "Talk", DurationSeconds: 212}
	videos.On("GetVideo", mock.Anything, "dQw4w9WgXcQ").Return(video, nil).Once()

	first, err := svc.GetVideo(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	second, err := svc.GetVideo(ctx, " dQw4w9WgXcQ ")
	require.NoError(t, err)

	assert.Equal(t, "Talk", first.Title)
	assert.Equal(t, first, second)
	videos.AssertExpectations(t)
}

func TestService_GetVideo_InvalidID(t *testing.T) {
	svc, videos, _ := newTestService(t, nil)

	for _, id := range []string{"", "short", "has spaces!", "../../etc/passwd"} {
		_, err := svc.GetVideo(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidVideoID, id)
	}
	videos.AssertNotCalled(t, "GetVideo", mock.Anything, mock.Anything)
}

func TestService_GetVideo_ErrorsAreNotCached(t *testing.T) {
	svc, videos, _ := newTestService(t, nil)
	ctx := context.Background()

	videos.On("GetVideo", mock.Anything, "aaaaaaaaaaa").Return(nil, ErrVideoNotFound).Twice()

	for i := 0; i < 2; i++ {
		_, err := svc.GetVideo(ctx, "aaaaaaaaaaa")
		assert.ErrorIs(t, err, ErrVideoNotFound)
	}
	videos.AssertExpectations(t)
}

func TestValidatePreviewURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"https://example.com/post#section", "https://example.com/post", true},
		{"HTTP://example.com", "http://example.com", true},
		{"ftp://example.com/file", "", false},
		{"javascript:alert(1)", "", false},
		{"file:///etc/passwd", "", false},
		{"/relative/path", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ValidatePreviewURL(tt.raw)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnsupportedURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Preview(t *testing.T) {
	svc, _, previews := newTestService(t, nil)
	ctx := context.Background()

	p := &Preview{URL: "https://example.com/a", Title: "A"}
	previews.On("Fetch", mock.Anything, "https://example.com/a").Return(p, nil).Once()

	got, err := svc.Preview(ctx, "https://example.com/a#top")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	_, err = svc.Preview(ctx, "https://example.com/a")
	require.NoError(t, err)
	previews.AssertExpectations(t)

	_, err = svc.Preview(ctx, "gopher://example.com")
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNSUPPORTED_URL", domainErr.Code)
}

func TestService_RequestUpload(t *testing.T) {
	storage := new(MockObjectStorage)
	svc, _, _ := newTestService(t, storage)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	expires := time.Date(2026, 3, 9, 12, 15, 0, 0, time.UTC)
	storage.On("PresignUpload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/2026/03/") && strings.HasSuffix(key, ".png")
	}), "image/png", int64(2048)).Return("https://s3.example.com/signed", expires, nil)

	up, err := svc.RequestUpload(context.Background(), UploadInput{
		Filename:    "diagram.png",
		ContentType: "image/PNG; charset=binary",
		Size:        2048,
	})
	require.NoError(t, err)
	assert.Equal(t, "PUT", up.Method)
	assert.Equal(t, "https://s3.example.com/signed", up.UploadURL)
	assert.Equal(t, "image/png", up.Headers["Content-Type"])
	assert.Equal(t, "https://cdn.example.com/"+up.Key, up.PublicURL)
	assert.Equal(t, expires, up.ExpiresAt)
	storage.AssertExpectations(t)
}

func TestService_RequestUpload_Rejections(t *testing.T) {
	storage := new(MockObjectStorage)
	svc, _, _ := newTestService(t, storage)
	ctx := context.Background()

	_, err := svc.RequestUpload(ctx, UploadInput{ContentType: "application/pdf", Size: 10})
	assert.ErrorIs(t, err, ErrInvalidContentType)

	_, err = svc.RequestUpload(ctx, UploadInput{ContentType: "image/svg+xml", Size: 10})
	assert.ErrorIs(t, err, ErrInvalidContentType)

	_, err = svc.RequestUpload(ctx, UploadInput{ContentType: "image/jpeg", Size: MaxUploadSize + 1})
	assert.ErrorIs(t, err, ErrInvalidSize)

	storage.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	disabled, _, _ := newTestService(t, nil)
	_, err = disabled.RequestUpload(ctx, UploadInput{ContentType: "image/jpeg", Size: 10})
	assert.ErrorIs(t, err, shared.ErrUnavailable)
}
