package content

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPostRepository is a mock implementation of content.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Save(ctx context.Context, post *content.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Post), args.Error(1)
}

func (m *MockPostRepository) FindBySlug(ctx context.Context, slug string) (*content.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Post), args.Error(1)
}

func (m *MockPostRepository) FindAll(ctx context.Context, filter content.PostFilter) ([]*content.Post, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*content.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockProjectRepository is a mock implementation of content.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Save(ctx context.Context, project *content.Project) error {
	return m.Called(ctx, project).Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Project), args.Error(1)
}

func (m *MockProjectRepository) FindBySlug(ctx context.Context, slug string) (*content.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*content.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, featuredOnly bool) ([]*content.Project, error) {
	args := m.Called(ctx, featuredOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*content.Project), args.Error(1)
}

func (m *MockProjectRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) { c.calls++ }

func newTestService() (*Service, *MockPostRepository, *MockProjectRepository, *countingInvalidator) {
	posts := new(MockPostRepository)
	projects := new(MockProjectRepository)
	feeds := &countingInvalidator{}
	return NewService(posts, projects, feeds, zap.NewNop()), posts, projects, feeds
}

func publishedPost(t *testing.T, title string) *content.Post {
	t.Helper()
	post, err := content.NewPost(title, "", "Some body text")
	require.NoError(t, err)
	require.NoError(t, post.Publish(time.Now().Add(-time.Hour)))
	return post
}

func TestService_ListPublishedPosts(t *testing.T) {
	svc, posts, _, _ := newTestService()
	ctx := context.Background()

	post := publishedPost(t, "Hello World")
	posts.On("FindAll", ctx, mock.MatchedBy(func(f content.PostFilter) bool {
		return f.PublishedOnly && f.Tag == "go" && f.OrderBy == "published_at" && f.Page == 1 && f.PageSize == 20
	})).Return([]*content.Post{post}, int64(1), nil)

	items, total, filter, err := svc.ListPublishedPosts(ctx, PostListQuery{Tag: "go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 20, filter.PageSize)
	require.Len(t, items, 1)
	assert.Equal(t, "hello-world", items[0].Slug)
	assert.Equal(t, 1, items[0].ReadingTime)
	assert.Equal(t, []string{}, items[0].Tags)
}

func TestService_GetPublishedPost_HidesDrafts(t *testing.T) {
	svc, posts, _, _ := newTestService()
	ctx := context.Background()

	draft, err := content.NewPost("Draft", "draft", "body")
	require.NoError(t, err)
	posts.On("FindBySlug", ctx, "draft").Return(draft, nil)
	posts.On("FindBySlug", ctx, "missing").Return(nil, shared.ErrNotFound)

	_, err = svc.GetPublishedPost(ctx, "draft")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.GetPublishedPost(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_CreatePost(t *testing.T) {
	svc, posts, _, feeds := newTestService()
	ctx := context.Background()

	posts.On("ExistsBySlug", ctx, "go-generics", (*uuid.UUID)(nil)).Return(false, nil)
	posts.On("Save", ctx, mock.AnythingOfType("*content.Post")).Return(nil)

	resp, err := svc.CreatePost(ctx, CreatePostRequest{
		Title:   "Go Generics",
		Summary: "A tour",
		Body:    "Type parameters arrived in Go 1.18.",
		Tags:    []string{"Go", "go", " generics "},
		Publish: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "go-generics", resp.Slug)
	assert.Equal(t, "published", resp.Status)
	assert.Equal(t, []string{"go", "generics"}, resp.Tags)
	assert.NotNil(t, resp.PublishedAt)
	assert.Equal(t, 1, feeds.calls)
}

func TestService_CreatePost_SlugTaken(t *testing.T) {
	svc, posts, _, feeds := newTestService()
	ctx := context.Background()

	posts.On("ExistsBySlug", ctx, "taken", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := svc.CreatePost(ctx, CreatePostRequest{Title: "Anything", Slug: "taken"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	posts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Zero(t, feeds.calls)
}

func TestService_CreatePost_PublishNeedsBody(t *testing.T) {
	svc, posts, _, _ := newTestService()
	ctx := context.Background()
	posts.On("ExistsBySlug", ctx, "empty", (*uuid.UUID)(nil)).Return(false, nil)

	_, err := svc.CreatePost(ctx, CreatePostRequest{Title: "Empty", Publish: true})
	assert.ErrorIs(t, err, shared.NewDomainError("EMPTY_BODY", ""))
}

func TestService_UpdatePost(t *testing.T) {
	svc, posts, _, feeds := newTestService()
	ctx := context.Background()

	post := publishedPost(t, "Original")
	posts.On("FindByID", ctx, post.ID).Return(post, nil)
	posts.On("ExistsBySlug", ctx, "renamed", &post.ID).Return(false, nil)
	posts.On("Save", ctx, post).Return(nil)

	title, slug, unpublish := "Renamed", "renamed", false
	resp, err := svc.UpdatePost(ctx, post.ID, UpdatePostRequest{Title: &title, Slug: &slug, Published: &unpublish})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", resp.Title)
	assert.Equal(t, "renamed", resp.Slug)
	assert.Equal(t, "draft", resp.Status)
	assert.Nil(t, resp.PublishedAt)
	assert.Equal(t, "Some body text", resp.Body, "unset fields are kept")
	assert.Equal(t, 1, feeds.calls)
}

func TestService_DeletePost_NotFound(t *testing.T) {
	svc, posts, _, _ := newTestService()
	ctx := context.Background()
	id := uuid.New()
	posts.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	err := svc.DeletePost(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	posts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_CreateProject_RejectsBadLinks(t *testing.T) {
	svc, _, projects, _ := newTestService()
	ctx := context.Background()
	projects.On("ExistsBySlug", ctx, "tool", (*uuid.UUID)(nil)).Return(false, nil)

	_, err := svc.CreateProject(ctx, CreateProjectRequest{Title: "Tool", RepoURL: "ftp://example.com/repo"})
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_REPO_URL", ""))
	projects.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_UpdateProject(t *testing.T) {
	svc, _, projects, _ := newTestService()
	ctx := context.Background()

	project, err := content.NewProject("CLI", "cli")
	require.NoError(t, err)
	require.NoError(t, project.SetLinks("https://github.com/example/cli", ""))
	projects.On("FindByID", ctx, project.ID).Return(project, nil)
	projects.On("Save", ctx, project).Return(nil)

	featured, live := true, "https://cli.example.dev"
	resp, err := svc.UpdateProject(ctx, project.ID, UpdateProjectRequest{Featured: &featured, LiveURL: &live})
	require.NoError(t, err)
	assert.True(t, resp.Featured)
	assert.Equal(t, "https://github.com/example/cli", resp.RepoURL)
	assert.Equal(t, live, resp.LiveURL)
}

func TestService_Import_UpsertsBySlug(t *testing.T) {
	svc, posts, projects, feeds := newTestService()
	ctx := context.Background()

	existing, err := content.NewPost("Old Title", "existing", "old body")
	require.NoError(t, err)
	posts.On("FindBySlug", ctx, "existing").Return(existing, nil)
	posts.On("FindBySlug", ctx, "brand-new").Return(nil, shared.ErrNotFound)
	posts.On("Save", ctx, mock.AnythingOfType("*content.Post")).Return(nil)
	projects.On("FindBySlug", ctx, "site").Return(nil, shared.ErrNotFound)
	projects.On("Save", ctx, mock.AnythingOfType("*content.Project")).Return(nil)

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	result, err := svc.Import(ctx,
		[]ImportPost{
			{Slug: "existing", Title: "New Title", Body: "new body", PublishedAt: &at},
			{Title: "Brand New", Body: "draft body", Draft: true},
		},
		[]ImportProject{{Slug: "site", Title: "Site", TechStack: []string{"Go"}, RepoURL: "https://github.com/example/site"}},
	)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{PostsCreated: 1, PostsUpdated: 1, ProjectsCreated: 1}, *result)

	assert.Equal(t, "New Title", existing.Title)
	assert.Equal(t, content.PostStatusPublished, existing.Status)
	assert.True(t, existing.PublishedAt.Equal(at))
	assert.Equal(t, 1, feeds.calls, "feeds are invalidated once per import")
}

func TestService_Import_NewDraftStaysDraft(t *testing.T) {
	svc, posts, _, _ := newTestService()
	ctx := context.Background()

	var saved *content.Post
	posts.On("FindBySlug", ctx, "notes").Return(nil, shared.ErrNotFound)
	posts.On("Save", ctx, mock.AnythingOfType("*content.Post")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*content.Post) }).
		Return(nil)

	result, err := svc.Import(ctx, []ImportPost{{Slug: "notes", Title: "Notes", Body: "wip", Draft: true}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PostsCreated)
	require.NotNil(t, saved)
	assert.Equal(t, content.PostStatusDraft, saved.Status)
	assert.Nil(t, saved.PublishedAt)
}

func TestService_Import_StopsOnInvalidEntry(t *testing.T) {
	svc, posts, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Import(ctx, []ImportPost{{Slug: "Bad Slug!", Title: "x"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `post "Bad Slug!"`)
	assert.ErrorIs(t, err, shared.NewDomainError("INVALID_SLUG", ""))
	posts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
