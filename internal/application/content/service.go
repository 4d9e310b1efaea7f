package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrPostNotFound    = shared.NewDomainError("NOT_FOUND", "Post not found")
	ErrProjectNotFound = shared.NewDomainError("NOT_FOUND", "Project not found")
	ErrSlugTaken       = shared.NewDomainError("ALREADY_EXISTS", "Slug is already in use")
)

// Invalidator drops derived documents (sitemap, RSS) after content changes
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service handles posts and projects
type Service struct {
	posts    content.PostRepository
	projects content.ProjectRepository
	feeds    Invalidator
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new content service. feeds may be nil.
func NewService(posts content.PostRepository, projects content.ProjectRepository, feeds Invalidator, logger *zap.Logger) *Service {
	return &Service{
		posts:    posts,
		projects: projects,
		feeds:    feeds,
		logger:   logger,
		now:      time.Now,
	}
}

// ListPublishedPosts returns visible posts, newest first
func (s *Service) ListPublishedPosts(ctx context.Context, q PostListQuery) ([]PostSummary, int64, shared.Filter, error) {
	return s.listPosts(ctx, q, true)
}

// ListAllPosts returns drafts and published posts for the admin
func (s *Service) ListAllPosts(ctx context.Context, q PostListQuery) ([]PostSummary, int64, shared.Filter, error) {
	return s.listPosts(ctx, q, false)
}

func (s *Service) listPosts(ctx context.Context, q PostListQuery, publishedOnly bool) ([]PostSummary, int64, shared.Filter, error) {
	filter := content.PostFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			Search:   q.Search,
			OrderDir: "desc",
		},
		Tag:           q.Tag,
		PublishedOnly: publishedOnly,
	}
	if publishedOnly {
		filter.OrderBy = "published_at"
	}
	filter.Filter = filter.Filter.Normalize(100)

	posts, total, err := s.posts.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	items := make([]PostSummary, len(posts))
	for i, p := range posts {
		items[i] = ToPostSummary(p)
	}
	return items, total, filter.Filter, nil
}

// GetPublishedPost returns a visible post by slug. Drafts are reported as not found.
func (s *Service) GetPublishedPost(ctx context.Context, slug string) (*PostResponse, error) {
	post, err := s.findPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished(s.now()) {
		return nil, ErrPostNotFound
	}
	resp := ToPostResponse(post)
	return &resp, nil
}

// GetPost returns any post by ID
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*PostResponse, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPostResponse(post)
	return &resp, nil
}

// CreatePost creates a draft, publishing it immediately when asked
func (s *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*PostResponse, error) {
	post, err := content.NewPost(req.Title, req.Slug, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePostSlugFree(ctx, post.Slug, nil); err != nil {
		return nil, err
	}
	if err := post.Update(req.Title, req.Summary, req.Body, req.CoverImage, req.Tags); err != nil {
		return nil, err
	}
	if req.Publish {
		var at time.Time
		if req.PublishAt != nil {
			at = *req.PublishAt
		}
		if err := post.Publish(at); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	s.changed(ctx, "post created", post.Slug)
	resp := ToPostResponse(post)
	return &resp, nil
}

// UpdatePost applies the non-nil fields of req
func (s *Service) UpdatePost(ctx context.Context, id uuid.UUID, req UpdatePostRequest) (*PostResponse, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	title, summary, body, cover, tags := post.Title, post.Summary, post.Body, post.CoverImage, post.Tags
	if req.Title != nil {
		title = *req.Title
	}
	if req.Summary != nil {
		summary = *req.Summary
	}
	if req.Body != nil {
		body = *req.Body
	}
	if req.CoverImage != nil {
		cover = *req.CoverImage
	}
	if req.Tags != nil {
		tags = *req.Tags
	}
	if err := post.Update(title, summary, body, cover, tags); err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != post.Slug {
		if err := s.ensurePostSlugFree(ctx, *req.Slug, &post.ID); err != nil {
			return nil, err
		}
		if err := post.SetSlug(*req.Slug); err != nil {
			return nil, err
		}
	}

	if req.Published != nil {
		switch {
		case *req.Published && post.Status != content.PostStatusPublished:
			err = post.Publish(s.now())
		case !*req.Published && post.Status == content.PostStatusPublished:
			err = post.Unpublish()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, err
	}
	s.changed(ctx, "post updated", post.Slug)
	resp := ToPostResponse(post)
	return &resp, nil
}

// DeletePost removes a post
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "post deleted", post.Slug)
	return nil
}

// ListProjects returns projects, featured first
func (s *Service) ListProjects(ctx context.Context, featuredOnly bool) ([]ProjectResponse, error) {
	projects, err := s.projects.FindAll(ctx, featuredOnly)
	if err != nil {
		return nil, err
	}
	items := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		items[i] = ToProjectResponse(p)
	}
	return items, nil
}

// GetProject returns a project by slug
func (s *Service) GetProject(ctx context.Context, slug string) (*ProjectResponse, error) {
	project, err := s.projects.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	resp := ToProjectResponse(project)
	return &resp, nil
}

// CreateProject creates a project
func (s *Service) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	project, err := content.NewProject(req.Title, req.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProjectSlugFree(ctx, project.Slug, nil); err != nil {
		return nil, err
	}
	if err := project.Update(req.Title, req.Summary, req.Description, req.ImageURL, req.TechStack, req.Featured, req.SortOrder); err != nil {
		return nil, err
	}
	if err := project.SetLinks(req.RepoURL, req.LiveURL); err != nil {
		return nil, err
	}

	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}
	s.changed(ctx, "project created", project.Slug)
	resp := ToProjectResponse(project)
	return &resp, nil
}

// UpdateProject applies the non-nil fields of req
func (s *Service) UpdateProject(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}

	p := *project
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Summary != nil {
		p.Summary = *req.Summary
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	if req.TechStack != nil {
		p.TechStack = *req.TechStack
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
	}
	if req.SortOrder != nil {
		p.SortOrder = *req.SortOrder
	}
	if req.RepoURL != nil {
		p.RepoURL = *req.RepoURL
	}
	if req.LiveURL != nil {
		p.LiveURL = *req.LiveURL
	}

	if err := project.Update(p.Title, p.Summary, p.Description, p.ImageURL, p.TechStack, p.Featured, p.SortOrder); err != nil {
		return nil, err
	}
	if err := project.SetLinks(p.RepoURL, p.LiveURL); err != nil {
		return nil, err
	}
	if req.Slug != nil && *req.Slug != project.Slug {
		if err := s.ensureProjectSlugFree(ctx, *req.Slug, &project.ID); err != nil {
			return nil, err
		}
		if err := project.SetSlug(*req.Slug); err != nil {
			return nil, err
		}
	}

	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}
	s.changed(ctx, "project updated", project.Slug)
	resp := ToProjectResponse(project)
	return &resp, nil
}

// DeleteProject removes a project
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "project deleted", project.Slug)
	return nil
}

func (s *Service) findPost(ctx context.Context, id uuid.UUID) (*content.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (s *Service) findPostBySlug(ctx context.Context, slug string) (*content.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (s *Service) findProject(ctx context.Context, id uuid.UUID) (*content.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	return project, err
}

func (s *Service) ensurePostSlugFree(ctx context.Context, slug string, exclude *uuid.UUID) error {
	taken, err := s.posts.ExistsBySlug(ctx, slug, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

func (s *Service) ensureProjectSlugFree(ctx context.Context, slug string, exclude *uuid.UUID) error {
	taken, err := s.projects.ExistsBySlug(ctx, slug, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugTaken
	}
	return nil
}

func (s *Service) changed(ctx context.Context, what, slug string) {
	s.logger.Info("Content changed", zap.String("change", what), zap.String("slug", slug))
	if s.feeds != nil {
		s.feeds.Invalidate(ctx)
	}
}
