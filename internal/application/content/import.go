package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Import upserts posts and projects keyed by slug. Entries without a slug use
// the one derived from their title. Import stops at the first invalid entry;
// entries saved before it stay saved.
func (s *Service) Import(ctx context.Context, posts []ImportPost, projects []ImportProject) (*ImportResult, error) {
	result := &ImportResult{}
	for _, in := range posts {
		created, err := s.importPost(ctx, in)
		if err != nil {
			return result, fmt.Errorf("post %q: %w", firstNonEmpty(in.Slug, in.Title), err)
		}
		if created {
			result.PostsCreated++
		} else {
			result.PostsUpdated++
		}
	}
	for _, in := range projects {
		created, err := s.importProject(ctx, in)
		if err != nil {
			return result, fmt.Errorf("project %q: %w", firstNonEmpty(in.Slug, in.Title), err)
		}
		if created {
			result.ProjectsCreated++
		} else {
			result.ProjectsUpdated++
		}
	}

	s.logger.Info("Content imported",
		zap.Int("posts_created", result.PostsCreated),
		zap.Int("posts_updated", result.PostsUpdated),
		zap.Int("projects_created", result.ProjectsCreated),
		zap.Int("projects_updated", result.ProjectsUpdated))
	if s.feeds != nil {
		s.feeds.Invalidate(ctx)
	}
	return result, nil
}

func (s *Service) importPost(ctx context.Context, in ImportPost) (bool, error) {
	fresh, err := content.NewPost(in.Title, in.Slug, in.Body)
	if err != nil {
		return false, err
	}

	post, err := s.posts.FindBySlug(ctx, fresh.Slug)
	created := false
	switch {
	case errors.Is(err, shared.ErrNotFound):
		post, created = fresh, true
	case err != nil:
		return false, err
	}

	if err := post.Update(in.Title, in.Summary, in.Body, in.CoverImage, in.Tags); err != nil {
		return false, err
	}

	var transition error
	published := post.Status == content.PostStatusPublished
	switch {
	case !in.Draft && !published:
		var at time.Time
		if in.PublishedAt != nil {
			at = *in.PublishedAt
		}
		transition = post.Publish(at)
	case in.Draft && published:
		transition = post.Unpublish()
	}
	if transition != nil {
		return false, transition
	}

	return created, s.posts.Save(ctx, post)
}

func (s *Service) importProject(ctx context.Context, in ImportProject) (bool, error) {
	fresh, err := content.NewProject(in.Title, in.Slug)
	if err != nil {
		return false, err
	}

	project, err := s.projects.FindBySlug(ctx, fresh.Slug)
	created := false
	switch {
	case errors.Is(err, shared.ErrNotFound):
		project, created = fresh, true
	case err != nil:
		return false, err
	}

	if err := project.Update(in.Title, in.Summary, in.Description, in.ImageURL, in.TechStack, in.Featured, in.SortOrder); err != nil {
		return false, err
	}
	if err := project.SetLinks(in.RepoURL, in.LiveURL); err != nil {
		return false, err
	}
	return created, s.projects.Save(ctx, project)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
