package content

import (
	"math"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
)

// PostStatus represents the publication state of a blog post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// wordsPerMinute is the reading speed used for reading-time estimates
const wordsPerMinute = 200

// Post is a blog article
type Post struct {
	shared.BaseAggregateRoot
	Slug        string
	Title       string
	Summary     string
	Body        string
	Tags        []string
	CoverImage  string
	Status      PostStatus
	PublishedAt *time.Time
}

// NewPost creates a draft post. An empty slug is derived from the title.
func NewPost(title, slug, body string) (*Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}

	resolved, err := resolveSlug(slug, title)
	if err != nil {
		return nil, err
	}

	return &Post{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              resolved,
		Title:             title,
		Body:              body,
		Tags:              make([]string, 0),
		Status:            PostStatusDraft,
	}, nil
}

// Update replaces the editable fields of the post
func (p *Post) Update(title, summary, body, coverImage string, tags []string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(summary) > 500 {
		return shared.NewDomainError("INVALID_SUMMARY", "Summary cannot exceed 500 characters")
	}

	p.Title = title
	p.Summary = strings.TrimSpace(summary)
	p.Body = body
	p.CoverImage = strings.TrimSpace(coverImage)
	p.Tags = NormalizeTags(tags)
	p.Touch()
	return nil
}

// SetSlug changes the URL slug. An empty slug is derived from the title.
func (p *Post) SetSlug(slug string) error {
	resolved, err := resolveSlug(slug, p.Title)
	if err != nil {
		return err
	}
	p.Slug = resolved
	p.Touch()
	return nil
}

// Publish makes the post publicly visible. A zero time publishes now.
func (p *Post) Publish(at time.Time) error {
	if p.Status == PostStatusPublished {
		return shared.NewDomainError("ALREADY_PUBLISHED", "Post is already published")
	}
	if strings.TrimSpace(p.Body) == "" {
		return shared.NewDomainError("EMPTY_BODY", "Cannot publish a post without a body")
	}
	if at.IsZero() {
		at = time.Now()
	}
	p.Status = PostStatusPublished
	p.PublishedAt = &at
	p.Touch()
	return nil
}

// Unpublish moves the post back to draft
func (p *Post) Unpublish() error {
	if p.Status != PostStatusPublished {
		return shared.NewDomainError("NOT_PUBLISHED", "Post is not published")
	}
	p.Status = PostStatusDraft
	p.PublishedAt = nil
	p.Touch()
	return nil
}

// IsPublished reports whether the post is visible at the given time
func (p *Post) IsPublished(now time.Time) bool {
	return p.Status == PostStatusPublished && p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// ReadingTime returns the estimated reading time in minutes, at least one
func (p *Post) ReadingTime() int {
	words := len(strings.Fields(p.Body))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// HasTag reports whether the post carries the tag, case-insensitively
func (p *Post) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTags lowercases, trims and de-duplicates tags, keeping first-seen order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

func resolveSlug(slug, title string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = valueobject.Slugify(title)
	}
	if !valueobject.IsValidSlug(slug) {
		return "", shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, numbers and single hyphens")
	}
	return slug, nil
}
