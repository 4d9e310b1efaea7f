package content

import (
	"net/url"
	"strings"

	"github.com/portfolio/backend/internal/domain/shared"
)

// Project is a portfolio entry
type Project struct {
	shared.BaseAggregateRoot
	Slug        string
	Title       string
	Summary     string
	Description string
	TechStack   []string
	RepoURL     string
	LiveURL     string
	ImageURL    string
	Featured    bool
	SortOrder   int
}

// NewProject creates a project. An empty slug is derived from the title.
func NewProject(title, slug string) (*Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}

	resolved, err := resolveSlug(slug, title)
	if err != nil {
		return nil, err
	}

	return &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              resolved,
		Title:             title,
		TechStack:         make([]string, 0),
	}, nil
}

// SetLinks sets the repository and live URLs. Empty values clear them.
func (p *Project) SetLinks(repoURL, liveURL string) error {
	if repoURL != "" && !isHTTPURL(repoURL) {
		return shared.NewDomainError("INVALID_REPO_URL", "Repository link must be an absolute http(s) URL")
	}
	if liveURL != "" && !isHTTPURL(liveURL) {
		return shared.NewDomainError("INVALID_LIVE_URL", "Live link must be an absolute http(s) URL")
	}
	p.RepoURL = repoURL
	p.LiveURL = liveURL
	p.Touch()
	return nil
}

// SetSlug changes the URL slug. An empty slug is derived from the title.
func (p *Project) SetSlug(slug string) error {
	resolved, err := resolveSlug(slug, p.Title)
	if err != nil {
		return err
	}
	p.Slug = resolved
	p.Touch()
	return nil
}

// Update replaces the descriptive fields of the project
func (p *Project) Update(title, summary, description, imageURL string, techStack []string, featured bool, sortOrder int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	p.Title = title
	p.Summary = strings.TrimSpace(summary)
	p.Description = description
	p.ImageURL = strings.TrimSpace(imageURL)
	p.TechStack = NormalizeTags(techStack)
	p.Featured = featured
	p.SortOrder = sortOrder
	p.Touch()
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
