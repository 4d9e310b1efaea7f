package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/content"
)

// PostListQuery represents the public post listing parameters
type PostListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Tag      string `form:"tag" binding:"omitempty,max=50"`
	Search   string `form:"search" binding:"omitempty,max=100"`
}

// CreatePostRequest represents a request to create a post
type CreatePostRequest struct {
	Title      string     `json:"title" binding:"required,min=1,max=200"`
	Slug       string     `json:"slug" binding:"omitempty,max=200,slug"`
	Summary    string     `json:"summary" binding:"max=500"`
	Body       string     `json:"body"`
	CoverImage string     `json:"cover_image" binding:"omitempty,url"`
	Tags       []string   `json:"tags" binding:"max=20,dive,max=50"`
	Publish    bool       `json:"publish"`
	PublishAt  *time.Time `json:"publish_at"`
}

// UpdatePostRequest represents a request to update a post. Nil fields are kept.
type UpdatePostRequest struct {
	Title      *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Slug       *string   `json:"slug" binding:"omitempty,max=200,slug"`
	Summary    *string   `json:"summary" binding:"omitempty,max=500"`
	Body       *string   `json:"body"`
	CoverImage *string   `json:"cover_image" binding:"omitempty"`
	Tags       *[]string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Published  *bool     `json:"published"`
}

// PostSummary is a post in list responses
type PostSummary struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Tags        []string   `json:"tags"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ReadingTime int        `json:"reading_time"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PostResponse is a full post
type PostResponse struct {
	PostSummary
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=200"`
	Slug        string   `json:"slug" binding:"omitempty,max=200,slug"`
	Summary     string   `json:"summary" binding:"max=500"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack" binding:"max=30,dive,max=50"`
	RepoURL     string   `json:"repo_url" binding:"omitempty,url"`
	LiveURL     string   `json:"live_url" binding:"omitempty,url"`
	ImageURL    string   `json:"image_url" binding:"omitempty,url"`
	Featured    bool     `json:"featured"`
	SortOrder   int      `json:"sort_order"`
}

// UpdateProjectRequest represents a request to update a project. Nil fields are kept.
type UpdateProjectRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Slug        *string   `json:"slug" binding:"omitempty,max=200,slug"`
	Summary     *string   `json:"summary" binding:"omitempty,max=500"`
	Description *string   `json:"description"`
	TechStack   *[]string `json:"tech_stack" binding:"omitempty,max=30,dive,max=50"`
	RepoURL     *string   `json:"repo_url"`
	LiveURL     *string   `json:"live_url"`
	ImageURL    *string   `json:"image_url"`
	Featured    *bool     `json:"featured"`
	SortOrder   *int      `json:"sort_order"`
}

// ProjectResponse is a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	TechStack   []string  `json:"tech_stack"`
	RepoURL     string    `json:"repo_url,omitempty"`
	LiveURL     string    `json:"live_url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Featured    bool      `json:"featured"`
	SortOrder   int       `json:"sort_order"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ImportPost is one post read from a content file
type ImportPost struct {
	Slug        string
	Title       string
	Summary     string
	Body        string
	Tags        []string
	CoverImage  string
	Draft       bool
	PublishedAt *time.Time
}

// ImportProject is one project read from a content file
type ImportProject struct {
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

// ImportResult counts what an import changed
type ImportResult struct {
	PostsCreated    int `json:"posts_created"`
	PostsUpdated    int `json:"posts_updated"`
	ProjectsCreated int `json:"projects_created"`
	ProjectsUpdated int `json:"projects_updated"`
}

// ToPostSummary converts a domain post to its list representation
func ToPostSummary(p *content.Post) PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostSummary{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Tags:        tags,
		CoverImage:  p.CoverImage,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		ReadingTime: p.ReadingTime(),
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToPostResponse converts a domain post to a full response
func ToPostResponse(p *content.Post) PostResponse {
	return PostResponse{
		PostSummary: ToPostSummary(p),
		Body:        p.Body,
		CreatedAt:   p.CreatedAt,
	}
}

// ToProjectResponse converts a domain project to a response
func ToProjectResponse(p *content.Project) ProjectResponse {
	stack := p.TechStack
	if stack == nil {
		stack = []string{}
	}
	return ProjectResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		Description: p.Description,
		TechStack:   stack,
		RepoURL:     p.RepoURL,
		LiveURL:     p.LiveURL,
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
		SortOrder:   p.SortOrder,
		UpdatedAt:   p.UpdatedAt,
	}
}
