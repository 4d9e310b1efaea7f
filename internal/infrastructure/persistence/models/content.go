package models

import (
	"time"

	"github.com/portfolio/backend/internal/domain/content"
)

// PostModel is the persistence model for blog posts.
// Tags are kept as a JSON array.
type PostModel struct {
	AggregateModel
	Slug        string             `gorm:"type:varchar(120);not null;uniqueIndex"`
	Title       string             `gorm:"type:varchar(200);not null"`
	Summary     string             `gorm:"type:varchar(500)"`
	Body        string             `gorm:"type:text"`
	TagsJSON    string             `gorm:"column:tags;type:jsonb;default:'[]'"`
	CoverImage  string             `gorm:"type:varchar(500)"`
	Status      content.PostStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	PublishedAt *time.Time         `gorm:"index"`
}

// TableName returns the table name for GORM
func (PostModel) TableName() string {
	return "posts"
}

// ToDomain converts the persistence model to a domain Post.
func (m *PostModel) ToDomain() *content.Post {
	return &content.Post{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Slug:              m.Slug,
		Title:             m.Title,
		Summary:           m.Summary,
		Body:              m.Body,
		Tags:              decodeStrings(m.TagsJSON),
		CoverImage:        m.CoverImage,
		Status:            m.Status,
		PublishedAt:       m.PublishedAt,
	}
}

// FromDomain populates the persistence model from a domain Post.
func (m *PostModel) FromDomain(p *content.Post) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Slug = p.Slug
	m.Title = p.Title
	m.Summary = p.Summary
	m.Body = p.Body
	m.TagsJSON = encodeStrings(p.Tags)
	m.CoverImage = p.CoverImage
	m.Status = p.Status
	m.PublishedAt = p.PublishedAt
}

// PostModelFromDomain creates a new persistence model from a domain Post.
func PostModelFromDomain(p *content.Post) *PostModel {
	m := &PostModel{}
	m.FromDomain(p)
	return m
}

// ProjectModel is the persistence model for portfolio projects.
type ProjectModel struct {
	AggregateModel
	Slug          string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Title         string `gorm:"type:varchar(200);not null"`
	Summary       string `gorm:"type:varchar(500)"`
	Description   string `gorm:"type:text"`
	TechStackJSON string `gorm:"column:tech_stack;type:jsonb;default:'[]'"`
	RepoURL       string `gorm:"type:varchar(500)"`
	LiveURL       string `gorm:"type:varchar(500)"`
	ImageURL      string `gorm:"type:varchar(500)"`
	Featured      bool   `gorm:"not null;default:false"`
	SortOrder     int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project.
func (m *ProjectModel) ToDomain() *content.Project {
	return &content.Project{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Slug:              m.Slug,
		Title:             m.Title,
		Summary:           m.Summary,
		Description:       m.Description,
		TechStack:         decodeStrings(m.TechStackJSON),
		RepoURL:           m.RepoURL,
		LiveURL:           m.LiveURL,
		ImageURL:          m.ImageURL,
		Featured:          m.Featured,
		SortOrder:         m.SortOrder,
	}
}

// FromDomain populates the persistence model from a domain Project.
func (m *ProjectModel) FromDomain(p *content.Project) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Slug = p.Slug
	m.Title = p.Title
	m.Summary = p.Summary
	m.Description = p.Description
	m.TechStackJSON = encodeStrings(p.TechStack)
	m.RepoURL = p.RepoURL
	m.LiveURL = p.LiveURL
	m.ImageURL = p.ImageURL
	m.Featured = p.Featured
	m.SortOrder = p.SortOrder
}

// ProjectModelFromDomain creates a new persistence model from a domain Project.
func ProjectModelFromDomain(p *content.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}
