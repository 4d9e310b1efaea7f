package content

import (
	"context"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
)

// PostFilter narrows post listings
type PostFilter struct {
	shared.Filter
	Tag           string
	PublishedOnly bool
}

// PostRepository defines the interface for post persistence
type PostRepository interface {
	Save(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	FindBySlug(ctx context.Context, slug string) (*Post, error)
	FindAll(ctx context.Context, filter PostFilter) ([]*Post, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Save(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindBySlug(ctx context.Context, slug string) (*Project, error)
	// FindAll returns projects ordered by featured first, then sort order
	FindAll(ctx context.Context, featuredOnly bool) ([]*Project, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}
