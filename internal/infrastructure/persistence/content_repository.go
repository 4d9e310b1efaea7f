package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/content"
	"github.com/portfolio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPostRepository implements content.PostRepository using GORM
type GormPostRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db, now: time.Now}
}

// Save inserts or replaces a post
func (r *GormPostRepository) Save(ctx context.Context, post *content.Post) error {
	return upsert(r.db.WithContext(ctx), models.PostModelFromDomain(post))
}

// Delete removes a post by ID
func (r *GormPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.PostModel{}, id)
}

// FindByID finds a post by ID
func (r *GormPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Post, error) {
	var model models.PostModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a post by slug
func (r *GormPostRepository) FindBySlug(ctx context.Context, slug string) (*content.Post, error) {
	var model models.PostModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of posts and the total count
func (r *GormPostRepository) FindAll(ctx context.Context, filter content.PostFilter) ([]*content.Post, int64, error) {
	filter.Filter = filter.Filter.Normalize(maxPageSize)
	query := r.db.WithContext(ctx).Model(&models.PostModel{})
	if filter.PublishedOnly {
		query = query.Where("status = ? AND published_at <= ?", content.PostStatusPublished, r.now())
	}
	if tag := strings.ToLower(strings.TrimSpace(filter.Tag)); tag != "" {
		// tags are stored as a JSON array of normalized strings
		query = query.Where(`CAST(tags AS TEXT) LIKE ? ESCAPE '\'`, `%"`+escapeLike(tag)+`"%`)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\')`, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	defaultSort := "created_at"
	if filter.PublishedOnly {
		defaultSort = "published_at"
	}
	var rows []models.PostModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, PostSortFields, defaultSort)).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	posts := make([]*content.Post, len(rows))
	for i := range rows {
		posts[i] = rows[i].ToDomain()
	}
	return posts, total, nil
}

// ExistsBySlug checks whether another post already uses slug
func (r *GormPostRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(r.db.WithContext(ctx), &models.PostModel{}, slug, excludeID)
}

// GormProjectRepository implements content.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Save inserts or replaces a project
func (r *GormProjectRepository) Save(ctx context.Context, project *content.Project) error {
	return upsert(r.db.WithContext(ctx), models.ProjectModelFromDomain(project))
}

// Delete removes a project by ID
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ProjectModel{}, id)
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a project by slug
func (r *GormProjectRepository) FindBySlug(ctx context.Context, slug string) (*content.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns projects, featured first and then by sort order
func (r *GormProjectRepository) FindAll(ctx context.Context, featuredOnly bool) ([]*content.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if featuredOnly {
		query = query.Where("featured = ?", true)
	}
	var rows []models.ProjectModel
	if err := query.Order("featured DESC").Order("sort_order ASC").Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	projects := make([]*content.Project, len(rows))
	for i := range rows {
		projects[i] = rows[i].ToDomain()
	}
	return projects, nil
}

// ExistsBySlug checks whether another project already uses slug
func (r *GormProjectRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(r.db.WithContext(ctx), &models.ProjectModel{}, slug, excludeID)
}

var (
	_ content.PostRepository    = (*GormPostRepository)(nil)
	_ content.ProjectRepository = (*GormProjectRepository)(nil)
)
