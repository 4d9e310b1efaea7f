package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements marketplace.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save inserts a new product or updates one loaded earlier, failing with
// shared.ErrConcurrentUpdate when the row changed since (an order took stock,
// another admin saved).
func (r *GormProductRepository) Save(ctx context.Context, product *marketplace.Product) error {
	return saveVersioned(r.db.WithContext(ctx), &models.ProductModel{}, &product.BaseAggregateRoot,
		func() any { return models.ProductModelFromDomain(product) })
}

// Delete removes a product by ID
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ProductModel{}, id)
}

// FindByID finds a product by ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a product by slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*marketplace.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products. Missing IDs are simply absent from the result.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*marketplace.Product, error) {
	if len(ids) == 0 {
		return []*marketplace.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]*marketplace.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, nil
}

// FindAll returns a page of products and the total count
func (r *GormProductRepository) FindAll(ctx context.Context, filter marketplace.ProductFilter) ([]*marketplace.Product, int64, error) {
	filter.Filter = filter.Filter.Normalize(maxPageSize)
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.ActiveOnly {
		query = query.Where("status = ?", marketplace.ProductStatusActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ProductSortFields, "created_at")).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]*marketplace.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, total, nil
}

// ExistsBySlug checks whether another product already uses slug
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return existsBySlug(r.db.WithContext(ctx), &models.ProductModel{}, slug, excludeID)
}

// AdjustStock changes stock with a guarded UPDATE so concurrent orders cannot oversell
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}
	result := query.Updates(map[string]any{
		"stock":   gorm.Expr("stock + ?", delta),
		"version": gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if delta < 0 {
			return shared.ErrInsufficientStock
		}
		return shared.ErrNotFound
	}
	return nil
}

var _ marketplace.ProductRepository = (*GormProductRepository)(nil)
