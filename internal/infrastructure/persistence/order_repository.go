package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements marketplace.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save inserts a new order with its items, or updates the order row under the
// version check. Line items are written once and never change.
func (r *GormOrderRepository) Save(ctx context.Context, order *marketplace.Order) error {
	isNew := order.StoredVersion() == 0
	var items []models.OrderItemModel

	db := r.db.WithContext(ctx)
	err := saveVersioned(db, &models.OrderModel{}, &order.BaseAggregateRoot, func() any {
		model := models.OrderModelFromDomain(order)
		items, model.Items = model.Items, nil
		return model
	}, clause.Associations)
	if err != nil || !isNew || len(items) == 0 {
		return err
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of orders and the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter marketplace.OrderFilter) ([]*marketplace.Order, int64, error) {
	filter.Filter = filter.Filter.Normalize(maxPageSize)
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("customer_email = ?", filter.Search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := query.
		Preload("Items", orderItemsByPosition).
		Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at")).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*marketplace.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, total, nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GormUnitOfWork runs marketplace work inside one database transaction
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn with transaction-bound repositories; any error rolls back
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(products marketplace.ProductRepository, orders marketplace.OrderRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormProductRepository(tx), NewGormOrderRepository(tx))
	})
}

var (
	_ marketplace.OrderRepository = (*GormOrderRepository)(nil)
	_ marketplace.UnitOfWork      = (*GormUnitOfWork)(nil)
)
