package marketplace

import (
	"context"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/shared"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	ActiveOnly bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	// AdjustStock changes stock by delta in a single statement. A decrement
	// that would go below zero fails with shared.ErrInsufficientStock.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status *OrderStatus
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)
}

// UnitOfWork runs fn with repositories bound to a single transaction
type UnitOfWork interface {
	Do(ctx context.Context, fn func(products ProductRepository, orders OrderRepository) error) error
}
