package marketplace

import (
	"strings"

	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents whether a product is for sale
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Product is an item sold in the storefront
type Product struct {
	shared.BaseAggregateRoot
	Slug        string
	Name        string
	Description string
	Price       valueobject.Money
	Stock       int
	ImageURL    string
	Status      ProductStatus
}

// NewProduct creates an active product. An empty slug is derived from the name.
func NewProduct(name, slug string, price valueobject.Money, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = valueobject.Slugify(name)
	}
	if !valueobject.IsValidSlug(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, numbers and single hyphens")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Name:              name,
		Price:             price,
		Stock:             stock,
		Status:            ProductStatusActive,
	}, nil
}

// Update replaces the editable fields of the product
func (p *Product) Update(name, description, imageURL string, price valueobject.Money) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.ImageURL = strings.TrimSpace(imageURL)
	p.Price = price
	p.Touch()
	return nil
}

// SetStock sets the absolute stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// Reserve removes quantity from stock for an order
func (p *Product) Reserve(quantity int) error {
	if !p.IsAvailable() {
		return shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for sale")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock < quantity {
		return shared.ErrInsufficientStock
	}
	p.Stock -= quantity
	p.Touch()
	return nil
}

// Restock returns quantity to stock, used when an order is cancelled
func (p *Product) Restock(quantity int) {
	if quantity <= 0 {
		return
	}
	p.Stock += quantity
	p.Touch()
}

// Archive removes the product from sale
func (p *Product) Archive() {
	p.Status = ProductStatusArchived
	p.Touch()
}

// Activate puts the product back on sale
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.Touch()
}

// IsAvailable reports whether the product can be ordered
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive
}

func validatePrice(price valueobject.Money) error {
	if price.Currency() == "" {
		return shared.NewDomainError("INVALID_PRICE", "Price currency cannot be empty")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
