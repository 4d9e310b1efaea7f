package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/shopspring/decimal"
)

// ProductListQuery represents product listing parameters
type ProductListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name price created_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Slug        string          `json:"slug" binding:"omitempty,max=200,slug"`
	Description string          `json:"description" binding:"max=5000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	Stock       int             `json:"stock" binding:"min=0"`
	ImageURL    string          `json:"image_url" binding:"omitempty,url"`
}

// UpdateProductRequest represents a request to update a product. Nil fields are kept.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Currency    *string          `json:"currency" binding:"omitempty,len=3"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url"`
	Status      *string          `json:"status" binding:"omitempty,oneof=active archived"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
	InStock     bool            `json:"in_stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	Status      string          `json:"status"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItemRequest is one line of a new order
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=100"`
}

// PlaceOrderRequest represents a storefront checkout
type PlaceOrderRequest struct {
	CustomerName  string             `json:"customer_name" binding:"required,min=1,max=100"`
	CustomerEmail string             `json:"customer_email" binding:"required,email,max=254"`
	Note          string             `json:"note" binding:"max=1000"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// OrderListQuery represents admin order listing parameters
type OrderListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending paid shipped completed cancelled"`
	Search   string `form:"search" binding:"omitempty,max=100"`
}

// UpdateOrderStatusRequest represents an admin status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending paid shipped completed cancelled"`
}

// OrderItemResponse is an order line in API responses
type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Items         []OrderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	Currency      string              `json:"currency"`
	Status        string              `json:"status"`
	Note          string              `json:"note,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *marketplace.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Amount(),
		Currency:    string(p.Price.Currency()),
		Stock:       p.Stock,
		InStock:     p.IsAvailable() && p.Stock > 0,
		ImageURL:    p.ImageURL,
		Status:      string(p.Status),
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *marketplace.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.Amount(),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal().Amount(),
		}
	}
	return OrderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Items:         items,
		Total:         o.Total.Amount(),
		Currency:      string(o.Total.Currency()),
		Status:        string(o.Status),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
