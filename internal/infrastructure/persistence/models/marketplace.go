package models

import (
	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for storefront products.
type ProductModel struct {
	AggregateModel
	Slug        string                    `gorm:"type:varchar(120);not null;uniqueIndex"`
	Name        string                    `gorm:"type:varchar(200);not null"`
	Description string                    `gorm:"type:text"`
	Price       decimal.Decimal           `gorm:"type:decimal(12,2);not null"`
	Currency    string                    `gorm:"type:varchar(3);not null;default:'USD'"`
	Stock       int                       `gorm:"not null;default:0"`
	ImageURL    string                    `gorm:"type:varchar(500)"`
	Status      marketplace.ProductStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *marketplace.Product {
	price, _ := valueobject.NewMoney(m.Price, currencyOrDefault(m.Currency))
	return &marketplace.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Slug:              m.Slug,
		Name:              m.Name,
		Description:       m.Description,
		Price:             price,
		Stock:             m.Stock,
		ImageURL:          m.ImageURL,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *marketplace.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Slug = p.Slug
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price.Amount()
	m.Currency = string(p.Price.Currency())
	m.Stock = p.Stock
	m.ImageURL = p.ImageURL
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *marketplace.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// OrderModel is the persistence model for orders. Items live in order_items.
type OrderModel struct {
	AggregateModel
	CustomerName  string                  `gorm:"type:varchar(100);not null"`
	CustomerEmail string                  `gorm:"type:varchar(200);not null;index"`
	Total         decimal.Decimal         `gorm:"type:decimal(14,2);not null"`
	Currency      string                  `gorm:"type:varchar(3);not null"`
	Status        marketplace.OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Note          string                  `gorm:"type:text"`
	Items         []OrderItemModel        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one line of an order, keeping the product snapshot.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *marketplace.Order {
	currency := currencyOrDefault(m.Currency)
	total, _ := valueobject.NewMoney(m.Total, currency)
	items := make([]marketplace.OrderItem, 0, len(m.Items))
	for _, item := range m.Items {
		unit, _ := valueobject.NewMoney(item.UnitPrice, currency)
		items = append(items, marketplace.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   unit,
			Quantity:    item.Quantity,
		})
	}
	return &marketplace.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerName:      m.CustomerName,
		CustomerEmail:     m.CustomerEmail,
		Items:             items,
		Total:             total,
		Status:            m.Status,
		Note:              m.Note,
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *marketplace.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.Total = o.Total.Amount()
	m.Currency = string(o.Total.Currency())
	m.Status = o.Status
	m.Note = o.Note
	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for i, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:          uuid.NewSHA1(o.ID, []byte{byte(i >> 8), byte(i)}),
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.Amount(),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal().Amount(),
			Position:    i,
		})
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *marketplace.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

func currencyOrDefault(code string) valueobject.Currency {
	c, err := valueobject.ParseCurrency(code)
	if err != nil {
		return valueobject.Currency(code)
	}
	return c
}
