package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/domain/marketplace"
	"github.com/portfolio/backend/internal/domain/shared"
	"github.com/portfolio/backend/internal/domain/shared/valueobject"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
	ErrOrderNotFound   = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrSlugTaken       = shared.NewDomainError("ALREADY_EXISTS", "Slug is already in use")
)

// Invalidator drops derived documents after catalog changes
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service handles the storefront catalog and orders
type Service struct {
	products marketplace.ProductRepository
	orders   marketplace.OrderRepository
	uow      marketplace.UnitOfWork
	events   shared.EventPublisher
	feeds    Invalidator
	logger   *zap.Logger
}

// NewService creates a new marketplace service. events and feeds may be nil.
func NewService(
	products marketplace.ProductRepository,
	orders marketplace.OrderRepository,
	uow marketplace.UnitOfWork,
	events shared.EventPublisher,
	feeds Invalidator,
	logger *zap.Logger,
) *Service {
	return &Service{
		products: products,
		orders:   orders,
		uow:      uow,
		events:   events,
		feeds:    feeds,
		logger:   logger,
	}
}

// ListProducts returns a page of products. Public callers only see active ones.
func (s *Service) ListProducts(ctx context.Context, q ProductListQuery, activeOnly bool) ([]ProductResponse, int64, shared.Filter, error) {
	filter := marketplace.ProductFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			Search:   q.Search,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		},
		ActiveOnly: activeOnly,
	}
	filter.Filter = filter.Filter.Normalize(100)

	products, total, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = ToProductResponse(p)
	}
	return items, total, filter.Filter, nil
}

// GetActiveProduct returns an active product by slug. Archived products are not found.
func (s *Service) GetActiveProduct(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsAvailable() {
		return nil, ErrProductNotFound
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns any product by ID
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// CreateProduct creates an active product
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	price, err := toMoney(req.Price, req.Currency)
	if err != nil {
		return nil, err
	}
	product, err := marketplace.NewProduct(req.Name, req.Slug, price, req.Stock)
	if err != nil {
		return nil, err
	}
	taken, err := s.products.ExistsBySlug(ctx, product.Slug, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}
	if req.Description != "" || req.ImageURL != "" {
		if err := product.Update(product.Name, req.Description, req.ImageURL, price); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.catalogChanged(ctx, "product created", product.Slug)
	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct applies the non-nil fields of req
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, imageURL, price := product.Name, product.Description, product.ImageURL, product.Price
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.ImageURL != nil {
		imageURL = *req.ImageURL
	}
	if req.Price != nil || req.Currency != nil {
		amount, currency := price.Amount(), string(price.Currency())
		if req.Price != nil {
			amount = *req.Price
		}
		if req.Currency != nil {
			currency = *req.Currency
		}
		if price, err = toMoney(amount, currency); err != nil {
			return nil, err
		}
	}
	if err := product.Update(name, description, imageURL, price); err != nil {
		return nil, err
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.Status != nil {
		switch marketplace.ProductStatus(*req.Status) {
		case marketplace.ProductStatusActive:
			product.Activate()
		case marketplace.ProductStatusArchived:
			product.Archive()
		default:
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown product status: "+*req.Status)
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.catalogChanged(ctx, "product updated", product.Slug)
	resp := ToProductResponse(product)
	return &resp, nil
}

// DeleteProduct removes a product. Past orders keep their item snapshots.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.findProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.catalogChanged(ctx, "product deleted", product.Slug)
	return nil
}

// PlaceOrder snapshots the requested products, decrements stock and stores a
// pending order in one transaction. Any shortfall rolls the whole order back.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	quantities, ids := mergeLines(req.Items)
	if len(ids) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}

	var order *marketplace.Order
	err := s.uow.Do(ctx, func(products marketplace.ProductRepository, orders marketplace.OrderRepository) error {
		found, err := products.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*marketplace.Product, len(found))
		for _, p := range found {
			byID[p.ID] = p
		}

		items := make([]marketplace.OrderItem, 0, len(ids))
		for _, id := range ids {
			product, ok := byID[id]
			if !ok || !product.IsAvailable() {
				return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s is not available", id))
			}
			qty := quantities[id]
			if product.Stock < qty {
				return insufficientStock(product)
			}
			items = append(items, marketplace.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    qty,
			})
		}

		order, err = marketplace.NewOrder(req.CustomerName, req.CustomerEmail, items)
		if err != nil {
			return err
		}
		order.Note = req.Note

		for _, item := range items {
			if err := products.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return insufficientStock(byID[item.ProductID])
				}
				return err
			}
		}
		return orders.Save(ctx, order)
	})
	if err != nil {
		s.logger.Warn("Order rejected", zap.String("customer", logger.MaskEmail(req.CustomerEmail)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("items", order.ItemCount()))
	s.publish(ctx, order)
	s.catalogChanged(ctx, "stock changed", "")
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrder returns an order to the customer who placed it. A wrong e-mail is
// reported as not found so order IDs cannot be guessed.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID, email string) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.BelongsTo(email) {
		return nil, ErrOrderNotFound
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrderForAdmin returns any order by ID
func (s *Service) GetOrderForAdmin(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns a page of orders, newest first
func (s *Service) ListOrders(ctx context.Context, q OrderListQuery) ([]OrderResponse, int64, shared.Filter, error) {
	filter := marketplace.OrderFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			Search:   q.Search,
			OrderBy:  "created_at",
			OrderDir: "desc",
		},
	}
	if q.Status != "" {
		status, err := marketplace.ParseOrderStatus(q.Status)
		if err != nil {
			return nil, 0, filter.Filter, err
		}
		filter.Status = &status
	}
	filter.Filter = filter.Filter.Normalize(100)

	orders, total, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = ToOrderResponse(o)
	}
	return items, total, filter.Filter, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Cancelling returns
// the items to stock in the same transaction.
func (s *Service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	next, err := marketplace.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var order *marketplace.Order
	err = s.uow.Do(ctx, func(products marketplace.ProductRepository, orders marketplace.OrderRepository) error {
		found, err := orders.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		order = found
		if err := order.TransitionTo(next); err != nil {
			return err
		}
		if next == marketplace.OrderStatusCancelled {
			for _, item := range order.Items {
				err := products.AdjustStock(ctx, item.ProductID, item.Quantity)
				if errors.Is(err, shared.ErrNotFound) {
					s.logger.Warn("Cannot restock deleted product", zap.String("product_id", item.ProductID.String()))
					continue
				}
				if err != nil {
					return err
				}
			}
		}
		return orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed", zap.String("order_id", order.ID.String()), zap.String("status", string(order.Status)))
	s.publish(ctx, order)
	if next == marketplace.OrderStatusCancelled {
		s.catalogChanged(ctx, "stock changed", "")
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *Service) findProduct(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *Service) findOrder(ctx context.Context, id uuid.UUID) (*marketplace.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *Service) publish(ctx context.Context, order *marketplace.Order) {
	events := order.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func (s *Service) catalogChanged(ctx context.Context, what, slug string) {
	if slug != "" {
		s.logger.Info("Catalog changed", zap.String("change", what), zap.String("slug", slug))
	}
	if s.feeds != nil {
		s.feeds.Invalidate(ctx)
	}
}

// mergeLines sums quantities per product, keeping first-seen order
func mergeLines(lines []OrderItemRequest) (map[uuid.UUID]int, []uuid.UUID) {
	quantities := make(map[uuid.UUID]int, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, seen := quantities[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	return quantities, ids
}

func insufficientStock(p *marketplace.Product) error {
	return shared.NewDomainError(shared.ErrInsufficientStock.Code,
		fmt.Sprintf("Only %d of %q left in stock", p.Stock, p.Name))
}

func toMoney(amount decimal.Decimal, currency string) (valueobject.Money, error) {
	code := valueobject.DefaultCurrency
	if currency != "" {
		parsed, err := valueobject.ParseCurrency(currency)
		if err != nil {
			return valueobject.Money{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
		code = parsed
	}
	money, err := valueobject.NewMoney(amount, code)
	if err != nil {
		return valueobject.Money{}, shared.NewDomainError("INVALID_PRICE", err.Error())
	}
	return money, nil
}
