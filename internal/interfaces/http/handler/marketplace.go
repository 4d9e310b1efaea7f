package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/application/marketplace"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
)

// MarketplaceHandler serves the storefront and its admin side
type MarketplaceHandler struct {
	BaseHandler
	service *marketplace.Service
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(service *marketplace.Service) *MarketplaceHandler {
	return &MarketplaceHandler{service: service}
}

// ListProducts handles GET /products, active products only
//
// @ID          listProducts
// @Summary     List active products
// @Tags        products
// @Produce     json
// @Param       page query int false "Page number, from 1"
// @Param       page_size query int false "Items per page"
// @Param       search query string false "Name search"
// @Param       order_by query string false "Sort field" Enums(name, price, created_at)
// @Param       order_dir query string false "Sort direction" Enums(asc, desc)
// @Success     200 {object} APIResponse[[]marketplace.ProductResponse]
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /products [get]
func (h *MarketplaceHandler) ListProducts(c *gin.Context) {
	h.listProducts(c, true)
}

// AdminListProducts handles GET /admin/products, archived included
//
// @ID          adminListProducts
// @Summary     List all products, archived included
// @Tags        admin-products
// @Produce     json
// @Param       page query int false "Page number, from 1"
// @Param       page_size query int false "Items per page"
// @Param       search query string false "Name search"
// @Param       order_by query string false "Sort field" Enums(name, price, created_at)
// @Param       order_dir query string false "Sort direction" Enums(asc, desc)
// @Success     200 {object} APIResponse[[]marketplace.ProductResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/products [get]
func (h *MarketplaceHandler) AdminListProducts(c *gin.Context) {
	h.listProducts(c, false)
}

func (h *MarketplaceHandler) listProducts(c *gin.Context, activeOnly bool) {
	var q marketplace.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, total, filter, err := h.service.ListProducts(c.Request.Context(), q, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Paginated(c, items, total, filter.Page, filter.PageSize)
}

// GetProduct handles GET /products/:slug
//
// @ID          getProductBySlug
// @Summary     Get an active product
// @Tags        products
// @Produce     json
// @Param       slug path string true "URL slug"
// @Success     200 {object} APIResponse[marketplace.ProductResponse]
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /products/{slug} [get]
func (h *MarketplaceHandler) GetProduct(c *gin.Context) {
	product, err := h.service.GetActiveProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, product, "")
}

// PlaceOrder handles POST /orders. Stock is reserved in the same transaction
// that stores the order; a shortfall is a 409.
//
// @ID          placeOrder
// @Summary     Place an order
// @Description Stock is reserved with the order; a shortfall is a 409
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body marketplace.PlaceOrderRequest true "Request body"
// @Success     201 {object} APIResponse[marketplace.OrderResponse]
// @Failure     404 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /orders [post]
func (h *MarketplaceHandler) PlaceOrder(c *gin.Context) {
	var req marketplace.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Created(c, order, "Order placed")
}

// GetOrder handles GET /orders/:id?email=. A wrong e-mail looks exactly like a missing order.
//
// @ID          getOrder
// @Summary     Look up an order
// @Tags        orders
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Param       email query string true "E-mail the order was placed with"
// @Success     200 {object} APIResponse[marketplace.OrderResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Router      /orders/{id} [get]
func (h *MarketplaceHandler) GetOrder(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var q struct {
		Email string `form:"email" binding:"required,email"`
	}
	if !h.BindQuery(c, &q) {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), id, q.Email)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, order, "")
}

// AdminGetProduct handles GET /admin/products/:id
//
// @ID          adminGetProduct
// @Summary     Get a product by ID
// @Tags        admin-products
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     200 {object} APIResponse[marketplace.ProductResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/products/{id} [get]
func (h *MarketplaceHandler) AdminGetProduct(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, product, "")
}

// CreateProduct handles POST /admin/products
//
// @ID          createProduct
// @Summary     Create a product
// @Tags        admin-products
// @Accept      json
// @Produce     json
// @Param       request body marketplace.CreateProductRequest true "Request body"
// @Success     201 {object} APIResponse[marketplace.ProductResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/products [post]
func (h *MarketplaceHandler) CreateProduct(c *gin.Context) {
	var req marketplace.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Created(c, product, "Product created")
}

// UpdateProduct handles PUT /admin/products/:id
//
// @ID          updateProduct
// @Summary     Update a product
// @Tags        admin-products
// @Accept      json
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Param       request body marketplace.UpdateProductRequest true "Request body"
// @Success     200 {object} APIResponse[marketplace.ProductResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/products/{id} [put]
func (h *MarketplaceHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req marketplace.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, product, "Product updated")
}

// DeleteProduct handles DELETE /admin/products/:id
//
// @ID          deleteProduct
// @Summary     Delete a product
// @Tags        admin-products
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     204
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/products/{id} [delete]
func (h *MarketplaceHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	dto.NoContent(c)
}

// ListOrders handles GET /admin/orders
//
// @ID          listOrders
// @Summary     List orders
// @Tags        admin-orders
// @Produce     json
// @Param       page query int false "Page number, from 1"
// @Param       page_size query int false "Items per page"
// @Param       status query string false "Only orders in this status" Enums(pending, paid, shipped, completed, cancelled)
// @Param       search query string false "Customer name or e-mail search"
// @Success     200 {object} APIResponse[[]marketplace.OrderResponse]
// @Failure     401 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/orders [get]
func (h *MarketplaceHandler) ListOrders(c *gin.Context) {
	var q marketplace.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, total, filter, err := h.service.ListOrders(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Paginated(c, items, total, filter.Page, filter.PageSize)
}

// AdminGetOrder handles GET /admin/orders/:id
//
// @ID          adminGetOrder
// @Summary     Get an order by ID
// @Tags        admin-orders
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Success     200 {object} APIResponse[marketplace.OrderResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/orders/{id} [get]
func (h *MarketplaceHandler) AdminGetOrder(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrderForAdmin(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, order, "")
}

// UpdateOrderStatus handles PATCH /admin/orders/:id/status
//
// @ID          updateOrderStatus
// @Summary     Move an order through its lifecycle
// @Tags        admin-orders
// @Accept      json
// @Produce     json
// @Param       id path string true "Resource ID" Format(uuid)
// @Param       request body marketplace.UpdateOrderStatusRequest true "Request body"
// @Success     200 {object} APIResponse[marketplace.OrderResponse]
// @Failure     400 {object} ErrorResponse
// @Failure     401 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Failure     409 {object} ErrorResponse
// @Failure     422 {object} ValidationErrorResponse
// @Failure     500 {object} ErrorResponse
// @Security    BearerAuth
// @Router      /admin/orders/{id}/status [patch]
func (h *MarketplaceHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req marketplace.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.service.UpdateOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	dto.Success(c, order, "Order status updated")
}
