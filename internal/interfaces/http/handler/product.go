package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogapp "github.com/sellerhub/backend/internal/application/catalog"
	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// ProductHandler manages local catalog endpoints
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// CreateProductRequest is the request body for adding a product
type CreateProductRequest struct {
	SKU         string           `json:"sku" binding:"required,min=1,max=100"`
	Name        string           `json:"name" binding:"required,min=1,max=255"`
	Description string           `json:"description"`
	Barcode     string           `json:"barcode" binding:"max=50"`
	Brand       string           `json:"brand" binding:"max=100"`
	ListPrice   decimal.Decimal  `json:"list_price"`
	SalePrice   decimal.Decimal  `json:"sale_price"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	StockQty    *int             `json:"stock_qty" binding:"omitempty,min=0"`
}

// UpdateProductRequest is the request body for updating a product
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand" binding:"omitempty,max=100"`
	Barcode     *string          `json:"barcode" binding:"omitempty,max=50"`
	ListPrice   *decimal.Decimal `json:"list_price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
	StockQty    *int             `json:"stock_qty" binding:"omitempty,min=0"`
}

// ListProductsRequest carries product list query parameters
type ListProductsRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active inactive archived"`
	Brand  string `form:"brand"`
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	product, err := h.products.Create(c.Request.Context(), tenantID, catalogapp.CreateProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		Brand:       req.Brand,
		ListPrice:   req.ListPrice,
		SalePrice:   req.SalePrice,
		VATRate:     req.VATRate,
		StockQty:    req.StockQty,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToProductResponse(product))
}

// List returns a page of catalog products
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}
	req.Normalize()

	page, err := h.products.List(c.Request.Context(), tenantID, catalogapp.ProductListFilter{
		Status:   req.Status,
		Brand:    req.Brand,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToProductResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Get returns one product
func (h *ProductHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToProductResponse(product))
}

// Update applies partial changes to a product
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	product, err := h.products.Update(c.Request.Context(), tenantID, id, catalogapp.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Barcode:     req.Barcode,
		ListPrice:   req.ListPrice,
		SalePrice:   req.SalePrice,
		VATRate:     req.VATRate,
		StockQty:    req.StockQty,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToProductResponse(product))
}

// Activate makes a product eligible for order line matching
func (h *ProductHandler) Activate(c *gin.Context) {
	h.transition(c, h.products.Activate)
}

// Deactivate takes a product out of matching
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.products.Deactivate)
}

// Archive retires a product
func (h *ProductHandler) Archive(c *gin.Context) {
	h.transition(c, h.products.Archive)
}

func (h *ProductHandler) transition(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToProductResponse(product))
}

// Delete removes a product permanently
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.products.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers product routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.PATCH("/:id", h.Update)
		products.POST("/:id/activate", h.Activate)
		products.POST("/:id/deactivate", h.Deactivate)
		products.POST("/:id/archive", h.Archive)
		products.DELETE("/:id", h.Delete)
	}
}
