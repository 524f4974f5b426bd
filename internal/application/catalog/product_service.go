package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// CreateProductInput carries the fields for a new catalog product
type CreateProductInput struct {
	SKU         string
	Name        string
	Description string
	Barcode     string
	Brand       string
	ListPrice   decimal.Decimal
	SalePrice   decimal.Decimal
	VATRate     *decimal.Decimal
	StockQty    *int
}

// UpdateProductInput carries the mutable product fields. Nil pointers leave
// the current value untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Brand       *string
	Barcode     *string
	ListPrice   *decimal.Decimal
	SalePrice   *decimal.Decimal
	VATRate     *decimal.Decimal
	StockQty    *int
}

// ProductListFilter narrows product listings
type ProductListFilter struct {
	Status   string
	Brand    string
	Search   string
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ProductService manages the tenant's local catalog. The catalog is what
// incoming marketplace order lines and CSV imports are matched against.
type ProductService struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// Create adds a product. SKUs are unique per tenant.
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*catalog.Product, error) {
	existing, err := s.products.FindBySKU(ctx, tenantID, input.SKU)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sku %s", shared.ErrAlreadyExists, input.SKU)
	}

	product, err := catalog.NewProduct(tenantID, input.SKU, input.Name)
	if err != nil {
		return nil, err
	}
	if input.Description != "" || input.Brand != "" {
		if err := product.Update(input.Name, input.Description, input.Brand); err != nil {
			return nil, err
		}
	}
	if input.Barcode != "" {
		if err := product.SetBarcode(input.Barcode); err != nil {
			return nil, err
		}
	}
	if !input.ListPrice.IsZero() || !input.SalePrice.IsZero() {
		if err := product.SetPrices(input.ListPrice, input.SalePrice); err != nil {
			return nil, err
		}
	}
	if input.VATRate != nil {
		if err := product.SetVATRate(*input.VATRate); err != nil {
			return nil, err
		}
	}
	if input.StockQty != nil {
		if err := product.SetStock(*input.StockQty); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// Get returns one product of the tenant
func (s *ProductService) Get(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, tenantID, id)
}

// GetBySKU returns the product carrying the given merchant SKU
func (s *ProductService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	return s.products.FindBySKU(ctx, tenantID, sku)
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) (*shared.Paginated[catalog.Product], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Brand != "" {
		domainFilter.Filters["brand"] = filter.Brand
	}

	products, err := s.products.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(products, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies partial changes to a product
func (s *ProductService) Update(ctx context.Context, tenantID, id uuid.UUID, input UpdateProductInput) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil || input.Description != nil || input.Brand != nil {
		name, description, brand := product.Name, product.Description, product.Brand
		if input.Name != nil {
			name = *input.Name
		}
		if input.Description != nil {
			description = *input.Description
		}
		if input.Brand != nil {
			brand = *input.Brand
		}
		if err := product.Update(name, description, brand); err != nil {
			return nil, err
		}
	}
	if input.Barcode != nil {
		if err := product.SetBarcode(*input.Barcode); err != nil {
			return nil, err
		}
	}
	if input.ListPrice != nil || input.SalePrice != nil {
		listPrice, salePrice := product.ListPrice, product.SalePrice
		if input.ListPrice != nil {
			listPrice = *input.ListPrice
		}
		if input.SalePrice != nil {
			salePrice = *input.SalePrice
		}
		if err := product.SetPrices(listPrice, salePrice); err != nil {
			return nil, err
		}
	}
	if input.VATRate != nil {
		if err := product.SetVATRate(*input.VATRate); err != nil {
			return nil, err
		}
	}
	if input.StockQty != nil {
		if err := product.SetStock(*input.StockQty); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Activate makes a product eligible for matching again
func (s *ProductService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := product.Activate(); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate takes a product out of matching without losing it
func (s *ProductService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Archive retires a product. Archived products stay for order history.
func (s *ProductService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	product.Archive()
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product permanently
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.products.Delete(ctx, tenantID, id)
}
