package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// ProductReader provides read access to products
type ProductReader interface {
	// FindByID finds a product by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by merchant SKU within a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)

	// FindByBarcode finds a product by barcode within a tenant
	FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*Product, error)

	// FindAll lists products for a tenant with pagination
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// ProductWriter provides write access to products
type ProductWriter interface {
	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveBatch persists several products in one transaction
	SaveBatch(ctx context.Context, products []*Product) error

	// Delete deletes a product
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ProductRepository combines product read and write access
type ProductRepository interface {
	ProductReader
	ProductWriter
}

// PlatformDataRepository defines persistence for platform links
type PlatformDataRepository interface {
	// Save creates or updates a platform link
	Save(ctx context.Context, data *PlatformData) error

	// FindByEntity finds the link for one entity on one platform
	FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID, platform integration.Platform) (*PlatformData, error)

	// FindAllForEntity lists links for one entity across all platforms
	FindAllForEntity(ctx context.Context, tenantID uuid.UUID, entityType EntityType, entityID uuid.UUID) ([]PlatformData, error)

	// FindByPlatformSKU finds the link carrying the given platform SKU
	FindByPlatformSKU(ctx context.Context, tenantID uuid.UUID, platform integration.Platform, platformSKU string) (*PlatformData, error)

	// Delete deletes a platform link
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
