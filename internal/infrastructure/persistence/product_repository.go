package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"sku":        true,
	"name":       true,
	"barcode":    true,
	"sale_price": true,
	"stock_qty":  true,
	"status":     true,
	"created_at": true,
	"updated_at": true,
}

// GormProductRepository implements catalog.ProductRepository using GORM.
// Products carry their gorm tags on the domain struct, so no separate
// persistence model is needed.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds a product by merchant SKU within a tenant. SKUs are stored
// upper-cased, so the lookup normalizes the same way.
func (r *GormProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, strings.ToUpper(strings.TrimSpace(sku))).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByBarcode finds a product by barcode within a tenant
func (r *GormProductRepository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND barcode = ?", tenantID, strings.TrimSpace(barcode)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll lists products for a tenant with pagination
func (r *GormProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	query := r.applyFilters(
		r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order(r.orderClause(filter))

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilters(
		r.db.WithContext(ctx).Model(&catalog.Product{}).Where("tenant_id = ?", tenantID),
		filter,
	).Count(&count).Error
	return count, err
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// SaveBatch persists several products in one transaction
func (r *GormProductRepository) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, product := range products {
			if err := tx.Save(product).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&catalog.Product{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		query = query.Where("sku ILIKE ? OR name ILIKE ? OR barcode ILIKE ?", pattern, pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if brand, ok := filter.Filters["brand"]; ok {
		query = query.Where("brand = ?", brand)
	}
	return query
}

func (r *GormProductRepository) orderClause(filter shared.Filter) string {
	field := "created_at"
	if ProductSortFields[filter.OrderBy] {
		field = filter.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return field + " " + dir
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// GormPlatformDataRepository implements catalog.PlatformDataRepository using GORM
type GormPlatformDataRepository struct {
	db *gorm.DB
}

// NewGormPlatformDataRepository creates a new GormPlatformDataRepository
func NewGormPlatformDataRepository(db *gorm.DB) *GormPlatformDataRepository {
	return &GormPlatformDataRepository{db: db}
}

// Save creates or updates a platform link
func (r *GormPlatformDataRepository) Save(ctx context.Context, data *catalog.PlatformData) error {
	return r.db.WithContext(ctx).Save(data).Error
}

// FindByEntity finds the link for one entity on one platform
func (r *GormPlatformDataRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType catalog.EntityType, entityID uuid.UUID, platform integration.Platform) (*catalog.PlatformData, error) {
	var data catalog.PlatformData
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND platform = ?",
			tenantID, entityType, entityID, platform).
		First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &data, nil
}

// FindAllForEntity lists links for one entity across all platforms
func (r *GormPlatformDataRepository) FindAllForEntity(ctx context.Context, tenantID uuid.UUID, entityType catalog.EntityType, entityID uuid.UUID) ([]catalog.PlatformData, error) {
	var links []catalog.PlatformData
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("platform ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// FindByPlatformSKU finds the link carrying the given platform SKU
func (r *GormPlatformDataRepository) FindByPlatformSKU(ctx context.Context, tenantID uuid.UUID, platform integration.Platform, platformSKU string) (*catalog.PlatformData, error) {
	var data catalog.PlatformData
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ? AND platform_sku = ?", tenantID, platform, platformSKU).
		First(&data).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &data, nil
}

// Delete deletes a platform link
func (r *GormPlatformDataRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&catalog.PlatformData{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.PlatformDataRepository = (*GormPlatformDataRepository)(nil)
