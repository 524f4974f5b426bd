package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements integration.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its local ID within a tenant
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*integration.CanonicalOrder, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds an order by its platform ID and connection
func (r *GormOrderRepository) FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalOrderID string) (*integration.CanonicalOrder, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("connection_id = ? AND external_order_id = ?", connectionID, externalOrderID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Insert creates a new order row
func (r *GormOrderRepository) Insert(ctx context.Context, order *integration.CanonicalOrder) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update overwrites an existing order row
func (r *GormOrderRepository) Update(ctx context.Context, order *integration.CanonicalOrder) error {
	model := models.OrderModelFromDomain(order)
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrOrderNotFound
	}
	return nil
}

// FindAll lists orders for a tenant with filtering
func (r *GormOrderRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) ([]integration.CanonicalOrder, error) {
	query := r.applyFilters(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("ordered_at DESC, created_at DESC")

	var orderModels []models.OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]integration.CanonicalOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) (int64, error) {
	var count int64
	err := r.applyFilters(
		r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("tenant_id = ?", tenantID),
		filter,
	).Count(&count).Error
	return count, err
}

// FindByConsolidatedGroup lists orders sharing a consolidation group
func (r *GormOrderRepository) FindByConsolidatedGroup(ctx context.Context, tenantID, groupID uuid.UUID) ([]integration.CanonicalOrder, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND consolidated_group_id = ?", tenantID, groupID).
		Order("ordered_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]integration.CanonicalOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// applyFilters applies filter options to the query
func (r *GormOrderRepository) applyFilters(query *gorm.DB, filter integration.OrderFilter) *gorm.DB {
	if filter.Platform != nil {
		query = query.Where("platform = ?", *filter.Platform)
	}
	if filter.ConnectionID != nil {
		query = query.Where("connection_id = ?", *filter.ConnectionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.OrderedFrom != nil {
		query = query.Where("ordered_at >= ?", *filter.OrderedFrom)
	}
	if filter.OrderedUntil != nil {
		query = query.Where("ordered_at < ?", *filter.OrderedUntil)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLikePattern(filter.Search) + "%"
		query = query.Where("order_number ILIKE ? OR customer_full_name ILIKE ?", pattern, pattern)
	}
	return query
}

// escapeLikePattern escapes LIKE wildcards in user-supplied search strings
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

var _ integration.OrderRepository = (*GormOrderRepository)(nil)

// GormConnectionRepository implements integration.ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindByID finds a connection by ID within a tenant
func (r *GormConnectionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenantAndPlatform finds a tenant's connection for a platform
func (r *GormConnectionRepository) FindByTenantAndPlatform(ctx context.Context, tenantID uuid.UUID, platform integration.Platform) (*integration.PlatformConnection, error) {
	var model models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND platform = ?", tenantID, platform).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists all connections for a tenant
func (r *GormConnectionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.PlatformConnection, error) {
	var connModels []models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("platform ASC").
		Find(&connModels).Error; err != nil {
		return nil, err
	}

	connections := make([]integration.PlatformConnection, len(connModels))
	for i := range connModels {
		connections[i] = *connModels[i].ToDomain()
	}
	return connections, nil
}

// FindAllEnabled lists all enabled connections across tenants
func (r *GormConnectionRepository) FindAllEnabled(ctx context.Context) ([]integration.PlatformConnection, error) {
	var connModels []models.ConnectionModel
	if err := r.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("tenant_id ASC, platform ASC").
		Find(&connModels).Error; err != nil {
		return nil, err
	}

	connections := make([]integration.PlatformConnection, len(connModels))
	for i := range connModels {
		connections[i] = *connModels[i].ToDomain()
	}
	return connections, nil
}

// Save creates or updates a connection
func (r *GormConnectionRepository) Save(ctx context.Context, conn *integration.PlatformConnection) error {
	model := models.ConnectionModelFromDomain(conn)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a connection
func (r *GormConnectionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ConnectionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", integration.ErrConnectionNotFound, id)
	}
	return nil
}

var _ integration.ConnectionRepository = (*GormConnectionRepository)(nil)
