package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

// GormBulkOperationRepository implements bulk.OperationRepository using GORM
type GormBulkOperationRepository struct {
	db *gorm.DB
}

// NewGormBulkOperationRepository creates a new GormBulkOperationRepository
func NewGormBulkOperationRepository(db *gorm.DB) *GormBulkOperationRepository {
	return &GormBulkOperationRepository{db: db}
}

// Save creates or updates a bulk operation
func (r *GormBulkOperationRepository) Save(ctx context.Context, op *bulk.BulkOperation) error {
	model := models.BulkOperationModelFromDomain(op)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an operation by ID within a tenant
func (r *GormBulkOperationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	var model models.BulkOperationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists operations for a tenant with filtering
func (r *GormBulkOperationRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) ([]bulk.BulkOperation, error) {
	query := r.applyFilters(
		r.db.WithContext(ctx).Model(&models.BulkOperationModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	var opModels []models.BulkOperationModel
	if err := query.Find(&opModels).Error; err != nil {
		return nil, err
	}

	ops := make([]bulk.BulkOperation, len(opModels))
	for i := range opModels {
		ops[i] = *opModels[i].ToDomain()
	}
	return ops, nil
}

// Count counts operations matching the filter
func (r *GormBulkOperationRepository) Count(ctx context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) (int64, error) {
	var count int64
	err := r.applyFilters(
		r.db.WithContext(ctx).Model(&models.BulkOperationModel{}).Where("tenant_id = ?", tenantID),
		filter,
	).Count(&count).Error
	return count, err
}

// FindUnfinished lists non-terminal operations for a tenant
func (r *GormBulkOperationRepository) FindUnfinished(ctx context.Context, tenantID uuid.UUID) ([]bulk.BulkOperation, error) {
	var opModels []models.BulkOperationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]bulk.OperationStatus{bulk.OperationStatusPending, bulk.OperationStatusProcessing}).
		Order("created_at ASC").
		Find(&opModels).Error; err != nil {
		return nil, err
	}

	ops := make([]bulk.BulkOperation, len(opModels))
	for i := range opModels {
		ops[i] = *opModels[i].ToDomain()
	}
	return ops, nil
}

// Delete deletes a terminal operation record
func (r *GormBulkOperationRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.BulkOperationModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilters applies filter options to the query
func (r *GormBulkOperationRepository) applyFilters(query *gorm.DB, filter bulk.OperationFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

var _ bulk.OperationRepository = (*GormBulkOperationRepository)(nil)
