package bulk

import (
	"context"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// OperationFilter defines filter criteria for listing bulk operations
type OperationFilter struct {
	// Type filters by operation type (optional)
	Type *OperationType
	// Status filters by status (optional)
	Status *OperationStatus
	// Page number (1-indexed)
	Page int
	// Page size
	PageSize int
}

// OperationRepository defines the persistence interface for bulk operations
type OperationRepository interface {
	// Save creates or updates a bulk operation
	Save(ctx context.Context, op *BulkOperation) error

	// FindByID finds an operation by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*BulkOperation, error)

	// FindAll lists operations for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter OperationFilter) ([]BulkOperation, error)

	// Count counts operations matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter OperationFilter) (int64, error)

	// FindUnfinished lists non-terminal operations for a tenant, used to
	// resume interrupted jobs after a restart
	FindUnfinished(ctx context.Context, tenantID uuid.UUID) ([]BulkOperation, error)

	// Delete deletes a terminal operation record
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ---------------------------------------------------------------------------
// Progress events
// ---------------------------------------------------------------------------

// Event types published while a bulk operation runs. Front-end push
// consumers subscribe to these on the event bus; the transport beyond the
// bus is an external concern.
const (
	EventOperationStarted    = "bulk.operation.started"
	EventOperationProgressed = "bulk.operation.progressed"
	EventOperationFinished   = "bulk.operation.finished"
)

// OperationEvent is the domain event emitted on operation lifecycle changes
type OperationEvent struct {
	shared.BaseDomainEvent
	OperationType OperationType   `json:"operation_type"`
	Status        OperationStatus `json:"status"`
	Progress      int             `json:"progress"`
	Processed     int             `json:"processed_items"`
	Total         int             `json:"total_items"`
}

// NewOperationEvent creates a lifecycle event for the given operation
func NewOperationEvent(eventType string, op *BulkOperation) *OperationEvent {
	return &OperationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "BulkOperation", op.ID, op.TenantID),
		OperationType:   op.Type,
		Status:          op.Status,
		Progress:        op.Progress,
		Processed:       op.ProcessedItems,
		Total:           op.TotalItems,
	}
}
