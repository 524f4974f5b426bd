package bulkop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
)

// Service exposes bulk operation tracking to the API: listing, live
// progress, cancellation and cleanup. Operations are created and advanced by
// the job that owns them (order sync, imports); this service only observes
// and cancels.
type Service struct {
	operations bulk.OperationRepository
	progress   cache.ProgressCache
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewService creates a new bulk operation service
func NewService(operations bulk.OperationRepository, progress cache.ProgressCache, publisher shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		operations: operations,
		progress:   progress,
		publisher:  publisher,
		logger:     logger,
	}
}

// Get returns one operation with its full error and warning details
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	return s.operations.FindByID(ctx, tenantID, id)
}

// List returns a page of operations for the tenant
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) (*shared.Paginated[bulk.BulkOperation], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	ops, err := s.operations.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.operations.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ops, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Progress returns the live progress of an operation. Running operations are
// served from the cache so polling clients stay off the operations table;
// when no snapshot is cached the durable record answers.
func (s *Service) Progress(ctx context.Context, tenantID, id uuid.UUID) (*cache.ProgressSnapshot, error) {
	snapshot, err := s.progress.Get(ctx, id)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, cache.ErrProgressNotCached) {
		s.logger.Warn("Progress cache read failed, falling back to store",
			zap.String("operation_id", id.String()), zap.Error(err))
	}

	op, err := s.operations.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	fromStore := cache.SnapshotFromOperation(op)
	return &fromStore, nil
}

// Cancel requests cancellation of a running operation. The owning job
// observes the stored status between chunks and stops; results recorded
// after this call are discarded by the tracker.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	op, err := s.operations.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := op.Cancel(); err != nil {
		return nil, err
	}
	if err := s.operations.Save(ctx, op); err != nil {
		return nil, err
	}

	if err := s.progress.Drop(ctx, op.ID); err != nil {
		s.logger.Warn("Failed to drop progress snapshot on cancel",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	s.publishEvent(ctx, bulk.NewOperationEvent(bulk.EventOperationFinished, op))

	s.logger.Info("Bulk operation cancelled",
		zap.String("operation_id", op.ID.String()),
		zap.String("type", string(op.Type)),
		zap.Int("processed_items", op.ProcessedItems),
	)
	return op, nil
}

// Delete removes a terminal operation record
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	op, err := s.operations.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !op.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot delete a running operation", shared.ErrInvalidState)
	}
	return s.operations.Delete(ctx, tenantID, id)
}

// Unfinished lists operations that were interrupted and can be resumed
func (s *Service) Unfinished(ctx context.Context, tenantID uuid.UUID) ([]bulk.BulkOperation, error) {
	return s.operations.FindUnfinished(ctx, tenantID)
}

func (s *Service) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish operation event",
			zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
