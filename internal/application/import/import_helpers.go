package importapp

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	csvimport "github.com/sellerhub/backend/internal/infrastructure/import"
)

// parseRows parses the upload, checks the required columns and returns the
// non-blank data rows
func parseRows(file io.Reader, requiredColumns ...string) ([]*csvimport.Row, error) {
	parser, err := csvimport.NewCSVParser(file)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if err := parser.RequireHeaders(requiredColumns...); err != nil {
		return nil, err
	}

	rows, err := parser.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file contains no data rows", shared.ErrInvalidInput)
	}
	return rows, nil
}

func publishEvent(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, event shared.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish operation event",
			zap.String("event_type", event.EventType()), zap.Error(err))
	}
}

func checkpoint(ctx context.Context, operations bulk.OperationRepository, progress cache.ProgressCache, publisher shared.EventPublisher, logger *zap.Logger, op *bulk.BulkOperation) {
	if err := operations.Save(ctx, op); err != nil {
		logger.Error("Failed to checkpoint bulk operation",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	if err := progress.Put(ctx, cache.SnapshotFromOperation(op)); err != nil {
		logger.Warn("Failed to cache progress snapshot",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	publishEvent(ctx, publisher, logger, bulk.NewOperationEvent(bulk.EventOperationProgressed, op))
}

func finish(ctx context.Context, operations bulk.OperationRepository, progress cache.ProgressCache, publisher shared.EventPublisher, logger *zap.Logger, op *bulk.BulkOperation) {
	if err := operations.Save(ctx, op); err != nil {
		logger.Error("Failed to persist finished bulk operation",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	publishEvent(ctx, publisher, logger, bulk.NewOperationEvent(bulk.EventOperationFinished, op))
	if err := progress.Drop(ctx, op.ID); err != nil {
		logger.Warn("Failed to drop progress snapshot",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
}
