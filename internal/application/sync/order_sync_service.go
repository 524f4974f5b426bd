package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	"github.com/sellerhub/backend/internal/infrastructure/config"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	"github.com/sellerhub/backend/internal/infrastructure/telemetry"
)

// syncOverlap is subtracted from the last successful pull time so that
// orders modified right around the previous cutoff are never missed. The
// reconciler makes re-pulling the overlap harmless.
const syncOverlap = 5 * time.Minute

// OrderSyncService pulls orders from a marketplace connection, maps them to
// the canonical model and reconciles them into the store, tracking the run
// as a bulk operation. Pages are pulled sequentially; the orders of each
// page are mapped and upserted with bounded parallelism, and progress is
// checkpointed between chunks so an interrupted run can resume.
type OrderSyncService struct {
	gateways     integration.GatewayRegistry
	mapper       integration.OrderMapper
	reconciler   *Reconciler
	consolidator *Consolidator
	connections  integration.ConnectionRepository
	operations   bulk.OperationRepository
	progress     cache.ProgressCache
	idempotency  shared.IdempotencyStore
	publisher    shared.EventPublisher
	logger       *zap.Logger
	cfg          config.SyncConfig
}

// NewOrderSyncService creates the order sync service
func NewOrderSyncService(
	gateways integration.GatewayRegistry,
	mapper integration.OrderMapper,
	reconciler *Reconciler,
	consolidator *Consolidator,
	connections integration.ConnectionRepository,
	operations bulk.OperationRepository,
	progress cache.ProgressCache,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	log *zap.Logger,
	cfg config.SyncConfig,
) *OrderSyncService {
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = 50
	}
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 4
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 50
	}
	if cfg.LookbackWindow <= 0 {
		cfg.LookbackWindow = 24 * time.Hour
	}
	return &OrderSyncService{
		gateways:     gateways,
		mapper:       mapper,
		reconciler:   reconciler,
		consolidator: consolidator,
		connections:  connections,
		operations:   operations,
		progress:     progress,
		idempotency:  idempotency,
		publisher:    publisher,
		logger:       log,
		cfg:          cfg,
	}
}

// Run pulls orders for one connection and tracks the run as a bulk
// operation. The returned operation is terminal.
func (s *OrderSyncService) Run(ctx context.Context, tenantID, connectionID uuid.UUID) (*bulk.BulkOperation, error) {
	conn, err := s.connections.FindByID(ctx, tenantID, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.IsEnabled {
		return nil, fmt.Errorf("%w: connection %s", integration.ErrPlatformNotEnabled, conn.Name)
	}

	op, err := bulk.NewBulkOperation(tenantID, bulk.OperationOrderSync, 0)
	if err != nil {
		return nil, err
	}
	op.ConnectionID = &conn.ID
	if err := op.Start(); err != nil {
		return nil, err
	}
	if err := s.operations.Save(ctx, op); err != nil {
		return nil, err
	}
	s.publish(ctx, bulk.NewOperationEvent(bulk.EventOperationStarted, op))

	s.runSync(ctx, conn, op, 0)
	return op, nil
}

// Resume continues an interrupted order sync from its processed-items
// offset. Items before the offset were already reconciled; re-pulling a
// partial page is safe because the upsert is idempotent.
func (s *OrderSyncService) Resume(ctx context.Context, tenantID, operationID uuid.UUID) (*bulk.BulkOperation, error) {
	op, err := s.operations.FindByID(ctx, tenantID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status.IsTerminal() {
		return op, nil
	}
	if op.ConnectionID == nil {
		return nil, fmt.Errorf("%w: operation %s has no connection", shared.ErrInvalidState, op.ID)
	}
	if op.Status == bulk.OperationStatusPending {
		if err := op.Start(); err != nil {
			return nil, err
		}
	}

	conn, err := s.connections.FindByID(ctx, tenantID, *op.ConnectionID)
	if err != nil {
		return nil, err
	}

	startPage := op.ResumeOffset() / s.cfg.PageSize
	s.runSync(ctx, conn, op, startPage)
	return op, nil
}

func (s *OrderSyncService) runSync(ctx context.Context, conn *integration.PlatformConnection, op *bulk.BulkOperation, startPage int) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_sync", "run",
		attribute.String(telemetry.SpanAttrPlatform, conn.Platform.String()),
		attribute.String(telemetry.SpanAttrConnectionID, conn.ID.String()),
		attribute.String(telemetry.SpanAttrOperationID, op.ID.String()),
	)
	defer span.End()

	ctx, log := logger.WithSyncScope(ctx, s.logger, conn.ID.String(), conn.Platform.String())
	log.Info("Order sync started",
		zap.String("operation_id", op.ID.String()),
		zap.Int("start_page", startPage),
	)

	gateway, err := s.gateways.Gateway(conn.Platform)
	if err != nil {
		telemetry.RecordError(span, err)
		s.finalize(ctx, conn, op, err)
		return
	}

	startTime, endTime := s.pullWindow(conn, time.Now().UTC())
	pageNo := startPage
	for {
		resp, err := gateway.PullOrders(ctx, &integration.OrderPullRequest{
			Connection: conn,
			StartTime:  startTime,
			EndTime:    endTime,
			PageNo:     pageNo,
			PageSize:   s.cfg.PageSize,
		})
		if err != nil {
			err = fmt.Errorf("pull page %d: %w", pageNo, err)
			telemetry.RecordError(span, err)
			s.finalize(ctx, conn, op, err)
			return
		}
		telemetry.AddEvent(span, "page_pulled",
			attribute.Int(telemetry.SpanAttrPageNo, pageNo),
			attribute.Int(telemetry.SpanAttrOrderCount, len(resp.RawOrders)),
		)
		// Token-paged gateways (Amazon) only know the current page, so keep
		// the total at least as large as everything pulled so far. Otherwise
		// ProcessedItems would outgrow TotalItems on multi-page pulls.
		total := resp.TotalCount
		if seen := int64(op.ProcessedItems + len(resp.RawOrders)); seen > total {
			total = seen
		}
		if total > int64(op.TotalItems) {
			op.SetTotalItems(int(total))
		}

		for start := 0; start < len(resp.RawOrders); start += s.cfg.ChunkSize {
			end := start + s.cfg.ChunkSize
			if end > len(resp.RawOrders) {
				end = len(resp.RawOrders)
			}

			for _, result := range s.processChunk(ctx, conn, resp.RawOrders[start:end]) {
				op.RecordItemResult(result.success, result.itemID, result.errMsg)
				if result.warning != "" {
					op.RecordWarning(result.itemID, result.warning)
				}
			}
			s.checkpoint(ctx, op)

			if s.cancelledInStore(ctx, op) {
				log.Info("Order sync cancelled", zap.String("operation_id", op.ID.String()))
				_ = op.Cancel()
				s.finalize(ctx, conn, op, nil)
				return
			}
		}

		if !resp.HasMore {
			break
		}
		pageNo = resp.NextPageNo
	}

	s.finalize(ctx, conn, op, nil)
	telemetry.SetOK(span)
	log.Info("Order sync finished",
		zap.String("operation_id", op.ID.String()),
		zap.String("status", string(op.Status)),
		zap.Int("processed", op.ProcessedItems),
		zap.Int("failed", op.FailedItems),
		zap.Duration("duration", op.Duration()),
	)
}

// pullWindow returns the incremental time range for this pull: since the
// last successful pull (with overlap), capped at the lookback window.
func (s *OrderSyncService) pullWindow(conn *integration.PlatformConnection, now time.Time) (time.Time, time.Time) {
	start := now.Add(-s.cfg.LookbackWindow)
	if conn.LastSyncAt != nil {
		if since := conn.LastSyncAt.Add(-syncOverlap); since.After(start) {
			start = since
		}
	}
	return start, now
}

type itemResult struct {
	itemID  string
	success bool
	errMsg  string
	warning string
}

// processChunk maps and reconciles a slice of raw payloads with bounded
// parallelism. Results come back in input order; the caller records them on
// the tracker sequentially, since the tracker is not goroutine safe.
func (s *OrderSyncService) processChunk(ctx context.Context, conn *integration.PlatformConnection, rawOrders [][]byte) []itemResult {
	results := make([]itemResult, len(rawOrders))
	sem := make(chan struct{}, s.cfg.MaxParallel)
	var wg sync.WaitGroup

	for i, raw := range rawOrders {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, raw []byte) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.processRawOrder(ctx, conn, raw)
		}(i, raw)
	}
	wg.Wait()
	return results
}

func (s *OrderSyncService) processRawOrder(ctx context.Context, conn *integration.PlatformConnection, raw []byte) itemResult {
	order, err := s.mapper.MapOrder(conn.Platform, raw)
	if err != nil {
		return itemResult{itemID: "unmapped", errMsg: err.Error()}
	}
	order.TenantID = conn.TenantID
	order.ConnectionID = conn.ID

	// a payload with the same platform timestamp was already reconciled;
	// skip the write but count the item as done
	key := fmt.Sprintf("%s:%s:%d", conn.ID, order.ExternalOrderID, order.LastModifiedAt.UnixMilli())
	if first, err := s.idempotency.MarkProcessed(ctx, key, s.cfg.LookbackWindow); err != nil {
		s.logger.Warn("Idempotency check failed, processing anyway",
			zap.String("key", key), zap.Error(err))
	} else if !first {
		return itemResult{itemID: order.ExternalOrderID, success: true, warning: "duplicate payload skipped"}
	}

	if s.cfg.ConsolidateOrders {
		s.consolidator.Assign(ctx, conn, order)
	}

	result, err := s.reconciler.Upsert(ctx, order)
	if err != nil {
		return itemResult{itemID: order.ExternalOrderID, errMsg: err.Error()}
	}
	if result.Action == ActionSkipped {
		return itemResult{itemID: order.ExternalOrderID, success: true, warning: "stale payload skipped"}
	}
	return itemResult{itemID: order.ExternalOrderID, success: true}
}

// checkpoint persists the tracker, refreshes the live progress snapshot and
// notifies subscribers
func (s *OrderSyncService) checkpoint(ctx context.Context, op *bulk.BulkOperation) {
	if err := s.operations.Save(ctx, op); err != nil {
		s.logger.Error("Failed to checkpoint bulk operation",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	if err := s.progress.Put(ctx, cache.SnapshotFromOperation(op)); err != nil {
		s.logger.Warn("Failed to cache progress snapshot",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	s.publish(ctx, bulk.NewOperationEvent(bulk.EventOperationProgressed, op))
}

// cancelledInStore reports whether the stored operation was cancelled by
// another actor (API, operator) while this run is in flight
func (s *OrderSyncService) cancelledInStore(ctx context.Context, op *bulk.BulkOperation) bool {
	stored, err := s.operations.FindByID(ctx, op.TenantID, op.ID)
	if err != nil {
		return false
	}
	return stored.Status == bulk.OperationStatusCancelled
}

// finalize moves the operation to its terminal state, records the outcome on
// the connection and cleans up the live progress entry
func (s *OrderSyncService) finalize(ctx context.Context, conn *integration.PlatformConnection, op *bulk.BulkOperation, fatalErr error) {
	if fatalErr != nil {
		s.logger.Error("Order sync aborted",
			zap.String("operation_id", op.ID.String()),
			zap.String("connection_id", conn.ID.String()),
			zap.Error(fatalErr),
		)
		_ = op.FailFatal(fatalErr.Error())
	} else {
		_ = op.Finish()
	}

	switch op.Status {
	case bulk.OperationStatusCompleted:
		conn.RecordSyncSuccess()
	case bulk.OperationStatusPartial:
		conn.RecordSyncSuccess()
		conn.LastSyncStatus = integration.SyncStatusPartial
	case bulk.OperationStatusFailed:
		msg := op.FatalError
		if msg == "" {
			msg = fmt.Sprintf("%d of %d orders failed", op.FailedItems, op.ProcessedItems)
		}
		conn.RecordSyncFailure(msg)
	}

	if err := s.connections.Save(ctx, conn); err != nil {
		s.logger.Error("Failed to record sync outcome on connection",
			zap.String("connection_id", conn.ID.String()), zap.Error(err))
	}
	if err := s.operations.Save(ctx, op); err != nil {
		s.logger.Error("Failed to persist finished bulk operation",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
	s.publish(ctx, bulk.NewOperationEvent(bulk.EventOperationFinished, op))

	if err := s.progress.Drop(ctx, op.ID); err != nil {
		s.logger.Warn("Failed to drop progress snapshot",
			zap.String("operation_id", op.ID.String()), zap.Error(err))
	}
}

func (s *OrderSyncService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish operation event",
			zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
