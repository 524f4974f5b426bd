package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	csvimport "github.com/sellerhub/backend/internal/infrastructure/import"
)

// StockImportService applies a stock CSV (sku, quantity) to the local
// catalog and pushes the new quantities to every enabled marketplace
// connection, tracked the same way as the price import.
type StockImportService struct {
	products    catalog.ProductRepository
	connections integration.ConnectionRepository
	gateways    integration.GatewayRegistry
	operations  bulk.OperationRepository
	progress    cache.ProgressCache
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewStockImportService creates a new StockImportService
func NewStockImportService(
	products catalog.ProductRepository,
	connections integration.ConnectionRepository,
	gateways integration.GatewayRegistry,
	operations bulk.OperationRepository,
	progress cache.ProgressCache,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *StockImportService {
	return &StockImportService{
		products:    products,
		connections: connections,
		gateways:    gateways,
		operations:  operations,
		progress:    progress,
		publisher:   publisher,
		logger:      logger,
	}
}

// Import parses and applies the uploaded stock file
func (s *StockImportService) Import(ctx context.Context, tenantID uuid.UUID, file io.Reader) (*bulk.BulkOperation, error) {
	rows, err := parseRows(file, "sku", "quantity")
	if err != nil {
		return nil, err
	}

	op, err := bulk.NewBulkOperation(tenantID, bulk.OperationStockUpdate, len(rows))
	if err != nil {
		return nil, err
	}
	if err := op.Start(); err != nil {
		return nil, err
	}
	if err := s.operations.Save(ctx, op); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.publisher, s.logger, bulk.NewOperationEvent(bulk.EventOperationStarted, op))

	var pushes []integration.StockUpdate
	for i, row := range rows {
		update, rowErr := s.applyRow(ctx, tenantID, row)
		if rowErr != nil {
			op.RecordItemResult(false, row.Get("sku"), rowErr.Error())
		} else {
			op.RecordItemResult(true, row.Get("sku"), "")
			if update != nil {
				pushes = append(pushes, *update)
			}
		}

		if (i+1)%checkpointEvery == 0 {
			checkpoint(ctx, s.operations, s.progress, s.publisher, s.logger, op)
		}
	}

	s.pushStock(ctx, tenantID, op, pushes)

	_ = op.Finish()
	finish(ctx, s.operations, s.progress, s.publisher, s.logger, op)

	s.logger.Info("Stock import finished",
		zap.String("operation_id", op.ID.String()),
		zap.String("status", string(op.Status)),
		zap.Int("rows", op.ProcessedItems),
		zap.Int("failed", op.FailedItems),
	)
	return op, nil
}

func (s *StockImportService) applyRow(ctx context.Context, tenantID uuid.UUID, row *csvimport.Row) (*integration.StockUpdate, error) {
	sku := row.Get("sku")
	if sku == "" {
		return nil, csvimport.RowError{Row: row.LineNumber, Column: "sku", Message: "SKU is required"}
	}

	qty, err := strconv.Atoi(row.Get("quantity"))
	if err != nil {
		return nil, csvimport.RowError{Row: row.LineNumber, Column: "quantity", Message: "not a valid quantity", Value: row.Get("quantity")}
	}

	product, err := s.products.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, csvimport.RowError{Row: row.LineNumber, Column: "sku", Message: "unknown SKU", Value: sku}
		}
		return nil, err
	}

	if err := product.SetStock(qty); err != nil {
		return nil, csvimport.RowError{Row: row.LineNumber, Message: err.Error()}
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	if product.Barcode == "" {
		return nil, nil
	}
	return &integration.StockUpdate{Barcode: product.Barcode, Quantity: qty}, nil
}

func (s *StockImportService) pushStock(ctx context.Context, tenantID uuid.UUID, op *bulk.BulkOperation, updates []integration.StockUpdate) {
	if len(updates) == 0 {
		return
	}
	conns, err := s.connections.FindAllForTenant(ctx, tenantID)
	if err != nil {
		op.RecordWarning("platforms", fmt.Sprintf("stock push skipped: %v", err))
		return
	}

	for i := range conns {
		conn := &conns[i]
		if !conn.IsEnabled {
			continue
		}
		gateway, err := s.gateways.Gateway(conn.Platform)
		if err != nil {
			op.RecordWarning(conn.Platform.String(), err.Error())
			continue
		}

		result, err := gateway.UpdateStock(ctx, conn, updates)
		if err != nil {
			op.RecordWarning(conn.Platform.String(), fmt.Sprintf("stock push failed: %v", err))
			continue
		}
		for _, failure := range result.FailedItems {
			op.RecordWarning(
				fmt.Sprintf("%s:%s", conn.Platform, failure.ItemID),
				failure.ErrorMessage,
			)
		}
	}
}
