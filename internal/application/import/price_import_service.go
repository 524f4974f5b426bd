package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	csvimport "github.com/sellerhub/backend/internal/infrastructure/import"
)

// checkpointEvery is how many rows are processed between progress saves
const checkpointEvery = 50

// PriceImportService applies a price CSV (sku, list_price, sale_price) to
// the local catalog and pushes the new prices to every enabled marketplace
// connection. The run is tracked as a bulk operation: row problems fail the
// row, platform push problems are warnings. The local catalog is the source
// of truth either way.
type PriceImportService struct {
	products    catalog.ProductRepository
	connections integration.ConnectionRepository
	gateways    integration.GatewayRegistry
	operations  bulk.OperationRepository
	progress    cache.ProgressCache
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewPriceImportService creates a new PriceImportService
func NewPriceImportService(
	products catalog.ProductRepository,
	connections integration.ConnectionRepository,
	gateways integration.GatewayRegistry,
	operations bulk.OperationRepository,
	progress cache.ProgressCache,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PriceImportService {
	return &PriceImportService{
		products:    products,
		connections: connections,
		gateways:    gateways,
		operations:  operations,
		progress:    progress,
		publisher:   publisher,
		logger:      logger,
	}
}

// Import parses and applies the uploaded price file
func (s *PriceImportService) Import(ctx context.Context, tenantID uuid.UUID, file io.Reader) (*bulk.BulkOperation, error) {
	rows, err := parseRows(file, "sku", "list_price", "sale_price")
	if err != nil {
		return nil, err
	}

	op, err := bulk.NewBulkOperation(tenantID, bulk.OperationPriceUpdate, len(rows))
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

	var pushes []integration.PriceUpdate
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

	s.pushPrices(ctx, tenantID, op, pushes)

	_ = op.Finish()
	finish(ctx, s.operations, s.progress, s.publisher, s.logger, op)

	s.logger.Info("Price import finished",
		zap.String("operation_id", op.ID.String()),
		zap.String("status", string(op.Status)),
		zap.Int("rows", op.ProcessedItems),
		zap.Int("failed", op.FailedItems),
	)
	return op, nil
}

// applyRow updates one product's prices. A returned PriceUpdate carries the
// barcode for the platform push; products without a barcode update locally
// only.
func (s *PriceImportService) applyRow(ctx context.Context, tenantID uuid.UUID, row *csvimport.Row) (*integration.PriceUpdate, error) {
	sku := row.Get("sku")
	if sku == "" {
		return nil, csvimport.RowError{Row: row.LineNumber, Column: "sku", Message: "SKU is required"}
	}

	listPrice, err := decimal.NewFromString(row.Get("list_price"))
	if err != nil {
		return nil, csvimport.RowError{Row: row.LineNumber, Column: "list_price", Message: "not a valid amount", Value: row.Get("list_price")}
	}
	salePrice, err := decimal.NewFromString(row.Get("sale_price"))
	if err != nil {
		return nil, csvimport.RowError{Row: row.LineNumber, Column: "sale_price", Message: "not a valid amount", Value: row.Get("sale_price")}
	}

	product, err := s.products.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, csvimport.RowError{Row: row.LineNumber, Column: "sku", Message: "unknown SKU", Value: sku}
		}
		return nil, err
	}

	if err := product.SetPrices(listPrice, salePrice); err != nil {
		return nil, csvimport.RowError{Row: row.LineNumber, Message: err.Error()}
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}

	if product.Barcode == "" {
		return nil, nil
	}
	return &integration.PriceUpdate{
		Barcode:   product.Barcode,
		ListPrice: listPrice,
		SalePrice: salePrice,
	}, nil
}

// pushPrices forwards successful updates to every enabled connection.
// Platform rejections do not undo the local update; they surface as
// warnings on the operation.
func (s *PriceImportService) pushPrices(ctx context.Context, tenantID uuid.UUID, op *bulk.BulkOperation, updates []integration.PriceUpdate) {
	if len(updates) == 0 {
		return
	}
	conns, err := s.connections.FindAllForTenant(ctx, tenantID)
	if err != nil {
		op.RecordWarning("platforms", fmt.Sprintf("price push skipped: %v", err))
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

		result, err := gateway.UpdatePrices(ctx, conn, updates)
		if err != nil {
			op.RecordWarning(conn.Platform.String(), fmt.Sprintf("price push failed: %v", err))
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
