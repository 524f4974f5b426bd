package importapp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	mu       sync.Mutex
	products map[string]*catalog.Product // by SKU
	saves    int
}

func newStubProductRepo(products ...*catalog.Product) *stubProductRepo {
	repo := &stubProductRepo{products: make(map[string]*catalog.Product)}
	for _, p := range products {
		repo.products[p.SKU] = p
	}
	return repo
}

func (r *stubProductRepo) FindByID(_ context.Context, _, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindBySKU(_ context.Context, _ uuid.UUID, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[sku]; ok {
		return p, nil
	}
	// wrapped like the gorm repository would surface it
	return nil, fmt.Errorf("product %s: %w", sku, shared.ErrNotFound)
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, _ uuid.UUID, barcode string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *stubProductRepo) FindAll(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) Count(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

func (r *stubProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.products[product.SKU] = product
	return nil
}

func (r *stubProductRepo) SaveBatch(ctx context.Context, products []*catalog.Product) error {
	for _, p := range products {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

var _ catalog.ProductRepository = (*stubProductRepo)(nil)

type stubConnectionRepo struct {
	conns []integration.PlatformConnection
}

func (r *stubConnectionRepo) FindByID(_ context.Context, _, _ uuid.UUID) (*integration.PlatformConnection, error) {
	return nil, integration.ErrConnectionNotFound
}

func (r *stubConnectionRepo) FindByTenantAndPlatform(_ context.Context, _ uuid.UUID, _ integration.Platform) (*integration.PlatformConnection, error) {
	return nil, integration.ErrConnectionNotFound
}

func (r *stubConnectionRepo) FindAllForTenant(_ context.Context, _ uuid.UUID) ([]integration.PlatformConnection, error) {
	return r.conns, nil
}

func (r *stubConnectionRepo) FindAllEnabled(_ context.Context) ([]integration.PlatformConnection, error) {
	return r.conns, nil
}

func (r *stubConnectionRepo) Save(_ context.Context, _ *integration.PlatformConnection) error {
	return nil
}

func (r *stubConnectionRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

var _ integration.ConnectionRepository = (*stubConnectionRepo)(nil)

type stubGateway struct {
	platform integration.Platform

	mu           sync.Mutex
	priceBatches [][]integration.PriceUpdate
	stockBatches [][]integration.StockUpdate
	result       *integration.SyncResult
}

func (g *stubGateway) Platform() integration.Platform { return g.platform }

func (g *stubGateway) PullOrders(_ context.Context, _ *integration.OrderPullRequest) (*integration.OrderPullResponse, error) {
	return &integration.OrderPullResponse{}, nil
}

func (g *stubGateway) GetOrder(_ context.Context, _ *integration.PlatformConnection, _ string) ([]byte, error) {
	return nil, integration.ErrOrderNotFound
}

func (g *stubGateway) UpdateShipment(_ context.Context, _ *integration.PlatformConnection, _ integration.ShipmentUpdate) error {
	return nil
}

func (g *stubGateway) UpdatePrices(_ context.Context, _ *integration.PlatformConnection, updates []integration.PriceUpdate) (*integration.SyncResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.priceBatches = append(g.priceBatches, updates)
	return g.syncResult(len(updates)), nil
}

func (g *stubGateway) UpdateStock(_ context.Context, _ *integration.PlatformConnection, updates []integration.StockUpdate) (*integration.SyncResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stockBatches = append(g.stockBatches, updates)
	return g.syncResult(len(updates)), nil
}

func (g *stubGateway) syncResult(count int) *integration.SyncResult {
	if g.result != nil {
		return g.result
	}
	result := &integration.SyncResult{TotalCount: count, SuccessCount: count}
	result.Finalize()
	return result
}

var _ integration.MarketplaceGateway = (*stubGateway)(nil)

type stubRegistry struct {
	gateway *stubGateway
}

func (r *stubRegistry) Gateway(platform integration.Platform) (integration.MarketplaceGateway, error) {
	if r.gateway == nil || r.gateway.platform != platform {
		return nil, integration.ErrPlatformNotConfigured
	}
	return r.gateway, nil
}

func (r *stubRegistry) Gateways() []integration.MarketplaceGateway {
	if r.gateway == nil {
		return nil
	}
	return []integration.MarketplaceGateway{r.gateway}
}

var _ integration.GatewayRegistry = (*stubRegistry)(nil)

type stubOperationRepo struct {
	mu  sync.Mutex
	ops map[uuid.UUID]bulk.BulkOperation
}

func newStubOperationRepo() *stubOperationRepo {
	return &stubOperationRepo{ops: make(map[uuid.UUID]bulk.BulkOperation)}
}

func (r *stubOperationRepo) Save(_ context.Context, op *bulk.BulkOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op.ID] = *op
	return nil
}

func (r *stubOperationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok || op.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	found := op
	return &found, nil
}

func (r *stubOperationRepo) FindAll(_ context.Context, _ uuid.UUID, _ bulk.OperationFilter) ([]bulk.BulkOperation, error) {
	return nil, nil
}

func (r *stubOperationRepo) Count(_ context.Context, _ uuid.UUID, _ bulk.OperationFilter) (int64, error) {
	return 0, nil
}

func (r *stubOperationRepo) FindUnfinished(_ context.Context, _ uuid.UUID) ([]bulk.BulkOperation, error) {
	return nil, nil
}

func (r *stubOperationRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

var _ bulk.OperationRepository = (*stubOperationRepo)(nil)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type importFixture struct {
	tenantID uuid.UUID
	products *stubProductRepo
	gateway  *stubGateway
	ops      *stubOperationRepo
	price    *PriceImportService
	stock    *StockImportService
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	tenantID := uuid.New()

	shirt, err := catalog.NewProduct(tenantID, "TSH-001", "Pamuklu Tişört")
	require.NoError(t, err)
	require.NoError(t, shirt.SetBarcode("8680000000011"))

	sweater, err := catalog.NewProduct(tenantID, "KZK-002", "Yün Kazak")
	require.NoError(t, err)
	// no barcode: updates locally but is never pushed

	conn, err := integration.NewPlatformConnection(tenantID, integration.PlatformTrendyol, "Trendyol mağaza", "key", "secret")
	require.NoError(t, err)

	products := newStubProductRepo(shirt, sweater)
	gateway := &stubGateway{platform: integration.PlatformTrendyol}
	ops := newStubOperationRepo()
	connections := &stubConnectionRepo{conns: []integration.PlatformConnection{*conn}}
	registry := &stubRegistry{gateway: gateway}
	progress := cache.NewInMemoryProgressCache()
	logger := zap.NewNop()

	return &importFixture{
		tenantID: tenantID,
		products: products,
		gateway:  gateway,
		ops:      ops,
		price:    NewPriceImportService(products, connections, registry, ops, progress, nil, logger),
		stock:    NewStockImportService(products, connections, registry, ops, progress, nil, logger),
	}
}

// ---------------------------------------------------------------------------
// Price import
// ---------------------------------------------------------------------------

func TestPriceImportService_Import(t *testing.T) {
	t.Run("applies valid rows and pushes barcoded products", func(t *testing.T) {
		fx := newImportFixture(t)
		file := strings.NewReader("sku,list_price,sale_price\nTSH-001,349.90,291.58\nKZK-002,499.00,449.00\n")

		op, err := fx.price.Import(context.Background(), fx.tenantID, file)
		require.NoError(t, err)

		assert.Equal(t, bulk.OperationStatusCompleted, op.Status)
		assert.Equal(t, 2, op.SuccessfulItems)
		assert.Equal(t, 100, op.Progress)

		shirt, err := fx.products.FindBySKU(context.Background(), fx.tenantID, "TSH-001")
		require.NoError(t, err)
		assert.True(t, shirt.SalePrice.Equal(decimal.RequireFromString("291.58")))

		require.Len(t, fx.gateway.priceBatches, 1)
		require.Len(t, fx.gateway.priceBatches[0], 1, "only the barcoded product is pushed")
		assert.Equal(t, "8680000000011", fx.gateway.priceBatches[0][0].Barcode)
	})

	t.Run("bad rows fail individually", func(t *testing.T) {
		fx := newImportFixture(t)
		file := strings.NewReader(
			"sku,list_price,sale_price\n" +
				"TSH-001,349.90,291.58\n" +
				"NOPE-404,10.00,9.00\n" +
				"KZK-002,abc,9.00\n" +
				"TSH-001,100.00,150.00\n", // sale above list
		)

		op, err := fx.price.Import(context.Background(), fx.tenantID, file)
		require.NoError(t, err)

		assert.Equal(t, bulk.OperationStatusPartial, op.Status)
		assert.Equal(t, 1, op.SuccessfulItems)
		assert.Equal(t, 3, op.FailedItems)
		assert.Equal(t, op.ProcessedItems, op.SuccessfulItems+op.FailedItems)
		require.Len(t, op.Errors, 3)
		assert.Contains(t, op.Errors[0].Message, "unknown SKU")
		assert.Contains(t, op.Errors[1].Message, "not a valid amount")
	})

	t.Run("platform rejections become warnings", func(t *testing.T) {
		fx := newImportFixture(t)
		fx.gateway.result = &integration.SyncResult{
			Status:      integration.SyncStatusPartial,
			TotalCount:  1,
			FailedCount: 1,
			FailedItems: []integration.SyncFailure{
				{ItemID: "8680000000011", ErrorCode: "PRICE_TOO_LOW", ErrorMessage: "price below platform minimum"},
			},
		}
		file := strings.NewReader("sku,list_price,sale_price\nTSH-001,349.90,291.58\n")

		op, err := fx.price.Import(context.Background(), fx.tenantID, file)
		require.NoError(t, err)

		assert.Equal(t, bulk.OperationStatusCompleted, op.Status, "push rejections do not fail rows")
		require.Len(t, op.Warnings, 1)
		assert.Contains(t, op.Warnings[0].ItemID, "8680000000011")
	})

	t.Run("rejects file without required columns", func(t *testing.T) {
		fx := newImportFixture(t)
		file := strings.NewReader("sku,price\nTSH-001,349.90\n")

		_, err := fx.price.Import(context.Background(), fx.tenantID, file)
		assert.Error(t, err)
	})

	t.Run("rejects file without data rows", func(t *testing.T) {
		fx := newImportFixture(t)
		file := strings.NewReader("sku,list_price,sale_price\n")

		_, err := fx.price.Import(context.Background(), fx.tenantID, file)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

// ---------------------------------------------------------------------------
// Stock import
// ---------------------------------------------------------------------------

func TestStockImportService_Import(t *testing.T) {
	t.Run("applies quantities and pushes barcoded products", func(t *testing.T) {
		fx := newImportFixture(t)
		file := strings.NewReader("sku,quantity\nTSH-001,25\nKZK-002,0\n")

		op, err := fx.stock.Import(context.Background(), fx.tenantID, file)
		require.NoError(t, err)

		assert.Equal(t, bulk.OperationStatusCompleted, op.Status)
		assert.Equal(t, 2, op.SuccessfulItems)

		shirt, err := fx.products.FindBySKU(context.Background(), fx.tenantID, "TSH-001")
		require.NoError(t, err)
		assert.Equal(t, 25, shirt.StockQty)

		require.Len(t, fx.gateway.stockBatches, 1)
		require.Len(t, fx.gateway.stockBatches[0], 1)
		assert.Equal(t, 25, fx.gateway.stockBatches[0][0].Quantity)
	})

	t.Run("negative and malformed quantities fail the row", func(t *testing.T) {
		fx := newImportFixture(t)
		file := strings.NewReader("sku,quantity\nTSH-001,-3\nKZK-002,bozuk\n")

		op, err := fx.stock.Import(context.Background(), fx.tenantID, file)
		require.NoError(t, err)

		assert.Equal(t, bulk.OperationStatusFailed, op.Status)
		assert.Equal(t, 2, op.FailedItems)
	})
}
