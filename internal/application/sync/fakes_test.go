package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Order repository fake
// ---------------------------------------------------------------------------

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]integration.CanonicalOrder
	inserts int
	updates int
	findErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]integration.CanonicalOrder)}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*integration.CanonicalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.TenantID != tenantID {
		return nil, integration.ErrOrderNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) FindByExternalID(_ context.Context, connectionID uuid.UUID, externalOrderID string) (*integration.CanonicalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.ConnectionID == connectionID && order.ExternalOrderID == externalOrderID {
			found := order
			return &found, nil
		}
	}
	return nil, integration.ErrOrderNotFound
}

func (r *fakeOrderRepo) Insert(_ context.Context, order *integration.CanonicalOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *integration.CanonicalOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return integration.ErrOrderNotFound
	}
	r.updates++
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter integration.OrderFilter) ([]integration.CanonicalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var matched []integration.CanonicalOrder
	for _, order := range r.orders {
		if order.TenantID != tenantID {
			continue
		}
		if filter.ConnectionID != nil && order.ConnectionID != *filter.ConnectionID {
			continue
		}
		if filter.OrderedFrom != nil && order.OrderedAt.Before(*filter.OrderedFrom) {
			continue
		}
		if filter.OrderedUntil != nil && !order.OrderedAt.Before(*filter.OrderedUntil) {
			continue
		}
		matched = append(matched, order)
	}
	return matched, nil
}

func (r *fakeOrderRepo) Count(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) (int64, error) {
	orders, err := r.FindAll(ctx, tenantID, filter)
	return int64(len(orders)), err
}

func (r *fakeOrderRepo) FindByConsolidatedGroup(_ context.Context, tenantID, groupID uuid.UUID) ([]integration.CanonicalOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []integration.CanonicalOrder
	for _, order := range r.orders {
		if order.TenantID == tenantID && order.ConsolidatedGroupID != nil && *order.ConsolidatedGroupID == groupID {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

var _ integration.OrderRepository = (*fakeOrderRepo)(nil)

// ---------------------------------------------------------------------------
// Product reader fake
// ---------------------------------------------------------------------------

type fakeProductReader struct {
	products []*catalog.Product
}

func (r *fakeProductReader) FindByID(_ context.Context, _, id uuid.UUID) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductReader) FindBySKU(_ context.Context, _ uuid.UUID, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductReader) FindByBarcode(_ context.Context, _ uuid.UUID, barcode string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductReader) FindAll(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *fakeProductReader) Count(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}

var _ catalog.ProductReader = (*fakeProductReader)(nil)

// ---------------------------------------------------------------------------
// Connection repository fake
// ---------------------------------------------------------------------------

type fakeConnectionRepo struct {
	mu    sync.Mutex
	conns map[uuid.UUID]integration.PlatformConnection
}

func newFakeConnectionRepo(conns ...*integration.PlatformConnection) *fakeConnectionRepo {
	repo := &fakeConnectionRepo{conns: make(map[uuid.UUID]integration.PlatformConnection)}
	for _, conn := range conns {
		repo.conns[conn.ID] = *conn
	}
	return repo
}

func (r *fakeConnectionRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	if !ok || conn.TenantID != tenantID {
		return nil, integration.ErrConnectionNotFound
	}
	found := conn
	return &found, nil
}

func (r *fakeConnectionRepo) FindByTenantAndPlatform(_ context.Context, tenantID uuid.UUID, platform integration.Platform) (*integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conn := range r.conns {
		if conn.TenantID == tenantID && conn.Platform == platform {
			found := conn
			return &found, nil
		}
	}
	return nil, integration.ErrConnectionNotFound
}

func (r *fakeConnectionRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var conns []integration.PlatformConnection
	for _, conn := range r.conns {
		if conn.TenantID == tenantID {
			conns = append(conns, conn)
		}
	}
	return conns, nil
}

func (r *fakeConnectionRepo) FindAllEnabled(_ context.Context) ([]integration.PlatformConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var conns []integration.PlatformConnection
	for _, conn := range r.conns {
		if conn.IsEnabled {
			conns = append(conns, conn)
		}
	}
	return conns, nil
}

func (r *fakeConnectionRepo) Save(_ context.Context, conn *integration.PlatformConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = *conn
	return nil
}

func (r *fakeConnectionRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	return nil
}

var _ integration.ConnectionRepository = (*fakeConnectionRepo)(nil)

// ---------------------------------------------------------------------------
// Bulk operation repository fake
// ---------------------------------------------------------------------------

type fakeOperationRepo struct {
	mu     sync.Mutex
	ops    map[uuid.UUID]bulk.BulkOperation
	saves  int
	onSave func(op *bulk.BulkOperation)
}

func newFakeOperationRepo() *fakeOperationRepo {
	return &fakeOperationRepo{ops: make(map[uuid.UUID]bulk.BulkOperation)}
}

func (r *fakeOperationRepo) Save(_ context.Context, op *bulk.BulkOperation) error {
	r.mu.Lock()
	r.saves++
	r.ops[op.ID] = *op
	hook := r.onSave
	r.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return nil
}

func (r *fakeOperationRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[id]
	if !ok || op.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	found := op
	return &found, nil
}

func (r *fakeOperationRepo) FindAll(_ context.Context, tenantID uuid.UUID, _ bulk.OperationFilter) ([]bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ops []bulk.BulkOperation
	for _, op := range r.ops {
		if op.TenantID == tenantID {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (r *fakeOperationRepo) Count(ctx context.Context, tenantID uuid.UUID, filter bulk.OperationFilter) (int64, error) {
	ops, err := r.FindAll(ctx, tenantID, filter)
	return int64(len(ops)), err
}

func (r *fakeOperationRepo) FindUnfinished(_ context.Context, tenantID uuid.UUID) ([]bulk.BulkOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ops []bulk.BulkOperation
	for _, op := range r.ops {
		if op.TenantID == tenantID && !op.Status.IsTerminal() {
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (r *fakeOperationRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ops, id)
	return nil
}

// markCancelled flips the stored record to cancelled, as the cancel API would
func (r *fakeOperationRepo) markCancelled(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op := r.ops[id]
	op.Status = bulk.OperationStatusCancelled
	r.ops[id] = op
}

var _ bulk.OperationRepository = (*fakeOperationRepo)(nil)

// ---------------------------------------------------------------------------
// Gateway fake
// ---------------------------------------------------------------------------

type fakeGateway struct {
	platform integration.Platform
	pages    [][][]byte
	pullErr  error

	// pageTotals mimics token-paged platforms that never report a grand
	// total: TotalCount covers only the returned page.
	pageTotals bool

	mu          sync.Mutex
	pulledPages []int
}

func (g *fakeGateway) Platform() integration.Platform { return g.platform }

func (g *fakeGateway) PullOrders(_ context.Context, req *integration.OrderPullRequest) (*integration.OrderPullResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.pulledPages = append(g.pulledPages, req.PageNo)
	g.mu.Unlock()
	if g.pullErr != nil {
		return nil, g.pullErr
	}

	total := 0
	for _, page := range g.pages {
		total += len(page)
	}
	if req.PageNo >= len(g.pages) {
		if g.pageTotals {
			return &integration.OrderPullResponse{}, nil
		}
		return &integration.OrderPullResponse{TotalCount: int64(total)}, nil
	}
	if g.pageTotals {
		total = len(g.pages[req.PageNo])
	}
	return &integration.OrderPullResponse{
		RawOrders:  g.pages[req.PageNo],
		TotalCount: int64(total),
		HasMore:    req.PageNo+1 < len(g.pages),
		NextPageNo: req.PageNo + 1,
	}, nil
}

func (g *fakeGateway) GetOrder(_ context.Context, _ *integration.PlatformConnection, _ string) ([]byte, error) {
	return nil, integration.ErrOrderNotFound
}

func (g *fakeGateway) UpdateShipment(_ context.Context, _ *integration.PlatformConnection, _ integration.ShipmentUpdate) error {
	return nil
}

func (g *fakeGateway) UpdatePrices(_ context.Context, _ *integration.PlatformConnection, _ []integration.PriceUpdate) (*integration.SyncResult, error) {
	return &integration.SyncResult{}, nil
}

func (g *fakeGateway) UpdateStock(_ context.Context, _ *integration.PlatformConnection, _ []integration.StockUpdate) (*integration.SyncResult, error) {
	return &integration.SyncResult{}, nil
}

var _ integration.MarketplaceGateway = (*fakeGateway)(nil)

type fakeRegistry struct {
	gateway integration.MarketplaceGateway
}

func (r *fakeRegistry) Gateway(platform integration.Platform) (integration.MarketplaceGateway, error) {
	if r.gateway == nil || r.gateway.Platform() != platform {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformNotConfigured, platform)
	}
	return r.gateway, nil
}

func (r *fakeRegistry) Gateways() []integration.MarketplaceGateway {
	if r.gateway == nil {
		return nil
	}
	return []integration.MarketplaceGateway{r.gateway}
}

var _ integration.GatewayRegistry = (*fakeRegistry)(nil)

// ---------------------------------------------------------------------------
// Mapper fake
// ---------------------------------------------------------------------------

// fakeMapper maps the minimal test payload {"id","lastModified","fail"}
type fakeMapper struct{}

func (m *fakeMapper) MapOrder(platform integration.Platform, raw []byte) (*integration.CanonicalOrder, error) {
	var doc struct {
		ID           string `json:"id"`
		LastModified int64  `json:"lastModified"`
		Fail         bool   `json:"fail"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrMapperMalformedJSON, err)
	}
	if doc.Fail {
		return nil, integration.ErrMapperMalformedJSON
	}
	if doc.ID == "" {
		return nil, integration.ErrMapperMissingOrderID
	}
	return &integration.CanonicalOrder{
		Platform:        platform,
		ExternalOrderID: doc.ID,
		OrderNumber:     doc.ID,
		Status:          integration.OrderStatusCreated,
		CurrencyCode:    "TRY",
		OrderedAt:       time.UnixMilli(doc.LastModified).UTC(),
		LastModifiedAt:  time.UnixMilli(doc.LastModified).UTC(),
		RawData:         string(raw),
	}, nil
}

func (m *fakeMapper) Platforms() []integration.Platform {
	return []integration.Platform{integration.PlatformTrendyol}
}

var _ integration.OrderMapper = (*fakeMapper)(nil)

func rawTestOrder(id string, lastModified int64) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"lastModified":%d}`, id, lastModified))
}

// ---------------------------------------------------------------------------
// Event publisher fake
// ---------------------------------------------------------------------------

type fakePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *fakePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType())
	}
	return types
}

var _ shared.EventPublisher = (*fakePublisher)(nil)
