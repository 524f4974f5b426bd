package integration

import (
	"context"

	"github.com/google/uuid"

	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// OrderQueryService is the read side over synced orders.
type OrderQueryService struct {
	orders integration.OrderRepository
}

// NewOrderQueryService creates a new OrderQueryService
func NewOrderQueryService(orders integration.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// Get returns one order of the tenant
func (s *OrderQueryService) Get(ctx context.Context, tenantID, id uuid.UUID) (*integration.CanonicalOrder, error) {
	return s.orders.FindByID(ctx, tenantID, id)
}

// List returns a page of orders matching the filter
func (s *OrderQueryService) List(ctx context.Context, tenantID uuid.UUID, filter integration.OrderFilter) (*shared.Paginated[integration.CanonicalOrder], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	orders, err := s.orders.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ConsolidatedGroup returns all orders sharing a shipment group, the order
// itself included.
func (s *OrderQueryService) ConsolidatedGroup(ctx context.Context, tenantID, orderID uuid.UUID) ([]integration.CanonicalOrder, error) {
	order, err := s.orders.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.ConsolidatedGroupID == nil {
		return []integration.CanonicalOrder{*order}, nil
	}
	return s.orders.FindByConsolidatedGroup(ctx, tenantID, *order.ConsolidatedGroupID)
}
