package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request/Response DTOs
// ---------------------------------------------------------------------------

// OrderPullRequest represents a request to pull orders from a platform
type OrderPullRequest struct {
	// Connection carries the credentials to use for the pull
	Connection *PlatformConnection
	// StartTime is the start of the time range for orders
	StartTime time.Time
	// EndTime is the end of the time range for orders
	EndTime time.Time
	// Status filters by canonical status (optional)
	Status *OrderStatus
	// PageNo is the page number (0-indexed, as the Turkish marketplaces page)
	PageNo int
	// PageSize is the number of orders per page
	PageSize int
}

// Validate validates the order pull request and normalizes paging
func (r *OrderPullRequest) Validate() error {
	if r.Connection == nil {
		return ErrPlatformNotConfigured
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return errors.New("integration: start time and end time are required")
	}
	if r.StartTime.After(r.EndTime) {
		return errors.New("integration: start time must be before end time")
	}
	if r.PageNo < 0 {
		r.PageNo = 0
	}
	if r.PageSize < 1 || r.PageSize > 200 {
		r.PageSize = 50
	}
	return nil
}

// OrderPullResponse represents one page of pulled orders. Orders carry the
// raw per-order payload; mapping to the canonical model happens in the
// field mapper, not in the gateway.
type OrderPullResponse struct {
	// RawOrders contains the raw JSON payload of each order on this page
	RawOrders [][]byte
	// TotalCount is the total number of orders matching the criteria
	TotalCount int64
	// HasMore indicates if there are more pages
	HasMore bool
	// NextPageNo is the next page number (meaningful when HasMore is true)
	NextPageNo int
}

// PriceUpdate represents a price push for one platform listing
type PriceUpdate struct {
	// Barcode identifies the listing on the platform
	Barcode string
	// ListPrice is the strike-through price
	ListPrice decimal.Decimal
	// SalePrice is the selling price
	SalePrice decimal.Decimal
}

// StockUpdate represents a stock-quantity push for one platform listing
type StockUpdate struct {
	// Barcode identifies the listing on the platform
	Barcode string
	// Quantity is the available stock quantity
	Quantity int
}

// ShipmentUpdate notifies the platform that a package was shipped
type ShipmentUpdate struct {
	// ExternalOrderID is the order/package ID on the platform
	ExternalOrderID string
	// TrackingNumber is the carrier tracking number
	TrackingNumber string
	// CargoProvider is the carrier name
	CargoProvider string
}

// SyncResult represents the outcome of a batched push operation
type SyncResult struct {
	// Status is the overall sync status
	Status SyncStatus
	// TotalCount is the total number of items pushed
	TotalCount int
	// SuccessCount is the number of successfully pushed items
	SuccessCount int
	// FailedCount is the number of failed items
	FailedCount int
	// FailedItems contains details about failed items
	FailedItems []SyncFailure
	// SyncedAt is when the push completed
	SyncedAt time.Time
}

// Finalize sets the overall status from the counters
func (r *SyncResult) Finalize() {
	switch {
	case r.FailedCount == 0:
		r.Status = SyncStatusSuccess
	case r.SuccessCount > 0:
		r.Status = SyncStatusPartial
	default:
		r.Status = SyncStatusFailed
	}
}

// SyncFailure represents a failed push item
type SyncFailure struct {
	// ItemID is the identifier of the failed item
	ItemID string
	// ErrorCode is the platform error code, when reported
	ErrorCode string
	// ErrorMessage is the error description
	ErrorMessage string
}

// ---------------------------------------------------------------------------
// MarketplaceGateway Port Interface
// ---------------------------------------------------------------------------

// MarketplaceGateway is the port interface for external marketplaces.
// It is defined in the domain layer; concrete implementations (Trendyol,
// N11, Hepsiburada, Amazon) live in the infrastructure layer. Gateways
// return raw payloads; normalization is the OrderMapper's job, which keeps
// the transport concern separate from the mapping concern.
type MarketplaceGateway interface {
	// Platform returns the platform this gateway handles
	Platform() Platform

	// PullOrders pulls one page of orders within the given time range
	PullOrders(ctx context.Context, req *OrderPullRequest) (*OrderPullResponse, error)

	// GetOrder retrieves a single raw order payload
	GetOrder(ctx context.Context, conn *PlatformConnection, externalOrderID string) ([]byte, error)

	// UpdateShipment pushes tracking info for a shipped package
	UpdateShipment(ctx context.Context, conn *PlatformConnection, update ShipmentUpdate) error

	// UpdatePrices pushes listing prices to the platform
	UpdatePrices(ctx context.Context, conn *PlatformConnection, updates []PriceUpdate) (*SyncResult, error)

	// UpdateStock pushes stock quantities to the platform
	UpdateStock(ctx context.Context, conn *PlatformConnection, updates []StockUpdate) (*SyncResult, error)
}

// GatewayRegistry provides access to configured marketplace gateways
type GatewayRegistry interface {
	// Gateway returns the gateway for the given platform
	Gateway(platform Platform) (MarketplaceGateway, error)

	// Gateways returns all registered gateways
	Gateways() []MarketplaceGateway
}
