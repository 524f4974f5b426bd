package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// Customer holds the buyer identity as reported by the marketplace
type Customer struct {
	// Email is the buyer's (usually platform-proxied) email address
	Email string
	// FullName is the buyer's full name
	FullName string
	// TCIdentityNumber is the Turkish identity number, when provided
	TCIdentityNumber string
}

// Address is the whitelisted subset of marketplace address payloads that
// the canonical model retains. Unknown keys in the raw payload are dropped.
type Address struct {
	FullName    string
	AddressLine string
	District    string
	City        string
	PostalCode  string
	CountryCode string
	Phone       string
}

// IsZero returns true when no address field is populated
func (a Address) IsZero() bool {
	return a == Address{}
}

// OrderLine represents a single line item of a canonical order
type OrderLine struct {
	// ProductID links the line to a local catalog product; nil until a
	// barcode/SKU match succeeds (manual reconciliation resolves the rest)
	ProductID *uuid.UUID
	// ExternalLineID is the line item ID on the platform
	ExternalLineID string
	// ProductName is the product title as listed on the platform
	ProductName string
	// Barcode is the product barcode (GTIN) reported by the platform
	Barcode string
	// MerchantSKU is the seller's stock code on the platform
	MerchantSKU string
	// Quantity is the ordered quantity
	Quantity int
	// UnitPrice is the per-unit selling price
	UnitPrice decimal.Decimal
	// Discount is the total discount applied to this line
	Discount decimal.Decimal
	// CommissionRate is the platform commission percentage for this line
	CommissionRate decimal.Decimal
	// VATRate is the VAT percentage for this line
	VATRate decimal.Decimal
}

// ---------------------------------------------------------------------------
// CanonicalOrder
// ---------------------------------------------------------------------------

// CanonicalOrder is the internal normalized representation of a marketplace
// order, independent of the source platform. The pair
// (ExternalOrderID, ConnectionID) is unique.
type CanonicalOrder struct {
	// ID is the local identifier, assigned on first persistence
	ID uuid.UUID
	// TenantID is the tenant owning the connection this order came through
	TenantID uuid.UUID
	// ConnectionID identifies the platform connection the order was pulled via
	ConnectionID uuid.UUID
	// Platform identifies the source marketplace
	Platform Platform
	// ExternalOrderID is the order/package ID on the platform
	ExternalOrderID string
	// OrderNumber is the buyer-facing order number on the platform
	OrderNumber string
	// Status is the canonical order status
	Status OrderStatus
	// PlatformStatus is the raw status string reported by the platform
	PlatformStatus string
	// Customer holds buyer identity fields
	Customer Customer
	// BillingAddress is the invoice address
	BillingAddress Address
	// ShippingAddress is the delivery address
	ShippingAddress Address
	// Lines contains the order line items
	Lines []OrderLine
	// CargoTrackingNumber is the carrier tracking number, when assigned
	CargoTrackingNumber string
	// CargoProviderName is the carrier name
	CargoProviderName string
	// CurrencyCode is the order currency (default TRY)
	CurrencyCode string
	// TotalAmount is the gross order amount the buyer paid
	TotalAmount decimal.Decimal
	// TotalDiscount is the total discount across all lines
	TotalDiscount decimal.Decimal
	// OrderedAt is when the order was placed on the platform
	OrderedAt time.Time
	// LastModifiedAt is the platform's last-modified timestamp; the
	// reconciler uses it to reject stale re-deliveries
	LastModifiedAt time.Time
	// LastSyncedAt is when this record was last written by a sync run
	LastSyncedAt time.Time
	// ConsolidatedGroupID groups orders shipped together; nil when the
	// tenant has not opted into consolidation or no group matched
	ConsolidatedGroupID *uuid.UUID
	// RawData retains the original platform payload for audit
	RawData string
	// CreatedAt is when the local record was created
	CreatedAt time.Time
	// UpdatedAt is when the local record was last updated
	UpdatedAt time.Time
}

// Validate checks the fields the persistence layer relies on
func (o *CanonicalOrder) Validate() error {
	if o.TenantID == uuid.Nil {
		return ErrOrderInvalidTenantID
	}
	if o.ConnectionID == uuid.Nil {
		return ErrOrderInvalidConnection
	}
	if o.ExternalOrderID == "" {
		return ErrOrderMissingExternalID
	}
	if !o.Platform.IsValid() {
		return ErrMapperUnknownPlatform
	}
	return nil
}

// TotalQuantity returns the summed quantity across all lines
func (o *CanonicalOrder) TotalQuantity() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// IsNewerThan reports whether this order carries fresher platform data than
// other. Equal timestamps count as not newer, which makes re-delivery of the
// same payload a skip.
func (o *CanonicalOrder) IsNewerThan(other *CanonicalOrder) bool {
	return o.LastModifiedAt.After(other.LastModifiedAt)
}

// ---------------------------------------------------------------------------
// OrderMapper Port
// ---------------------------------------------------------------------------

// OrderMapper converts a raw marketplace payload into a canonical order.
// Implementations must be pure: no I/O, no mutation of the input, and the
// same payload always yields a structurally identical result.
type OrderMapper interface {
	// MapOrder maps a single raw order payload from the given platform
	MapOrder(platform Platform, raw []byte) (*CanonicalOrder, error)

	// Platforms returns the platforms this mapper has a config for
	Platforms() []Platform
}

// ---------------------------------------------------------------------------
// OrderRepository Interface
// ---------------------------------------------------------------------------

// OrderFilter defines filter criteria for canonical orders
type OrderFilter struct {
	// Platform filters by source marketplace (optional)
	Platform *Platform
	// ConnectionID filters by platform connection (optional)
	ConnectionID *uuid.UUID
	// Status filters by canonical status (optional)
	Status *OrderStatus
	// OrderedFrom filters orders placed at or after this time
	OrderedFrom *time.Time
	// OrderedUntil filters orders placed before this time
	OrderedUntil *time.Time
	// Search matches order number or customer name
	Search string
	// Page number (1-indexed)
	Page int
	// Page size
	PageSize int
}

// OrderRepository defines the persistence interface for canonical orders
type OrderRepository interface {
	// FindByID finds an order by its local ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CanonicalOrder, error)

	// FindByExternalID finds an order by its platform ID and connection.
	// Returns ErrOrderNotFound when no row matches.
	FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalOrderID string) (*CanonicalOrder, error)

	// Insert creates a new order row
	Insert(ctx context.Context, order *CanonicalOrder) error

	// Update overwrites an existing order row
	Update(ctx context.Context, order *CanonicalOrder) error

	// FindAll lists orders for a tenant with filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) ([]CanonicalOrder, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter OrderFilter) (int64, error)

	// FindByConsolidatedGroup lists orders sharing a consolidation group
	FindByConsolidatedGroup(ctx context.Context, tenantID, groupID uuid.UUID) ([]CanonicalOrder, error)
}
