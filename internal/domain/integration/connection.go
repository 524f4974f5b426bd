package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// PlatformConnection Entity
// ---------------------------------------------------------------------------

// PlatformConnection holds a tenant's credentials and sync configuration for
// one marketplace. A tenant has at most one connection per platform.
type PlatformConnection struct {
	// ID is the unique identifier of this connection
	ID uuid.UUID
	// TenantID is the tenant owning this connection
	TenantID uuid.UUID
	// Platform identifies the marketplace
	Platform Platform
	// Name is the display name chosen by the tenant
	Name string
	// SellerID is the merchant/seller identifier on the platform
	SellerID string
	// APIKey is the platform API key
	APIKey string
	// APISecret is the platform API secret
	APISecret string
	// IsEnabled indicates if sync is enabled for this connection
	IsEnabled bool
	// SyncIntervalMinutes is how often the scheduler pulls orders
	SyncIntervalMinutes int
	// ConsolidationEnabled opts this tenant's orders into shipment grouping
	ConsolidationEnabled bool
	// LastSyncAt is when orders were last pulled through this connection
	LastSyncAt *time.Time
	// LastSyncStatus is the result of the last pull
	LastSyncStatus SyncStatus
	// LastSyncError contains any error from the last pull
	LastSyncError string
	// CreatedAt is when this connection was created
	CreatedAt time.Time
	// UpdatedAt is when this connection was last updated
	UpdatedAt time.Time
}

// NewPlatformConnection creates a new platform connection
func NewPlatformConnection(tenantID uuid.UUID, platform Platform, name, apiKey, apiSecret string) (*PlatformConnection, error) {
	if tenantID == uuid.Nil {
		return nil, ErrOrderInvalidTenantID
	}
	if !platform.IsValid() {
		return nil, ErrMapperUnknownPlatform
	}
	if name == "" {
		return nil, ErrConnectionInvalidName
	}
	if apiKey == "" {
		return nil, ErrConnectionMissingAPIKey
	}

	now := time.Now()
	return &PlatformConnection{
		ID:                  uuid.New(),
		TenantID:            tenantID,
		Platform:            platform,
		Name:                name,
		APIKey:              apiKey,
		APISecret:           apiSecret,
		IsEnabled:           true,
		SyncIntervalMinutes: 15,
		LastSyncStatus:      SyncStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Enable enables sync for this connection
func (c *PlatformConnection) Enable() {
	c.IsEnabled = true
	c.UpdatedAt = time.Now()
}

// Disable disables sync for this connection
func (c *PlatformConnection) Disable() {
	c.IsEnabled = false
	c.UpdatedAt = time.Now()
}

// RecordSyncSuccess records a successful pull
func (c *PlatformConnection) RecordSyncSuccess() {
	now := time.Now()
	c.LastSyncAt = &now
	c.LastSyncStatus = SyncStatusSuccess
	c.LastSyncError = ""
	c.UpdatedAt = now
}

// RecordSyncFailure records a failed pull
func (c *PlatformConnection) RecordSyncFailure(errMsg string) {
	now := time.Now()
	c.LastSyncAt = &now
	c.LastSyncStatus = SyncStatusFailed
	c.LastSyncError = errMsg
	c.UpdatedAt = now
}

// SyncDue reports whether the connection is due for a scheduled pull
func (c *PlatformConnection) SyncDue(now time.Time) bool {
	if !c.IsEnabled {
		return false
	}
	if c.LastSyncAt == nil {
		return true
	}
	interval := time.Duration(c.SyncIntervalMinutes) * time.Minute
	return now.Sub(*c.LastSyncAt) >= interval
}

// ---------------------------------------------------------------------------
// ConnectionRepository Interface
// ---------------------------------------------------------------------------

// ConnectionRepository defines the persistence interface for platform connections
type ConnectionRepository interface {
	// FindByID finds a connection by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PlatformConnection, error)

	// FindByTenantAndPlatform finds a tenant's connection for a platform
	FindByTenantAndPlatform(ctx context.Context, tenantID uuid.UUID, platform Platform) (*PlatformConnection, error)

	// FindAllForTenant lists all connections for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]PlatformConnection, error)

	// FindAllEnabled lists all enabled connections across tenants,
	// used by the sync scheduler
	FindAllEnabled(ctx context.Context) ([]PlatformConnection, error)

	// Save creates or updates a connection
	Save(ctx context.Context, conn *PlatformConnection) error

	// Delete deletes a connection
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
