package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntityType identifies the kind of local record a platform link points at
type EntityType string

const (
	EntityTypeProduct EntityType = "product"
	EntityTypeOrder   EntityType = "order"
)

// IsValid checks if the entity type is valid
func (t EntityType) IsValid() bool {
	return t == EntityTypeProduct || t == EntityTypeOrder
}

// ListingStatus represents the state of a listing on the platform
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusPassive  ListingStatus = "passive"
	ListingStatusRejected ListingStatus = "rejected"
)

// PlatformData links a local entity to its representation on one
// marketplace. One local product can be listed on several platforms at
// once; the (entity type, entity ID, platform) triple is unique.
type PlatformData struct {
	shared.TenantAggregateRoot
	EntityType   EntityType           `gorm:"type:varchar(20);not null;uniqueIndex:idx_platform_data_entity,priority:2"`
	EntityID     uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_platform_data_entity,priority:3"`
	Platform     integration.Platform `gorm:"type:varchar(20);not null;uniqueIndex:idx_platform_data_entity,priority:4"`
	ConnectionID uuid.UUID            `gorm:"type:uuid;not null;index"`
	PlatformSKU  string               `gorm:"type:varchar(100);index"`
	Status       ListingStatus        `gorm:"type:varchar(20);not null;default:'active'"`
	Price        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity     int                  `gorm:"not null;default:0"`
	Data         string               `gorm:"type:jsonb"`
	LastSyncedAt *time.Time
}

// TableName returns the table name for GORM
func (PlatformData) TableName() string {
	return "platform_data"
}

// NewPlatformData creates a new platform link for a local entity
func NewPlatformData(tenantID, connectionID, entityID uuid.UUID, entityType EntityType, platform integration.Platform) (*PlatformData, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown entity type")
	}
	if !platform.IsValid() {
		return nil, integration.ErrMapperUnknownPlatform
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY_ID", "Entity ID is required")
	}
	if connectionID == uuid.Nil {
		return nil, integration.ErrOrderInvalidConnection
	}

	return &PlatformData{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntityType:          entityType,
		EntityID:            entityID,
		Platform:            platform,
		ConnectionID:        connectionID,
		Status:              ListingStatusActive,
		Price:               decimal.Zero,
		Data:                "{}",
	}, nil
}

// RecordListing updates the listing snapshot as reported by the platform
func (d *PlatformData) RecordListing(platformSKU string, price decimal.Decimal, quantity int, status ListingStatus) {
	d.PlatformSKU = platformSKU
	d.Price = price
	d.Quantity = quantity
	d.Status = status
	now := time.Now()
	d.LastSyncedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()
}

// SetData stores the platform-specific payload as JSON
func (d *PlatformData) SetData(data string) error {
	if data == "" {
		data = "{}"
	}
	trimmed := strings.TrimSpace(data)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return shared.NewDomainError("INVALID_DATA", "Platform data must be a JSON object")
	}

	d.Data = trimmed
	d.Touch()
	d.IncrementVersion()

	return nil
}

// Touch marks the link as synced just now
func (d *PlatformData) Touch() {
	now := time.Now()
	d.LastSyncedAt = &now
	d.UpdatedAt = now
}
