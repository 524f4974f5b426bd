package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every identified domain object
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and audit timestamps shared by all
// persisted domain objects. IDs are generated client-side, so an aggregate
// is addressable before its first save. The gorm tags matter for aggregates
// persisted directly (catalog products, platform data); model-mapped
// aggregates ignore them.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewBaseEntity creates an entity with a fresh ID and matching timestamps
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch refreshes the update timestamp
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// GetID implements Entity
func (e *BaseEntity) GetID() uuid.UUID { return e.ID }

// GetCreatedAt implements Entity
func (e *BaseEntity) GetCreatedAt() time.Time { return e.CreatedAt }

// GetUpdatedAt implements Entity
func (e *BaseEntity) GetUpdatedAt() time.Time { return e.UpdatedAt }
