package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerhub/backend/internal/domain/integration"
)

// OrderModel is the persistence model for canonical orders. The pair
// (connection_id, external_order_id) is the reconciliation key.
type OrderModel struct {
	ID                  uuid.UUID               `gorm:"type:uuid;primary_key"`
	TenantID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	ConnectionID        uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_orders_connection_external"`
	ExternalOrderID     string                  `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_connection_external"`
	Platform            integration.Platform    `gorm:"type:varchar(20);not null;index"`
	OrderNumber         string                  `gorm:"type:varchar(100);not null;index"`
	Status              integration.OrderStatus `gorm:"type:varchar(20);not null;index"`
	PlatformStatus      string                  `gorm:"type:varchar(50)"`
	CustomerEmail       string                  `gorm:"type:varchar(255)"`
	CustomerFullName    string                  `gorm:"type:varchar(255);index"`
	CustomerTCIdentity  string                  `gorm:"type:varchar(20)"`
	BillingAddress      string                  `gorm:"type:jsonb;default:'{}'"`
	ShippingAddress     string                  `gorm:"type:jsonb;default:'{}'"`
	Lines               string                  `gorm:"type:jsonb;default:'[]'"`
	CargoTrackingNumber string                  `gorm:"type:varchar(50)"`
	CargoProviderName   string                  `gorm:"type:varchar(100)"`
	CurrencyCode        string                  `gorm:"type:varchar(3);not null;default:'TRY'"`
	TotalAmount         decimal.Decimal         `gorm:"type:decimal(12,2);not null;default:0"`
	TotalDiscount       decimal.Decimal         `gorm:"type:decimal(12,2);not null;default:0"`
	OrderedAt           time.Time               `gorm:"type:timestamptz;index"`
	LastModifiedAt      time.Time               `gorm:"type:timestamptz;not null"`
	LastSyncedAt        time.Time               `gorm:"type:timestamptz"`
	ConsolidatedGroupID *uuid.UUID              `gorm:"type:uuid;index"`
	RawData             string                  `gorm:"type:jsonb;default:'{}'"`
	CreatedAt           time.Time               `gorm:"not null"`
	UpdatedAt           time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain CanonicalOrder
func (m *OrderModel) ToDomain() *integration.CanonicalOrder {
	order := &integration.CanonicalOrder{
		ID:              m.ID,
		TenantID:        m.TenantID,
		ConnectionID:    m.ConnectionID,
		Platform:        m.Platform,
		ExternalOrderID: m.ExternalOrderID,
		OrderNumber:     m.OrderNumber,
		Status:          m.Status,
		PlatformStatus:  m.PlatformStatus,
		Customer: integration.Customer{
			Email:            m.CustomerEmail,
			FullName:         m.CustomerFullName,
			TCIdentityNumber: m.CustomerTCIdentity,
		},
		CargoTrackingNumber: m.CargoTrackingNumber,
		CargoProviderName:   m.CargoProviderName,
		CurrencyCode:        m.CurrencyCode,
		TotalAmount:         m.TotalAmount,
		TotalDiscount:       m.TotalDiscount,
		OrderedAt:           m.OrderedAt,
		LastModifiedAt:      m.LastModifiedAt,
		LastSyncedAt:        m.LastSyncedAt,
		ConsolidatedGroupID: m.ConsolidatedGroupID,
		RawData:             m.RawData,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.BillingAddress != "" {
		_ = json.Unmarshal([]byte(m.BillingAddress), &order.BillingAddress)
	}
	if m.ShippingAddress != "" {
		_ = json.Unmarshal([]byte(m.ShippingAddress), &order.ShippingAddress)
	}
	if m.Lines != "" {
		_ = json.Unmarshal([]byte(m.Lines), &order.Lines)
	}
	return order
}

// FromDomain populates the persistence model from a domain CanonicalOrder
func (m *OrderModel) FromDomain(order *integration.CanonicalOrder) {
	m.ID = order.ID
	m.TenantID = order.TenantID
	m.ConnectionID = order.ConnectionID
	m.Platform = order.Platform
	m.ExternalOrderID = order.ExternalOrderID
	m.OrderNumber = order.OrderNumber
	m.Status = order.Status
	m.PlatformStatus = order.PlatformStatus
	m.CustomerEmail = order.Customer.Email
	m.CustomerFullName = order.Customer.FullName
	m.CustomerTCIdentity = order.Customer.TCIdentityNumber
	m.BillingAddress = marshalOrDefault(order.BillingAddress, "{}")
	m.ShippingAddress = marshalOrDefault(order.ShippingAddress, "{}")
	m.Lines = marshalOrDefault(order.Lines, "[]")
	m.CargoTrackingNumber = order.CargoTrackingNumber
	m.CargoProviderName = order.CargoProviderName
	m.CurrencyCode = order.CurrencyCode
	m.TotalAmount = order.TotalAmount
	m.TotalDiscount = order.TotalDiscount
	m.OrderedAt = order.OrderedAt
	m.LastModifiedAt = order.LastModifiedAt
	m.LastSyncedAt = order.LastSyncedAt
	m.ConsolidatedGroupID = order.ConsolidatedGroupID
	m.RawData = order.RawData
	m.CreatedAt = order.CreatedAt
	m.UpdatedAt = order.UpdatedAt
	if m.RawData == "" {
		m.RawData = "{}"
	}
}

// OrderModelFromDomain creates a new persistence model from a domain CanonicalOrder
func OrderModelFromDomain(order *integration.CanonicalOrder) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(order)
	return m
}

// ConnectionModel is the persistence model for platform connections
type ConnectionModel struct {
	ID                   uuid.UUID              `gorm:"type:uuid;primary_key"`
	TenantID             uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_connections_tenant_platform"`
	Platform             integration.Platform   `gorm:"type:varchar(20);not null;uniqueIndex:idx_connections_tenant_platform"`
	Name                 string                 `gorm:"type:varchar(100);not null"`
	SellerID             string                 `gorm:"type:varchar(100)"`
	APIKey               string                 `gorm:"type:varchar(255);not null"`
	APISecret            string                 `gorm:"type:varchar(255)"`
	IsEnabled            bool                   `gorm:"not null;default:true"`
	SyncIntervalMinutes  int                    `gorm:"not null;default:15"`
	ConsolidationEnabled bool                   `gorm:"not null;default:false"`
	LastSyncAt           *time.Time             `gorm:"type:timestamptz"`
	LastSyncStatus       integration.SyncStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	LastSyncError        string                 `gorm:"type:text"`
	CreatedAt            time.Time              `gorm:"not null"`
	UpdatedAt            time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConnectionModel) TableName() string {
	return "platform_connections"
}

// ToDomain converts the persistence model to a domain PlatformConnection
func (m *ConnectionModel) ToDomain() *integration.PlatformConnection {
	return &integration.PlatformConnection{
		ID:                   m.ID,
		TenantID:             m.TenantID,
		Platform:             m.Platform,
		Name:                 m.Name,
		SellerID:             m.SellerID,
		APIKey:               m.APIKey,
		APISecret:            m.APISecret,
		IsEnabled:            m.IsEnabled,
		SyncIntervalMinutes:  m.SyncIntervalMinutes,
		ConsolidationEnabled: m.ConsolidationEnabled,
		LastSyncAt:           m.LastSyncAt,
		LastSyncStatus:       m.LastSyncStatus,
		LastSyncError:        m.LastSyncError,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PlatformConnection
func (m *ConnectionModel) FromDomain(conn *integration.PlatformConnection) {
	m.ID = conn.ID
	m.TenantID = conn.TenantID
	m.Platform = conn.Platform
	m.Name = conn.Name
	m.SellerID = conn.SellerID
	m.APIKey = conn.APIKey
	m.APISecret = conn.APISecret
	m.IsEnabled = conn.IsEnabled
	m.SyncIntervalMinutes = conn.SyncIntervalMinutes
	m.ConsolidationEnabled = conn.ConsolidationEnabled
	m.LastSyncAt = conn.LastSyncAt
	m.LastSyncStatus = conn.LastSyncStatus
	m.LastSyncError = conn.LastSyncError
	m.CreatedAt = conn.CreatedAt
	m.UpdatedAt = conn.UpdatedAt
}

// ConnectionModelFromDomain creates a new persistence model from a domain PlatformConnection
func ConnectionModelFromDomain(conn *integration.PlatformConnection) *ConnectionModel {
	m := &ConnectionModel{}
	m.FromDomain(conn)
	return m
}

// marshalOrDefault serializes v to JSON, falling back to def on error
func marshalOrDefault(v any, def string) string {
	data, err := json.Marshal(v)
	if err != nil {
		return def
	}
	return string(data)
}
