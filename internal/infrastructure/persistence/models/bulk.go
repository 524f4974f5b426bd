package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sellerhub/backend/internal/domain/bulk"
)

// BulkOperationModel is the persistence model for the BulkOperation aggregate
type BulkOperationModel struct {
	TenantAggregateModel
	Type             bulk.OperationType   `gorm:"type:varchar(30);not null;index"`
	Status           bulk.OperationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalItems       int                  `gorm:"not null;default:0"`
	ProcessedItems   int                  `gorm:"not null;default:0"`
	SuccessfulItems  int                  `gorm:"not null;default:0"`
	FailedItems      int                  `gorm:"not null;default:0"`
	Progress         int                  `gorm:"not null;default:0"`
	Errors           string               `gorm:"type:jsonb;default:'[]'"`
	Warnings         string               `gorm:"type:jsonb;default:'[]'"`
	FatalError       string               `gorm:"type:text"`
	ConnectionID     *uuid.UUID           `gorm:"type:uuid;index"`
	StartedAt        *time.Time           `gorm:"type:timestamptz"`
	CompletedAt      *time.Time           `gorm:"type:timestamptz"`
	ProcessingTimeMs int64                `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BulkOperationModel) TableName() string {
	return "bulk_operations"
}

// ToDomain converts the persistence model to a domain BulkOperation
func (m *BulkOperationModel) ToDomain() *bulk.BulkOperation {
	op := &bulk.BulkOperation{
		Type:             m.Type,
		Status:           m.Status,
		TotalItems:       m.TotalItems,
		ProcessedItems:   m.ProcessedItems,
		SuccessfulItems:  m.SuccessfulItems,
		FailedItems:      m.FailedItems,
		Progress:         m.Progress,
		FatalError:       m.FatalError,
		ConnectionID:     m.ConnectionID,
		StartedAt:        m.StartedAt,
		CompletedAt:      m.CompletedAt,
		ProcessingTimeMs: m.ProcessingTimeMs,
	}
	m.PopulateTenantAggregateRoot(&op.TenantAggregateRoot)

	op.Errors = make([]bulk.ItemError, 0)
	if m.Errors != "" {
		_ = json.Unmarshal([]byte(m.Errors), &op.Errors)
	}
	op.Warnings = make([]bulk.ItemWarning, 0)
	if m.Warnings != "" {
		_ = json.Unmarshal([]byte(m.Warnings), &op.Warnings)
	}
	return op
}

// FromDomain populates the persistence model from a domain BulkOperation
func (m *BulkOperationModel) FromDomain(op *bulk.BulkOperation) {
	m.FromDomainTenantAggregateRoot(op.TenantAggregateRoot)
	m.Type = op.Type
	m.Status = op.Status
	m.TotalItems = op.TotalItems
	m.ProcessedItems = op.ProcessedItems
	m.SuccessfulItems = op.SuccessfulItems
	m.FailedItems = op.FailedItems
	m.Progress = op.Progress
	m.FatalError = op.FatalError
	m.ConnectionID = op.ConnectionID
	m.StartedAt = op.StartedAt
	m.CompletedAt = op.CompletedAt
	m.ProcessingTimeMs = op.ProcessingTimeMs

	if errorsJSON, err := op.ErrorsJSON(); err == nil {
		m.Errors = errorsJSON
	} else {
		m.Errors = "[]"
	}
	if warningsJSON, err := op.WarningsJSON(); err == nil {
		m.Warnings = warningsJSON
	} else {
		m.Warnings = "[]"
	}
}

// BulkOperationModelFromDomain creates a new persistence model from a domain BulkOperation
func BulkOperationModelFromDomain(op *bulk.BulkOperation) *BulkOperationModel {
	m := &BulkOperationModel{}
	m.FromDomain(op)
	return m
}
