package bulk

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// OperationType represents the kind of long-running batch job being tracked
type OperationType string

const (
	OperationOrderSync     OperationType = "order_sync"
	OperationOrderExport   OperationType = "order_export"
	OperationProductImport OperationType = "product_import"
	OperationPriceUpdate   OperationType = "price_update"
	OperationStockUpdate   OperationType = "stock_update"
)

// IsValid checks if the operation type is valid
func (t OperationType) IsValid() bool {
	switch t {
	case OperationOrderSync, OperationOrderExport, OperationProductImport,
		OperationPriceUpdate, OperationStockUpdate:
		return true
	}
	return false
}

// OperationStatus represents the status of a bulk operation
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "pending"
	OperationStatusProcessing OperationStatus = "processing"
	OperationStatusCompleted  OperationStatus = "completed"
	OperationStatusFailed     OperationStatus = "failed"
	OperationStatusCancelled  OperationStatus = "cancelled"
	OperationStatusPartial    OperationStatus = "partial"
)

// IsValid checks if the status is valid
func (s OperationStatus) IsValid() bool {
	switch s {
	case OperationStatusPending, OperationStatusProcessing, OperationStatusCompleted,
		OperationStatusFailed, OperationStatusCancelled, OperationStatusPartial:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s OperationStatus) IsTerminal() bool {
	switch s {
	case OperationStatusCompleted, OperationStatusFailed,
		OperationStatusCancelled, OperationStatusPartial:
		return true
	}
	return false
}

// ItemError records a failure for one item of a bulk operation
type ItemError struct {
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
}

// ItemWarning records a non-fatal issue for one item of a bulk operation
type ItemWarning struct {
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
}

// BulkOperation tracks the progress and outcome of a long-running batch job
// (order sync, import, price update). It accumulates per-item results and
// never fails the enclosing batch itself: per-item accounting methods are
// no-ops once the operation reaches a terminal state.
type BulkOperation struct {
	shared.TenantAggregateRoot
	Type             OperationType   `json:"type"`
	Status           OperationStatus `json:"status"`
	TotalItems       int             `json:"total_items"`
	ProcessedItems   int             `json:"processed_items"`
	SuccessfulItems  int             `json:"successful_items"`
	FailedItems      int             `json:"failed_items"`
	Progress         int             `json:"progress"`
	Errors           []ItemError     `json:"errors,omitempty"`
	Warnings         []ItemWarning   `json:"warnings,omitempty"`
	FatalError       string          `json:"fatal_error,omitempty"`
	ConnectionID     *uuid.UUID      `json:"connection_id,omitempty"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// NewBulkOperation creates a new bulk operation in the pending state
func NewBulkOperation(tenantID uuid.UUID, opType OperationType, totalItems int) (*BulkOperation, error) {
	if !opType.IsValid() {
		return nil, shared.NewDomainError("INVALID_OPERATION_TYPE", fmt.Sprintf("Invalid operation type: %s", opType))
	}
	if totalItems < 0 {
		return nil, shared.NewDomainError("INVALID_TOTAL_ITEMS", "Total items cannot be negative")
	}

	return &BulkOperation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                opType,
		Status:              OperationStatusPending,
		TotalItems:          totalItems,
		Errors:              make([]ItemError, 0),
		Warnings:            make([]ItemWarning, 0),
	}, nil
}

// Start transitions the operation from pending to processing
func (o *BulkOperation) Start() error {
	if o.Status != OperationStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start from state: %s", o.Status))
	}
	o.Status = OperationStatusProcessing
	now := time.Now()
	o.StartedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// SetTotalItems updates the expected item count. Useful when the total is
// only known after the source has been paged or the file parsed.
func (o *BulkOperation) SetTotalItems(total int) {
	if total < 0 || o.Status.IsTerminal() {
		return
	}
	o.TotalItems = total
	o.recomputeProgress()
	o.UpdatedAt = time.Now()
}

// RecordItemResult accounts for one processed item. Failures carry an item
// identifier and message appended to Errors. Calls after cancellation (or
// any terminal state) are no-ops; the tracker accumulates, it never throws.
func (o *BulkOperation) RecordItemResult(success bool, itemID, errMsg string) {
	if o.Status.IsTerminal() {
		return
	}
	o.ProcessedItems++
	if success {
		o.SuccessfulItems++
	} else {
		o.FailedItems++
		o.Errors = append(o.Errors, ItemError{ItemID: itemID, Message: errMsg})
	}
	o.recomputeProgress()
	o.UpdatedAt = time.Now()
}

// RecordWarning appends a non-fatal issue without touching the counters
func (o *BulkOperation) RecordWarning(itemID, message string) {
	if o.Status.IsTerminal() {
		return
	}
	o.Warnings = append(o.Warnings, ItemWarning{ItemID: itemID, Message: message})
	o.UpdatedAt = time.Now()
}

// Finish moves the operation to its terminal state based on the counters:
// completed when nothing failed, failed when everything failed, partial
// otherwise. Finishing a cancelled operation is a no-op.
func (o *BulkOperation) Finish() error {
	if o.Status == OperationStatusCancelled {
		return nil
	}
	if o.Status != OperationStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot finish from state: %s", o.Status))
	}

	switch {
	case o.FailedItems == 0:
		o.Status = OperationStatusCompleted
	case o.SuccessfulItems == 0 && o.ProcessedItems > 0:
		o.Status = OperationStatusFailed
	default:
		o.Status = OperationStatusPartial
	}

	o.complete()
	return nil
}

// FailFatal aborts the operation with a top-level error, bypassing per-item
// accounting (e.g. unreadable source file, authentication failure).
func (o *BulkOperation) FailFatal(message string) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", o.Status))
	}
	o.Status = OperationStatusFailed
	o.FatalError = message
	o.complete()
	return nil
}

// Cancel marks the operation as cancelled. Subsequent RecordItemResult
// calls are ignored.
func (o *BulkOperation) Cancel() error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel from terminal state: %s", o.Status))
	}
	o.Status = OperationStatusCancelled
	o.complete()
	return nil
}

// ResumeOffset returns the number of already processed items, so a restarted
// job can continue from where it left off. Reprocessing is safe regardless:
// the order upsert is idempotent.
func (o *BulkOperation) ResumeOffset() int {
	return o.ProcessedItems
}

// IsCancelled returns true if the operation was cancelled
func (o *BulkOperation) IsCancelled() bool {
	return o.Status == OperationStatusCancelled
}

// HasErrors returns true if any item failed
func (o *BulkOperation) HasErrors() bool {
	return len(o.Errors) > 0 || o.FatalError != ""
}

// Duration returns how long the operation has been (or was) running
func (o *BulkOperation) Duration() time.Duration {
	if o.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if o.CompletedAt != nil {
		end = *o.CompletedAt
	}
	return end.Sub(*o.StartedAt)
}

// ErrorsJSON returns the item errors as a JSON string
func (o *BulkOperation) ErrorsJSON() (string, error) {
	if len(o.Errors) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(o.Errors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal item errors: %w", err)
	}
	return string(data), nil
}

// WarningsJSON returns the item warnings as a JSON string
func (o *BulkOperation) WarningsJSON() (string, error) {
	if len(o.Warnings) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(o.Warnings)
	if err != nil {
		return "", fmt.Errorf("failed to marshal item warnings: %w", err)
	}
	return string(data), nil
}

func (o *BulkOperation) complete() {
	now := time.Now()
	o.CompletedAt = &now
	if o.StartedAt != nil {
		o.ProcessingTimeMs = now.Sub(*o.StartedAt).Milliseconds()
	}
	o.UpdatedAt = now
	o.IncrementVersion()
}

// recomputeProgress keeps the invariant Progress == Processed/Total*100,
// rounded to the nearest integer. A zero total reads as zero progress until
// the total is known.
func (o *BulkOperation) recomputeProgress() {
	if o.TotalItems <= 0 {
		o.Progress = 0
		return
	}
	o.Progress = int(math.Round(float64(o.ProcessedItems) / float64(o.TotalItems) * 100))
	if o.Progress > 100 {
		o.Progress = 100
	}
}
