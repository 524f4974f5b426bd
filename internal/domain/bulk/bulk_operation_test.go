package bulk

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStartedOp(t *testing.T, total int) *BulkOperation {
	t.Helper()
	op, err := NewBulkOperation(uuid.New(), OperationOrderSync, total)
	require.NoError(t, err)
	require.NoError(t, op.Start())
	return op
}

func TestNewBulkOperation(t *testing.T) {
	t.Run("Valid operation", func(t *testing.T) {
		op, err := NewBulkOperation(uuid.New(), OperationPriceUpdate, 100)
		require.NoError(t, err)
		assert.Equal(t, OperationStatusPending, op.Status)
		assert.Equal(t, 100, op.TotalItems)
		assert.Equal(t, 0, op.Progress)
		assert.Nil(t, op.StartedAt)
	})

	t.Run("Invalid type", func(t *testing.T) {
		_, err := NewBulkOperation(uuid.New(), OperationType("mass_delete"), 10)
		assert.Error(t, err)
	})

	t.Run("Negative total", func(t *testing.T) {
		_, err := NewBulkOperation(uuid.New(), OperationOrderSync, -1)
		assert.Error(t, err)
	})
}

func TestBulkOperationLifecycle(t *testing.T) {
	op := newStartedOp(t, 4)
	assert.Equal(t, OperationStatusProcessing, op.Status)
	require.NotNil(t, op.StartedAt)

	t.Run("Cannot start twice", func(t *testing.T) {
		assert.Error(t, op.Start())
	})

	op.RecordItemResult(true, "order-1", "")
	op.RecordItemResult(true, "order-2", "")
	op.RecordItemResult(false, "order-3", "missing barcode")
	op.RecordItemResult(true, "order-4", "")

	assert.Equal(t, 4, op.ProcessedItems)
	assert.Equal(t, 3, op.SuccessfulItems)
	assert.Equal(t, 1, op.FailedItems)
	assert.Equal(t, op.ProcessedItems, op.SuccessfulItems+op.FailedItems)
	assert.Equal(t, 100, op.Progress)
	require.Len(t, op.Errors, 1)
	assert.Equal(t, "order-3", op.Errors[0].ItemID)

	require.NoError(t, op.Finish())
	assert.Equal(t, OperationStatusPartial, op.Status)
	require.NotNil(t, op.CompletedAt)
	assert.GreaterOrEqual(t, op.ProcessingTimeMs, int64(0))
}

func TestBulkOperationTerminalStates(t *testing.T) {
	cases := []struct {
		failed int
		want   OperationStatus
	}{
		{failed: 0, want: OperationStatusCompleted},
		{failed: 3, want: OperationStatusPartial},
		{failed: 10, want: OperationStatusFailed},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d of 10 failed", tc.failed), func(t *testing.T) {
			op := newStartedOp(t, 10)
			for i := 0; i < 10; i++ {
				op.RecordItemResult(i >= tc.failed, fmt.Sprintf("item-%d", i), "boom")
			}
			require.NoError(t, op.Finish())
			assert.Equal(t, tc.want, op.Status)
		})
	}

	t.Run("Empty batch completes", func(t *testing.T) {
		op := newStartedOp(t, 0)
		require.NoError(t, op.Finish())
		assert.Equal(t, OperationStatusCompleted, op.Status)
	})
}

func TestBulkOperationProgress(t *testing.T) {
	op := newStartedOp(t, 3)

	op.RecordItemResult(true, "a", "")
	assert.Equal(t, 33, op.Progress)

	op.RecordItemResult(true, "b", "")
	assert.Equal(t, 67, op.Progress)

	op.RecordItemResult(true, "c", "")
	assert.Equal(t, 100, op.Progress)

	t.Run("Total set late", func(t *testing.T) {
		late := newStartedOp(t, 0)
		late.RecordItemResult(true, "a", "")
		assert.Equal(t, 0, late.Progress)
		late.SetTotalItems(4)
		assert.Equal(t, 25, late.Progress)
	})
}

func TestBulkOperationCancel(t *testing.T) {
	op := newStartedOp(t, 10)
	op.RecordItemResult(true, "a", "")
	op.RecordItemResult(false, "b", "timeout")

	require.NoError(t, op.Cancel())
	assert.Equal(t, OperationStatusCancelled, op.Status)
	assert.True(t, op.IsCancelled())

	// further results are dropped silently
	op.RecordItemResult(true, "c", "")
	op.RecordItemResult(false, "d", "late failure")
	op.RecordWarning("e", "ignored")

	assert.Equal(t, 2, op.ProcessedItems)
	assert.Equal(t, 1, op.SuccessfulItems)
	assert.Equal(t, 1, op.FailedItems)
	require.Len(t, op.Errors, 1)
	assert.Empty(t, op.Warnings)

	t.Run("Finish after cancel is a no-op", func(t *testing.T) {
		require.NoError(t, op.Finish())
		assert.Equal(t, OperationStatusCancelled, op.Status)
	})

	t.Run("Cannot cancel twice", func(t *testing.T) {
		assert.Error(t, op.Cancel())
	})

	t.Run("Cancel before start", func(t *testing.T) {
		pending, err := NewBulkOperation(uuid.New(), OperationStockUpdate, 5)
		require.NoError(t, err)
		require.NoError(t, pending.Cancel())
		assert.Equal(t, OperationStatusCancelled, pending.Status)
	})
}

func TestBulkOperationFailFatal(t *testing.T) {
	op := newStartedOp(t, 100)
	op.RecordItemResult(true, "a", "")

	require.NoError(t, op.FailFatal("authentication failed"))
	assert.Equal(t, OperationStatusFailed, op.Status)
	assert.Equal(t, "authentication failed", op.FatalError)
	assert.True(t, op.HasErrors())

	assert.Error(t, op.FailFatal("again"))
}

func TestBulkOperationResumeOffset(t *testing.T) {
	op := newStartedOp(t, 50)
	for i := 0; i < 17; i++ {
		op.RecordItemResult(true, fmt.Sprintf("item-%d", i), "")
	}
	assert.Equal(t, 17, op.ResumeOffset())
}

func TestBulkOperationErrorsJSON(t *testing.T) {
	op := newStartedOp(t, 2)

	empty, err := op.ErrorsJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	op.RecordItemResult(false, "order-9", "invalid status")
	data, err := op.ErrorsJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"item_id":"order-9","message":"invalid status"}]`, data)
}
