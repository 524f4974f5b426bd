package integration

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// CanonicalOrder Tests
// ---------------------------------------------------------------------------

func validOrder() *CanonicalOrder {
	return &CanonicalOrder{
		TenantID:        uuid.New(),
		ConnectionID:    uuid.New(),
		Platform:        PlatformN11,
		ExternalOrderID: "112964324974270",
		OrderNumber:     "204123935736",
		Status:          OrderStatusCreated,
		TotalAmount:     decimal.RequireFromString("282.33"),
		OrderedAt:       time.Now(),
		LastModifiedAt:  time.Now(),
	}
}

func TestCanonicalOrderValidate(t *testing.T) {
	t.Run("Valid order", func(t *testing.T) {
		require.NoError(t, validOrder().Validate())
	})

	t.Run("Missing tenant", func(t *testing.T) {
		o := validOrder()
		o.TenantID = uuid.Nil
		assert.ErrorIs(t, o.Validate(), ErrOrderInvalidTenantID)
	})

	t.Run("Missing connection", func(t *testing.T) {
		o := validOrder()
		o.ConnectionID = uuid.Nil
		assert.ErrorIs(t, o.Validate(), ErrOrderInvalidConnection)
	})

	t.Run("Missing external ID", func(t *testing.T) {
		o := validOrder()
		o.ExternalOrderID = ""
		assert.ErrorIs(t, o.Validate(), ErrOrderMissingExternalID)
	})

	t.Run("Unsupported platform", func(t *testing.T) {
		o := validOrder()
		o.Platform = Platform("EBAY")
		assert.ErrorIs(t, o.Validate(), ErrMapperUnknownPlatform)
	})
}

func TestCanonicalOrderIsNewerThan(t *testing.T) {
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	stored := validOrder()
	stored.LastModifiedAt = base

	t.Run("Newer incoming data wins", func(t *testing.T) {
		incoming := validOrder()
		incoming.LastModifiedAt = base.Add(time.Minute)
		assert.True(t, incoming.IsNewerThan(stored))
	})

	t.Run("Equal timestamp is not newer", func(t *testing.T) {
		incoming := validOrder()
		incoming.LastModifiedAt = base
		assert.False(t, incoming.IsNewerThan(stored))
	})

	t.Run("Older incoming data is not newer", func(t *testing.T) {
		incoming := validOrder()
		incoming.LastModifiedAt = base.Add(-time.Hour)
		assert.False(t, incoming.IsNewerThan(stored))
	})
}

func TestCanonicalOrderTotalQuantity(t *testing.T) {
	o := validOrder()
	o.Lines = []OrderLine{
		{Quantity: 2},
		{Quantity: 1},
		{Quantity: 3},
	}
	assert.Equal(t, 6, o.TotalQuantity())

	o.Lines = nil
	assert.Equal(t, 0, o.TotalQuantity())
}

// ---------------------------------------------------------------------------
// Platform / OrderStatus Tests
// ---------------------------------------------------------------------------

func TestPlatformIsValid(t *testing.T) {
	for _, p := range AllPlatforms() {
		assert.True(t, p.IsValid(), p.String())
	}
	assert.False(t, Platform("ETSY").IsValid())
	assert.False(t, Platform("").IsValid())
}

func TestOrderStatus(t *testing.T) {
	t.Run("Unknown is a defined fallback", func(t *testing.T) {
		assert.True(t, OrderStatusUnknown.IsValid())
		assert.True(t, OrderStatusUnknown.IsFinal())
	})

	t.Run("Final states", func(t *testing.T) {
		assert.True(t, OrderStatusDelivered.IsFinal())
		assert.True(t, OrderStatusCancelled.IsFinal())
		assert.True(t, OrderStatusReturned.IsFinal())
		assert.False(t, OrderStatusCreated.IsFinal())
		assert.False(t, OrderStatusShipped.IsFinal())
	})
}

func TestOrderPullRequestValidate(t *testing.T) {
	conn, err := NewPlatformConnection(uuid.New(), PlatformTrendyol, "main store", "key", "secret")
	require.NoError(t, err)

	t.Run("Normalizes paging", func(t *testing.T) {
		req := &OrderPullRequest{
			Connection: conn,
			StartTime:  time.Now().Add(-time.Hour),
			EndTime:    time.Now(),
			PageNo:     -3,
			PageSize:   10000,
		}
		require.NoError(t, req.Validate())
		assert.Equal(t, 0, req.PageNo)
		assert.Equal(t, 50, req.PageSize)
	})

	t.Run("Rejects inverted window", func(t *testing.T) {
		req := &OrderPullRequest{
			Connection: conn,
			StartTime:  time.Now(),
			EndTime:    time.Now().Add(-time.Hour),
		}
		assert.Error(t, req.Validate())
	})

	t.Run("Rejects missing connection", func(t *testing.T) {
		req := &OrderPullRequest{StartTime: time.Now().Add(-time.Hour), EndTime: time.Now()}
		assert.ErrorIs(t, req.Validate(), ErrPlatformNotConfigured)
	})
}

func TestSyncResultFinalize(t *testing.T) {
	t.Run("All success", func(t *testing.T) {
		r := &SyncResult{TotalCount: 3, SuccessCount: 3}
		r.Finalize()
		assert.Equal(t, SyncStatusSuccess, r.Status)
	})

	t.Run("Partial", func(t *testing.T) {
		r := &SyncResult{TotalCount: 3, SuccessCount: 2, FailedCount: 1}
		r.Finalize()
		assert.Equal(t, SyncStatusPartial, r.Status)
	})

	t.Run("All failed", func(t *testing.T) {
		r := &SyncResult{TotalCount: 3, FailedCount: 3}
		r.Finalize()
		assert.Equal(t, SyncStatusFailed, r.Status)
	})
}
