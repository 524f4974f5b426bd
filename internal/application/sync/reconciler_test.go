package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/catalog"
	"github.com/sellerhub/backend/internal/domain/integration"
)

func testOrder(tenantID, connectionID uuid.UUID, externalID string, lastModified time.Time) *integration.CanonicalOrder {
	return &integration.CanonicalOrder{
		TenantID:        tenantID,
		ConnectionID:    connectionID,
		Platform:        integration.PlatformTrendyol,
		ExternalOrderID: externalID,
		OrderNumber:     externalID,
		Status:          integration.OrderStatusCreated,
		CurrencyCode:    "TRY",
		OrderedAt:       lastModified,
		LastModifiedAt:  lastModified,
	}
}

func TestReconciler_Upsert(t *testing.T) {
	tenantID := uuid.New()
	connectionID := uuid.New()
	baseTime := time.Date(2024, 11, 16, 14, 0, 0, 0, time.UTC)

	t.Run("inserts unseen order", func(t *testing.T) {
		orders := newFakeOrderRepo()
		reconciler := NewReconciler(orders, &fakeProductReader{}, zap.NewNop())

		result, err := reconciler.Upsert(context.Background(), testOrder(tenantID, connectionID, "ORD-1", baseTime))
		require.NoError(t, err)

		assert.Equal(t, ActionInserted, result.Action)
		assert.NotEqual(t, uuid.Nil, result.ID)
		assert.Equal(t, 1, orders.inserts)

		stored, err := orders.FindByExternalID(context.Background(), connectionID, "ORD-1")
		require.NoError(t, err)
		assert.False(t, stored.LastSyncedAt.IsZero())
	})

	t.Run("updates when incoming is newer", func(t *testing.T) {
		orders := newFakeOrderRepo()
		reconciler := NewReconciler(orders, &fakeProductReader{}, zap.NewNop())
		ctx := context.Background()

		first, err := reconciler.Upsert(ctx, testOrder(tenantID, connectionID, "ORD-2", baseTime))
		require.NoError(t, err)

		groupID := uuid.New()
		stored, err := orders.FindByID(ctx, tenantID, first.ID)
		require.NoError(t, err)
		stored.ConsolidatedGroupID = &groupID
		require.NoError(t, orders.Update(ctx, stored))

		newer := testOrder(tenantID, connectionID, "ORD-2", baseTime.Add(time.Hour))
		newer.Status = integration.OrderStatusShipped
		result, err := reconciler.Upsert(ctx, newer)
		require.NoError(t, err)

		assert.Equal(t, ActionUpdated, result.Action)
		assert.Equal(t, first.ID, result.ID, "local identity survives the refresh")

		refreshed, err := orders.FindByID(ctx, tenantID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, integration.OrderStatusShipped, refreshed.Status)
		require.NotNil(t, refreshed.ConsolidatedGroupID)
		assert.Equal(t, groupID, *refreshed.ConsolidatedGroupID, "group assignment survives the refresh")
	})

	t.Run("skips equal timestamp", func(t *testing.T) {
		orders := newFakeOrderRepo()
		reconciler := NewReconciler(orders, &fakeProductReader{}, zap.NewNop())
		ctx := context.Background()

		first, err := reconciler.Upsert(ctx, testOrder(tenantID, connectionID, "ORD-3", baseTime))
		require.NoError(t, err)

		result, err := reconciler.Upsert(ctx, testOrder(tenantID, connectionID, "ORD-3", baseTime))
		require.NoError(t, err)
		assert.Equal(t, ActionSkipped, result.Action)
		assert.Equal(t, first.ID, result.ID)
		assert.Equal(t, 0, orders.updates)
	})

	t.Run("skips older payload", func(t *testing.T) {
		orders := newFakeOrderRepo()
		reconciler := NewReconciler(orders, &fakeProductReader{}, zap.NewNop())
		ctx := context.Background()

		_, err := reconciler.Upsert(ctx, testOrder(tenantID, connectionID, "ORD-4", baseTime))
		require.NoError(t, err)

		result, err := reconciler.Upsert(ctx, testOrder(tenantID, connectionID, "ORD-4", baseTime.Add(-time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, ActionSkipped, result.Action)
	})

	t.Run("rejects invalid order", func(t *testing.T) {
		reconciler := NewReconciler(newFakeOrderRepo(), &fakeProductReader{}, zap.NewNop())

		order := testOrder(tenantID, connectionID, "ORD-5", baseTime)
		order.TenantID = uuid.Nil
		_, err := reconciler.Upsert(context.Background(), order)
		assert.ErrorIs(t, err, integration.ErrOrderInvalidTenantID)
	})
}

func TestReconciler_ProductLinking(t *testing.T) {
	tenantID := uuid.New()
	connectionID := uuid.New()
	baseTime := time.Date(2024, 11, 16, 14, 0, 0, 0, time.UTC)

	byBarcode, err := catalog.NewProduct(tenantID, "TSH-001", "Pamuklu Tişört")
	require.NoError(t, err)
	byBarcode.Barcode = "8680000000011"

	bySKU, err := catalog.NewProduct(tenantID, "KZK-002", "Yün Kazak")
	require.NoError(t, err)

	products := &fakeProductReader{products: []*catalog.Product{byBarcode, bySKU}}

	t.Run("matches barcode first, then SKU", func(t *testing.T) {
		orders := newFakeOrderRepo()
		reconciler := NewReconciler(orders, products, zap.NewNop())

		order := testOrder(tenantID, connectionID, "ORD-10", baseTime)
		order.Lines = []integration.OrderLine{
			{ExternalLineID: "1", Barcode: "8680000000011", MerchantSKU: "KZK-002", Quantity: 1},
			{ExternalLineID: "2", Barcode: "no-such-barcode", MerchantSKU: "KZK-002", Quantity: 2},
			{ExternalLineID: "3", Barcode: "no-such-barcode", MerchantSKU: "no-such-sku", Quantity: 1},
		}

		result, err := reconciler.Upsert(context.Background(), order)
		require.NoError(t, err)

		stored, err := orders.FindByID(context.Background(), tenantID, result.ID)
		require.NoError(t, err)
		require.Len(t, stored.Lines, 3)

		require.NotNil(t, stored.Lines[0].ProductID)
		assert.Equal(t, byBarcode.ID, *stored.Lines[0].ProductID, "barcode wins over SKU")

		require.NotNil(t, stored.Lines[1].ProductID)
		assert.Equal(t, bySKU.ID, *stored.Lines[1].ProductID)

		assert.Nil(t, stored.Lines[2].ProductID, "no match leaves the line unlinked")
	})
}
