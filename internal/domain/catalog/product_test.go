package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerhub/backend/internal/domain/integration"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("Valid product", func(t *testing.T) {
		p, err := NewProduct(tenantID, "tshirt-001", "Basic Tişört")
		require.NoError(t, err)
		assert.Equal(t, "TSHIRT-001", p.SKU)
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.True(t, p.ListPrice.IsZero())
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventProductCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("Empty SKU", func(t *testing.T) {
		_, err := NewProduct(tenantID, "", "Basic Tişört")
		assert.Error(t, err)
	})

	t.Run("Empty name", func(t *testing.T) {
		_, err := NewProduct(tenantID, "TSHIRT-001", "")
		assert.Error(t, err)
	})
}

func TestProductSetPrices(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU-1", "Ürün")
	require.NoError(t, err)

	t.Run("Valid prices", func(t *testing.T) {
		err := p.SetPrices(decimal.RequireFromString("349.90"), decimal.RequireFromString("282.33"))
		require.NoError(t, err)
		assert.Equal(t, "349.9", p.ListPrice.String())
		assert.Equal(t, "282.33", p.SalePrice.String())
	})

	t.Run("Sale above list rejected", func(t *testing.T) {
		err := p.SetPrices(decimal.NewFromInt(100), decimal.NewFromInt(150))
		assert.Error(t, err)
	})

	t.Run("Negative price rejected", func(t *testing.T) {
		err := p.SetPrices(decimal.NewFromInt(-1), decimal.Zero)
		assert.Error(t, err)
	})
}

func TestProductStock(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU-1", "Ürün")
	require.NoError(t, err)

	require.NoError(t, p.SetStock(25))
	assert.Equal(t, 25, p.StockQty)
	assert.Error(t, p.SetStock(-1))
}

func TestProductStatusTransitions(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU-1", "Ürün")
	require.NoError(t, err)

	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())

	require.NoError(t, p.Activate())
	assert.True(t, p.IsActive())

	p.Archive()
	assert.Equal(t, ProductStatusArchived, p.Status)
	assert.Error(t, p.Activate())
	assert.Error(t, p.Deactivate())
}

func TestNewPlatformData(t *testing.T) {
	tenantID := uuid.New()
	connID := uuid.New()
	productID := uuid.New()

	t.Run("Valid link", func(t *testing.T) {
		d, err := NewPlatformData(tenantID, connID, productID, EntityTypeProduct, integration.PlatformTrendyol)
		require.NoError(t, err)
		assert.Equal(t, ListingStatusActive, d.Status)
		assert.Equal(t, "{}", d.Data)
	})

	t.Run("Invalid entity type", func(t *testing.T) {
		_, err := NewPlatformData(tenantID, connID, productID, EntityType("invoice"), integration.PlatformN11)
		assert.Error(t, err)
	})

	t.Run("Unknown platform", func(t *testing.T) {
		_, err := NewPlatformData(tenantID, connID, productID, EntityTypeProduct, integration.Platform("ETSY"))
		assert.ErrorIs(t, err, integration.ErrMapperUnknownPlatform)
	})

	t.Run("Missing connection", func(t *testing.T) {
		_, err := NewPlatformData(tenantID, uuid.Nil, productID, EntityTypeProduct, integration.PlatformAmazon)
		assert.ErrorIs(t, err, integration.ErrOrderInvalidConnection)
	})
}

func TestPlatformDataRecordListing(t *testing.T) {
	d, err := NewPlatformData(uuid.New(), uuid.New(), uuid.New(), EntityTypeProduct, integration.PlatformHepsiburada)
	require.NoError(t, err)

	d.RecordListing("HB-SKU-42", decimal.RequireFromString("119.50"), 8, ListingStatusActive)
	assert.Equal(t, "HB-SKU-42", d.PlatformSKU)
	assert.Equal(t, 8, d.Quantity)
	require.NotNil(t, d.LastSyncedAt)

	t.Run("Rejects non-object data", func(t *testing.T) {
		assert.Error(t, d.SetData(`["a"]`))
		assert.NoError(t, d.SetData(`{"approved":true}`))
	})
}
