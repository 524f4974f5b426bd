package catalog

import (
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for product events
const (
	EventProductCreated      = "catalog.product.created"
	EventProductPriceChanged = "catalog.product.price_changed"
)

// ProductCreatedEvent is raised when a new product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductCreated, "Product", p.ID, p.TenantID),
		SKU:             p.SKU,
		Name:            p.Name,
	}
}

// ProductPriceChangedEvent is raised when product prices change. Push
// schedulers listen for it to queue price updates towards the marketplaces.
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	SKU          string          `json:"sku"`
	OldListPrice decimal.Decimal `json:"old_list_price"`
	OldSalePrice decimal.Decimal `json:"old_sale_price"`
	NewListPrice decimal.Decimal `json:"new_list_price"`
	NewSalePrice decimal.Decimal `json:"new_sale_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(p *Product, oldList, oldSale decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductPriceChanged, "Product", p.ID, p.TenantID),
		SKU:             p.SKU,
		OldListPrice:    oldList,
		OldSalePrice:    oldSale,
		NewListPrice:    p.ListPrice,
		NewSalePrice:    p.SalePrice,
	}
}
