package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// Product represents a sellable item in the merchant's catalog. It is the
// local master record that marketplace listings are matched against, by
// barcode first and merchant SKU second.
type Product struct {
	shared.TenantAggregateRoot
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Barcode     string          `gorm:"type:varchar(50);index"`
	Brand       string          `gorm:"type:varchar(100)"`
	ListPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VATRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	StockQty    int             `gorm:"not null;default:0"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, sku, name string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	product := &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(strings.TrimSpace(sku)),
		Name:                name,
		ListPrice:           decimal.Zero,
		SalePrice:           decimal.Zero,
		VATRate:             decimal.Zero,
		Status:              ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, brand string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.Brand = brand
	p.Touch()
	p.IncrementVersion()

	return nil
}

// SetBarcode sets the product barcode
func (p *Product) SetBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}

	p.Barcode = barcode
	p.Touch()
	p.IncrementVersion()

	return nil
}

// SetPrices sets the list and sale prices. The sale price must not exceed
// the list price; marketplaces reject such listings.
func (p *Product) SetPrices(listPrice, salePrice decimal.Decimal) error {
	if listPrice.IsNegative() || salePrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if salePrice.GreaterThan(listPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot exceed list price")
	}

	oldList, oldSale := p.ListPrice, p.SalePrice
	p.ListPrice = listPrice
	p.SalePrice = salePrice
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldList, oldSale))

	return nil
}

// SetVATRate sets the VAT rate percentage
func (p *Product) SetVATRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}

	p.VATRate = rate
	p.Touch()
	p.IncrementVersion()

	return nil
}

// SetStock sets the available stock quantity
func (p *Product) SetStock(qty int) error {
	if qty < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock quantity cannot be negative")
	}

	p.StockQty = qty
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("CANNOT_ACTIVATE", "Cannot activate an archived product")
	}

	p.Status = ProductStatusActive
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Deactivate deactivates the product
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("CANNOT_DEACTIVATE", "Cannot deactivate an archived product")
	}

	p.Status = ProductStatusInactive
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Archive retires the product. Archived products are kept for order history
// but never matched against incoming marketplace lines.
func (p *Product) Archive() {
	p.Status = ProductStatusArchived
	p.Touch()
	p.IncrementVersion()
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 100 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 100 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 255 characters")
	}
	return nil
}
