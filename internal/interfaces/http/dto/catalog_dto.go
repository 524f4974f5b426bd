package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerhub/backend/internal/domain/catalog"
)

// ProductResponse is the API representation of a catalog product
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	ListPrice   decimal.Decimal `json:"list_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	StockQty    int             `json:"stock_qty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its API representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		Brand:       p.Brand,
		ListPrice:   p.ListPrice,
		SalePrice:   p.SalePrice,
		VATRate:     p.VATRate,
		StockQty:    p.StockQty,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
