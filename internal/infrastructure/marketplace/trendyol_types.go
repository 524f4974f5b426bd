package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Trendyol API Types
// ---------------------------------------------------------------------------

// TrendyolOrdersResponse is the paginated envelope for the shipment-packages endpoint
type TrendyolOrdersResponse struct {
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalPages    int             `json:"totalPages"`
	TotalElements int64           `json:"totalElements"`
	Content       []TrendyolOrder `json:"content"`
}

// TrendyolOrder represents a shipment package from the Trendyol API
type TrendyolOrder struct {
	ID                    int64                    `json:"id"` // shipmentPackageId
	OrderNumber           string                   `json:"orderNumber"`
	GrossAmount           float64                  `json:"grossAmount"`
	TotalDiscount         float64                  `json:"totalDiscount"`
	TotalPrice            float64                  `json:"totalPrice"`
	CustomerFirstName     string                   `json:"customerFirstName"`
	CustomerLastName      string                   `json:"customerLastName"`
	CustomerEmail         string                   `json:"customerEmail"`
	IdentityNumber        string                   `json:"identityNumber"`
	CargoTrackingNumber   int64                    `json:"cargoTrackingNumber,omitempty"`
	CargoProviderName     string                   `json:"cargoProviderName,omitempty"`
	InvoiceAddress        *TrendyolAddress         `json:"invoiceAddress,omitempty"`
	ShipmentAddress       *TrendyolAddress         `json:"shipmentAddress,omitempty"`
	Lines                 []TrendyolOrderLine      `json:"lines"`
	OrderDate             int64                    `json:"orderDate"`        // epoch ms
	LastModifiedDate      int64                    `json:"lastModifiedDate"` // epoch ms
	CurrencyCode          string                   `json:"currencyCode"`
	ShipmentPackageStatus string                   `json:"shipmentPackageStatus"`
	Status                string                   `json:"status"`
	PackageHistories      []TrendyolPackageHistory `json:"packageHistories"`
}

// TrendyolOrderLine represents one line of a Trendyol shipment package
type TrendyolOrderLine struct {
	ID            int64   `json:"id"` // orderLineId
	Quantity      int     `json:"quantity"`
	ProductName   string  `json:"productName"`
	MerchantSKU   string  `json:"merchantSku"`
	Barcode       string  `json:"barcode"`
	Price         float64 `json:"price"`
	Amount        float64 `json:"amount"`
	Discount      float64 `json:"discount"`
	VATBaseAmount float64 `json:"vatBaseAmount"`
	CurrencyCode  string  `json:"currencyCode"`
}

// TrendyolAddress represents an invoice or shipment address
type TrendyolAddress struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	FullName    string `json:"fullName"`
	FullAddress string `json:"fullAddress"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	District    string `json:"district"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Phone       int64  `json:"phone"`
}

// TrendyolPackageHistory is one status transition of a shipment package
type TrendyolPackageHistory struct {
	CreatedDate int64  `json:"createdDate"`
	Status      string `json:"status"`
}

// TrendyolBatchResponse is returned by price/stock batch endpoints
type TrendyolBatchResponse struct {
	BatchRequestID string `json:"batchRequestId"`
}

// TrendyolBatchStatusResponse reports batch item outcomes
type TrendyolBatchStatusResponse struct {
	BatchRequestID  string                    `json:"batchRequestId"`
	Status          string                    `json:"status"`
	ItemCount       int                       `json:"itemCount"`
	FailedItemCount int                       `json:"failedItemCount"`
	Items           []TrendyolBatchStatusItem `json:"items,omitempty"`
}

// TrendyolBatchStatusItem is one item outcome within a batch
type TrendyolBatchStatusItem struct {
	RequestItem    map[string]any `json:"requestItem"`
	Status         string         `json:"status"`
	FailureReasons []string       `json:"failureReasons,omitempty"`
}

// ---------------------------------------------------------------------------
// Helpers shared by the platform payload types
// ---------------------------------------------------------------------------

// epochMSToTime converts an epoch-milliseconds timestamp to time.Time.
// Zero stays the zero time so missing fields remain detectable.
func epochMSToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// floatToDecimal converts a JSON float to a decimal without accumulating
// binary-float noise in the formatted value.
func floatToDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
