package marketplace

// ---------------------------------------------------------------------------
// Hepsiburada API Types
// ---------------------------------------------------------------------------

// HepsiburadaOrdersResponse is the envelope for the packages listing endpoint
type HepsiburadaOrdersResponse struct {
	Offset     int                `json:"offset"`
	Limit      int                `json:"limit"`
	TotalCount int64              `json:"totalCount"`
	Items      []HepsiburadaOrder `json:"items"`
}

// HepsiburadaOrder represents a delivery package from the Hepsiburada API
type HepsiburadaOrder struct {
	ID                   string                 `json:"id"` // packageNumber
	OrderNumber          string                 `json:"orderNumber"`
	OrderDate            string                 `json:"orderDate"`            // RFC3339
	LastStatusUpdateDate string                 `json:"lastStatusUpdateDate"` // RFC3339
	Status               string                 `json:"status"`
	CustomerName         string                 `json:"customerName"`
	Email                string                 `json:"email"`
	IdentityNo           string                 `json:"identityNo,omitempty"`
	CargoCompany         string                 `json:"cargoCompany,omitempty"`
	Barcode              string                 `json:"barcode,omitempty"` // cargo barcode
	TotalPrice           HepsiburadaAmount      `json:"totalPrice"`
	ShippingAddress      *HepsiburadaAddress    `json:"shippingAddress,omitempty"`
	BillingAddress       *HepsiburadaAddress    `json:"billingAddress,omitempty"`
	Items                []HepsiburadaOrderItem `json:"items"`
	CurrencyCode         string                 `json:"currency,omitempty"`
}

// HepsiburadaOrderItem represents one line item of a package
type HepsiburadaOrderItem struct {
	LineItemID     string            `json:"lineItemId"`
	ProductName    string            `json:"productName"`
	MerchantSKU    string            `json:"merchantSku"`
	HBSku          string            `json:"hbSku"` // Hepsiburada listing SKU, used as barcode match
	Quantity       int               `json:"quantity"`
	Price          HepsiburadaAmount `json:"price"`
	TotalPrice     HepsiburadaAmount `json:"totalPrice"`
	CommissionRate float64           `json:"commissionRate"`
	VATRate        float64           `json:"vat"`
}

// HepsiburadaAmount wraps a monetary value with its currency
type HepsiburadaAmount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// HepsiburadaAddress represents a shipping or billing address
type HepsiburadaAddress struct {
	Name        string `json:"name"`
	AddressLine string `json:"address"`
	Town        string `json:"town"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}
