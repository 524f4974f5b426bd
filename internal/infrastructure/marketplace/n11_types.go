package marketplace

// ---------------------------------------------------------------------------
// N11 API Types
// ---------------------------------------------------------------------------

// N11OrdersResponse is the paginated envelope for the N11 order list endpoint
type N11OrdersResponse struct {
	Page          int        `json:"page"`
	Size          int        `json:"size"`
	TotalPages    int        `json:"totalPages"`
	TotalElements int64      `json:"totalElements"`
	Content       []N11Order `json:"content"`
}

// N11Order represents an order package from the N11 API. The shape tracks
// Trendyol's shipment-package model closely, with N11's own quirks: the
// customer name arrives as a single lower-camel "customerfullName" field on
// newer payloads, while older ones carry first/last name pairs.
type N11Order struct {
	ID                    int64               `json:"id"`
	OrderNumber           string              `json:"orderNumber"`
	GrossAmount           float64             `json:"grossAmount"`
	TotalDiscount         float64             `json:"totalDiscount"`
	TotalPrice            float64             `json:"totalPrice"`
	CustomerFullNameLower string              `json:"customerfullName,omitempty"`
	CustomerFirstName     string              `json:"customerFirstName,omitempty"`
	CustomerLastName      string              `json:"customerLastName,omitempty"`
	CustomerEmail         string              `json:"customerEmail"`
	TCIdentityNumber      string              `json:"tcIdentityNumber,omitempty"`
	CargoTrackingNumber   string              `json:"cargoTrackingNumber,omitempty"`
	CargoProviderName     string              `json:"cargoProviderName,omitempty"`
	BillingAddress        *N11Address         `json:"billingAddress,omitempty"`
	ShipmentAddress       *N11Address         `json:"shipmentAddress,omitempty"`
	Lines                 []N11OrderLine      `json:"lines"`
	OrderDate             int64               `json:"orderDate"`        // epoch ms
	LastModifiedDate      int64               `json:"lastModifiedDate"` // epoch ms
	CurrencyCode          string              `json:"currencyCode"`
	ShipmentPackageStatus string              `json:"shipmentPackageStatus"`
	Status                string              `json:"status"`
	PackageHistories      []N11PackageHistory `json:"packageHistories"`
}

// CustomerDisplayName resolves the customer name across payload generations
func (o *N11Order) CustomerDisplayName() string {
	if o.CustomerFullNameLower != "" {
		return o.CustomerFullNameLower
	}
	if o.CustomerFirstName != "" || o.CustomerLastName != "" {
		return joinName(o.CustomerFirstName, o.CustomerLastName)
	}
	if o.ShipmentAddress != nil {
		return o.ShipmentAddress.FullName
	}
	return ""
}

// N11OrderLine represents one line of an N11 order
type N11OrderLine struct {
	ID             int64   `json:"id"`
	Quantity       int     `json:"quantity"`
	ProductName    string  `json:"productName"`
	MerchantSKU    string  `json:"merchantSku"`
	Barcode        string  `json:"barcode"`
	Price          float64 `json:"price"`
	Discount       float64 `json:"discount"`
	CommissionRate float64 `json:"commissionRate"`
	VATRate        float64 `json:"vatRate"`
}

// N11Address represents a billing or shipment address
type N11Address struct {
	FullName    string `json:"fullName"`
	FullAddress string `json:"fullAddress"`
	District    string `json:"district"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
}

// N11PackageHistory is one status transition of an order package
type N11PackageHistory struct {
	CreatedDate int64  `json:"createdDate"`
	Status      string `json:"status"`
}

// N11BatchResponse is returned by N11 price/stock update endpoints
type N11BatchResponse struct {
	ID          string               `json:"id"`
	Status      string               `json:"status"`
	FailedItems []N11BatchFailedItem `json:"failedItems,omitempty"`
}

// N11BatchFailedItem is one rejected item in a batch update
type N11BatchFailedItem struct {
	SellerCode string `json:"sellerCode"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
}
