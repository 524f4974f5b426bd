package marketplace

// ---------------------------------------------------------------------------
// Amazon Selling Partner API Types
// ---------------------------------------------------------------------------

// AmazonOrdersResponse is the envelope for the SP-API getOrders call
type AmazonOrdersResponse struct {
	Payload AmazonOrdersPayload `json:"payload"`
}

// AmazonOrdersPayload carries the order list and continuation token
type AmazonOrdersPayload struct {
	Orders    []AmazonOrder `json:"Orders"`
	NextToken string        `json:"NextToken,omitempty"`
}

// AmazonOrder represents an order from the Amazon SP-API. Amazon timestamps
// are RFC3339 strings, unlike the Turkish marketplaces' epoch milliseconds.
type AmazonOrder struct {
	AmazonOrderID   string            `json:"AmazonOrderId"`
	SellerOrderID   string            `json:"SellerOrderId,omitempty"`
	PurchaseDate    string            `json:"PurchaseDate"`
	LastUpdateDate  string            `json:"LastUpdateDate"`
	OrderStatus     string            `json:"OrderStatus"`
	OrderTotal      *AmazonMoney      `json:"OrderTotal,omitempty"`
	BuyerInfo       *AmazonBuyerInfo  `json:"BuyerInfo,omitempty"`
	ShippingAddress *AmazonAddress    `json:"ShippingAddress,omitempty"`
	OrderItems      []AmazonOrderItem `json:"OrderItems,omitempty"`
}

// AmazonMoney is an SP-API monetary value
type AmazonMoney struct {
	CurrencyCode string `json:"CurrencyCode"`
	Amount       string `json:"Amount"`
}

// AmazonBuyerInfo carries restricted buyer data
type AmazonBuyerInfo struct {
	BuyerEmail string `json:"BuyerEmail,omitempty"`
	BuyerName  string `json:"BuyerName,omitempty"`
}

// AmazonAddress is an SP-API shipping address
type AmazonAddress struct {
	Name          string `json:"Name"`
	AddressLine1  string `json:"AddressLine1,omitempty"`
	AddressLine2  string `json:"AddressLine2,omitempty"`
	City          string `json:"City,omitempty"`
	District      string `json:"District,omitempty"`
	StateOrRegion string `json:"StateOrRegion,omitempty"`
	PostalCode    string `json:"PostalCode,omitempty"`
	CountryCode   string `json:"CountryCode,omitempty"`
	Phone         string `json:"Phone,omitempty"`
}

// AmazonOrderItem represents one line of an Amazon order
type AmazonOrderItem struct {
	OrderItemID       string       `json:"OrderItemId"`
	ASIN              string       `json:"ASIN"`
	SellerSKU         string       `json:"SellerSKU"`
	Title             string       `json:"Title"`
	QuantityOrdered   int          `json:"QuantityOrdered"`
	ItemPrice         *AmazonMoney `json:"ItemPrice,omitempty"`
	PromotionDiscount *AmazonMoney `json:"PromotionDiscount,omitempty"`
}
