package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerhub/backend/internal/domain/integration"
)

// ConnectionResponse is the API view of a platform connection. Credentials
// are never echoed back.
type ConnectionResponse struct {
	ID                   string     `json:"id"`
	Platform             string     `json:"platform"`
	PlatformName         string     `json:"platform_name"`
	Name                 string     `json:"name"`
	SellerID             string     `json:"seller_id,omitempty"`
	IsEnabled            bool       `json:"is_enabled"`
	SyncIntervalMinutes  int        `json:"sync_interval_minutes"`
	ConsolidationEnabled bool       `json:"consolidation_enabled"`
	LastSyncAt           *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus       string     `json:"last_sync_status"`
	LastSyncError        string     `json:"last_sync_error,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ToConnectionResponse converts a domain connection to its API view
func ToConnectionResponse(conn *integration.PlatformConnection) ConnectionResponse {
	return ConnectionResponse{
		ID:                   conn.ID.String(),
		Platform:             conn.Platform.String(),
		PlatformName:         conn.Platform.DisplayName(),
		Name:                 conn.Name,
		SellerID:             conn.SellerID,
		IsEnabled:            conn.IsEnabled,
		SyncIntervalMinutes:  conn.SyncIntervalMinutes,
		ConsolidationEnabled: conn.ConsolidationEnabled,
		LastSyncAt:           conn.LastSyncAt,
		LastSyncStatus:       string(conn.LastSyncStatus),
		LastSyncError:        conn.LastSyncError,
		CreatedAt:            conn.CreatedAt,
		UpdatedAt:            conn.UpdatedAt,
	}
}

// ToConnectionResponses converts a slice of domain connections
func ToConnectionResponses(conns []integration.PlatformConnection) []ConnectionResponse {
	out := make([]ConnectionResponse, len(conns))
	for i := range conns {
		out[i] = ToConnectionResponse(&conns[i])
	}
	return out
}

// AddressResponse is the API view of an order address
type AddressResponse struct {
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	District    string `json:"district,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
}

// OrderLineResponse is the API view of an order line
type OrderLineResponse struct {
	ProductID      *string         `json:"product_id,omitempty"`
	ExternalLineID string          `json:"external_line_id"`
	ProductName    string          `json:"product_name"`
	Barcode        string          `json:"barcode,omitempty"`
	MerchantSKU    string          `json:"merchant_sku,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Discount       decimal.Decimal `json:"discount"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	VATRate        decimal.Decimal `json:"vat_rate"`
}

// OrderResponse is the API view of a synced order
type OrderResponse struct {
	ID                  string              `json:"id"`
	ConnectionID        string              `json:"connection_id"`
	Platform            string              `json:"platform"`
	ExternalOrderID     string              `json:"external_order_id"`
	OrderNumber         string              `json:"order_number"`
	Status              string              `json:"status"`
	PlatformStatus      string              `json:"platform_status"`
	CustomerName        string              `json:"customer_name"`
	CustomerEmail       string              `json:"customer_email,omitempty"`
	ShippingAddress     AddressResponse     `json:"shipping_address"`
	BillingAddress      AddressResponse     `json:"billing_address"`
	Lines               []OrderLineResponse `json:"lines"`
	CargoTrackingNumber string              `json:"cargo_tracking_number,omitempty"`
	CargoProviderName   string              `json:"cargo_provider_name,omitempty"`
	CurrencyCode        string              `json:"currency_code"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	TotalDiscount       decimal.Decimal     `json:"total_discount"`
	OrderedAt           time.Time           `json:"ordered_at"`
	LastModifiedAt      time.Time           `json:"last_modified_at"`
	LastSyncedAt        time.Time           `json:"last_synced_at"`
	ConsolidatedGroupID *string             `json:"consolidated_group_id,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to its API view
func ToOrderResponse(order *integration.CanonicalOrder) OrderResponse {
	lines := make([]OrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		lr := OrderLineResponse{
			ExternalLineID: line.ExternalLineID,
			ProductName:    line.ProductName,
			Barcode:        line.Barcode,
			MerchantSKU:    line.MerchantSKU,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			Discount:       line.Discount,
			CommissionRate: line.CommissionRate,
			VATRate:        line.VATRate,
		}
		if line.ProductID != nil {
			id := line.ProductID.String()
			lr.ProductID = &id
		}
		lines[i] = lr
	}

	resp := OrderResponse{
		ID:                  order.ID.String(),
		ConnectionID:        order.ConnectionID.String(),
		Platform:            order.Platform.String(),
		ExternalOrderID:     order.ExternalOrderID,
		OrderNumber:         order.OrderNumber,
		Status:              string(order.Status),
		PlatformStatus:      order.PlatformStatus,
		CustomerName:        order.Customer.FullName,
		CustomerEmail:       order.Customer.Email,
		ShippingAddress:     toAddressResponse(order.ShippingAddress),
		BillingAddress:      toAddressResponse(order.BillingAddress),
		Lines:               lines,
		CargoTrackingNumber: order.CargoTrackingNumber,
		CargoProviderName:   order.CargoProviderName,
		CurrencyCode:        order.CurrencyCode,
		TotalAmount:         order.TotalAmount,
		TotalDiscount:       order.TotalDiscount,
		OrderedAt:           order.OrderedAt,
		LastModifiedAt:      order.LastModifiedAt,
		LastSyncedAt:        order.LastSyncedAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
	if order.ConsolidatedGroupID != nil {
		id := order.ConsolidatedGroupID.String()
		resp.ConsolidatedGroupID = &id
	}
	return resp
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []integration.CanonicalOrder) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func toAddressResponse(addr integration.Address) AddressResponse {
	return AddressResponse{
		FullName:    addr.FullName,
		AddressLine: addr.AddressLine,
		District:    addr.District,
		City:        addr.City,
		PostalCode:  addr.PostalCode,
		CountryCode: addr.CountryCode,
		Phone:       addr.Phone,
	}
}
