package marketplace

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerhub/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Field Mapper
// ---------------------------------------------------------------------------

// mappingConfig holds everything the mapper needs for one platform: a decode
// function that parses the raw payload into a canonical order (status left
// untranslated), and the table translating platform status codes into
// canonical statuses.
type mappingConfig struct {
	decode      func(raw []byte) (*integration.CanonicalOrder, error)
	statusTable map[string]integration.OrderStatus
}

// Mapper converts raw marketplace payloads into canonical orders. It is pure:
// no I/O, no mutation of the input slice, and mapping the same payload twice
// yields structurally identical results. Tenant and connection identifiers
// are stamped by the caller, not here.
type Mapper struct {
	configs map[integration.Platform]mappingConfig
}

var _ integration.OrderMapper = (*Mapper)(nil)

// NewMapper builds a mapper with configs for every supported platform
func NewMapper() *Mapper {
	return &Mapper{
		configs: map[integration.Platform]mappingConfig{
			integration.PlatformTrendyol: {
				decode:      decodeTrendyolOrder,
				statusTable: trendyolStatusTable,
			},
			integration.PlatformN11: {
				decode:      decodeN11Order,
				statusTable: n11StatusTable,
			},
			integration.PlatformHepsiburada: {
				decode:      decodeHepsiburadaOrder,
				statusTable: hepsiburadaStatusTable,
			},
			integration.PlatformAmazon: {
				decode:      decodeAmazonOrder,
				statusTable: amazonStatusTable,
			},
		},
	}
}

// MapOrder maps a single raw order payload from the given platform into the
// canonical model. Unrecognized platform status codes map to
// OrderStatusUnknown; only structural problems (unknown platform, payload
// that is not valid JSON, missing order identifier) return an error.
func (m *Mapper) MapOrder(platform integration.Platform, raw []byte) (*integration.CanonicalOrder, error) {
	config, ok := m.configs[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrMapperUnknownPlatform, platform)
	}

	order, err := config.decode(raw)
	if err != nil {
		return nil, err
	}
	if order.ExternalOrderID == "" {
		return nil, fmt.Errorf("%w: platform %s", integration.ErrMapperMissingOrderID, platform)
	}

	order.Platform = platform
	order.Status = translateStatus(config.statusTable, order.PlatformStatus)
	if order.CurrencyCode == "" {
		order.CurrencyCode = "TRY"
	}
	order.RawData = string(raw)
	return order, nil
}

// Platforms returns the platforms this mapper has a config for
func (m *Mapper) Platforms() []integration.Platform {
	platforms := make([]integration.Platform, 0, len(m.configs))
	for platform := range m.configs {
		platforms = append(platforms, platform)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

// translateStatus looks up a platform status code case-insensitively and
// falls back to OrderStatusUnknown for codes the table does not know
func translateStatus(table map[string]integration.OrderStatus, platformStatus string) integration.OrderStatus {
	if status, ok := table[strings.ToUpper(strings.TrimSpace(platformStatus))]; ok {
		return status
	}
	return integration.OrderStatusUnknown
}

// ---------------------------------------------------------------------------
// Status translation tables
// ---------------------------------------------------------------------------

// Keys are upper-cased platform status codes.
var trendyolStatusTable = map[string]integration.OrderStatus{
	"CREATED":           integration.OrderStatusCreated,
	"AWAITING":          integration.OrderStatusCreated,
	"PICKING":           integration.OrderStatusProcessing,
	"INVOICED":          integration.OrderStatusProcessing,
	"SHIPPED":           integration.OrderStatusShipped,
	"ATCOLLECTIONPOINT": integration.OrderStatusShipped,
	"DELIVERED":         integration.OrderStatusDelivered,
	"CANCELLED":         integration.OrderStatusCancelled,
	"UNSUPPLIED":        integration.OrderStatusCancelled,
	"UNDELIVERED":       integration.OrderStatusReturned,
	"RETURNED":          integration.OrderStatusReturned,
}

var n11StatusTable = map[string]integration.OrderStatus{
	"CREATED":     integration.OrderStatusCreated,
	"APPROVED":    integration.OrderStatusCreated,
	"PICKING":     integration.OrderStatusProcessing,
	"INVOICED":    integration.OrderStatusProcessing,
	"SHIPPED":     integration.OrderStatusShipped,
	"LATESHIPPED": integration.OrderStatusShipped,
	"DELIVERED":   integration.OrderStatusDelivered,
	"CANCELLED":   integration.OrderStatusCancelled,
	"REJECTED":    integration.OrderStatusCancelled,
	"RETURNED":    integration.OrderStatusReturned,
	"CLAIMED":     integration.OrderStatusReturned,
}

var hepsiburadaStatusTable = map[string]integration.OrderStatus{
	"OPEN":                integration.OrderStatusCreated,
	"PACKAGED":            integration.OrderStatusProcessing,
	"READYTOSHIP":         integration.OrderStatusProcessing,
	"INTRANSIT":           integration.OrderStatusShipped,
	"SHIPPED":             integration.OrderStatusShipped,
	"DELIVERED":           integration.OrderStatusDelivered,
	"CANCELLEDBYCUSTOMER": integration.OrderStatusCancelled,
	"CANCELLEDBYMERCHANT": integration.OrderStatusCancelled,
	"CANCELLEDBYSAP":      integration.OrderStatusCancelled,
	"RETURNED":            integration.OrderStatusReturned,
	"CLAIMCREATED":        integration.OrderStatusReturned,
}

var amazonStatusTable = map[string]integration.OrderStatus{
	"PENDING":            integration.OrderStatusCreated,
	"UNSHIPPED":          integration.OrderStatusProcessing,
	"PARTIALLYSHIPPED":   integration.OrderStatusShipped,
	"SHIPPED":            integration.OrderStatusShipped,
	"INVOICEUNCONFIRMED": integration.OrderStatusShipped,
	"CANCELED":           integration.OrderStatusCancelled,
	"UNFULFILLABLE":      integration.OrderStatusCancelled,
}

// ---------------------------------------------------------------------------
// Trendyol decode
// ---------------------------------------------------------------------------

func decodeTrendyolOrder(raw []byte) (*integration.CanonicalOrder, error) {
	var payload TrendyolOrder
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: trendyol: %v", integration.ErrMapperMalformedJSON, err)
	}

	order := &integration.CanonicalOrder{
		ExternalOrderID: formatInt64ID(payload.ID),
		OrderNumber:     payload.OrderNumber,
		PlatformStatus:  firstNonEmpty(payload.ShipmentPackageStatus, payload.Status),
		Customer: integration.Customer{
			Email:            payload.CustomerEmail,
			FullName:         joinName(payload.CustomerFirstName, payload.CustomerLastName),
			TCIdentityNumber: payload.IdentityNumber,
		},
		BillingAddress:    trendyolAddress(payload.InvoiceAddress),
		ShippingAddress:   trendyolAddress(payload.ShipmentAddress),
		CargoProviderName: payload.CargoProviderName,
		CurrencyCode:      payload.CurrencyCode,
		TotalAmount:       floatToDecimal(payload.GrossAmount),
		TotalDiscount:     floatToDecimal(payload.TotalDiscount),
		OrderedAt:         epochMSToTime(payload.OrderDate),
		LastModifiedAt:    epochMSToTime(payload.LastModifiedDate),
	}
	if payload.CargoTrackingNumber != 0 {
		order.CargoTrackingNumber = strconv.FormatInt(payload.CargoTrackingNumber, 10)
	}
	if order.Customer.FullName == "" && payload.ShipmentAddress != nil {
		order.Customer.FullName = payload.ShipmentAddress.FullName
	}

	order.Lines = make([]integration.OrderLine, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		order.Lines = append(order.Lines, integration.OrderLine{
			ExternalLineID: formatInt64ID(line.ID),
			ProductName:    line.ProductName,
			Barcode:        line.Barcode,
			MerchantSKU:    line.MerchantSKU,
			Quantity:       line.Quantity,
			UnitPrice:      floatToDecimal(line.Price),
			Discount:       floatToDecimal(line.Discount),
			VATRate:        vatRateFromBase(line.VATBaseAmount, line.Amount),
		})
	}
	return order, nil
}

func trendyolAddress(addr *TrendyolAddress) integration.Address {
	if addr == nil {
		return integration.Address{}
	}
	fullName := addr.FullName
	if fullName == "" {
		fullName = joinName(addr.FirstName, addr.LastName)
	}
	addressLine := addr.FullAddress
	if addressLine == "" {
		addressLine = addr.Address1
	}
	phone := ""
	if addr.Phone != 0 {
		phone = strconv.FormatInt(addr.Phone, 10)
	}
	return integration.Address{
		FullName:    fullName,
		AddressLine: addressLine,
		District:    addr.District,
		City:        addr.City,
		PostalCode:  addr.PostalCode,
		CountryCode: addr.CountryCode,
		Phone:       phone,
	}
}

// vatRateFromBase derives the VAT percentage from Trendyol's vatBaseAmount
// (the tax-exclusive line amount). Returns zero when the base is missing.
func vatRateFromBase(vatBase, amount float64) decimal.Decimal {
	if vatBase <= 0 || amount <= vatBase {
		return decimal.Zero
	}
	base := decimal.NewFromFloat(vatBase)
	gross := decimal.NewFromFloat(amount)
	return gross.Sub(base).Div(base).Mul(decimal.NewFromInt(100)).Round(0)
}

// ---------------------------------------------------------------------------
// N11 decode
// ---------------------------------------------------------------------------

func decodeN11Order(raw []byte) (*integration.CanonicalOrder, error) {
	var payload N11Order
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: n11: %v", integration.ErrMapperMalformedJSON, err)
	}

	order := &integration.CanonicalOrder{
		ExternalOrderID: formatInt64ID(payload.ID),
		OrderNumber:     payload.OrderNumber,
		PlatformStatus:  firstNonEmpty(payload.ShipmentPackageStatus, payload.Status),
		Customer: integration.Customer{
			Email:            payload.CustomerEmail,
			FullName:         payload.CustomerDisplayName(),
			TCIdentityNumber: payload.TCIdentityNumber,
		},
		BillingAddress:      n11Address(payload.BillingAddress),
		ShippingAddress:     n11Address(payload.ShipmentAddress),
		CargoTrackingNumber: payload.CargoTrackingNumber,
		CargoProviderName:   payload.CargoProviderName,
		CurrencyCode:        payload.CurrencyCode,
		TotalAmount:         floatToDecimal(payload.GrossAmount),
		TotalDiscount:       floatToDecimal(payload.TotalDiscount),
		OrderedAt:           epochMSToTime(payload.OrderDate),
		LastModifiedAt:      epochMSToTime(payload.LastModifiedDate),
	}
	if order.TotalAmount.IsZero() && payload.TotalPrice != 0 {
		order.TotalAmount = floatToDecimal(payload.TotalPrice)
	}

	order.Lines = make([]integration.OrderLine, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		order.Lines = append(order.Lines, integration.OrderLine{
			ExternalLineID: formatInt64ID(line.ID),
			ProductName:    line.ProductName,
			Barcode:        line.Barcode,
			MerchantSKU:    line.MerchantSKU,
			Quantity:       line.Quantity,
			UnitPrice:      floatToDecimal(line.Price),
			Discount:       floatToDecimal(line.Discount),
			CommissionRate: floatToDecimal(line.CommissionRate),
			VATRate:        floatToDecimal(line.VATRate),
		})
	}
	return order, nil
}

func n11Address(addr *N11Address) integration.Address {
	if addr == nil {
		return integration.Address{}
	}
	return integration.Address{
		FullName:    addr.FullName,
		AddressLine: addr.FullAddress,
		District:    addr.District,
		City:        addr.City,
		PostalCode:  addr.PostalCode,
		CountryCode: addr.CountryCode,
		Phone:       addr.Phone,
	}
}

// ---------------------------------------------------------------------------
// Hepsiburada decode
// ---------------------------------------------------------------------------

func decodeHepsiburadaOrder(raw []byte) (*integration.CanonicalOrder, error) {
	var payload HepsiburadaOrder
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: hepsiburada: %v", integration.ErrMapperMalformedJSON, err)
	}

	order := &integration.CanonicalOrder{
		ExternalOrderID: payload.ID,
		OrderNumber:     payload.OrderNumber,
		PlatformStatus:  payload.Status,
		Customer: integration.Customer{
			Email:            payload.Email,
			FullName:         payload.CustomerName,
			TCIdentityNumber: payload.IdentityNo,
		},
		BillingAddress:      hepsiburadaAddress(payload.BillingAddress),
		ShippingAddress:     hepsiburadaAddress(payload.ShippingAddress),
		CargoTrackingNumber: payload.Barcode,
		CargoProviderName:   payload.CargoCompany,
		CurrencyCode:        firstNonEmpty(payload.CurrencyCode, payload.TotalPrice.Currency),
		TotalAmount:         floatToDecimal(payload.TotalPrice.Amount),
		OrderedAt:           parseRFC3339(payload.OrderDate),
		LastModifiedAt:      parseRFC3339(payload.LastStatusUpdateDate),
	}
	if order.Customer.FullName == "" && payload.ShippingAddress != nil {
		order.Customer.FullName = payload.ShippingAddress.Name
	}

	order.Lines = make([]integration.OrderLine, 0, len(payload.Items))
	for _, item := range payload.Items {
		order.Lines = append(order.Lines, integration.OrderLine{
			ExternalLineID: item.LineItemID,
			ProductName:    item.ProductName,
			Barcode:        item.HBSku,
			MerchantSKU:    item.MerchantSKU,
			Quantity:       item.Quantity,
			UnitPrice:      floatToDecimal(item.Price.Amount),
			CommissionRate: floatToDecimal(item.CommissionRate),
			VATRate:        floatToDecimal(item.VATRate),
		})
	}
	return order, nil
}

func hepsiburadaAddress(addr *HepsiburadaAddress) integration.Address {
	if addr == nil {
		return integration.Address{}
	}
	return integration.Address{
		FullName:    addr.Name,
		AddressLine: addr.AddressLine,
		District:    addr.Town,
		City:        addr.City,
		PostalCode:  addr.PostalCode,
		CountryCode: addr.CountryCode,
		Phone:       addr.PhoneNumber,
	}
}

// ---------------------------------------------------------------------------
// Amazon decode
// ---------------------------------------------------------------------------

func decodeAmazonOrder(raw []byte) (*integration.CanonicalOrder, error) {
	var payload AmazonOrder
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: amazon: %v", integration.ErrMapperMalformedJSON, err)
	}

	order := &integration.CanonicalOrder{
		ExternalOrderID: payload.AmazonOrderID,
		OrderNumber:     firstNonEmpty(payload.SellerOrderID, payload.AmazonOrderID),
		PlatformStatus:  payload.OrderStatus,
		ShippingAddress: amazonAddress(payload.ShippingAddress),
		OrderedAt:       parseRFC3339(payload.PurchaseDate),
		LastModifiedAt:  parseRFC3339(payload.LastUpdateDate),
	}
	if payload.BuyerInfo != nil {
		order.Customer.Email = payload.BuyerInfo.BuyerEmail
		order.Customer.FullName = payload.BuyerInfo.BuyerName
	}
	if order.Customer.FullName == "" && payload.ShippingAddress != nil {
		order.Customer.FullName = payload.ShippingAddress.Name
	}
	if payload.OrderTotal != nil {
		order.CurrencyCode = payload.OrderTotal.CurrencyCode
		order.TotalAmount = parseDecimalString(payload.OrderTotal.Amount)
	}

	order.Lines = make([]integration.OrderLine, 0, len(payload.OrderItems))
	for _, item := range payload.OrderItems {
		line := integration.OrderLine{
			ExternalLineID: item.OrderItemID,
			ProductName:    item.Title,
			Barcode:        item.ASIN,
			MerchantSKU:    item.SellerSKU,
			Quantity:       item.QuantityOrdered,
		}
		if item.ItemPrice != nil {
			line.UnitPrice = parseDecimalString(item.ItemPrice.Amount)
		}
		if item.PromotionDiscount != nil {
			line.Discount = parseDecimalString(item.PromotionDiscount.Amount)
		}
		order.Lines = append(order.Lines, line)
	}
	return order, nil
}

func amazonAddress(addr *AmazonAddress) integration.Address {
	if addr == nil {
		return integration.Address{}
	}
	addressLine := addr.AddressLine1
	if addr.AddressLine2 != "" {
		addressLine = strings.TrimSpace(addressLine + " " + addr.AddressLine2)
	}
	city := addr.City
	if city == "" {
		city = addr.StateOrRegion
	}
	return integration.Address{
		FullName:    addr.Name,
		AddressLine: addressLine,
		District:    addr.District,
		City:        city,
		PostalCode:  addr.PostalCode,
		CountryCode: addr.CountryCode,
		Phone:       addr.Phone,
	}
}

// ---------------------------------------------------------------------------
// Shared decode helpers
// ---------------------------------------------------------------------------

// joinName concatenates name parts, tolerating either side being empty
func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// formatInt64ID renders a numeric platform ID as a string, empty for zero
// so the missing-identifier check catches payloads without one
func formatInt64ID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// firstNonEmpty returns the first non-empty string of its arguments
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseRFC3339 parses a timestamp string, returning the zero time on failure
// so malformed optional dates degrade to "missing" instead of erroring
func parseRFC3339(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// parseDecimalString parses a decimal amount, returning zero on failure
func parseDecimalString(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
