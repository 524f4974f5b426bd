package integration

// ---------------------------------------------------------------------------
// Platform represents a supported marketplace
// ---------------------------------------------------------------------------

// Platform identifies an external marketplace
type Platform string

const (
	// PlatformTrendyol represents the Trendyol marketplace
	PlatformTrendyol Platform = "TRENDYOL"
	// PlatformN11 represents the N11 marketplace
	PlatformN11 Platform = "N11"
	// PlatformHepsiburada represents the Hepsiburada marketplace
	PlatformHepsiburada Platform = "HEPSIBURADA"
	// PlatformAmazon represents the Amazon marketplace
	PlatformAmazon Platform = "AMAZON"
)

// IsValid returns true if the platform is supported
func (p Platform) IsValid() bool {
	switch p {
	case PlatformTrendyol, PlatformN11, PlatformHepsiburada, PlatformAmazon:
		return true
	default:
		return false
	}
}

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the platform
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTrendyol:
		return "Trendyol"
	case PlatformN11:
		return "N11"
	case PlatformHepsiburada:
		return "Hepsiburada"
	case PlatformAmazon:
		return "Amazon"
	default:
		return string(p)
	}
}

// AllPlatforms returns every supported platform
func AllPlatforms() []Platform {
	return []Platform{PlatformTrendyol, PlatformN11, PlatformHepsiburada, PlatformAmazon}
}

// ---------------------------------------------------------------------------
// OrderStatus represents the canonical order status
// ---------------------------------------------------------------------------

// OrderStatus is the internal normalized order status. Every marketplace
// status code translates into one of these values; codes the translation
// table does not know map to OrderStatusUnknown rather than failing.
type OrderStatus string

const (
	// OrderStatusCreated indicates the order was placed and awaits processing
	OrderStatusCreated OrderStatus = "created"
	// OrderStatusProcessing indicates the order is being picked/packed
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the package was handed to the carrier
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the package reached the buyer
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusReturned indicates the order was returned by the buyer
	OrderStatusReturned OrderStatus = "returned"
	// OrderStatusUnknown is the fallback for unmapped platform status codes
	OrderStatusUnknown OrderStatus = "unknown"
)

// IsValid returns true if the status is a defined canonical status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned,
		OrderStatusUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsFinal returns true if the status is a terminal state
func (s OrderStatus) IsFinal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned, OrderStatusUnknown:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// SyncStatus
// ---------------------------------------------------------------------------

// SyncStatus represents the result of a synchronization attempt
type SyncStatus string

const (
	// SyncStatusPending indicates sync is pending
	SyncStatusPending SyncStatus = "PENDING"
	// SyncStatusInProgress indicates sync is in progress
	SyncStatusInProgress SyncStatus = "IN_PROGRESS"
	// SyncStatusSuccess indicates sync was successful
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates partial sync success
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates sync failed
	SyncStatusFailed SyncStatus = "FAILED"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusInProgress, SyncStatusSuccess, SyncStatusPartial, SyncStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}
