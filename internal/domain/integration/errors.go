package integration

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformNotEnabled      = errors.New("integration: platform not enabled")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")

	// Mapper errors
	ErrMapperUnknownPlatform = errors.New("integration: no mapping config for platform")
	ErrMapperMalformedJSON   = errors.New("integration: malformed platform payload")
	ErrMapperMissingOrderID  = errors.New("integration: platform payload missing order identifier")

	// Order errors
	ErrOrderNotFound         = errors.New("integration: order not found")
	ErrOrderInvalidTenantID  = errors.New("integration: invalid tenant ID")
	ErrOrderInvalidConnection = errors.New("integration: invalid connection ID")
	ErrOrderMissingExternalID = errors.New("integration: missing external order ID")

	// Connection errors
	ErrConnectionNotFound      = errors.New("integration: platform connection not found")
	ErrConnectionAlreadyExists = errors.New("integration: connection already exists for platform")
	ErrConnectionInvalidName   = errors.New("integration: connection name is required")
	ErrConnectionMissingAPIKey = errors.New("integration: connection API key is required")
)
