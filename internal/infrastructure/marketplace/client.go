package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sellerhub/backend/internal/domain/integration"
)

const (
	// maxResponseSize caps marketplace response bodies at 10MB
	maxResponseSize = 10 * 1024 * 1024

	defaultRequestTimeout = 30 * time.Second
)

// apiClient is the HTTP plumbing shared by the marketplace gateways: one
// http.Client with a timeout, a capped response reader, and status-code
// translation into the integration sentinel errors.
type apiClient struct {
	httpClient *http.Client
	platform   integration.Platform
}

func newAPIClient(platform integration.Platform, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &apiClient{
		httpClient: &http.Client{Timeout: timeout},
		platform:   platform,
	}
}

// doRequest performs one HTTP call and returns the response body. Headers
// are applied on top of the JSON defaults, so callers can override them.
func (c *apiClient) doRequest(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: build request: %v", integration.ErrPlatformRequestFailed, c.platform, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrPlatformUnavailable, c.platform, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", integration.ErrPlatformInvalidResponse, c.platform, err)
	}

	if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *apiClient) checkStatus(statusCode int, body []byte) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s: status %d", integration.ErrPlatformAuthFailed, c.platform, statusCode)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", integration.ErrPlatformRateLimited, c.platform)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s: status %d", integration.ErrPlatformUnavailable, c.platform, statusCode)
	default:
		return fmt.Errorf("%w: %s: status %d: %s", integration.ErrPlatformRequestFailed, c.platform, statusCode, truncate(body, 512))
	}
}

// truncate shortens an error body for log-safe error messages
func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}

// requireCredentials validates that a connection carries what a gateway needs
func requireCredentials(conn *integration.PlatformConnection, needSecret, needSeller bool) error {
	if conn == nil {
		return integration.ErrPlatformNotConfigured
	}
	if !conn.IsEnabled {
		return fmt.Errorf("%w: %s", integration.ErrPlatformNotEnabled, conn.Platform)
	}
	if conn.APIKey == "" {
		return integration.ErrConnectionMissingAPIKey
	}
	if needSecret && conn.APISecret == "" {
		return fmt.Errorf("%w: %s: API secret required", integration.ErrPlatformNotConfigured, conn.Platform)
	}
	if needSeller && conn.SellerID == "" {
		return fmt.Errorf("%w: %s: seller ID required", integration.ErrPlatformNotConfigured, conn.Platform)
	}
	return nil
}
