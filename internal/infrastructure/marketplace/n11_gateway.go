package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sellerhub/backend/internal/domain/integration"
)

const n11DefaultBaseURL = "https://api.n11.com/ms"

// N11Gateway talks to the N11 marketplace service API. Authentication is the
// appkey/appsecret header pair.
type N11Gateway struct {
	client  *apiClient
	baseURL string
}

var _ integration.MarketplaceGateway = (*N11Gateway)(nil)

// NewN11Gateway creates an N11 gateway. An empty baseURL selects production.
func NewN11Gateway(baseURL string, timeout time.Duration) *N11Gateway {
	if baseURL == "" {
		baseURL = n11DefaultBaseURL
	}
	return &N11Gateway{
		client:  newAPIClient(integration.PlatformN11, timeout),
		baseURL: baseURL,
	}
}

// Platform returns the platform this gateway handles
func (g *N11Gateway) Platform() integration.Platform {
	return integration.PlatformN11
}

func (g *N11Gateway) headers(conn *integration.PlatformConnection) map[string]string {
	return map[string]string{
		"appkey":    conn.APIKey,
		"appsecret": conn.APISecret,
	}
}

// PullOrders pulls one page of order packages within the time range
func (g *N11Gateway) PullOrders(ctx context.Context, req *integration.OrderPullRequest) (*integration.OrderPullResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := requireCredentials(req.Connection, true, false); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("startDate", strconv.FormatInt(req.StartTime.UnixMilli(), 10))
	query.Set("endDate", strconv.FormatInt(req.EndTime.UnixMilli(), 10))
	query.Set("page", strconv.Itoa(req.PageNo))
	query.Set("size", strconv.Itoa(req.PageSize))

	endpoint := fmt.Sprintf("%s/order/v1/orders?%s", g.baseURL, query.Encode())
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(req.Connection), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Page          int               `json:"page"`
		Size          int               `json:"size"`
		TotalPages    int               `json:"totalPages"`
		TotalElements int64             `json:"totalElements"`
		Content       []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: n11: %v", integration.ErrPlatformInvalidResponse, err)
	}

	return rawPageResponse(envelope.Content, envelope.TotalElements, req.PageNo, envelope.TotalPages), nil
}

// GetOrder retrieves a single order package by its ID
func (g *N11Gateway) GetOrder(ctx context.Context, conn *integration.PlatformConnection, externalOrderID string) ([]byte, error) {
	if err := requireCredentials(conn, true, false); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/order/v1/orders/%s", g.baseURL, url.PathEscape(externalOrderID))
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(conn), nil)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// UpdateShipment pushes the tracking number for a shipped package
func (g *N11Gateway) UpdateShipment(ctx context.Context, conn *integration.PlatformConnection, update integration.ShipmentUpdate) error {
	if err := requireCredentials(conn, true, false); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"trackingNumber":    update.TrackingNumber,
		"shipmentCompany":   update.CargoProvider,
		"shipmentPackageId": update.ExternalOrderID,
	})
	if err != nil {
		return fmt.Errorf("%w: n11: %v", integration.ErrPlatformRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/order/v1/orders/%s/shipment", g.baseURL, url.PathEscape(update.ExternalOrderID))
	_, err = g.client.doRequest(ctx, http.MethodPut, endpoint, g.headers(conn), payload)
	return err
}

// UpdatePrices pushes listing prices. N11 reports rejections synchronously
// in the batch response.
func (g *N11Gateway) UpdatePrices(ctx context.Context, conn *integration.PlatformConnection, updates []integration.PriceUpdate) (*integration.SyncResult, error) {
	items := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		items = append(items, map[string]any{
			"sellerCode": update.Barcode,
			"listPrice":  update.ListPrice.InexactFloat64(),
			"salePrice":  update.SalePrice.InexactFloat64(),
		})
	}
	return g.submitBatch(ctx, conn, "/product/v1/price", items)
}

// UpdateStock pushes stock quantities
func (g *N11Gateway) UpdateStock(ctx context.Context, conn *integration.PlatformConnection, updates []integration.StockUpdate) (*integration.SyncResult, error) {
	items := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		items = append(items, map[string]any{
			"sellerCode": update.Barcode,
			"quantity":   update.Quantity,
		})
	}
	return g.submitBatch(ctx, conn, "/product/v1/stock", items)
}

func (g *N11Gateway) submitBatch(ctx context.Context, conn *integration.PlatformConnection, path string, items []map[string]any) (*integration.SyncResult, error) {
	if err := requireCredentials(conn, true, false); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		result := &integration.SyncResult{SyncedAt: time.Now()}
		result.Finalize()
		return result, nil
	}

	payload, err := json.Marshal(map[string]any{"payload": items})
	if err != nil {
		return nil, fmt.Errorf("%w: n11: %v", integration.ErrPlatformRequestFailed, err)
	}

	body, err := g.client.doRequest(ctx, http.MethodPost, g.baseURL+path, g.headers(conn), payload)
	if err != nil {
		return nil, err
	}

	var batch N11BatchResponse
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("%w: n11: %v", integration.ErrPlatformInvalidResponse, err)
	}

	result := &integration.SyncResult{
		TotalCount:   len(items),
		FailedCount:  len(batch.FailedItems),
		SuccessCount: len(items) - len(batch.FailedItems),
		SyncedAt:     time.Now(),
	}
	for _, failed := range batch.FailedItems {
		result.FailedItems = append(result.FailedItems, integration.SyncFailure{
			ItemID:       failed.SellerCode,
			ErrorCode:    failed.ErrorCode,
			ErrorMessage: failed.Message,
		})
	}
	result.Finalize()
	return result, nil
}
