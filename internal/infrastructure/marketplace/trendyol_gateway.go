package marketplace

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sellerhub/backend/internal/domain/integration"
)

const trendyolDefaultBaseURL = "https://api.trendyol.com/sapigw"

// TrendyolGateway talks to the Trendyol supplier API. Authentication is
// HTTP Basic with the API key/secret pair; every endpoint is scoped by the
// supplier (seller) ID in the path.
type TrendyolGateway struct {
	client  *apiClient
	baseURL string
}

var _ integration.MarketplaceGateway = (*TrendyolGateway)(nil)

// NewTrendyolGateway creates a Trendyol gateway. An empty baseURL selects
// the production endpoint; tests point it at a local server.
func NewTrendyolGateway(baseURL string, timeout time.Duration) *TrendyolGateway {
	if baseURL == "" {
		baseURL = trendyolDefaultBaseURL
	}
	return &TrendyolGateway{
		client:  newAPIClient(integration.PlatformTrendyol, timeout),
		baseURL: baseURL,
	}
}

// Platform returns the platform this gateway handles
func (g *TrendyolGateway) Platform() integration.Platform {
	return integration.PlatformTrendyol
}

func (g *TrendyolGateway) headers(conn *integration.PlatformConnection) map[string]string {
	token := base64.StdEncoding.EncodeToString([]byte(conn.APIKey + ":" + conn.APISecret))
	return map[string]string{
		"Authorization": "Basic " + token,
		"User-Agent":    conn.SellerID + " - SelfIntegration",
	}
}

// PullOrders pulls one page of shipment packages within the time range
func (g *TrendyolGateway) PullOrders(ctx context.Context, req *integration.OrderPullRequest) (*integration.OrderPullResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := requireCredentials(req.Connection, true, true); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("startDate", strconv.FormatInt(req.StartTime.UnixMilli(), 10))
	query.Set("endDate", strconv.FormatInt(req.EndTime.UnixMilli(), 10))
	query.Set("page", strconv.Itoa(req.PageNo))
	query.Set("size", strconv.Itoa(req.PageSize))
	query.Set("orderByField", "LastModifiedDate")
	query.Set("orderByDirection", "ASC")

	endpoint := fmt.Sprintf("%s/suppliers/%s/orders?%s", g.baseURL, req.Connection.SellerID, query.Encode())
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(req.Connection), nil)
	if err != nil {
		return nil, err
	}

	// content is kept raw; the field mapper owns per-order decoding
	var envelope struct {
		Page          int               `json:"page"`
		Size          int               `json:"size"`
		TotalPages    int               `json:"totalPages"`
		TotalElements int64             `json:"totalElements"`
		Content       []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: trendyol: %v", integration.ErrPlatformInvalidResponse, err)
	}

	return rawPageResponse(envelope.Content, envelope.TotalElements, req.PageNo, envelope.TotalPages), nil
}

// GetOrder retrieves a single shipment package by its package ID
func (g *TrendyolGateway) GetOrder(ctx context.Context, conn *integration.PlatformConnection, externalOrderID string) ([]byte, error) {
	if err := requireCredentials(conn, true, true); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("shipmentPackageIds", externalOrderID)
	endpoint := fmt.Sprintf("%s/suppliers/%s/orders?%s", g.baseURL, conn.SellerID, query.Encode())

	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(conn), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: trendyol: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if len(envelope.Content) == 0 {
		return nil, fmt.Errorf("%w: trendyol package %s", integration.ErrOrderNotFound, externalOrderID)
	}
	return envelope.Content[0], nil
}

// UpdateShipment pushes the tracking number onto a shipment package
func (g *TrendyolGateway) UpdateShipment(ctx context.Context, conn *integration.PlatformConnection, update integration.ShipmentUpdate) error {
	if err := requireCredentials(conn, true, true); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"trackingNumber": update.TrackingNumber,
	})
	if err != nil {
		return fmt.Errorf("%w: trendyol: %v", integration.ErrPlatformRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/suppliers/%s/%s/update-tracking-number", g.baseURL, conn.SellerID, update.ExternalOrderID)
	_, err = g.client.doRequest(ctx, http.MethodPut, endpoint, g.headers(conn), payload)
	return err
}

// UpdatePrices pushes listing prices as one batch request. Trendyol processes
// batches asynchronously; the batch status is polled to collect rejections.
func (g *TrendyolGateway) UpdatePrices(ctx context.Context, conn *integration.PlatformConnection, updates []integration.PriceUpdate) (*integration.SyncResult, error) {
	items := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		items = append(items, map[string]any{
			"barcode":   update.Barcode,
			"listPrice": update.ListPrice.InexactFloat64(),
			"salePrice": update.SalePrice.InexactFloat64(),
		})
	}
	return g.submitBatch(ctx, conn, items, len(updates))
}

// UpdateStock pushes stock quantities as one batch request
func (g *TrendyolGateway) UpdateStock(ctx context.Context, conn *integration.PlatformConnection, updates []integration.StockUpdate) (*integration.SyncResult, error) {
	items := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		items = append(items, map[string]any{
			"barcode":  update.Barcode,
			"quantity": update.Quantity,
		})
	}
	return g.submitBatch(ctx, conn, items, len(updates))
}

func (g *TrendyolGateway) submitBatch(ctx context.Context, conn *integration.PlatformConnection, items []map[string]any, total int) (*integration.SyncResult, error) {
	if err := requireCredentials(conn, true, true); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		result := &integration.SyncResult{SyncedAt: time.Now()}
		result.Finalize()
		return result, nil
	}

	payload, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("%w: trendyol: %v", integration.ErrPlatformRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/suppliers/%s/products/price-and-inventory", g.baseURL, conn.SellerID)
	body, err := g.client.doRequest(ctx, http.MethodPost, endpoint, g.headers(conn), payload)
	if err != nil {
		return nil, err
	}

	var batch TrendyolBatchResponse
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("%w: trendyol: %v", integration.ErrPlatformInvalidResponse, err)
	}

	status, err := g.fetchBatchStatus(ctx, conn, batch.BatchRequestID)
	if err != nil {
		return nil, err
	}

	result := &integration.SyncResult{
		TotalCount:   total,
		FailedCount:  status.FailedItemCount,
		SuccessCount: total - status.FailedItemCount,
		SyncedAt:     time.Now(),
	}
	for _, item := range status.Items {
		if item.Status != "FAILED" {
			continue
		}
		failure := integration.SyncFailure{ItemID: batchItemBarcode(item)}
		if len(item.FailureReasons) > 0 {
			failure.ErrorMessage = item.FailureReasons[0]
		}
		result.FailedItems = append(result.FailedItems, failure)
	}
	result.Finalize()
	return result, nil
}

func (g *TrendyolGateway) fetchBatchStatus(ctx context.Context, conn *integration.PlatformConnection, batchRequestID string) (*TrendyolBatchStatusResponse, error) {
	endpoint := fmt.Sprintf("%s/suppliers/%s/products/batch-requests/%s", g.baseURL, conn.SellerID, batchRequestID)
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(conn), nil)
	if err != nil {
		return nil, err
	}

	var status TrendyolBatchStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: trendyol: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return &status, nil
}

func batchItemBarcode(item TrendyolBatchStatusItem) string {
	if barcode, ok := item.RequestItem["barcode"].(string); ok {
		return barcode
	}
	return ""
}

// rawPageResponse assembles the common page envelope shared by the
// page-numbered marketplace listings
func rawPageResponse(content []json.RawMessage, totalElements int64, pageNo, totalPages int) *integration.OrderPullResponse {
	rawOrders := make([][]byte, 0, len(content))
	for _, raw := range content {
		rawOrders = append(rawOrders, []byte(raw))
	}
	hasMore := pageNo+1 < totalPages
	next := pageNo
	if hasMore {
		next = pageNo + 1
	}
	return &integration.OrderPullResponse{
		RawOrders:  rawOrders,
		TotalCount: totalElements,
		HasMore:    hasMore,
		NextPageNo: next,
	}
}
