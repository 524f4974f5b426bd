package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sellerhub/backend/internal/domain/integration"
)

const amazonDefaultBaseURL = "https://sellingpartnerapi-eu.amazon.com"

// AmazonGateway talks to the Amazon Selling Partner API. The connection's
// API key carries the LWA access token and the seller ID carries the
// marketplace ID. SP-API pages with continuation tokens rather than page
// numbers, so the gateway keeps a small token cache to serve the
// page-numbered pull interface.
type AmazonGateway struct {
	client  *apiClient
	baseURL string

	mu     sync.Mutex
	tokens map[string]string // "connectionID:pageNo" -> NextToken
}

var _ integration.MarketplaceGateway = (*AmazonGateway)(nil)

// NewAmazonGateway creates an Amazon gateway. An empty baseURL selects the
// EU production endpoint.
func NewAmazonGateway(baseURL string, timeout time.Duration) *AmazonGateway {
	if baseURL == "" {
		baseURL = amazonDefaultBaseURL
	}
	return &AmazonGateway{
		client:  newAPIClient(integration.PlatformAmazon, timeout),
		baseURL: baseURL,
		tokens:  make(map[string]string),
	}
}

// Platform returns the platform this gateway handles
func (g *AmazonGateway) Platform() integration.Platform {
	return integration.PlatformAmazon
}

func (g *AmazonGateway) headers(conn *integration.PlatformConnection) map[string]string {
	return map[string]string{
		"x-amz-access-token": conn.APIKey,
	}
}

// PullOrders pulls one page of orders. Order items arrive from a separate
// endpoint, so each order payload is merged with its items before handing
// the raw document to the mapper.
func (g *AmazonGateway) PullOrders(ctx context.Context, req *integration.OrderPullRequest) (*integration.OrderPullResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := requireCredentials(req.Connection, false, true); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("MarketplaceIds", req.Connection.SellerID)
	query.Set("LastUpdatedAfter", req.StartTime.UTC().Format(time.RFC3339))
	query.Set("LastUpdatedBefore", req.EndTime.UTC().Format(time.RFC3339))
	query.Set("MaxResultsPerPage", strconv.Itoa(req.PageSize))
	if token := g.takeToken(req.Connection.ID.String(), req.PageNo); token != "" {
		query.Set("NextToken", token)
	}

	endpoint := fmt.Sprintf("%s/orders/v0/orders?%s", g.baseURL, query.Encode())
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(req.Connection), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Payload struct {
			Orders    []json.RawMessage `json:"Orders"`
			NextToken string            `json:"NextToken"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: amazon: %v", integration.ErrPlatformInvalidResponse, err)
	}

	rawOrders := make([][]byte, 0, len(envelope.Payload.Orders))
	for _, rawOrder := range envelope.Payload.Orders {
		merged, err := g.attachOrderItems(ctx, req.Connection, rawOrder)
		if err != nil {
			return nil, err
		}
		rawOrders = append(rawOrders, merged)
	}

	hasMore := envelope.Payload.NextToken != ""
	next := req.PageNo
	if hasMore {
		next = req.PageNo + 1
		g.storeToken(req.Connection.ID.String(), next, envelope.Payload.NextToken)
	}
	return &integration.OrderPullResponse{
		RawOrders:  rawOrders,
		TotalCount: int64(len(rawOrders)),
		HasMore:    hasMore,
		NextPageNo: next,
	}, nil
}

// GetOrder retrieves a single order merged with its line items
func (g *AmazonGateway) GetOrder(ctx context.Context, conn *integration.PlatformConnection, externalOrderID string) ([]byte, error) {
	if err := requireCredentials(conn, false, true); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/orders/v0/orders/%s", g.baseURL, url.PathEscape(externalOrderID))
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(conn), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: amazon: %v", integration.ErrPlatformInvalidResponse, err)
	}
	return g.attachOrderItems(ctx, conn, envelope.Payload)
}

// UpdateShipment confirms shipment of an order
func (g *AmazonGateway) UpdateShipment(ctx context.Context, conn *integration.PlatformConnection, update integration.ShipmentUpdate) error {
	if err := requireCredentials(conn, false, true); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"marketplaceId": conn.SellerID,
		"packageDetail": map[string]string{
			"trackingNumber": update.TrackingNumber,
			"carrierCode":    update.CargoProvider,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: amazon: %v", integration.ErrPlatformRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/orders/v0/orders/%s/shipmentConfirmation",
		g.baseURL, url.PathEscape(update.ExternalOrderID))
	_, err = g.client.doRequest(ctx, http.MethodPost, endpoint, g.headers(conn), payload)
	return err
}

// UpdatePrices patches listing prices one item at a time; SP-API has no
// synchronous batch endpoint for listings.
func (g *AmazonGateway) UpdatePrices(ctx context.Context, conn *integration.PlatformConnection, updates []integration.PriceUpdate) (*integration.SyncResult, error) {
	if err := requireCredentials(conn, false, true); err != nil {
		return nil, err
	}

	result := &integration.SyncResult{TotalCount: len(updates), SyncedAt: time.Now()}
	for _, update := range updates {
		body := map[string]any{
			"productType": "PRODUCT",
			"patches": []map[string]any{{
				"op":    "replace",
				"path":  "/attributes/purchasable_offer",
				"value": []map[string]any{{"our_price": []map[string]any{{"schedule": []map[string]any{{"value_with_tax": update.SalePrice.InexactFloat64()}}}}}},
			}},
		}
		if err := g.patchListing(ctx, conn, update.Barcode, body); err != nil {
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, integration.SyncFailure{
				ItemID:       update.Barcode,
				ErrorMessage: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}
	result.Finalize()
	return result, nil
}

// UpdateStock patches listing stock quantities one item at a time
func (g *AmazonGateway) UpdateStock(ctx context.Context, conn *integration.PlatformConnection, updates []integration.StockUpdate) (*integration.SyncResult, error) {
	if err := requireCredentials(conn, false, true); err != nil {
		return nil, err
	}

	result := &integration.SyncResult{TotalCount: len(updates), SyncedAt: time.Now()}
	for _, update := range updates {
		body := map[string]any{
			"productType": "PRODUCT",
			"patches": []map[string]any{{
				"op":    "replace",
				"path":  "/attributes/fulfillment_availability",
				"value": []map[string]any{{"fulfillment_channel_code": "DEFAULT", "quantity": update.Quantity}},
			}},
		}
		if err := g.patchListing(ctx, conn, update.Barcode, body); err != nil {
			result.FailedCount++
			result.FailedItems = append(result.FailedItems, integration.SyncFailure{
				ItemID:       update.Barcode,
				ErrorMessage: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}
	result.Finalize()
	return result, nil
}

func (g *AmazonGateway) patchListing(ctx context.Context, conn *integration.PlatformConnection, sku string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: amazon: %v", integration.ErrPlatformRequestFailed, err)
	}
	endpoint := fmt.Sprintf("%s/listings/2021-08-01/items/%s/%s?marketplaceIds=%s",
		g.baseURL, conn.SellerID, url.PathEscape(sku), url.QueryEscape(conn.SellerID))
	_, err = g.client.doRequest(ctx, http.MethodPatch, endpoint, g.headers(conn), payload)
	return err
}

// attachOrderItems merges the order's line items into the raw order document
// under the OrderItems key
func (g *AmazonGateway) attachOrderItems(ctx context.Context, conn *integration.PlatformConnection, rawOrder json.RawMessage) ([]byte, error) {
	var order map[string]json.RawMessage
	if err := json.Unmarshal(rawOrder, &order); err != nil {
		return nil, fmt.Errorf("%w: amazon: %v", integration.ErrPlatformInvalidResponse, err)
	}

	var orderID string
	if raw, ok := order["AmazonOrderId"]; ok {
		if err := json.Unmarshal(raw, &orderID); err != nil {
			return nil, fmt.Errorf("%w: amazon: %v", integration.ErrPlatformInvalidResponse, err)
		}
	}
	if orderID == "" {
		return rawOrder, nil
	}

	endpoint := fmt.Sprintf("%s/orders/v0/orders/%s/orderItems", g.baseURL, url.PathEscape(orderID))
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(conn), nil)
	if err != nil {
		return nil, err
	}

	var itemsEnvelope struct {
		Payload struct {
			OrderItems json.RawMessage `json:"OrderItems"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &itemsEnvelope); err != nil {
		return nil, fmt.Errorf("%w: amazon: %v", integration.ErrPlatformInvalidResponse, err)
	}
	if len(itemsEnvelope.Payload.OrderItems) > 0 {
		order["OrderItems"] = itemsEnvelope.Payload.OrderItems
	}
	return json.Marshal(order)
}

func (g *AmazonGateway) storeToken(connectionID string, pageNo int, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens[fmt.Sprintf("%s:%d", connectionID, pageNo)] = token
}

func (g *AmazonGateway) takeToken(connectionID string, pageNo int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := fmt.Sprintf("%s:%d", connectionID, pageNo)
	token := g.tokens[key]
	delete(g.tokens, key)
	return token
}
