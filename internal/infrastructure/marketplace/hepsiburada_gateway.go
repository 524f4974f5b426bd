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

const (
	hepsiburadaDefaultOMSBaseURL     = "https://oms-external.hepsiburada.com"
	hepsiburadaDefaultListingBaseURL = "https://listing-external.hepsiburada.com"
)

// HepsiburadaGateway talks to the Hepsiburada OMS and listing APIs.
// Authentication is HTTP Basic with the merchant ID and service secret, and
// the API requires the merchant ID as the User-Agent.
type HepsiburadaGateway struct {
	client         *apiClient
	omsBaseURL     string
	listingBaseURL string
}

var _ integration.MarketplaceGateway = (*HepsiburadaGateway)(nil)

// NewHepsiburadaGateway creates a Hepsiburada gateway. Empty base URLs
// select production.
func NewHepsiburadaGateway(omsBaseURL, listingBaseURL string, timeout time.Duration) *HepsiburadaGateway {
	if omsBaseURL == "" {
		omsBaseURL = hepsiburadaDefaultOMSBaseURL
	}
	if listingBaseURL == "" {
		listingBaseURL = hepsiburadaDefaultListingBaseURL
	}
	return &HepsiburadaGateway{
		client:         newAPIClient(integration.PlatformHepsiburada, timeout),
		omsBaseURL:     omsBaseURL,
		listingBaseURL: listingBaseURL,
	}
}

// Platform returns the platform this gateway handles
func (g *HepsiburadaGateway) Platform() integration.Platform {
	return integration.PlatformHepsiburada
}

func (g *HepsiburadaGateway) headers(conn *integration.PlatformConnection) map[string]string {
	token := base64.StdEncoding.EncodeToString([]byte(conn.APIKey + ":" + conn.APISecret))
	return map[string]string{
		"Authorization": "Basic " + token,
		"User-Agent":    conn.SellerID,
	}
}

// PullOrders pulls one page of delivery packages. Hepsiburada pages with
// offset/limit rather than page numbers.
func (g *HepsiburadaGateway) PullOrders(ctx context.Context, req *integration.OrderPullRequest) (*integration.OrderPullResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := requireCredentials(req.Connection, true, true); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("begindate", req.StartTime.UTC().Format(time.RFC3339))
	query.Set("enddate", req.EndTime.UTC().Format(time.RFC3339))
	query.Set("offset", strconv.Itoa(req.PageNo*req.PageSize))
	query.Set("limit", strconv.Itoa(req.PageSize))

	endpoint := fmt.Sprintf("%s/packages/merchantid/%s?%s", g.omsBaseURL, req.Connection.SellerID, query.Encode())
	body, err := g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(req.Connection), nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Offset     int               `json:"offset"`
		Limit      int               `json:"limit"`
		TotalCount int64             `json:"totalCount"`
		Items      []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: hepsiburada: %v", integration.ErrPlatformInvalidResponse, err)
	}

	rawOrders := make([][]byte, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		rawOrders = append(rawOrders, []byte(raw))
	}
	consumed := int64(req.PageNo*req.PageSize + len(envelope.Items))
	hasMore := consumed < envelope.TotalCount
	next := req.PageNo
	if hasMore {
		next = req.PageNo + 1
	}
	return &integration.OrderPullResponse{
		RawOrders:  rawOrders,
		TotalCount: envelope.TotalCount,
		HasMore:    hasMore,
		NextPageNo: next,
	}, nil
}

// GetOrder retrieves a single package by its package number
func (g *HepsiburadaGateway) GetOrder(ctx context.Context, conn *integration.PlatformConnection, externalOrderID string) ([]byte, error) {
	if err := requireCredentials(conn, true, true); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/packages/merchantid/%s/packagenumber/%s",
		g.omsBaseURL, conn.SellerID, url.PathEscape(externalOrderID))
	return g.client.doRequest(ctx, http.MethodGet, endpoint, g.headers(conn), nil)
}

// UpdateShipment reports the carrier and tracking number for a package
func (g *HepsiburadaGateway) UpdateShipment(ctx context.Context, conn *integration.PlatformConnection, update integration.ShipmentUpdate) error {
	if err := requireCredentials(conn, true, true); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{
		"packageNumber":  update.ExternalOrderID,
		"trackingNumber": update.TrackingNumber,
		"cargoCompany":   update.CargoProvider,
	})
	if err != nil {
		return fmt.Errorf("%w: hepsiburada: %v", integration.ErrPlatformRequestFailed, err)
	}

	endpoint := fmt.Sprintf("%s/packages/merchantid/%s/intransit", g.omsBaseURL, conn.SellerID)
	_, err = g.client.doRequest(ctx, http.MethodPost, endpoint, g.headers(conn), payload)
	return err
}

// UpdatePrices pushes listing prices through the listing API. Hepsiburada
// accepts the upload and reports per-item rejections in the response.
func (g *HepsiburadaGateway) UpdatePrices(ctx context.Context, conn *integration.PlatformConnection, updates []integration.PriceUpdate) (*integration.SyncResult, error) {
	items := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		items = append(items, map[string]any{
			"hepsiburadaSku": update.Barcode,
			"price":          update.SalePrice.InexactFloat64(),
		})
	}
	return g.submitListingUpdate(ctx, conn, "/listings/merchantid/%s/price-uploads", items)
}

// UpdateStock pushes stock quantities through the listing API
func (g *HepsiburadaGateway) UpdateStock(ctx context.Context, conn *integration.PlatformConnection, updates []integration.StockUpdate) (*integration.SyncResult, error) {
	items := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		items = append(items, map[string]any{
			"hepsiburadaSku":    update.Barcode,
			"availableStock":    update.Quantity,
			"dispatchTimeInDay": 1,
		})
	}
	return g.submitListingUpdate(ctx, conn, "/listings/merchantid/%s/stock-uploads", items)
}

func (g *HepsiburadaGateway) submitListingUpdate(ctx context.Context, conn *integration.PlatformConnection, pathFormat string, items []map[string]any) (*integration.SyncResult, error) {
	if err := requireCredentials(conn, true, true); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		result := &integration.SyncResult{SyncedAt: time.Now()}
		result.Finalize()
		return result, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: hepsiburada: %v", integration.ErrPlatformRequestFailed, err)
	}

	endpoint := g.listingBaseURL + fmt.Sprintf(pathFormat, conn.SellerID)
	body, err := g.client.doRequest(ctx, http.MethodPost, endpoint, g.headers(conn), payload)
	if err != nil {
		return nil, err
	}

	var upload struct {
		ID     string `json:"id"`
		Errors []struct {
			SKU     string `json:"hepsiburadaSku"`
			Message string `json:"message"`
		} `json:"errors,omitempty"`
	}
	if err := json.Unmarshal(body, &upload); err != nil {
		return nil, fmt.Errorf("%w: hepsiburada: %v", integration.ErrPlatformInvalidResponse, err)
	}

	result := &integration.SyncResult{
		TotalCount:   len(items),
		FailedCount:  len(upload.Errors),
		SuccessCount: len(items) - len(upload.Errors),
		SyncedAt:     time.Now(),
	}
	for _, itemErr := range upload.Errors {
		result.FailedItems = append(result.FailedItems, integration.SyncFailure{
			ItemID:       itemErr.SKU,
			ErrorMessage: itemErr.Message,
		})
	}
	result.Finalize()
	return result, nil
}
