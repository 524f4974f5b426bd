package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	importapp "github.com/sellerhub/backend/internal/application/import"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// maxImportFileSize caps uploaded CSV files at 10MB
const maxImportFileSize = 10 * 1024 * 1024

// ImportHandler handles CSV price and stock uploads
type ImportHandler struct {
	BaseHandler
	prices *importapp.PriceImportService
	stocks *importapp.StockImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(prices *importapp.PriceImportService, stocks *importapp.StockImportService) *ImportHandler {
	return &ImportHandler{prices: prices, stocks: stocks}
}

// Prices imports a price CSV (sku, list_price, sale_price)
func (h *ImportHandler) Prices(c *gin.Context) {
	h.runImport(c, "prices")
}

// Stock imports a stock CSV (sku, quantity)
func (h *ImportHandler) Stock(c *gin.Context) {
	h.runImport(c, "stock")
}

func (h *ImportHandler) runImport(c *gin.Context, kind string) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "file exceeds maximum size of 10MB")
		return
	}
	if !isCSVContentType(header.Header.Get("Content-Type")) {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	ctx := c.Request.Context()
	switch kind {
	case "prices":
		op, err := h.prices.Import(ctx, tenantID, file)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, op)
	case "stock":
		op, err := h.stocks.Import(ctx, tenantID, file)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, op)
	}
}

func isCSVContentType(contentType string) bool {
	switch contentType {
	case "", "text/csv", "text/plain", "application/octet-stream", "application/vnd.ms-excel":
		return true
	}
	return false
}

// RegisterRoutes registers import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	{
		imports.POST("/prices", h.Prices)
		imports.POST("/stock", h.Stock)
	}
}
