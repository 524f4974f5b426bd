package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	integrationapp "github.com/sellerhub/backend/internal/application/integration"
	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// OrderHandler exposes synced orders
type OrderHandler struct {
	BaseHandler
	orders *integrationapp.OrderQueryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *integrationapp.OrderQueryService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrdersRequest holds the order list query parameters
type ListOrdersRequest struct {
	dto.ListRequest
	Platform     string `form:"platform" binding:"omitempty,platform"`
	ConnectionID string `form:"connection_id" binding:"omitempty,uuid"`
	Status       string `form:"status"`
	OrderedFrom  string `form:"ordered_from" binding:"omitempty"`
	OrderedUntil string `form:"ordered_until" binding:"omitempty"`
}

// List returns a page of orders matching the filter
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}
	req.Normalize()

	filter := integration.OrderFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Platform != "" {
		platform := integration.Platform(req.Platform)
		filter.Platform = &platform
	}
	if req.ConnectionID != "" {
		id, err := uuid.Parse(req.ConnectionID)
		if err != nil {
			h.BadRequest(c, "Invalid connection ID")
			return
		}
		filter.ConnectionID = &id
	}
	if req.Status != "" {
		status := integration.OrderStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid order status")
			return
		}
		filter.Status = &status
	}
	if req.OrderedFrom != "" {
		from, err := time.Parse(time.RFC3339, req.OrderedFrom)
		if err != nil {
			h.BadRequest(c, "ordered_from must be RFC 3339")
			return
		}
		filter.OrderedFrom = &from
	}
	if req.OrderedUntil != "" {
		until, err := time.Parse(time.RFC3339, req.OrderedUntil)
		if err != nil {
			h.BadRequest(c, "ordered_until must be RFC 3339")
			return
		}
		filter.OrderedUntil = &until
	}

	page, err := h.orders.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.ToOrderResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Get returns one order
func (h *OrderHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orders.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponse(order))
}

// Group returns all orders sharing the order's shipment group
func (h *OrderHandler) Group(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	orders, err := h.orders.ConsolidatedGroup(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToOrderResponses(orders))
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/:id/group", h.Group)
	}
}
