package handler

import (
	"github.com/gin-gonic/gin"

	integrationapp "github.com/sellerhub/backend/internal/application/integration"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// ConnectionHandler manages marketplace connection endpoints
type ConnectionHandler struct {
	BaseHandler
	connections *integrationapp.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connections *integrationapp.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

// CreateConnectionRequest is the request body for connecting a marketplace
type CreateConnectionRequest struct {
	Platform             string `json:"platform" binding:"required,platform"`
	Name                 string `json:"name" binding:"required,min=1,max=100"`
	SellerID             string `json:"seller_id" binding:"max=50"`
	APIKey               string `json:"api_key" binding:"required"`
	APISecret            string `json:"api_secret"`
	SyncIntervalMinutes  int    `json:"sync_interval_minutes" binding:"omitempty,min=1,max=1440"`
	ConsolidationEnabled bool   `json:"consolidation_enabled"`
}

// UpdateConnectionRequest is the request body for updating a connection
type UpdateConnectionRequest struct {
	Name                 *string `json:"name" binding:"omitempty,min=1,max=100"`
	SellerID             *string `json:"seller_id" binding:"omitempty,max=50"`
	APIKey               *string `json:"api_key"`
	APISecret            *string `json:"api_secret"`
	SyncIntervalMinutes  *int    `json:"sync_interval_minutes" binding:"omitempty,min=1,max=1440"`
	ConsolidationEnabled *bool   `json:"consolidation_enabled"`
}

// Create connects a marketplace account
func (h *ConnectionHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	conn, err := h.connections.Create(c.Request.Context(), tenantID, integrationapp.CreateConnectionInput{
		Platform:             req.Platform,
		Name:                 req.Name,
		SellerID:             req.SellerID,
		APIKey:               req.APIKey,
		APISecret:            req.APISecret,
		SyncIntervalMinutes:  req.SyncIntervalMinutes,
		ConsolidationEnabled: req.ConsolidationEnabled,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ToConnectionResponse(conn))
}

// List returns all connections of the tenant
func (h *ConnectionHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	conns, err := h.connections.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToConnectionResponses(conns))
}

// Get returns one connection
func (h *ConnectionHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	conn, err := h.connections.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToConnectionResponse(conn))
}

// Update applies partial changes to a connection
func (h *ConnectionHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	var req UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}

	conn, err := h.connections.Update(c.Request.Context(), tenantID, id, integrationapp.UpdateConnectionInput{
		Name:                 req.Name,
		SellerID:             req.SellerID,
		APIKey:               req.APIKey,
		APISecret:            req.APISecret,
		SyncIntervalMinutes:  req.SyncIntervalMinutes,
		ConsolidationEnabled: req.ConsolidationEnabled,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToConnectionResponse(conn))
}

// Enable turns scheduled syncing on
func (h *ConnectionHandler) Enable(c *gin.Context) {
	h.toggle(c, true)
}

// Disable pauses scheduled syncing
func (h *ConnectionHandler) Disable(c *gin.Context) {
	h.toggle(c, false)
}

func (h *ConnectionHandler) toggle(c *gin.Context, enabled bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	if enabled {
		updated, err := h.connections.Enable(c.Request.Context(), tenantID, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, dto.ToConnectionResponse(updated))
		return
	}
	updated, err := h.connections.Disable(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToConnectionResponse(updated))
}

// Delete removes a connection
func (h *ConnectionHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid connection ID")
		return
	}

	if err := h.connections.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers connection routes
func (h *ConnectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conns := rg.Group("/connections")
	{
		conns.POST("", h.Create)
		conns.GET("", h.List)
		conns.GET("/:id", h.Get)
		conns.PATCH("/:id", h.Update)
		conns.POST("/:id/enable", h.Enable)
		conns.POST("/:id/disable", h.Disable)
		conns.DELETE("/:id", h.Delete)
	}
}
