package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sellerhub/backend/internal/application/bulkop"
	syncapp "github.com/sellerhub/backend/internal/application/sync"
	"github.com/sellerhub/backend/internal/domain/bulk"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// OperationHandler exposes bulk operation tracking: listing, live progress,
// cancellation and resuming interrupted syncs.
type OperationHandler struct {
	BaseHandler
	operations *bulkop.Service
	syncs      *syncapp.OrderSyncService
}

// NewOperationHandler creates a new OperationHandler
func NewOperationHandler(operations *bulkop.Service, syncs *syncapp.OrderSyncService) *OperationHandler {
	return &OperationHandler{operations: operations, syncs: syncs}
}

// ListOperationsRequest holds the operation list query parameters
type ListOperationsRequest struct {
	dto.ListRequest
	Type   string `form:"type"`
	Status string `form:"status"`
}

// List returns a page of bulk operations
func (h *OperationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListOperationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}
	req.Normalize()

	filter := bulk.OperationFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Type != "" {
		opType := bulk.OperationType(req.Type)
		if !opType.IsValid() {
			h.BadRequest(c, "Invalid operation type")
			return
		}
		filter.Type = &opType
	}
	if req.Status != "" {
		status := bulk.OperationStatus(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid operation status")
			return
		}
		filter.Status = &status
	}

	page, err := h.operations.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one operation with its per-item errors and warnings
func (h *OperationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	op, err := h.operations.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// Progress returns the live progress snapshot of an operation
func (h *OperationHandler) Progress(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	snapshot, err := h.operations.Progress(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// Cancel requests cancellation of a running operation. The owning sync run
// observes the stored status between chunks and stops.
func (h *OperationHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	op, err := h.operations.Cancel(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// Resume continues an interrupted order sync from its last checkpoint
func (h *OperationHandler) Resume(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	op, err := h.syncs.Resume(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}

// Delete removes a finished operation record
func (h *OperationHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid operation ID")
		return
	}

	if err := h.operations.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers operation routes
func (h *OperationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ops := rg.Group("/operations")
	{
		ops.GET("", h.List)
		ops.GET("/:id", h.Get)
		ops.GET("/:id/progress", h.Progress)
		ops.POST("/:id/cancel", h.Cancel)
		ops.POST("/:id/resume", h.Resume)
		ops.DELETE("/:id", h.Delete)
	}
}
