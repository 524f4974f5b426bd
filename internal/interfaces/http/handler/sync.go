package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	integrationapp "github.com/sellerhub/backend/internal/application/integration"
	"github.com/sellerhub/backend/internal/infrastructure/scheduler"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// SyncHandler triggers order pulls and exposes recent sync jobs
type SyncHandler struct {
	BaseHandler
	connections *integrationapp.ConnectionService
	scheduler   *scheduler.SyncScheduler
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(connections *integrationapp.ConnectionService, sched *scheduler.SyncScheduler) *SyncHandler {
	return &SyncHandler{connections: connections, scheduler: sched}
}

// SyncJobResponse is the API view of a scheduled sync job
type SyncJobResponse struct {
	ID           string     `json:"id"`
	ConnectionID string     `json:"connection_id"`
	Platform     string     `json:"platform"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	RetryCount   int        `json:"retry_count"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	OperationID  string     `json:"operation_id,omitempty"`
	TotalItems   int        `json:"total_items"`
	Successful   int        `json:"successful"`
	Failed       int        `json:"failed"`
}

func toSyncJobResponse(job *scheduler.SyncJob) SyncJobResponse {
	resp := SyncJobResponse{
		ID:           job.ID.String(),
		ConnectionID: job.ConnectionID.String(),
		Platform:     job.Platform.String(),
		Status:       string(job.Status),
		Error:        job.Error,
		RetryCount:   job.RetryCount,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		TotalItems:   job.TotalItems,
		Successful:   job.Successful,
		Failed:       job.Failed,
	}
	if job.OperationID != uuid.Nil {
		resp.OperationID = job.OperationID.String()
	}
	return resp
}

// Trigger queues an immediate order pull for a connection
func (h *SyncHandler) Trigger(c *gin.Context) {
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

	job := scheduler.NewSyncJob(conn, 0)
	if err := h.scheduler.Submit(job); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrSyncAlreadyQueued):
			h.Error(c, http.StatusConflict, dto.ErrCodeConflict, "A sync for this connection is already queued or running")
		case errors.Is(err, scheduler.ErrJobQueueFull):
			h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, "Sync queue is full, try again later")
		case errors.Is(err, scheduler.ErrSchedulerNotRunning):
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Sync scheduler is not running")
		default:
			h.HandleError(c, err)
		}
		return
	}

	h.Accepted(c, toSyncJobResponse(job))
}

// Jobs returns the tenant's recent sync jobs, newest first
func (h *SyncHandler) Jobs(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeValidation, err.Error())
		return
	}
	req.Normalize()

	jobs := h.scheduler.HistoryForTenant(tenantID, req.PageSize)
	out := make([]SyncJobResponse, len(jobs))
	for i, job := range jobs {
		out[i] = toSyncJobResponse(job)
	}
	h.Success(c, out)
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/connections/:id/sync", h.Trigger)
	rg.GET("/sync/jobs", h.Jobs)
}
