package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sellerhub/backend/internal/domain/integration"
	"github.com/sellerhub/backend/internal/domain/shared"
	csvimport "github.com/sellerhub/backend/internal/infrastructure/import"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
	"github.com/sellerhub/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the tenant ID set by the tenant middleware
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantID := middleware.GetTenantID(c)
	if tenantID == uuid.Nil {
		return uuid.Nil, errors.New("tenant ID not found in context")
	}
	return tenantID, nil
}

// parseIDParam parses a UUID path parameter
func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 response for work that continues in the background
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// sentinelMapping maps well-known sentinel errors to API error codes
var sentinelMapping = []struct {
	err  error
	code string
}{
	{integration.ErrConnectionNotFound, dto.ErrCodeNotFound},
	{integration.ErrOrderNotFound, dto.ErrCodeNotFound},
	{integration.ErrConnectionAlreadyExists, dto.ErrCodeAlreadyExists},
	{integration.ErrPlatformNotEnabled, dto.ErrCodeInvalidState},
	{integration.ErrPlatformNotConfigured, dto.ErrCodeInvalidState},
	{integration.ErrMapperUnknownPlatform, dto.ErrCodeInvalidInput},
	{integration.ErrConnectionInvalidName, dto.ErrCodeInvalidInput},
	{integration.ErrConnectionMissingAPIKey, dto.ErrCodeInvalidInput},
	{integration.ErrOrderInvalidTenantID, dto.ErrCodeInvalidInput},
	{integration.ErrPlatformUnavailable, dto.ErrCodePlatformUnavailable},
	{integration.ErrPlatformRequestFailed, dto.ErrCodePlatformUnavailable},
	{integration.ErrPlatformInvalidResponse, dto.ErrCodePlatformUnavailable},
	{integration.ErrPlatformAuthFailed, dto.ErrCodePlatformAuthFailed},
	{integration.ErrPlatformRateLimited, dto.ErrCodePlatformRateLimited},
	{csvimport.ErrEmptyFile, dto.ErrCodeValidation},
	{csvimport.ErrInvalidEncoding, dto.ErrCodeValidation},
	{csvimport.ErrMissingHeader, dto.ErrCodeValidation},
	{csvimport.ErrMissingColumns, dto.ErrCodeValidation},
}

// HandleError converts domain and sentinel errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	for _, m := range sentinelMapping {
		if errors.Is(err, m.err) {
			c.JSON(dto.GetHTTPStatus(m.code), dto.NewErrorResponseWithRequestID(m.code, err.Error(), requestID))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}
