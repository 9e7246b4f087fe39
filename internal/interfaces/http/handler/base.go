package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relove/backend/internal/domain/payment"
	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/logger"
	"github.com/relove/backend/internal/interfaces/http/dto"
	"github.com/relove/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the logging middleware
func getRequestID(c *gin.Context) string {
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getActor extracts the authenticated actor or writes a 401 response.
// Returns false when the request must not proceed.
func (h *BaseHandler) getActor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthenticated, "Missing credentials")
		return shared.Actor{}, false
	}
	return actor, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts application and domain errors to HTTP responses.
// Consistency violations and gateway failures are matched before generic
// domain errors because both carry more specific diagnostics.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var consistencyErr *shared.ConsistencyError
	if errors.As(err, &consistencyErr) {
		h.Error(c, http.StatusInternalServerError, shared.ErrCodeConsistencyViolation, consistencyErr.Error())
		return
	}

	var gatewayErr *payment.GatewayError
	if errors.As(err, &gatewayErr) {
		h.Error(c, http.StatusBadGateway, shared.ErrCodePaymentGatewayFailure, "Payment gateway request failed")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
