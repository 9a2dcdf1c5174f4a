package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/interfaces/http/dto"
	"github.com/bahikhata/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID extracts the resolved tenant ID set by the tenant middleware.
// Handlers run behind that middleware, so a missing or malformed value is a
// wiring bug and is reported as an internal error, never ignored.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString(middleware.TenantIDKey)
	if raw == "" {
		return uuid.Nil, errors.New("tenant not resolved")
	}
	return uuid.Parse(raw)
}

// getTenantSlug extracts the resolved tenant slug set by the tenant middleware
func getTenantSlug(c *gin.Context) (string, error) {
	slug := c.GetString(middleware.TenantSlugKey)
	if slug == "" {
		return "", errors.New("tenant not resolved")
	}
	return slug, nil
}

// parseDateRange converts from/to query parameters into a ledger date range
func parseDateRange(c *gin.Context) (ledger.DateRange, error) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return ledger.DateRange{}, err
	}

	var r ledger.DateRange
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return ledger.DateRange{}, err
		}
		r.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return ledger.DateRange{}, err
		}
		r.To = &to
	}
	return r, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
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

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to HTTP responses. Wrapped errors are
// unwrapped via errors.As, so service-layer annotation does not change the
// status code.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code),
			dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c)))
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
