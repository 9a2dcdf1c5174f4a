package handler

import (
	ledgerapp "github.com/bahikhata/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// OutstandingHandler serves the udhaar (outstanding receivables) view
type OutstandingHandler struct {
	BaseHandler
	outstandingService *ledgerapp.OutstandingService
}

// NewOutstandingHandler creates a new OutstandingHandler
func NewOutstandingHandler(outstandingService *ledgerapp.OutstandingService) *OutstandingHandler {
	return &OutstandingHandler{outstandingService: outstandingService}
}

// RegisterRoutes registers outstanding routes
func (h *OutstandingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	outstanding := rg.Group("/outstanding")
	outstanding.GET("", h.GetOutstanding)
	outstanding.GET("/total", h.GetTotal)
	outstanding.POST("/refresh", h.Refresh)
}

// GetOutstanding lists retailers carrying udhaar or crates, largest amount
// first
func (h *OutstandingHandler) GetOutstanding(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	summaries, err := h.outstandingService.GetOutstanding(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summaries)
}

// GetTotal returns the summed outstanding amount across all retailers
func (h *OutstandingHandler) GetTotal(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	total, err := h.outstandingService.TotalOutstanding(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"total": total.String()})
}

// Refresh drops the cached view so the next read recomputes it
func (h *OutstandingHandler) Refresh(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	if err := h.outstandingService.InvalidateOutstanding(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
