package handler

import (
	"context"

	billingapp "github.com/bahikhata/backend/internal/application/billing"
	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditHandler serves the metered message-credit counters
type CreditHandler struct {
	BaseHandler
	creditService *billingapp.CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *billingapp.CreditService) *CreditHandler {
	return &CreditHandler{creditService: creditService}
}

// RegisterRoutes registers credit routes
func (h *CreditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credits := rg.Group("/credits")
	credits.GET("", h.GetCredits)
	credits.POST("/topup", h.TopUp)
	credits.POST("/debit", h.Debit)
}

// CreditAdjustmentRequest adjusts one credit counter
type CreditAdjustmentRequest struct {
	Kind string `json:"kind" binding:"required,oneof=promotional transactional"`
	Qty  int    `json:"qty" binding:"required,min=1"`
}

// GetCredits returns both credit counters
func (h *CreditHandler) GetCredits(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	credits, err := h.creditService.GetCredits(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, credits)
}

// TopUp adds credits to a counter
func (h *CreditHandler) TopUp(c *gin.Context) {
	h.adjust(c, h.creditService.TopUp)
}

// Debit consumes credits from a counter. Insufficient credits are a 422;
// a concurrent writer exhausting the retries is a 409.
func (h *CreditHandler) Debit(c *gin.Context) {
	h.adjust(c, h.creditService.DebitCredits)
}

func (h *CreditHandler) adjust(c *gin.Context, op func(context.Context, uuid.UUID, identity.CreditKind, int) (int, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	var req CreditAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "kind and a positive qty are required")
		return
	}

	remaining, err := op(c.Request.Context(), tenantID, identity.CreditKind(req.Kind), req.Qty)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"kind":      req.Kind,
		"remaining": remaining,
	})
}
