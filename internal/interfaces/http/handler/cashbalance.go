package handler

import (
	"errors"
	"net/http"

	ledgerapp "github.com/bahikhata/backend/internal/application/ledger"
	"github.com/bahikhata/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CashBalanceHandler serves the authoritative cash-balance scalar. Writes go
// through check-and-set: the client sends the value it last read, and a 409
// with the currently stored value means someone else wrote first.
type CashBalanceHandler struct {
	BaseHandler
	cashService *ledgerapp.CashBalanceService
}

// NewCashBalanceHandler creates a new CashBalanceHandler
func NewCashBalanceHandler(cashService *ledgerapp.CashBalanceService) *CashBalanceHandler {
	return &CashBalanceHandler{cashService: cashService}
}

// RegisterRoutes registers cash-balance routes
func (h *CashBalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cash := rg.Group("/cash-balance")
	cash.GET("", h.GetCashBalance)
	cash.PUT("", h.UpdateCashBalance)
	cash.POST("/seed", h.SeedCashBalance)
}

// CashBalanceResponse represents the stored cash balance
type CashBalanceResponse struct {
	Value  string `json:"value"`
	Seeded bool   `json:"seeded"`
}

// UpdateCashBalanceRequest carries a conditional balance write. Known is the
// value the caller last read; the write succeeds only if it still matches.
type UpdateCashBalanceRequest struct {
	Value string `json:"value" binding:"required"`
	Known string `json:"known" binding:"required"`
}

// GetCashBalance returns the stored cash balance
func (h *CashBalanceHandler) GetCashBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	balance, err := h.cashService.GetCashBalance(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CashBalanceResponse{
		Value:  balance.Value.String(),
		Seeded: balance.Seeded,
	})
}

// UpdateCashBalance conditionally writes a new cash balance
func (h *CashBalanceHandler) UpdateCashBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	var req UpdateCashBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Both value and known are required")
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		h.BadRequest(c, "value is not a valid decimal")
		return
	}
	known, err := decimal.NewFromString(req.Known)
	if err != nil {
		h.BadRequest(c, "known is not a valid decimal")
		return
	}

	current, err := h.cashService.UpdateCashBalance(c.Request.Context(), tenantID, value, known)
	if err != nil {
		var conflict *ledgerapp.ConflictError
		if errors.As(err, &conflict) {
			// Hand the fresh value back so the client can retry without a
			// separate read.
			c.JSON(http.StatusConflict, dto.NewConflictResponse(
				"Cash balance was changed by another writer",
				getRequestID(c),
				conflict.Current.String(),
			))
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, CashBalanceResponse{Value: current.String(), Seeded: true})
}

// SeedCashBalance recovers an unseeded balance from the full cashbook. A
// balance that is already seeded is returned unchanged.
func (h *CashBalanceHandler) SeedCashBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	value, seeded, err := h.cashService.SeedCashBalanceIfMissing(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"value":  value.String(),
		"seeded": seeded,
	})
}
