package handler

import (
	ledgerapp "github.com/bahikhata/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler serves the merged ledger views. Every view is computed on
// demand from source rows; nothing served here is stored.
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledgers := rg.Group("/ledger")
	ledgers.GET("/vendors/:id", h.GetVendorLedger)
	ledgers.POST("/vendors/:id/reconcile", h.ReconcileVendor)
	ledgers.GET("/retailers/:id", h.GetRetailerLedger)
	ledgers.POST("/retailers/:id/reconcile", h.ReconcileRetailer)
	ledgers.GET("/cashbook", h.GetCashbook)
	ledgers.GET("/bankbook/:account_id", h.GetBankbook)
	ledgers.GET("/crates", h.GetCrateLedger)
}

// GetVendorLedger returns the merged purchase-side ledger of one vendor
func (h *LedgerHandler) GetVendorLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	entries, err := h.ledgerService.GetVendorLedger(c.Request.Context(), tenantID, vendorID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetRetailerLedger returns the merged sales-side ledger of one retailer,
// crate movements interleaved
func (h *LedgerHandler) GetRetailerLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	retailerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid retailer ID")
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	entries, err := h.ledgerService.GetRetailerLedger(c.Request.Context(), tenantID, retailerID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetCashbook returns the tenant's cashbook
func (h *LedgerHandler) GetCashbook(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	entries, err := h.ledgerService.GetCashbook(c.Request.Context(), tenantID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetBankbook returns the bankbook of one bank account
func (h *LedgerHandler) GetBankbook(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	accountID, err := uuid.Parse(c.Param("account_id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}

	dateRange, err := parseDateRange(c)
	if err != nil {
		h.BadRequest(c, "Invalid date range, expected YYYY-MM-DD")
		return
	}

	entries, err := h.ledgerService.GetBankbook(c.Request.Context(), tenantID, accountID, dateRange)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// GetCrateLedger returns crate movements with running quantity balances.
// Without a retailer_id query parameter it covers the whole tenant.
func (h *LedgerHandler) GetCrateLedger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	var retailerID *uuid.UUID
	if raw := c.Query("retailer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid retailer ID")
			return
		}
		retailerID = &id
	}

	entries, err := h.ledgerService.GetCrateLedger(c.Request.Context(), tenantID, retailerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// ReconcileVendor recomputes the vendor's ledger and stores the closing
// balance on the vendor record
func (h *LedgerHandler) ReconcileVendor(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	if err := h.ledgerService.ReconcileVendorBalance(c.Request.Context(), tenantID, vendorID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ReconcileRetailer recomputes the retailer's ledger and stores the closing
// monetary and crate balances
func (h *LedgerHandler) ReconcileRetailer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	retailerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid retailer ID")
		return
	}

	if err := h.ledgerService.ReconcileRetailerBalance(c.Request.Context(), tenantID, retailerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
