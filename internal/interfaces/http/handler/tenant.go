package handler

import (
	"net/http"

	identityapp "github.com/bahikhata/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantHandler serves tenant onboarding and lifecycle operations.
// Onboarding (/tenants) is served without a tenant context; the tenant-scoped
// routes under /tenant read the identity resolved by the middleware.
type TenantHandler struct {
	BaseHandler
	tenantService *identityapp.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *identityapp.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// RegisterRoutes registers tenant routes. Lifecycle routes are keyed by
// tenant ID and resolved outside the tenant middleware: a suspended tenant
// could never reach its own activate endpoint through slug resolution.
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants")
	tenants.POST("", h.CreateTenant)
	tenants.POST("/:id/suspend", h.Suspend)
	tenants.POST("/:id/activate", h.Activate)

	tenant := rg.Group("/tenant")
	tenant.GET("", h.GetTenant)
	tenant.PATCH("/preferences", h.UpdatePreferences)
}

// CreateTenantRequest onboards a new tenant
type CreateTenantRequest struct {
	Slug string `json:"slug" binding:"required,min=3,max=100"`
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// TenantResponse is the wire shape of a tenant record
type TenantResponse struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CreateTenant onboards a new tenant
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "slug and name are required")
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), req.Slug, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, TenantResponse{
		ID:     tenant.ID.String(),
		Slug:   tenant.Slug,
		Name:   tenant.Name,
		Status: string(tenant.Status),
	})
}

// GetTenant returns the tenant resolved for this request
func (h *TenantHandler) GetTenant(c *gin.Context) {
	slug, err := getTenantSlug(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	tenant, err := h.tenantService.ResolveTenant(c.Request.Context(), slug)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, TenantResponse{
		ID:      tenant.ID.String(),
		Slug:    tenant.Slug,
		Name:    tenant.Name,
		Status:  string(tenant.Status),
		Phone:   tenant.Phone,
		Address: tenant.Address,
	})
}

// UpdatePreferences applies a nested patch onto the tenant preferences.
// Nulls in the patch delete keys; nested objects merge key by key.
func (h *TenantHandler) UpdatePreferences(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.InternalError(c, "Tenant context missing")
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.BadRequest(c, "preferences patch must be a JSON object")
		return
	}
	if len(patch) == 0 {
		h.BadRequest(c, "preferences patch must not be empty")
		return
	}

	settings, err := h.tenantService.UpdatePreferences(c.Request.Context(), tenantID, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"preferences": settings.Preferences,
		},
	})
}

// Suspend suspends a tenant. Requests for it fail with 403 from the next
// resolution onwards.
func (h *TenantHandler) Suspend(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.tenantService.SuspendTenant(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate reactivates a suspended tenant
func (h *TenantHandler) Activate(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.tenantService.ActivateTenant(c.Request.Context(), tenantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
