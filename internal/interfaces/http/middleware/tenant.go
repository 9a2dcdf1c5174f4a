package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/infrastructure/logger"
	"github.com/bahikhata/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the tenant middleware
const (
	TenantIDKey     = "tenant_id"
	TenantSlugKey   = "tenant_slug"
	TenantHeaderKey = "X-Tenant-Slug"
)

// TenantResolver resolves an external slug to a tenant record
type TenantResolver interface {
	ResolveTenant(ctx context.Context, slug string) (*identity.Tenant, error)
}

// TenantMiddlewareConfig holds configuration for the tenant middleware
type TenantMiddlewareConfig struct {
	// Resolver maps slugs to tenants. Required.
	Resolver TenantResolver
	// SkipPaths are paths served without tenant context (health checks)
	SkipPaths []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantSkipPaths are the paths that never require a tenant
var DefaultTenantSkipPaths = []string{"/health", "/healthz", "/ready", "/api/v1/system", "/api/v1/tenants"}

// TenantMiddleware resolves the X-Tenant-Slug header to a tenant and aborts
// the request when it cannot. Every downstream handler can therefore assume
// a resolved, active tenant. The three failure modes are deliberately
// distinct on the wire: no slug is 401, an unknown slug is 404, and a
// suspended tenant is 403.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		slug := c.GetHeader(TenantHeaderKey)
		if slug == "" {
			abortTenant(c, http.StatusUnauthorized, dto.ErrCodeTenantRequired,
				"Tenant slug header is required")
			return
		}

		tenant, err := cfg.Resolver.ResolveTenant(c.Request.Context(), slug)
		if err != nil {
			switch {
			case errors.Is(err, shared.ErrNotFound):
				abortTenant(c, http.StatusNotFound, dto.ErrCodeNotFound,
					"Unknown tenant")
			case errors.Is(err, shared.ErrTenantSuspended):
				abortTenant(c, http.StatusForbidden, dto.ErrCodeTenantSuspended,
					"Tenant account is suspended")
			case errors.Is(err, shared.ErrTenantRequired):
				abortTenant(c, http.StatusUnauthorized, dto.ErrCodeTenantRequired,
					"Tenant slug header is required")
			default:
				log.Error("Tenant resolution failed",
					zap.String("slug", slug),
					zap.Error(err),
				)
				abortTenant(c, http.StatusInternalServerError, dto.ErrCodeInternal,
					"Tenant resolution failed")
			}
			return
		}

		c.Set(TenantIDKey, tenant.ID.String())
		c.Set(TenantSlugKey, tenant.Slug)

		// Propagate tenant identity into the request context so logs and
		// repository calls downstream carry it.
		ctx, _ := logger.WithTenant(c.Request.Context(), logger.FromContext(c.Request.Context()),
			tenant.ID.String(), tenant.Slug)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortTenant(c *gin.Context, status int, code, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, requestID))
}
