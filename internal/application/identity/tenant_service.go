package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantCache is the resolver-side view of the tenant resolution cache
type TenantCache interface {
	Get(slug string) (*identity.Tenant, bool)
	Put(slug string, tenant *identity.Tenant)
	Invalidate(slug string)
}

// TenantService resolves and manages tenants. Resolution is the isolation
// boundary for the whole ledger engine: any failure here fails the request
// rather than proceeding without tenant context.
type TenantService struct {
	tenantRepo identity.TenantRepository
	cache      TenantCache
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	cache TenantCache,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		cache:      cache,
		logger:     logger,
	}
}

// ResolveTenant resolves an external slug to a tenant record. Unknown slugs
// surface shared.ErrNotFound; known but suspended tenants surface
// shared.ErrTenantSuspended. Callers must not conflate the two, the
// user-facing message differs. Only active tenants are cached.
func (s *TenantService) ResolveTenant(ctx context.Context, slug string) (*identity.Tenant, error) {
	if slug == "" {
		return nil, shared.ErrTenantRequired
	}

	if tenant, ok := s.cache.Get(slug); ok {
		if !tenant.IsActive() {
			return nil, shared.ErrTenantSuspended
		}
		return tenant, nil
	}

	tenant, err := s.tenantRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		// Infrastructure failures must fail the request; tenant isolation is
		// a hard boundary, not a best-effort optimization.
		return nil, fmt.Errorf("tenant lookup failed: %w", err)
	}

	if !tenant.IsActive() {
		s.logger.Warn("Suspended tenant attempted access", zap.String("slug", slug))
		return nil, shared.ErrTenantSuspended
	}

	s.cache.Put(slug, tenant)
	return tenant, nil
}

// CreateTenant onboards a new tenant
func (s *TenantService) CreateTenant(ctx context.Context, slug, name string) (*identity.Tenant, error) {
	existing, err := s.tenantRepo.FindBySlug(ctx, slug)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	tenant, err := identity.NewTenant(slug, name)
	if err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
	)
	return tenant, nil
}

// SuspendTenant suspends a tenant and drops it from the resolution cache so
// subsequent requests fail closed immediately
func (s *TenantService) SuspendTenant(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := tenant.Suspend(); err != nil {
		return err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return err
	}

	s.cache.Invalidate(tenant.Slug)
	s.logger.Info("Tenant suspended", zap.String("tenant_id", tenantID.String()))
	return nil
}

// ActivateTenant re-activates a suspended tenant
func (s *TenantService) ActivateTenant(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := tenant.Activate(); err != nil {
		return err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return err
	}

	s.cache.Invalidate(tenant.Slug)
	return nil
}

// UpdatePreferences deep-merges a partial preferences patch into the
// tenant's settings. This is the unconditional path for non-contended
// fields; the cash balance and credit counters never go through it.
func (s *TenantService) UpdatePreferences(ctx context.Context, tenantID uuid.UUID, patch map[string]any) (*identity.Settings, error) {
	settings, err := s.tenantRepo.MergeSettings(ctx, tenantID, patch)
	if err != nil {
		return nil, err
	}

	// The cached record now carries stale settings; force a re-read.
	if tenant, findErr := s.tenantRepo.FindByID(ctx, tenantID); findErr == nil {
		s.cache.Invalidate(tenant.Slug)
	}
	return settings, nil
}
