package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTenantRepository is an in-memory TenantRepository for service tests
type fakeTenantRepository struct {
	tenants     map[uuid.UUID]*identity.Tenant
	slugLookups int
	failWith    error
}

func newFakeTenantRepository() *fakeTenantRepository {
	return &fakeTenantRepository{tenants: make(map[uuid.UUID]*identity.Tenant)}
}

func (r *fakeTenantRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if t, ok := r.tenants[id]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepository) FindBySlug(_ context.Context, slug string) (*identity.Tenant, error) {
	r.slugLookups++
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, t := range r.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTenantRepository) Save(_ context.Context, tenant *identity.Tenant) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *fakeTenantRepository) MergeSettings(_ context.Context, tenantID uuid.UUID, patch map[string]any) (*identity.Settings, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if err := t.Settings.MergePreferences(patch); err != nil {
		return nil, err
	}
	settings := t.Settings
	return &settings, nil
}

func (r *fakeTenantRepository) CompareAndSwapCashBalance(_ context.Context, tenantID uuid.UUID, newValue, known decimal.Decimal) (decimal.Decimal, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	current, seeded, err := t.Settings.CashBalanceDecimal()
	if err != nil {
		return decimal.Zero, err
	}
	if !seeded || !current.Equal(known) {
		return current, shared.ErrConcurrencyConflict
	}
	v := newValue.StringFixed(2)
	t.Settings.CashBalance = &v
	return newValue, nil
}

func (r *fakeTenantRepository) SeedCashBalance(_ context.Context, tenantID uuid.UUID, value decimal.Decimal) (bool, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if t.Settings.CashBalance != nil {
		return false, nil
	}
	v := value.StringFixed(2)
	t.Settings.CashBalance = &v
	return true, nil
}

func (r *fakeTenantRepository) CompareAndSwapCredits(_ context.Context, tenantID uuid.UUID, kind identity.CreditKind, qty, known int) (int, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	current := t.Settings.Credits.For(kind)
	if current != known {
		return current, shared.ErrConcurrencyConflict
	}
	updated := current - qty
	if kind == identity.CreditKindTransactional {
		t.Settings.Credits.Transactional = updated
	} else {
		t.Settings.Credits.Promotional = updated
	}
	return updated, nil
}

func newTenantService(repo *fakeTenantRepository) *TenantService {
	return NewTenantService(repo, cache.NewTenantCache(), zap.NewNop())
}

func TestResolveTenant(t *testing.T) {
	t.Run("resolves active tenant and caches it", func(t *testing.T) {
		repo := newFakeTenantRepository()
		svc := newTenantService(repo)
		tenant, err := svc.CreateTenant(context.Background(), "sharma-traders", "Sharma Traders")
		require.NoError(t, err)

		resolved, err := svc.ResolveTenant(context.Background(), "sharma-traders")
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, resolved.ID)

		lookupsAfterFirst := repo.slugLookups
		_, err = svc.ResolveTenant(context.Background(), "sharma-traders")
		require.NoError(t, err)
		assert.Equal(t, lookupsAfterFirst, repo.slugLookups, "second resolve must hit the cache")
	})

	t.Run("empty slug fails closed", func(t *testing.T) {
		svc := newTenantService(newFakeTenantRepository())
		_, err := svc.ResolveTenant(context.Background(), "")
		assert.ErrorIs(t, err, shared.ErrTenantRequired)
	})

	t.Run("unknown slug is NotFound", func(t *testing.T) {
		svc := newTenantService(newFakeTenantRepository())
		_, err := svc.ResolveTenant(context.Background(), "no-such-tenant")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("suspended tenant is distinct from NotFound", func(t *testing.T) {
		repo := newFakeTenantRepository()
		svc := newTenantService(repo)
		tenant, err := svc.CreateTenant(context.Background(), "gupta-dairy", "Gupta Dairy")
		require.NoError(t, err)
		require.NoError(t, svc.SuspendTenant(context.Background(), tenant.ID))

		_, err = svc.ResolveTenant(context.Background(), "gupta-dairy")
		assert.ErrorIs(t, err, shared.ErrTenantSuspended)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("suspension takes effect despite prior caching", func(t *testing.T) {
		repo := newFakeTenantRepository()
		svc := newTenantService(repo)
		tenant, err := svc.CreateTenant(context.Background(), "verma-stores", "Verma Stores")
		require.NoError(t, err)

		_, err = svc.ResolveTenant(context.Background(), "verma-stores")
		require.NoError(t, err)

		require.NoError(t, svc.SuspendTenant(context.Background(), tenant.ID))

		_, err = svc.ResolveTenant(context.Background(), "verma-stores")
		assert.ErrorIs(t, err, shared.ErrTenantSuspended)
	})

	t.Run("lookup errors fail the request", func(t *testing.T) {
		repo := newFakeTenantRepository()
		repo.failWith = errors.New("connection refused")
		svc := newTenantService(repo)

		_, err := svc.ResolveTenant(context.Background(), "sharma-traders")
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestCreateTenantDuplicateSlug(t *testing.T) {
	repo := newFakeTenantRepository()
	svc := newTenantService(repo)

	_, err := svc.CreateTenant(context.Background(), "sharma-traders", "Sharma Traders")
	require.NoError(t, err)

	_, err = svc.CreateTenant(context.Background(), "sharma-traders", "Imposter")
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestUpdatePreferences(t *testing.T) {
	repo := newFakeTenantRepository()
	svc := newTenantService(repo)
	tenant, err := svc.CreateTenant(context.Background(), "sharma-traders", "Sharma Traders")
	require.NoError(t, err)

	settings, err := svc.UpdatePreferences(context.Background(), tenant.ID, map[string]any{
		"display": map[string]any{"language": "hi"},
	})
	require.NoError(t, err)

	prefs, err := settings.PreferencesMap()
	require.NoError(t, err)
	display := prefs["display"].(map[string]any)
	assert.Equal(t, "hi", display["language"])
}
