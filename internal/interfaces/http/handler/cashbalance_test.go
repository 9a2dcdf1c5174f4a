package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ledgerapp "github.com/bahikhata/backend/internal/application/ledger"
	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// handlerTenantRepo is a minimal in-memory tenant store for handler tests.
// It reproduces the conditional-update contract of the real store.
type handlerTenantRepo struct {
	tenants map[uuid.UUID]*identity.Tenant
}

func newHandlerTenantRepo() *handlerTenantRepo {
	return &handlerTenantRepo{tenants: make(map[uuid.UUID]*identity.Tenant)}
}

func (r *handlerTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (r *handlerTenantRepo) FindBySlug(_ context.Context, slug string) (*identity.Tenant, error) {
	for _, t := range r.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *handlerTenantRepo) Save(_ context.Context, tenant *identity.Tenant) error {
	r.tenants[tenant.ID] = tenant
	return nil
}

func (r *handlerTenantRepo) MergeSettings(_ context.Context, tenantID uuid.UUID, patch map[string]any) (*identity.Settings, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if err := t.Settings.MergePreferences(patch); err != nil {
		return nil, err
	}
	return &t.Settings, nil
}

func (r *handlerTenantRepo) CompareAndSwapCashBalance(_ context.Context, tenantID uuid.UUID, newValue, known decimal.Decimal) (decimal.Decimal, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	stored, seeded, err := t.Settings.CashBalanceDecimal()
	if err != nil {
		return decimal.Zero, err
	}
	if !seeded || !stored.Equal(known) {
		return stored, shared.ErrConcurrencyConflict
	}
	v := newValue.String()
	t.Settings.CashBalance = &v
	return newValue, nil
}

func (r *handlerTenantRepo) SeedCashBalance(_ context.Context, tenantID uuid.UUID, value decimal.Decimal) (bool, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if t.Settings.CashBalance != nil {
		return false, nil
	}
	v := value.String()
	t.Settings.CashBalance = &v
	return true, nil
}

func (r *handlerTenantRepo) CompareAndSwapCredits(_ context.Context, tenantID uuid.UUID, kind identity.CreditKind, qty, known int) (int, error) {
	t, ok := r.tenants[tenantID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	stored := t.Settings.Credits.For(kind)
	if stored != known {
		return stored, shared.ErrConcurrencyConflict
	}
	switch kind {
	case identity.CreditKindPromotional:
		t.Settings.Credits.Promotional = qty
	default:
		t.Settings.Credits.Transactional = qty
	}
	return qty, nil
}

type stubCashPostings struct {
	postings []ledger.CashPosting
}

func (s *stubCashPostings) ListForTenant(_ context.Context, _ uuid.UUID, _ ledger.DateRange) ([]ledger.CashPosting, error) {
	return s.postings, nil
}

// newCashTestEngine mounts the cash-balance routes behind a stub that plays
// the tenant middleware's part, pinning the resolved tenant ID.
func newCashTestEngine(t *testing.T, svc *ledgerapp.CashBalanceService, tenantID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, tenantID.String())
		c.Next()
	})
	api := engine.Group("/api/v1")
	NewCashBalanceHandler(svc).RegisterRoutes(api)
	return engine
}

func seededTenant(t *testing.T, repo *handlerTenantRepo, balance string) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("bharat-traders", "Bharat Traders")
	require.NoError(t, err)
	if balance != "" {
		tenant.Settings.CashBalance = &balance
	}
	repo.tenants[tenant.ID] = tenant
	return tenant
}

func TestCashBalanceHandler_Get(t *testing.T) {
	repo := newHandlerTenantRepo()
	tenant := seededTenant(t, repo, "1250.50")
	svc := ledgerapp.NewCashBalanceService(repo, ledger.Readers{}, zap.NewNop())
	engine := newCashTestEngine(t, svc, tenant.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash-balance", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                `json:"success"`
		Data    CashBalanceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "1250.5", resp.Data.Value)
	assert.True(t, resp.Data.Seeded)
}

func TestCashBalanceHandler_UpdateSucceedsAgainstKnownValue(t *testing.T) {
	repo := newHandlerTenantRepo()
	tenant := seededTenant(t, repo, "500")
	svc := ledgerapp.NewCashBalanceService(repo, ledger.Readers{}, zap.NewNop())
	engine := newCashTestEngine(t, svc, tenant.ID)

	w := httptest.NewRecorder()
	body := `{"value": "650", "known": "500"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cash-balance", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "650", *tenant.Settings.CashBalance)
}

func TestCashBalanceHandler_UpdateConflictCarriesCurrentValue(t *testing.T) {
	repo := newHandlerTenantRepo()
	tenant := seededTenant(t, repo, "470")
	svc := ledgerapp.NewCashBalanceService(repo, ledger.Readers{}, zap.NewNop())
	engine := newCashTestEngine(t, svc, tenant.ID)

	w := httptest.NewRecorder()
	// Client read 500 but another writer left 470 behind.
	body := `{"value": "650", "known": "500"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cash-balance", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ERR_CONCURRENCY_CONFLICT", resp.Error.Code)
	assert.Equal(t, "470", resp.Error.Details["current"])
	// The stored value must be untouched by the losing write.
	assert.Equal(t, "470", *tenant.Settings.CashBalance)
}

func TestCashBalanceHandler_UpdateRejectsMalformedDecimal(t *testing.T) {
	repo := newHandlerTenantRepo()
	tenant := seededTenant(t, repo, "500")
	svc := ledgerapp.NewCashBalanceService(repo, ledger.Readers{}, zap.NewNop())
	engine := newCashTestEngine(t, svc, tenant.ID)

	w := httptest.NewRecorder()
	body := `{"value": "abc", "known": "500"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cash-balance", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCashBalanceHandler_SeedFromCashbook(t *testing.T) {
	repo := newHandlerTenantRepo()
	tenant := seededTenant(t, repo, "")

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	readers := ledger.Readers{CashPostings: &stubCashPostings{postings: []ledger.CashPosting{
		{
			TenantAggregateRoot: shared.NewTenantAggregateRoot(tenant.ID),
			Date:                day,
			Direction:           ledger.PostingIn,
			Amount:              "900",
		},
		{
			TenantAggregateRoot: shared.NewTenantAggregateRoot(tenant.ID),
			Date:                day.AddDate(0, 0, 1),
			Direction:           ledger.PostingOut,
			Amount:              "400",
		},
	}}}
	svc := ledgerapp.NewCashBalanceService(repo, readers, zap.NewNop())
	engine := newCashTestEngine(t, svc, tenant.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cash-balance/seed", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Value  string `json:"value"`
			Seeded bool   `json:"seeded"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "500", resp.Data.Value)
	assert.True(t, resp.Data.Seeded)

	// A second seed is a no-op and reports the value that stuck.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cash-balance/seed", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "500", resp.Data.Value)
	assert.False(t, resp.Data.Seeded)
}
