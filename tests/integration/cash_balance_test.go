package integration

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/bahikhata/backend/internal/application/ledger"
	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestCashBalanceCheckAndSet exercises the conditional balance write against
// a real PostgreSQL: the comparison happens inside a single UPDATE, so two
// writers racing on the same known value cannot both win.
func TestCashBalanceCheckAndSet(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	repo := persistence.NewGormTenantRepository(tdb.DB)
	ctx := context.Background()

	tenant, err := identity.NewTenant("bharat-traders", "Bharat Traders")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tenant))

	seeded, err := repo.SeedCashBalance(ctx, tenant.ID, decimal.RequireFromString("500.00"))
	require.NoError(t, err)
	require.True(t, seeded)

	t.Run("swap succeeds against the stored value", func(t *testing.T) {
		current, err := repo.CompareAndSwapCashBalance(ctx, tenant.ID,
			decimal.RequireFromString("650"), decimal.RequireFromString("500"))
		require.NoError(t, err)
		assert.Equal(t, "650", current.String())
	})

	t.Run("comparison is numeric, not textual", func(t *testing.T) {
		// Stored "650"; a caller re-reading as "650.00" must still win.
		current, err := repo.CompareAndSwapCashBalance(ctx, tenant.ID,
			decimal.RequireFromString("700"), decimal.RequireFromString("650.00"))
		require.NoError(t, err)
		assert.Equal(t, "700", current.String())
	})

	t.Run("lost swap reports the fresh value and changes nothing", func(t *testing.T) {
		current, err := repo.CompareAndSwapCashBalance(ctx, tenant.ID,
			decimal.RequireFromString("999"), decimal.RequireFromString("500"))
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, "700", current.String())

		fresh, err := repo.FindByID(ctx, tenant.ID)
		require.NoError(t, err)
		stored, ok, err := fresh.Settings.CashBalanceDecimal()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "700", stored.String())
	})

	t.Run("second seed is a no-op", func(t *testing.T) {
		seeded, err := repo.SeedCashBalance(ctx, tenant.ID, decimal.RequireFromString("123"))
		require.NoError(t, err)
		assert.False(t, seeded)
	})
}

// TestCashBalanceSeedFromCashbook seeds the scalar from real cashbook rows
// through the application service.
func TestCashBalanceSeedFromCashbook(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	repo := persistence.NewGormTenantRepository(tdb.DB)
	readers := persistence.NewGormReaders(tdb.DB)
	svc := ledgerapp.NewCashBalanceService(repo, readers, zap.NewNop())
	ctx := context.Background()

	tenant, err := identity.NewTenant("seed-traders", "Seed Traders")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tenant))

	day := mustDate(t, "2026-03-01")
	for _, p := range []ledger.CashPosting{
		{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenant.ID), Date: day, Direction: ledger.PostingIn, Amount: "1500", Narration: "Opening sales"},
		{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenant.ID), Date: day.AddDate(0, 0, 1), Direction: ledger.PostingOut, Amount: "600", Narration: "Vendor payment"},
	} {
		require.NoError(t, tdb.DB.Create(&p).Error)
	}

	value, seeded, err := svc.SeedCashBalanceIfMissing(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, "900", value.String())

	// The seed must survive a re-read and refuse to run twice.
	value, seeded, err = svc.SeedCashBalanceIfMissing(ctx, tenant.ID)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, "900", value.String())
}

// TestCashBalanceConcurrentWriters drives two goroutines through the swap;
// exactly one must win and the loser must learn the winning value.
func TestCashBalanceConcurrentWriters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	repo := persistence.NewGormTenantRepository(tdb.DB)
	ctx := context.Background()

	tenant, err := identity.NewTenant("race-traders", "Race Traders")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tenant))

	seeded, err := repo.SeedCashBalance(ctx, tenant.ID, decimal.RequireFromString("100"))
	require.NoError(t, err)
	require.True(t, seeded)

	known := decimal.RequireFromString("100")
	type outcome struct {
		current decimal.Decimal
		err     error
	}
	results := make(chan outcome, 2)
	for _, newValue := range []string{"150", "200"} {
		go func(v string) {
			current, err := repo.CompareAndSwapCashBalance(ctx, tenant.ID,
				decimal.RequireFromString(v), known)
			results <- outcome{current: current, err: err}
		}(newValue)
	}

	var wins, losses int
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err == nil {
			wins++
		} else {
			require.ErrorIs(t, r.err, shared.ErrConcurrencyConflict)
			// The loser sees whatever the winner wrote.
			assert.True(t, r.current.Equal(decimal.RequireFromString("150")) ||
				r.current.Equal(decimal.RequireFromString("200")),
				"loser saw %s", r.current)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return d
}
