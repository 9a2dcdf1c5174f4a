package partner

import (
	"testing"

	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendor(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates vendor with zero balance", func(t *testing.T) {
		vendor, err := NewVendor(tenantID, "Mehta Wholesale", "9812345678")
		require.NoError(t, err)
		assert.Equal(t, tenantID, vendor.TenantID)
		assert.True(t, vendor.Balance.IsZero())
	})

	t.Run("rejects missing tenant", func(t *testing.T) {
		_, err := NewVendor(uuid.Nil, "Mehta Wholesale", "")
		assert.ErrorIs(t, err, shared.ErrTenantRequired)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewVendor(tenantID, "", "")
		assert.Error(t, err)
	})
}

func TestVendorSetCachedBalance(t *testing.T) {
	vendor, err := NewVendor(uuid.New(), "Mehta Wholesale", "")
	require.NoError(t, err)

	vendor.SetCachedBalance(decimal.RequireFromString("600.00"))
	assert.True(t, vendor.Balance.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, 2, vendor.Version)
}

func TestNewRetailer(t *testing.T) {
	tenantID := uuid.New()

	retailer, err := NewRetailer(tenantID, "Kirana Corner", "9800011122")
	require.NoError(t, err)
	assert.Equal(t, tenantID, retailer.TenantID)
	assert.Equal(t, 0, retailer.CrateBalance)
	assert.False(t, retailer.HasOutstanding())

	_, err = NewRetailer(uuid.Nil, "Kirana Corner", "")
	assert.ErrorIs(t, err, shared.ErrTenantRequired)
}

func TestRetailerSetCachedBalances(t *testing.T) {
	retailer, err := NewRetailer(uuid.New(), "Kirana Corner", "")
	require.NoError(t, err)

	retailer.SetCachedBalances(decimal.RequireFromString("450.50"), 12)

	assert.True(t, retailer.Balance.Equal(decimal.RequireFromString("450.50")))
	assert.Equal(t, 12, retailer.CrateBalance)
	assert.True(t, retailer.HasOutstanding())
	assert.True(t, retailer.UdhaarBalance.Equal(retailer.Balance))

	// Reconciling from the same ledger state is idempotent on values.
	retailer.SetCachedBalances(decimal.RequireFromString("450.50"), 12)
	assert.True(t, retailer.Balance.Equal(decimal.RequireFromString("450.50")))
	assert.Equal(t, 12, retailer.CrateBalance)
}
