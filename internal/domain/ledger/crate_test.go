package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCrateLedgerInterleavesCounterparties(t *testing.T) {
	tenantID := uuid.New()
	retailerA := uuid.New()
	retailerB := uuid.New()

	crates := []CrateTransaction{
		newCrateTx(tenantID, retailerA, day(2024, time.April, 1), CrateIssue, 10, "200"),
		newCrateTx(tenantID, retailerB, day(2024, time.April, 2), CrateIssue, 4, "80"),
		newCrateTx(tenantID, retailerA, day(2024, time.April, 3), CrateReturn, 3, "60"),
		newCrateTx(tenantID, retailerB, day(2024, time.April, 4), CrateReturn, 4, "80"),
		newCrateTx(tenantID, retailerA, day(2024, time.April, 5), CrateIssue, 2, "40"),
	}

	entries := BuildCrateLedger(crates)
	require.Len(t, entries, 5)

	// Output is one combined chronological pass, not grouped by retailer.
	assert.Equal(t, retailerA, entries[0].CounterpartyID)
	assert.Equal(t, retailerB, entries[1].CounterpartyID)
	assert.Equal(t, retailerA, entries[2].CounterpartyID)

	// Each retailer's running balance advances only on its own entries.
	wantCrate := []int{10, 4, 7, 0, 9}
	for i, e := range entries {
		require.NotNil(t, e.CrateBalance, "entry %d", i)
		assert.Equal(t, wantCrate[i], *e.CrateBalance, "entry %d", i)
	}

	// Deposit running balance is per counterparty too.
	assert.True(t, entries[2].Balance.Equal(decimal.NewFromInt(140))) // A: 200-60
	assert.True(t, entries[3].Balance.Equal(decimal.Zero))            // B: 80-80
	assert.True(t, entries[4].Balance.Equal(decimal.NewFromInt(180))) // A: 140+40
}

func TestBuildCrateLedgerFreshAccumulatorsPerCall(t *testing.T) {
	tenantID := uuid.New()
	retailerID := uuid.New()

	crates := []CrateTransaction{
		newCrateTx(tenantID, retailerID, day(2024, time.April, 1), CrateIssue, 6, "120"),
	}

	first := BuildCrateLedger(crates)
	second := BuildCrateLedger(crates)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	// No cross-call leakage: the second call starts from empty state.
	assert.Equal(t, 6, *second[0].CrateBalance)
	assert.True(t, second[0].Balance.Equal(first[0].Balance))
}

func TestBuildCrateLedgerEmpty(t *testing.T) {
	assert.Empty(t, BuildCrateLedger(nil))
}
