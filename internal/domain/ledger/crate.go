package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildCrateLedger computes the inventory-wide crate ledger across all
// counterparties in a single date-sorted pass. The output interleaves
// counterparties by date while each counterparty's own running balances
// (crate quantity and deposit money) only advance on its own entries; a
// row's balances are therefore meaningful when the list is filtered back to
// one counterparty.
//
// The accumulator maps are rebuilt fresh on every call and never shared
// across requests.
func BuildCrateLedger(crates []CrateTransaction) []Entry {
	entries := make([]Entry, 0, len(crates))
	for _, tx := range crates {
		entries = append(entries, tx.ToEntry())
	}
	sorted := Merge(entries)

	crateBalances := make(map[uuid.UUID]int)
	moneyBalances := make(map[uuid.UUID]decimal.Decimal)
	for i := range sorted {
		id := sorted[i].CounterpartyID

		money, ok := moneyBalances[id]
		if !ok {
			money = decimal.Zero
		}
		money = money.Add(sorted[i].Debit).Sub(sorted[i].Credit)
		moneyBalances[id] = money
		sorted[i].Balance = money

		if sorted[i].CrateQty != nil {
			crateBalances[id] += *sorted[i].CrateQty
			cb := crateBalances[id]
			sorted[i].CrateBalance = &cb
		}
	}

	return sorted
}
