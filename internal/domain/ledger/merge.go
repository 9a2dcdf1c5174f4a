package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateRange optionally bounds a ledger to [From, To] inclusive. A nil bound
// is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether d falls inside the range
func (r DateRange) Contains(d time.Time) bool {
	if r.From != nil && d.Before(*r.From) {
		return false
	}
	if r.To != nil && d.After(*r.To) {
		return false
	}
	return true
}

// Merge sorts heterogeneous normalized entries into the single deterministic
// total order every ledger uses:
//
//  1. event date ascending;
//  2. creation timestamp ascending; a row that never recorded one sorts as
//     if created at its event date, so the key stays total;
//  3. the fixed kind rank (invoice < payment < crate);
//  4. source id, so that a full tie still yields the same order for any
//     input permutation.
//
// Every tier is a total comparison. The input slice is not modified. Merge
// is a pure function: re-running it on the same rows, in any order, always
// yields the same sequence.
func Merge(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		at, bt := createdOrDate(a), createdOrDate(b)
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		if a.Kind.SortOrder() != b.Kind.SortOrder() {
			return a.Kind.SortOrder() < b.Kind.SortOrder()
		}
		return strings.Compare(a.SourceID.String(), b.SourceID.String()) < 0
	})

	return sorted
}

// createdOrDate substitutes the event date for a missing creation
// timestamp. Comparing against a per-entry constant keeps the ordering
// transitive; conditionally skipping the tier would not.
func createdOrDate(e Entry) time.Time {
	if e.CreatedAt != nil {
		return *e.CreatedAt
	}
	return e.Date
}

// withRunningBalances walks a sorted single-counterparty sequence once,
// accumulating the monetary balance (debit − credit, exact decimal
// arithmetic) and, on crate entries only, the crate-quantity balance.
func withRunningBalances(sorted []Entry) []Entry {
	balance := decimal.Zero
	crateBalance := 0
	for i := range sorted {
		balance = balance.Add(sorted[i].Debit).Sub(sorted[i].Credit)
		sorted[i].Balance = balance
		if sorted[i].CrateQty != nil {
			crateBalance += *sorted[i].CrateQty
			cb := crateBalance
			sorted[i].CrateBalance = &cb
		}
	}
	return sorted
}

// BuildVendorLedger merges a vendor's invoices and payments into one
// chronological ledger with running balances
func BuildVendorLedger(invoices []PurchaseInvoice, payments []PurchasePayment) []Entry {
	entries := make([]Entry, 0, len(invoices)+len(payments))
	for _, inv := range invoices {
		entries = append(entries, inv.ToEntry())
	}
	for _, p := range payments {
		entries = append(entries, p.ToEntry())
	}
	return withRunningBalances(Merge(entries))
}

// BuildRetailerLedger merges a retailer's invoices, payments, and crate
// movements. Crate entries additionally carry the running crate balance.
func BuildRetailerLedger(invoices []SalesInvoice, payments []SalesPayment, crates []CrateTransaction) []Entry {
	entries := make([]Entry, 0, len(invoices)+len(payments)+len(crates))
	for _, inv := range invoices {
		entries = append(entries, inv.ToEntry())
	}
	for _, p := range payments {
		entries = append(entries, p.ToEntry())
	}
	for _, tx := range crates {
		entries = append(entries, tx.ToEntry())
	}
	return withRunningBalances(Merge(entries))
}

// BuildCashbook computes the tenant-wide cash ledger. The final entry's
// balance is total cash on hand; the seeding path uses it to recover an
// uninitialized scalar balance.
func BuildCashbook(postings []CashPosting) []Entry {
	entries := make([]Entry, 0, len(postings))
	for _, p := range postings {
		entries = append(entries, p.ToEntry())
	}
	return withRunningBalances(Merge(entries))
}

// BuildBankbook computes the ledger for one bank account
func BuildBankbook(postings []BankPosting) []Entry {
	entries := make([]Entry, 0, len(postings))
	for _, p := range postings {
		entries = append(entries, p.ToEntry())
	}
	return withRunningBalances(Merge(entries))
}

// ClosingBalance returns the balance after the last entry, or zero for an
// empty ledger
func ClosingBalance(entries []Entry) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	return entries[len(entries)-1].Balance
}

// ClosingCrateBalance returns the crate balance after the last crate entry,
// or zero when the ledger has none
func ClosingCrateBalance(entries []Entry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].CrateBalance != nil {
			return *entries[i].CrateBalance
		}
	}
	return 0
}
