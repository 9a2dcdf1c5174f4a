package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the closed set of normalized ledger entry kinds. Adding a new kind
// is a compile-time-checked change: normalization switches over Kind
// exhaustively instead of sniffing optional fields.
type Kind string

const (
	KindInvoice     Kind = "INVOICE"
	KindPayment     Kind = "PAYMENT"
	KindCrate       Kind = "CRATE"
	KindCashPosting Kind = "CASH_POSTING"
	KindBankPosting Kind = "BANK_POSTING"
)

// SortOrder returns the fixed tie-break rank of the kind. Same-day invoices
// must be reflected in the balance before same-day payments, and crate
// movements after both. Changing these ranks changes reported historical
// balances.
func (k Kind) SortOrder() int {
	switch k {
	case KindInvoice:
		return 1
	case KindPayment:
		return 2
	case KindCrate:
		return 3
	case KindCashPosting, KindBankPosting:
		return 4
	}
	return 5
}

// Entry is one normalized economic event in a merged ledger. It is a
// computed projection: entries are never persisted, only rebuilt from the
// source rows on every call.
type Entry struct {
	SourceID       uuid.UUID       `json:"source_id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	CounterpartyID uuid.UUID       `json:"counterparty_id,omitempty"`
	Kind           Kind            `json:"kind"`
	Date           time.Time       `json:"date"`
	Narration      string          `json:"narration,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	// CrateQty and CrateBalance are set only on crate entries; a crate
	// quantity is not meaningful for monetary kinds.
	CrateQty     *int `json:"crate_qty,omitempty"`
	CrateBalance *int `json:"crate_balance,omitempty"`
	// CreatedAt is the source row's creation timestamp, used only for
	// tie-breaking. Nil when the historical row never recorded one.
	CreatedAt *time.Time `json:"-"`
	// Balance is the running balance after this entry, filled in by the
	// merge engine.
	Balance decimal.Decimal `json:"balance"`
}

// ParseAmountOrZero parses a monetary field from a source row. Malformed or
// missing values become zero: historical data may be incomplete, and the
// substitution must be deterministic between repeated calls rather than
// aborting the whole ledger.
func ParseAmountOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// tieBreak converts a possibly-zero creation timestamp into the optional
// form used by the sort: legacy rows without one sort as if created at
// their event date.
func tieBreak(createdAt time.Time) *time.Time {
	if createdAt.IsZero() {
		return nil
	}
	t := createdAt
	return &t
}

// ToEntry normalizes a purchase invoice: the full net amount is debited to
// the vendor's ledger.
func (inv PurchaseInvoice) ToEntry() Entry {
	return Entry{
		SourceID:       inv.ID,
		TenantID:       inv.TenantID,
		CounterpartyID: inv.VendorID,
		Kind:           KindInvoice,
		Date:           inv.Date,
		Narration:      "Invoice " + inv.InvoiceNo,
		Debit:          ParseAmountOrZero(inv.NetAmount),
		Credit:         decimal.Zero,
		CreatedAt:      tieBreak(inv.CreatedAt),
	}
}

// ToEntry normalizes a purchase payment
func (p PurchasePayment) ToEntry() Entry {
	return Entry{
		SourceID:       p.ID,
		TenantID:       p.TenantID,
		CounterpartyID: p.VendorID,
		Kind:           KindPayment,
		Date:           p.Date,
		Narration:      "Payment " + p.Mode,
		Debit:          decimal.Zero,
		Credit:         ParseAmountOrZero(p.Amount),
		CreatedAt:      tieBreak(p.CreatedAt),
	}
}

// ToEntry normalizes a sales invoice
func (inv SalesInvoice) ToEntry() Entry {
	return Entry{
		SourceID:       inv.ID,
		TenantID:       inv.TenantID,
		CounterpartyID: inv.RetailerID,
		Kind:           KindInvoice,
		Date:           inv.Date,
		Narration:      "Invoice " + inv.InvoiceNo,
		Debit:          ParseAmountOrZero(inv.NetAmount),
		Credit:         decimal.Zero,
		CreatedAt:      tieBreak(inv.CreatedAt),
	}
}

// ToEntry normalizes a sales payment
func (p SalesPayment) ToEntry() Entry {
	return Entry{
		SourceID:       p.ID,
		TenantID:       p.TenantID,
		CounterpartyID: p.RetailerID,
		Kind:           KindPayment,
		Date:           p.Date,
		Narration:      "Payment " + p.Mode,
		Debit:          decimal.Zero,
		Credit:         ParseAmountOrZero(p.Amount),
		CreatedAt:      tieBreak(p.CreatedAt),
	}
}

// ToEntry normalizes a crate transaction. An issue debits the deposit (the
// retailer now owes it) and adds the quantity; a return credits the deposit
// and subtracts the quantity.
func (tx CrateTransaction) ToEntry() Entry {
	deposit := ParseAmountOrZero(tx.DepositAmount)
	qty := tx.Quantity
	entry := Entry{
		SourceID:       tx.ID,
		TenantID:       tx.TenantID,
		CounterpartyID: tx.RetailerID,
		Kind:           KindCrate,
		Date:           tx.Date,
		CreatedAt:      tieBreak(tx.CreatedAt),
	}
	switch tx.Type {
	case CrateIssue:
		entry.Narration = "Crate issue"
		entry.Debit = deposit
		entry.Credit = decimal.Zero
	case CrateReturn:
		entry.Narration = "Crate return"
		entry.Debit = decimal.Zero
		entry.Credit = deposit
		qty = -tx.Quantity
	default:
		// A row with an unrecognized type stays visible in the ledger but
		// must not move any balance, the same treatment malformed amounts
		// get.
		entry.Narration = "Crate (unrecognized type)"
		entry.Debit = decimal.Zero
		entry.Credit = decimal.Zero
		qty = 0
	}
	entry.CrateQty = &qty
	return entry
}

// ToEntry normalizes a cash posting: money received is a debit, money paid
// out is a credit, so the running balance is cash on hand.
func (p CashPosting) ToEntry() Entry {
	amount := ParseAmountOrZero(p.Amount)
	entry := Entry{
		SourceID:  p.ID,
		TenantID:  p.TenantID,
		Kind:      KindCashPosting,
		Date:      p.Date,
		Narration: p.Narration,
		CreatedAt: tieBreak(p.CreatedAt),
	}
	if p.Direction == PostingOut {
		entry.Credit = amount
		entry.Debit = decimal.Zero
	} else {
		entry.Debit = amount
		entry.Credit = decimal.Zero
	}
	return entry
}

// ToEntry normalizes a bank posting
func (p BankPosting) ToEntry() Entry {
	amount := ParseAmountOrZero(p.Amount)
	entry := Entry{
		SourceID:       p.ID,
		TenantID:       p.TenantID,
		CounterpartyID: p.BankAccountID,
		Kind:           KindBankPosting,
		Date:           p.Date,
		Narration:      p.Narration,
		CreatedAt:      tieBreak(p.CreatedAt),
	}
	if p.Direction == PostingOut {
		entry.Credit = amount
		entry.Debit = decimal.Zero
	} else {
		entry.Debit = amount
		entry.Credit = decimal.Zero
	}
	return entry
}
