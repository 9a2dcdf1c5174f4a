package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Source readers are thin, uniform accessors over the raw transaction rows.
// Each one takes a mandatory tenant id and returns rows already filtered to
// that tenant; they carry no business logic so the merge engine stays
// agnostic to storage details and each kind can evolve its schema
// independently. They must never be queried without a tenant id.

// PurchaseInvoiceReader reads purchase invoices for one vendor
type PurchaseInvoiceReader interface {
	ListForVendor(ctx context.Context, tenantID, vendorID uuid.UUID, r DateRange) ([]PurchaseInvoice, error)
}

// PurchasePaymentReader reads payments made to one vendor
type PurchasePaymentReader interface {
	ListForVendor(ctx context.Context, tenantID, vendorID uuid.UUID, r DateRange) ([]PurchasePayment, error)
}

// SalesInvoiceReader reads sales invoices for one retailer
type SalesInvoiceReader interface {
	ListForRetailer(ctx context.Context, tenantID, retailerID uuid.UUID, r DateRange) ([]SalesInvoice, error)
}

// SalesPaymentReader reads payments received from one retailer
type SalesPaymentReader interface {
	ListForRetailer(ctx context.Context, tenantID, retailerID uuid.UUID, r DateRange) ([]SalesPayment, error)
}

// CrateTransactionReader reads crate movements, either for one retailer or
// tenant-wide for the inventory view
type CrateTransactionReader interface {
	ListForRetailer(ctx context.Context, tenantID, retailerID uuid.UUID, r DateRange) ([]CrateTransaction, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]CrateTransaction, error)
}

// CashPostingReader reads the tenant-wide cashbook rows
type CashPostingReader interface {
	ListForTenant(ctx context.Context, tenantID uuid.UUID, r DateRange) ([]CashPosting, error)
}

// BankPostingReader reads bankbook rows for one bank account
type BankPostingReader interface {
	ListForAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID, r DateRange) ([]BankPosting, error)
}

// Readers bundles every source reader the merge engine consumes
type Readers struct {
	PurchaseInvoices  PurchaseInvoiceReader
	PurchasePayments  PurchasePaymentReader
	SalesInvoices     SalesInvoiceReader
	SalesPayments     SalesPaymentReader
	CrateTransactions CrateTransactionReader
	CashPostings      CashPostingReader
	BankPostings      BankPostingReader
}
