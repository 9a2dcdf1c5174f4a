package ledger

import (
	"time"

	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CrateTransactionType discriminates crate movements
type CrateTransactionType string

const (
	// CrateIssue means crates were given out to the retailer; the retailer
	// now owes the deposit and holds the crates.
	CrateIssue CrateTransactionType = "ISSUE"
	// CrateReturn means crates came back; the deposit is credited.
	CrateReturn CrateTransactionType = "RETURN"
)

// IsValid returns true if the crate transaction type is valid
func (t CrateTransactionType) IsValid() bool {
	return t == CrateIssue || t == CrateReturn
}

// PostingDirection discriminates cash/bank postings
type PostingDirection string

const (
	PostingIn  PostingDirection = "IN"  // money received
	PostingOut PostingDirection = "OUT" // money paid out
)

// Source transaction rows. Monetary amounts are kept as strings because
// historical data may carry malformed values; normalization substitutes
// zero deterministically instead of aborting a ledger (ParseAmountOrZero).
// The embedded CreatedAt is used only for tie-breaking within one day.

// PurchaseInvoice is a purchase-side invoice row
type PurchaseInvoice struct {
	shared.TenantAggregateRoot
	VendorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceNo string    `gorm:"type:varchar(50);not null"`
	Date      time.Time `gorm:"not null;index"`
	NetAmount string    `gorm:"type:varchar(40);not null;default:'0'"`
}

// TableName returns the table name for GORM
func (PurchaseInvoice) TableName() string { return "purchase_invoices" }

// PurchasePayment is a payment made to a vendor
type PurchasePayment struct {
	shared.TenantAggregateRoot
	VendorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Date     time.Time `gorm:"not null;index"`
	Amount   string    `gorm:"type:varchar(40);not null;default:'0'"`
	Mode     string    `gorm:"type:varchar(20)"` // cash, bank, upi
}

// TableName returns the table name for GORM
func (PurchasePayment) TableName() string { return "purchase_payments" }

// SalesInvoice is a sales-side invoice row
type SalesInvoice struct {
	shared.TenantAggregateRoot
	RetailerID uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceNo  string    `gorm:"type:varchar(50);not null"`
	Date       time.Time `gorm:"not null;index"`
	NetAmount  string    `gorm:"type:varchar(40);not null;default:'0'"`
}

// TableName returns the table name for GORM
func (SalesInvoice) TableName() string { return "sales_invoices" }

// SalesPayment is a payment received from a retailer
type SalesPayment struct {
	shared.TenantAggregateRoot
	RetailerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Date       time.Time `gorm:"not null;index"`
	Amount     string    `gorm:"type:varchar(40);not null;default:'0'"`
	Mode       string    `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (SalesPayment) TableName() string { return "sales_payments" }

// CrateTransaction records reusable crates issued to or returned by a
// retailer, with an optional monetary deposit
type CrateTransaction struct {
	shared.TenantAggregateRoot
	RetailerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type          CrateTransactionType `gorm:"type:varchar(10);not null"`
	Date          time.Time            `gorm:"not null;index"`
	Quantity      int                  `gorm:"not null"`
	DepositAmount string               `gorm:"type:varchar(40);not null;default:'0'"`
}

// TableName returns the table name for GORM
func (CrateTransaction) TableName() string { return "crate_transactions" }

// CashPosting is a cashbook row
type CashPosting struct {
	shared.TenantAggregateRoot
	Date      time.Time        `gorm:"not null;index"`
	Direction PostingDirection `gorm:"type:varchar(5);not null"`
	Amount    string           `gorm:"type:varchar(40);not null;default:'0'"`
	Narration string           `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CashPosting) TableName() string { return "cash_postings" }

// BankPosting is a bankbook row scoped to one bank account
type BankPosting struct {
	shared.TenantAggregateRoot
	BankAccountID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Date          time.Time        `gorm:"not null;index"`
	Direction     PostingDirection `gorm:"type:varchar(5);not null"`
	Amount        string           `gorm:"type:varchar(40);not null;default:'0'"`
	Narration     string           `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (BankPosting) TableName() string { return "bank_postings" }
