package persistence

import (
	"context"

	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gorm-backed source readers. Each one selects raw transaction rows for the
// merge engine, always scoped by tenant id. Date filtering happens here so
// the engine never sees rows outside the requested range; ordering is left
// to the engine, which sorts deterministically regardless of storage order.

func applyDateRange(query *gorm.DB, r ledger.DateRange) *gorm.DB {
	if r.From != nil {
		query = query.Where("date >= ?", *r.From)
	}
	if r.To != nil {
		query = query.Where("date <= ?", *r.To)
	}
	return query
}

// GormPurchaseInvoiceReader reads purchase invoices
type GormPurchaseInvoiceReader struct {
	db *gorm.DB
}

func (rd *GormPurchaseInvoiceReader) ListForVendor(ctx context.Context, tenantID, vendorID uuid.UUID, r ledger.DateRange) ([]ledger.PurchaseInvoice, error) {
	var rows []ledger.PurchaseInvoice
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ? AND vendor_id = ?", tenantID, vendorID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormPurchasePaymentReader reads payments made to vendors
type GormPurchasePaymentReader struct {
	db *gorm.DB
}

func (rd *GormPurchasePaymentReader) ListForVendor(ctx context.Context, tenantID, vendorID uuid.UUID, r ledger.DateRange) ([]ledger.PurchasePayment, error) {
	var rows []ledger.PurchasePayment
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ? AND vendor_id = ?", tenantID, vendorID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormSalesInvoiceReader reads sales invoices
type GormSalesInvoiceReader struct {
	db *gorm.DB
}

func (rd *GormSalesInvoiceReader) ListForRetailer(ctx context.Context, tenantID, retailerID uuid.UUID, r ledger.DateRange) ([]ledger.SalesInvoice, error) {
	var rows []ledger.SalesInvoice
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ? AND retailer_id = ?", tenantID, retailerID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormSalesPaymentReader reads payments received from retailers
type GormSalesPaymentReader struct {
	db *gorm.DB
}

func (rd *GormSalesPaymentReader) ListForRetailer(ctx context.Context, tenantID, retailerID uuid.UUID, r ledger.DateRange) ([]ledger.SalesPayment, error) {
	var rows []ledger.SalesPayment
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ? AND retailer_id = ?", tenantID, retailerID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormCrateTransactionReader reads crate movements
type GormCrateTransactionReader struct {
	db *gorm.DB
}

func (rd *GormCrateTransactionReader) ListForRetailer(ctx context.Context, tenantID, retailerID uuid.UUID, r ledger.DateRange) ([]ledger.CrateTransaction, error) {
	var rows []ledger.CrateTransaction
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ? AND retailer_id = ?", tenantID, retailerID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (rd *GormCrateTransactionReader) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.CrateTransaction, error) {
	var rows []ledger.CrateTransaction
	if err := rd.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormCashPostingReader reads cashbook rows
type GormCashPostingReader struct {
	db *gorm.DB
}

func (rd *GormCashPostingReader) ListForTenant(ctx context.Context, tenantID uuid.UUID, r ledger.DateRange) ([]ledger.CashPosting, error) {
	var rows []ledger.CashPosting
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GormBankPostingReader reads bankbook rows for one bank account
type GormBankPostingReader struct {
	db *gorm.DB
}

func (rd *GormBankPostingReader) ListForAccount(ctx context.Context, tenantID, bankAccountID uuid.UUID, r ledger.DateRange) ([]ledger.BankPosting, error) {
	var rows []ledger.BankPosting
	query := rd.db.WithContext(ctx).
		Where("tenant_id = ? AND bank_account_id = ?", tenantID, bankAccountID)
	if err := applyDateRange(query, r).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var (
	_ ledger.PurchaseInvoiceReader  = (*GormPurchaseInvoiceReader)(nil)
	_ ledger.PurchasePaymentReader  = (*GormPurchasePaymentReader)(nil)
	_ ledger.SalesInvoiceReader     = (*GormSalesInvoiceReader)(nil)
	_ ledger.SalesPaymentReader     = (*GormSalesPaymentReader)(nil)
	_ ledger.CrateTransactionReader = (*GormCrateTransactionReader)(nil)
	_ ledger.CashPostingReader      = (*GormCashPostingReader)(nil)
	_ ledger.BankPostingReader      = (*GormBankPostingReader)(nil)
)

// NewGormReaders wires every source reader over one GORM connection
func NewGormReaders(db *gorm.DB) ledger.Readers {
	return ledger.Readers{
		PurchaseInvoices:  &GormPurchaseInvoiceReader{db: db},
		PurchasePayments:  &GormPurchasePaymentReader{db: db},
		SalesInvoices:     &GormSalesInvoiceReader{db: db},
		SalesPayments:     &GormSalesPaymentReader{db: db},
		CrateTransactions: &GormCrateTransactionReader{db: db},
		CashPostings:      &GormCashPostingReader{db: db},
		BankPostings:      &GormBankPostingReader{db: db},
	}
}
