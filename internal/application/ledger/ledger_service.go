package ledger

import (
	"context"
	"fmt"

	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/bahikhata/backend/internal/domain/partner"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the merged ledgers. Every operation reads an independent
// snapshot of the source rows and computes synchronously; the service holds
// no mutable state, performs no retries, and adds no error translation, so
// reader errors propagate unchanged to the caller.
type Service struct {
	vendorRepo   partner.VendorRepository
	retailerRepo partner.RetailerRepository
	readers      ledger.Readers
	outstanding  OutstandingCache
	logger       *zap.Logger
}

// NewService creates a new ledger service
func NewService(
	vendorRepo partner.VendorRepository,
	retailerRepo partner.RetailerRepository,
	readers ledger.Readers,
	logger *zap.Logger,
) *Service {
	return &Service{
		vendorRepo:   vendorRepo,
		retailerRepo: retailerRepo,
		readers:      readers,
		logger:       logger,
	}
}

// WithOutstandingInvalidation wires the outstanding view cache so that
// reconciling a retailer drops the stale cached view. Without it the view
// would keep serving pre-reconcile balances until the TTL ran out.
func (s *Service) WithOutstandingInvalidation(cache OutstandingCache) *Service {
	s.outstanding = cache
	return s
}

// GetVendorLedger merges a vendor's invoices and payments into one
// chronological running-balance ledger. The vendor must exist within the
// tenant before any rows are read; otherwise NotFound is returned with no
// partial computation.
func (s *Service) GetVendorLedger(ctx context.Context, tenantID, vendorID uuid.UUID, dateRange ledger.DateRange) ([]ledger.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_vendor_ledger")
	defer span.End()
	telemetry.SetAttributes(span, "vendor_id", vendorID.String())

	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	if _, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, vendorID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoices, err := s.readers.PurchaseInvoices.ListForVendor(ctx, tenantID, vendorID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payments, err := s.readers.PurchasePayments.ListForVendor(ctx, tenantID, vendorID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return ledger.BuildVendorLedger(invoices, payments), nil
}

// GetRetailerLedger merges a retailer's invoices, payments, and crate
// movements. Crate entries carry the running crate balance.
func (s *Service) GetRetailerLedger(ctx context.Context, tenantID, retailerID uuid.UUID, dateRange ledger.DateRange) ([]ledger.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_retailer_ledger")
	defer span.End()
	telemetry.SetAttributes(span, "retailer_id", retailerID.String())

	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	if _, err := s.retailerRepo.FindByIDForTenant(ctx, tenantID, retailerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoices, err := s.readers.SalesInvoices.ListForRetailer(ctx, tenantID, retailerID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payments, err := s.readers.SalesPayments.ListForRetailer(ctx, tenantID, retailerID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	crates, err := s.readers.CrateTransactions.ListForRetailer(ctx, tenantID, retailerID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return ledger.BuildRetailerLedger(invoices, payments, crates), nil
}

// GetCashbook computes the tenant-wide cash ledger
func (s *Service) GetCashbook(ctx context.Context, tenantID uuid.UUID, dateRange ledger.DateRange) ([]ledger.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_cashbook")
	defer span.End()

	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	postings, err := s.readers.CashPostings.ListForTenant(ctx, tenantID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return ledger.BuildCashbook(postings), nil
}

// GetBankbook computes the ledger for one bank account
func (s *Service) GetBankbook(ctx context.Context, tenantID, bankAccountID uuid.UUID, dateRange ledger.DateRange) ([]ledger.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_bankbook")
	defer span.End()
	telemetry.SetAttributes(span, "bank_account_id", bankAccountID.String())

	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	postings, err := s.readers.BankPostings.ListForAccount(ctx, tenantID, bankAccountID, dateRange)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return ledger.BuildBankbook(postings), nil
}

// GetCrateLedger computes the crate ledger. With a retailer id it covers
// that retailer alone; without one it is the inventory-wide view that
// interleaves all retailers in a single date-sorted pass.
func (s *Service) GetCrateLedger(ctx context.Context, tenantID uuid.UUID, retailerID *uuid.UUID) ([]ledger.Entry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_crate_ledger")
	defer span.End()

	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	var crates []ledger.CrateTransaction
	var err error
	if retailerID != nil {
		if _, err = s.retailerRepo.FindByIDForTenant(ctx, tenantID, *retailerID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		crates, err = s.readers.CrateTransactions.ListForRetailer(ctx, tenantID, *retailerID, ledger.DateRange{})
	} else {
		crates, err = s.readers.CrateTransactions.ListForTenant(ctx, tenantID)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return ledger.BuildCrateLedger(crates), nil
}

// ReconcileVendorBalance recomputes the vendor's cached balance from the
// full merged ledger. It is idempotent: reconciling twice from the same
// rows writes the same value.
func (s *Service) ReconcileVendorBalance(ctx context.Context, tenantID, vendorID uuid.UUID) error {
	vendor, err := s.vendorRepo.FindByIDForTenant(ctx, tenantID, vendorID)
	if err != nil {
		return err
	}

	entries, err := s.GetVendorLedger(ctx, tenantID, vendorID, ledger.DateRange{})
	if err != nil {
		return err
	}

	vendor.SetCachedBalance(ledger.ClosingBalance(entries))
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return fmt.Errorf("failed to persist reconciled vendor balance: %w", err)
	}

	s.logger.Debug("Vendor balance reconciled",
		zap.String("vendor_id", vendorID.String()),
		zap.String("balance", vendor.Balance.String()),
	)
	return nil
}

// ReconcileRetailerBalance recomputes the retailer's cached monetary and
// crate balances from the full merged ledger
func (s *Service) ReconcileRetailerBalance(ctx context.Context, tenantID, retailerID uuid.UUID) error {
	retailer, err := s.retailerRepo.FindByIDForTenant(ctx, tenantID, retailerID)
	if err != nil {
		return err
	}

	entries, err := s.GetRetailerLedger(ctx, tenantID, retailerID, ledger.DateRange{})
	if err != nil {
		return err
	}

	retailer.SetCachedBalances(ledger.ClosingBalance(entries), ledger.ClosingCrateBalance(entries))
	if err := s.retailerRepo.Save(ctx, retailer); err != nil {
		return fmt.Errorf("failed to persist reconciled retailer balance: %w", err)
	}

	// The outstanding view is computed from the cached balances just
	// rewritten; a failed invalidation degrades to TTL staleness, it must
	// not fail the reconcile.
	if s.outstanding != nil {
		if err := s.outstanding.Invalidate(ctx, tenantID); err != nil {
			s.logger.Warn("Outstanding cache invalidation failed after reconcile",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("Retailer balance reconciled",
		zap.String("retailer_id", retailerID.String()),
		zap.String("balance", retailer.Balance.String()),
		zap.Int("crate_balance", retailer.CrateBalance),
	)
	return nil
}
