package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/ledger"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashBalance is the current cash position of a tenant. Seeded is false
// until the balance has been initialised from the cashbook.
type CashBalance struct {
	Value  decimal.Decimal
	Seeded bool
}

// ConflictError reports a lost compare-and-swap. Current carries the value
// that actually won, so the caller can re-read without another round trip.
type ConflictError struct {
	Current decimal.Decimal
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cash balance changed concurrently, current value is %s", e.Current)
}

// Is makes ConflictError match shared.ErrConcurrencyConflict in errors.Is
func (e *ConflictError) Is(target error) bool {
	return target == shared.ErrConcurrencyConflict
}

// CashBalanceService manages the tenant cash balance with optimistic
// concurrency. Updates only succeed against the exact value the caller
// last read; concurrent writers lose the swap and must retry with the
// fresh value, so blind overwrites cannot happen.
type CashBalanceService struct {
	tenantRepo identity.TenantRepository
	readers    ledger.Readers
	logger     *zap.Logger
}

// NewCashBalanceService creates a new cash balance service
func NewCashBalanceService(tenantRepo identity.TenantRepository, readers ledger.Readers, logger *zap.Logger) *CashBalanceService {
	return &CashBalanceService{
		tenantRepo: tenantRepo,
		readers:    readers,
		logger:     logger,
	}
}

// GetCashBalance reads the stored balance. An unseeded tenant reports
// Seeded false with a zero value.
func (s *CashBalanceService) GetCashBalance(ctx context.Context, tenantID uuid.UUID) (CashBalance, error) {
	if tenantID == uuid.Nil {
		return CashBalance{}, shared.ErrTenantRequired
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return CashBalance{}, err
	}

	value, seeded, err := tenant.Settings.CashBalanceDecimal()
	if err != nil {
		return CashBalance{}, fmt.Errorf("stored cash balance is corrupt: %w", err)
	}
	return CashBalance{Value: value, Seeded: seeded}, nil
}

// UpdateCashBalance swaps the stored balance from known to newValue. When
// another writer got there first the swap fails with a ConflictError
// carrying the value that won; the stored balance is left untouched.
func (s *CashBalanceService) UpdateCashBalance(ctx context.Context, tenantID uuid.UUID, newValue, known decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "update_cash_balance")
	defer span.End()

	if tenantID == uuid.Nil {
		return decimal.Zero, shared.ErrTenantRequired
	}

	current, err := s.tenantRepo.CompareAndSwapCashBalance(ctx, tenantID, newValue, known)
	if err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Info("Cash balance update lost the swap",
				zap.String("tenant_id", tenantID.String()),
				zap.String("known", known.String()),
				zap.String("current", current.String()),
			)
			return current, &ConflictError{Current: current}
		}
		telemetry.RecordError(span, err)
		return decimal.Zero, err
	}

	return current, nil
}

// SeedCashBalanceIfMissing initialises the stored balance from the closing
// balance of the full cashbook. It only ever fills an empty slot: once any
// value exists the seed is a no-op and reports false, so two concurrent
// seeders cannot both win.
func (s *CashBalanceService) SeedCashBalanceIfMissing(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "seed_cash_balance")
	defer span.End()

	if tenantID == uuid.Nil {
		return decimal.Zero, false, shared.ErrTenantRequired
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if value, seeded, err := tenant.Settings.CashBalanceDecimal(); err == nil && seeded {
		return value, false, nil
	}

	postings, err := s.readers.CashPostings.ListForTenant(ctx, tenantID, ledger.DateRange{})
	if err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, false, err
	}
	closing := ledger.ClosingBalance(ledger.BuildCashbook(postings))

	seeded, err := s.tenantRepo.SeedCashBalance(ctx, tenantID, closing)
	if err != nil {
		telemetry.RecordError(span, err)
		return decimal.Zero, false, err
	}
	if !seeded {
		// Lost the race to another seeder; report the value that stuck.
		fresh, err := s.GetCashBalance(ctx, tenantID)
		if err != nil {
			return decimal.Zero, false, err
		}
		return fresh.Value, false, nil
	}

	s.logger.Info("Cash balance seeded from cashbook",
		zap.String("tenant_id", tenantID.String()),
		zap.String("balance", closing.String()),
	)
	return closing, true, nil
}
