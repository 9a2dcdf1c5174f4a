package billing

import (
	"context"
	"errors"

	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// debitRetries bounds how many times a debit re-reads and retries after
// losing the counter swap to a concurrent debit.
const debitRetries = 3

// CreditService meters the message-credit counters. Debits go through the
// same check-and-set contract as the cash balance: a debit only succeeds
// against the exact counter value it read, so two concurrent debits can
// never both spend the same credits.
type CreditService struct {
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

// NewCreditService creates a new credit service
func NewCreditService(tenantRepo identity.TenantRepository, logger *zap.Logger) *CreditService {
	return &CreditService{
		tenantRepo: tenantRepo,
		logger:     logger,
	}
}

// GetCredits reads the current counters for a tenant
func (s *CreditService) GetCredits(ctx context.Context, tenantID uuid.UUID) (identity.MessageCredits, error) {
	if tenantID == uuid.Nil {
		return identity.MessageCredits{}, shared.ErrTenantRequired
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return identity.MessageCredits{}, err
	}
	return tenant.Settings.Credits, nil
}

// TopUp adds credits to a counter, retrying the swap when a concurrent
// debit moves the counter underneath it
func (s *CreditService) TopUp(ctx context.Context, tenantID uuid.UUID, kind identity.CreditKind, qty int) (int, error) {
	if qty <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Top-up quantity must be positive")
	}
	return s.adjust(ctx, tenantID, kind, qty)
}

// DebitCredits spends qty credits of the given kind. Insufficient credits
// fail without touching the counter.
func (s *CreditService) DebitCredits(ctx context.Context, tenantID uuid.UUID, kind identity.CreditKind, qty int) (int, error) {
	if qty <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Debit quantity must be positive")
	}
	return s.adjust(ctx, tenantID, kind, -qty)
}

func (s *CreditService) adjust(ctx context.Context, tenantID uuid.UUID, kind identity.CreditKind, delta int) (int, error) {
	if tenantID == uuid.Nil {
		return 0, shared.ErrTenantRequired
	}
	if !kind.IsValid() {
		return 0, shared.NewDomainError("INVALID_INPUT", "Unknown credit kind: "+string(kind))
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	known := tenant.Settings.Credits.For(kind)

	for attempt := 0; ; attempt++ {
		next := known + delta
		if next < 0 {
			return known, shared.ErrInsufficientCredits
		}

		current, err := s.tenantRepo.CompareAndSwapCredits(ctx, tenantID, kind, next, known)
		if err == nil {
			return current, nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return 0, err
		}
		if attempt >= debitRetries {
			s.logger.Warn("Credit adjustment gave up after repeated conflicts",
				zap.String("tenant_id", tenantID.String()),
				zap.String("kind", string(kind)),
				zap.Int("delta", delta),
			)
			return current, shared.ErrConcurrencyConflict
		}
		// Another writer moved the counter; retry against its value.
		known = current
	}
}
