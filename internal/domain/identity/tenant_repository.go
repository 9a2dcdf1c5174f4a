package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantRepository defines the persistence contract for tenants. The
// conditional-update methods form the balance store: each one is a single
// atomic check-and-set at the storage boundary, so the same contract can be
// backed by different storage engines.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error

	// MergeSettings deep-merges a partial preferences patch into the stored
	// settings. It is unconditional and intended for non-contended fields.
	MergeSettings(ctx context.Context, tenantID uuid.UUID, patch map[string]any) (*Settings, error)

	// CompareAndSwapCashBalance writes newValue only if the stored balance
	// still equals known at the instant of the write. On mismatch it changes
	// nothing and returns the fresh stored value together with
	// shared.ErrConcurrencyConflict so the caller can re-read and retry.
	CompareAndSwapCashBalance(ctx context.Context, tenantID uuid.UUID, newValue, known decimal.Decimal) (decimal.Decimal, error)

	// SeedCashBalance initializes the cash balance once for tenants whose
	// scalar was never set. Returns false when the balance is already seeded.
	SeedCashBalance(ctx context.Context, tenantID uuid.UUID, value decimal.Decimal) (bool, error)

	// CompareAndSwapCredits writes qty to the given message-credit counter
	// only if its stored value still equals known. Same conflict contract as
	// CompareAndSwapCashBalance.
	CompareAndSwapCredits(ctx context.Context, tenantID uuid.UUID, kind CreditKind, qty, known int) (int, error)
}
