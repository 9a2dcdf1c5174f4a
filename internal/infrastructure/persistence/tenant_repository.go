package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/bahikhata/backend/internal/domain/identity"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTenantRepository implements TenantRepository using GORM. The
// conditional-update methods are single conditional UPDATE statements: the
// check and the write happen in one round trip, so no interleaving between
// two writers can produce a lost update.
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// FindBySlug finds a tenant by its unique slug
func (r *GormTenantRepository) FindBySlug(ctx context.Context, slug string) (*identity.Tenant, error) {
	var tenant identity.Tenant
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.ToLower(slug)).
		First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// MergeSettings deep-merges a preferences patch under a row lock so two
// concurrent patches to unrelated keys both survive
func (r *GormTenantRepository) MergeSettings(ctx context.Context, tenantID uuid.UUID, patch map[string]any) (*identity.Settings, error) {
	var merged identity.Settings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant identity.Tenant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tenant, "id = ?", tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tenant.Settings.MergePreferences(patch); err != nil {
			return err
		}

		if err := tx.Model(&identity.Tenant{}).
			Where("id = ?", tenantID).
			Updates(map[string]any{
				"settings_preferences": tenant.Settings.Preferences,
				"version":              gorm.Expr("version + 1"),
			}).Error; err != nil {
			return err
		}

		merged = tenant.Settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

// CompareAndSwapCashBalance writes newValue only if the stored balance still
// equals known. The comparison is numeric, so "500" and "500.00" match.
func (r *GormTenantRepository) CompareAndSwapCashBalance(ctx context.Context, tenantID uuid.UUID, newValue, known decimal.Decimal) (decimal.Decimal, error) {
	result := r.db.WithContext(ctx).Model(&identity.Tenant{}).
		Where("id = ? AND settings_cash_balance IS NOT NULL AND settings_cash_balance::numeric = ?::numeric",
			tenantID, known.String()).
		Updates(map[string]any{
			"settings_cash_balance": newValue.String(),
			"version":               gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected > 0 {
		return newValue, nil
	}

	// The swap missed: either the tenant is gone or another writer changed
	// the balance. Report the value that is actually stored.
	tenant, err := r.FindByID(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	stored, _, err := tenant.Settings.CashBalanceDecimal()
	if err != nil {
		return decimal.Zero, err
	}
	return stored, shared.ErrConcurrencyConflict
}

// SeedCashBalance initializes the cash balance only when it was never set.
// The NULL guard in the statement makes two concurrent seeders safe: exactly
// one write sticks.
func (r *GormTenantRepository) SeedCashBalance(ctx context.Context, tenantID uuid.UUID, value decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).Model(&identity.Tenant{}).
		Where("id = ? AND settings_cash_balance IS NULL", tenantID).
		Updates(map[string]any{
			"settings_cash_balance": value.String(),
			"version":               gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Nothing written: distinguish an already-seeded tenant from a missing one.
	if _, err := r.FindByID(ctx, tenantID); err != nil {
		return false, err
	}
	return false, nil
}

// CompareAndSwapCredits writes qty to the chosen counter only if its stored
// value still equals known
func (r *GormTenantRepository) CompareAndSwapCredits(ctx context.Context, tenantID uuid.UUID, kind identity.CreditKind, qty, known int) (int, error) {
	column := "settings_credits_promotional"
	if kind == identity.CreditKindTransactional {
		column = "settings_credits_transactional"
	}

	result := r.db.WithContext(ctx).Model(&identity.Tenant{}).
		Where("id = ? AND "+column+" = ?", tenantID, known).
		Updates(map[string]any{
			column:    qty,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		return qty, nil
	}

	tenant, err := r.FindByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return tenant.Settings.Credits.For(kind), shared.ErrConcurrencyConflict
}

// Ensure GormTenantRepository implements TenantRepository
var _ identity.TenantRepository = (*GormTenantRepository)(nil)
