package partner

import (
	"time"

	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Retailer represents a sales-side counterparty. Besides the monetary
// balance it tracks the crate balance (reusable containers currently with
// the retailer) and the udhaar balance (outstanding amount owed). All three
// are denormalized caches maintained from the merge engine's output.
type Retailer struct {
	shared.TenantAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	Phone         string          `gorm:"type:varchar(50)"`
	Address       string          `gorm:"type:text"`
	Balance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CrateBalance  int             `gorm:"not null;default:0"`
	UdhaarBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Retailer) TableName() string {
	return "retailers"
}

// NewRetailer creates a new retailer for a tenant
func NewRetailer(tenantID uuid.UUID, name, phone string) (*Retailer, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	return &Retailer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		Balance:             decimal.Zero,
		UdhaarBalance:       decimal.Zero,
	}, nil
}

// SetCachedBalances replaces the denormalized balances with values derived
// from a full ledger merge. The operation is idempotent: reconciling twice
// from the same ledger state leaves the same values.
func (r *Retailer) SetCachedBalances(balance decimal.Decimal, crateBalance int) {
	r.Balance = balance
	r.CrateBalance = crateBalance
	r.UdhaarBalance = balance
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// HasOutstanding returns true if the retailer owes a non-zero udhaar amount
func (r *Retailer) HasOutstanding() bool {
	return !r.UdhaarBalance.IsZero()
}
