package partner

import (
	"time"

	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vendor represents a purchase-side counterparty (supplier). Balance is a
// denormalized cache of the final running balance of the vendor's merged
// ledger; the ledger recomputation is the source of truth used for audits.
type Vendor struct {
	shared.TenantAggregateRoot
	Name    string          `gorm:"type:varchar(200);not null"`
	Phone   string          `gorm:"type:varchar(50)"`
	Address string          `gorm:"type:text"`
	Balance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new vendor for a tenant
func NewVendor(tenantID uuid.UUID, name, phone string) (*Vendor, error) {
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	return &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Phone:               phone,
		Balance:             decimal.Zero,
	}, nil
}

// SetCachedBalance replaces the denormalized balance with a value derived
// from a full ledger merge. Callers must have computed the value after their
// own writes were durably applied.
func (v *Vendor) SetCachedBalance(balance decimal.Decimal) {
	v.Balance = balance
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
}

func validatePartnerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Counterparty name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Counterparty name cannot exceed 200 characters")
	}
	return nil
}
