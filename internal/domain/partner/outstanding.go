package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutstandingSummary is the read-only udhaar projection over a retailer's
// cached balances. It trusts whichever process last reconciled the
// retailer; the merge engine remains the source of truth for audits.
type OutstandingSummary struct {
	RetailerID   uuid.UUID       `json:"retailer_id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone,omitempty"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	CrateBalance int             `json:"crate_balance"`
}

// NewOutstandingSummary projects a retailer into the outstanding view
func NewOutstandingSummary(r Retailer) OutstandingSummary {
	return OutstandingSummary{
		RetailerID:   r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		Outstanding:  r.UdhaarBalance,
		CrateBalance: r.CrateBalance,
	}
}
