package partner

import (
	"context"

	"github.com/google/uuid"
)

// VendorRepository defines the persistence contract for vendors. Every read
// takes a tenant id; lookups for a different tenant's vendor return
// shared.ErrNotFound even when the vendor id exists elsewhere.
type VendorRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}

// RetailerRepository defines the persistence contract for retailers
type RetailerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Retailer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Retailer, error)
	// FindWithOutstanding returns retailers with a non-zero udhaar balance,
	// sorted by name. It is a filter over the denormalized records, not a
	// recomputation.
	FindWithOutstanding(ctx context.Context, tenantID uuid.UUID) ([]Retailer, error)
	Save(ctx context.Context, retailer *Retailer) error
}
