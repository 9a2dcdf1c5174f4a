package persistence

import (
	"context"
	"errors"

	"github.com/bahikhata/backend/internal/domain/partner"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByIDForTenant finds a vendor by ID within a tenant. A vendor belonging
// to another tenant is reported as not found, never as forbidden, so tenant
// existence does not leak across boundaries.
func (r *GormVendorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vendor, error) {
	var vendor partner.Vendor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindAllForTenant finds all vendors for a tenant, sorted by name
func (r *GormVendorRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]partner.Vendor, error) {
	var vendors []partner.Vendor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

// GormRetailerRepository implements RetailerRepository using GORM
type GormRetailerRepository struct {
	db *gorm.DB
}

// NewGormRetailerRepository creates a new GormRetailerRepository
func NewGormRetailerRepository(db *gorm.DB) *GormRetailerRepository {
	return &GormRetailerRepository{db: db}
}

// FindByIDForTenant finds a retailer by ID within a tenant
func (r *GormRetailerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Retailer, error) {
	var retailer partner.Retailer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&retailer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &retailer, nil
}

// FindAllForTenant finds all retailers for a tenant, sorted by name
func (r *GormRetailerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]partner.Retailer, error) {
	var retailers []partner.Retailer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&retailers).Error; err != nil {
		return nil, err
	}
	return retailers, nil
}

// FindWithOutstanding finds retailers carrying a non-zero udhaar balance.
// This filters the denormalized column; it does not recompute ledgers.
func (r *GormRetailerRepository) FindWithOutstanding(ctx context.Context, tenantID uuid.UUID) ([]partner.Retailer, error) {
	var retailers []partner.Retailer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (udhaar_balance <> 0 OR crate_balance <> 0)", tenantID).
		Order("name ASC").
		Find(&retailers).Error; err != nil {
		return nil, err
	}
	return retailers, nil
}

// Save creates or updates a retailer
func (r *GormRetailerRepository) Save(ctx context.Context, retailer *partner.Retailer) error {
	return r.db.WithContext(ctx).Save(retailer).Error
}

// Ensure the repositories implement their domain contracts
var (
	_ partner.VendorRepository   = (*GormVendorRepository)(nil)
	_ partner.RetailerRepository = (*GormRetailerRepository)(nil)
)
