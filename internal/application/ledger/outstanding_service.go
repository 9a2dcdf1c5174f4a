package ledger

import (
	"context"
	"sort"

	"github.com/bahikhata/backend/internal/domain/partner"
	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/bahikhata/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OutstandingCache caches the per-tenant outstanding view. A nil slice with
// nil error from Get is a miss; cache failures never fail the read path.
type OutstandingCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) ([]partner.OutstandingSummary, error)
	Set(ctx context.Context, tenantID uuid.UUID, summaries []partner.OutstandingSummary) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

// OutstandingService serves the dashboard udhaar view over cached retailer
// balances. It never recomputes ledgers itself; freshness comes from
// reconciliation invalidating the cache.
type OutstandingService struct {
	retailerRepo partner.RetailerRepository
	cache        OutstandingCache
	logger       *zap.Logger
}

// NewOutstandingService creates a new outstanding view service
func NewOutstandingService(retailerRepo partner.RetailerRepository, cache OutstandingCache, logger *zap.Logger) *OutstandingService {
	return &OutstandingService{
		retailerRepo: retailerRepo,
		cache:        cache,
		logger:       logger,
	}
}

// GetOutstanding lists every retailer with a non-zero outstanding or crate
// balance, sorted by name. The cached view is served when present; cache
// errors degrade to a recomputed view rather than failing the request.
func (s *OutstandingService) GetOutstanding(ctx context.Context, tenantID uuid.UUID) ([]partner.OutstandingSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_outstanding")
	defer span.End()

	if tenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}

	if cached, err := s.cache.Get(ctx, tenantID); err != nil {
		s.logger.Warn("Outstanding cache read failed, falling back to store",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else if cached != nil {
		telemetry.SetAttributes(span, "cache", "hit")
		return cached, nil
	}

	retailers, err := s.retailerRepo.FindWithOutstanding(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	summaries := make([]partner.OutstandingSummary, 0, len(retailers))
	for _, r := range retailers {
		if !r.HasOutstanding() {
			continue
		}
		summaries = append(summaries, partner.NewOutstandingSummary(r))
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	if err := s.cache.Set(ctx, tenantID, summaries); err != nil {
		s.logger.Warn("Outstanding cache write failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
	return summaries, nil
}

// TotalOutstanding sums the outstanding column of the current view
func (s *OutstandingService) TotalOutstanding(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	summaries, err := s.GetOutstanding(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.Outstanding)
	}
	return total, nil
}

// InvalidateOutstanding drops the cached view after a reconciliation or a
// balance-affecting write
func (s *OutstandingService) InvalidateOutstanding(ctx context.Context, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return shared.ErrTenantRequired
	}
	return s.cache.Invalidate(ctx, tenantID)
}
