package identity

import (
	"github.com/bahikhata/backend/internal/domain/shared"
)

// Event types for tenant aggregate
const (
	EventTypeTenantCreated       = "tenant.created"
	EventTypeTenantStatusChanged = "tenant.status_changed"
	EventTypeCashBalanceSeeded   = "tenant.cash_balance_seeded"
)

// TenantCreatedEvent is raised when a new tenant is onboarded
type TenantCreatedEvent struct {
	shared.BaseDomainEvent
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// NewTenantCreatedEvent creates a new TenantCreatedEvent
func NewTenantCreatedEvent(t *Tenant) *TenantCreatedEvent {
	return &TenantCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantCreated, "Tenant", t.ID, t.ID),
		Slug:            t.Slug,
		Name:            t.Name,
	}
}

// TenantStatusChangedEvent is raised when a tenant is suspended or re-activated
type TenantStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus TenantStatus `json:"old_status"`
	NewStatus TenantStatus `json:"new_status"`
}

// NewTenantStatusChangedEvent creates a new TenantStatusChangedEvent
func NewTenantStatusChangedEvent(t *Tenant, oldStatus, newStatus TenantStatus) *TenantStatusChangedEvent {
	return &TenantStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantStatusChanged, "Tenant", t.ID, t.ID),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// CashBalanceSeededEvent is raised when an uninitialized cash balance is
// recovered from the cashbook
type CashBalanceSeededEvent struct {
	shared.BaseDomainEvent
	Balance string `json:"balance"`
}

// NewCashBalanceSeededEvent creates a new CashBalanceSeededEvent
func NewCashBalanceSeededEvent(t *Tenant, balance string) *CashBalanceSeededEvent {
	return &CashBalanceSeededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashBalanceSeeded, "Tenant", t.ID, t.ID),
		Balance:         balance,
	}
}
