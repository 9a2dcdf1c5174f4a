package identity

import (
	"encoding/json"

	"github.com/bahikhata/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditKind identifies a metered message-credit counter
type CreditKind string

const (
	CreditKindPromotional   CreditKind = "promotional"
	CreditKindTransactional CreditKind = "transactional"
)

// IsValid returns true if the credit kind is valid
func (k CreditKind) IsValid() bool {
	switch k {
	case CreditKindPromotional, CreditKindTransactional:
		return true
	}
	return false
}

// MessageCredits holds the metered messaging counters. They are debited by
// the outbound messaging collaborator through the same check-and-set
// contract that guards the cash balance.
type MessageCredits struct {
	Promotional   int `json:"promotional" gorm:"column:credits_promotional;not null;default:0"`
	Transactional int `json:"transactional" gorm:"column:credits_transactional;not null;default:0"`
}

// For returns the counter value for the given kind
func (c MessageCredits) For(kind CreditKind) int {
	if kind == CreditKindTransactional {
		return c.Transactional
	}
	return c.Promotional
}

// Settings is the tenant settings blob. The cash balance is kept as a
// decimal string; a nil value means the scalar was never seeded from the
// cashbook and must be recovered before conditional updates can be used.
type Settings struct {
	CashBalance *string        `json:"cash_balance,omitempty" gorm:"column:cash_balance;type:varchar(40)"`
	Credits     MessageCredits `json:"message_credits" gorm:"embedded"`
	Preferences string         `json:"preferences,omitempty" gorm:"column:preferences;type:jsonb;default:'{}'"`
}

// DefaultSettings returns settings for a freshly onboarded tenant. The cash
// balance deliberately starts unseeded.
func DefaultSettings() Settings {
	return Settings{
		CashBalance: nil,
		Credits:     MessageCredits{},
		Preferences: "{}",
	}
}

// CashBalanceDecimal parses the stored cash balance. The second return value
// is false when the balance was never seeded.
func (s Settings) CashBalanceDecimal() (decimal.Decimal, bool, error) {
	if s.CashBalance == nil {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(*s.CashBalance)
	if err != nil {
		return decimal.Zero, true, shared.NewDomainError("INVALID_BALANCE", "Stored cash balance is not a valid decimal")
	}
	return d, true, nil
}

// PreferencesMap decodes the preferences JSON object
func (s Settings) PreferencesMap() (map[string]any, error) {
	prefs := make(map[string]any)
	if s.Preferences == "" {
		return prefs, nil
	}
	if err := json.Unmarshal([]byte(s.Preferences), &prefs); err != nil {
		return nil, shared.NewDomainError("INVALID_PREFERENCES", "Stored preferences are not a valid JSON object")
	}
	return prefs, nil
}

// MergePreferences deep-merges a partial preferences patch into the stored
// preferences. Nested objects are merged key-by-key rather than replaced
// wholesale, so a concurrent unrelated update cannot be dropped by a
// sibling writer.
func (s *Settings) MergePreferences(patch map[string]any) error {
	current, err := s.PreferencesMap()
	if err != nil {
		return err
	}
	merged := DeepMerge(current, patch)
	encoded, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	s.Preferences = string(encoded)
	return nil
}

// DeepMerge merges patch into base recursively. Nested maps are merged
// key-by-key; any other value in patch replaces the base value. A nil value
// in patch deletes the key.
func DeepMerge(base, patch map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(result, k)
			continue
		}
		patchMap, patchIsMap := v.(map[string]any)
		baseMap, baseIsMap := result[k].(map[string]any)
		if patchIsMap && baseIsMap {
			result[k] = DeepMerge(baseMap, patchMap)
			continue
		}
		result[k] = v
	}
	return result
}
