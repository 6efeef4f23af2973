// Package duplicate classifies a newly submitted financial document against
// existing records into a severity tier, so operators catch double bookings
// before they are committed. The classifier is advisory: only the blocked
// tier disallows continuation, and it never writes or locks anything itself.
package duplicate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

// TierRule describes how one severity tier is presented and whether the
// caller may commit the write despite it.
type TierRule struct {
	Label         string `json:"label"`
	AllowContinue bool   `json:"allow_continue"`
}

// TierTable is the enumerated tier configuration plus the tolerances used
// by the medium and low tiers. New tiers are added here, not inside the
// matching logic.
type TierTable struct {
	Rules map[models.DuplicateTier]TierRule `json:"rules"`

	// AmountTolerance is the absolute value tolerance for the medium tier.
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// DueDateToleranceDays is the due-date window for the medium tier.
	DueDateToleranceDays int `json:"due_date_tolerance_days"`

	// LowBandPercent is the wider percentage value tolerance for the
	// advisory low tier (5.0 means 5%).
	LowBandPercent float64 `json:"low_band_percent"`

	// NameAnchorLen is the compact-name anchor length used for fuzzy
	// beneficiary overlap in the low tier.
	NameAnchorLen int `json:"name_anchor_len"`
}

// DefaultTierTable returns the tier configuration used in production.
func DefaultTierTable() *TierTable {
	return &TierTable{
		Rules: map[models.DuplicateTier]TierRule{
			models.TierBlocked: {Label: "Documento já cadastrado", AllowContinue: false},
			models.TierHigh:    {Label: "Provável duplicidade", AllowContinue: true},
			models.TierMedium:  {Label: "Possível duplicidade", AllowContinue: true},
			models.TierLow:     {Label: "Verificar fornecedor", AllowContinue: true},
			models.TierNone:    {Label: "", AllowContinue: true},
		},
		AmountTolerance:      decimal.NewFromFloat(0.05),
		DueDateToleranceDays: 3,
		LowBandPercent:       5.0,
		NameAnchorLen:        10,
	}
}

// Validate checks the tier table for consistency.
func (tt *TierTable) Validate() error {
	required := []models.DuplicateTier{
		models.TierBlocked, models.TierHigh, models.TierMedium,
		models.TierLow, models.TierNone,
	}
	for _, tier := range required {
		if _, ok := tt.Rules[tier]; !ok {
			return fmt.Errorf("tier table missing rule for tier '%s'", tier)
		}
	}

	if rule := tt.Rules[models.TierBlocked]; rule.AllowContinue {
		return fmt.Errorf("blocked tier must not allow continuation")
	}
	if rule := tt.Rules[models.TierNone]; !rule.AllowContinue {
		return fmt.Errorf("none tier must allow continuation")
	}

	if tt.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative")
	}
	if tt.DueDateToleranceDays < 0 {
		return fmt.Errorf("due date tolerance days cannot be negative: %d", tt.DueDateToleranceDays)
	}
	if tt.LowBandPercent < 0 || tt.LowBandPercent > 100 {
		return fmt.Errorf("low band percent must be between 0 and 100: %f", tt.LowBandPercent)
	}
	if tt.NameAnchorLen <= 0 {
		return fmt.Errorf("name anchor length must be positive: %d", tt.NameAnchorLen)
	}
	return nil
}

// Rule returns the rule for a tier, falling back to the none tier when an
// unknown tier is asked for.
func (tt *TierTable) Rule(tier models.DuplicateTier) TierRule {
	if rule, ok := tt.Rules[tier]; ok {
		return rule
	}
	return tt.Rules[models.TierNone]
}
