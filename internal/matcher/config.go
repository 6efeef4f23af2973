// Package matcher proposes ranked pairings between open payables and bank
// statement lines. Three strategies run in fixed order against each debit
// record (digit-line identifier, exact value with a date window, and
// normalized beneficiary name), each producing a confidence score between
// 0 and 100. The engine is deterministic and side-effect-free: it only
// reads the collections it is given and returns fresh candidate values.
package matcher

import "fmt"

// Config holds the tunables of the matching engine. The defaults reproduce
// the behavior the back office runs in production; the factories below cover
// the common strict/relaxed variations.
type Config struct {
	// MaxCandidatesPerPayable caps how many candidates one payable keeps,
	// best first.
	MaxCandidatesPerPayable int `json:"max_candidates_per_payable"`

	// DateToleranceDays is the window for the exact-value strategy.
	DateToleranceDays int `json:"date_tolerance_days"`

	// NameValueTolerancePercent is the value tolerance for the name
	// strategy, as a percentage of the payable amount (5.0 means 5%).
	NameValueTolerancePercent float64 `json:"name_value_tolerance_percent"`

	// ValueDateFloor is the lowest confidence the value-date strategy may
	// emit; the linear date penalty never decays below it, keeping
	// value-date evidence above the name band.
	ValueDateFloor int `json:"value_date_floor"`

	// IdentifierAnchorLen is how many leading digits of the digit line must
	// appear in the statement description.
	IdentifierAnchorLen int `json:"identifier_anchor_len"`

	// NameAnchorLen is the compact-name anchor length for partial
	// beneficiary names.
	NameAnchorLen int `json:"name_anchor_len"`

	// MinSurfacedConfidence drops candidates below the low band entirely.
	MinSurfacedConfidence int `json:"min_surfaced_confidence"`

	// UnmatchedThreshold is the default confidence a candidate must clear
	// for its payable or bank record to count as matched.
	UnmatchedThreshold int `json:"unmatched_threshold"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxCandidatesPerPayable:   3,
		DateToleranceDays:         3,
		NameValueTolerancePercent: 5.0,
		ValueDateFloor:            70,
		IdentifierAnchorLen:       20,
		NameAnchorLen:             10,
		MinSurfacedConfidence:     50,
		UnmatchedThreshold:        60,
	}
}

// StrictConfig narrows the windows for month-end closings where only
// near-certain suggestions are wanted.
func StrictConfig() *Config {
	config := DefaultConfig()
	config.DateToleranceDays = 1
	config.NameValueTolerancePercent = 1.0
	config.MinSurfacedConfidence = 70
	config.UnmatchedThreshold = 85
	return config
}

// RelaxedConfig widens the windows for exploratory runs over stale
// statements.
func RelaxedConfig() *Config {
	config := DefaultConfig()
	config.MaxCandidatesPerPayable = 5
	config.DateToleranceDays = 5
	config.NameValueTolerancePercent = 10.0
	config.UnmatchedThreshold = 50
	return config
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxCandidatesPerPayable <= 0 {
		return fmt.Errorf("max candidates per payable must be positive: %d", c.MaxCandidatesPerPayable)
	}
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", c.DateToleranceDays)
	}
	if c.NameValueTolerancePercent < 0 || c.NameValueTolerancePercent > 100 {
		return fmt.Errorf("name value tolerance percent must be between 0 and 100: %f", c.NameValueTolerancePercent)
	}
	if c.ValueDateFloor < 0 || c.ValueDateFloor > 100 {
		return fmt.Errorf("value date floor must be between 0 and 100: %d", c.ValueDateFloor)
	}
	if c.IdentifierAnchorLen <= 0 {
		return fmt.Errorf("identifier anchor length must be positive: %d", c.IdentifierAnchorLen)
	}
	if c.NameAnchorLen <= 0 {
		return fmt.Errorf("name anchor length must be positive: %d", c.NameAnchorLen)
	}
	if c.MinSurfacedConfidence < 0 || c.MinSurfacedConfidence > 100 {
		return fmt.Errorf("min surfaced confidence must be between 0 and 100: %d", c.MinSurfacedConfidence)
	}
	if c.UnmatchedThreshold < 0 || c.UnmatchedThreshold > 100 {
		return fmt.Errorf("unmatched threshold must be between 0 and 100: %d", c.UnmatchedThreshold)
	}
	return nil
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a human-readable description of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{TopN: %d, DateTolerance: %d days, NameTolerance: %.1f%%, Threshold: %d}",
		c.MaxCandidatesPerPayable, c.DateToleranceDays, c.NameValueTolerancePercent, c.UnmatchedThreshold)
}
