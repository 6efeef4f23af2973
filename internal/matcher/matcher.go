package matcher

import (
	"sort"

	"lab-reconciliation-engine/internal/models"
)

// Engine proposes ranked matches between payables and bank statement lines.
// It holds no state between calls; every FindMatches run is independent and
// may execute concurrently with others.
type Engine struct {
	config     *Config
	strategies []Strategy
}

// NewEngine creates a matching engine; a nil config selects the defaults.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:     config,
		strategies: defaultStrategies(config),
	}
}

// NewEngineWithStrategies creates an engine with a custom strategy chain,
// evaluated in the given order. Used to swap scoring models without
// touching the matching control flow.
func NewEngineWithStrategies(config *Config, strategies []Strategy) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if len(strategies) == 0 {
		strategies = defaultStrategies(config)
	}
	return &Engine{config: config, strategies: strategies}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// FindMatches evaluates every payable against the debit lines of the
// statement and returns all surfaced candidates, globally sorted by
// confidence descending. Each payable keeps at most its top candidates per
// the configuration; candidates below the low band are not surfaced.
// Credit lines are never considered, since payables represent outgoing
// money. A payable with no qualifying record produces zero candidates.
func (e *Engine) FindMatches(payables []*models.Payable, records []*models.BankRecord) []*models.MatchCandidate {
	index := newDescriptionIndex(records)

	var all []*models.MatchCandidate
	for _, payable := range payables {
		if payable == nil {
			continue
		}
		all = append(all, e.matchPayable(payable, index)...)
	}

	// Global ranking, best first. The stable sort keeps the per-payable
	// order for equal scores.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})
	return all
}

// matchPayable produces the ranked, truncated candidate list for one
// payable.
func (e *Engine) matchPayable(payable *models.Payable, index *descriptionIndex) []*models.MatchCandidate {
	// The name strategy only sees shortlisted records on large statements.
	nameEligible := make(map[*models.BankRecord]bool)
	for _, record := range index.shortlist(payable.Beneficiary) {
		nameEligible[record] = true
	}

	var candidates []*models.MatchCandidate
	for _, record := range index.debits() {
		for _, strategy := range e.strategies {
			if strategy.Type() == models.MatchBeneficiaryName && !nameEligible[record] {
				continue
			}

			candidate, ok := strategy.Evaluate(payable, record)
			if !ok {
				continue
			}
			if candidate.Confidence >= e.config.MinSurfacedConfidence {
				candidates = append(candidates, candidate)
			}
			if strategy.ShortCircuit() {
				// Identifier evidence is definitive for this record;
				// weaker strategies would only add noise.
				break
			}
		}
	}

	// Rank best first; ties keep strategy order (identifier before
	// value-date before name).
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Type < candidates[j].Type
	})

	if len(candidates) > e.config.MaxCandidatesPerPayable {
		candidates = candidates[:e.config.MaxCandidatesPerPayable]
	}
	return candidates
}

// UnmatchedPayables returns the payables with no candidate at or above the
// threshold. A non-positive threshold selects the configured default.
func (e *Engine) UnmatchedPayables(matches []*models.MatchCandidate, payables []*models.Payable, threshold int) []*models.Payable {
	if threshold <= 0 {
		threshold = e.config.UnmatchedThreshold
	}

	matched := make(map[string]bool)
	for _, candidate := range matches {
		if candidate.Confidence >= threshold && candidate.Payable != nil {
			matched[candidate.Payable.ID] = true
		}
	}

	var unmatched []*models.Payable
	for _, payable := range payables {
		if payable != nil && !matched[payable.ID] {
			unmatched = append(unmatched, payable)
		}
	}
	return unmatched
}

// UnmatchedBankRecords returns the debit lines with no candidate at or
// above the threshold. Credit lines are outside the matcher's scope and are
// not reported. A non-positive threshold selects the configured default.
func (e *Engine) UnmatchedBankRecords(matches []*models.MatchCandidate, records []*models.BankRecord, threshold int) []*models.BankRecord {
	if threshold <= 0 {
		threshold = e.config.UnmatchedThreshold
	}

	matched := make(map[string]bool)
	for _, candidate := range matches {
		if candidate.Confidence >= threshold && candidate.BankRecord != nil {
			matched[candidate.BankRecord.ID] = true
		}
	}

	var unmatched []*models.BankRecord
	for _, record := range records {
		if record != nil && record.IsDebit() && !matched[record.ID] {
			unmatched = append(unmatched, record)
		}
	}
	return unmatched
}
