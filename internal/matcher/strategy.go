package matcher

import (
	"strings"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
	"lab-reconciliation-engine/internal/normalize"
)

// Strategy evaluates one payable against one bank record and either
// produces a scored candidate or reports no signal. The confidence formulas
// are deliberately simple linear penalties; swapping a strategy replaces the
// scoring without touching the engine's control flow.
type Strategy interface {
	// Type identifies the match type this strategy produces.
	Type() models.MatchType

	// Evaluate returns a candidate and true on a hit. The second return is
	// false when the record carries no signal for this strategy, including
	// when required fields are missing.
	Evaluate(payable *models.Payable, record *models.BankRecord) (*models.MatchCandidate, bool)

	// ShortCircuit reports whether a hit ends evaluation of this bank
	// record: weaker strategies only add noise once this one has spoken.
	ShortCircuit() bool
}

// defaultStrategies returns the production strategy chain in ranking order.
func defaultStrategies(config *Config) []Strategy {
	return []Strategy{
		&identifierStrategy{config: config},
		&valueDateStrategy{config: config},
		&nameStrategy{config: config},
	}
}

// identifierStrategy matches the payable's digit line against the statement
// description. The leading digits of a boleto digit line are unique enough
// that a hit is near-certain, so the score is a flat 95.
type identifierStrategy struct {
	config *Config
}

func (s *identifierStrategy) Type() models.MatchType { return models.MatchExactIdentifier }

func (s *identifierStrategy) ShortCircuit() bool { return true }

func (s *identifierStrategy) Evaluate(payable *models.Payable, record *models.BankRecord) (*models.MatchCandidate, bool) {
	identifier := payable.DigitLine
	if identifier == "" {
		identifier = payable.Barcode
	}
	digits := normalize.DigitLine(identifier)
	if digits == "" {
		return nil, false
	}

	anchor := normalize.Anchor(digits, s.config.IdentifierAnchorLen)
	description := normalize.DigitLine(record.Description)
	if anchor == "" || !strings.Contains(description, anchor) {
		return nil, false
	}

	return &models.MatchCandidate{
		Payable:      payable,
		BankRecord:   record,
		Type:         models.MatchExactIdentifier,
		Confidence:   95,
		AmountDiff:   record.AbsAmount().Sub(payable.Amount).Abs(),
		DateDiffDays: models.DateDiffDays(record.Date, payable.DueDate),
	}, true
}

// valueDateStrategy matches an exact amount inside a date window around the
// due date. Same-day scores 90; each day of distance costs 5 points down to
// the configured floor.
type valueDateStrategy struct {
	config *Config
}

func (s *valueDateStrategy) Type() models.MatchType { return models.MatchExactValueDate }

func (s *valueDateStrategy) ShortCircuit() bool { return false }

func (s *valueDateStrategy) Evaluate(payable *models.Payable, record *models.BankRecord) (*models.MatchCandidate, bool) {
	if payable.DueDate.IsZero() || record.Date.IsZero() {
		return nil, false
	}
	if !models.SameCents(record.AbsAmount(), payable.Amount) {
		return nil, false
	}

	dateDiff := models.DateDiffDays(record.Date, payable.DueDate)
	if dateDiff > s.config.DateToleranceDays {
		return nil, false
	}

	confidence := 90 - 5*dateDiff
	if confidence < s.config.ValueDateFloor {
		confidence = s.config.ValueDateFloor
	}

	return &models.MatchCandidate{
		Payable:      payable,
		BankRecord:   record,
		Type:         models.MatchExactValueDate,
		Confidence:   confidence,
		AmountDiff:   record.AbsAmount().Sub(payable.Amount).Abs(),
		DateDiffDays: dateDiff,
	}, true
}

// nameStrategy matches the normalized beneficiary name against the
// normalized statement description, either containing the other through a
// fixed-length anchor, with the value inside a percentage tolerance of the
// payable amount. Confidence starts at 70 and loses 2 points per day of
// date distance, capped at ten days.
type nameStrategy struct {
	config *Config
}

func (s *nameStrategy) Type() models.MatchType { return models.MatchBeneficiaryName }

func (s *nameStrategy) ShortCircuit() bool { return false }

func (s *nameStrategy) Evaluate(payable *models.Payable, record *models.BankRecord) (*models.MatchCandidate, bool) {
	name := normalize.Compact(payable.Beneficiary)
	description := normalize.Compact(record.Description)
	if name == "" || description == "" {
		return nil, false
	}

	nameAnchor := normalize.Anchor(name, s.config.NameAnchorLen)
	descriptionAnchor := normalize.Anchor(description, s.config.NameAnchorLen)
	if !strings.Contains(description, nameAnchor) && !strings.Contains(name, descriptionAnchor) {
		return nil, false
	}

	if payable.Amount.IsZero() {
		return nil, false
	}
	amountDiff := record.AbsAmount().Sub(payable.Amount).Abs()
	tolerance := payable.Amount.Abs().
		Mul(decimal.NewFromFloat(s.config.NameValueTolerancePercent / 100.0))
	if amountDiff.GreaterThan(tolerance) {
		return nil, false
	}

	dateDiff := 0
	if !payable.DueDate.IsZero() && !record.Date.IsZero() {
		dateDiff = models.DateDiffDays(record.Date, payable.DueDate)
	}
	penaltyDays := dateDiff
	if penaltyDays > 10 {
		penaltyDays = 10
	}

	return &models.MatchCandidate{
		Payable:      payable,
		BankRecord:   record,
		Type:         models.MatchBeneficiaryName,
		Confidence:   70 - 2*penaltyDays,
		AmountDiff:   amountDiff,
		DateDiffDays: dateDiff,
	}, true
}
