package duplicate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
	"lab-reconciliation-engine/internal/normalize"
)

// Fingerprint carries the identifying fields of a document about to be
// submitted. Empty fields are simply not used as evidence.
type Fingerprint struct {
	DigitLine      string
	Barcode        string
	TaxpayerID     string
	DocumentNumber string
	Beneficiary    string
	Amount         decimal.Decimal
	DueDate        time.Time
}

// Lookup is the caller-supplied view of existing documents. Implementations
// wrap whatever store the accounts-payable subsystem uses; the classifier
// only ever reads.
//
// Each method returns the candidate records it found, cancelled ones
// included; the classifier filters those out itself.
type Lookup interface {
	// ByDigitLine finds records carrying the given normalized digit line
	// or barcode.
	ByDigitLine(digits string) ([]*models.Payable, error)

	// ByTaxpayerID finds records for one taxpayer.
	ByTaxpayerID(taxpayerID string) ([]*models.Payable, error)
}

// Classifier evaluates fingerprints against a tier table.
type Classifier struct {
	table *TierTable
}

// NewClassifier creates a classifier; a nil table selects the defaults.
func NewClassifier(table *TierTable) *Classifier {
	if table == nil {
		table = DefaultTierTable()
	}
	return &Classifier{table: table}
}

// Classify produces a duplicate verdict for the candidate document. Tiers
// are evaluated most confident first and the first hit wins:
//
//	blocked: digit line / barcode already present on a live record
//	high:    taxpayer+document number, or taxpayer+amount+due date
//	medium:  same taxpayer, value within tolerance, due date within window
//	low:     fuzzy beneficiary overlap with value inside the wide band
//	none:    no signal
//
// A lookup failure downgrades to none with the failure noted in the reason:
// the submission flow must not be blocked because the duplicate check could
// not run.
func (c *Classifier) Classify(candidate Fingerprint, existing Lookup) models.DuplicateVerdict {
	if existing == nil {
		return c.verdict(models.TierNone, "", nil)
	}

	if verdict, ok := c.classifyByIdentifier(candidate, existing); ok {
		return verdict
	}

	records, err := c.taxpayerRecords(candidate, existing)
	if err != nil {
		return c.verdict(models.TierNone,
			fmt.Sprintf("verificação incompleta: %v", err), nil)
	}

	if conflict := c.findStrongPair(candidate, records); conflict != nil {
		return c.verdict(models.TierHigh,
			"mesmo CNPJ com número de documento ou valor e vencimento idênticos", conflict)
	}

	if conflict := c.findNearMatch(candidate, records); conflict != nil {
		return c.verdict(models.TierMedium,
			"mesmo CNPJ com valor e vencimento próximos", conflict)
	}

	if conflict := c.findNameOverlap(candidate, records); conflict != nil {
		return c.verdict(models.TierLow,
			"favorecido semelhante com valor próximo", conflict)
	}

	return c.verdict(models.TierNone, "", nil)
}

// classifyByIdentifier handles the blocked tier: an exact digit-line or
// barcode hit on a non-cancelled record.
func (c *Classifier) classifyByIdentifier(candidate Fingerprint, existing Lookup) (models.DuplicateVerdict, bool) {
	for _, raw := range []string{candidate.DigitLine, candidate.Barcode} {
		digits := normalize.DigitLine(raw)
		if digits == "" {
			continue
		}

		records, err := existing.ByDigitLine(digits)
		if err != nil {
			// The strong check could not run; weaker evidence may still
			// produce a verdict, so keep going.
			continue
		}

		for _, record := range records {
			if record == nil || record.IsCancelled() {
				continue
			}
			if normalize.DigitLine(record.DigitLine) == digits ||
				normalize.DigitLine(record.Barcode) == digits {
				return c.verdict(models.TierBlocked,
					"linha digitável já cadastrada", record), true
			}
		}
	}
	return models.DuplicateVerdict{}, false
}

// taxpayerRecords fetches the live records sharing the candidate's taxpayer
// ID. With no taxpayer ID there is nothing to fetch for the high and medium
// tiers, but the low tier still needs a record pool, so the beneficiary's
// records are not loaded here (the Lookup has no name scan; the low tier
// works off the taxpayer pool when present).
func (c *Classifier) taxpayerRecords(candidate Fingerprint, existing Lookup) ([]*models.Payable, error) {
	taxpayerID := strings.TrimSpace(candidate.TaxpayerID)
	if taxpayerID == "" {
		return nil, nil
	}

	records, err := existing.ByTaxpayerID(taxpayerID)
	if err != nil {
		return nil, err
	}

	live := records[:0:0]
	for _, record := range records {
		if record != nil && !record.IsCancelled() {
			live = append(live, record)
		}
	}
	return live, nil
}

// findStrongPair handles the high tier: taxpayer+document number, or
// taxpayer+amount+due date, exact on a live record.
func (c *Classifier) findStrongPair(candidate Fingerprint, records []*models.Payable) *models.Payable {
	docNumber := strings.TrimSpace(candidate.DocumentNumber)

	for _, record := range records {
		if docNumber != "" && strings.EqualFold(strings.TrimSpace(record.DocumentNumber), docNumber) {
			return record
		}
		if !candidate.DueDate.IsZero() &&
			record.Amount.Equal(candidate.Amount) &&
			models.DateDiffDays(record.DueDate, candidate.DueDate) == 0 {
			return record
		}
	}
	return nil
}

// findNearMatch handles the medium tier: same taxpayer with the value within
// the absolute tolerance and the due date within the configured window.
func (c *Classifier) findNearMatch(candidate Fingerprint, records []*models.Payable) *models.Payable {
	if candidate.DueDate.IsZero() {
		return nil
	}

	for _, record := range records {
		valueDiff := record.Amount.Sub(candidate.Amount).Abs()
		if valueDiff.GreaterThan(c.table.AmountTolerance) {
			continue
		}
		if models.DateDiffDays(record.DueDate, candidate.DueDate) <= c.table.DueDateToleranceDays {
			return record
		}
	}
	return nil
}

// findNameOverlap handles the advisory low tier: compact beneficiary names
// overlap (anchored containment either way) and the value difference stays
// inside the wide percentage band.
func (c *Classifier) findNameOverlap(candidate Fingerprint, records []*models.Payable) *models.Payable {
	candidateName := normalize.Compact(candidate.Beneficiary)
	if candidateName == "" || candidate.Amount.IsZero() {
		return nil
	}

	band := candidate.Amount.Abs().
		Mul(decimal.NewFromFloat(c.table.LowBandPercent / 100.0))

	for _, record := range records {
		recordName := normalize.Compact(record.Beneficiary)
		if recordName == "" {
			continue
		}

		anchorA := normalize.Anchor(candidateName, c.table.NameAnchorLen)
		anchorB := normalize.Anchor(recordName, c.table.NameAnchorLen)
		if !strings.Contains(recordName, anchorA) && !strings.Contains(candidateName, anchorB) {
			continue
		}

		if record.Amount.Sub(candidate.Amount).Abs().LessThanOrEqual(band) {
			return record
		}
	}
	return nil
}

func (c *Classifier) verdict(tier models.DuplicateTier, reason string, conflict *models.Payable) models.DuplicateVerdict {
	rule := c.table.Rule(tier)
	if reason == "" {
		reason = rule.Label
	}
	return models.DuplicateVerdict{
		Tier:          tier,
		Reason:        reason,
		Conflict:      conflict,
		AllowContinue: rule.AllowContinue,
	}
}
