package duplicate

import (
	"lab-reconciliation-engine/internal/models"
	"lab-reconciliation-engine/internal/normalize"
)

// SliceLookup is an in-memory Lookup over a loaded payable batch. It backs
// the CLI and tests; a deployment with a live accounts-payable store would
// supply its own Lookup instead.
type SliceLookup struct {
	byDigits   map[string][]*models.Payable
	byTaxpayer map[string][]*models.Payable
}

// NewSliceLookup indexes the given records. Cancelled records are indexed
// too; filtering them is the classifier's job.
func NewSliceLookup(records []*models.Payable) *SliceLookup {
	lookup := &SliceLookup{
		byDigits:   make(map[string][]*models.Payable),
		byTaxpayer: make(map[string][]*models.Payable),
	}
	for _, record := range records {
		if record == nil {
			continue
		}
		if digits := normalize.DigitLine(record.DigitLine); digits != "" {
			lookup.byDigits[digits] = append(lookup.byDigits[digits], record)
		}
		if digits := normalize.DigitLine(record.Barcode); digits != "" {
			lookup.byDigits[digits] = append(lookup.byDigits[digits], record)
		}
		if taxpayer := normalize.DigitLine(record.TaxpayerID); taxpayer != "" {
			lookup.byTaxpayer[taxpayer] = append(lookup.byTaxpayer[taxpayer], record)
		}
	}
	return lookup
}

// ByDigitLine returns the records indexed under the given normalized digit
// line or barcode.
func (l *SliceLookup) ByDigitLine(digits string) ([]*models.Payable, error) {
	return l.byDigits[normalize.DigitLine(digits)], nil
}

// ByTaxpayerID returns the records registered for one taxpayer.
func (l *SliceLookup) ByTaxpayerID(taxpayerID string) ([]*models.Payable, error) {
	return l.byTaxpayer[normalize.DigitLine(taxpayerID)], nil
}
