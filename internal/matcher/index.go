package matcher

import (
	"github.com/schollz/closestmatch"

	"lab-reconciliation-engine/internal/models"
	"lab-reconciliation-engine/internal/normalize"
)

// indexCutoff is the statement size above which the name strategy stops
// scanning every record and consults the n-gram index instead.
const indexCutoff = 200

// shortlistSize is how many index hits are pulled per beneficiary. Generous
// on purpose: the index only pre-selects, the name strategy still decides.
const shortlistSize = 25

// descriptionIndex shortlists bank records whose descriptions resemble a
// beneficiary name, using n-gram bag similarity. Month-sized statements run
// a few thousand lines; without the shortlist the name strategy is a full
// cross product of payables and records.
type descriptionIndex struct {
	matcher   *closestmatch.ClosestMatch
	byKey     map[string][]*models.BankRecord
	allDebits []*models.BankRecord
}

// newDescriptionIndex builds an index over the debit records of a statement.
func newDescriptionIndex(records []*models.BankRecord) *descriptionIndex {
	index := &descriptionIndex{
		byKey: make(map[string][]*models.BankRecord),
	}

	var keys []string
	for _, record := range records {
		if record == nil || !record.IsDebit() {
			continue
		}
		index.allDebits = append(index.allDebits, record)

		key := normalize.Text(record.Description)
		if key == "" {
			continue
		}
		if _, seen := index.byKey[key]; !seen {
			keys = append(keys, key)
		}
		index.byKey[key] = append(index.byKey[key], record)
	}

	if len(index.allDebits) > indexCutoff && len(keys) > 0 {
		index.matcher = closestmatch.New(keys, []int{3, 4})
	}
	return index
}

// debits returns every debit record, in statement order.
func (di *descriptionIndex) debits() []*models.BankRecord {
	return di.allDebits
}

// shortlist returns the records worth evaluating for a beneficiary name.
// Below the cutoff that is every debit record; above it, the n-gram
// neighbors of the name. Membership in the shortlist never implies a match;
// the name strategy applies the authoritative rule to each entry.
func (di *descriptionIndex) shortlist(beneficiary string) []*models.BankRecord {
	if di.matcher == nil {
		return di.allDebits
	}

	key := normalize.Text(beneficiary)
	if key == "" {
		return nil
	}

	selected := make(map[*models.BankRecord]bool)
	for _, hit := range di.matcher.ClosestN(key, shortlistSize) {
		for _, record := range di.byKey[hit] {
			selected[record] = true
		}
	}

	// Preserve statement order so candidate ranking stays deterministic.
	var out []*models.BankRecord
	for _, record := range di.allDebits {
		if selected[record] {
			out = append(out, record)
		}
	}
	return out
}
