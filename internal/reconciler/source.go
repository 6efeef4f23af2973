package reconciler

import (
	"time"

	"lab-reconciliation-engine/internal/models"
)

// SliceSource is an in-memory TransactionSource over a loaded transaction
// batch. It backs the CLI and tests; it over-returns by design, handing back
// every transaction dated inside the window and leaving the reference and
// amount checks to the reconciler.
type SliceSource struct {
	byDate map[string][]*models.LabTransaction
}

// NewSliceSource indexes the given transactions by calendar day.
func NewSliceSource(transactions []*models.LabTransaction) *SliceSource {
	source := &SliceSource{byDate: make(map[string][]*models.LabTransaction)}
	for _, tx := range transactions {
		if tx == nil || tx.Date.IsZero() {
			continue
		}
		key := models.DateOnly(tx.Date).Format("2006-01-02")
		source.byDate[key] = append(source.byDate[key], tx)
	}
	return source
}

// FindByCode returns the transactions recorded between from and to,
// inclusive on both ends.
func (s *SliceSource) FindByCode(code string, from, to time.Time) ([]*models.LabTransaction, error) {
	var found []*models.LabTransaction
	for day := models.DateOnly(from); !day.After(models.DateOnly(to)); day = day.AddDate(0, 0, 1) {
		found = append(found, s.byDate[day.Format("2006-01-02")]...)
	}
	return found, nil
}
