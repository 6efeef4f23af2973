package reconciler

import (
	"lab-reconciliation-engine/internal/models"
	pkgerrors "lab-reconciliation-engine/pkg/errors"
)

// ApplyOutcome reports what Apply did to the batch.
type ApplyOutcome struct {
	Updated   int
	Unchanged int
	// Conflicts lists items whose stored link disagrees with the new
	// result; they are reported, never overwritten.
	Conflicts []error
}

// Apply writes the reconciliation verdicts back onto the items. The step is
// idempotent: an item already carrying the same verdict and transaction
// link is left untouched, so re-running reconciliation over resolved items
// is safe and cannot produce duplicate links. An item linked to a different
// transaction than the new result is a conflict and keeps its stored link.
//
// Apply mutates items in place; callers must serialize writes per item
// (one write path per item identifier) across concurrent runs.
func Apply(items []*models.ServiceItem, results []models.ReconcileResult) ApplyOutcome {
	byID := make(map[string]*models.ServiceItem, len(items))
	for _, item := range items {
		if item != nil {
			byID[item.ID] = item
		}
	}

	var outcome ApplyOutcome
	for _, result := range results {
		item, ok := byID[result.ItemID]
		if !ok {
			continue
		}

		if item.ComprovanteStatus == result.Verdict && item.TransactionID == result.TransactionID {
			outcome.Unchanged++
			continue
		}

		if item.TransactionID != "" && result.TransactionID != "" &&
			item.TransactionID != result.TransactionID {
			outcome.Conflicts = append(outcome.Conflicts, pkgerrors.NewAmbiguousError(
				"item already linked to a different transaction").
				WithContext("item_id", item.ID).
				WithContext("stored_transaction", item.TransactionID).
				WithContext("new_transaction", result.TransactionID))
			continue
		}

		item.ComprovanteStatus = result.Verdict
		if result.TransactionID != "" {
			item.TransactionID = result.TransactionID
		}
		outcome.Updated++
	}
	return outcome
}
