// Package reconciler pairs LIS service items from one closure with the
// financial transactions recorded for them, producing a per-item verdict:
// conciliated, no proof of payment, or ambiguous duplicate. Transaction
// lookup is a caller-supplied data source; a lookup failure degrades the
// affected item to "no proof" and never aborts the batch.
package reconciler

import (
	"fmt"
	"strings"
	"time"

	"lab-reconciliation-engine/internal/models"
	"lab-reconciliation-engine/internal/normalize"
	"lab-reconciliation-engine/pkg/logger"
)

// Config holds the reconciler tunables.
type Config struct {
	// DateToleranceDays is the lookup window around the item date.
	DateToleranceDays int `json:"date_tolerance_days"`
}

// DefaultConfig returns the production configuration: a one-day window, as
// card and PIX settlements commonly post the next day.
func DefaultConfig() *Config {
	return &Config{DateToleranceDays: 1}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", c.DateToleranceDays)
	}
	return nil
}

// TransactionSource is the caller-supplied transaction lookup. FindByCode
// returns the transactions recorded between from and to whose identifier or
// description references the given service code; implementations may
// over-return, the reconciler re-checks every candidate.
type TransactionSource interface {
	FindByCode(code string, from, to time.Time) ([]*models.LabTransaction, error)
}

// Reconciler pairs closure items with recorded transactions.
type Reconciler struct {
	config *Config
	log    logger.Logger
}

// New creates a reconciler; a nil config selects the defaults.
func New(config *Config, log logger.Logger) *Reconciler {
	if config == nil {
		config = DefaultConfig()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Reconciler{config: config, log: log.WithComponent("reconciler")}
}

// Reconcile produces one result per item. For each item the source is
// queried over the item date ± the configured window; candidates must
// reference the service code, not be soft-deleted, and match the item's
// paid amount to the cent. Zero survivors mean no proof of payment, exactly
// one is a conciliation (with a date divergence flag when the dates
// differ), two or more are an ambiguity the engine refuses to resolve.
//
// The run is deterministic over frozen inputs and never mutates the items;
// apply the results separately with Apply.
func (r *Reconciler) Reconcile(items []*models.ServiceItem, source TransactionSource) []models.ReconcileResult {
	results := make([]models.ReconcileResult, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}
		results = append(results, r.reconcileItem(item, source))
	}
	return results
}

func (r *Reconciler) reconcileItem(item *models.ServiceItem, source TransactionSource) models.ReconcileResult {
	result := models.ReconcileResult{
		ItemID:  item.ID,
		Verdict: models.ComprovanteSemComprovante,
	}

	if item.Date.IsZero() || strings.TrimSpace(item.ServiceCode) == "" {
		// Not enough identity to look anything up; treated as missing
		// proof, never as a batch failure.
		return result
	}

	from := models.DateOnly(item.Date).AddDate(0, 0, -r.config.DateToleranceDays)
	to := models.DateOnly(item.Date).AddDate(0, 0, r.config.DateToleranceDays)

	candidates, err := source.FindByCode(item.ServiceCode, from, to)
	if err != nil {
		// Degrade to the safest outcome and keep the batch going; the
		// caller's data layer owns retries.
		r.log.WithError(err).WithField("item_id", item.ID).
			Warn("transaction lookup failed, item kept as missing proof")
		return result
	}

	matched := r.filterCandidates(item, candidates, from, to)

	switch len(matched) {
	case 0:
		return result
	case 1:
		result.Verdict = models.ComprovanteConciliado
		result.TransactionID = matched[0].ID
		if models.DateDiffDays(matched[0].Date, item.Date) != 0 {
			result.Divergence = models.DivergenceDate
		}
		return result
	default:
		result.Verdict = models.ComprovanteDuplicidade
		return result
	}
}

// filterCandidates keeps the transactions that actually prove the item:
// live, inside the window, referencing the code, and matching the paid
// amount to the cent.
func (r *Reconciler) filterCandidates(item *models.ServiceItem, candidates []*models.LabTransaction, from, to time.Time) []*models.LabTransaction {
	var matched []*models.LabTransaction
	for _, tx := range candidates {
		if tx == nil || tx.Deleted {
			continue
		}
		if tx.Date.IsZero() {
			continue
		}
		txDate := models.DateOnly(tx.Date)
		if txDate.Before(from) || txDate.After(to) {
			continue
		}
		if !references(tx, item.ServiceCode) {
			continue
		}
		if !models.SameCents(tx.Amount.Abs(), item.AmountPaid) {
			continue
		}
		matched = append(matched, tx)
	}
	return matched
}

// references reports whether a transaction is tied to a service code,
// either by its recorded reference or by a marked mention in its
// description ("... [HEM-42] ..."). The fallback scan of the description
// only accepts the code on token boundaries, so a short code inside a
// longer word ("HEM" in "CHEMICAL") is not a reference.
func references(tx *models.LabTransaction, code string) bool {
	normalizedCode := normalize.Text(code)
	if normalizedCode == "" {
		return false
	}
	if normalize.Text(tx.ReferenceCode) == normalizedCode {
		return true
	}

	description := tx.Description
	for _, marker := range []string{"[" + code + "]", "(" + code + ")"} {
		if strings.Contains(description, marker) {
			return true
		}
	}
	return strings.Contains(" "+normalize.Text(description)+" ", " "+normalizedCode+" ")
}
