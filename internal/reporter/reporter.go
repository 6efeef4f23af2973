// Package reporter renders engine outputs for operators: ranked match
// suggestions, LIS reconciliation verdicts and duplicate classifications,
// as console text, JSON, or CSV.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ParseFormat parses an output format from string.
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format == "text" {
		format = FormatConsole
	}
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format '%s': must be console, json, or csv", s)
	}
	return format, nil
}

// MatchReport is the renderable result of one matching run.
type MatchReport struct {
	GeneratedAt      time.Time                `json:"generated_at"`
	Candidates       []*models.MatchCandidate `json:"candidates"`
	UnmatchedPayables []*models.Payable       `json:"unmatched_payables"`
	UnmatchedRecords []*models.BankRecord     `json:"unmatched_records"`
	Summary          MatchSummary             `json:"summary"`
}

// MatchSummary aggregates one matching run.
type MatchSummary struct {
	TotalPayables     int             `json:"total_payables"`
	TotalDebitRecords int             `json:"total_debit_records"`
	Candidates        int             `json:"candidates"`
	HighBand          int             `json:"high_band"`
	MediumBand        int             `json:"medium_band"`
	LowBand           int             `json:"low_band"`
	UnmatchedPayables int             `json:"unmatched_payables"`
	UnmatchedRecords  int             `json:"unmatched_records"`
	UnmatchedAmount   decimal.Decimal `json:"unmatched_amount"`
}

// BuildMatchReport assembles a match report from engine outputs.
func BuildMatchReport(candidates []*models.MatchCandidate, payables []*models.Payable,
	records []*models.BankRecord, unmatchedPayables []*models.Payable,
	unmatchedRecords []*models.BankRecord) *MatchReport {

	summary := MatchSummary{
		TotalPayables:     len(payables),
		Candidates:        len(candidates),
		UnmatchedPayables: len(unmatchedPayables),
		UnmatchedRecords:  len(unmatchedRecords),
		UnmatchedAmount:   decimal.Zero,
	}
	for _, record := range records {
		if record != nil && record.IsDebit() {
			summary.TotalDebitRecords++
		}
	}
	for _, candidate := range candidates {
		switch candidate.Band() {
		case models.BandHigh:
			summary.HighBand++
		case models.BandMedium:
			summary.MediumBand++
		case models.BandLow:
			summary.LowBand++
		}
	}
	for _, payable := range unmatchedPayables {
		summary.UnmatchedAmount = summary.UnmatchedAmount.Add(payable.Amount)
	}

	return &MatchReport{
		GeneratedAt:      time.Now(),
		Candidates:       candidates,
		UnmatchedPayables: unmatchedPayables,
		UnmatchedRecords: unmatchedRecords,
		Summary:          summary,
	}
}

// Render writes the match report in the requested format.
func (r *MatchReport) Render(w io.Writer, format OutputFormat) error {
	switch format {
	case FormatConsole:
		return r.renderConsole(w)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case FormatCSV:
		return r.renderCSV(w)
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}
}

func (r *MatchReport) renderConsole(w io.Writer) error {
	fmt.Fprintln(w, "=== Conciliação de contas a pagar ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Payables:            %d\n", r.Summary.TotalPayables)
	fmt.Fprintf(w, "Debit lines:         %d\n", r.Summary.TotalDebitRecords)
	fmt.Fprintf(w, "Candidates:          %d (high %d / medium %d / low %d)\n",
		r.Summary.Candidates, r.Summary.HighBand, r.Summary.MediumBand, r.Summary.LowBand)
	fmt.Fprintf(w, "Unmatched payables:  %d (%s)\n",
		r.Summary.UnmatchedPayables, r.Summary.UnmatchedAmount.StringFixed(2))
	fmt.Fprintf(w, "Unmatched debits:    %d\n", r.Summary.UnmatchedRecords)

	if len(r.Candidates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Suggestions (best first) ---")
		for _, candidate := range r.Candidates {
			recordID := "-"
			date := "-"
			if candidate.BankRecord != nil {
				recordID = candidate.BankRecord.ID
				date = candidate.BankRecord.Date.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%3d  %-7s %-18s %-12s %-12s diff=%s days=%d\n",
				candidate.Confidence, candidate.Band(), candidate.Type,
				candidate.Payable.ID, recordID+" "+date,
				candidate.AmountDiff.StringFixed(2), candidate.DateDiffDays)
		}
	}

	if len(r.UnmatchedPayables) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Unmatched payables ---")
		for _, payable := range r.UnmatchedPayables {
			fmt.Fprintf(w, "%-12s %-30s %10s due %s\n",
				payable.ID, truncate(payable.Beneficiary, 30),
				payable.Amount.StringFixed(2), payable.DueDate.Format("2006-01-02"))
		}
	}

	if len(r.UnmatchedRecords) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "--- Unmatched debit lines ---")
		for _, record := range r.UnmatchedRecords {
			fmt.Fprintf(w, "%-12s %-30s %10s on %s\n",
				record.ID, truncate(record.Description, 30),
				record.AbsAmount().StringFixed(2), record.Date.Format("2006-01-02"))
		}
	}
	return nil
}

func (r *MatchReport) renderCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"payable_id", "bank_record_id", "match_type", "confidence",
		"band", "amount_diff", "date_diff_days"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, candidate := range r.Candidates {
		recordID := ""
		if candidate.BankRecord != nil {
			recordID = candidate.BankRecord.ID
		}
		row := []string{
			candidate.Payable.ID,
			recordID,
			candidate.Type.String(),
			strconv.Itoa(candidate.Confidence),
			string(candidate.Band()),
			candidate.AmountDiff.StringFixed(2),
			strconv.Itoa(candidate.DateDiffDays),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

// ReconcileReport is the renderable result of one LIS reconciliation run.
type ReconcileReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []models.ReconcileResult `json:"results"`
	Summary     ReconcileSummary         `json:"summary"`
}

// ReconcileSummary aggregates one reconciliation run.
type ReconcileSummary struct {
	TotalItems      int `json:"total_items"`
	Conciliated     int `json:"conciliated"`
	MissingProof    int `json:"missing_proof"`
	Ambiguous       int `json:"ambiguous"`
	DateDivergences int `json:"date_divergences"`
}

// BuildReconcileReport assembles a reconciliation report.
func BuildReconcileReport(results []models.ReconcileResult) *ReconcileReport {
	summary := ReconcileSummary{TotalItems: len(results)}
	for _, result := range results {
		switch result.Verdict {
		case models.ComprovanteConciliado:
			summary.Conciliated++
		case models.ComprovanteSemComprovante:
			summary.MissingProof++
		case models.ComprovanteDuplicidade:
			summary.Ambiguous++
		}
		if result.Divergence == models.DivergenceDate {
			summary.DateDivergences++
		}
	}
	return &ReconcileReport{
		GeneratedAt: time.Now(),
		Results:     results,
		Summary:     summary,
	}
}

// Render writes the reconciliation report in the requested format.
func (r *ReconcileReport) Render(w io.Writer, format OutputFormat) error {
	switch format {
	case FormatConsole:
		return r.renderConsole(w)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case FormatCSV:
		return r.renderCSV(w)
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}
}

func (r *ReconcileReport) renderConsole(w io.Writer) error {
	fmt.Fprintln(w, "=== Conferência de comprovantes ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Items:            %d\n", r.Summary.TotalItems)
	fmt.Fprintf(w, "Conciliados:      %d\n", r.Summary.Conciliated)
	fmt.Fprintf(w, "Sem comprovante:  %d\n", r.Summary.MissingProof)
	fmt.Fprintf(w, "Duplicidade:      %d\n", r.Summary.Ambiguous)
	fmt.Fprintf(w, "Divergência data: %d\n", r.Summary.DateDivergences)

	fmt.Fprintln(w)
	for _, result := range r.Results {
		flag := ""
		if result.Divergence == models.DivergenceDate {
			flag = " [DATA]"
		}
		transaction := "-"
		if result.TransactionID != "" {
			transaction = result.TransactionID
		}
		fmt.Fprintf(w, "%-12s %-16s %s%s\n", result.ItemID, result.Verdict, transaction, flag)
	}
	return nil
}

func (r *ReconcileReport) renderCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"item_id", "verdict", "transaction_id", "divergence"}); err != nil {
		return err
	}
	for _, result := range r.Results {
		row := []string{
			result.ItemID,
			string(result.Verdict),
			result.TransactionID,
			string(result.Divergence),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

// RenderVerdict writes a duplicate classification for the console.
func RenderVerdict(w io.Writer, verdict models.DuplicateVerdict) {
	fmt.Fprintf(w, "Tier:     %s\n", verdict.Tier)
	if verdict.Reason != "" {
		fmt.Fprintf(w, "Reason:   %s\n", verdict.Reason)
	}
	if verdict.Conflict != nil {
		fmt.Fprintf(w, "Conflict: %s (%s, %s, due %s)\n",
			verdict.Conflict.ID, truncate(verdict.Conflict.Beneficiary, 30),
			verdict.Conflict.Amount.StringFixed(2),
			verdict.Conflict.DueDate.Format("2006-01-02"))
	}
	if verdict.AllowContinue {
		fmt.Fprintln(w, "Continue: allowed (surface to the operator before committing)")
	} else {
		fmt.Fprintln(w, "Continue: BLOCKED")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
