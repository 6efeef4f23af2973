package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func payable(id string, beneficiary string, amount float64, dueDay int) *models.Payable {
	return &models.Payable{
		ID:          id,
		Beneficiary: beneficiary,
		Amount:      decimal.NewFromFloat(amount),
		DueDate:     day(dueDay),
		Status:      models.PayableStatusOpen,
	}
}

func debit(id string, description string, amount float64, d int) *models.BankRecord {
	return &models.BankRecord{
		ID:          id,
		Date:        day(d),
		Description: description,
		Amount:      decimal.NewFromFloat(amount),
		Direction:   models.DirectionDebit,
	}
}

func TestFindMatchesValueDateNextDay(t *testing.T) {
	// Amount 150.00 due on the 10th, statement line of 150.00 on the 11th:
	// one value-date candidate at confidence 85.
	engine := NewEngine(nil)

	matches := engine.FindMatches(
		[]*models.Payable{payable("P1", "Fornecedor XYZ SA", 150.00, 10)},
		[]*models.BankRecord{debit("B1", "PAG BOLETO XYZ", 150.00, 11)},
	)

	if len(matches) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(matches))
	}
	got := matches[0]
	if got.Type != models.MatchExactValueDate {
		t.Errorf("Type = %s, want exact-value-date", got.Type)
	}
	if got.Confidence != 85 {
		t.Errorf("Confidence = %d, want 85", got.Confidence)
	}
	if got.DateDiffDays != 1 {
		t.Errorf("DateDiffDays = %d, want 1", got.DateDiffDays)
	}
	if !got.AmountDiff.IsZero() {
		t.Errorf("AmountDiff = %s, want 0", got.AmountDiff)
	}
}

func TestFindMatchesSameDayScores90(t *testing.T) {
	engine := NewEngine(nil)

	matches := engine.FindMatches(
		[]*models.Payable{payable("P1", "Fornecedor XYZ", 150.00, 10)},
		[]*models.BankRecord{debit("B1", "TED ENVIADA", 150.00, 10)},
	)

	if len(matches) != 1 || matches[0].Confidence != 90 {
		t.Fatalf("expected one candidate at 90, got %v", matches)
	}
}

func TestFindMatchesValueDateDecay(t *testing.T) {
	// The penalty runs from the same-day score, 5 points per day, so a
	// one-day settlement lag still lands in the high band.
	tests := []struct {
		name           string
		config         *Config
		recordDay      int
		wantConfidence int
	}{
		{"same day", nil, 10, 90},
		{"one day", nil, 11, 85},
		{"two days", nil, 12, 80},
		{"three days", nil, 13, 75},
		{"floored at five days", RelaxedConfig(), 15, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.config)

			matches := engine.FindMatches(
				[]*models.Payable{payable("P1", "Fornecedor XYZ", 150.00, 10)},
				[]*models.BankRecord{debit("B1", "TED ENVIADA", 150.00, tt.recordDay)},
			)

			if len(matches) != 1 {
				t.Fatalf("expected 1 candidate, got %d", len(matches))
			}
			if matches[0].Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %d, want %d", matches[0].Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestFindMatchesIdentifierShortCircuits(t *testing.T) {
	engine := NewEngine(nil)

	p := payable("P1", "Laboratorio Sao Lucas", 450.00, 10)
	p.DigitLine = "23793.38128 60007.827136 95000.063305 9 84660000045000"

	// The record matches the digit line AND the exact value and date; only
	// the identifier candidate must be produced for this record.
	record := debit("B1", "PAGTO BOLETO 23793381286000782713 LAB", 450.00, 10)

	matches := engine.FindMatches([]*models.Payable{p}, []*models.BankRecord{record})

	if len(matches) != 1 {
		t.Fatalf("expected identifier hit to short-circuit, got %d candidates", len(matches))
	}
	if matches[0].Type != models.MatchExactIdentifier {
		t.Errorf("Type = %s, want exact-identifier", matches[0].Type)
	}
	if matches[0].Confidence != 95 {
		t.Errorf("Confidence = %d, want 95", matches[0].Confidence)
	}
}

func TestFindMatchesBeneficiaryName(t *testing.T) {
	engine := NewEngine(nil)

	// Amount off by 2% and two days apart: only the name strategy fires.
	matches := engine.FindMatches(
		[]*models.Payable{payable("P1", "Laboratório São Lucas LTDA", 100.00, 10)},
		[]*models.BankRecord{debit("B1", "PIX LABORATORIO SAO LUCAS", 102.00, 12)},
	)

	if len(matches) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(matches))
	}
	got := matches[0]
	if got.Type != models.MatchBeneficiaryName {
		t.Errorf("Type = %s, want beneficiary-name", got.Type)
	}
	if got.Confidence != 66 { // 70 - 2*2
		t.Errorf("Confidence = %d, want 66", got.Confidence)
	}
}

func TestFindMatchesNameDatePenaltyCapped(t *testing.T) {
	engine := NewEngine(nil)

	// Twenty days out: penalty caps at ten days, score floor 50 stays
	// surfaced.
	matches := engine.FindMatches(
		[]*models.Payable{payable("P1", "Laboratorio Sao Lucas", 100.00, 1)},
		[]*models.BankRecord{debit("B1", "LABORATORIO SAO LUCAS", 100.00, 21)},
	)

	if len(matches) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(matches))
	}
	if matches[0].Confidence != 50 { // 70 - 2*10
		t.Errorf("Confidence = %d, want 50", matches[0].Confidence)
	}
	if matches[0].Band() != models.BandLow {
		t.Errorf("Band = %s, want low", matches[0].Band())
	}
}

func TestFindMatchesOrderingInvariant(t *testing.T) {
	// For one payable, identifier outranks value-date outranks name.
	engine := NewEngine(nil)

	p := payable("P1", "Laboratorio Sao Lucas", 450.00, 10)
	p.DigitLine = "23793.38128 60007.827136 95000.063305 9 84660000045000"

	records := []*models.BankRecord{
		debit("BNAME", "PIX LABORATORIO SAO LUCAS", 455.00, 14),
		debit("BVALUE", "TED FORNECEDOR", 450.00, 11),
		debit("BID", "BOLETO 23793381286000782713 PG", 450.00, 15),
	}

	matches := engine.FindMatches([]*models.Payable{p}, records)

	if len(matches) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(matches))
	}
	wantOrder := []models.MatchType{
		models.MatchExactIdentifier,
		models.MatchExactValueDate,
		models.MatchBeneficiaryName,
	}
	for i, want := range wantOrder {
		if matches[i].Type != want {
			t.Errorf("matches[%d].Type = %s, want %s", i, matches[i].Type, want)
		}
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Confidence > matches[i-1].Confidence {
			t.Error("candidates must be sorted by confidence descending")
		}
	}
}

func TestFindMatchesTopNTruncation(t *testing.T) {
	engine := NewEngine(nil)

	p := payable("P1", "Fornecedor ABC", 100.00, 10)
	records := []*models.BankRecord{
		debit("B1", "x", 100.00, 10),
		debit("B2", "x", 100.00, 11),
		debit("B3", "x", 100.00, 12),
		debit("B4", "x", 100.00, 13),
		debit("B5", "x", 100.00, 9),
	}

	matches := engine.FindMatches([]*models.Payable{p}, records)

	if len(matches) != 3 {
		t.Fatalf("expected top-3 truncation, got %d candidates", len(matches))
	}
	// Best kept: same-day 90, then the two one-day hits at 85.
	if matches[0].Confidence != 90 {
		t.Errorf("best candidate confidence = %d, want 90", matches[0].Confidence)
	}
	for _, m := range matches {
		if m.Confidence < 85 {
			t.Errorf("truncation kept a weak candidate at %d", m.Confidence)
		}
	}
}

func TestFindMatchesIgnoresCredits(t *testing.T) {
	engine := NewEngine(nil)

	credit := &models.BankRecord{
		ID:          "B1",
		Date:        day(10),
		Description: "DEPOSITO",
		Amount:      decimal.NewFromFloat(150.00),
		Direction:   models.DirectionCredit,
	}

	matches := engine.FindMatches(
		[]*models.Payable{payable("P1", "Fornecedor", 150.00, 10)},
		[]*models.BankRecord{credit},
	)

	if len(matches) != 0 {
		t.Errorf("credit lines must never match payables, got %d candidates", len(matches))
	}
}

func TestFindMatchesNoSignalProducesNothing(t *testing.T) {
	engine := NewEngine(nil)

	matches := engine.FindMatches(
		[]*models.Payable{payable("P1", "Fornecedor Sem Par", 999.99, 1)},
		[]*models.BankRecord{debit("B1", "OUTRA COISA", 10.00, 20)},
	)

	if len(matches) != 0 {
		t.Errorf("expected zero candidates, got %d", len(matches))
	}
}

func TestFindMatchesConfidenceBounds(t *testing.T) {
	engine := NewEngine(nil)

	payables := []*models.Payable{
		payable("P1", "Laboratorio Sao Lucas", 450.00, 10),
		payable("P2", "Fornecedor ABC", 100.00, 5),
	}
	payables[0].DigitLine = "23793.38128 60007.827136 95000.063305 9 84660000045000"

	records := []*models.BankRecord{
		debit("B1", "BOLETO 23793381286000782713", 450.00, 10),
		debit("B2", "FORNECEDORABC", 100.00, 8),
		debit("B3", "TED", 100.00, 6),
	}

	for _, m := range engine.FindMatches(payables, records) {
		if m.Confidence < 0 || m.Confidence > 100 {
			t.Errorf("confidence out of range: %d", m.Confidence)
		}
		if m.Band() == models.BandNone {
			t.Errorf("surfaced candidate below the low band: %d", m.Confidence)
		}
	}
}

func TestUnmatchedQueries(t *testing.T) {
	engine := NewEngine(nil)

	payables := []*models.Payable{
		payable("P1", "Fornecedor A", 150.00, 10),
		payable("P2", "Fornecedor B", 999.00, 10),
	}
	records := []*models.BankRecord{
		debit("B1", "TED", 150.00, 10),
		debit("B2", "TARIFA", 12.00, 10),
	}

	matches := engine.FindMatches(payables, records)

	unmatchedPayables := engine.UnmatchedPayables(matches, payables, 0)
	if len(unmatchedPayables) != 1 || unmatchedPayables[0].ID != "P2" {
		t.Errorf("expected P2 unmatched, got %v", unmatchedPayables)
	}

	unmatchedRecords := engine.UnmatchedBankRecords(matches, records, 0)
	if len(unmatchedRecords) != 1 || unmatchedRecords[0].ID != "B2" {
		t.Errorf("expected B2 unmatched, got %v", unmatchedRecords)
	}

	// A threshold above every candidate leaves everything unmatched.
	if got := engine.UnmatchedPayables(matches, payables, 99); len(got) != 2 {
		t.Errorf("threshold 99 should leave both payables unmatched, got %d", len(got))
	}
}

func TestFindMatchesMissingDueDateSkipsValueDateOnly(t *testing.T) {
	engine := NewEngine(nil)

	p := payable("P1", "Laboratorio Sao Lucas", 100.00, 10)
	p.DueDate = time.Time{}

	matches := engine.FindMatches(
		[]*models.Payable{p},
		[]*models.BankRecord{debit("B1", "LABORATORIO SAO LUCAS", 100.00, 10)},
	)

	// The value-date comparison is skipped, the name strategy still runs.
	if len(matches) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(matches))
	}
	if matches[0].Type != models.MatchBeneficiaryName {
		t.Errorf("Type = %s, want beneficiary-name", matches[0].Type)
	}
}

func TestConfigValidate(t *testing.T) {
	for _, factory := range []func() *Config{DefaultConfig, StrictConfig, RelaxedConfig} {
		if err := factory().Validate(); err != nil {
			t.Errorf("factory config must validate: %v", err)
		}
	}

	broken := DefaultConfig()
	broken.MaxCandidatesPerPayable = 0
	if err := broken.Validate(); err == nil {
		t.Error("zero top-N must fail validation")
	}

	broken = DefaultConfig()
	broken.NameValueTolerancePercent = 150
	if err := broken.Validate(); err == nil {
		t.Error("tolerance above 100% must fail validation")
	}
}

func TestFindMatchesDeterministic(t *testing.T) {
	engine := NewEngine(nil)

	payables := []*models.Payable{
		payable("P1", "Fornecedor A", 150.00, 10),
		payable("P2", "Fornecedor B", 200.00, 12),
	}
	records := []*models.BankRecord{
		debit("B1", "TED A", 150.00, 10),
		debit("B2", "TED B", 200.00, 12),
		debit("B3", "TED C", 150.00, 11),
	}

	first := engine.FindMatches(payables, records)
	second := engine.FindMatches(payables, records)

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Payable.ID != second[i].Payable.ID ||
			first[i].BankRecord.ID != second[i].BankRecord.ID ||
			first[i].Confidence != second[i].Confidence {
			t.Errorf("runs diverge at %d: %v vs %v", i, first[i], second[i])
		}
	}
}
