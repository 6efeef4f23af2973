package duplicate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

func TestSliceLookupByDigitLine(t *testing.T) {
	records := []*models.Payable{
		{ID: "P1", DigitLine: "34191.79001 01043.510047 91020.150008 6 96150000045000"},
		{ID: "P2", Barcode: "84670000001 1 43900024008 0 40201909304 5 29717833301 0"},
	}
	lookup := NewSliceLookup(records)

	found, err := lookup.ByDigitLine("34191790010104351004791020150008696150000045000")
	if err != nil {
		t.Fatalf("ByDigitLine: %v", err)
	}
	if len(found) != 1 || found[0].ID != "P1" {
		t.Errorf("expected P1 by digit line, got %v", found)
	}

	found, _ = lookup.ByDigitLine("84670000001143900024008040201909304529717833301 0")
	if len(found) != 1 || found[0].ID != "P2" {
		t.Errorf("expected P2 by barcode, got %v", found)
	}

	if found, _ := lookup.ByDigitLine("00000000000"); len(found) != 0 {
		t.Errorf("expected no hits for unknown digits, got %v", found)
	}
}

func TestSliceLookupByTaxpayerID(t *testing.T) {
	records := []*models.Payable{
		{ID: "P1", TaxpayerID: "12.345.678/0001-90"},
		{ID: "P2", TaxpayerID: "12345678000190"},
		{ID: "P3", TaxpayerID: "98.765.432/0001-10"},
	}
	lookup := NewSliceLookup(records)

	found, err := lookup.ByTaxpayerID("12345678000190")
	if err != nil {
		t.Fatalf("ByTaxpayerID: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("formatted and bare CNPJ should index together, got %d records", len(found))
	}
}

func TestSliceLookupDrivesClassifier(t *testing.T) {
	due := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	records := []*models.Payable{
		{ID: "PAY001", Beneficiary: "Diagnósticos Ltda", TaxpayerID: "12.345.678/0001-90",
			DocumentNumber: "NF-1001", Amount: decimal.NewFromFloat(450.00), DueDate: due},
	}

	verdict := NewClassifier(nil).Classify(Fingerprint{
		TaxpayerID:     "12345678000190",
		DocumentNumber: "NF-1001",
	}, NewSliceLookup(records))

	if verdict.Tier != models.TierHigh {
		t.Errorf("expected high tier through slice lookup, got %s", verdict.Tier)
	}
	if verdict.Conflict == nil || verdict.Conflict.ID != "PAY001" {
		t.Errorf("expected conflict PAY001, got %+v", verdict.Conflict)
	}
}
