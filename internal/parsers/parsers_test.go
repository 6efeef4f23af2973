package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}

func TestLoadPayables(t *testing.T) {
	path := writeTempCSV(t, `id,favorecido,valor,vencimento,linha_digitavel,cnpj,documento,situacao
PAY001,Laboratório São Lucas,450.00,2024-06-10,23793.38128 60007,12.345.678/0001-90,NF-1001,ABERTO
PAY002,Distribuidora Ipê,"1.200,50",10/06/2024,,,NF-2002,
`)

	payables, stats, err := LoadPayables(path)
	if err != nil {
		t.Fatalf("LoadPayables: %v", err)
	}
	if len(payables) != 2 {
		t.Fatalf("expected 2 payables, got %d", len(payables))
	}
	if stats.LoadedRows != 2 || len(stats.SkippedRows) != 0 {
		t.Errorf("stats = %+v", stats)
	}

	first := payables[0]
	if first.ID != "PAY001" || first.Beneficiary != "Laboratório São Lucas" {
		t.Errorf("unexpected first payable: %+v", first)
	}
	if !first.Amount.Equal(decimal.NewFromFloat(450.00)) {
		t.Errorf("Amount = %s", first.Amount)
	}
	if first.Status != models.PayableStatusOpen {
		t.Errorf("Status = %s", first.Status)
	}

	// Brazilian amount format and day-first date on the second row.
	second := payables[1]
	if !second.Amount.Equal(decimal.NewFromFloat(1200.50)) {
		t.Errorf("Amount = %s, want 1200.5", second.Amount)
	}
	if second.DueDate.Day() != 10 || int(second.DueDate.Month()) != 6 {
		t.Errorf("DueDate = %s", second.DueDate)
	}
}

func TestLoadPayablesSkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `id,beneficiary,amount,due_date
PAY001,Fornecedor A,100.00,2024-06-10
PAY002,Fornecedor B,not-a-number,2024-06-11
PAY003,Fornecedor C,300.00,never
PAY004,Fornecedor D,400.00,2024-06-12
`)

	payables, stats, err := LoadPayables(path)
	if err != nil {
		t.Fatalf("a bad row must not fail the file: %v", err)
	}
	if len(payables) != 2 {
		t.Fatalf("expected 2 loaded payables, got %d", len(payables))
	}
	if len(stats.SkippedRows) != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", len(stats.SkippedRows))
	}
	if stats.SkippedRows[0].Line != 3 || stats.SkippedRows[0].Field != "amount" {
		t.Errorf("first skip = %+v", stats.SkippedRows[0])
	}
	if stats.SkippedRows[1].Line != 4 || stats.SkippedRows[1].Field != "due_date" {
		t.Errorf("second skip = %+v", stats.SkippedRows[1])
	}
}

func TestLoadPayablesMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "id,beneficiary,amount\nPAY001,X,10\n")

	if _, _, err := LoadPayables(path); err == nil {
		t.Error("missing due_date column must fail the load")
	}
}

func TestLoadBankRecordsDirectionFromSign(t *testing.T) {
	path := writeTempCSV(t, `id,data,historico,valor
B1,2024-06-10,PAG BOLETO XYZ,-450.00
B2,2024-06-10,DEPOSITO,300.00
`)

	records, _, err := LoadBankRecords(path)
	if err != nil {
		t.Fatalf("LoadBankRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Direction != models.DirectionDebit {
		t.Errorf("negative amount must imply debit, got %s", records[0].Direction)
	}
	if records[1].Direction != models.DirectionCredit {
		t.Errorf("positive amount must imply credit, got %s", records[1].Direction)
	}
}

func TestLoadBankRecordsExplicitDirection(t *testing.T) {
	path := writeTempCSV(t, `id,date,description,amount,tipo
B1,2024-06-10,TED FORNECEDOR,450.00,SAIDA
`)

	records, _, err := LoadBankRecords(path)
	if err != nil {
		t.Fatalf("LoadBankRecords: %v", err)
	}
	if records[0].Direction != models.DirectionDebit {
		t.Errorf("explicit SAIDA must map to debit, got %s", records[0].Direction)
	}
}

func TestLoadServiceItems(t *testing.T) {
	path := writeTempCSV(t, `atendimento,exame,data,paciente,convenio,forma_pagamento,valor_pago,valor_bruto,envelope
IT1,HEM-42,2024-05-01,Maria Souza,,DINHEIRO,80.00,,
IT2,GLI-07,2024-05-01,João Lima,UNIMED,PIX,50.00,300.00,
IT3,RAI-03,2024-05-02,Ana Dias,BRADESCO,,0,250.00,ENV-1
`)

	items, stats, err := LoadServiceItems(path)
	if err != nil {
		t.Fatalf("LoadServiceItems: %v", err)
	}
	if len(items) != 3 || stats.LoadedRows != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	if !items[0].IsPrivatePay() {
		t.Error("IT1 has no convenio and must be private pay")
	}
	if items[0].HasGross {
		t.Error("IT1 has no gross amount; empty cell must mean unknown")
	}
	if items[1].IsPrivatePay() {
		t.Error("IT2 has a convenio")
	}
	if !items[1].HasGross || !items[1].GrossAmount.Equal(decimal.NewFromFloat(300.00)) {
		t.Errorf("IT2 gross = %s (has=%v)", items[1].GrossAmount, items[1].HasGross)
	}
	if items[2].PaymentMethod != models.PaymentUnpaid {
		t.Errorf("empty payment method must parse as UNPAID, got %s", items[2].PaymentMethod)
	}
	if !items[2].IsLocked() {
		t.Error("IT3 carries an envelope and must be locked")
	}
}

func TestLoadTransactions(t *testing.T) {
	path := writeTempCSV(t, `lancamento,data,descricao,valor,referencia,excluido
TX1,2024-05-01,Recebimento [HEM-42],80.00,HEM-42,
TX2,2024-05-01,Estorno,80.00,HEM-42,sim
`)

	transactions, _, err := LoadTransactions(path)
	if err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
	if transactions[0].Deleted {
		t.Error("TX1 is not deleted")
	}
	if !transactions[1].Deleted {
		t.Error("TX2 is marked excluido=sim and must be deleted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := LoadPayables(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("missing file must fail the load")
	}
}
