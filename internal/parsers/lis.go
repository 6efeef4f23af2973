package parsers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"lab-reconciliation-engine/internal/models"
)

// itemAliases translate the headers of LIS closure exports.
var itemAliases = map[string]string{
	"item_id":        "id",
	"atendimento":    "id",
	"codigo":         "code",
	"service_code":   "code",
	"exame":          "code",
	"data":           "date",
	"paciente":       "patient",
	"patient_name":   "patient",
	"convenio":       "convenio_code",
	"payer":          "convenio_code",
	"forma_pagamento": "payment_method",
	"method":         "payment_method",
	"valor_pago":     "amount_paid",
	"paid":           "amount_paid",
	"valor_bruto":    "gross_amount",
	"gross":          "gross_amount",
	"envelope":       "closure_id",
	"fechamento":     "closure_id",
}

// transactionAliases translate the headers of ledger transaction exports.
var transactionAliases = map[string]string{
	"transaction_id": "id",
	"lancamento":     "id",
	"data":           "date",
	"descricao":      "description",
	"historico":      "description",
	"valor":          "amount",
	"value":          "amount",
	"referencia":     "reference",
	"ref":            "reference",
	"excluido":       "deleted",
	"removed":        "deleted",
}

// LoadServiceItems reads a LIS closure CSV. Expected canonical columns:
// id, code, date, amount_paid; optional: patient, convenio_code,
// payment_method, gross_amount, closure_id.
func LoadServiceItems(path string) ([]*models.ServiceItem, *LoadStats, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	index := resolveHeader(header, itemAliases)
	if err := index.require("id", "code", "date", "amount_paid"); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	stats := &LoadStats{}
	var items []*models.ServiceItem

	for i, row := range rows {
		line := i + 2
		if isBlank(row) {
			continue
		}
		stats.TotalRows++

		item, rowErr := parseItemRow(index, row, line)
		if rowErr != nil {
			stats.SkippedRows = append(stats.SkippedRows, rowErr)
			continue
		}
		items = append(items, item)
		stats.LoadedRows++
	}
	return items, stats, nil
}

func parseItemRow(index *headerIndex, row []string, line int) (*models.ServiceItem, *RowError) {
	date, err := models.ParseDate(index.get(row, "date"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "date", Err: err}
	}
	amountPaid, err := models.ParseAmount(index.get(row, "amount_paid"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "amount_paid", Err: err}
	}
	method, err := models.ParsePaymentMethod(index.get(row, "payment_method"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "payment_method", Err: err}
	}

	item := &models.ServiceItem{
		ID:            index.get(row, "id"),
		ServiceCode:   index.get(row, "code"),
		Date:          date,
		PatientName:   index.get(row, "patient"),
		ConvenioCode:  index.get(row, "convenio_code"),
		PaymentMethod: method,
		AmountPaid:    amountPaid,
		ClosureID:     index.get(row, "closure_id"),
	}

	// Gross is genuinely optional: an empty cell means unknown, not zero.
	if raw := index.get(row, "gross_amount"); raw != "" {
		gross, err := models.ParseAmount(raw)
		if err != nil {
			return nil, &RowError{Line: line, Field: "gross_amount", Err: err}
		}
		item.GrossAmount = gross
		item.HasGross = true
	} else {
		item.GrossAmount = decimal.Zero
	}

	if err := item.Validate(); err != nil {
		return nil, &RowError{Line: line, Field: "", Err: err}
	}
	return item, nil
}

// LoadTransactions reads a ledger transaction CSV. Expected canonical
// columns: id, date, amount; optional: description, reference, deleted.
func LoadTransactions(path string) ([]*models.LabTransaction, *LoadStats, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	index := resolveHeader(header, transactionAliases)
	if err := index.require("id", "date", "amount"); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	stats := &LoadStats{}
	var transactions []*models.LabTransaction

	for i, row := range rows {
		line := i + 2
		if isBlank(row) {
			continue
		}
		stats.TotalRows++

		date, err := models.ParseDate(index.get(row, "date"))
		if err != nil {
			stats.SkippedRows = append(stats.SkippedRows, &RowError{Line: line, Field: "date", Err: err})
			continue
		}
		amount, err := models.ParseAmount(index.get(row, "amount"))
		if err != nil {
			stats.SkippedRows = append(stats.SkippedRows, &RowError{Line: line, Field: "amount", Err: err})
			continue
		}

		transaction := &models.LabTransaction{
			ID:            index.get(row, "id"),
			Date:          date,
			Description:   index.get(row, "description"),
			Amount:        amount,
			ReferenceCode: index.get(row, "reference"),
			Deleted:       parseBool(index.get(row, "deleted")),
		}
		if err := transaction.Validate(); err != nil {
			stats.SkippedRows = append(stats.SkippedRows, &RowError{Line: line, Field: "", Err: err})
			continue
		}
		transactions = append(transactions, transaction)
		stats.LoadedRows++
	}
	return transactions, stats, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "sim", "s", "y":
		return true
	}
	return false
}
