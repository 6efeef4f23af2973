package parsers

import (
	"fmt"

	"lab-reconciliation-engine/internal/models"
)

// payableAliases translate the headers seen in accounts-payable exports.
var payableAliases = map[string]string{
	"payable_id":      "id",
	"codigo":          "id",
	"favorecido":      "beneficiary",
	"fornecedor":      "beneficiary",
	"supplier":        "beneficiary",
	"valor":           "amount",
	"value":           "amount",
	"vencimento":      "due_date",
	"duedate":         "due_date",
	"linha_digitavel": "digit_line",
	"digitline":       "digit_line",
	"codigo_barras":   "barcode",
	"cnpj":            "taxpayer_id",
	"cpf_cnpj":        "taxpayer_id",
	"documento":       "document_number",
	"nf":              "document_number",
	"situacao":        "status",
}

// LoadPayables reads a payables CSV. Expected canonical columns: id,
// beneficiary, amount, due_date; optional: digit_line, barcode,
// taxpayer_id, document_number, status.
func LoadPayables(path string) ([]*models.Payable, *LoadStats, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	index := resolveHeader(header, payableAliases)
	if err := index.require("id", "beneficiary", "amount", "due_date"); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	stats := &LoadStats{}
	var payables []*models.Payable

	for i, row := range rows {
		line := i + 2 // header is line 1
		if isBlank(row) {
			continue
		}
		stats.TotalRows++

		payable, rowErr := parsePayableRow(index, row, line)
		if rowErr != nil {
			stats.SkippedRows = append(stats.SkippedRows, rowErr)
			continue
		}
		payables = append(payables, payable)
		stats.LoadedRows++
	}
	return payables, stats, nil
}

func parsePayableRow(index *headerIndex, row []string, line int) (*models.Payable, *RowError) {
	amount, err := models.ParseAmount(index.get(row, "amount"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "amount", Err: err}
	}
	dueDate, err := models.ParseDate(index.get(row, "due_date"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "due_date", Err: err}
	}
	status, err := models.ParsePayableStatus(index.get(row, "status"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "status", Err: err}
	}

	payable := &models.Payable{
		ID:             index.get(row, "id"),
		Beneficiary:    index.get(row, "beneficiary"),
		Amount:         amount,
		DueDate:        dueDate,
		DigitLine:      index.get(row, "digit_line"),
		Barcode:        index.get(row, "barcode"),
		TaxpayerID:     index.get(row, "taxpayer_id"),
		DocumentNumber: index.get(row, "document_number"),
		Status:         status,
	}
	if err := payable.Validate(); err != nil {
		return nil, &RowError{Line: line, Field: "", Err: err}
	}
	return payable, nil
}
