package parsers

import (
	"fmt"

	"lab-reconciliation-engine/internal/models"
)

// bankAliases translate the headers seen in statement exports from
// different banks.
var bankAliases = map[string]string{
	"identifier":  "id",
	"ref":         "id",
	"referencia":  "id",
	"data":        "date",
	"posting_date": "date",
	"descricao":   "description",
	"historico":   "description",
	"memo":        "description",
	"valor":       "amount",
	"value":       "amount",
	"tipo":        "direction",
	"type":        "direction",
	"dc":          "direction",
}

// LoadBankRecords reads a bank statement CSV. Expected canonical columns:
// id, date, description, amount; the direction column is optional: when
// absent the amount's sign decides (negative means debit, the common
// convention in statement exports).
func LoadBankRecords(path string) ([]*models.BankRecord, *LoadStats, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	index := resolveHeader(header, bankAliases)
	if err := index.require("id", "date", "amount"); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	stats := &LoadStats{}
	var records []*models.BankRecord

	for i, row := range rows {
		line := i + 2
		if isBlank(row) {
			continue
		}
		stats.TotalRows++

		record, rowErr := parseBankRow(index, row, line)
		if rowErr != nil {
			stats.SkippedRows = append(stats.SkippedRows, rowErr)
			continue
		}
		records = append(records, record)
		stats.LoadedRows++
	}
	return records, stats, nil
}

func parseBankRow(index *headerIndex, row []string, line int) (*models.BankRecord, *RowError) {
	date, err := models.ParseDate(index.get(row, "date"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "date", Err: err}
	}
	amount, err := models.ParseAmount(index.get(row, "amount"))
	if err != nil {
		return nil, &RowError{Line: line, Field: "amount", Err: err}
	}

	direction := models.DirectionCredit
	if raw := index.get(row, "direction"); raw != "" {
		direction, err = models.ParseDirection(raw)
		if err != nil {
			return nil, &RowError{Line: line, Field: "direction", Err: err}
		}
	} else if amount.IsNegative() {
		direction = models.DirectionDebit
	}

	record := &models.BankRecord{
		ID:          index.get(row, "id"),
		Date:        date,
		Description: index.get(row, "description"),
		Amount:      amount,
		Direction:   direction,
	}
	if err := record.Validate(); err != nil {
		return nil, &RowError{Line: line, Field: "", Err: err}
	}
	return record, nil
}
