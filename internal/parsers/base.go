// Package parsers loads the engine's CSV inputs: payables exported from
// accounts payable, bank statement lines, LIS closure items, and recorded
// transactions. Parsing is tolerant by design: a malformed row is collected
// with its line number and skipped, never aborting the file, because one
// bad export line must not block a whole reconciliation run.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "lab-reconciliation-engine/pkg/errors"
)

// RowError records one skipped row.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, field '%s': %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// LoadStats summarizes one file load.
type LoadStats struct {
	TotalRows   int
	LoadedRows  int
	SkippedRows []*RowError
}

// headerIndex maps canonical column names to their position, resolving the
// aliases different exports use.
type headerIndex struct {
	positions map[string]int
}

// resolveHeader builds a header index. Canonical names map to themselves;
// aliases translate export-specific headers to canonical names.
func resolveHeader(header []string, aliases map[string]string) *headerIndex {
	index := &headerIndex{positions: make(map[string]int)}
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, taken := index.positions[name]; !taken {
			index.positions[name] = i
		}
	}
	return index
}

// require verifies the canonical columns are all present.
func (hi *headerIndex) require(columns ...string) error {
	var missing []string
	for _, column := range columns {
		if _, ok := hi.positions[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// get returns the trimmed value of a canonical column, or "" when the
// column is absent or the row is short.
func (hi *headerIndex) get(row []string, column string) string {
	pos, ok := hi.positions[column]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

// readCSV opens and fully reads a CSV file, returning header and rows.
func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, pkgerrors.NewFileError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validated per field
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, pkgerrors.NewParseError(path, 1, "",
			fmt.Errorf("file is empty"))
	}
	if err != nil {
		return nil, nil, pkgerrors.NewParseError(path, 1, "", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.Reader keeps going after most row-level errors; a hard
			// failure here means the file itself is broken.
			return nil, nil, pkgerrors.NewParseError(path, len(rows)+2, "", err)
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// isBlank reports whether every cell of a row is empty.
func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
