package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Columns is the canonical template column order. Uploads may reorder
// columns; the parser matches by header name, not position.
var Columns = []string{
	"lat", "lng", "fojas", "numero", "anio", "cbr",
	"comprador", "vendedor", "predio", "comuna", "rol",
	"fechaescritura", "superficie", "monto", "observaciones",
}

// Record is one parsed CSV row: column name to raw trimmed value.
type Record map[string]string

// Parse reads the whole CSV stream using the given delimiter and returns
// the parsed records in file order. Row numbering for validation is
// 1-based over the returned slice (the header line is not counted).
func Parse(r io.Reader, delimiter rune) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Read header row
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Build header index map; strip a UTF-8 BOM when the file came from
	// the Windows template variant
	headerIndex := make(map[string]int)
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	// Validate required headers (observaciones is optional)
	for _, col := range Columns[:len(Columns)-1] {
		if _, ok := headerIndex[col]; !ok {
			return nil, fmt.Errorf("missing required header: %s", col)
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(records)+1, err)
		}

		record := make(Record, len(Columns))
		for _, col := range Columns {
			record[col] = getValue(row, headerIndex, col)
		}
		records = append(records, record)
	}

	return records, nil
}

func getValue(row []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
