package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"google.golang.org/api/sheets/v4"
)

// MakeTSV writes a value range as tab separated values. The columns named in 'leading' are
// moved to the front (matched on the feed form of the name) and must all be present.
func MakeTSV(f io.Writer, data *sheets.ValueRange, leading ...string) error {
	if data == nil || len(data.Values) == 0 {
		return fmt.Errorf("Empty sheet")
	}

	row := data.Values[0]
	if len(row) == 0 {
		return fmt.Errorf("Missing/invalid header row")
	}

	// .. build index
	index := map[string]int{}
	for i := range row {
		k := normalise(cell(row, i))
		if _, ok := index[k]; ok {
			return fmt.Errorf("Duplicate column name '%s'", cell(row, i))
		}

		index[k] = i
	}

	// ... column order
	columns := []int{}
	for _, l := range leading {
		ix, ok := index[normalise(l)]
		if !ok {
			return fmt.Errorf("Missing '%s' column", l)
		}

		columns = append(columns, ix)
	}

	for i := range row {
		if !contains(columns, i) {
			columns = append(columns, i)
		}
	}

	// ... header
	header := make([]string, len(columns))
	for i, ix := range columns {
		header[i] = clean(cell(row, ix))
	}

	// ... records
	records := [][]string{}
	for _, row := range data.Values[1:] {
		if blank(row) {
			continue
		}

		record := make([]string, len(columns))
		for i, ix := range columns {
			record[i] = clean(cell(row, ix))
		}

		records = append(records, record)
	}

	// ... write to file
	w := csv.NewWriter(f)
	w.Comma = '\t'

	w.Write(header)
	for _, record := range records {
		w.Write(record)
	}

	w.Flush()

	return w.Error()
}

// ParseTSV reads tab separated values into a value range. The first record is the header.
func ParseTSV(f io.Reader) (*sheets.ValueRange, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	if _, err := makeHeader(toValues(records[0])); err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(records))
	for _, record := range records {
		rows = append(rows, toValues(record))
	}

	return &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         rows,
	}, nil
}

func contains(list []int, v int) bool {
	for _, w := range list {
		if w == v {
			return true
		}
	}

	return false
}
