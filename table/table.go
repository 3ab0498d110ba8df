package table

import (
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
)

// FromRows converts list feed rows into a value range. The first row of the range is the
// header: the columns of the first row in server order, followed by any columns that only
// appear in later rows.
func FromRows(rows []*spreadsheet.Row) *sheets.ValueRange {
	header := []string{}
	index := map[string]bool{}

	for _, row := range rows {
		for _, c := range row.Columns() {
			if !index[c] {
				index[c] = true
				header = append(header, c)
			}
		}
	}

	values := [][]any{toValues(header)}
	for _, row := range rows {
		record := make([]any, len(header))
		for i, c := range header {
			record[i] = row.Get(c)
		}

		values = append(values, record)
	}

	return &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}
}

// Records converts a value range with a header row into one map per record, keyed by the
// header. Blank records are skipped and values are trimmed.
func Records(data *sheets.ValueRange) ([]map[string]string, error) {
	if data == nil || len(data.Values) == 0 {
		return nil, fmt.Errorf("Empty sheet")
	}

	header, err := makeHeader(data.Values[0])
	if err != nil {
		return nil, err
	}

	records := []map[string]string{}
	for _, row := range data.Values[1:] {
		if blank(row) {
			continue
		}

		record := map[string]string{}
		for i, h := range header {
			record[h] = clean(cell(row, i))
		}

		records = append(records, record)
	}

	return records, nil
}

func makeHeader(row []any) ([]string, error) {
	if len(row) == 0 {
		return nil, fmt.Errorf("Missing/invalid header row")
	}

	header := []string{}
	index := map[string]bool{}
	for _, v := range row {
		h := clean(fmt.Sprintf("%v", v))
		k := normalise(h)

		if k == "" {
			return nil, fmt.Errorf("Missing/invalid header row")
		} else if index[k] {
			return nil, fmt.Errorf("Duplicate column name '%s'", h)
		}

		index[k] = true
		header = append(header, h)
	}

	return header, nil
}

func cell(row []any, i int) string {
	if i < len(row) && row[i] != nil {
		return fmt.Sprintf("%v", row[i])
	}

	return ""
}

func blank(row []any) bool {
	for i := range row {
		if clean(cell(row, i)) != "" {
			return false
		}
	}

	return true
}

func toValues(list []string) []any {
	values := make([]any, len(list))
	for i, v := range list {
		values[i] = v
	}

	return values
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func normalise(v string) string {
	return spreadsheet.SafeColumnName(v)
}
