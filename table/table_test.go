package table

import (
	"reflect"
	"testing"

	"google.golang.org/api/sheets/v4"

	"github.com/uhppoted/gsheets-feed/spreadsheet"
)

func row(values ...string) *spreadsheet.Row {
	r := spreadsheet.Row{}
	for i := 0; i+1 < len(values); i += 2 {
		r.Set(values[i], values[i+1])
	}

	return &r
}

func TestFromRows(t *testing.T) {
	expected := [][]any{
		[]any{"name", "email", "phone"},
		[]any{"Ada", "ada@example.com", ""},
		[]any{"Charles", "", "555-1234"},
	}

	rows := []*spreadsheet.Row{
		row("name", "Ada", "email", "ada@example.com"),
		row("name", "Charles", "phone", "555-1234"),
	}

	data := FromRows(rows)

	if !reflect.DeepEqual(data.Values, expected) {
		t.Errorf("Incorrect value range\n   expected: %v\n   got:      %v", expected, data.Values)
	}
}

func TestFromRowsWithNoRows(t *testing.T) {
	data := FromRows(nil)

	if len(data.Values) != 1 || len(data.Values[0]) != 0 {
		t.Errorf("Expected an empty header row, got %v", data.Values)
	}
}

func TestRecords(t *testing.T) {
	expected := []map[string]string{
		{"Name": "Ada", "Email": "ada@example.com", "Notes": ""},
		{"Name": "Charles", "Email": "", "Notes": "line1\nline2"},
	}

	data := sheets.ValueRange{
		Values: [][]any{
			[]any{"Name", " Email ", "Notes"},
			[]any{"Ada", "ada@example.com"},
			[]any{"", "  ", ""},
			[]any{"Charles", "", "line1\nline2"},
		},
	}

	records, err := Records(&data)
	if err != nil {
		t.Fatalf("Unexpected error returned from Records (%v)", err)
	}

	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Incorrect records\n   expected: %v\n   got:      %v", expected, records)
	}
}

func TestRecordsWithEmptySheet(t *testing.T) {
	if _, err := Records(&sheets.ValueRange{}); err == nil {
		t.Fatalf("Expected error return for empty sheet, got %v", err)
	}
}

func TestRecordsWithDuplicateColumns(t *testing.T) {
	data := sheets.ValueRange{
		Values: [][]any{
			[]any{"Last Name", "last_name"},
		},
	}

	if _, err := Records(&data); err == nil {
		t.Fatalf("Expected error return for duplicate columns, got %v", err)
	}
}

func TestRecordsWithBlankHeader(t *testing.T) {
	data := sheets.ValueRange{
		Values: [][]any{
			[]any{"Name", " "},
		},
	}

	if _, err := Records(&data); err == nil {
		t.Fatalf("Expected error return for blank column name, got %v", err)
	}
}
