package spreadsheet

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// Worksheet is a snapshot of a worksheet entry. A fresh GetInfo produces new instances.
type Worksheet struct {
	ID       string
	URL      string
	Title    string
	RowCount int
	ColCount int
	Links    Links

	sheet *Spreadsheet
}

func newWorksheet(s *Spreadsheet, entry map[string]any) (*Worksheet, error) {
	id := textOf(entry["id"])

	rows, err := count(lookup(entry, "rowCount", "gs:rowCount"))
	if err != nil {
		return nil, fmt.Errorf("%w (worksheet %v row count: %v)", ErrMalformedResponse, id, err)
	}

	cols, err := count(lookup(entry, "colCount", "gs:colCount"))
	if err != nil {
		return nil, fmt.Errorf("%w (worksheet %v column count: %v)", ErrMalformedResponse, id, err)
	}

	return &Worksheet{
		ID:       lastSegment(id),
		URL:      id,
		Title:    textOf(entry["title"]),
		RowCount: rows,
		ColCount: cols,
		Links:    linksOf(entry["link"]),
		sheet:    s,
	}, nil
}

func count(v any) (int, error) {
	if s := textOf(v); s != "" {
		return strconv.Atoi(s)
	}

	return 0, nil
}

// GetRows fetches the rows of this worksheet.
func (w *Worksheet) GetRows(ctx context.Context, q RowQuery) ([]*Row, error) {
	return w.sheet.GetRows(ctx, w.ID, q)
}

// GetCells fetches the cells of this worksheet.
func (w *Worksheet) GetCells(ctx context.Context, q CellQuery) ([]*Cell, error) {
	return w.sheet.GetCells(ctx, w.ID, q)
}

// AddRow appends a row to this worksheet.
func (w *Worksheet) AddRow(ctx context.Context, data map[string]string) (*Row, error) {
	return w.sheet.AddRow(ctx, w.ID, data)
}

// SetTitle renames the worksheet.
func (w *Worksheet) SetTitle(ctx context.Context, title string) error {
	return w.update(ctx, title, w.RowCount, w.ColCount)
}

// Resize changes the worksheet grid size.
func (w *Worksheet) Resize(ctx context.Context, rows, cols int) error {
	return w.update(ctx, w.Title, rows, cols)
}

// Del deletes the worksheet.
func (w *Worksheet) Del(ctx context.Context) error {
	edit, ok := w.Links.Edit()
	if !ok {
		return ErrNotEditable
	}

	_, err := w.sheet.request(ctx, http.MethodDelete, edit, nil, nil)

	return err
}

// SetHeaderRow writes the column headers into the first row, one cell update per header.
func (w *Worksheet) SetHeaderRow(ctx context.Context, headers []string) error {
	if len(headers) > w.ColCount {
		return fmt.Errorf("worksheet is not large enough to fit %d columns - resize it first", len(headers))
	}

	cells, err := w.GetCells(ctx, CellQuery{MinRow: 1, MaxRow: 1, MaxCol: w.ColCount, ReturnEmpty: true})
	if err != nil {
		return err
	}

	for _, cell := range cells {
		value := ""
		if cell.Col <= len(headers) {
			value = headers[cell.Col-1]
		}

		if cell.Value != value {
			if err := cell.SetValue(ctx, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func (w *Worksheet) update(ctx context.Context, title string, rows, cols int) error {
	edit, ok := w.Links.Edit()
	if !ok {
		return ErrNotEditable
	}

	body, err := worksheetEntry(title, rows, cols)
	if err != nil {
		return err
	}

	response, err := w.sheet.request(ctx, http.MethodPut, edit, nil, body)
	if err != nil {
		return err
	}

	w.Title = title
	w.RowCount = rows
	w.ColCount = cols

	if !response.Empty() {
		if entries, err := response.entries(); err == nil && len(entries) > 0 {
			if updated, err := newWorksheet(w.sheet, entries[0]); err == nil {
				*w = *updated
			}
		}
	}

	return nil
}

func worksheetEntry(title string, rows, cols int) ([]byte, error) {
	doc, entry := newEntry(map[string]string{"gs": nsSheets})

	entry.CreateElement("title").SetText(title)
	entry.CreateElement("gs:rowCount").SetText(strconv.Itoa(rows))
	entry.CreateElement("gs:colCount").SetText(strconv.Itoa(cols))

	return serialize(doc)
}
