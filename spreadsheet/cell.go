package spreadsheet

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/beevik/etree"
)

// Cell is a cells feed entry.
type Cell struct {
	ID           string
	Row          int
	Col          int
	Value        string
	InputValue   string
	NumericValue *float64
	Links        Links

	worksheet string
	sheet     *Spreadsheet
}

func newCell(s *Spreadsheet, worksheet string, entry *etree.Element) (*Cell, error) {
	id := ""
	if e := entry.SelectElement("id"); e != nil {
		id = e.Text()
	}

	gscell := entry.SelectElement("gs:cell")
	if gscell == nil {
		return nil, fmt.Errorf("%w (cell %v has no gs:cell element)", ErrMalformedResponse, id)
	}

	row, err := cellIndex(gscell, "row")
	if err != nil {
		return nil, fmt.Errorf("%w (cell %v: %v)", ErrMalformedResponse, id, err)
	}

	col, err := cellIndex(gscell, "col")
	if err != nil {
		return nil, fmt.Errorf("%w (cell %v: %v)", ErrMalformedResponse, id, err)
	}

	cell := Cell{
		ID:         id,
		Row:        row,
		Col:        col,
		Value:      gscell.Text(),
		InputValue: gscell.SelectAttrValue("inputValue", ""),
		Links:      linksOfElement(entry),
		worksheet:  worksheet,
		sheet:      s,
	}

	if v := gscell.SelectAttr("numericValue"); v != nil {
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			cell.NumericValue = &f
		}
	}

	return &cell, nil
}

func cellIndex(gscell *etree.Element, name string) (int, error) {
	v := gscell.SelectAttr(name)
	if v == nil {
		return 0, fmt.Errorf("missing '%v' attribute", name)
	}

	return strconv.Atoi(v.Value)
}

// Worksheet returns the ID of the worksheet the cell belongs to.
func (c *Cell) Worksheet() string {
	return c.worksheet
}

// SetValue updates the cell value locally and on the server.
func (c *Cell) SetValue(ctx context.Context, value string) error {
	c.Value = value

	return c.Save(ctx)
}

// Save writes the cell value (as the input value, so formulas are accepted) to the server and
// refreshes the cell from the response.
func (c *Cell) Save(ctx context.Context) error {
	edit, ok := c.Links.Edit()
	if !ok {
		return ErrNotEditable
	}

	doc, entry := newEntry(map[string]string{"gs": nsSheets})

	entry.CreateElement("id").SetText(c.ID)

	link := entry.CreateElement("link")
	link.CreateAttr("rel", "edit")
	link.CreateAttr("type", mediaAtom)
	link.CreateAttr("href", c.ID)

	gscell := entry.CreateElement("gs:cell")
	gscell.CreateAttr("row", strconv.Itoa(c.Row))
	gscell.CreateAttr("col", strconv.Itoa(c.Col))
	gscell.CreateAttr("inputValue", c.Value)

	body, err := serialize(doc)
	if err != nil {
		return err
	}

	response, err := c.sheet.request(ctx, http.MethodPut, edit, nil, body)
	if err != nil {
		return err
	}

	c.InputValue = c.Value

	if !response.Empty() {
		if elements := response.elements(); len(elements) > 0 {
			if updated, err := newCell(c.sheet, c.worksheet, elements[0]); err == nil {
				*c = *updated
			}
		}
	}

	return nil
}

// Del clears the cell. The feed has no cell delete, so the cell remains with an empty value.
func (c *Cell) Del(ctx context.Context) error {
	return c.SetValue(ctx, "")
}
