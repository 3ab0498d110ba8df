package spreadsheet

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/beevik/etree"
)

// Row is a list feed entry: the user defined columns plus the entry metadata. The entry
// element is retained so that Save can write back fields it does not model.
type Row struct {
	ID      string
	Title   string
	Content string
	Updated string
	Links   Links
	Fields  map[string]string

	worksheet string
	values    map[string]*string
	columns   []string
	entry     *etree.Element
	deleted   bool
	sheet     *Spreadsheet
}

func newRow(s *Spreadsheet, worksheet string, e *etree.Element, namespaces []etree.Attr) *Row {
	entry := e.Copy()
	for _, ns := range namespaces {
		if entry.SelectAttr(ns.FullKey()) == nil {
			entry.CreateAttr(ns.FullKey(), ns.Value)
		}
	}

	row := Row{
		Links:     Links{},
		Fields:    map[string]string{},
		worksheet: worksheet,
		values:    map[string]*string{},
		columns:   []string{},
		entry:     entry,
		sheet:     s,
	}

	for _, child := range entry.ChildElements() {
		switch {
		case child.Space == "gsx":
			column := columnKey(child.Tag)
			if _, ok := row.values[column]; !ok {
				row.columns = append(row.columns, column)
			}

			if v := child.Text(); v != "" {
				row.values[column] = &v
			} else {
				row.values[column] = nil
			}

		case child.Tag == "id":
			row.ID = child.Text()

		case child.Tag == "link":
			if rel := child.SelectAttrValue("rel", ""); rel != "" {
				row.Links[rel] = child.SelectAttrValue("href", "")
			}

		case child.Tag == "title":
			row.Title = child.Text()

		case child.Tag == "content":
			row.Content = child.Text()

		case child.Tag == "updated":
			row.Updated = child.Text()

		case child.Text() != "":
			row.Fields[child.FullTag()] = child.Text()
		}
	}

	return &row
}

// columnKey maps an extended-data element name to a column name. An element with an empty
// local name is keyed as 'gsx'.
func columnKey(tag string) string {
	if tag == "" {
		return "gsx"
	}

	return tag
}

// Columns returns the column names in the order the server listed them.
func (r *Row) Columns() []string {
	return append([]string{}, r.columns...)
}

// column resolves a column name to its key: the name exactly as the feed reported it, otherwise
// its safe form. Generated names such as '_cn6ca' only match exactly.
func (r *Row) column(name string) string {
	if _, ok := r.values[name]; ok {
		return name
	}

	return SafeColumnName(name)
}

// Get returns the value of a column, "" if the column is empty or does not exist.
func (r *Row) Get(column string) string {
	if v := r.values[r.column(column)]; v != nil {
		return *v
	}

	return ""
}

// Value returns the value of a column, nil if the column is empty. The boolean is false if
// the row has no such column.
func (r *Row) Value(column string) (*string, bool) {
	v, ok := r.values[r.column(column)]

	return v, ok
}

// Values returns a copy of the column values.
func (r *Row) Values() map[string]*string {
	values := make(map[string]*string, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}

	return values
}

// Set updates a column locally. Only columns that already exist on the server are written
// by Save.
func (r *Row) Set(column, value string) {
	column = r.column(column)
	if r.values == nil {
		r.values = map[string]*string{}
	}

	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}

	r.values[column] = &value
}

// Save writes the row back to the server. The retained entry is updated in place, which
// keeps any server controlled elements intact, and the row is refreshed from the response.
func (r *Row) Save(ctx context.Context) error {
	if r.deleted {
		return ErrDeleted
	}

	edit, ok := r.Links.Edit()
	if !ok {
		return ErrNotEditable
	}

	doc := etree.NewDocument()
	doc.SetRoot(r.patch())

	body, err := serialize(doc)
	if err != nil {
		return err
	}

	response, err := r.sheet.request(ctx, http.MethodPut, edit, nil, body)
	if err != nil {
		return err
	}

	if !response.Empty() {
		if elements := response.elements(); len(elements) > 0 {
			updated := newRow(r.sheet, r.worksheet, elements[0], response.namespaces())
			*r = *updated
		}
	}

	return nil
}

// Del deletes the row. The row must not be used afterwards.
func (r *Row) Del(ctx context.Context) error {
	if r.deleted {
		return ErrDeleted
	}

	edit, ok := r.Links.Edit()
	if !ok {
		return ErrNotEditable
	}

	if _, err := r.sheet.request(ctx, http.MethodDelete, edit, nil, nil); err != nil {
		return err
	}

	r.deleted = true

	return nil
}

// patch returns a copy of the retained entry with the Atom and extended-data namespaces
// declared and every extended-data element set to the current column value.
func (r *Row) patch() *etree.Element {
	entry := r.entry.Copy()

	if entry.SelectAttr("xmlns") == nil {
		entry.CreateAttr("xmlns", nsAtom)
	}

	if entry.SelectAttr("xmlns:gsx") == nil {
		entry.CreateAttr("xmlns:gsx", nsExtended)
	}

	for _, child := range entry.ChildElements() {
		if child.Space == "gsx" {
			if v, ok := r.values[columnKey(child.Tag)]; ok {
				if v == nil {
					child.SetText("")
				} else {
					child.SetText(*v)
				}
			}
		}
	}

	return entry
}

func (r *Row) String() string {
	columns := append([]string{}, r.columns...)
	sort.Strings(columns)

	s := fmt.Sprintf("%v", r.ID)
	for _, c := range columns {
		s += fmt.Sprintf(" %v:%q", c, r.Get(c))
	}

	return s
}
