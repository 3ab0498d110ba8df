package spreadsheet

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/beevik/etree"
)

// fakeFeed is an in-memory stand-in for the spreadsheet feeds. Edit links carry a version
// and a stale version is rejected with 409, like the real service.
type fakeFeed struct {
	mu       sync.Mutex
	key      string
	title    string
	sheets   []*fakeSheet
	requests []fakeRequest
	tokens   int
	server   *httptest.Server

	// forced responses
	status      int
	contentType string
	body        string
}

type fakeRequest struct {
	method        string
	path          string
	query         url.Values
	authorization string
	contentType   string
	body          string
}

type fakeSheet struct {
	id       string
	title    string
	rowCount int
	colCount int
	version  int
	columns  []string
	rows     []*fakeRow
	cells    map[[2]int]*fakeCell
	next     int
}

type fakeRow struct {
	id      string
	version int
	values  map[string]string
}

type fakeCell struct {
	value   string
	version int
}

func newFakeFeed(t *testing.T, sheets ...*fakeSheet) *fakeFeed {
	f := fakeFeed{
		key:    "KEY",
		title:  "Fake Spreadsheet",
		sheets: sheets,
	}

	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)

	return &f
}

func newFakeSheet(id, title string, columns ...string) *fakeSheet {
	return &fakeSheet{
		id:       id,
		title:    title,
		rowCount: 100,
		colCount: 10,
		version:  1,
		columns:  columns,
		cells:    map[[2]int]*fakeCell{},
		next:     1,
	}
}

func (f *fakeFeed) url() string {
	return f.server.URL + "/feeds"
}

func (f *fakeFeed) open(t *testing.T, credential Credential, options ...Option) *Spreadsheet {
	options = append([]Option{WithFeedURL(f.url()), WithHTTPClient(f.server.Client())}, options...)

	s, err := New(f.key, credential, options...)
	if err != nil {
		t.Fatalf("unexpected error opening fake spreadsheet (%v)", err)
	}

	return s
}

func (f *fakeFeed) last() fakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.requests) == 0 {
		return fakeRequest{}
	}

	return f.requests[len(f.requests)-1]
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func (f *fakeFeed) sheet(id string) *fakeSheet {
	for _, s := range f.sheets {
		if s.id == id {
			return s
		}
	}

	return nil
}

func (f *fakeFeed) serve(w http.ResponseWriter, rq *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(rq.Body)

	if rq.URL.Path == "/token" {
		f.tokens++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":3600}`, f.tokens)
		return
	}

	f.requests = append(f.requests, fakeRequest{
		method:        rq.Method,
		path:          rq.URL.Path,
		query:         rq.URL.Query(),
		authorization: rq.Header.Get("Authorization"),
		contentType:   rq.Header.Get("Content-Type"),
		body:          string(body),
	})

	if f.status != 0 || f.contentType != "" {
		if f.contentType != "" {
			w.Header().Set("Content-Type", f.contentType)
		}
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		io.WriteString(w, f.body)
		return
	}

	path := strings.Split(strings.Trim(strings.TrimPrefix(rq.URL.Path, "/feeds"), "/"), "/")
	if len(path) < 2 || path[1] != f.key {
		http.Error(w, "no such spreadsheet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=UTF-8")

	switch path[0] {
	case "worksheets":
		f.worksheets(w, rq, path[2:], body)
	case "list":
		f.list(w, rq, path[2:], body)
	case "cells":
		f.cellsfeed(w, rq, path[2:], body)
	default:
		http.Error(w, "unknown feed", http.StatusNotFound)
	}
}

func (f *fakeFeed) worksheets(w http.ResponseWriter, rq *http.Request, path []string, body []byte) {
	switch {
	case len(path) == 2 && rq.Method == http.MethodGet:
		entries := []string{}
		for _, s := range f.sheets {
			entries = append(entries, f.worksheetEntry(s))
		}
		io.WriteString(w, f.feedXML("worksheets/"+f.key+"/private/full", entries))

	case len(path) == 2 && rq.Method == http.MethodPost:
		entry, ok := parseEntry(w, body)
		if !ok {
			return
		}
		s := newFakeSheet(fmt.Sprintf("ws%d", len(f.sheets)+1), entry.SelectElement("title").Text())
		s.rowCount, _ = strconv.Atoi(entry.SelectElement("rowCount").Text())
		s.colCount, _ = strconv.Atoi(entry.SelectElement("colCount").Text())
		f.sheets = append(f.sheets, s)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, standalone(f.worksheetEntry(s)))

	case len(path) == 4:
		s := f.sheet(path[2])
		if s == nil {
			http.Error(w, "no such worksheet", http.StatusNotFound)
			return
		} else if path[3] != strconv.Itoa(s.version) {
			http.Error(w, "stale version", http.StatusConflict)
			return
		}

		switch rq.Method {
		case http.MethodPut:
			entry, ok := parseEntry(w, body)
			if !ok {
				return
			}
			s.title = entry.SelectElement("title").Text()
			s.rowCount, _ = strconv.Atoi(entry.SelectElement("rowCount").Text())
			s.colCount, _ = strconv.Atoi(entry.SelectElement("colCount").Text())
			s.version++
			io.WriteString(w, standalone(f.worksheetEntry(s)))

		case http.MethodDelete:
			for i, v := range f.sheets {
				if v == s {
					f.sheets = append(f.sheets[:i], f.sheets[i+1:]...)
					break
				}
			}
		}

	default:
		http.Error(w, "bad worksheets request", http.StatusBadRequest)
	}
}

func (f *fakeFeed) list(w http.ResponseWriter, rq *http.Request, path []string, body []byte) {
	if len(path) < 3 {
		http.Error(w, "bad list request", http.StatusBadRequest)
		return
	}

	s := f.sheet(path[0])
	if s == nil {
		http.Error(w, "no such worksheet", http.StatusNotFound)
		return
	}

	switch {
	case len(path) == 3 && rq.Method == http.MethodGet:
		entries := []string{}
		for _, row := range s.rows {
			entries = append(entries, f.rowEntry(s, row))
		}
		io.WriteString(w, f.feedXML("list/"+f.key+"/"+s.id+"/private/full", entries))

	case len(path) == 3 && rq.Method == http.MethodPost:
		entry, ok := parseEntry(w, body)
		if !ok {
			return
		}
		row := fakeRow{
			id:      fmt.Sprintf("row%d", s.next),
			version: 1,
			values:  map[string]string{},
		}
		for _, child := range entry.ChildElements() {
			if child.Space == "gsx" && contains(s.columns, child.Tag) {
				row.values[child.Tag] = child.Text()
			}
		}
		s.next++
		s.rows = append(s.rows, &row)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, standalone(f.rowEntry(s, &row)))

	case len(path) == 5:
		var row *fakeRow
		index := -1
		for i, r := range s.rows {
			if r.id == path[3] {
				row, index = r, i
			}
		}

		if row == nil {
			http.Error(w, "no such row", http.StatusNotFound)
			return
		} else if path[4] != strconv.Itoa(row.version) {
			http.Error(w, "stale version", http.StatusConflict)
			return
		}

		switch rq.Method {
		case http.MethodPut:
			entry, ok := parseEntry(w, body)
			if !ok {
				return
			}
			if entry.SelectAttrValue("xmlns:gsx", "") != nsExtended {
				http.Error(w, "missing gsx namespace", http.StatusBadRequest)
				return
			}
			for _, child := range entry.ChildElements() {
				if child.Space == "gsx" && contains(s.columns, child.Tag) {
					row.values[child.Tag] = child.Text()
				}
			}
			row.version++
			io.WriteString(w, standalone(f.rowEntry(s, row)))

		case http.MethodDelete:
			s.rows = append(s.rows[:index], s.rows[index+1:]...)
		}

	default:
		http.Error(w, "bad list request", http.StatusBadRequest)
	}
}

func (f *fakeFeed) cellsfeed(w http.ResponseWriter, rq *http.Request, path []string, body []byte) {
	if len(path) < 3 {
		http.Error(w, "bad cells request", http.StatusBadRequest)
		return
	}

	s := f.sheet(path[0])
	if s == nil {
		http.Error(w, "no such worksheet", http.StatusNotFound)
		return
	}

	switch {
	case len(path) == 3 && rq.Method == http.MethodGet:
		q := rq.URL.Query()
		bound := func(k string, dflt int) int {
			if v, err := strconv.Atoi(q.Get(k)); err == nil {
				return v
			}
			return dflt
		}

		minRow, maxRow := bound("min-row", 1), bound("max-row", s.rowCount)
		minCol, maxCol := bound("min-col", 1), bound("max-col", s.colCount)
		empty := q.Get("return-empty") == "true"

		entries := []string{}
		for r := minRow; r <= maxRow; r++ {
			for c := minCol; c <= maxCol; c++ {
				if cell, ok := s.cells[[2]int{r, c}]; ok {
					entries = append(entries, f.cellEntry(s, r, c, cell))
				} else if empty {
					entries = append(entries, f.cellEntry(s, r, c, &fakeCell{version: 1}))
				}
			}
		}
		io.WriteString(w, f.feedXML("cells/"+f.key+"/"+s.id+"/private/full", entries))

	case len(path) == 5 && rq.Method == http.MethodPut:
		entry, ok := parseEntry(w, body)
		if !ok {
			return
		}

		gscell := entry.SelectElement("gs:cell")
		if gscell == nil {
			http.Error(w, "missing gs:cell", http.StatusBadRequest)
			return
		}

		r, _ := strconv.Atoi(gscell.SelectAttrValue("row", ""))
		c, _ := strconv.Atoi(gscell.SelectAttrValue("col", ""))
		if path[3] != fmt.Sprintf("R%vC%v", r, c) {
			http.Error(w, "cell mismatch", http.StatusBadRequest)
			return
		}

		cell, ok := s.cells[[2]int{r, c}]
		if !ok {
			cell = &fakeCell{version: 1}
			s.cells[[2]int{r, c}] = cell
		}

		if path[4] != strconv.Itoa(cell.version) {
			http.Error(w, "stale version", http.StatusConflict)
			return
		}

		cell.value = gscell.SelectAttrValue("inputValue", "")
		cell.version++
		io.WriteString(w, standalone(f.cellEntry(s, r, c, cell)))

	default:
		http.Error(w, "bad cells request", http.StatusBadRequest)
	}
}

func (f *fakeFeed) feedXML(id string, entries []string) string {
	var b strings.Builder

	b.WriteString(`<?xml version='1.0' encoding='UTF-8'?>`)
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom" xmlns:openSearch="http://a9.com/-/spec/opensearchrss/1.0/" xmlns:gs="http://schemas.google.com/spreadsheets/2006" xmlns:gsx="http://schemas.google.com/spreadsheets/2006/extended" xmlns:gd="http://schemas.google.com/g/2005">`)
	fmt.Fprintf(&b, `<id>%v/%v</id>`, f.url(), id)
	b.WriteString(`<updated>2026-10-01T12:30:00.000Z</updated>`)
	fmt.Fprintf(&b, `<title type="text">%v</title>`, esc(f.title))
	b.WriteString(`<author><name>fake</name><email>fake@example.com</email></author>`)
	fmt.Fprintf(&b, `<openSearch:totalResults>%v</openSearch:totalResults>`, len(entries))

	for _, e := range entries {
		b.WriteString(e)
	}

	b.WriteString(`</feed>`)

	return b.String()
}

func standalone(entry string) string {
	return strings.Replace(entry, "<entry", `<?xml version='1.0' encoding='UTF-8'?><entry xmlns="http://www.w3.org/2005/Atom" xmlns:gs="http://schemas.google.com/spreadsheets/2006" xmlns:gsx="http://schemas.google.com/spreadsheets/2006/extended" xmlns:gd="http://schemas.google.com/g/2005"`, 1)
}

func (f *fakeFeed) worksheetEntry(s *fakeSheet) string {
	id := fmt.Sprintf("%v/worksheets/%v/private/full/%v", f.url(), f.key, s.id)

	return fmt.Sprintf(`<entry><id>%v</id><updated>2026-10-01T12:30:00.000Z</updated><title type="text">%v</title>`+
		`<link rel="self" type="application/atom+xml" href="%v"/>`+
		`<link rel="edit" type="application/atom+xml" href="%v/%v"/>`+
		`<gs:rowCount>%v</gs:rowCount><gs:colCount>%v</gs:colCount></entry>`,
		id, esc(s.title), id, id, s.version, s.rowCount, s.colCount)
}

func (f *fakeFeed) rowEntry(s *fakeSheet, row *fakeRow) string {
	id := fmt.Sprintf("%v/list/%v/%v/private/full/%v", f.url(), f.key, s.id, row.id)

	var b strings.Builder
	fmt.Fprintf(&b, `<entry gd:etag="&quot;v%v&quot;"><id>%v</id><updated>2026-10-01T12:30:00.000Z</updated>`, row.version, id)
	b.WriteString(`<category scheme="http://schemas.google.com/spreadsheets/2006" term="http://schemas.google.com/spreadsheets/2006#list"/>`)
	fmt.Fprintf(&b, `<title type="text">%v</title><content type="text">%v</content>`, esc(row.id), esc(row.id))
	fmt.Fprintf(&b, `<link rel="self" type="application/atom+xml" href="%v"/>`, id)
	fmt.Fprintf(&b, `<link rel="edit" type="application/atom+xml" href="%v/%v"/>`, id, row.version)

	for _, c := range s.columns {
		if v := row.values[c]; v != "" {
			fmt.Fprintf(&b, `<gsx:%v>%v</gsx:%v>`, c, esc(v), c)
		} else {
			fmt.Fprintf(&b, `<gsx:%v/>`, c)
		}
	}

	b.WriteString(`</entry>`)

	return b.String()
}

func (f *fakeFeed) cellEntry(s *fakeSheet, r, c int, cell *fakeCell) string {
	id := fmt.Sprintf("%v/cells/%v/%v/private/full/R%vC%v", f.url(), f.key, s.id, r, c)
	numeric := ""
	if _, err := strconv.ParseFloat(cell.value, 64); err == nil {
		numeric = fmt.Sprintf(` numericValue="%v"`, esc(cell.value))
	}

	return fmt.Sprintf(`<entry><id>%v</id><title type="text">R%vC%v</title><content type="text">%v</content>`+
		`<link rel="self" type="application/atom+xml" href="%v"/>`+
		`<link rel="edit" type="application/atom+xml" href="%v/%v"/>`+
		`<gs:cell row="%v" col="%v" inputValue="%v"%v>%v</gs:cell></entry>`,
		id, r, c, esc(cell.value), id, id, cell.version, r, c, esc(cell.value), numeric, esc(cell.value))
}

func parseEntry(w http.ResponseWriter, body []byte) (*etree.Element, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	if root := doc.Root(); root == nil || root.Tag != "entry" {
		http.Error(w, "expected an entry", http.StatusBadRequest)
		return nil, false
	}

	return doc.Root(), true
}

func esc(s string) string {
	var b strings.Builder

	xml.EscapeText(&b, []byte(s))

	return b.String()
}

func contains(list []string, s string) bool {
	return slices.Contains(list, s)
}
