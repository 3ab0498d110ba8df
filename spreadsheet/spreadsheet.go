package spreadsheet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// DefaultFeedURL is the root of the spreadsheet feeds.
const DefaultFeedURL = "https://spreadsheets.google.com/feeds"

type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

type Projection string

const (
	Values Projection = "values"
	Full   Projection = "full"
)

// Spreadsheet is a session against a single spreadsheet identified by its key.
type Spreadsheet struct {
	key        string
	feedRoot   string
	visibility Visibility
	projection Projection
	client     *http.Client
	limiter    *RateLimiter
	log        logrus.FieldLogger

	mu         sync.RWMutex
	mode       AuthMode
	credential Credential
	source     oauth2.TokenSource
}

// Option configures a Spreadsheet.
type Option func(*Spreadsheet)

// WithVisibility overrides the default visibility (private when authenticated, public otherwise).
func WithVisibility(v Visibility) Option {
	return func(s *Spreadsheet) {
		s.visibility = v
	}
}

// WithProjection overrides the default projection (full when authenticated, values otherwise).
func WithProjection(p Projection) Option {
	return func(s *Spreadsheet) {
		s.projection = p
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Spreadsheet) {
		s.client = client
	}
}

func WithFeedURL(feed string) Option {
	return func(s *Spreadsheet) {
		s.feedRoot = feed
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Spreadsheet) {
		s.log = log
	}
}

// WithRateLimit replaces the default request pacing.
func WithRateLimit(cfg RateLimitConfig) Option {
	return func(s *Spreadsheet) {
		s.limiter = NewRateLimiter(cfg)
	}
}

// New creates a session for the spreadsheet with the given key. The credential may be nil
// for anonymous access to a published sheet.
func New(key string, credential Credential, options ...Option) (*Spreadsheet, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrMissingKey
	}

	s := Spreadsheet{
		key:      key,
		feedRoot: DefaultFeedURL,
		client:   http.DefaultClient,
		limiter:  NewRateLimiter(DefaultRateLimit),
		log:      logrus.StandardLogger(),
		mode:     AuthAnonymous,
	}

	for _, option := range options {
		option(&s)
	}

	if credential != nil {
		s.SetAuthToken(credential)
	}

	return &s, nil
}

// Key returns the spreadsheet key.
func (s *Spreadsheet) Key() string {
	return s.key
}

// Visibility returns the feed visibility used for requests.
func (s *Spreadsheet) Visibility() Visibility {
	if s.visibility != "" {
		return s.visibility
	}

	if s.authenticated() {
		return Private
	}

	return Public
}

// Projection returns the feed projection used for requests.
func (s *Spreadsheet) Projection() Projection {
	if s.projection != "" {
		return s.projection
	}

	if s.authenticated() {
		return Full
	}

	return Values
}

func (s *Spreadsheet) authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.mode == AuthJWT || s.credential != nil
}

// Author is the spreadsheet owner as reported by the worksheets feed.
type Author struct {
	Name  string
	Email string
}

// Info describes the spreadsheet and its worksheets.
type Info struct {
	ID         string
	Title      string
	Updated    time.Time
	Author     Author
	Worksheets []*Worksheet
}

// GetInfo fetches the spreadsheet title, owner and worksheets.
func (s *Spreadsheet) GetInfo(ctx context.Context) (*Info, error) {
	response, err := s.feed(ctx, http.MethodGet, []string{"worksheets", s.key}, nil, nil)
	if err != nil {
		return nil, err
	} else if response.Empty() {
		return nil, fmt.Errorf("%w (no response to GetInfo request)", ErrEmptyResponse)
	}

	_, feed := response.root()
	info := Info{
		ID:         textOf(feed["id"]),
		Title:      textOf(feed["title"]),
		Worksheets: []*Worksheet{},
	}

	if updated := textOf(feed["updated"]); updated != "" {
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			info.Updated = t
		}
	}

	if authors := list(feed["author"]); len(authors) > 0 {
		if author, ok := authors[0].(map[string]any); ok {
			info.Author = Author{
				Name:  textOf(author["name"]),
				Email: textOf(author["email"]),
			}
		}
	}

	entries, err := response.entries()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		worksheet, err := newWorksheet(s, entry)
		if err != nil {
			return nil, err
		}

		info.Worksheets = append(info.Worksheets, worksheet)
	}

	return &info, nil
}

// RowQuery selects and orders the rows returned by GetRows. Zero values are omitted.
type RowQuery struct {
	Start   int    // 1-based index of the first row
	Num     int    // maximum number of rows
	OrderBy string // e.g. 'column:lastname'
	Reverse bool
	Query   string // structured query e.g. 'age > 25'
}

func (q RowQuery) values() url.Values {
	query := url.Values{}

	if q.Start > 0 {
		query.Set("start-index", strconv.Itoa(q.Start))
	}

	if q.Num > 0 {
		query.Set("max-results", strconv.Itoa(q.Num))
	}

	if q.OrderBy != "" {
		query.Set("orderby", q.OrderBy)
	}

	if q.Reverse {
		query.Set("reverse", "true")
	}

	if q.Query != "" {
		query.Set("sq", q.Query)
	}

	return query
}

// GetRows fetches the rows of a worksheet from its list feed.
func (s *Spreadsheet) GetRows(ctx context.Context, worksheet string, q RowQuery) ([]*Row, error) {
	response, err := s.feed(ctx, http.MethodGet, []string{"list", s.key, worksheet}, q.values(), nil)
	if err != nil {
		return nil, err
	} else if response.Empty() {
		return nil, fmt.Errorf("%w (no response to GetRows request)", ErrEmptyResponse)
	}

	namespaces := response.namespaces()
	rows := []*Row{}
	for _, entry := range response.elements() {
		rows = append(rows, newRow(s, worksheet, entry, namespaces))
	}

	return rows, nil
}

// reserved keys are never written as columns by AddRow.
var reserved = map[string]bool{
	"id":      true,
	"title":   true,
	"content": true,
	"_links":  true,
}

// AddRow appends a row to a worksheet and returns the row as stored by the server. Column
// names are reduced to the feed form (lowercase, no whitespace or underscores) and keys that
// reduce to the same name are rejected with ErrDuplicateColumn.
func (s *Spreadsheet) AddRow(ctx context.Context, worksheet string, data map[string]string) (*Row, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	columns := map[string]string{}
	doc, entry := newEntry(map[string]string{"gsx": nsExtended})
	for _, k := range keys {
		column := SafeColumnName(k)
		if other, ok := columns[column]; ok {
			return nil, fmt.Errorf("%w ('%v' and '%v' are both '%v')", ErrDuplicateColumn, other, k, column)
		}

		columns[column] = k
		entry.CreateElement("gsx:" + column).SetText(data[k])
	}

	body, err := serialize(doc)
	if err != nil {
		return nil, err
	}

	response, err := s.feed(ctx, http.MethodPost, []string{"list", s.key, worksheet}, nil, body)
	if err != nil {
		return nil, err
	} else if response.Empty() {
		return nil, fmt.Errorf("%w (no response to AddRow request)", ErrEmptyResponse)
	}

	elements := response.elements()
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w (AddRow response has no entry)", ErrMalformedResponse)
	}

	return newRow(s, worksheet, elements[0], response.namespaces()), nil
}

// CellQuery restricts the cells returned by GetCells. Zero values are omitted.
type CellQuery struct {
	MinRow      int
	MaxRow      int
	MinCol      int
	MaxCol      int
	ReturnEmpty bool
}

func (q CellQuery) values() url.Values {
	query := url.Values{}

	set := func(k string, v int) {
		if v > 0 {
			query.Set(k, strconv.Itoa(v))
		}
	}

	set("min-row", q.MinRow)
	set("max-row", q.MaxRow)
	set("min-col", q.MinCol)
	set("max-col", q.MaxCol)

	if q.ReturnEmpty {
		query.Set("return-empty", "true")
	}

	return query
}

// GetCells fetches the cells of a worksheet from its cells feed.
func (s *Spreadsheet) GetCells(ctx context.Context, worksheet string, q CellQuery) ([]*Cell, error) {
	response, err := s.feed(ctx, http.MethodGet, []string{"cells", s.key, worksheet}, q.values(), nil)
	if err != nil {
		return nil, err
	} else if response.Empty() {
		return nil, fmt.Errorf("%w (no response to GetCells request)", ErrEmptyResponse)
	}

	cells := []*Cell{}
	for _, entry := range response.elements() {
		cell, err := newCell(s, worksheet, entry)
		if err != nil {
			return nil, err
		}

		cells = append(cells, cell)
	}

	return cells, nil
}

// WorksheetOptions describes a worksheet to be created by AddWorksheet.
type WorksheetOptions struct {
	Title    string
	RowCount int
	ColCount int
}

// AddWorksheet creates a worksheet. Unset fields default to a timestamped title and 50x20 cells.
func (s *Spreadsheet) AddWorksheet(ctx context.Context, options WorksheetOptions) (*Worksheet, error) {
	if options.Title == "" {
		options.Title = fmt.Sprintf("Worksheet %d", time.Now().UnixMilli())
	}

	if options.RowCount <= 0 {
		options.RowCount = 50
	}

	if options.ColCount <= 0 {
		options.ColCount = 20
	}

	body, err := worksheetEntry(options.Title, options.RowCount, options.ColCount)
	if err != nil {
		return nil, err
	}

	response, err := s.feed(ctx, http.MethodPost, []string{"worksheets", s.key}, nil, body)
	if err != nil {
		return nil, err
	} else if response.Empty() {
		return nil, fmt.Errorf("%w (no response to AddWorksheet request)", ErrEmptyResponse)
	}

	entries, err := response.entries()
	if err != nil {
		return nil, err
	} else if len(entries) == 0 {
		return nil, fmt.Errorf("%w (AddWorksheet response has no entry)", ErrMalformedResponse)
	}

	return newWorksheet(s, entries[0])
}

// RemoveWorksheet deletes a worksheet.
func (s *Spreadsheet) RemoveWorksheet(ctx context.Context, worksheet *Worksheet) error {
	return worksheet.Del(ctx)
}
