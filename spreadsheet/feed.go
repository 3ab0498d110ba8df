package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/clbanning/mxj/v2"
	"golang.org/x/net/html/charset"
)

const (
	nsAtom     = "http://www.w3.org/2005/Atom"
	nsSheets   = "http://schemas.google.com/spreadsheets/2006"
	nsExtended = "http://schemas.google.com/spreadsheets/2006/extended"

	mediaAtom = "application/atom+xml"
)

// Attribute and text keys of the generic tree.
const (
	attr = "-"
	text = "#text"
)

func init() {
	mxj.XmlCharsetReader = charset.NewReaderLabel
}

// Response is the result of a feed request. It is either empty (e.g. after a DELETE) or
// holds the response body together with two views of it: a generic attribute/text tree and
// an element tree used wherever entries have to be edited and written back.
type Response struct {
	raw  []byte
	tree mxj.Map
	doc  *etree.Document
}

// Empty is true if the server returned no content.
func (r *Response) Empty() bool {
	return r == nil || len(r.raw) == 0
}

// Raw returns the verbatim response body.
func (r *Response) Raw() []byte {
	if r == nil {
		return nil
	}

	return r.raw
}

func parse(b []byte) (*Response, error) {
	tree, err := mxj.NewMapXml(b)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrMalformedResponse, err)
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel

	if err := doc.ReadFromBytes(b); err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrMalformedResponse, err)
	} else if doc.Root() == nil {
		return nil, fmt.Errorf("%w (no root element)", ErrMalformedResponse)
	}

	return &Response{
		raw:  b,
		tree: tree,
		doc:  doc,
	}, nil
}

// root returns the root element name and its content, e.g. 'feed' or 'entry'.
func (r *Response) root() (string, map[string]any) {
	for k, v := range r.tree {
		if m, ok := v.(map[string]any); ok {
			return k, m
		}

		return k, map[string]any{}
	}

	return "", map[string]any{}
}

// entries returns the generic tree of every entry in the response, always as a list. A
// response that is itself a single entry yields a one element list.
func (r *Response) entries() ([]map[string]any, error) {
	name, content := r.root()
	if name == "entry" {
		return []map[string]any{content}, nil
	}

	values, err := r.tree.ValuesForPath(name + ".entry")
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrMalformedResponse, err)
	}

	entries := []map[string]any{}
	for _, v := range values {
		if m, ok := v.(map[string]any); ok {
			entries = append(entries, m)
		}
	}

	return entries, nil
}

// elements returns the element tree of every entry in the response.
func (r *Response) elements() []*etree.Element {
	root := r.doc.Root()
	if root.Tag == "entry" {
		return []*etree.Element{root}
	}

	return root.SelectElements("entry")
}

// namespaces returns the namespace declarations on the response root element. Entries copied
// out of a feed need them to be serialised on their own.
func (r *Response) namespaces() []etree.Attr {
	list := []etree.Attr{}
	for _, a := range r.doc.Root().Attr {
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			list = append(list, a)
		}
	}

	return list
}

// lookup returns the first field present under any of the names. mxj keys elements by their
// local name but prefixed names are accepted too.
func lookup(m map[string]any, names ...string) any {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v
		}
	}

	return nil
}

// list coerces a field that may hold a single value or a list of values into a list.
func list(v any) []any {
	switch vv := v.(type) {
	case nil:
		return []any{}
	case []any:
		return vv
	default:
		return []any{v}
	}
}

// textOf returns the text of an element: either the element value itself or its '#text' field.
func textOf(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case map[string]any:
		if s, ok := vv[text].(string); ok {
			return s
		}
	case []any:
		if len(vv) > 0 {
			return textOf(vv[0])
		}
	}

	return ""
}

func attribute(v any, name string) (string, bool) {
	if m, ok := v.(map[string]any); ok {
		if s, ok := m[attr+name].(string); ok {
			return s, true
		}
	}

	return "", false
}

// Links maps link relations ('edit', 'self', ...) to URLs.
type Links map[string]string

// Edit returns the 'edit' link.
func (l Links) Edit() (string, bool) {
	href, ok := l["edit"]

	return href, ok && href != ""
}

func linksOf(v any) Links {
	links := Links{}
	for _, link := range list(v) {
		rel, _ := attribute(link, "rel")
		href, _ := attribute(link, "href")
		if rel != "" {
			links[rel] = href
		}
	}

	return links
}

func linksOfElement(e *etree.Element) Links {
	links := Links{}
	for _, link := range e.SelectElements("link") {
		if rel := link.SelectAttrValue("rel", ""); rel != "" {
			links[rel] = link.SelectAttrValue("href", "")
		}
	}

	return links
}

// newEntry creates an Atom entry document with the listed namespace prefixes declared.
func newEntry(prefixes map[string]string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	entry := doc.CreateElement("entry")
	entry.CreateAttr("xmlns", nsAtom)

	for _, prefix := range []string{"gs", "gsx"} {
		if uri, ok := prefixes[prefix]; ok {
			entry.CreateAttr("xmlns:"+prefix, uri)
		}
	}

	return doc, entry
}

func serialize(doc *etree.Document) ([]byte, error) {
	return doc.WriteToBytes()
}

func lastSegment(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}
