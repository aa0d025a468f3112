// Package parser turns fetched HTML into records through declarative
// selector schemas.
package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Self selects the container element itself.
const Self = ""

const xpathPrefix = "xpath:"

// Field describes how to read one value out of a container. Selectors are
// tried in order and the first candidate that matches anything wins. A
// candidate prefixed with "xpath:" is evaluated as XPath relative to the
// container; anything else is a CSS selector.
type Field struct {
	Name      string
	Selectors []string
	Attr      string // read this attribute instead of the text
	Multiple  bool   // collect every match instead of the first
}

// Schema locates record containers on a page and the fields inside them.
type Schema struct {
	Containers []string
	Fields     []Field
}

// Record holds the raw values of one container keyed by field name.
type Record struct {
	values map[string]string
	lists  map[string][]string
}

// Value returns the single value of a field and whether any selector matched.
func (r Record) Value(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Ptr returns the value as a pointer, nil when no selector matched.
func (r Record) Ptr(name string) *string {
	v, ok := r.values[name]
	if !ok {
		return nil
	}
	return &v
}

// List returns the values of a Multiple field, never nil.
func (r Record) List(name string) []string {
	if list, ok := r.lists[name]; ok {
		return list
	}
	return []string{}
}

// NextPage is the pagination control shared by both demo sites.
var NextPage = Field{
	Name:      "next",
	Selectors: []string{"li.next a", "xpath://a[normalize-space(text())='next']"},
	Attr:      "href",
}

// NewDocument parses body into a goquery document.
func NewDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Parse extracts one Record per container, in document order.
func (s Schema) Parse(doc *goquery.Document) []Record {
	containers := firstMatch(doc.Selection, s.Containers)
	records := make([]Record, 0, containers.Length())
	containers.Each(func(_ int, sel *goquery.Selection) {
		records = append(records, s.extract(sel))
	})
	return records
}

func (s Schema) extract(sel *goquery.Selection) Record {
	rec := Record{
		values: make(map[string]string, len(s.Fields)),
		lists:  make(map[string][]string),
	}
	for _, f := range s.Fields {
		if f.Multiple {
			rec.lists[f.Name] = f.all(sel)
			continue
		}
		if v, ok := f.first(sel); ok {
			rec.values[f.Name] = v
		}
	}
	return rec
}

// Find reads a single field from the whole document.
func Find(doc *goquery.Document, f Field) (string, bool) {
	return f.first(doc.Selection)
}

// HiddenInput returns the non-empty value of the named form input.
func HiddenInput(doc *goquery.Document, name string) (string, bool) {
	v, ok := Find(doc, Field{
		Name:      name,
		Selectors: []string{fmt.Sprintf("input[name=%q]", name)},
		Attr:      "value",
	})
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (f Field) first(sel *goquery.Selection) (string, bool) {
	for _, candidate := range f.Selectors {
		matches := find(sel, candidate)
		if matches.Length() == 0 {
			continue
		}
		first := matches.First()
		if f.Attr == "" {
			return strings.TrimSpace(first.Text()), true
		}
		if v, ok := first.Attr(f.Attr); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func (f Field) all(sel *goquery.Selection) []string {
	out := []string{}
	for _, candidate := range f.Selectors {
		matches := find(sel, candidate)
		if matches.Length() == 0 {
			continue
		}
		matches.Each(func(_ int, m *goquery.Selection) {
			if f.Attr == "" {
				out = append(out, strings.TrimSpace(m.Text()))
				return
			}
			if v, ok := m.Attr(f.Attr); ok {
				out = append(out, strings.TrimSpace(v))
			}
		})
		return out
	}
	return out
}

func firstMatch(sel *goquery.Selection, candidates []string) *goquery.Selection {
	for _, candidate := range candidates {
		if matches := find(sel, candidate); matches.Length() > 0 {
			return matches
		}
	}
	return sel.Slice(0, 0)
}

func find(sel *goquery.Selection, candidate string) *goquery.Selection {
	if candidate == Self {
		return sel
	}
	if expr, ok := strings.CutPrefix(candidate, xpathPrefix); ok {
		return findXPath(sel, expr)
	}
	return sel.Find(candidate)
}

func findXPath(sel *goquery.Selection, expr string) *goquery.Selection {
	var nodes = sel.Slice(0, 0)
	for _, root := range sel.Nodes {
		found, err := htmlquery.QueryAll(root, expr)
		if err != nil {
			slog.Debug("invalid xpath selector", slog.String("xpath", expr), slog.Any("error", err))
			return sel.Slice(0, 0)
		}
		nodes = nodes.AddNodes(found...)
	}
	return nodes
}
