package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Quote represents one quote block. Text and Author are nil when the
// page carried none of the known markups for them.
type Quote struct {
	Text   *string  `json:"text"`
	Author *string  `json:"author"`
	Tags   []string `json:"tags"`
}

// NewQuote builds a quote with both text fields present.
func NewQuote(text, author string, tags ...string) Quote {
	if tags == nil {
		tags = []string{}
	}
	return Quote{Text: &text, Author: &author, Tags: tags}
}

// TextOrEmpty returns the quote text or "" when it is missing.
func (q Quote) TextOrEmpty() string {
	if q.Text == nil {
		return ""
	}
	return *q.Text
}

// AuthorOrEmpty returns the author or "" when it is missing.
func (q Quote) AuthorOrEmpty() string {
	if q.Author == nil {
		return ""
	}
	return *q.Author
}

// TagList implements Tagged.
func (q Quote) TagList() []string {
	return q.Tags
}

// Key identifies a quote by its text.
func (q Quote) Key() string {
	return q.TextOrEmpty()
}

// Kind implements Row.
func (q Quote) Kind() string {
	return "quote"
}

// Validate rejects quotes without text.
func (q Quote) Validate() error {
	if strings.TrimSpace(q.TextOrEmpty()) == "" {
		return fmt.Errorf("quote missing text")
	}
	return nil
}

// CSVHeader implements Row.
func (q Quote) CSVHeader() []string {
	return []string{"text", "author", "tags"}
}

// CSVRecord implements Row. Tags are joined with "|".
func (q Quote) CSVRecord() []string {
	return []string{q.TextOrEmpty(), q.AuthorOrEmpty(), strings.Join(q.Tags, "|")}
}

// MarshalJSON always encodes tags as an array.
func (q Quote) MarshalJSON() ([]byte, error) {
	type plain Quote
	if q.Tags == nil {
		q.Tags = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plain(q)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
