package models

import (
	"encoding/json"
	"testing"
)

func TestQuoteJSONKeepsMissingFieldsNull(t *testing.T) {
	text := "Be yourself; everyone else is already taken."
	raw, err := json.Marshal(Quote{Text: &text})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"text":"Be yourself; everyone else is already taken.","author":null,"tags":[]}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}
}

func TestQuoteAccessors(t *testing.T) {
	q := NewQuote("text", "author")
	if q.Tags == nil {
		t.Fatal("NewQuote left tags nil")
	}
	if q.Key() != "text" || q.Kind() != "quote" {
		t.Fatalf("key/kind = %q/%q", q.Key(), q.Kind())
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := (Quote{}).Validate(); err == nil {
		t.Fatal("expected validation error for quote without text")
	}
	if got := NewQuote("t", "a", "x", "y").CSVRecord()[2]; got != "x|y" {
		t.Fatalf("csv tags = %q", got)
	}
}

func TestBookKey(t *testing.T) {
	tests := []struct {
		name     string
		book     Book
		expected string
	}{
		{name: "url wins", book: Book{Title: "A", URL: "http://example.test/a"}, expected: "http://example.test/a"},
		{name: "title fallback", book: Book{Title: "A"}, expected: "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.book.Key(); got != tt.expected {
				t.Fatalf("Key() = %q, want %q", got, tt.expected)
			}
		})
	}

	if err := (Book{}).Validate(); err == nil {
		t.Fatal("expected validation error for book without title")
	}
	if got := (Book{Title: "A", Price: 51.7}).CSVRecord()[1]; got != "51.70" {
		t.Fatalf("csv price = %q", got)
	}
}
