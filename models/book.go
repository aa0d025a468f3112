// Package models defines the records extracted by the scraper.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Book represents one product entry from a catalogue listing page.
type Book struct {
	Title         string  `csv:"title" json:"title"`
	Price         float64 `csv:"price" json:"price"`
	PriceText     string  `csv:"price_text" json:"price_text"`
	RatingText    string  `csv:"rating" json:"rating"`
	RatingNumeric int     `csv:"rating_numeric" json:"rating_numeric"`
	Availability  string  `csv:"availability" json:"availability"`
	URL           string  `csv:"url" json:"url"`
}

// PriceValue implements Priced.
func (b Book) PriceValue() float64 {
	return b.Price
}

// Key identifies a book by its detail page, falling back to the title.
func (b Book) Key() string {
	if b.URL != "" {
		return b.URL
	}
	return b.Title
}

// Kind implements Row.
func (b Book) Kind() string {
	return "book"
}

// Validate ensures the scraper captured the required fields.
func (b Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book missing title")
	}
	return nil
}

// CSVHeader implements Row.
func (b Book) CSVHeader() []string {
	return []string{"title", "price", "price_text", "rating", "rating_numeric", "availability", "url"}
}

// CSVRecord implements Row.
func (b Book) CSVRecord() []string {
	return []string{
		b.Title,
		strconv.FormatFloat(b.Price, 'f', 2, 64),
		b.PriceText,
		b.RatingText,
		strconv.Itoa(b.RatingNumeric),
		b.Availability,
		b.URL,
	}
}

// Category is one entry of the catalogue side navigation.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
