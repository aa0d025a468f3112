package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatError reports a price that could not be read as a decimal number.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format: cannot parse price %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("format: cannot parse price %q", e.Raw)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// NormalizePrice strips the currency glyph, surrounding whitespace and any
// non-ASCII bytes, then parses the remainder as a decimal number.
func NormalizePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(asciiOnly(raw))
	cleaned = strings.TrimLeft(cleaned, "$")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, &FormatError{Raw: raw}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &FormatError{Raw: raw, Err: err}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &FormatError{Raw: raw}
	}
	return value, nil
}

// NormalizeAvailability collapses the whitespace in the availability text.
func NormalizeAvailability(text string) string {
	return CleanText(text)
}

// CleanText collapses runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// RatingToNumeric converts the textual rating to a numeric scale.
func RatingToNumeric(rating string) int {
	switch strings.TrimSpace(rating) {
	case "One":
		return 1
	case "Two":
		return 2
	case "Three":
		return 3
	case "Four":
		return 4
	case "Five":
		return 5
	default:
		return 0
	}
}

// RatingFromClass reads the rating word from a class list such as
// "star-rating Three".
func RatingFromClass(class string) string {
	for _, part := range strings.Fields(class) {
		if part != "star-rating" {
			return part
		}
	}
	return ""
}

func asciiOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] < 0x80 {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
