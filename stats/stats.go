// Package stats computes the console summaries printed after a scrape.
package stats

import (
	"math"
	"strings"

	"github.com/aluiziolira/go-toscrape/models"
)

// Summary aggregates a list of records. AveragePrice is set only for
// records carrying a price and MostFrequentTag only when at least one tag
// was seen.
type Summary struct {
	Count           int
	AveragePrice    *float64
	MostFrequentTag *string
	TagCount        int
}

// Summarize computes the summary of records. The average price is rounded
// to two decimals and is 0 for an empty list. Ties between tags go to the
// tag encountered first.
func Summarize[T any](records []T) Summary {
	s := Summary{Count: len(records)}

	var zero T
	if _, ok := any(zero).(models.Priced); ok {
		avg := averagePrice(records)
		s.AveragePrice = &avg
	}
	if _, ok := any(zero).(models.Tagged); ok {
		if tag, n, ok := mostFrequentTag(records); ok {
			s.MostFrequentTag = &tag
			s.TagCount = n
		}
	}
	return s
}

func averagePrice[T any](records []T) float64 {
	if len(records) == 0 {
		return 0
	}
	var total float64
	for _, r := range records {
		total += any(r).(models.Priced).PriceValue()
	}
	return math.Round(total/float64(len(records))*100) / 100
}

func mostFrequentTag[T any](records []T) (string, int, bool) {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		for _, tag := range any(r).(models.Tagged).TagList() {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	if len(order) == 0 {
		return "", 0, false
	}

	best := order[0]
	for _, tag := range order[1:] {
		if counts[tag] > counts[best] {
			best = tag
		}
	}
	return best, counts[best], true
}

// MatchQuotes keeps the quotes written by author whose text contains
// keyword, ignoring case. Quotes without text never match.
func MatchQuotes(quotes []models.Quote, author, keyword string) []models.Quote {
	keyword = strings.ToLower(keyword)
	out := []models.Quote{}
	for _, q := range quotes {
		if q.Text == nil || q.AuthorOrEmpty() != author {
			continue
		}
		if strings.Contains(strings.ToLower(*q.Text), keyword) {
			out = append(out, q)
		}
	}
	return out
}
