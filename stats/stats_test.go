package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-toscrape/models"
)

func TestSummarizeBooks(t *testing.T) {
	books := []models.Book{
		{Title: "a", Price: 10.00},
		{Title: "b", Price: 20.50},
		{Title: "c", Price: 0},
	}

	s := Summarize(books)

	require.Equal(t, 3, s.Count)
	require.NotNil(t, s.AveragePrice)
	require.InDelta(t, 10.17, *s.AveragePrice, 1e-9)
	require.Nil(t, s.MostFrequentTag)
}

func TestSummarizeEmptyBooks(t *testing.T) {
	s := Summarize([]models.Book{})

	require.Equal(t, 0, s.Count)
	require.NotNil(t, s.AveragePrice)
	require.Equal(t, 0.0, *s.AveragePrice)
}

func TestSummarizeMostFrequentTag(t *testing.T) {
	tests := []struct {
		name     string
		quotes   []models.Quote
		expected string
		count    int
	}{
		{
			name: "clear winner",
			quotes: []models.Quote{
				models.NewQuote("a", "x", "music", "love"),
				models.NewQuote("b", "x", "music"),
			},
			expected: "music",
			count:    2,
		},
		{
			name: "tie goes to first seen",
			quotes: []models.Quote{
				models.NewQuote("a", "x", "love"),
				models.NewQuote("b", "x", "music"),
				models.NewQuote("c", "x", "music", "love"),
			},
			expected: "love",
			count:    2,
		},
		{
			name: "later tag overtakes",
			quotes: []models.Quote{
				models.NewQuote("a", "x", "love"),
				models.NewQuote("b", "x", "life"),
				models.NewQuote("c", "x", "life"),
			},
			expected: "life",
			count:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.quotes)
			require.Equal(t, len(tt.quotes), s.Count)
			require.Nil(t, s.AveragePrice)
			require.NotNil(t, s.MostFrequentTag)
			require.Equal(t, tt.expected, *s.MostFrequentTag)
			require.Equal(t, tt.count, s.TagCount)
		})
	}
}

func TestSummarizeNoTags(t *testing.T) {
	s := Summarize([]models.Quote{models.NewQuote("a", "x")})

	require.Equal(t, 1, s.Count)
	require.Nil(t, s.MostFrequentTag)
}

func TestMatchQuotes(t *testing.T) {
	quotes := []models.Quote{
		models.NewQuote("Without MUSIC life would be a mistake", "Albert Einstein"),
		models.NewQuote("Music is the answer", "Someone Else"),
		models.NewQuote("Imagination is more important", "Albert Einstein"),
		{Author: nil, Tags: []string{}},
	}

	got := MatchQuotes(quotes, "Albert Einstein", "music")

	require.Len(t, got, 1)
	require.Equal(t, "Without MUSIC life would be a mistake", got[0].TextOrEmpty())
	require.Empty(t, MatchQuotes(nil, "Albert Einstein", "music"))
}
