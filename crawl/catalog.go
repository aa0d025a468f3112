package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-toscrape/models"
	"github.com/aluiziolira/go-toscrape/parser"
)

// QuotePage is a ParseFunc for quote listings.
func QuotePage(doc *goquery.Document, _ *url.URL) []models.Quote {
	return parser.Quotes(doc)
}

// BookPage is a ParseFunc for book listings.
func BookPage(doc *goquery.Document, pageURL *url.URL) []models.Book {
	return parser.Books(doc, pageURL)
}

// Categories reads the category navigation of the bookstore home page.
// Names listed in skip are left out, ignoring case.
func Categories(ctx context.Context, fetch FetchFunc, booksURL string, skip []string) ([]models.Category, error) {
	page, err := fetch(ctx, booksURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category list: %w", err)
	}
	doc, err := parser.NewDocument(page.Body)
	if err != nil {
		return nil, fmt.Errorf("parse category list: %w", err)
	}

	base, err := url.Parse(booksURL)
	if err != nil {
		base = page.URL
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		skipped[strings.ToLower(name)] = struct{}{}
	}

	all := parser.Categories(doc, base)
	out := make([]models.Category, 0, len(all))
	for _, c := range all {
		if _, ok := skipped[strings.ToLower(c.Name)]; ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
