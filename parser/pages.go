package parser

import (
	"log/slog"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-toscrape/models"
)

// QuoteSchema matches quote blocks on quotes.toscrape.com. The search
// results page renders text and author in span.content / span.author.
var QuoteSchema = Schema{
	Containers: []string{"div.quote", "div[itemtype='http://schema.org/CreativeWork']"},
	Fields: []Field{
		{Name: "text", Selectors: []string{"span.text", "span.content"}},
		{Name: "author", Selectors: []string{"small.author", "span.author"}},
		{Name: "tags", Selectors: []string{"a.tag"}, Multiple: true},
	},
}

// BookSchema matches product pods on books.toscrape.com listing pages.
var BookSchema = Schema{
	Containers: []string{"article.product_pod", "ol.row li article"},
	Fields: []Field{
		{Name: "title", Selectors: []string{"h3 a", "xpath:.//h3/a"}, Attr: "title"},
		{Name: "price", Selectors: []string{"p.price_color", "xpath:.//p[contains(@class, 'price')]"}},
		{Name: "rating", Selectors: []string{"p.star-rating"}, Attr: "class"},
		{Name: "availability", Selectors: []string{"p.instock.availability", "p.availability"}},
		{Name: "url", Selectors: []string{"h3 a"}, Attr: "href"},
	},
}

// CategorySchema matches the side navigation of books.toscrape.com.
var CategorySchema = Schema{
	Containers: []string{"div.side_categories a"},
	Fields: []Field{
		{Name: "name", Selectors: []string{Self}},
		{Name: "url", Selectors: []string{Self}, Attr: "href"},
	},
}

// Quotes extracts every quote block of the page.
func Quotes(doc *goquery.Document) []models.Quote {
	records := QuoteSchema.Parse(doc)
	quotes := make([]models.Quote, 0, len(records))
	for _, rec := range records {
		quotes = append(quotes, models.Quote{
			Text:   rec.Ptr("text"),
			Author: rec.Ptr("author"),
			Tags:   rec.List("tags"),
		})
	}
	return quotes
}

// Books extracts every product of the page. Links are resolved against
// base. An unparseable price becomes 0 and is logged.
func Books(doc *goquery.Document, base *url.URL) []models.Book {
	records := BookSchema.Parse(doc)
	books := make([]models.Book, 0, len(records))
	for _, rec := range records {
		title, _ := rec.Value("title")
		priceText, _ := rec.Value("price")
		price, err := NormalizePrice(priceText)
		if err != nil {
			slog.Warn("could not convert price",
				slog.String("price", priceText),
				slog.String("title", title),
				slog.Any("error", err),
			)
			price = 0
		}
		ratingClass, _ := rec.Value("rating")
		rating := RatingFromClass(ratingClass)
		availability, _ := rec.Value("availability")

		book := models.Book{
			Title:         title,
			Price:         price,
			PriceText:     priceText,
			RatingText:    rating,
			RatingNumeric: RatingToNumeric(rating),
			Availability:  NormalizeAvailability(availability),
		}
		if href, ok := rec.Value("url"); ok {
			book.URL = Resolve(base, href)
		}
		books = append(books, book)
	}
	return books
}

// Categories extracts the category links in navigation order. A repeated
// name keeps its first position and takes the later link.
func Categories(doc *goquery.Document, base *url.URL) []models.Category {
	records := CategorySchema.Parse(doc)
	out := make([]models.Category, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		name, _ := rec.Value("name")
		name = CleanText(name)
		href, _ := rec.Value("url")
		link := Resolve(base, href)
		if i, ok := index[name]; ok {
			out[i].URL = link
			continue
		}
		index[name] = len(out)
		out = append(out, models.Category{Name: name, URL: link})
	}
	return out
}

// Resolve turns href into an absolute URL relative to base. Unparseable
// hrefs are returned unchanged.
func Resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
