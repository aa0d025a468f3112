package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/aluiziolira/go-toscrape/config"
	"github.com/aluiziolira/go-toscrape/models"
	"github.com/aluiziolira/go-toscrape/parser"
	"github.com/aluiziolira/go-toscrape/scraper"
)

// Search submits the author/tag filter form of the quotes site and returns
// the quotes of the result page.
func Search(ctx context.Context, f scraper.Fetcher, siteURL string, cfg config.SearchConfig) ([]models.Quote, error) {
	searchURL, err := resolvePath(siteURL, cfg.SearchPath)
	if err != nil {
		return nil, fmt.Errorf("resolve search page: %w", err)
	}
	filterURL, err := resolvePath(siteURL, cfg.FilterPath)
	if err != nil {
		return nil, fmt.Errorf("resolve filter page: %w", err)
	}

	token, err := formToken(ctx, f, searchURL, cfg.TokenField)
	if err != nil {
		return nil, &AuthError{Op: "read search form", URL: searchURL, Err: err}
	}

	form := url.Values{
		"author":        {cfg.Author},
		"tag":           {cfg.Tag},
		"submit_button": {"Search"},
		cfg.TokenField:  {token},
	}
	page, err := f.PostForm(ctx, filterURL, form, scraper.WithHeader("Referer", searchURL))
	if err != nil {
		return nil, fmt.Errorf("submit search form: %w", err)
	}

	doc, err := parser.NewDocument(page.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}
	quotes := parser.Quotes(doc)
	slog.Info("search returned quotes",
		slog.String("author", cfg.Author),
		slog.String("tag", cfg.Tag),
		slog.Int("quotes", len(quotes)),
	)
	return quotes, nil
}
