// Package crawl implements the multi-request tasks on top of a
// scraper.Fetcher: paginated extraction, login, the search form, category
// enumeration and unique sampling.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-toscrape/config"
	"github.com/aluiziolira/go-toscrape/parser"
	"github.com/aluiziolira/go-toscrape/scraper"
)

// StopReason tells why a traversal ended.
type StopReason string

const (
	StopNoNextPage  StopReason = "no_next_page"
	StopEmptyPage   StopReason = "empty_page"
	StopFetchFailed StopReason = "fetch_failed"
	StopParseFailed StopReason = "parse_failed"
	StopMaxPages    StopReason = "max_pages"
	StopCanceled    StopReason = "canceled"
)

// FetchFunc loads one page.
type FetchFunc func(ctx context.Context, rawURL string) (*scraper.Page, error)

// ParseFunc extracts the records of one page. pageURL is the URL the page
// was served from.
type ParseFunc[T any] func(doc *goquery.Document, pageURL *url.URL) []T

// NextFunc returns the raw href of the next page, if any.
type NextFunc func(doc *goquery.Document) (string, bool)

// Options controls a paginated traversal.
type Options struct {
	// StopOnEmptyPage ends the traversal at the first page without records.
	// When false such pages are skipped and the next link is still followed.
	StopOnEmptyPage bool
	// MaxPages caps the number of fetched pages. Zero means unlimited.
	MaxPages int
	// Delay is slept between two page fetches.
	Delay time.Duration
}

// OptionsFrom converts a pagination config section.
func OptionsFrom(p config.PaginationConfig) Options {
	return Options{
		StopOnEmptyPage: p.StopOnEmptyPage,
		MaxPages:        p.MaxPages,
		Delay:           p.Delay,
	}
}

// Result is the outcome of ExtractAll. Records hold everything collected
// before the traversal stopped, including when Err is set.
type Result[T any] struct {
	Records []T
	Pages   int
	Reason  StopReason
	Err     error
}

// Fetch adapts a Fetcher to a FetchFunc.
func Fetch(f scraper.Fetcher, opts ...scraper.RequestOption) FetchFunc {
	return func(ctx context.Context, rawURL string) (*scraper.Page, error) {
		return f.Get(ctx, rawURL, opts...)
	}
}

// NextLink finds the pagination "next" control.
func NextLink(doc *goquery.Document) (string, bool) {
	return parser.Find(doc, parser.NextPage)
}

// ExtractAll walks a paginated listing from startURL, following next links
// until none is left, and returns the records in page order. A fetch or
// parse failure ends the walk; the records gathered so far are kept and the
// failure is reported in the result.
func ExtractAll[T any](ctx context.Context, startURL string, fetch FetchFunc, parse ParseFunc[T], next NextFunc, opts Options) *Result[T] {
	if next == nil {
		next = NextLink
	}
	res := &Result[T]{Records: []T{}}
	cursor := startURL

	for {
		if opts.MaxPages > 0 && res.Pages >= opts.MaxPages {
			res.Reason = StopMaxPages
			return res
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				res.Reason = StopCanceled
				res.Err = err
				return res
			}
			slog.Error("failed to retrieve page",
				slog.String("url", cursor),
				slog.Int("page", res.Pages+1),
				slog.String("category", scraper.ErrorLabel(err)),
				slog.Any("error", err),
			)
			res.Reason = StopFetchFailed
			res.Err = err
			return res
		}
		res.Pages++

		doc, err := parser.NewDocument(page.Body)
		if err != nil {
			slog.Error("failed to parse page", slog.String("url", cursor), slog.Any("error", err))
			res.Reason = StopParseFailed
			res.Err = fmt.Errorf("parse %s: %w", cursor, err)
			return res
		}

		base := page.URL
		if u, err := url.Parse(cursor); err == nil {
			base = u
		}
		records := parse(doc, base)
		slog.Info("scraped page",
			slog.Int("page", res.Pages),
			slog.String("url", cursor),
			slog.Int("records", len(records)),
		)
		if len(records) == 0 && opts.StopOnEmptyPage {
			res.Reason = StopEmptyPage
			return res
		}
		res.Records = append(res.Records, records...)

		href, ok := next(doc)
		if !ok {
			res.Reason = StopNoNextPage
			return res
		}
		cursor = parser.Resolve(base, href)

		if err := sleep(ctx, opts.Delay); err != nil {
			res.Reason = StopCanceled
			res.Err = err
			return res
		}
	}
}

// CountPages follows next links from startURL and returns how many pages
// were fetched. The error is the failure that ended the walk early, if any.
func CountPages(ctx context.Context, startURL string, fetch FetchFunc, delay time.Duration) (int, error) {
	res := ExtractAll(ctx, startURL, fetch, func(*goquery.Document, *url.URL) []struct{} {
		return nil
	}, nil, Options{Delay: delay})
	return res.Pages, res.Err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
