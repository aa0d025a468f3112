package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-toscrape/models"
	"github.com/aluiziolira/go-toscrape/parser"
	"github.com/aluiziolira/go-toscrape/scraper"
)

// SampleReason tells why CollectUnique stopped.
type SampleReason string

const (
	SampleTargetReached     SampleReason = "target_reached"
	SampleAttemptsExhausted SampleReason = "attempts_exhausted"
	SampleCanceled          SampleReason = "canceled"
)

// ErrNoRecord is returned by a fetch-one function whose page held nothing
// usable.
var ErrNoRecord = errors.New("no record on page")

// SampleResult holds the unique records in first-seen order.
type SampleResult[T any] struct {
	Records  []T
	Attempts int
	Reason   SampleReason
}

// CollectUnique calls fetchOne until target distinct records (by key) are
// held or maxAttempts calls were made. Failed calls count as attempts.
// Records with an empty key are discarded.
func CollectUnique[T any](ctx context.Context, fetchOne func(context.Context) (T, error), key func(T) string, target, maxAttempts int, delay time.Duration) *SampleResult[T] {
	res := &SampleResult[T]{Records: []T{}}
	seen := make(map[string]struct{}, target)

	for {
		if len(res.Records) >= target {
			res.Reason = SampleTargetReached
			return res
		}
		if res.Attempts >= maxAttempts {
			res.Reason = SampleAttemptsExhausted
			return res
		}
		if ctx.Err() != nil {
			res.Reason = SampleCanceled
			return res
		}

		res.Attempts++
		rec, err := fetchOne(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				res.Reason = SampleCanceled
				return res
			}
			slog.Warn("sample attempt failed",
				slog.Int("attempt", res.Attempts),
				slog.Any("error", err),
			)
		default:
			k := key(rec)
			if k == "" {
				break
			}
			if _, dup := seen[k]; dup {
				break
			}
			seen[k] = struct{}{}
			res.Records = append(res.Records, rec)
			slog.Info("collected sample",
				slog.Int("collected", len(res.Records)),
				slog.Int("target", target),
				slog.Int("attempt", res.Attempts),
			)
		}

		if len(res.Records) >= target {
			continue
		}
		if err := sleep(ctx, delay); err != nil {
			res.Reason = SampleCanceled
			return res
		}
	}
}

// RandomQuote returns a fetch-one function reading the first quote of the
// random quote page. The page is never served from cache.
func RandomQuote(f scraper.Fetcher, randomURL string) func(context.Context) (models.Quote, error) {
	return func(ctx context.Context) (models.Quote, error) {
		page, err := f.Get(ctx, randomURL, scraper.WithoutCache())
		if err != nil {
			return models.Quote{}, err
		}
		doc, err := parser.NewDocument(page.Body)
		if err != nil {
			return models.Quote{}, err
		}
		quotes := parser.Quotes(doc)
		if len(quotes) == 0 || quotes[0].Text == nil {
			return models.Quote{}, ErrNoRecord
		}
		return quotes[0], nil
	}
}
