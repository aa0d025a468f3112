// Package scraper owns the HTTP session used by every task: a fixed header
// set, a uniform timeout, a cookie jar, error classification, metrics and an
// optional page cache.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aluiziolira/go-toscrape/config"
)

// Page is one fetched HTML document.
type Page struct {
	URL        *url.URL
	StatusCode int
	Body       []byte
}

// Fetcher performs requests on a single HTTP session. Cookies set by one
// response are sent with every later request.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Page, error)
	PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) (*Page, error)
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers map[string]string
	noCache bool
}

// WithHeader sets an extra header on the request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithoutCache bypasses the page cache, for endpoints whose content changes
// on every request.
func WithoutCache() RequestOption {
	return func(o *requestOptions) {
		o.noCache = true
	}
}

func buildOptions(opts []RequestOption) requestOptions {
	var o requestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// New builds the fetcher selected by cfg.Transport, wrapped in a page cache
// when cfg.CacheSize is positive.
func New(cfg *config.Config, metrics *Metrics) (Fetcher, error) {
	var (
		base Fetcher
		err  error
	)
	switch cfg.Transport {
	case "", "colly":
		base, err = NewCollyFetcher(cfg, metrics)
	case "resty":
		base, err = NewRestyFetcher(cfg, metrics)
	default:
		return nil, fmt.Errorf("unsupported transport: %s", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}
	if cfg.CacheSize <= 0 {
		return base, nil
	}
	cached, err := NewCachingFetcher(base, cfg.CacheSize, metrics)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// complete classifies the outcome of one request and records it.
func complete(m *Metrics, method, rawURL string, start time.Time, page *Page, status int, err error) (*Page, error) {
	m.ObserveDuration(time.Since(start))

	if page != nil {
		status = page.StatusCode
	}
	if classified := classifyError(rawURL, err, status); classified != nil {
		label := ErrorLabel(classified)
		m.IncRequest(method, "failed")
		m.IncError(label)
		slog.Debug("request failed",
			slog.String("method", method),
			slog.String("url", rawURL),
			slog.String("category", label),
			slog.Any("error", classified),
		)
		return nil, classified
	}
	if page == nil {
		m.IncRequest(method, "failed")
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("no response received")}
	}

	m.IncRequest(method, "succeeded")
	slog.Debug("request succeeded",
		slog.String("method", method),
		slog.String("url", rawURL),
		slog.Int("status", page.StatusCode),
		slog.Int("bytes", len(page.Body)),
	)
	return page, nil
}

func flattenForm(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for key := range form {
		out[key] = form.Get(key)
	}
	return out
}
