package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-toscrape/config"
)

// CollyFetcher drives a synchronous colly collector. Each request runs on a
// clone of the base collector so callbacks never leak between requests
// while the HTTP backend and its cookie jar stay shared.
type CollyFetcher struct {
	collector *colly.Collector
	headers   map[string]string
	metrics   *Metrics
}

// NewCollyFetcher builds a collector configured from cfg.
func NewCollyFetcher(cfg *config.Config, metrics *Metrics) (*CollyFetcher, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &CollyFetcher{
		collector: collector,
		headers:   headers,
		metrics:   metrics,
	}, nil
}

// WithTransport replaces the HTTP transport, keeping the cookie jar.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Get implements Fetcher.
func (f *CollyFetcher) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Page, error) {
	return f.do(ctx, http.MethodGet, rawURL, nil, buildOptions(opts))
}

// PostForm implements Fetcher.
func (f *CollyFetcher) PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) (*Page, error) {
	return f.do(ctx, http.MethodPost, rawURL, form, buildOptions(opts))
}

func (f *CollyFetcher) do(ctx context.Context, method, rawURL string, form url.Values, o requestOptions) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.collector.Clone()

	var (
		page   *Page
		status int
	)
	c.OnRequest(func(r *colly.Request) {
		for k, v := range f.headers {
			r.Headers.Set(k, v)
		}
		for k, v := range o.headers {
			r.Headers.Set(k, v)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        r.Request.URL,
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	start := time.Now()
	f.metrics.IncRequest(method, "started")

	var err error
	if method == http.MethodPost {
		err = c.Post(rawURL, flattenForm(form))
	} else {
		err = c.Visit(rawURL)
	}
	return complete(f.metrics, method, rawURL, start, page, status, err)
}
