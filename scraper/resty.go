package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aluiziolira/go-toscrape/config"
)

// RestyFetcher is the resty-backed alternative to CollyFetcher.
type RestyFetcher struct {
	client  *resty.Client
	metrics *Metrics
}

// NewRestyFetcher builds a resty client with a cookie jar and the fixed
// header set from cfg.
func NewRestyFetcher(cfg *config.Config, metrics *Metrics) (*RestyFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetCookieJar(jar)
	client.SetHeaders(cfg.Headers)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &RestyFetcher{client: client, metrics: metrics}, nil
}

// WithTransport replaces the HTTP transport, keeping the cookie jar.
func (f *RestyFetcher) WithTransport(rt http.RoundTripper) {
	f.client.SetTransport(rt)
}

// Get implements Fetcher.
func (f *RestyFetcher) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Page, error) {
	return f.do(ctx, http.MethodGet, rawURL, nil, buildOptions(opts))
}

// PostForm implements Fetcher.
func (f *RestyFetcher) PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) (*Page, error) {
	return f.do(ctx, http.MethodPost, rawURL, form, buildOptions(opts))
}

func (f *RestyFetcher) do(ctx context.Context, method, rawURL string, form url.Values, o requestOptions) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := f.client.R().
		SetContext(ctx).
		SetHeaders(o.headers)

	start := time.Now()
	f.metrics.IncRequest(method, "started")

	var (
		res *resty.Response
		err error
	)
	if method == http.MethodPost {
		res, err = req.SetFormDataFromValues(form).Post(rawURL)
	} else {
		res, err = req.Get(rawURL)
	}
	if err != nil {
		return complete(f.metrics, method, rawURL, start, nil, 0, err)
	}

	final, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		return complete(f.metrics, method, rawURL, start, nil, 0, parseErr)
	}
	if raw := res.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL
	}

	page := &Page{
		URL:        final,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}
	return complete(f.metrics, method, rawURL, start, page, 0, nil)
}
