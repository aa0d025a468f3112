package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingFetcher keeps the most recent successful GET pages in memory so a
// second walk over the same listing (page counting, then extraction) does
// not hit the site again. Any POST purges the cache, since a login or form
// submission can change what later pages render.
type CachingFetcher struct {
	next    Fetcher
	cache   *lru.Cache[string, *Page]
	metrics *Metrics
}

// NewCachingFetcher wraps next with an LRU cache holding up to size pages.
func NewCachingFetcher(next Fetcher, size int, metrics *Metrics) (*CachingFetcher, error) {
	cache, err := lru.New[string, *Page](size)
	if err != nil {
		return nil, fmt.Errorf("create page cache: %w", err)
	}
	return &CachingFetcher{next: next, cache: cache, metrics: metrics}, nil
}

// Get implements Fetcher.
func (f *CachingFetcher) Get(ctx context.Context, rawURL string, opts ...RequestOption) (*Page, error) {
	if buildOptions(opts).noCache {
		return f.next.Get(ctx, rawURL, opts...)
	}
	if page, ok := f.cache.Get(rawURL); ok {
		f.metrics.IncCacheHit()
		slog.Debug("page cache hit", slog.String("url", rawURL))
		return page, nil
	}

	page, err := f.next.Get(ctx, rawURL, opts...)
	if err != nil {
		return nil, err
	}
	f.cache.Add(rawURL, page)
	return page, nil
}

// PostForm implements Fetcher.
func (f *CachingFetcher) PostForm(ctx context.Context, rawURL string, form url.Values, opts ...RequestOption) (*Page, error) {
	f.cache.Purge()
	return f.next.PostForm(ctx, rawURL, form, opts...)
}

// Len returns the number of cached pages.
func (f *CachingFetcher) Len() int {
	return f.cache.Len()
}
