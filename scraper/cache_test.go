package scraper

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-toscrape/config"
)

func newCachedFetcher(t *testing.T, transport http.RoundTripper) (*CachingFetcher, *Metrics) {
	t.Helper()
	cfg := config.DefaultConfig()
	metrics := NewMetrics()

	base, err := NewRestyFetcher(cfg, metrics)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	base.WithTransport(transport)

	cached, err := NewCachingFetcher(base, 2, metrics)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return cached, metrics
}

func TestCachingFetcherServesRepeatedGets(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/page/1/", httpmock.NewStringResponder(http.StatusOK, "one"))

	f, _ := newCachedFetcher(t, transport)
	for i := 0; i < 3; i++ {
		page, err := f.Get(context.Background(), "http://example.test/page/1/")
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if string(page.Body) != "one" {
			t.Fatalf("body = %q", page.Body)
		}
	}

	if got := transport.GetTotalCallCount(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	if f.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", f.Len())
	}
}

func TestCachingFetcherBypass(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/random", httpmock.NewStringResponder(http.StatusOK, "quote"))

	f, _ := newCachedFetcher(t, transport)
	for i := 0; i < 2; i++ {
		if _, err := f.Get(context.Background(), "http://example.test/random", WithoutCache()); err != nil {
			t.Fatalf("get: %v", err)
		}
	}

	if got := transport.GetTotalCallCount(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
	if f.Len() != 0 {
		t.Fatalf("cache len = %d, want 0", f.Len())
	}
}

func TestCachingFetcherDoesNotCacheFailures(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/broken", httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))

	f, _ := newCachedFetcher(t, transport)
	for i := 0; i < 2; i++ {
		if _, err := f.Get(context.Background(), "http://example.test/broken"); err == nil {
			t.Fatal("expected error")
		}
	}
	if got := transport.GetTotalCallCount(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestCachingFetcherPostPurges(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "http://example.test/login", httpmock.NewStringResponder(http.StatusOK, "form"))
	transport.RegisterResponder("POST", "http://example.test/login", httpmock.NewStringResponder(http.StatusOK, "Logout"))

	f, _ := newCachedFetcher(t, transport)
	if _, err := f.Get(context.Background(), "http://example.test/login"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := f.PostForm(context.Background(), "http://example.test/login", url.Values{"username": {"a"}}); err != nil {
		t.Fatalf("post: %v", err)
	}
	if f.Len() != 0 {
		t.Fatalf("cache len = %d after post, want 0", f.Len())
	}
}

func TestNewSelectsTransport(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.CacheSize = 0
	cfg.Transport = "resty"
	f, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := f.(*RestyFetcher); !ok {
		t.Fatalf("fetcher = %T, want *RestyFetcher", f)
	}

	cfg.Transport = "colly"
	cfg.CacheSize = 4
	f, err = New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := f.(*CachingFetcher); !ok {
		t.Fatalf("fetcher = %T, want *CachingFetcher", f)
	}

	cfg.Transport = "curl"
	if _, err := New(cfg, nil); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}
