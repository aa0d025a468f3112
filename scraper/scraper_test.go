package scraper

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-toscrape/config"
)

type testFetcher interface {
	Fetcher
	WithTransport(rt http.RoundTripper)
}

func newTestFetchers(t *testing.T) map[string]func(*httpmock.MockTransport) Fetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timeout = 5 * time.Second

	build := func(f testFetcher, err error) func(*httpmock.MockTransport) Fetcher {
		if err != nil {
			t.Fatalf("new fetcher: %v", err)
		}
		return func(transport *httpmock.MockTransport) Fetcher {
			f.WithTransport(transport)
			return f
		}
	}

	return map[string]func(*httpmock.MockTransport) Fetcher{
		"colly": build(NewCollyFetcher(cfg, NewMetrics())),
		"resty": build(NewRestyFetcher(cfg, NewMetrics())),
	}
}

func TestFetcherGetSendsFixedHeaders(t *testing.T) {
	for name, newFetcher := range newTestFetchers(t) {
		t.Run(name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", "http://example.test/page", func(req *http.Request) (*http.Response, error) {
				if got := req.Header.Get("Accept-Language"); got != "en-US,en;q=0.9" {
					return httpmock.NewStringResponse(http.StatusBadRequest, "missing accept-language: "+got), nil
				}
				if req.Header.Get("User-Agent") == "" {
					return httpmock.NewStringResponse(http.StatusBadRequest, "missing user agent"), nil
				}
				if got := req.Header.Get("Referer"); got != "http://example.test/" {
					return httpmock.NewStringResponse(http.StatusBadRequest, "missing referer: "+got), nil
				}
				return httpmock.NewStringResponse(http.StatusOK, "<html>ok</html>"), nil
			})

			f := newFetcher(transport)
			page, err := f.Get(context.Background(), "http://example.test/page", WithHeader("Referer", "http://example.test/"))
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(page.Body) != "<html>ok</html>" {
				t.Fatalf("body = %q", page.Body)
			}
			if page.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", page.StatusCode)
			}
			if page.URL.String() != "http://example.test/page" {
				t.Fatalf("url = %s", page.URL)
			}
		})
	}
}

func TestFetcherHTTPError(t *testing.T) {
	for name, newFetcher := range newTestFetchers(t) {
		t.Run(name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", "http://example.test/broken", httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

			_, err := newFetcher(transport).Get(context.Background(), "http://example.test/broken")
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("error = %v, want HTTPError", err)
			}
			if httpErr.StatusCode != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", httpErr.StatusCode)
			}
			if got := ErrorLabel(err); got != "server_error" {
				t.Fatalf("label = %q, want server_error", got)
			}
		})
	}
}

func TestFetcherNetworkError(t *testing.T) {
	for name, newFetcher := range newTestFetchers(t) {
		t.Run(name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
			transport.RegisterResponder("GET", "http://example.test/down", httpmock.NewErrorResponder(refused))

			_, err := newFetcher(transport).Get(context.Background(), "http://example.test/down")
			var netErr *NetworkError
			if !errors.As(err, &netErr) {
				t.Fatalf("error = %v, want NetworkError", err)
			}
			if got := ErrorLabel(err); got != "connection" {
				t.Fatalf("label = %q, want connection", got)
			}
		})
	}
}

func TestFetcherKeepsCookies(t *testing.T) {
	for name, newFetcher := range newTestFetchers(t) {
		t.Run(name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", "http://example.test/set", func(req *http.Request) (*http.Response, error) {
				resp := httpmock.NewStringResponse(http.StatusOK, "set")
				resp.Header.Set("Set-Cookie", "session=abc; Path=/")
				return resp, nil
			})
			transport.RegisterResponder("GET", "http://example.test/check", func(req *http.Request) (*http.Response, error) {
				cookie, err := req.Cookie("session")
				if err != nil || cookie.Value != "abc" {
					return httpmock.NewStringResponse(http.StatusForbidden, "no session"), nil
				}
				return httpmock.NewStringResponse(http.StatusOK, "welcome"), nil
			})

			f := newFetcher(transport)
			if _, err := f.Get(context.Background(), "http://example.test/set"); err != nil {
				t.Fatalf("set: %v", err)
			}
			page, err := f.Get(context.Background(), "http://example.test/check")
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if string(page.Body) != "welcome" {
				t.Fatalf("body = %q", page.Body)
			}
		})
	}
}

func TestFetcherPostForm(t *testing.T) {
	for name, newFetcher := range newTestFetchers(t) {
		t.Run(name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("POST", "http://example.test/login", func(req *http.Request) (*http.Response, error) {
				if err := req.ParseForm(); err != nil {
					return nil, err
				}
				if req.PostForm.Get("username") != "alice" || req.PostForm.Get("csrf_token") != "tok" {
					return httpmock.NewStringResponse(http.StatusBadRequest, "bad form"), nil
				}
				return httpmock.NewStringResponse(http.StatusOK, "Logout"), nil
			})

			form := url.Values{"username": {"alice"}, "csrf_token": {"tok"}}
			page, err := newFetcher(transport).PostForm(context.Background(), "http://example.test/login", form)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			if string(page.Body) != "Logout" {
				t.Fatalf("body = %q", page.Body)
			}
		})
	}
}

func TestFetcherCanceledContext(t *testing.T) {
	for name, newFetcher := range newTestFetchers(t) {
		t.Run(name, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := newFetcher(transport).Get(ctx, "http://example.test/page"); !errors.Is(err, context.Canceled) {
				t.Fatalf("error = %v, want context.Canceled", err)
			}
			if got := transport.GetTotalCallCount(); got != 0 {
				t.Fatalf("calls = %d, want 0", got)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "example.test"}, statusCode: 0, expected: "network"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: errors.New("Internal Server Error"), statusCode: http.StatusInternalServerError, expected: "server_error"},
		{name: "no content", err: nil, statusCode: http.StatusNoContent, expected: "http_status"},
		{name: "canceled", err: context.Canceled, statusCode: 0, expected: "canceled"},
		{name: "ok", err: nil, statusCode: http.StatusOK, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorLabel(classifyError("http://example.test/", tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}
