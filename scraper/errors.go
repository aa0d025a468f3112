package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// NetworkError indicates a transport-level failure: timeout, DNS,
// refused or reset connection.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline or timeout.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// HTTPError indicates a response with a status other than 200.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.URL)
}

// classifyError maps a transport error and status code onto the error
// taxonomy. A zero status means no response was received.
func classifyError(rawURL string, err error, statusCode int) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if statusCode != 0 && statusCode != http.StatusOK {
		return &HTTPError{URL: rawURL, StatusCode: statusCode}
	}
	if err == nil {
		return nil
	}
	return &NetworkError{URL: rawURL, Err: err}
}

// ErrorLabel returns the metrics label for err.
func ErrorLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		var opErr *net.OpError
		if errors.As(netErr.Err, &opErr) {
			return "connection"
		}
		return "network"
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusForbidden:
			return "forbidden"
		case http.StatusNotFound:
			return "not_found"
		case http.StatusTooManyRequests:
			return "rate_limited"
		}
		if httpErr.StatusCode >= http.StatusInternalServerError {
			return "server_error"
		}
		return "http_status"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "other"
}
