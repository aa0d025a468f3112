package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aluiziolira/go-toscrape/config"
	"github.com/aluiziolira/go-toscrape/parser"
	"github.com/aluiziolira/go-toscrape/scraper"
)

var (
	// ErrTokenMissing means the form page carried no anti-forgery token.
	ErrTokenMissing = errors.New("anti-forgery token missing")
	// ErrInvalidCredentials means the login response lacked the post-login marker.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthError reports a failed form bootstrap. It aborts the run.
type AuthError struct {
	Op  string
	URL string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Session is an authenticated Fetcher. It shares the cookie jar of the
// Fetcher it was created from.
type Session struct {
	scraper.Fetcher
	Username string
}

// Login submits the login form of the quotes site found under siteURL.
func Login(ctx context.Context, f scraper.Fetcher, siteURL string, cfg config.LoginConfig) (*Session, error) {
	loginURL, err := resolvePath(siteURL, cfg.Path)
	if err != nil {
		return nil, &AuthError{Op: "resolve login page", URL: siteURL, Err: err}
	}

	token, err := formToken(ctx, f, loginURL, cfg.TokenField)
	if err != nil {
		return nil, &AuthError{Op: "read login form", URL: loginURL, Err: err}
	}

	form := url.Values{
		cfg.TokenField: {token},
		"username":     {cfg.Username},
		"password":     {cfg.Password},
	}
	page, err := f.PostForm(ctx, loginURL, form, scraper.WithHeader("Referer", loginURL))
	if err != nil {
		var httpErr *scraper.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &AuthError{Op: "submit login form", URL: loginURL, Err: fmt.Errorf("%w: %v", ErrInvalidCredentials, err)}
		}
		return nil, &AuthError{Op: "submit login form", URL: loginURL, Err: err}
	}
	if page.StatusCode != http.StatusOK || !strings.Contains(string(page.Body), cfg.SuccessMarker) {
		return nil, &AuthError{Op: "submit login form", URL: loginURL, Err: ErrInvalidCredentials}
	}

	slog.Info("logged in", slog.String("user", cfg.Username))
	return &Session{Fetcher: f, Username: cfg.Username}, nil
}

// formToken loads a form page and returns the value of its hidden token
// input.
func formToken(ctx context.Context, f scraper.Fetcher, pageURL, field string) (string, error) {
	page, err := f.Get(ctx, pageURL, scraper.WithoutCache())
	if err != nil {
		return "", err
	}
	doc, err := parser.NewDocument(page.Body)
	if err != nil {
		return "", fmt.Errorf("parse form page: %w", err)
	}
	token, ok := parser.HiddenInput(doc, field)
	if !ok {
		return "", fmt.Errorf("%w: no %s input", ErrTokenMissing, field)
	}
	return token, nil
}

func resolvePath(siteURL, path string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return "", err
	}
	return parser.Resolve(base, path), nil
}
