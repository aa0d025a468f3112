package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// Config holds scraper configuration for every subcommand.
type Config struct {
	QuotesURL        string            `yaml:"quotes_url"`
	BooksURL         string            `yaml:"books_url"`
	Transport        string            `yaml:"transport"` // colly or resty
	Timeout          time.Duration     `yaml:"timeout"`
	UserAgent        string            `yaml:"user_agent"`
	Headers          map[string]string `yaml:"headers"`
	CacheSize        int               `yaml:"cache_size"`
	RespectRobotsTxt bool              `yaml:"respect_robots_txt"`
	MetricsAddr      string            `yaml:"metrics_addr"`
	Verbose          bool              `yaml:"verbose"`

	Login      LoginConfig      `yaml:"login"`
	Search     SearchConfig     `yaml:"search"`
	Quotes     PaginationConfig `yaml:"quotes"`
	Categories CategoriesConfig `yaml:"categories"`
	Category   CategoryConfig   `yaml:"category"`
	Sample     SampleConfig     `yaml:"sample"`
	Output     OutputConfig     `yaml:"output"`
}

// LoginConfig describes the login form of the quotes site.
type LoginConfig struct {
	Path          string `yaml:"path"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	TokenField    string `yaml:"token_field"`
	SuccessMarker string `yaml:"success_marker"`
}

// SearchConfig describes the author/tag search form.
type SearchConfig struct {
	SearchPath string `yaml:"search_path"`
	FilterPath string `yaml:"filter_path"`
	TokenField string `yaml:"token_field"`
	Author     string `yaml:"author"`
	Tag        string `yaml:"tag"`
	Keyword    string `yaml:"keyword"`
}

// PaginationConfig controls a paginated traversal.
type PaginationConfig struct {
	StopOnEmptyPage bool          `yaml:"stop_on_empty_page"`
	MaxPages        int           `yaml:"max_pages"` // 0 means unlimited
	Delay           time.Duration `yaml:"delay"`
}

// CategoriesConfig controls the category enumeration.
type CategoriesConfig struct {
	Pagination PaginationConfig `yaml:"pagination"`
	Skip       []string         `yaml:"skip"`
	ListBooks  bool             `yaml:"list_books"`
}

// CategoryConfig points at the single category page to scrape.
type CategoryConfig struct {
	URL string `yaml:"url"`
}

// SampleConfig controls the random quote sampler.
type SampleConfig struct {
	Path        string        `yaml:"path"`
	TargetCount int           `yaml:"target_count"`
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

// OutputConfig controls where collected records are persisted.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	File   string `yaml:"file"`
	Format string `yaml:"format"` // json, jsonl, csv, sqlite or dual
	Dedupe bool   `yaml:"dedupe"`
}

// Path joins the output directory and file name.
func (o OutputConfig) Path() string {
	return filepath.Join(o.Dir, o.File)
}

// DefaultConfig returns conservative defaults for the demo targets.
func DefaultConfig() *Config {
	return &Config{
		QuotesURL: "https://quotes.toscrape.com/",
		BooksURL:  "https://books.toscrape.com/",
		Transport: "colly",
		Timeout:   10 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Headers: map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		},
		CacheSize: 128,
		Login: LoginConfig{
			Path:          "login",
			Username:      "username",
			Password:      "password",
			TokenField:    "csrf_token",
			SuccessMarker: "Logout",
		},
		Search: SearchConfig{
			SearchPath: "search.aspx",
			FilterPath: "filter.aspx",
			TokenField: "__VIEWSTATE",
			Author:     "Albert Einstein",
			Tag:        "music",
			Keyword:    "music",
		},
		Quotes: PaginationConfig{
			StopOnEmptyPage: false,
			Delay:           time.Second,
		},
		Categories: CategoriesConfig{
			Pagination: PaginationConfig{
				StopOnEmptyPage: true,
				Delay:           time.Second,
			},
			Skip:      []string{"Books"},
			ListBooks: true,
		},
		Category: CategoryConfig{
			URL: "https://books.toscrape.com/catalogue/category/books/travel_2/index.html",
		},
		Sample: SampleConfig{
			Path:        "random",
			TargetCount: 100,
			MaxAttempts: 10000,
			Delay:       500 * time.Millisecond,
		},
		Output: OutputConfig{
			Dir:    "output",
			File:   "quotes.json",
			Format: "json",
		},
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("quotes URL", c.QuotesURL); err != nil {
		return err
	}
	if err := validateURL("books URL", c.BooksURL); err != nil {
		return err
	}
	if c.Transport != "colly" && c.Transport != "resty" {
		return fmt.Errorf("transport must be colly or resty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}

	if c.Login.TokenField == "" {
		return fmt.Errorf("login token field cannot be empty")
	}
	if c.Login.SuccessMarker == "" {
		return fmt.Errorf("login success marker cannot be empty")
	}
	if c.Search.TokenField == "" {
		return fmt.Errorf("search token field cannot be empty")
	}

	if err := c.Quotes.validate("quotes"); err != nil {
		return err
	}
	if err := c.Categories.Pagination.validate("categories"); err != nil {
		return err
	}
	if c.Category.URL != "" {
		if err := validateURL("category URL", c.Category.URL); err != nil {
			return err
		}
	}

	if c.Sample.TargetCount <= 0 {
		return fmt.Errorf("sample target count must be positive")
	}
	if c.Sample.MaxAttempts <= 0 {
		return fmt.Errorf("sample max attempts must be positive")
	}
	if c.Sample.Delay < 0 {
		return fmt.Errorf("sample delay cannot be negative")
	}

	if c.Output.File == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	switch c.Output.Format {
	case "json", "jsonl", "csv", "sqlite", "dual":
	default:
		return fmt.Errorf("output format must be json, jsonl, csv, sqlite, or dual")
	}

	return nil
}

func (p PaginationConfig) validate(name string) error {
	if p.MaxPages < 0 {
		return fmt.Errorf("%s max pages cannot be negative", name)
	}
	if p.Delay < 0 {
		return fmt.Errorf("%s delay cannot be negative", name)
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
