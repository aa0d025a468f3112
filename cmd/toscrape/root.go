package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-toscrape/config"
	"github.com/aluiziolira/go-toscrape/scraper"
)

const defaultConfigPath = "toscrape.yaml"

var (
	configPath   string
	verbose      bool
	metricsAddr  string
	transport    string
	outputFormat string
	outputDir    string
)

// newFetcher is replaced in tests.
var newFetcher = scraper.New

var rootCmd = &cobra.Command{
	Use:           "toscrape",
	Short:         "toscrape scrapes the quotes and books demo sites.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", defaultConfigPath, "YAML configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	flags.StringVar(&transport, "transport", "", "HTTP transport: colly or resty")
	flags.StringVar(&outputFormat, "format", "", "Output format: json, jsonl, csv, sqlite or dual")
	flags.StringVar(&outputDir, "output-dir", "", "Directory for output files")
}

func execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runtime is the state shared by one subcommand run.
type runtime struct {
	cfg     *config.Config
	fetcher scraper.Fetcher
	metrics *scraper.Metrics
	server  *http.Server
}

// setup loads configuration, installs the logger and builds the fetcher.
func setup(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	metrics := scraper.NewMetrics()
	fetcher, err := newFetcher(cfg, metrics)
	if err != nil {
		return nil, fmt.Errorf("initialising fetcher: %w", err)
	}

	rt := &runtime{cfg: cfg, fetcher: fetcher, metrics: metrics}
	if cfg.MetricsAddr != "" {
		rt.server = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := rt.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.server.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

// loadConfig layers defaults, the config file, environment variables and
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	flags := cmd.Flags()
	_, statErr := os.Stat(configPath)
	if flags.Changed("config") || statErr == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if flags.Changed("transport") {
		cfg.Transport = transport
	}
	if flags.Changed("format") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = outputDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
