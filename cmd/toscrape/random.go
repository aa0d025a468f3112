package main

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-toscrape/crawl"
	"github.com/aluiziolira/go-toscrape/models"
	"github.com/aluiziolira/go-toscrape/parser"
	"github.com/aluiziolira/go-toscrape/pipeline"
)

var (
	randomTarget      int
	randomMaxAttempts int
)

func init() {
	randomCmd.Flags().IntVar(&randomTarget, "target", 0, "Unique quotes to collect (overrides sample.target_count)")
	randomCmd.Flags().IntVar(&randomMaxAttempts, "max-attempts", 0, "Request ceiling (overrides sample.max_attempts)")
	rootCmd.AddCommand(randomCmd)
}

var randomCmd = &cobra.Command{
	Use:   "random [--target N] [--max-attempts N]",
	Short: "Samples the random quote page until enough unique quotes are collected, then saves them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		sample := rt.cfg.Sample
		if cmd.Flags().Changed("target") {
			sample.TargetCount = randomTarget
		}
		if cmd.Flags().Changed("max-attempts") {
			sample.MaxAttempts = randomMaxAttempts
		}
		if sample.TargetCount <= 0 || sample.MaxAttempts <= 0 {
			return fmt.Errorf("target and max attempts must be positive")
		}

		randomURL, err := resolveOn(rt.cfg.QuotesURL, sample.Path)
		if err != nil {
			return err
		}

		res := crawl.CollectUnique(cmd.Context(), crawl.RandomQuote(rt.fetcher, randomURL), models.Quote.Key,
			sample.TargetCount, sample.MaxAttempts, sample.Delay)
		rt.metrics.AddItems(len(res.Records))

		out := cmd.OutOrStdout()
		switch res.Reason {
		case crawl.SampleTargetReached:
			fmt.Fprintf(out, "Collected all %d unique quotes in %d attempts.\n", len(res.Records), res.Attempts)
		default:
			fmt.Fprintf(out, "Stopped after %d attempts (%s). Collected %d unique quotes.\n", res.Attempts, res.Reason, len(res.Records))
		}

		path := rt.cfg.Output.Path()
		writer, err := pipeline.NewWriter[models.Quote](rt.cfg.Output.Format, path)
		if err != nil {
			return fmt.Errorf("creating writer: %w", err)
		}
		p := pipeline.NewPipeline(writer, pipeline.Options{Dedupe: rt.cfg.Output.Dedupe})
		if err := p.Process(res.Records); err != nil {
			p.Close()
			return fmt.Errorf("persist quotes: %w", err)
		}
		if err := p.Close(); err != nil {
			return fmt.Errorf("pipeline shutdown failed: %w", err)
		}
		if err := writer.Validate(); err != nil {
			slog.Warn("output validation failed", slog.Any("error", err))
		}

		fmt.Fprintf(out, "Quotes have been saved to %s\n", path)
		return nil
	},
}

func resolveOn(siteURL, path string) (string, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site URL: %w", err)
	}
	return parser.Resolve(base, path), nil
}
