package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-toscrape/crawl"
	"github.com/aluiziolira/go-toscrape/stats"
)

var quotesShowTable bool

func init() {
	quotesCmd.Flags().BoolVar(&quotesShowTable, "table", false, "Print every extracted quote")
	rootCmd.AddCommand(quotesCmd)
}

var quotesCmd = &cobra.Command{
	Use:   "quotes [--table]",
	Short: "Logs in, extracts every quote and prints simple statistics.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		session, err := crawl.Login(ctx, rt.fetcher, rt.cfg.QuotesURL, rt.cfg.Login)
		if err != nil {
			return err
		}

		fetch := crawl.Fetch(session)
		opts := crawl.OptionsFrom(rt.cfg.Quotes)

		pages, err := crawl.CountPages(ctx, rt.cfg.QuotesURL, fetch, opts.Delay)
		if err != nil {
			slog.Warn("page count incomplete", slog.Int("pages", pages), slog.Any("error", err))
		}

		res := crawl.ExtractAll(ctx, rt.cfg.QuotesURL, fetch, crawl.QuotePage, nil, opts)
		rt.metrics.AddItems(len(res.Records))
		slog.Info("extraction finished",
			slog.Int("pages", res.Pages),
			slog.Int("quotes", len(res.Records)),
			slog.String("reason", string(res.Reason)),
		)

		out := cmd.OutOrStdout()
		summary := stats.Summarize(res.Records)
		fmt.Fprintf(out, "Pages: %d\n", pages)
		fmt.Fprintf(out, "Total quotes: %d\n", summary.Count)
		if summary.Count >= 1 {
			fmt.Fprintf(out, "First quote: %s\n", res.Records[0].TextOrEmpty())
		} else {
			fmt.Fprintln(out, "No quotes found.")
		}
		if summary.Count >= 5 {
			fmt.Fprintf(out, "Fifth quote: %s\n", res.Records[4].TextOrEmpty())
		} else {
			fmt.Fprintln(out, "Fewer than five quotes found.")
		}
		if summary.MostFrequentTag != nil {
			fmt.Fprintf(out, "Most frequent tag: %s (%d times)\n", *summary.MostFrequentTag, summary.TagCount)
		} else {
			fmt.Fprintln(out, "No tags found.")
		}
		if quotesShowTable {
			renderQuotes(out, res.Records)
		}

		if res.Err != nil {
			return fmt.Errorf("extraction stopped early (%s): %w", res.Reason, res.Err)
		}
		return nil
	},
}
