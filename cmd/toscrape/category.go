package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-toscrape/crawl"
)

var categoryURL string

func init() {
	categoryCmd.Flags().StringVar(&categoryURL, "url", "", "Category page to scrape (defaults to category.url)")
	rootCmd.AddCommand(categoryCmd)
}

var categoryCmd = &cobra.Command{
	Use:   "category [--url <category page>]",
	Short: "Prints title and price of every book on one category page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		target := rt.cfg.Category.URL
		if cmd.Flags().Changed("url") {
			target = categoryURL
		}
		if target == "" {
			return fmt.Errorf("no category URL configured")
		}

		res := crawl.ExtractAll(cmd.Context(), target, crawl.Fetch(rt.fetcher), crawl.BookPage, nil, crawl.Options{MaxPages: 1})
		if res.Err != nil {
			return fmt.Errorf("scrape category page: %w", res.Err)
		}
		rt.metrics.AddItems(len(res.Records))

		out := cmd.OutOrStdout()
		for _, b := range res.Records {
			fmt.Fprintf(out, "Title: %s, Price: %s\n", b.Title, formatPrice(b.Price))
		}
		return nil
	},
}
