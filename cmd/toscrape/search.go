package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-toscrape/crawl"
	"github.com/aluiziolira/go-toscrape/stats"
)

var (
	searchAuthor  string
	searchTag     string
	searchKeyword string
)

func init() {
	flags := searchCmd.Flags()
	flags.StringVar(&searchAuthor, "author", "", "Author to search for (overrides search.author)")
	flags.StringVar(&searchTag, "tag", "", "Tag to filter by (overrides search.tag)")
	flags.StringVar(&searchKeyword, "keyword", "", "Keyword the quote text must contain (overrides search.keyword)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [--author NAME] [--tag TAG] [--keyword WORD]",
	Short: "Submits the author/tag search form and prints the matching quotes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		search := rt.cfg.Search
		flags := cmd.Flags()
		if flags.Changed("author") {
			search.Author = searchAuthor
		}
		if flags.Changed("tag") {
			search.Tag = searchTag
		}
		if flags.Changed("keyword") {
			search.Keyword = searchKeyword
		}

		quotes, err := crawl.Search(cmd.Context(), rt.fetcher, rt.cfg.QuotesURL, search)
		if err != nil {
			return err
		}
		rt.metrics.AddItems(len(quotes))

		matches := stats.MatchQuotes(quotes, search.Author, search.Keyword)
		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintf(out, "No quotes by %s containing %q.\n", search.Author, search.Keyword)
			return nil
		}

		fmt.Fprintf(out, "Quote by %s containing %q:\n", search.Author, search.Keyword)
		fmt.Fprintf(out, "%q\n", matches[0].TextOrEmpty())
		if len(matches) > 1 {
			fmt.Fprintln(out, "\nAll matching quotes:")
			renderQuotes(out, matches)
		}
		return nil
	},
}
