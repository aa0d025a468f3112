package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-toscrape/crawl"
	"github.com/aluiziolira/go-toscrape/models"
	"github.com/aluiziolira/go-toscrape/pipeline"
	"github.com/aluiziolira/go-toscrape/stats"
)

var (
	categoriesListBooks bool
	categoriesSave      bool
)

func init() {
	categoriesCmd.Flags().BoolVar(&categoriesListBooks, "list-books", false, "Print every book of every category (overrides categories.list_books)")
	categoriesCmd.Flags().BoolVar(&categoriesSave, "save", false, "Persist all books to <output.dir>/books.<format>")
	rootCmd.AddCommand(categoriesCmd)
}

var categoriesCmd = &cobra.Command{
	Use:   "categories [--list-books] [--save]",
	Short: "Counts the books of every category and their average price.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		listBooks := rt.cfg.Categories.ListBooks
		if cmd.Flags().Changed("list-books") {
			listBooks = categoriesListBooks
		}

		var p *pipeline.Pipeline[models.Book]
		var writer pipeline.OutputWriter[models.Book]
		if categoriesSave {
			path := filepath.Join(rt.cfg.Output.Dir, "books"+extension(rt.cfg.Output.Format))
			writer, err = pipeline.NewWriter[models.Book](rt.cfg.Output.Format, path)
			if err != nil {
				return fmt.Errorf("creating writer: %w", err)
			}
			p = pipeline.NewPipeline(writer, pipeline.Options{Dedupe: rt.cfg.Output.Dedupe})
			defer p.Close()
		}

		fetch := crawl.Fetch(rt.fetcher)
		categories, err := crawl.Categories(ctx, fetch, rt.cfg.BooksURL, rt.cfg.Categories.Skip)
		if err != nil {
			return err
		}
		slog.Info("found categories", slog.Int("count", len(categories)))

		opts := crawl.OptionsFrom(rt.cfg.Categories.Pagination)
		reports := make([]categoryReport, 0, len(categories))
		for _, c := range categories {
			if ctx.Err() != nil {
				break
			}
			slog.Info("processing category", slog.String("category", c.Name))

			res := crawl.ExtractAll(ctx, c.URL, fetch, crawl.BookPage, nil, opts)
			rt.metrics.AddItems(len(res.Records))
			summary := stats.Summarize(res.Records)
			reports = append(reports, categoryReport{
				Name:    c.Name,
				Summary: summary,
				Pages:   res.Pages,
				Reason:  string(res.Reason),
			})

			if listBooks {
				fmt.Fprintf(out, "\n%s\n", c.Name)
				renderBooks(out, res.Records)
			}
			if p != nil {
				if err := p.Process(res.Records); err != nil {
					return fmt.Errorf("persist books: %w", err)
				}
			}
		}

		renderCategories(out, reports)

		if p != nil {
			if err := p.Close(); err != nil {
				return fmt.Errorf("pipeline shutdown failed: %w", err)
			}
			if err := writer.Validate(); err != nil {
				return fmt.Errorf("output validation failed: %w", err)
			}
		}
		if err := ctx.Err(); err != nil {
			return errors.New("interrupted")
		}
		return nil
	},
}

// extension maps an output format to a file extension.
func extension(format string) string {
	switch format {
	case "jsonl":
		return ".jsonl"
	case "csv", "dual":
		return ".csv"
	case "sqlite":
		return ".db"
	default:
		return ".json"
	}
}
