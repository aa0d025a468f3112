package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/aluiziolira/go-toscrape/models"
	"github.com/aluiziolira/go-toscrape/stats"
)

// maxCellWidth bounds the display width of free text cells.
const maxCellWidth = 60

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// truncate shortens s to width terminal columns, counting wide runes.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func formatPrice(p float64) string {
	return "£" + strconv.FormatFloat(p, 'f', 2, 64)
}

func renderBooks(out io.Writer, books []models.Book) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Title", "Price"})
	for i, b := range books {
		t.AppendRow(table.Row{i + 1, truncate(b.Title, maxCellWidth), formatPrice(b.Price)})
	}
	t.Render()
}

func renderQuotes(out io.Writer, quotes []models.Quote) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Quote", "Author", "Tags"})
	for i, q := range quotes {
		t.AppendRow(table.Row{
			i + 1,
			truncate(q.TextOrEmpty(), maxCellWidth),
			q.AuthorOrEmpty(),
			truncate(fmt.Sprint(q.TagList()), maxCellWidth/2),
		})
	}
	t.Render()
}

// categoryReport is one line of the categories summary.
type categoryReport struct {
	Name    string
	Summary stats.Summary
	Pages   int
	Reason  string
}

func renderCategories(out io.Writer, reports []categoryReport) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Category", "Books", "Average price", "Pages", "Stopped"})
	total := 0
	for _, r := range reports {
		avg := 0.0
		if r.Summary.AveragePrice != nil {
			avg = *r.Summary.AveragePrice
		}
		t.AppendRow(table.Row{truncate(r.Name, maxCellWidth), r.Summary.Count, formatPrice(avg), r.Pages, r.Reason})
		total += r.Summary.Count
	}
	t.AppendFooter(table.Row{"Total", total, "", "", ""})
	t.Render()
}
