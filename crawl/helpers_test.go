package crawl

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-toscrape/config"
	"github.com/aluiziolira/go-toscrape/scraper"
)

const site = "https://quotes.example.test/"

func newMockFetcher(t *testing.T) (scraper.Fetcher, *httpmock.MockTransport) {
	t.Helper()
	f, err := scraper.NewRestyFetcher(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	transport := httpmock.NewMockTransport()
	f.WithTransport(transport)
	return f, transport
}

// quotePage renders a listing page with one quote block per text. Each
// quote is attributed to author and tagged with tags. An empty next omits
// the pager.
func quotePage(next, author string, tags []string, texts ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	for _, text := range texts {
		fmt.Fprintf(&b, "<div class=\"quote\"><span class=\"text\">%s</span><small class=\"author\">%s</small><div class=\"tags\">", text, author)
		for _, tag := range tags {
			fmt.Fprintf(&b, "<a class=\"tag\" href=\"/tag/%s/\">%s</a>", tag, tag)
		}
		b.WriteString("</div></div>\n")
	}
	if next != "" {
		fmt.Fprintf(&b, "<ul class=\"pager\"><li class=\"next\"><a href=\"%s\">Next</a></li></ul>\n", next)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func html(body string) httpmock.Responder {
	return httpmock.NewStringResponder(http.StatusOK, body)
}
