package backends

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/goveille/internal/domain"
)

const duckduckgoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the HTML endpoint, which serves full markup without
// JavaScript and tolerates automated clients best of the chain.
type DuckDuckGo struct {
	fetcher *fetcher
	baseURL string
}

// NewDuckDuckGo creates the adapter. A nil client uses http.DefaultClient
// settings.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{fetcher: newFetcher(client), baseURL: duckduckgoBaseURL}
}

// Name implements Backend.
func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

// Search implements Backend.
func (d *DuckDuckGo) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("q", query.Text)
	params.Set("kl", "fr-fr")

	body, err := d.fetcher.get(ctx, d.Name(), d.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Backend: d.Name(), Err: err}
	}

	var candidates []domain.Candidate
	doc.Find(".result").Each(func(i int, sel *goquery.Selection) {
		link := sel.Find(".result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		candidates = append(candidates, domain.Candidate{
			Title:    strings.TrimSpace(link.Text()),
			URL:      resolveDuckDuckGoRedirect(href),
			Snippet:  strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
			Position: i + 1,
		})
	})
	return candidates, nil
}

// resolveDuckDuckGoRedirect unwraps the /l/?uddg= redirect the HTML endpoint
// wraps result links in.
func resolveDuckDuckGoRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
