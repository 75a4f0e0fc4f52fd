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

const bingBaseURL = "https://www.bing.com/search"

// Bing scrapes the regular result page. Second in the chain: stable markup,
// moderate bot tolerance.
type Bing struct {
	fetcher *fetcher
	baseURL string
}

// NewBing creates the adapter.
func NewBing(client *http.Client) *Bing {
	return &Bing{fetcher: newFetcher(client), baseURL: bingBaseURL}
}

// Name implements Backend.
func (b *Bing) Name() string {
	return "bing"
}

// Search implements Backend.
func (b *Bing) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("q", query.Text)
	params.Set("setlang", "fr")
	params.Set("cc", "fr")

	body, err := b.fetcher.get(ctx, b.Name(), b.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Backend: b.Name(), Err: err}
	}

	var candidates []domain.Candidate
	doc.Find("li.b_algo").Each(func(i int, sel *goquery.Selection) {
		link := sel.Find("h2 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		candidates = append(candidates, domain.Candidate{
			Title:    strings.TrimSpace(link.Text()),
			URL:      href,
			Snippet:  strings.TrimSpace(sel.Find(".b_caption p").First().Text()),
			Position: i + 1,
		})
	})
	return candidates, nil
}
