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

const googleBaseURL = "https://www.google.com/search"

// Google scrapes the classic result page. This is the protected backend:
// high-value results, aggressive bot defenses, so every call goes through
// the circuit breaker.
type Google struct {
	fetcher *fetcher
	baseURL string
}

// NewGoogle creates the adapter.
func NewGoogle(client *http.Client) *Google {
	return &Google{fetcher: newFetcher(client), baseURL: googleBaseURL}
}

// Name implements Backend.
func (g *Google) Name() string {
	return "google"
}

// Search implements Backend.
func (g *Google) Search(ctx context.Context, query domain.SearchQuery) ([]domain.Candidate, error) {
	params := url.Values{}
	params.Set("q", query.Text)
	params.Set("num", "10")
	params.Set("hl", "fr")

	body, err := g.fetcher.get(ctx, g.Name(), g.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Backend: g.Name(), Err: err}
	}

	var candidates []domain.Candidate
	doc.Find("div.g").Each(func(i int, sel *goquery.Selection) {
		link := sel.Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		title := strings.TrimSpace(sel.Find("h3").First().Text())
		if title == "" {
			return
		}
		candidates = append(candidates, domain.Candidate{
			Title:    title,
			URL:      unwrapGoogleRedirect(href),
			Snippet:  strings.TrimSpace(sel.Find("div.VwiC3b").First().Text()),
			Position: i + 1,
		})
	})
	return candidates, nil
}

// unwrapGoogleRedirect strips the /url?q= wrapper on result links.
func unwrapGoogleRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("q"); target != "" {
		return target
	}
	return href
}
