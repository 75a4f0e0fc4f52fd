// Package sitecheck analyzes an entity's own website for theme signals.
// Pages from the official site are a high-trust source: they name the entity
// by definition and announce recruitment, events or projects first-hand.
package sitecheck

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"

	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/frenchtext"
	"github.com/jonesrussell/goveille/internal/logger"
	"github.com/jonesrussell/goveille/internal/themes"
)

// ErrNoWebsite is returned when the entity record carries no website.
var ErrNoWebsite = errors.New("sitecheck: entity has no website")

const (
	defaultMaxPages  = 5
	defaultMaxDepth  = 2
	defaultMaxBody   = 1 << 20
	defaultTimeout   = 15 * time.Second
	requestDelay     = 1 * time.Second
	snippetRadius    = 120
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

// newsLinkWords marks same-site links worth following beyond the homepage.
var newsLinkWords = []string{
	"actualite", "actualites", "actu", "news", "blog", "presse",
	"evenement", "evenements", "agenda", "recrutement", "emploi",
}

// Finding is one theme signal extracted from the entity's site.
type Finding struct {
	Theme     string
	Candidate domain.Candidate
}

// Checker fetches and scans an entity's official website.
type Checker struct {
	registry  *themes.Registry
	log       logger.Interface
	maxPages  int
	timeout   time.Duration
	userAgent string
}

// New creates a site checker.
func New(registry *themes.Registry, log logger.Interface) *Checker {
	return &Checker{
		registry:  registry,
		log:       log.WithComponent("sitecheck"),
		maxPages:  defaultMaxPages,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
}

// Check crawls the entity's website, bounded to a handful of pages on the
// same host, and returns one finding per (theme, page) with a keyword hit.
func (c *Checker) Check(ctx context.Context, entity *domain.Entity) ([]Finding, error) {
	if !entity.HasWebsite() {
		return nil, ErrNoWebsite
	}

	site, err := normalizeSiteURL(entity.Website)
	if err != nil {
		return nil, fmt.Errorf("sitecheck: invalid website %q: %w", entity.Website, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	collector := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.MaxDepth(defaultMaxDepth),
		colly.MaxBodySize(defaultMaxBody),
		colly.MaxRequests(uint32(c.maxPages)),
		colly.UserAgent(c.userAgent),
		colly.AllowedDomains(site.Hostname()),
		colly.DetectCharset(),
	)
	if err := collector.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      requestDelay,
	}); err != nil {
		return nil, fmt.Errorf("sitecheck: limit rule: %w", err)
	}

	var (
		mu       sync.Mutex
		findings []Finding
	)

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		pageFindings := c.scanPage(e, entity)
		if len(pageFindings) == 0 {
			return
		}
		mu.Lock()
		findings = append(findings, pageFindings...)
		mu.Unlock()
	})

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if !looksLikeNewsLink(e.Attr("href"), e.Text) {
			return
		}
		// Visit errors here mean depth/request caps or an off-site link.
		_ = e.Request.Visit(e.Attr("href"))
	})

	collector.OnError(func(r *colly.Response, visitErr error) {
		c.log.Debug("site page fetch failed",
			"url", r.Request.URL.String(),
			"status", r.StatusCode,
			"error", visitErr)
	})

	if err := collector.Visit(site.String()); err != nil {
		return nil, fmt.Errorf("sitecheck: visit %s: %w", site, err)
	}
	collector.Wait()

	c.log.Debug("site analyzed",
		"entity", entity.Name,
		"site", site.String(),
		"findings", len(findings))
	return findings, nil
}

// scanPage extracts the page text and emits one finding per theme that has
// at least one keyword hit.
func (c *Checker) scanPage(e *colly.HTMLElement, entity *domain.Entity) []Finding {
	dom := e.DOM.Clone()
	dom.Find("script,style,noscript,nav,footer").Remove()

	title := strings.TrimSpace(dom.Find("title").First().Text())
	if title == "" {
		title = entity.DisplayName()
	}
	text := frenchtext.Normalize(dom.Find("body").Text())
	if text == "" {
		return nil
	}

	var findings []Finding
	for _, theme := range c.registry.All() {
		keyword, hit := firstKeywordIn(text, theme.Keywords)
		if !hit {
			continue
		}
		findings = append(findings, Finding{
			Theme: theme.Name,
			Candidate: domain.Candidate{
				ID:          uuid.NewString(),
				Title:       title,
				Snippet:     snippetAround(text, keyword),
				URL:         e.Request.URL.String(),
				Backend:     "site_officiel",
				Source:      domain.SourceOfficialSite,
				RetrievedAt: time.Now().UTC(),
			},
		})
	}
	return findings
}

func normalizeSiteURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

func looksLikeNewsLink(href, label string) bool {
	probe := frenchtext.Normalize(href + " " + label)
	for _, word := range newsLinkWords {
		if strings.Contains(probe, word) {
			return true
		}
	}
	return false
}

func firstKeywordIn(normText string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(normText, kw) {
			return kw, true
		}
	}
	return "", false
}

// snippetAround cuts a window of text centered on the keyword occurrence so
// the validator sees the keyword in context.
func snippetAround(normText, keyword string) string {
	idx := strings.Index(normText, keyword)
	if idx < 0 {
		return ""
	}
	start := idx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(keyword) + snippetRadius
	if end > len(normText) {
		end = len(normText)
	}
	return strings.TrimSpace(normText[start:end])
}
