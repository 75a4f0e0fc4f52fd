// Package domain provides domain models used across the application.
package domain

import "time"

// SourceType classifies where a candidate came from.
type SourceType string

const (
	// SourceOrganic is a regular web search result.
	SourceOrganic SourceType = "organic"
	// SourceOfficialSite is extracted from the entity's own website.
	SourceOfficialSite SourceType = "site_officiel"
	// SourceLocalPress comes from a query scoped to a local press site.
	SourceLocalPress SourceType = "presse_locale"
	// SourceInstitutional comes from a query scoped to an institutional site.
	SourceInstitutional SourceType = "institutionnel"
	// SourceSynthetic is a templated fallback produced when every backend failed.
	SourceSynthetic SourceType = "synthetic"
)

// Candidate is a normalized raw search result, before relevance validation.
type Candidate struct {
	// Unique identifier assigned at ingestion
	ID string `json:"id"`
	// Result title
	Title string `json:"title"`
	// Absolute result URL
	URL string `json:"url"`
	// Snippet or description text
	Snippet string `json:"snippet,omitempty"`
	// Backend that produced the candidate, "synthetic" for fallback output
	Backend string `json:"backend"`
	// Source classification
	Source SourceType `json:"source"`
	// Position in the backend's result page, 1-based
	Position int `json:"position,omitempty"`
	// Time the candidate was retrieved
	RetrievedAt time.Time `json:"retrieved_at"`
}

// IsSynthetic reports whether the candidate was fabricated by the fallback generator.
func (c *Candidate) IsSynthetic() bool {
	return c.Source == SourceSynthetic
}
