// Package domain provides domain models used across the application.
package domain

import "time"

// Confidence labels the strength of an aggregated result set.
type Confidence string

const (
	// ConfidenceHigh indicates strong, corroborated findings.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium indicates plausible findings with limited corroboration.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow indicates weak or synthetic-only findings.
	ConfidenceLow Confidence = "low"
)

// ThemeResultSet groups the accepted results for one entity and theme.
type ThemeResultSet struct {
	// Theme name
	Theme string `json:"theme"`
	// Accepted results, deduplicated, ordered by descending final score
	Results []ValidatedResult `json:"results"`
	// Pertinence score for the theme, in [0, 1]
	Pertinence float64 `json:"pertinence"`
	// Confidence band derived from the pertinence score
	Confidence Confidence `json:"confidence"`
	// Backends that produced at least one kept result, sorted
	Backends []string `json:"backends,omitempty"`
	// Query texts that were issued for the theme
	Queries []string `json:"queries,omitempty"`
}

// EntityReport is the full research outcome for one entity.
type EntityReport struct {
	// Entity the report covers
	Entity Entity `json:"entity"`
	// Result sets keyed in ThemeSets by theme name, ordered by theme name
	ThemeSets []ThemeResultSet `json:"theme_sets"`
	// Aggregate score across themes, weighted mean plus diversity bonus
	AggregateScore float64 `json:"aggregate_score"`
	// Confidence band for the aggregate score
	Confidence Confidence `json:"confidence"`
	// Per-entity processing counters
	Stats EntityStats `json:"stats"`
}

// EntityStats carries diagnostic counters for one processed entity.
type EntityStats struct {
	// Queries generated by the planner
	QueriesPlanned int `json:"queries_planned"`
	// Backends attempted across all queries
	BackendsTried int `json:"backends_tried"`
	// Backend that produced the winning response, empty if none
	WinningBackend string `json:"winning_backend,omitempty"`
	// Raw candidates before validation
	RawCandidates int `json:"raw_candidates"`
	// Candidates accepted by validation
	Validated int `json:"validated"`
	// Candidates rejected by validation
	Rejected int `json:"rejected"`
	// Cache hits while processing the entity
	CacheHits int `json:"cache_hits"`
	// Whether the entity fell back to synthetic results
	UsedSynthetic bool `json:"used_synthetic"`
	// Wall-clock processing time
	Duration time.Duration `json:"duration"`
}

// RunReport summarizes a full research run over a batch of entities.
type RunReport struct {
	// Unique run identifier
	RunID string `json:"run_id"`
	// Run start time
	StartedAt time.Time `json:"started_at"`
	// Run completion time
	FinishedAt time.Time `json:"finished_at"`
	// Entities processed, in input order
	Reports []EntityReport `json:"reports"`
	// Entities that produced no usable queries
	NotSearchable int `json:"not_searchable"`
	// Total accepted results across all entities
	TotalValidated int `json:"total_validated"`
	// Total rejected candidates across all entities
	TotalRejected int `json:"total_rejected"`
}
