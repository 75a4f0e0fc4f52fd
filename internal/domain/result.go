// Package domain provides domain models used across the application.
package domain

// RejectReason explains why a candidate failed relevance validation.
type RejectReason string

const (
	// RejectExcludedSource marks a candidate from a dictionary, forum or
	// similar excluded source. Dominant over every other signal.
	RejectExcludedSource RejectReason = "excluded_source"
	// RejectEntityNotMentioned marks a candidate whose text does not
	// sufficiently mention the entity.
	RejectEntityNotMentioned RejectReason = "entity_not_mentioned"
	// RejectNoBusinessContext marks a candidate with no business activity term.
	RejectNoBusinessContext RejectReason = "no_business_context"
	// RejectLowScore marks a candidate whose combined score fell below the
	// acceptance floor.
	RejectLowScore RejectReason = "low_score"
)

// ValidatedResult is the outcome of validating one candidate against one
// entity and theme.
type ValidatedResult struct {
	// The candidate that was evaluated
	Candidate Candidate `json:"candidate"`
	// Theme the candidate was evaluated for
	Theme string `json:"theme"`
	// Fraction of significant entity tokens found in the candidate text
	EntityMatchScore float64 `json:"entity_match_score"`
	// Geographic signal contribution
	GeoScore float64 `json:"geo_score"`
	// Theme keyword contribution
	ThemeScore float64 `json:"theme_score"`
	// Combined score, clamped to [0, 1]
	FinalScore float64 `json:"final_score"`
	// Whether the candidate passed validation
	Accepted bool `json:"accepted"`
	// Reason for rejection, empty when accepted
	Reason RejectReason `json:"reason,omitempty"`
}
