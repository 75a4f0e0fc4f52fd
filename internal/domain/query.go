// Package domain provides domain models used across the application.
package domain

// QueryStrategy identifies how a search query was constructed.
type QueryStrategy string

const (
	// StrategyDirect quotes the full entity name with its commune.
	StrategyDirect QueryStrategy = "direct"
	// StrategyTokenSubset uses the most significant name tokens unquoted.
	StrategyTokenSubset QueryStrategy = "token_subset"
	// StrategySector combines the entity name with sector keywords.
	StrategySector QueryStrategy = "sector"
	// StrategyLocalSource scopes the query to a local press or institutional site.
	StrategyLocalSource QueryStrategy = "local_source"
)

// SearchQuery is a single query planned for one entity and theme.
type SearchQuery struct {
	// Query text sent to the backend
	Text string `json:"text"`
	// Construction strategy, used for provenance and diagnostics
	Strategy QueryStrategy `json:"strategy"`
	// Theme the query targets
	Theme string `json:"theme"`
	// Entity ID the query was planned for
	EntityID string `json:"entity_id"`
	// Source classification candidates from this query inherit,
	// SourceOrganic unless the query is scoped to a known site
	SourceHint SourceType `json:"source_hint,omitempty"`
}
