package backends

import (
	"context"

	"github.com/jonesrussell/goveille/internal/domain"
)

// Backend is one pluggable search provider adapter. Search returns raw
// candidates with title, URL, snippet and position filled; everything else
// is stamped by the cascade at ingestion, where malformed entries are
// coerced or dropped.
type Backend interface {
	Name() string
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.Candidate, error)
}
