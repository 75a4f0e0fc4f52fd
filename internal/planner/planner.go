// Package planner builds bounded, deduplicated search query lists for one
// entity and theme. Records with empty, anonymized or bare-person names are
// rejected up front as not searchable.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/frenchtext"
	"github.com/jonesrussell/goveille/internal/logger"
	"github.com/jonesrussell/goveille/internal/themes"
)

// ErrNotSearchable marks an entity that cannot produce any useful query.
var ErrNotSearchable = errors.New("entity not searchable")

// nonDisclosureMarkers flag anonymized registry records.
var nonDisclosureMarkers = []string{
	"non-diffusible",
	"non diffusible",
	"confidentiel",
	"confidential",
	"anonyme",
	"anonymous",
	"information non disponible",
}

// longNameThreshold switches planning from quoted full-name queries to
// significant-token subsets.
const longNameThreshold = 40

// maxSubsetTokens bounds the token-subset strategy.
const maxSubsetTokens = 3

// Planner builds search queries from entity records and theme vocabulary.
type Planner struct {
	cfg      *config.SearchConfig
	registry *themes.Registry
	logger   logger.Interface
}

// New creates a query planner.
func New(cfg *config.SearchConfig, registry *themes.Registry, log logger.Interface) *Planner {
	return &Planner{
		cfg:      cfg,
		registry: registry,
		logger:   log.WithComponent("planner"),
	}
}

// Plan returns up to MaxQueriesPerTheme deduplicated queries for the entity
// and theme, in priority order. ErrNotSearchable is returned when the entity
// name cannot identify a business.
func (p *Planner) Plan(entity *domain.Entity, theme themes.Theme) ([]domain.SearchQuery, error) {
	name := entity.DisplayName()
	if reason, bad := p.notSearchable(name); bad {
		p.logger.Debug("Entity not searchable",
			"entity", name,
			"reason", reason,
		)
		return nil, fmt.Errorf("%w: %s", ErrNotSearchable, reason)
	}

	var texts []candidateQuery
	if len(name) < longNameThreshold {
		texts = p.directQueries(name, entity.Commune, theme)
	} else {
		texts = p.subsetQueries(name, entity.Commune, theme)
	}
	texts = append(texts, p.sectorQueries(entity, name)...)
	if p.cfg.LocalSourceQueries {
		texts = append(texts, p.localSourceQueries(name, entity.Commune, theme)...)
	}

	queries := p.filter(texts, entity, theme)
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no query within bounds", ErrNotSearchable)
	}
	return queries, nil
}

type candidateQuery struct {
	text     string
	strategy domain.QueryStrategy
	source   domain.SourceType
}

// notSearchable applies the up-front rejection rules.
func (p *Planner) notSearchable(name string) (string, bool) {
	if name == "" {
		return "empty name", true
	}

	norm := frenchtext.Normalize(name)
	for _, marker := range nonDisclosureMarkers {
		if strings.Contains(norm, marker) {
			return "non-disclosure marker", true
		}
	}

	tokens := frenchtext.Tokenize(name)
	sig := frenchtext.SignificantTokens(name)
	if len(sig) == 0 {
		return "no significant token", true
	}

	// A civility followed by at most two tokens is a private person unless
	// some token signals an organization.
	if len(tokens) > 0 && frenchtext.IsCivility(tokens[0]) && len(tokens) <= 3 {
		organizational := false
		for _, tok := range tokens[1:] {
			if frenchtext.IsLegalForm(tok) {
				organizational = true
				break
			}
		}
		if _, found := p.registry.DetectSector(name, ""); found {
			organizational = true
		}
		if !organizational {
			return "bare civility name", true
		}
	}

	return "", false
}

// directQueries handles short names: quote the full name and vary keyword
// and commune.
func (p *Planner) directQueries(name, commune string, theme themes.Theme) []candidateQuery {
	kw := theme.QueryKeywords
	out := []candidateQuery{
		{text: fmt.Sprintf("%q %s", name, kw[0]), strategy: domain.StrategyDirect},
	}
	if commune != "" {
		out = append(out, candidateQuery{
			text:     fmt.Sprintf("%q %s %s", name, commune, kw[0]),
			strategy: domain.StrategyDirect,
		})
	}
	if len(kw) > 1 {
		out = append(out, candidateQuery{
			text:     fmt.Sprintf("%s %s", name, kw[1]),
			strategy: domain.StrategyDirect,
		})
	}
	return out
}

// subsetQueries handles long names: keep the strongest tokens only.
func (p *Planner) subsetQueries(name, commune string, theme themes.Theme) []candidateQuery {
	sig := frenchtext.SignificantTokens(name)
	if len(sig) > maxSubsetTokens {
		sig = sig[:maxSubsetTokens]
	}
	base := strings.Join(sig, " ")
	kw := theme.QueryKeywords

	out := []candidateQuery{
		{
			text:     strings.TrimSpace(fmt.Sprintf("%s %s %s", base, commune, kw[0])),
			strategy: domain.StrategyTokenSubset,
		},
	}
	if len(kw) > 1 {
		out = append(out, candidateQuery{
			text:     fmt.Sprintf("%s %s", base, kw[1]),
			strategy: domain.StrategyTokenSubset,
		})
	}
	return out
}

// sectorQueries appends specialized queries when the activity sector is
// recognizable.
func (p *Planner) sectorQueries(entity *domain.Entity, name string) []candidateQuery {
	sector, found := p.registry.DetectSector(entity.Name, entity.Sector)
	if !found {
		return nil
	}

	out := []candidateQuery{{
		text:     strings.TrimSpace(fmt.Sprintf("%q %s %s", name, entity.Commune, sector.QueryKeywords[0])),
		strategy: domain.StrategySector,
	}}
	if len(sector.QueryKeywords) > 1 {
		out = append(out, candidateQuery{
			text:     fmt.Sprintf("%s %s", name, sector.QueryKeywords[1]),
			strategy: domain.StrategySector,
		})
	}
	return out
}

// filter applies length/token bounds, deduplicates and caps the list while
// preserving priority order.
func (p *Planner) filter(texts []candidateQuery, entity *domain.Entity, theme themes.Theme) []domain.SearchQuery {
	seen := make(map[string]struct{}, len(texts))
	out := make([]domain.SearchQuery, 0, p.cfg.MaxQueriesPerTheme)

	for _, cand := range texts {
		text := strings.Join(strings.Fields(cand.text), " ")
		if len(text) < p.cfg.MinQueryLength || len(text) > p.cfg.MaxQueryLength {
			continue
		}
		if len(frenchtext.SignificantTokens(text)) < p.cfg.MinSignificantTokens {
			continue
		}

		key := frenchtext.Normalize(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		source := cand.source
		if source == "" {
			source = domain.SourceOrganic
		}
		out = append(out, domain.SearchQuery{
			Text:       text,
			Strategy:   cand.strategy,
			Theme:      theme.Name,
			EntityID:   entity.ID,
			SourceHint: source,
		})
		if len(out) == p.cfg.MaxQueriesPerTheme {
			break
		}
	}
	return out
}
