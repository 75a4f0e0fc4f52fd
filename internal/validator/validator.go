// Package validator scores raw candidates against an entity and theme,
// rejecting false positives before anything reaches aggregation. Scoring is
// a pure function of its inputs: no clock, no I/O, no randomness.
package validator

import (
	"strings"

	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/frenchtext"
	"github.com/jonesrussell/goveille/internal/themes"
)

// Validator applies the multi-criteria relevance decision.
type Validator struct {
	cfg      config.ValidationConfig
	registry *themes.Registry
}

// New creates a validator with the given thresholds.
func New(cfg config.ValidationConfig, registry *themes.Registry) *Validator {
	return &Validator{cfg: cfg, registry: registry}
}

// Validate scores one candidate for one entity and theme.
//
// Decision order: exclusion patterns dominate everything; then the entity
// must actually be mentioned; then some business vocabulary must be present;
// only then are the geo and theme signals combined into the final score.
func (v *Validator) Validate(cand domain.Candidate, entity *domain.Entity, themeName string) domain.ValidatedResult {
	result := domain.ValidatedResult{Candidate: cand, Theme: themeName}

	text := frenchtext.Normalize(cand.Title + " " + cand.Snippet + " " + cand.URL)

	if _, excluded := v.registry.ExcludedBy(text); excluded {
		result.Reason = domain.RejectExcludedSource
		return result
	}

	result.EntityMatchScore = entityMatchScore(text, entity.Name)
	if result.EntityMatchScore < v.cfg.EntityMatchGate {
		result.Reason = domain.RejectEntityNotMentioned
		return result
	}

	if !v.registry.HasBusinessContext(text) {
		result.Reason = domain.RejectNoBusinessContext
		return result
	}

	result.GeoScore = v.geoScore(text, entity.Commune)
	result.ThemeScore = v.themeScore(themeName, text)

	final := result.EntityMatchScore*v.cfg.EntityWeight + result.GeoScore + result.ThemeScore
	result.FinalScore = clamp01(final)

	if result.FinalScore < v.cfg.AcceptFloor {
		result.Reason = domain.RejectLowScore
		return result
	}

	result.Accepted = true
	return result
}

// entityMatchScore is the fraction of the entity's significant name tokens
// found verbatim in the candidate text.
func entityMatchScore(normText, entityName string) float64 {
	tokens := frenchtext.SignificantTokens(entityName)
	if len(tokens) == 0 {
		return 0
	}
	found := 0
	for _, tok := range tokens {
		if strings.Contains(normText, tok) {
			found++
		}
	}
	return float64(found) / float64(len(tokens))
}

// geoScore rewards an explicit mention of the entity's commune.
func (v *Validator) geoScore(normText, commune string) float64 {
	if commune != "" && strings.Contains(normText, frenchtext.Normalize(commune)) {
		return v.cfg.GeoCommuneScore
	}
	return v.cfg.GeoBaselineScore
}

// themeScore scales with distinct theme keyword hits, capped.
func (v *Validator) themeScore(themeName, normText string) float64 {
	score := v.cfg.ThemeKeywordWeight * float64(v.registry.KeywordHits(themeName, normText))
	if score > v.cfg.ThemeScoreCap {
		score = v.cfg.ThemeScoreCap
	}
	return score
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
