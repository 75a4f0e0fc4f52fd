// Package aggregator merges validated results into per-theme and per-entity
// scores. Like the validator it is pure: same inputs, same output.
package aggregator

import (
	"sort"

	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/frenchtext"
	"github.com/jonesrussell/goveille/internal/urlnorm"
)

// sourceTrustBonus rewards results from sources that rarely produce false
// positives. An official site or a local newspaper naming the entity is worth
// more than an organic hit; synthetic filler earns nothing.
var sourceTrustBonus = map[domain.SourceType]float64{
	domain.SourceOfficialSite:  0.2,
	domain.SourceLocalPress:    0.15,
	domain.SourceInstitutional: 0.15,
	domain.SourceOrganic:       0.05,
	domain.SourceSynthetic:     0,
}

// Aggregator computes theme and entity level scores.
type Aggregator struct {
	cfg config.AggregationConfig
}

// New creates an aggregator with the given weights.
func New(cfg config.AggregationConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// AggregateTheme builds the result set for one (entity, theme) pair from the
// validated results of every query issued for it. Only accepted results are
// kept; duplicates sharing a normalized (title, url) pair collapse to the
// highest-scoring occurrence.
func (a *Aggregator) AggregateTheme(theme string, queries []domain.SearchQuery, results []domain.ValidatedResult) domain.ThemeResultSet {
	set := domain.ThemeResultSet{Theme: theme}

	for _, q := range queries {
		set.Queries = append(set.Queries, q.Text)
	}

	kept := dedupe(results)
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].FinalScore != kept[j].FinalScore {
			return kept[i].FinalScore > kept[j].FinalScore
		}
		return kept[i].Candidate.URL < kept[j].Candidate.URL
	})
	set.Results = kept

	set.Backends = backendsOf(kept)
	set.Pertinence = a.pertinence(kept)
	set.Confidence = a.confidence(set.Pertinence, kept)
	return set
}

// AggregateEntity combines per-theme pertinence into one entity score: a
// mean weighted by accepted-result counts, plus a bonus for activity spread
// across distinct themes, capped at 1.0.
func (a *Aggregator) AggregateEntity(sets []domain.ThemeResultSet) (float64, domain.Confidence) {
	var weighted, totalWeight float64
	activeThemes := 0
	allSynthetic := true

	for _, set := range sets {
		n := len(set.Results)
		if n == 0 {
			continue
		}
		activeThemes++
		weighted += set.Pertinence * float64(n)
		totalWeight += float64(n)
		for _, r := range set.Results {
			if r.Candidate.Source != domain.SourceSynthetic {
				allSynthetic = false
			}
		}
	}

	if totalWeight == 0 {
		return 0, domain.ConfidenceLow
	}

	score := weighted / totalWeight
	bonus := a.cfg.DiversityBonus * float64(activeThemes)
	if bonus > a.cfg.DiversityBonusCap {
		bonus = a.cfg.DiversityBonusCap
	}
	score += bonus
	if score > 1 {
		score = 1
	}

	if allSynthetic {
		return score, domain.ConfidenceLow
	}
	return score, a.band(score)
}

// SortSets orders theme result sets by theme name so reports are stable.
func SortSets(sets []domain.ThemeResultSet) {
	sort.Slice(sets, func(i, j int) bool { return sets[i].Theme < sets[j].Theme })
}

// pertinence scales with the number of accepted results, topped up by the
// average final score and the trust bonus of the best source present.
func (a *Aggregator) pertinence(results []domain.ValidatedResult) float64 {
	if len(results) == 0 {
		return 0
	}

	var sum, bestBonus float64
	for _, r := range results {
		sum += r.FinalScore
		if b := sourceTrustBonus[r.Candidate.Source]; b > bestBonus {
			bestBonus = b
		}
	}
	avg := sum / float64(len(results))

	p := a.cfg.PerResultWeight*float64(len(results)) + avg*a.cfg.PerResultWeight + bestBonus
	if p > a.cfg.PertinenceCap {
		p = a.cfg.PertinenceCap
	}
	return p
}

func (a *Aggregator) confidence(pertinence float64, results []domain.ValidatedResult) domain.Confidence {
	if len(results) == 0 {
		return domain.ConfidenceLow
	}
	for _, r := range results {
		if r.Candidate.Source != domain.SourceSynthetic {
			return a.band(pertinence)
		}
	}
	// Synthetic-only findings never inspire confidence.
	return domain.ConfidenceLow
}

func (a *Aggregator) band(score float64) domain.Confidence {
	switch {
	case score >= a.cfg.HighConfidenceFloor:
		return domain.ConfidenceHigh
	case score >= a.cfg.MediumConfidenceFloor:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// dedupe collapses accepted results sharing a normalized (title, url) pair,
// keeping the highest final score for each.
func dedupe(results []domain.ValidatedResult) []domain.ValidatedResult {
	best := make(map[string]domain.ValidatedResult)
	order := make([]string, 0, len(results))

	for _, r := range results {
		if !r.Accepted {
			continue
		}
		key := dedupeKey(r.Candidate)
		prev, seen := best[key]
		if !seen {
			order = append(order, key)
			best[key] = r
			continue
		}
		if r.FinalScore > prev.FinalScore {
			best[key] = r
		}
	}

	kept := make([]domain.ValidatedResult, 0, len(order))
	for _, key := range order {
		kept = append(kept, best[key])
	}
	return kept
}

func dedupeKey(c domain.Candidate) string {
	return frenchtext.Normalize(c.Title) + "\x1f" + urlnorm.Canonical(c.URL)
}

func backendsOf(results []domain.ValidatedResult) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range results {
		if r.Candidate.Backend == "" {
			continue
		}
		if _, ok := seen[r.Candidate.Backend]; ok {
			continue
		}
		seen[r.Candidate.Backend] = struct{}{}
		names = append(names, r.Candidate.Backend)
	}
	sort.Strings(names)
	return names
}
