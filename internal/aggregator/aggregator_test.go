package aggregator

import (
	"math"
	"testing"

	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/themes"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	return New(cfg.Search.Aggregation)
}

func accepted(title, url, backend string, source domain.SourceType, score float64) domain.ValidatedResult {
	return domain.ValidatedResult{
		Candidate: domain.Candidate{
			Title:   title,
			URL:     url,
			Backend: backend,
			Source:  source,
		},
		FinalScore: score,
		Accepted:   true,
	}
}

func TestAggregateThemeDeduplicates(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	results := []domain.ValidatedResult{
		accepted("CARREFOUR recrute", "https://actu.fr/carrefour/", "duckduckgo", domain.SourceOrganic, 0.6),
		// Same page with accents folded and no trailing slash.
		accepted("carrefour recrute", "https://actu.fr/carrefour", "bing", domain.SourceOrganic, 0.8),
		accepted("Autre article", "https://actu.fr/autre", "duckduckgo", domain.SourceOrganic, 0.5),
	}

	set := agg.AggregateTheme(themes.ThemeRecruitment, nil, results)

	if len(set.Results) != 2 {
		t.Fatalf("expected 2 deduplicated results, got %d", len(set.Results))
	}
	if set.Results[0].FinalScore != 0.8 {
		t.Errorf("expected the higher-scoring duplicate to win, got %.2f", set.Results[0].FinalScore)
	}
	if set.Results[0].Candidate.Backend != "bing" {
		t.Errorf("expected the winning duplicate's backend, got %q", set.Results[0].Candidate.Backend)
	}
}

func TestAggregateThemeDropsRejected(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	rejected := domain.ValidatedResult{
		Candidate: domain.Candidate{Title: "hors sujet", URL: "https://exemple.fr/a"},
		Reason:    domain.RejectEntityNotMentioned,
	}
	results := []domain.ValidatedResult{
		rejected,
		accepted("CARREFOUR recrute", "https://actu.fr/carrefour", "bing", domain.SourceOrganic, 0.7),
	}

	set := agg.AggregateTheme(themes.ThemeRecruitment, nil, results)
	if len(set.Results) != 1 {
		t.Fatalf("expected rejected results to be dropped, got %d results", len(set.Results))
	}
}

func TestAggregateThemeOrdering(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	results := []domain.ValidatedResult{
		accepted("a", "https://exemple.fr/a", "bing", domain.SourceOrganic, 0.4),
		accepted("b", "https://exemple.fr/b", "bing", domain.SourceOrganic, 0.9),
		accepted("c", "https://exemple.fr/c", "bing", domain.SourceOrganic, 0.9),
	}

	set := agg.AggregateTheme(themes.ThemeRecruitment, nil, results)

	want := []string{"https://exemple.fr/b", "https://exemple.fr/c", "https://exemple.fr/a"}
	for i, url := range want {
		if set.Results[i].Candidate.URL != url {
			t.Fatalf("position %d: expected %s, got %s", i, url, set.Results[i].Candidate.URL)
		}
	}
}

func TestAggregateThemePertinence(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)

	empty := agg.AggregateTheme(themes.ThemeEvents, nil, nil)
	if empty.Pertinence != 0 {
		t.Errorf("empty set should have zero pertinence, got %.2f", empty.Pertinence)
	}
	if empty.Confidence != domain.ConfidenceLow {
		t.Errorf("empty set should have low confidence, got %s", empty.Confidence)
	}

	one := agg.AggregateTheme(themes.ThemeEvents, nil, []domain.ValidatedResult{
		accepted("a", "https://exemple.fr/a", "bing", domain.SourceOrganic, 0.8),
	})
	// 0.3*1 + 0.8*0.3 + 0.05 organic bonus = 0.59
	if math.Abs(one.Pertinence-0.59) > 1e-9 {
		t.Errorf("expected pertinence 0.59, got %.4f", one.Pertinence)
	}
	if one.Confidence != domain.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", one.Confidence)
	}

	many := agg.AggregateTheme(themes.ThemeEvents, nil, []domain.ValidatedResult{
		accepted("a", "https://exemple.fr/a", "bing", domain.SourceOfficialSite, 0.9),
		accepted("b", "https://exemple.fr/b", "bing", domain.SourceOrganic, 0.9),
		accepted("c", "https://exemple.fr/c", "bing", domain.SourceOrganic, 0.9),
		accepted("d", "https://exemple.fr/d", "bing", domain.SourceOrganic, 0.9),
	})
	if many.Pertinence != 1.0 {
		t.Errorf("pertinence should cap at 1.0, got %.4f", many.Pertinence)
	}
	if many.Confidence != domain.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", many.Confidence)
	}
}

func TestAggregateThemeSyntheticOnlyIsLowConfidence(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	set := agg.AggregateTheme(themes.ThemeRecruitment, nil, []domain.ValidatedResult{
		accepted("a", "https://veille.invalid/a", "synthetic", domain.SourceSynthetic, 0.9),
		accepted("b", "https://veille.invalid/b", "synthetic", domain.SourceSynthetic, 0.9),
	})

	if set.Confidence != domain.ConfidenceLow {
		t.Errorf("synthetic-only set should be low confidence, got %s", set.Confidence)
	}
}

func TestAggregateThemeProvenance(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	queries := []domain.SearchQuery{
		{Text: `"CARREFOUR" recrutement`},
		{Text: `"CARREFOUR" Boulogne-Billancourt recrutement`},
	}
	results := []domain.ValidatedResult{
		accepted("a", "https://exemple.fr/a", "duckduckgo", domain.SourceOrganic, 0.7),
		accepted("b", "https://exemple.fr/b", "bing", domain.SourceOrganic, 0.6),
		accepted("c", "https://exemple.fr/c", "bing", domain.SourceOrganic, 0.5),
	}

	set := agg.AggregateTheme(themes.ThemeRecruitment, queries, results)

	if len(set.Queries) != 2 {
		t.Fatalf("expected 2 queries in provenance, got %d", len(set.Queries))
	}
	if len(set.Backends) != 2 || set.Backends[0] != "bing" || set.Backends[1] != "duckduckgo" {
		t.Fatalf("expected sorted deduplicated backends, got %v", set.Backends)
	}
}

func TestAggregateEntity(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)

	score, conf := agg.AggregateEntity(nil)
	if score != 0 || conf != domain.ConfidenceLow {
		t.Fatalf("no sets should yield (0, low), got (%.2f, %s)", score, conf)
	}

	sets := []domain.ThemeResultSet{
		{
			Theme:      themes.ThemeRecruitment,
			Pertinence: 0.8,
			Results: []domain.ValidatedResult{
				accepted("a", "https://exemple.fr/a", "bing", domain.SourceOrganic, 0.8),
				accepted("b", "https://exemple.fr/b", "bing", domain.SourceOrganic, 0.8),
			},
		},
		{
			Theme:      themes.ThemeEvents,
			Pertinence: 0.5,
			Results: []domain.ValidatedResult{
				accepted("c", "https://exemple.fr/c", "bing", domain.SourceOrganic, 0.5),
			},
		},
		{Theme: themes.ThemeExports},
	}

	score, conf = agg.AggregateEntity(sets)
	// Weighted mean (0.8*2 + 0.5*1)/3 = 0.7, plus 2 themes * 0.02 bonus.
	if math.Abs(score-0.74) > 1e-9 {
		t.Errorf("expected aggregate 0.74, got %.4f", score)
	}
	if conf != domain.ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", conf)
	}
}

func TestAggregateEntityCapsAtOne(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	var sets []domain.ThemeResultSet
	for _, name := range themes.NewRegistry().Names() {
		sets = append(sets, domain.ThemeResultSet{
			Theme:      name,
			Pertinence: 1.0,
			Results: []domain.ValidatedResult{
				accepted("a", "https://exemple.fr/"+name, "bing", domain.SourceOrganic, 1.0),
			},
		})
	}

	score, _ := agg.AggregateEntity(sets)
	if score != 1.0 {
		t.Errorf("aggregate score should cap at 1.0, got %.4f", score)
	}
}

func TestAggregateEntitySyntheticOnlyIsLowConfidence(t *testing.T) {
	t.Parallel()

	agg := newTestAggregator(t)
	sets := []domain.ThemeResultSet{{
		Theme:      themes.ThemeRecruitment,
		Pertinence: 0.9,
		Results: []domain.ValidatedResult{
			accepted("a", "https://veille.invalid/a", "synthetic", domain.SourceSynthetic, 0.9),
		},
	}}

	_, conf := agg.AggregateEntity(sets)
	if conf != domain.ConfidenceLow {
		t.Errorf("synthetic-only entity should be low confidence, got %s", conf)
	}
}

func TestSortSets(t *testing.T) {
	t.Parallel()

	sets := []domain.ThemeResultSet{
		{Theme: themes.ThemeSubsidies},
		{Theme: themes.ThemeEvents},
		{Theme: themes.ThemeRecruitment},
	}
	SortSets(sets)

	want := []string{themes.ThemeEvents, themes.ThemeRecruitment, themes.ThemeSubsidies}
	for i, name := range want {
		if sets[i].Theme != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, sets[i].Theme)
		}
	}
}
