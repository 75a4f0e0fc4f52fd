package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/jonesrussell/goveille/internal/aggregator"
	"github.com/jonesrussell/goveille/internal/backends"
	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/logger"
	"github.com/jonesrussell/goveille/internal/metrics"
	"github.com/jonesrussell/goveille/internal/planner"
	"github.com/jonesrussell/goveille/internal/sitecheck"
	"github.com/jonesrussell/goveille/internal/themes"
	"github.com/jonesrussell/goveille/internal/validator"
)

// fakeRunner serves one canned candidate per query, naming the entity so
// validation accepts it.
type fakeRunner struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	makeResult  func(query domain.SearchQuery) backends.Result
}

func (f *fakeRunner) Run(_ context.Context, query domain.SearchQuery) backends.Result {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	build := f.makeResult
	f.mu.Unlock()

	result := build(query)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return result
}

func relevantResult(query domain.SearchQuery) backends.Result {
	return backends.Result{
		Backend:  "duckduckgo",
		Attempts: 1,
		Candidates: []domain.Candidate{{
			ID:      "c-" + query.Text,
			Title:   "CARREFOUR recrute 50 personnes en CDI",
			Snippet: "L'entreprise Carrefour annonce un recrutement.",
			URL:     "https://actu.fr/" + query.Theme,
			Backend: "duckduckgo",
			Source:  domain.SourceOrganic,
		}},
	}
}

func newTestPipeline(t *testing.T, runner SearchRunner, opts ...Option) *Pipeline {
	t.Helper()
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	registry := themes.NewRegistry()
	log := logger.NewNoOp()
	return New(
		&cfg.Pipeline,
		registry,
		planner.New(&cfg.Search, registry, log),
		runner,
		validator.New(cfg.Search.Validation, registry),
		aggregator.New(cfg.Search.Aggregation),
		log,
		metrics.New(),
		opts...,
	)
}

func TestRunProcessesBatchInInputOrder(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{makeResult: relevantResult}
	p := newTestPipeline(t, runner)

	entities := []domain.Entity{
		{ID: "e1", Name: "CARREFOUR", Commune: "Boulogne-Billancourt"},
		{ID: "e2", Name: "MADAME X Y"},
		{ID: "e3", Name: "CARREFOUR", Commune: "Boulogne-Billancourt"},
	}

	report := p.Run(context.Background(), entities)

	if report.RunID == "" {
		t.Error("expected a run id")
	}
	if len(report.Reports) != 3 {
		t.Fatalf("expected 3 entity reports, got %d", len(report.Reports))
	}
	for i, want := range []string{"e1", "e2", "e3"} {
		if report.Reports[i].Entity.ID != want {
			t.Errorf("position %d: expected entity %s, got %s", i, want, report.Reports[i].Entity.ID)
		}
	}
	if report.NotSearchable != 1 {
		t.Errorf("expected 1 not-searchable entity, got %d", report.NotSearchable)
	}
	if report.TotalValidated == 0 {
		t.Error("expected validated results across the batch")
	}
}

func TestRunNotSearchableEntityGetsEmptySets(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{makeResult: relevantResult}
	p := newTestPipeline(t, runner)

	report := p.Run(context.Background(), []domain.Entity{{ID: "e1", Name: "MADAME X Y"}})

	entity := report.Reports[0]
	names := themes.NewRegistry().Names()
	if len(entity.ThemeSets) != len(names) {
		t.Fatalf("expected %d theme sets, got %d", len(names), len(entity.ThemeSets))
	}
	for i, set := range entity.ThemeSets {
		if set.Theme != names[i] {
			t.Errorf("position %d: expected theme %s, got %s", i, names[i], set.Theme)
		}
		if len(set.Results) != 0 {
			t.Errorf("theme %s: expected no results", set.Theme)
		}
		if set.Confidence != domain.ConfidenceLow {
			t.Errorf("theme %s: expected low confidence", set.Theme)
		}
	}
	if entity.Stats.QueriesPlanned != 0 {
		t.Errorf("expected no planned queries, got %d", entity.Stats.QueriesPlanned)
	}
	if entity.AggregateScore != 0 {
		t.Errorf("expected zero aggregate score, got %.2f", entity.AggregateScore)
	}
}

func TestRunCollectsStats(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{makeResult: relevantResult}
	p := newTestPipeline(t, runner)

	report := p.Run(context.Background(), []domain.Entity{
		{ID: "e1", Name: "CARREFOUR", Commune: "Boulogne-Billancourt"},
	})

	stats := report.Reports[0].Stats
	if stats.QueriesPlanned == 0 {
		t.Error("expected planned queries")
	}
	if stats.BackendsTried < stats.QueriesPlanned {
		t.Errorf("expected at least one backend attempt per query, got %d for %d queries",
			stats.BackendsTried, stats.QueriesPlanned)
	}
	if stats.WinningBackend != "duckduckgo" {
		t.Errorf("expected winning backend duckduckgo, got %q", stats.WinningBackend)
	}
	if stats.Validated == 0 {
		t.Error("expected validated candidates")
	}
	if stats.UsedSynthetic {
		t.Error("synthetic flag should be unset when a backend answered")
	}
	if stats.Duration < 0 {
		t.Error("expected a non-negative duration")
	}
}

func TestRunSyntheticOnlyEntityIsLowConfidence(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{makeResult: func(query domain.SearchQuery) backends.Result {
		return backends.Result{
			Backend:   "synthetic",
			Synthetic: true,
			Attempts:  3,
			Candidates: []domain.Candidate{{
				Title:   "CARREFOUR recrutement entreprise",
				Snippet: "resultat de substitution",
				URL:     "https://veille.invalid/a",
				Backend: "synthetic",
				Source:  domain.SourceSynthetic,
			}},
		}
	}}
	p := newTestPipeline(t, runner)

	report := p.Run(context.Background(), []domain.Entity{
		{ID: "e1", Name: "CARREFOUR", Commune: "Boulogne-Billancourt"},
	})

	entity := report.Reports[0]
	if !entity.Stats.UsedSynthetic {
		t.Error("expected the synthetic flag to be set")
	}
	if entity.Stats.WinningBackend != "" {
		t.Errorf("no real backend won, got %q", entity.Stats.WinningBackend)
	}
	if entity.Confidence != domain.ConfidenceLow {
		t.Errorf("synthetic-only entity should be low confidence, got %s", entity.Confidence)
	}
}

type fakeSiteChecker struct {
	findings []sitecheck.Finding
	err      error
}

func (f *fakeSiteChecker) Check(context.Context, *domain.Entity) ([]sitecheck.Finding, error) {
	return f.findings, f.err
}

func TestRunMergesSiteFindings(t *testing.T) {
	t.Parallel()

	site := &fakeSiteChecker{findings: []sitecheck.Finding{{
		Theme: themes.ThemeRecruitment,
		Candidate: domain.Candidate{
			Title:   "CARREFOUR - offres emploi",
			Snippet: "carrefour recrutement entreprise cdi",
			URL:     "https://carrefour.fr/recrutement",
			Backend: "site_officiel",
			Source:  domain.SourceOfficialSite,
		},
	}}}
	runner := &fakeRunner{makeResult: func(domain.SearchQuery) backends.Result {
		return backends.Result{Backend: "duckduckgo", Attempts: 1}
	}}
	p := newTestPipeline(t, runner, WithSiteChecker(site))

	report := p.Run(context.Background(), []domain.Entity{
		{ID: "e1", Name: "CARREFOUR", Commune: "Boulogne-Billancourt", Website: "https://carrefour.fr"},
	})

	var recruitment domain.ThemeResultSet
	for _, set := range report.Reports[0].ThemeSets {
		if set.Theme == themes.ThemeRecruitment {
			recruitment = set
		}
	}
	if len(recruitment.Results) != 1 {
		t.Fatalf("expected the site finding in the recruitment set, got %d results", len(recruitment.Results))
	}
	if recruitment.Results[0].Candidate.Source != domain.SourceOfficialSite {
		t.Errorf("expected an official-site result, got %s", recruitment.Results[0].Candidate.Source)
	}
}

func TestRunSiteFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	site := &fakeSiteChecker{err: errors.New("site unreachable")}
	runner := &fakeRunner{makeResult: relevantResult}
	p := newTestPipeline(t, runner, WithSiteChecker(site))

	report := p.Run(context.Background(), []domain.Entity{
		{ID: "e1", Name: "CARREFOUR", Commune: "Boulogne-Billancourt", Website: "https://carrefour.fr"},
	})

	if report.Reports[0].Stats.Validated == 0 {
		t.Error("search results should survive a site analysis failure")
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{makeResult: relevantResult}
	p := newTestPipeline(t, runner)

	faker := gofakeit.New(42)
	entities := make([]domain.Entity, 20)
	for i := range entities {
		entities[i] = domain.Entity{
			ID:      faker.UUID(),
			Name:    strings.ToUpper(faker.Company()),
			Commune: faker.City(),
		}
	}
	p.Run(context.Background(), entities)

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.maxInFlight > 4 {
		t.Errorf("expected at most 4 concurrent searches, observed %d", runner.maxInFlight)
	}
	if runner.calls == 0 {
		t.Error("expected backend calls")
	}
}
