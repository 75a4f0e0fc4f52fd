// Package pipeline orchestrates a research run: a bounded worker pool over
// entities, each walking planner → cascade → validator → aggregator for
// every theme. One entity failing never aborts the batch.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

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

// SearchRunner executes one query against the backend chain.
type SearchRunner interface {
	Run(ctx context.Context, query domain.SearchQuery) backends.Result
}

// SiteChecker scans an entity's official website for theme signals.
type SiteChecker interface {
	Check(ctx context.Context, entity *domain.Entity) ([]sitecheck.Finding, error)
}

// Pipeline runs the full research flow over a batch of entities.
type Pipeline struct {
	cfg        *config.PipelineConfig
	registry   *themes.Registry
	planner    *planner.Planner
	cascade    SearchRunner
	validator  *validator.Validator
	aggregator *aggregator.Aggregator
	site       SiteChecker
	log        logger.Interface
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithSiteChecker enables official-website analysis for entities that
// carry a website.
func WithSiteChecker(site SiteChecker) Option {
	return func(p *Pipeline) { p.site = site }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New wires a pipeline from its stages.
func New(
	cfg *config.PipelineConfig,
	registry *themes.Registry,
	pl *planner.Planner,
	cascade SearchRunner,
	v *validator.Validator,
	agg *aggregator.Aggregator,
	log logger.Interface,
	m *metrics.Metrics,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		registry:   registry,
		planner:    pl,
		cascade:    cascade,
		validator:  v,
		aggregator: agg,
		log:        log.WithComponent("pipeline"),
		metrics:    m,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every entity through a bounded worker pool and assembles
// the run report. Reports keep the input order regardless of completion
// order.
func (p *Pipeline) Run(ctx context.Context, entities []domain.Entity) *domain.RunReport {
	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
		Reports:   make([]domain.EntityReport, len(entities)),
	}
	log := p.log.WithRunID(report.RunID)
	log.Info("research run started",
		"entities", len(entities),
		"workers", p.cfg.Workers,
	)

	sem := make(chan struct{}, p.cfg.Workers)
	var wg sync.WaitGroup
	for i := range entities {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			report.Reports[idx] = p.processEntity(ctx, &entities[idx], log)
		}(i)
	}
	wg.Wait()

	for i := range report.Reports {
		r := &report.Reports[i]
		if r.Stats.QueriesPlanned == 0 {
			report.NotSearchable++
		}
		report.TotalValidated += r.Stats.Validated
		report.TotalRejected += r.Stats.Rejected
	}
	report.FinishedAt = p.now().UTC()

	log.WithDuration(report.FinishedAt.Sub(report.StartedAt)).Info("research run finished",
		"validated", report.TotalValidated,
		"rejected", report.TotalRejected,
		"not_searchable", report.NotSearchable,
	)
	return report
}

// processEntity walks every theme for one entity. It always returns a
// complete report with one result set per theme, empty when nothing was
// found or the entity is not searchable.
func (p *Pipeline) processEntity(ctx context.Context, entity *domain.Entity, log logger.Interface) domain.EntityReport {
	start := p.now()
	log = log.WithEntity(entity.Name)

	report := domain.EntityReport{Entity: *entity}
	siteFindings := p.checkSite(ctx, entity, log)

	searchable := true
	for _, theme := range p.registry.All() {
		set, stats := p.processTheme(ctx, entity, theme, siteFindings[theme.Name], &searchable)
		report.ThemeSets = append(report.ThemeSets, set)
		report.Stats.QueriesPlanned += stats.QueriesPlanned
		report.Stats.BackendsTried += stats.BackendsTried
		report.Stats.RawCandidates += stats.RawCandidates
		report.Stats.Validated += stats.Validated
		report.Stats.Rejected += stats.Rejected
		report.Stats.CacheHits += stats.CacheHits
		if stats.UsedSynthetic {
			report.Stats.UsedSynthetic = true
		}
		if report.Stats.WinningBackend == "" {
			report.Stats.WinningBackend = stats.WinningBackend
		}
		if !searchable {
			report.ThemeSets = emptySets(p.registry)
			break
		}
	}

	aggregator.SortSets(report.ThemeSets)
	report.AggregateScore, report.Confidence = p.aggregator.AggregateEntity(report.ThemeSets)
	report.Stats.Duration = p.now().Sub(start)

	p.metrics.EntitiesProcessed.Inc()
	p.metrics.EntityDuration.Observe(report.Stats.Duration.Seconds())
	log.WithDuration(report.Stats.Duration).Debug("entity processed",
		"aggregate_score", report.AggregateScore,
		"confidence", report.Confidence,
		"validated", report.Stats.Validated,
	)
	return report
}

// processTheme plans, searches and validates one theme for one entity.
func (p *Pipeline) processTheme(
	ctx context.Context,
	entity *domain.Entity,
	theme themes.Theme,
	siteCandidates []domain.Candidate,
	searchable *bool,
) (domain.ThemeResultSet, domain.EntityStats) {
	var stats domain.EntityStats

	queries, err := p.planner.Plan(entity, theme)
	if err != nil {
		*searchable = false
		return domain.ThemeResultSet{Theme: theme.Name, Confidence: domain.ConfidenceLow}, stats
	}
	stats.QueriesPlanned = len(queries)

	var validated []domain.ValidatedResult
	for _, query := range queries {
		result := p.cascade.Run(ctx, query)
		stats.BackendsTried += result.Attempts
		if result.FromCache {
			stats.CacheHits++
		}
		if result.Synthetic {
			stats.UsedSynthetic = true
		} else if stats.WinningBackend == "" {
			stats.WinningBackend = result.Backend
		}

		stats.RawCandidates += len(result.Candidates)
		for _, cand := range result.Candidates {
			validated = append(validated, p.validate(cand, entity, theme.Name, &stats))
		}
	}

	stats.RawCandidates += len(siteCandidates)
	for _, cand := range siteCandidates {
		validated = append(validated, p.validate(cand, entity, theme.Name, &stats))
	}

	return p.aggregator.AggregateTheme(theme.Name, queries, validated), stats
}

// validate scores one candidate and records the decision. Rejections are
// normal outcomes, kept for auditability rather than dropped.
func (p *Pipeline) validate(cand domain.Candidate, entity *domain.Entity, theme string, stats *domain.EntityStats) domain.ValidatedResult {
	result := p.validator.Validate(cand, entity, theme)
	if result.Accepted {
		stats.Validated++
		p.metrics.ValidationDecisions.WithLabelValues("accepted").Inc()
	} else {
		stats.Rejected++
		p.metrics.ValidationDecisions.WithLabelValues(string(result.Reason)).Inc()
	}
	return result
}

// checkSite runs the official-website analyzer when configured, grouping
// findings by theme. Site failures degrade to an empty map.
func (p *Pipeline) checkSite(ctx context.Context, entity *domain.Entity, log logger.Interface) map[string][]domain.Candidate {
	if p.site == nil || !entity.HasWebsite() {
		return nil
	}

	findings, err := p.site.Check(ctx, entity)
	if err != nil {
		log.WithError(err).Debug("official site analysis failed")
		return nil
	}

	byTheme := make(map[string][]domain.Candidate, len(findings))
	for _, f := range findings {
		byTheme[f.Theme] = append(byTheme[f.Theme], f.Candidate)
	}
	return byTheme
}

func emptySets(registry *themes.Registry) []domain.ThemeResultSet {
	var sets []domain.ThemeResultSet
	for _, theme := range registry.All() {
		sets = append(sets, domain.ThemeResultSet{Theme: theme.Name, Confidence: domain.ConfidenceLow})
	}
	return sets
}
