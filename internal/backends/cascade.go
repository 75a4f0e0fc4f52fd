package backends

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jonesrussell/goveille/internal/cache"
	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/domain"
	"github.com/jonesrussell/goveille/internal/logger"
	"github.com/jonesrussell/goveille/internal/metrics"
	"github.com/jonesrussell/goveille/internal/urlnorm"
)

// maxCandidatesPerQuery bounds what one backend response contributes.
const maxCandidatesPerQuery = 10

// ResponseStore is the slice of the cache the cascade needs.
type ResponseStore interface {
	Get(key string) (payload []byte, backend string, hit bool, err error)
	Put(key, backend string, payload []byte) error
}

// Result is the outcome of running one query through the cascade.
type Result struct {
	// Normalized candidates, never nil for a successful run
	Candidates []domain.Candidate
	// Backend that produced them, "synthetic" for fallback output
	Backend string
	// Whether the response came from the cache
	FromCache bool
	// Whether the fallback generator produced the candidates
	Synthetic bool
	// Backends tried for this query, zero on a cache hit
	Attempts int
}

// Cascade tries backends in fixed priority order until one yields
// candidates, consulting the response cache first and falling back to the
// synthetic generator when the whole chain fails. It never returns an
// error: resilience failures degrade, they do not propagate.
type Cascade struct {
	cfg      *config.BackendsConfig
	backends []Backend
	breaker  *Breaker
	states   *StateRegistry
	store    ResponseStore
	fallback *Synthetic
	clock    Clock
	logger   logger.Interface
	metrics  *metrics.Metrics
}

// NewCascade wires the cascade. The backend slice must be non-empty and in
// priority order; the breaker guards the backend named by cfg.Protected.
func NewCascade(
	cfg *config.BackendsConfig,
	ordered []Backend,
	states *StateRegistry,
	store ResponseStore,
	clock Clock,
	log logger.Interface,
	m *metrics.Metrics,
) (*Cascade, error) {
	if len(ordered) == 0 {
		return nil, ErrNoBackends
	}
	return &Cascade{
		cfg:      cfg,
		backends: ordered,
		breaker:  NewBreaker(cfg.Protected),
		states:   states,
		store:    store,
		fallback: NewSynthetic(),
		clock:    clock,
		logger:   log.WithComponent("cascade"),
		metrics:  m,
	}, nil
}

// Breaker exposes the protected backend's breaker for diagnostics.
func (c *Cascade) Breaker() *Breaker {
	return c.breaker
}

// Run executes one query against the chain.
func (c *Cascade) Run(ctx context.Context, query domain.SearchQuery) Result {
	key := cache.Key(query.Text)

	if result, ok := c.fromCache(key); ok {
		return result
	}

	attempts := 0
	for i, backend := range c.backends {
		if i > 0 {
			delay := jitterBetween(c.cfg.InterAttemptDelayMin, c.cfg.InterAttemptDelayMax)
			if err := c.clock.Sleep(ctx, delay); err != nil {
				break
			}
		}
		attempts++

		candidates, ok := c.tryBackend(ctx, backend, query)
		if !ok || len(candidates) == 0 {
			continue
		}

		c.cacheCandidates(key, backend.Name(), candidates)
		return Result{Candidates: candidates, Backend: backend.Name(), Attempts: attempts}
	}

	result := c.synthetic(ctx, query)
	result.Attempts = attempts
	return result
}

// fromCache serves a previous response when one is still fresh.
func (c *Cascade) fromCache(key string) (Result, bool) {
	payload, backendName, hit, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("Cache read failed", "error", err)
		return Result{}, false
	}
	if !hit {
		c.metrics.CacheMisses.Inc()
		return Result{}, false
	}

	var candidates []domain.Candidate
	if err := json.Unmarshal(payload, &candidates); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", "error", err)
		return Result{}, false
	}

	c.metrics.CacheHits.Inc()
	return Result{Candidates: candidates, Backend: backendName, FromCache: true}, true
}

// tryBackend runs one adapter under the protective policy. The bool reports
// whether the call was attempted and did not fail.
func (c *Cascade) tryBackend(ctx context.Context, backend Backend, query domain.SearchQuery) ([]domain.Candidate, bool) {
	name := backend.Name()
	now := c.clock.Now()

	if c.states.OnCooldown(name, now) {
		c.metrics.BackendCalls.WithLabelValues(name, metrics.OutcomeRefused).Inc()
		return nil, false
	}

	protected := name == c.cfg.Protected.Name
	if protected {
		if err := c.breaker.Allow(now); err != nil {
			c.logger.Debug("Protected backend refused", "backend", name, "reason", err)
			c.metrics.BackendCalls.WithLabelValues(name, metrics.OutcomeRefused).Inc()
			return nil, false
		}
		if err := c.clock.Sleep(ctx, c.breaker.Delay()); err != nil {
			return nil, false
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	raw, err := backend.Search(callCtx, query)
	cancel()

	if err != nil {
		c.recordFailure(backend, protected, err)
		return nil, false
	}

	c.states.RecordSuccess(name, c.clock.Now())
	if protected {
		c.breaker.RecordSuccess()
	}
	c.metrics.BackendCalls.WithLabelValues(name, metrics.OutcomeSuccess).Inc()

	return c.normalize(raw, query, name), true
}

// recordFailure routes an adapter error into cooldown and breaker state.
func (c *Cascade) recordFailure(backend Backend, protected bool, err error) {
	name := backend.Name()
	now := c.clock.Now()
	c.states.RecordFailure(name, now)

	var blocked *BlockedError
	switch {
	case errors.As(err, &blocked):
		cooldown := c.cfg.BlockCooldown
		if protected {
			cooldown = c.breaker.RecordBlocked(now)
		}
		c.states.SetCooldown(name, now.Add(cooldown))
		c.metrics.BackendCalls.WithLabelValues(name, metrics.OutcomeBlocked).Inc()
		c.logger.Warn("Backend blocked, cooling down",
			"backend", name,
			"status", blocked.StatusCode,
			"cooldown", cooldown,
		)
	case isParseError(err):
		if protected {
			c.breaker.RecordFailure()
		}
		c.metrics.BackendCalls.WithLabelValues(name, metrics.OutcomeParse).Inc()
		c.logger.Warn("Backend response unparseable", "backend", name, "error", err)
	default:
		if protected {
			c.breaker.RecordFailure()
		}
		c.metrics.BackendCalls.WithLabelValues(name, metrics.OutcomeNetwork).Inc()
		c.logger.Warn("Backend unreachable", "backend", name, "error", err)
	}
}

func isParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// synthetic produces the tagged fallback candidates.
func (c *Cascade) synthetic(ctx context.Context, query domain.SearchQuery) Result {
	raw, _ := c.fallback.Search(ctx, query)
	candidates := c.normalize(raw, query, c.fallback.Name())
	for i := range candidates {
		candidates[i].Source = domain.SourceSynthetic
	}

	c.metrics.SyntheticFallbacks.Inc()
	c.logger.Info("All backends failed, serving synthetic candidates",
		"query", query.Text,
		"count", len(candidates),
	)
	return Result{Candidates: candidates, Backend: c.fallback.Name(), Synthetic: true}
}

// normalize is the single ingestion boundary: trims fields, drops entries
// without a title or an absolute http(s) URL, stamps identity and
// provenance. Downstream stages never see an ambiguous shape.
func (c *Cascade) normalize(raw []domain.Candidate, query domain.SearchQuery, backendName string) []domain.Candidate {
	source := query.SourceHint
	if source == "" {
		source = domain.SourceOrganic
	}

	now := c.clock.Now()
	out := make([]domain.Candidate, 0, len(raw))
	for _, cand := range raw {
		title := strings.TrimSpace(cand.Title)
		rawURL := strings.TrimSpace(cand.URL)
		if title == "" || rawURL == "" {
			continue
		}
		parsed, err := url.Parse(rawURL)
		if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			continue
		}

		cand.ID = uuid.NewString()
		cand.Title = title
		cand.URL = urlnorm.Canonical(parsed.String())
		cand.Snippet = strings.TrimSpace(cand.Snippet)
		cand.Backend = backendName
		cand.Source = source
		cand.RetrievedAt = now

		out = append(out, cand)
		if len(out) == maxCandidatesPerQuery {
			break
		}
	}
	return out
}

// cacheCandidates stores a winning response. Synthetic output is never
// cached so a recovered backend replaces it on the next run.
func (c *Cascade) cacheCandidates(key, backendName string, candidates []domain.Candidate) {
	payload, err := json.Marshal(candidates)
	if err != nil {
		c.logger.Warn("Could not encode candidates for cache", "error", err)
		return
	}
	if err := c.store.Put(key, backendName, payload); err != nil {
		c.logger.Warn("Cache write failed", "error", err)
	}
}
