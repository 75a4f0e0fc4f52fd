package common

import (
	"fmt"
	"net/http"

	"github.com/jonesrussell/goveille/internal/aggregator"
	"github.com/jonesrussell/goveille/internal/backends"
	"github.com/jonesrussell/goveille/internal/cache"
	"github.com/jonesrussell/goveille/internal/metrics"
	"github.com/jonesrussell/goveille/internal/pipeline"
	"github.com/jonesrussell/goveille/internal/planner"
	"github.com/jonesrussell/goveille/internal/sitecheck"
	"github.com/jonesrussell/goveille/internal/themes"
	"github.com/jonesrussell/goveille/internal/validator"
)

// Stack bundles the assembled research pipeline with the pieces commands
// inspect directly (cache, backend state, metrics).
type Stack struct {
	Pipeline *pipeline.Pipeline
	Cache    *cache.Store
	States   *backends.StateRegistry
	Cascade  *backends.Cascade
	Metrics  *metrics.Metrics
}

// Close releases the stack's resources.
func (s *Stack) Close() error {
	return s.Cache.Close()
}

// NewStack wires the full research stack from loaded dependencies. A cache
// that cannot be opened or an empty backend chain is fatal; everything past
// construction degrades instead of failing.
func NewStack(deps Deps) (*Stack, error) {
	cfg := deps.Config

	store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}

	chain, err := buildChain(cfg.Backends.Order)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	m := metrics.New()
	states := backends.NewStateRegistry()
	cascade, err := backends.NewCascade(
		&cfg.Backends,
		chain,
		states,
		store,
		backends.NewClock(),
		deps.Logger,
		m,
	)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build backend cascade: %w", err)
	}

	registry := themes.NewRegistry()
	p := pipeline.New(
		&cfg.Pipeline,
		registry,
		planner.New(&cfg.Search, registry, deps.Logger),
		cascade,
		validator.New(cfg.Search.Validation, registry),
		aggregator.New(cfg.Search.Aggregation),
		deps.Logger,
		m,
		pipeline.WithSiteChecker(sitecheck.New(registry, deps.Logger)),
	)

	return &Stack{
		Pipeline: p,
		Cache:    store,
		States:   states,
		Cascade:  cascade,
		Metrics:  m,
	}, nil
}

// buildChain instantiates backend adapters in the configured priority order.
func buildChain(order []string) ([]backends.Backend, error) {
	client := &http.Client{}
	var chain []backends.Backend
	for _, name := range order {
		switch name {
		case "duckduckgo":
			chain = append(chain, backends.NewDuckDuckGo(client))
		case "bing":
			chain = append(chain, backends.NewBing(client))
		case "google":
			chain = append(chain, backends.NewGoogle(client))
		default:
			return nil, fmt.Errorf("unknown backend %q in cascade order", name)
		}
	}
	if len(chain) == 0 {
		return nil, backends.ErrNoBackends
	}
	return chain, nil
}
