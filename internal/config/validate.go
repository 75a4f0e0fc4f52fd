package config

import (
	"errors"
	"fmt"
)

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.App.Environment)
	}

	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Backends.Validate(); err != nil {
		return fmt.Errorf("backends: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Cache.Path == "" {
		return errors.New("cache: path must be specified")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache: ttl must be positive")
	}
	return nil
}

// Validate checks query planning and scoring settings.
func (s *SearchConfig) Validate() error {
	if s.MaxQueriesPerTheme < 1 || s.MaxQueriesPerTheme > 3 {
		return fmt.Errorf("max_queries_per_theme must be in [1, 3], got %d", s.MaxQueriesPerTheme)
	}
	if s.MinQueryLength >= s.MaxQueryLength {
		return fmt.Errorf("min_query_length %d must be below max_query_length %d",
			s.MinQueryLength, s.MaxQueryLength)
	}

	v := &s.Validation
	for name, val := range map[string]float64{
		"entity_match_gate": v.EntityMatchGate,
		"accept_floor":      v.AcceptFloor,
		"entity_weight":     v.EntityWeight,
	} {
		if val <= 0 || val > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, val)
		}
	}
	if v.GeoCommuneScore < v.GeoBaselineScore {
		return errors.New("geo_commune_score must not be below geo_baseline_score")
	}
	return nil
}

// Validate checks the cascade and breaker settings.
func (b *BackendsConfig) Validate() error {
	if len(b.Order) == 0 {
		return errors.New("at least one backend must be configured")
	}
	if b.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if b.InterAttemptDelayMin > b.InterAttemptDelayMax {
		return errors.New("inter_attempt_delay_min must not exceed inter_attempt_delay_max")
	}

	p := &b.Protected
	if p.DailyQuota < 1 {
		return fmt.Errorf("protected daily_quota must be positive, got %d", p.DailyQuota)
	}
	if p.MinSpacing <= 0 {
		return errors.New("protected min_spacing must be positive")
	}
	if p.CooldownBase > p.CooldownMax {
		return errors.New("protected cooldown_base must not exceed cooldown_max")
	}
	return nil
}

// Validate checks the worker pool settings.
func (p *PipelineConfig) Validate() error {
	if p.Workers < 1 || p.Workers > maxWorkers {
		return fmt.Errorf("workers must be in [1, %d], got %d", maxWorkers, p.Workers)
	}
	return nil
}
