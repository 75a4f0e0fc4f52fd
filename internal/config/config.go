// Package config provides configuration management for the research service.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/goveille/internal/logger"
)

// Default configuration values.
const (
	defaultServerAddress     = ":8070"
	defaultReadTimeoutSec    = 30
	defaultWriteTimeoutSec   = 30
	defaultIdleTimeoutSec    = 60
	defaultWorkers           = 4
	maxWorkers               = 16
	defaultCachePath         = "data/goveille.db"
	defaultCacheTTLHours     = 24
	defaultSweepMaxAgeHours  = 72
	defaultBackendTimeoutSec = 20
	defaultLogLevel          = "info"
	defaultLogEncoding       = "console"
)

// Config is the root configuration for the service.
type Config struct {
	App      AppConfig      `mapstructure:"app"      yaml:"app"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Search   SearchConfig   `mapstructure:"search"   yaml:"search"`
	Backends BackendsConfig `mapstructure:"backends" yaml:"backends"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name        string `mapstructure:"name"        yaml:"name"`
	Version     string `mapstructure:"version"     yaml:"version"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug"       yaml:"debug"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"    yaml:"level"`
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// SearchConfig holds query planning and scoring settings. Every relevance
// threshold lives here rather than in code: the operating point is an
// empirical choice, not a constant.
type SearchConfig struct {
	MaxQueriesPerTheme   int               `mapstructure:"max_queries_per_theme"  yaml:"max_queries_per_theme"`
	MinQueryLength       int               `mapstructure:"min_query_length"       yaml:"min_query_length"`
	MaxQueryLength       int               `mapstructure:"max_query_length"       yaml:"max_query_length"`
	MinSignificantTokens int               `mapstructure:"min_significant_tokens" yaml:"min_significant_tokens"`
	LocalSourceQueries   bool              `mapstructure:"local_source_queries"   yaml:"local_source_queries"`
	Validation           ValidationConfig  `mapstructure:"validation"             yaml:"validation"`
	Aggregation          AggregationConfig `mapstructure:"aggregation"            yaml:"aggregation"`
}

// ValidationConfig holds the relevance scoring thresholds and weights.
type ValidationConfig struct {
	// Minimum fraction of entity name tokens that must appear in a candidate
	EntityMatchGate float64 `mapstructure:"entity_match_gate" yaml:"entity_match_gate"`
	// Minimum final score for acceptance
	AcceptFloor float64 `mapstructure:"accept_floor" yaml:"accept_floor"`
	// Weight of the entity match score in the final score
	EntityWeight float64 `mapstructure:"entity_weight" yaml:"entity_weight"`
	// Geo score when the commune appears in the text
	GeoCommuneScore float64 `mapstructure:"geo_commune_score" yaml:"geo_commune_score"`
	// Geo score baseline when it does not
	GeoBaselineScore float64 `mapstructure:"geo_baseline_score" yaml:"geo_baseline_score"`
	// Score contribution per theme keyword hit
	ThemeKeywordWeight float64 `mapstructure:"theme_keyword_weight" yaml:"theme_keyword_weight"`
	// Cap on the theme score contribution
	ThemeScoreCap float64 `mapstructure:"theme_score_cap" yaml:"theme_score_cap"`
}

// AggregationConfig holds result aggregation weights.
type AggregationConfig struct {
	// Pertinence contribution per accepted result
	PerResultWeight float64 `mapstructure:"per_result_weight" yaml:"per_result_weight"`
	// Cap on per-theme pertinence
	PertinenceCap float64 `mapstructure:"pertinence_cap" yaml:"pertinence_cap"`
	// Entity-level bonus per distinct theme with accepted results
	DiversityBonus float64 `mapstructure:"diversity_bonus" yaml:"diversity_bonus"`
	// Cap on the total diversity bonus
	DiversityBonusCap float64 `mapstructure:"diversity_bonus_cap" yaml:"diversity_bonus_cap"`
	// Pertinence floor for the high confidence band
	HighConfidenceFloor float64 `mapstructure:"high_confidence_floor" yaml:"high_confidence_floor"`
	// Pertinence floor for the medium confidence band
	MediumConfidenceFloor float64 `mapstructure:"medium_confidence_floor" yaml:"medium_confidence_floor"`
}

// BackendsConfig holds the cascade and protective policy settings.
type BackendsConfig struct {
	// Cascade order, highest priority first
	Order []string `mapstructure:"order" yaml:"order"`
	// Per-call HTTP timeout
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Jittered delay bounds between successive backend attempts
	InterAttemptDelayMin time.Duration `mapstructure:"inter_attempt_delay_min" yaml:"inter_attempt_delay_min"`
	InterAttemptDelayMax time.Duration `mapstructure:"inter_attempt_delay_max" yaml:"inter_attempt_delay_max"`
	// Cooldown applied to a backend after a 429/403 response
	BlockCooldown time.Duration `mapstructure:"block_cooldown" yaml:"block_cooldown"`
	// Protected backend circuit breaker settings
	Protected ProtectedConfig `mapstructure:"protected" yaml:"protected"`
}

// ProtectedConfig configures the circuit breaker around the fragile,
// high-value backend.
type ProtectedConfig struct {
	// Backend name the breaker applies to
	Name string `mapstructure:"name" yaml:"name"`
	// Rolling 24h call quota
	DailyQuota int `mapstructure:"daily_quota" yaml:"daily_quota"`
	// Minimum spacing between calls
	MinSpacing time.Duration `mapstructure:"min_spacing" yaml:"min_spacing"`
	// Cooldown per consecutive failure
	CooldownBase time.Duration `mapstructure:"cooldown_base" yaml:"cooldown_base"`
	// Cooldown ceiling
	CooldownMax time.Duration `mapstructure:"cooldown_max" yaml:"cooldown_max"`
	// Adaptive delay bounds before each call
	BaseDelayMin time.Duration `mapstructure:"base_delay_min" yaml:"base_delay_min"`
	BaseDelayMax time.Duration `mapstructure:"base_delay_max" yaml:"base_delay_max"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	// SQLite database path
	Path string `mapstructure:"path" yaml:"path"`
	// Entry time-to-live
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
	// Entries older than this are removed by the periodic sweep
	SweepMaxAge time.Duration `mapstructure:"sweep_max_age" yaml:"sweep_max_age"`
}

// PipelineConfig holds the entity worker pool settings.
type PipelineConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"       yaml:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
}

// Load unmarshals the configuration from the given viper instance, applies
// defaults and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	// Boolean default lives on the viper side so an explicit false in the
	// config file still wins over the default.
	v.SetDefault("search.local_source_queries", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults fills zero-valued fields with production defaults.
func SetDefaults(cfg *Config) {
	setAppDefaults(&cfg.App)
	setLoggingDefaults(&cfg.Logging)
	setSearchDefaults(&cfg.Search)
	setBackendsDefaults(&cfg.Backends)
	setCacheDefaults(&cfg.Cache)
	setPipelineDefaults(&cfg.Pipeline)
	setServerDefaults(&cfg.Server)
}

func setAppDefaults(a *AppConfig) {
	if a.Name == "" {
		a.Name = "goveille"
	}
	if a.Version == "" {
		a.Version = "0.1.0"
	}
	if a.Environment == "" {
		a.Environment = "development"
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Encoding == "" {
		l.Encoding = defaultLogEncoding
	}
}

func setSearchDefaults(s *SearchConfig) {
	if s.MaxQueriesPerTheme == 0 {
		s.MaxQueriesPerTheme = 3
	}
	if s.MinQueryLength == 0 {
		s.MinQueryLength = 10
	}
	if s.MaxQueryLength == 0 {
		s.MaxQueryLength = 100
	}
	if s.MinSignificantTokens == 0 {
		s.MinSignificantTokens = 2
	}

	v := &s.Validation
	if v.EntityMatchGate == 0 {
		v.EntityMatchGate = 0.7
	}
	if v.AcceptFloor == 0 {
		v.AcceptFloor = 0.3
	}
	if v.EntityWeight == 0 {
		v.EntityWeight = 0.6
	}
	if v.GeoCommuneScore == 0 {
		v.GeoCommuneScore = 0.5
	}
	if v.GeoBaselineScore == 0 {
		v.GeoBaselineScore = 0.3
	}
	if v.ThemeKeywordWeight == 0 {
		v.ThemeKeywordWeight = 0.2
	}
	if v.ThemeScoreCap == 0 {
		v.ThemeScoreCap = 0.4
	}

	a := &s.Aggregation
	if a.PerResultWeight == 0 {
		a.PerResultWeight = 0.3
	}
	if a.PertinenceCap == 0 {
		a.PertinenceCap = 1.0
	}
	if a.DiversityBonus == 0 {
		a.DiversityBonus = 0.02
	}
	if a.DiversityBonusCap == 0 {
		a.DiversityBonusCap = 0.1
	}
	if a.HighConfidenceFloor == 0 {
		a.HighConfidenceFloor = 0.6
	}
	if a.MediumConfidenceFloor == 0 {
		a.MediumConfidenceFloor = 0.3
	}
}

func setBackendsDefaults(b *BackendsConfig) {
	if len(b.Order) == 0 {
		b.Order = []string{"duckduckgo", "bing", "google"}
	}
	if b.Timeout == 0 {
		b.Timeout = defaultBackendTimeoutSec * time.Second
	}
	if b.InterAttemptDelayMin == 0 {
		b.InterAttemptDelayMin = 2 * time.Second
	}
	if b.InterAttemptDelayMax == 0 {
		b.InterAttemptDelayMax = 5 * time.Second
	}
	if b.BlockCooldown == 0 {
		b.BlockCooldown = 10 * time.Minute
	}

	p := &b.Protected
	if p.Name == "" {
		p.Name = "google"
	}
	if p.DailyQuota == 0 {
		p.DailyQuota = 50
	}
	if p.MinSpacing == 0 {
		p.MinSpacing = 30 * time.Second
	}
	if p.CooldownBase == 0 {
		p.CooldownBase = 30 * time.Minute
	}
	if p.CooldownMax == 0 {
		p.CooldownMax = 4 * time.Hour
	}
	if p.BaseDelayMin == 0 {
		p.BaseDelayMin = 15 * time.Second
	}
	if p.BaseDelayMax == 0 {
		p.BaseDelayMax = 25 * time.Second
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.Path == "" {
		c.Path = defaultCachePath
	}
	if c.TTL == 0 {
		c.TTL = defaultCacheTTLHours * time.Hour
	}
	if c.SweepMaxAge == 0 {
		c.SweepMaxAge = defaultSweepMaxAgeHours * time.Hour
	}
}

func setPipelineDefaults(p *PipelineConfig) {
	if p.Workers == 0 {
		p.Workers = defaultWorkers
	}
}

func setServerDefaults(s *ServerConfig) {
	if s.Address == "" {
		s.Address = defaultServerAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = defaultReadTimeoutSec * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = defaultWriteTimeoutSec * time.Second
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = defaultIdleTimeoutSec * time.Second
	}
}

// LoggerConfig converts the logging section for the logger package.
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:       logger.Level(c.Logging.Level),
		Development: c.App.Environment == "development",
		Encoding:    c.Logging.Encoding,
	}
}
