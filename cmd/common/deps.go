// Package common provides shared wiring for command implementations.
package common

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/goveille/internal/config"
	"github.com/jonesrussell/goveille/internal/logger"
)

var (
	// ErrLoggerRequired is returned when Deps.Logger is nil.
	ErrLoggerRequired = errors.New("logger is required")
	// ErrConfigRequired is returned when Deps.Config is nil.
	ErrConfigRequired = errors.New("config is required")
)

// Deps holds the dependencies every command starts from. Use this instead
// of context.Value for type-safe dependency injection.
type Deps struct {
	Logger logger.Interface
	Config *config.Config
}

// Validate ensures all required dependencies are present.
func (d Deps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	return nil
}

// NewDeps loads the configuration from viper and creates the logger.
func NewDeps() (Deps, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return Deps{}, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return Deps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := Deps{Logger: log, Config: cfg}
	if validateErr := deps.Validate(); validateErr != nil {
		return Deps{}, fmt.Errorf("validate deps: %w", validateErr)
	}
	return deps, nil
}
