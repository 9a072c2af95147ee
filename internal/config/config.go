// Package config loads the solve configuration from defaults, an optional
// YAML file and CACHEPLAN_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cachecast/cache-placement-optimizer/internal/logger"
	"github.com/cachecast/cache-placement-optimizer/internal/solver"
)

// Config is passed explicitly into the build/solve pipeline; nothing here is
// global mutable state.
type Config struct {
	// GapTolerance is the relative optimality gap the solver may stop at.
	GapTolerance float64 `mapstructure:"gap_tolerance"`

	// Backend selects the solver backend ("highs" or "enumerate").
	Backend string `mapstructure:"backend"`

	// ExportPath, when set, dumps the built model there before solving.
	ExportPath string `mapstructure:"export_path"`

	// TimeLimit bounds solver wall time. Zero means unlimited.
	TimeLimit time.Duration `mapstructure:"time_limit"`

	// Verbose enables debug logging and backend-native progress output.
	Verbose bool `mapstructure:"verbose"`
}

// DefaultGapTolerance accepts solutions provably within 0.5% of the optimum.
const DefaultGapTolerance = 5e-3

// Load reads configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("gap_tolerance", DefaultGapTolerance)
	v.SetDefault("backend", solver.BackendHighs)
	v.SetDefault("export_path", "")
	v.SetDefault("time_limit", time.Duration(0))
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("CACHEPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Log.Debug("Configuration loaded",
		"backend", cfg.Backend,
		"gapTolerance", cfg.GapTolerance,
		"timeLimit", cfg.TimeLimit,
		"exportPath", cfg.ExportPath)
	return &cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.GapTolerance < 0 {
		return fmt.Errorf("gap tolerance must be nonnegative, got %v", c.GapTolerance)
	}
	if c.Backend != solver.BackendHighs && c.Backend != solver.BackendEnumerate {
		return fmt.Errorf("unknown solver backend %q", c.Backend)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("time limit must be nonnegative, got %v", c.TimeLimit)
	}
	return nil
}
