package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultGapTolerance, cfg.GapTolerance)
	assert.Equal(t, "highs", cfg.Backend)
	assert.Empty(t, cfg.ExportPath)
	assert.Zero(t, cfg.TimeLimit)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"gap_tolerance: 0.01\nbackend: enumerate\ntime_limit: 30s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.GapTolerance)
	assert.Equal(t, "enumerate", cfg.Backend)
	assert.Equal(t, 30*time.Second, cfg.TimeLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CACHEPLAN_BACKEND", "enumerate")
	t.Setenv("CACHEPLAN_GAP_TOLERANCE", "0.02")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "enumerate", cfg.Backend)
	assert.Equal(t, 0.02, cfg.GapTolerance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "negative gap", mutate: func(c *Config) { c.GapTolerance = -0.1 }, wantErr: true},
		{name: "zero gap is allowed", mutate: func(c *Config) { c.GapTolerance = 0 }},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "cplex" }, wantErr: true},
		{name: "negative time limit", mutate: func(c *Config) { c.TimeLimit = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{GapTolerance: DefaultGapTolerance, Backend: "highs"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
