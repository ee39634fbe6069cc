package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
standard: extended
features:
  async: true
warnings:
  disable: [W002, W003]
`))
	require.NoError(t, err)
	assert.Equal(t, StandardExtended, cfg.Standard)
	assert.True(t, cfg.Feature("async"))
	assert.False(t, cfg.Feature("missing"))
	assert.Equal(t, []string{"W002", "W003"}, cfg.WarningDisables)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, StandardCore, cfg.Standard)
	assert.Empty(t, cfg.WarningDisables)
}

func TestParseUnknownStandard(t *testing.T) {
	_, err := Parse([]byte("standard: bogus"))
	assert.Error(t, err)
}

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, StandardCore, cfg.Standard)
}
