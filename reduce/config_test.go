package reduce

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/treduce/internal/hdd"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "hdd", cfg.Variant)
	assert.Equal(t, "lines", cfg.Format)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Equal(t, 2, cfg.Granularity)
	assert.Equal(t, 1, cfg.Workers)
	assert.Nil(t, cfg.Star)
	assert.True(t, cfg.Transforms.squeeze())
	assert.True(t, cfg.Transforms.skipUnremovable())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treduce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
test: ["./check.sh"]
variant: hddr
star: false
granularity: 4
workers: 3
format: go
timeout: 30s
transforms:
  squeeze: false
  flatten-recursion: true
phases:
  - name: coarse
    operators: [prune]
    coarse: true
  - name: fine
    operators: [prune, hoist]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"./check.sh"}, cfg.Test)
	assert.Equal(t, "hddr", cfg.Variant)
	require.NotNil(t, cfg.Star)
	assert.False(t, *cfg.Star)
	assert.Equal(t, 4, cfg.Granularity)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "go", cfg.Format)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Transforms.squeeze())
	assert.True(t, cfg.Transforms.FlattenRecursion)
	require.Len(t, cfg.Phases, 2)
	assert.True(t, cfg.Phases[0].Coarse)
	assert.Equal(t, []string{"prune", "hoist"}, cfg.Phases[1].Operators)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPhasePreset(t *testing.T) {
	tests := []struct {
		name   string
		phases int
	}{
		{"full", 1},
		{"coarse", 1},
		{"coarse-full", 2},
		{"hoist", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phases, err := PhasePreset(tt.name)
			require.NoError(t, err)
			assert.Len(t, phases, tt.phases)
		})
	}

	_, err := PhasePreset("bogus")
	assert.Error(t, err)
}

func TestEngineOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)

		opts, err := cfg.engineOptions()
		require.NoError(t, err)
		assert.Equal(t, hdd.HDD, opts.Variant)
		assert.True(t, opts.Star)
		assert.True(t, opts.WithWhitespace)
		require.Len(t, opts.Phases, 1)
		assert.True(t, opts.Phases[0].Prune)
		assert.False(t, opts.Phases[0].Hoist)
		assert.Nil(t, opts.Phases[0].Filter)
	})

	t.Run("CoarseAndHoist", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		cfg.Variant = "hddr"
		cfg.BuildHiddenTokens = true
		cfg.Phases = []PhaseConfig{
			{Name: "coarse", Operators: []string{"prune"}, Coarse: true},
			{Name: "fine", Operators: []string{"prune", "hoist"}},
		}

		opts, err := cfg.engineOptions()
		require.NoError(t, err)
		assert.Equal(t, hdd.HDDR, opts.Variant)
		assert.False(t, opts.WithWhitespace)
		require.Len(t, opts.Phases, 2)
		assert.NotNil(t, opts.Phases[0].Filter)
		assert.True(t, opts.Phases[1].Hoist)
	})

	t.Run("StarDisabled", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		f := false
		cfg.Star = &f

		opts, err := cfg.engineOptions()
		require.NoError(t, err)
		assert.False(t, opts.Star)
	})

	t.Run("UnknownVariant", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		cfg.Variant = "ddmin"
		_, err = cfg.engineOptions()
		assert.Error(t, err)
	})

	t.Run("UnknownOperator", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		cfg.Phases = []PhaseConfig{{Name: "x", Operators: []string{"shuffle"}}}
		_, err = cfg.engineOptions()
		assert.Error(t, err)
	})
}
