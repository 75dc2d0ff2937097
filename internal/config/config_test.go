package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 150.0, cfg.Figures.DPI)
	assert.Equal(t, []int{1, 2}, cfg.Summary.EarlyIterations)
	assert.Equal(t, []int{6, 7}, cfg.Summary.LateIterations)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"format", func(c *Config) { c.Output.Format = "xml" }, `invalid format "xml"`},
		{"summary ext", func(c *Config) { c.Output.SummaryOut = "summary.txt" }, "summary_out"},
		{"empty window", func(c *Config) { c.Summary.LateIterations = nil }, "must not be empty"},
		{"negative iteration", func(c *Config) { c.Summary.EarlyIterations = []int{-1} }, "non-negative"},
		{"same files", func(c *Config) { c.Figures.NoveltyFile = c.Figures.DeltaIFile }, "must differ"},
		{"nested file", func(c *Config) { c.Figures.DeltaIFile = "x/y.png" }, "directories"},
		{"dpi", func(c *Config) { c.Figures.DPI = 0 }, "invalid dpi"},
		{"data path", func(c *Config) { c.Data.Path = " " }, "path is required"},
		{"count", func(c *Config) { c.Synthetic.Count = 0 }, "count must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, d.Data, cfg.Data)
	assert.Equal(t, d.Synthetic, cfg.Synthetic)
	assert.Equal(t, d.Figures, cfg.Figures)
	assert.Equal(t, d.Summary, cfg.Summary)
	assert.Equal(t, d.Output, cfg.Output)
	assert.Equal(t, d.Logging, cfg.Logging)
	assert.Empty(t, cfg.Filters.Models)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirrorloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  path: results.csv
summary:
  early_iterations: [0, 1]
  late_iterations: [4, 5]
filters:
  models: [gpt-4o]
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "results.csv", cfg.Data.Path)
	assert.Equal(t, []int{0, 1}, cfg.Summary.EarlyIterations)
	assert.Equal(t, []int{4, 5}, cfg.Summary.LateIterations)
	assert.Equal(t, []string{"gpt-4o"}, cfg.Filters.Models)
	assert.Equal(t, "figures", cfg.Figures.Dir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("MIRRORLOOP_OUTPUT_FORMAT", "json")
	t.Setenv("MIRRORLOOP_FIGURES_DIR", "env-figures")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("figures-dir", "figures", "")
	flags.Int64("seed", 0, "")
	flags.StringSlice("model", nil, "")
	require.NoError(t, flags.Parse([]string{"--figures-dir", "out", "--seed", "42", "--model", "a,b"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "out", cfg.Figures.Dir)
	assert.Equal(t, int64(42), cfg.Synthetic.Seed)
	assert.Equal(t, []string{"a", "b"}, cfg.Filters.Models)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("MIRRORLOOP_OUTPUT_FORMAT", "xml")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
