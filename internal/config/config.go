package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Synthetic SyntheticConfig `mapstructure:"synthetic"`
	Figures   FiguresConfig   `mapstructure:"figures"`
	Summary   SummaryConfig   `mapstructure:"summary"`
	Filters   FiltersConfig   `mapstructure:"filters"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DataConfig locates the cached results CSV
type DataConfig struct {
	Path string `mapstructure:"path"`
}

// SyntheticConfig shapes the fallback dataset used when the CSV is absent
type SyntheticConfig struct {
	Count        int     `mapstructure:"count"`
	Seed         int64   `mapstructure:"seed"` // 0 seeds from the clock
	NoiseStdDev  float64 `mapstructure:"noise_stddev"`
	EditDecay    float64 `mapstructure:"edit_decay"`
	NoveltyDecay float64 `mapstructure:"novelty_decay"`
}

// FiguresConfig controls chart output
type FiguresConfig struct {
	Dir          string  `mapstructure:"dir"`
	DeltaIFile   string  `mapstructure:"delta_i_file"`
	NoveltyFile  string  `mapstructure:"novelty_file"`
	Width        int     `mapstructure:"width"`
	Height       int     `mapstructure:"height"`
	DPI          float64 `mapstructure:"dpi"`
	DeltaIColor  string  `mapstructure:"delta_i_color"`
	NoveltyColor string  `mapstructure:"novelty_color"`
}

// SummaryConfig selects the iterations compared in the console summary
type SummaryConfig struct {
	EarlyIterations    []int  `mapstructure:"early_iterations"`
	LateIterations     []int  `mapstructure:"late_iterations"`
	ReferenceIteration int    `mapstructure:"reference_iteration"` // negative hides the marker
	ReferenceLabel     string `mapstructure:"reference_label"`
}

// FiltersConfig restricts rows before aggregation
type FiltersConfig struct {
	Models     []string `mapstructure:"models"`
	Conditions []string `mapstructure:"conditions"`
}

// OutputConfig controls the console report
type OutputConfig struct {
	Format     string `mapstructure:"format"`      // text | json | yaml
	SummaryOut string `mapstructure:"summary_out"` // optional .json/.yaml file
	Table      bool   `mapstructure:"table"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"` // console | json
	NoColor bool   `mapstructure:"no_color"`
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return errors.Wrap(err, "data config")
	}
	if err := c.Synthetic.Validate(); err != nil {
		return errors.Wrap(err, "synthetic config")
	}
	if err := c.Figures.Validate(); err != nil {
		return errors.Wrap(err, "figures config")
	}
	if err := c.Summary.Validate(); err != nil {
		return errors.Wrap(err, "summary config")
	}
	if err := c.Output.Validate(); err != nil {
		return errors.Wrap(err, "output config")
	}
	return nil
}

// Validate validates data configuration
func (c *DataConfig) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// Validate validates synthetic data configuration
func (c *SyntheticConfig) Validate() error {
	if c.Count < 1 {
		return errors.Errorf("count must be positive, got %d", c.Count)
	}
	if c.NoiseStdDev < 0 {
		return errors.Errorf("noise_stddev must be non-negative, got %g", c.NoiseStdDev)
	}
	if c.EditDecay <= 0 || c.NoveltyDecay <= 0 {
		return errors.New("edit_decay and novelty_decay must be positive")
	}
	return nil
}

// Validate validates figure configuration
func (c *FiguresConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("dir is required")
	}
	if c.DeltaIFile == "" || c.NoveltyFile == "" {
		return errors.New("delta_i_file and novelty_file are required")
	}
	if c.DeltaIFile == c.NoveltyFile {
		return errors.Errorf("delta_i_file and novelty_file must differ, both are %q", c.DeltaIFile)
	}
	if filepath.Base(c.DeltaIFile) != c.DeltaIFile || filepath.Base(c.NoveltyFile) != c.NoveltyFile {
		return errors.New("figure file names must not contain directories")
	}
	if c.Width < 1 || c.Height < 1 {
		return errors.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.DPI <= 0 {
		return errors.Errorf("invalid dpi: %g", c.DPI)
	}
	return nil
}

// Validate validates summary windows
func (c *SummaryConfig) Validate() error {
	if len(c.EarlyIterations) == 0 || len(c.LateIterations) == 0 {
		return errors.New("early_iterations and late_iterations must not be empty")
	}
	for _, it := range append(append([]int(nil), c.EarlyIterations...), c.LateIterations...) {
		if it < 0 {
			return errors.Errorf("iterations must be non-negative, got %d", it)
		}
	}
	return nil
}

// Validate validates output configuration
func (c *OutputConfig) Validate() error {
	if !lo.Contains(ValidFormats, c.Format) {
		return errors.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if c.SummaryOut != "" {
		switch strings.ToLower(filepath.Ext(c.SummaryOut)) {
		case ".json", ".yaml", ".yml":
		default:
			return errors.Errorf("summary_out %q must end in .json, .yaml or .yml", c.SummaryOut)
		}
	}
	return nil
}
