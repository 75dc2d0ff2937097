package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. MIRRORLOOP_DATA_PATH.
const EnvPrefix = "MIRRORLOOP"

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"data":        "data.path",
	"figures-dir": "figures.dir",
	"seed":        "synthetic.seed",
	"model":       "filters.models",
	"condition":   "filters.conditions",
	"format":      "output.format",
	"summary-out": "output.summary_out",
	"table":       "output.table",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
}

// Load loads configuration from an optional file, the environment and flags.
// Precedence: changed flags > environment > file > defaults.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("mirrorloop")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "bind flag --%s", name)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("data.path", d.Data.Path)

	v.SetDefault("synthetic.count", d.Synthetic.Count)
	v.SetDefault("synthetic.seed", d.Synthetic.Seed)
	v.SetDefault("synthetic.noise_stddev", d.Synthetic.NoiseStdDev)
	v.SetDefault("synthetic.edit_decay", d.Synthetic.EditDecay)
	v.SetDefault("synthetic.novelty_decay", d.Synthetic.NoveltyDecay)

	v.SetDefault("figures.dir", d.Figures.Dir)
	v.SetDefault("figures.delta_i_file", d.Figures.DeltaIFile)
	v.SetDefault("figures.novelty_file", d.Figures.NoveltyFile)
	v.SetDefault("figures.width", d.Figures.Width)
	v.SetDefault("figures.height", d.Figures.Height)
	v.SetDefault("figures.dpi", d.Figures.DPI)
	v.SetDefault("figures.delta_i_color", d.Figures.DeltaIColor)
	v.SetDefault("figures.novelty_color", d.Figures.NoveltyColor)

	v.SetDefault("summary.early_iterations", d.Summary.EarlyIterations)
	v.SetDefault("summary.late_iterations", d.Summary.LateIterations)
	v.SetDefault("summary.reference_iteration", d.Summary.ReferenceIteration)
	v.SetDefault("summary.reference_label", d.Summary.ReferenceLabel)

	v.SetDefault("filters.models", []string{})
	v.SetDefault("filters.conditions", []string{})

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.summary_out", "")
	v.SetDefault("output.table", false)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.no_color", false)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &cfg, nil
}

// DefaultConfig returns the configuration that reproduces the canonical run
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path: "data/mirror_loop_results_all.csv",
		},
		Synthetic: SyntheticConfig{
			Count:        8,
			Seed:         0,
			NoiseStdDev:  0.05,
			EditDecay:    3,
			NoveltyDecay: 2.5,
		},
		Figures: FiguresConfig{
			Dir:          "figures",
			DeltaIFile:   "fig_mirrorloop_curve.png",
			NoveltyFile:  "fig_novelty_curve.png",
			Width:        960,
			Height:       720,
			DPI:          150,
			DeltaIColor:  "#1F77B4",
			NoveltyColor: "#FF7F50",
		},
		Summary: SummaryConfig{
			EarlyIterations:    []int{1, 2},
			LateIterations:     []int{6, 7},
			ReferenceIteration: 3,
			ReferenceLabel:     "grounding",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
