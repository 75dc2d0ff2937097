package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Early              Window
	Late               Window
	ReferenceIteration float64 // vertical marker on the ΔI chart; negative disables
	ReferenceLabel     string
	DeltaIColor        string
	NoveltyColor       string
	DeltaIFile         string
	NoveltyFile        string
	Filters            Filters
}

// Default chart file names.
const (
	DefaultDeltaIFile  = "fig_mirrorloop_curve.png"
	DefaultNoveltyFile = "fig_novelty_curve.png"
)

// DefaultEarlyWindow and DefaultLateWindow are the iterations compared by the summary.
var (
	DefaultEarlyWindow = Window{Name: "early", Iterations: []int{1, 2}}
	DefaultLateWindow  = Window{Name: "late", Iterations: []int{6, 7}}
)

// WithWindows overrides the early/late summary windows.
func WithWindows(early, late Window) Option {
	return func(c *config) {
		if len(early.Iterations) > 0 {
			c.Early = early
		}
		if len(late.Iterations) > 0 {
			c.Late = late
		}
	}
}

// WithReferenceLine moves the grounding marker. A negative iteration removes it.
func WithReferenceLine(iteration int, label string) Option {
	return func(c *config) {
		c.ReferenceIteration = float64(iteration)
		if label != "" {
			c.ReferenceLabel = label
		}
	}
}

// WithFilters restricts rows by model/condition before aggregation.
func WithFilters(f Filters) Option {
	return func(c *config) {
		c.Filters = f
	}
}

// WithFileNames sets the file names recorded on the chart configs.
func WithFileNames(deltaI, novelty string) Option {
	return func(c *config) {
		if deltaI != "" {
			c.DeltaIFile = deltaI
		}
		if novelty != "" {
			c.NoveltyFile = novelty
		}
	}
}

// WithColors sets the series colors (hex, e.g. "#FF7F50").
func WithColors(deltaI, novelty string) Option {
	return func(c *config) {
		if deltaI != "" {
			c.DeltaIColor = deltaI
		}
		if novelty != "" {
			c.NoveltyColor = novelty
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Early:              DefaultEarlyWindow,
		Late:               DefaultLateWindow,
		ReferenceIteration: 3,
		ReferenceLabel:     "grounding",
		DeltaIColor:        "#1F77B4",
		NoveltyColor:       "#FF7F50",
		DeltaIFile:         DefaultDeltaIFile,
		NoveltyFile:        DefaultNoveltyFile,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
