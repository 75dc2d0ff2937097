package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================================
// MIRROR LOOP ENGINE TYPES
// ============================================================================
// Row (one measurement per provider/condition/iteration) → Point (one per
// iteration) → ChartConfig / SummaryData / TableData.
//
// The engine never touches the filesystem. Loading lives in helpers/dataset,
// rendering lives in render.
// ============================================================================

// Column keys shared by the CSV loader, the schema and the record views.
const (
	ColIteration    = "iteration"
	ColEditChange   = "edit_change"
	ColNgramNovelty = "ngram_novelty"
	ColModel        = "model"
	ColCondition    = "condition"
)

// ============================================================================
// ROW — one input measurement
// ============================================================================

// Measurement is a numeric cell that may be absent.
// Absent cells are excluded from means rather than counted as zero.
type Measurement struct {
	Value float64
	Valid bool
}

// Value wraps a present measurement. NaN and ±Inf are treated as absent.
func Value(v float64) Measurement {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measurement{}
	}
	return Measurement{Value: v, Valid: true}
}

// Missing returns an absent measurement.
func Missing() Measurement { return Measurement{} }

// ParseMeasurement parses a CSV cell. Empty, "NaN", "nan" and "NA" are absent.
// Infinite values are rejected.
func ParseMeasurement(s string) (Measurement, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null", "none":
		return Missing(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing(), err
	}
	if math.IsInf(f, 0) {
		return Missing(), errors.Errorf("%q is not finite", s)
	}
	return Value(f), nil
}

// Row is a single measurement of the refinement loop.
// Several rows may share an iteration (one per model/condition).
type Row struct {
	Iteration    int
	EditChange   Measurement
	NgramNovelty Measurement
	Model        string
	Condition    string
}

// ============================================================================
// POINT — aggregated per-iteration value
// ============================================================================

// Point is the aggregate of all rows sharing an iteration.
// DeltaI is the mean edit_change; NgramNovelty the mean ngram_novelty.
// A mean over zero valid values is NaN.
type Point struct {
	Iteration    int     `json:"iteration" yaml:"iteration"`
	DeltaI       float64 `json:"delta_I" yaml:"delta_I"`
	NgramNovelty float64 `json:"ngram_novelty" yaml:"ngram_novelty"`
	Count        int     `json:"count" yaml:"count"`
	DeltaICount  int     `json:"delta_I_count" yaml:"delta_I_count"`
	NoveltyCount int     `json:"ngram_novelty_count" yaml:"ngram_novelty_count"`
	DeltaIStdDev float64 `json:"delta_I_stddev" yaml:"delta_I_stddev"`
}

// ============================================================================
// GROUP — intermediate grouping result
// ============================================================================

// Group holds the rows of one iteration.
type Group struct {
	Iteration int
	View      RecordView // sub-view into the parent, no copy
}

// ============================================================================
// RESULT
// ============================================================================

// Result is the engine's render-ready output.
type Result struct {
	RowCount      int          `json:"rowCount" yaml:"rowCount"`
	FilteredCount int          `json:"filteredCount" yaml:"filteredCount"`
	Points        []Point      `json:"points" yaml:"points"`
	Summary       *SummaryData `json:"summary" yaml:"summary"`
	DeltaIChart   *ChartConfig `json:"-" yaml:"-"`
	NoveltyChart  *ChartConfig `json:"-" yaml:"-"`
	Table         *TableData   `json:"-" yaml:"-"`
}

// Charts returns the charts in output order.
func (r *Result) Charts() []*ChartConfig {
	return []*ChartConfig{r.DeltaIChart, r.NoveltyChart}
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig describes a line chart independent of the rendering library.
type ChartConfig struct {
	FileName       string          `json:"fileName"`
	Title          string          `json:"title"`
	XAxis          string          `json:"xAxis"`
	YAxis          string          `json:"yAxis"`
	Series         []ChartSeries   `json:"series"`
	ReferenceLines []ReferenceLine `json:"referenceLines,omitempty"`
	ShowLegend     bool            `json:"showLegend"`
}

// ChartSeries is one plotted line.
type ChartSeries struct {
	Name     string       `json:"name"`
	Data     []ChartPoint `json:"data"`
	Color    string       `json:"color"`
	ShowDots bool         `json:"showDots"`
}

// ChartPoint is one (x, y) pair.
type ChartPoint struct {
	X     float64 `json:"x"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ReferenceLine is a vertical marker at X spanning the y range.
type ReferenceLine struct {
	X       float64 `json:"x"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Dashed  bool    `json:"dashed"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is the per-iteration aggregate table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Align string `json:"align"` // "left", "right"
}

// ============================================================================
// SUMMARY TYPES
// ============================================================================

// Window is a named set of iterations averaged for the summary.
type Window struct {
	Name       string `json:"name" yaml:"name" mapstructure:"name"`
	Iterations []int  `json:"iterations" yaml:"iterations" mapstructure:"iterations"`
}

// WindowStat is the mean delta_I over a window.
type WindowStat struct {
	Window     Window  `json:"window" yaml:"window"`
	MeanDeltaI float64 `json:"meanDeltaI" yaml:"meanDeltaI"`
}

// SummaryData holds the early/late comparison.
type SummaryData struct {
	Early            WindowStat `json:"early" yaml:"early"`
	Late             WindowStat `json:"late" yaml:"late"`
	ReductionPercent float64    `json:"reductionPercent" yaml:"reductionPercent"`
}
