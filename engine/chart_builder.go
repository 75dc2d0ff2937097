package engine

import (
	"math"
	"strconv"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from aggregated Points
// ============================================================================
// Points with a NaN mean are left out of that series; the line joins the
// neighbouring points.
// ============================================================================

// Chart titles and axis labels.
const (
	DeltaITitle   = "Mirror Loop: Informational Decay and Grounding Rebound (ΔI)"
	DeltaIYAxis   = "ΔI (normalized edit distance)"
	NoveltyTitle  = "Surface Novelty Decline Across Iterations"
	NoveltyYAxis  = "3-gram Novelty Ratio"
	IterationAxis = "Iteration"
)

const referenceLineColor = "#808080"

// BuildDeltaIChart charts mean ΔI per iteration with the grounding marker.
func BuildDeltaIChart(points []Point, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	return buildDeltaIChart(points, cfg)
}

// BuildNoveltyChart charts mean n-gram novelty per iteration.
func BuildNoveltyChart(points []Point, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	return buildNoveltyChart(points, cfg)
}

func buildDeltaIChart(points []Point, cfg *config) *ChartConfig {
	chart := &ChartConfig{
		FileName: cfg.DeltaIFile,
		Title:    DeltaITitle,
		XAxis:    IterationAxis,
		YAxis:    DeltaIYAxis,
		Series: []ChartSeries{
			buildSeries("delta_I", points, cfg.DeltaIColor, func(p Point) float64 { return p.DeltaI }),
		},
	}
	if cfg.ReferenceIteration >= 0 {
		chart.ReferenceLines = []ReferenceLine{{
			X:       cfg.ReferenceIteration,
			Label:   cfg.ReferenceLabel,
			Color:   referenceLineColor,
			Opacity: 0.7,
			Dashed:  true,
		}}
	}
	return chart
}

func buildNoveltyChart(points []Point, cfg *config) *ChartConfig {
	return &ChartConfig{
		FileName: cfg.NoveltyFile,
		Title:    NoveltyTitle,
		XAxis:    IterationAxis,
		YAxis:    NoveltyYAxis,
		Series: []ChartSeries{
			buildSeries("ngram_novelty", points, cfg.NoveltyColor, func(p Point) float64 { return p.NgramNovelty }),
		},
	}
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSeries(name string, points []Point, color string, value func(Point) float64) ChartSeries {
	data := make([]ChartPoint, 0, len(points))
	for _, p := range points {
		v := value(p)
		if math.IsNaN(v) {
			continue
		}
		data = append(data, ChartPoint{
			X:     float64(p.Iteration),
			Label: strconv.Itoa(p.Iteration),
			Value: v,
		})
	}
	return ChartSeries{
		Name:     name,
		Data:     data,
		Color:    color,
		ShowDots: true,
	}
}

// HasData reports whether any series carries at least one point.
func (c *ChartConfig) HasData() bool {
	for _, s := range c.Series {
		if len(s.Data) > 0 {
			return true
		}
	}
	return false
}
