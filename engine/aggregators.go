package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// ============================================================================
// AGGREGATORS — Grouping by iteration and per-group means via RecordView
// ============================================================================
// Grouping produces SubViews (index lists into parent view).
// Absent cells are skipped per measure, so a row with a missing
// ngram_novelty still contributes its edit_change.
// ============================================================================

// Aggregate groups a view by iteration and returns one Point per distinct
// iteration, ascending.
func Aggregate(view RecordView) []Point {
	if view.Len() == 0 {
		return nil
	}

	groups := GroupByIteration(view)
	points := make([]Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, aggregateGroup(g))
	}
	return points
}

// ============================================================================
// GROUPING
// ============================================================================

// GroupByIteration partitions a view by iteration, sorted ascending.
// Each iteration appears exactly once.
func GroupByIteration(view RecordView) []Group {
	grouped := make(map[int][]int)
	order := make([]int, 0)

	for i := 0; i < view.Len(); i++ {
		it := view.Iteration(i)
		if _, exists := grouped[it]; !exists {
			order = append(order, it)
		}
		grouped[it] = append(grouped[it], i)
	}

	sort.Ints(order)

	groups := make([]Group, 0, len(order))
	for _, it := range order {
		groups = append(groups, Group{
			Iteration: it,
			View:      newSubView(view, grouped[it]),
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(g Group) Point {
	edits := MeasureValues(g.View, ColEditChange)
	novelty := MeasureValues(g.View, ColNgramNovelty)

	p := Point{
		Iteration:    g.Iteration,
		Count:        g.View.Len(),
		DeltaI:       mean(edits),
		NgramNovelty: mean(novelty),
		DeltaICount:  len(edits),
		NoveltyCount: len(novelty),
	}
	if len(edits) > 1 {
		if sd, err := stats.StandardDeviationSample(edits); err == nil {
			p.DeltaIStdDev = sd
		}
	}
	return p
}

// MeasureValues collects the present values of a measure across a view.
func MeasureValues(view RecordView, measure string) []float64 {
	values := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v, ok := view.Measure(i, measure); ok {
			values = append(values, v)
		}
	}
	return values
}

// mean is NaN when no value is present.
func mean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// ============================================================================
// LOOKUP / FORMATTING UTILITIES
// ============================================================================

// PointsByIteration indexes points by iteration.
func PointsByIteration(points []Point) map[int]Point {
	idx := make(map[int]Point, len(points))
	for _, p := range points {
		idx[p.Iteration] = p
	}
	return idx
}

// Iterations returns the iterations of points in order.
func Iterations(points []Point) []int {
	its := make([]int, len(points))
	for i, p := range points {
		its[i] = p.Iteration
	}
	return its
}

// FormatFixed formats v with the given decimals, or "—" for NaN.
func FormatFixed(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "—"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}
