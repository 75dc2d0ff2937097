package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ============================================================================
// TEXT BUILDER — Early/late ΔI comparison and console lines
// ============================================================================
// The summary is computed before any figure is written, so a run with
// missing window iterations produces neither the summary nor the figures.
// ============================================================================

var (
	// ErrMissingIterations is returned when a summary window references
	// iterations absent from the aggregated points.
	ErrMissingIterations = errors.New("summary window iterations missing")
	// ErrUndefinedReduction is returned when the early mean is zero.
	ErrUndefinedReduction = errors.New("reduction undefined: early mean ΔI is zero")
)

// BuildSummary compares mean ΔI over the early and late windows.
// Reduction is ((late − early) / early) × −100.
func BuildSummary(points []Point, early, late Window) (*SummaryData, error) {
	earlyStat, err := windowMean(points, early)
	if err != nil {
		return nil, err
	}
	lateStat, err := windowMean(points, late)
	if err != nil {
		return nil, err
	}
	reduction, err := ReductionPercent(earlyStat.MeanDeltaI, lateStat.MeanDeltaI)
	if err != nil {
		return nil, err
	}

	return &SummaryData{
		Early:            earlyStat,
		Late:             lateStat,
		ReductionPercent: reduction,
	}, nil
}

// ReductionPercent returns ((late − early) / early) × −100.
func ReductionPercent(early, late float64) (float64, error) {
	if early == 0 {
		return 0, ErrUndefinedReduction
	}
	return ((late - early) / early) * -100, nil
}

func windowMean(points []Point, w Window) (WindowStat, error) {
	idx := PointsByIteration(points)

	// A point whose ΔI has no valid value counts as missing.
	present := lo.Filter(w.Iterations, func(it int, _ int) bool {
		p, ok := idx[it]
		return ok && !math.IsNaN(p.DeltaI)
	})
	if missing, _ := lo.Difference(w.Iterations, present); len(missing) > 0 {
		return WindowStat{}, errors.Wrapf(ErrMissingIterations,
			"%s window (%s) lacks iteration(s) %s", w.Name, w.Label(), joinInts(missing))
	}

	values := lo.Map(present, func(it int, _ int) float64 { return idx[it].DeltaI })
	m, err := stats.Mean(stats.Float64Data(values))
	if err != nil {
		return WindowStat{}, errors.Wrapf(err, "%s window mean", w.Name)
	}
	return WindowStat{Window: w, MeanDeltaI: m}, nil
}

// Label renders the window's iterations: "1–2" for a contiguous run,
// "3" for a single iteration, "1, 4" otherwise.
func (w Window) Label() string {
	its := append([]int(nil), w.Iterations...)
	sort.Ints(its)
	its = lo.Uniq(its)

	switch {
	case len(its) == 0:
		return ""
	case len(its) == 1:
		return strconv.Itoa(its[0])
	case its[len(its)-1]-its[0] == len(its)-1:
		return fmt.Sprintf("%d–%d", its[0], its[len(its)-1])
	default:
		return joinInts(its)
	}
}

// ============================================================================
// CONSOLE LINES
// ============================================================================

// SummaryLines renders the console summary:
//
//	Mean ΔI early (1–2): 0.512
//	Mean ΔI late  (6–7): 0.204
//	Reduction: 60.2%
//	Wrote figures to: fig_mirrorloop_curve.png, fig_novelty_curve.png
func SummaryLines(s *SummaryData, figures []string) []string {
	width := lo.Max([]int{len(s.Early.Window.Name), len(s.Late.Window.Name)})
	return []string{
		windowLine(s.Early, width),
		windowLine(s.Late, width),
		FormatReduction(s.ReductionPercent),
		"Wrote figures to: " + strings.Join(figures, ", "),
	}
}

// FormatReduction renders "Reduction: 60.0%".
func FormatReduction(pct float64) string {
	return fmt.Sprintf("Reduction: %.1f%%", pct)
}

func windowLine(ws WindowStat, width int) string {
	return fmt.Sprintf("Mean ΔI %-*s (%s): %.3f", width, ws.Window.Name, ws.Window.Label(), ws.MeanDeltaI)
}

func joinInts(its []int) string {
	return strings.Join(lo.Map(its, func(it int, _ int) string { return strconv.Itoa(it) }), ", ")
}
